// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/lectern/core"
)

// Records are encoded field by field in declaration order with MUS primitives.
// Field order is part of the on-disk format; append new fields at the end.

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, varint.Uint64.Size(uint64(id)))
	varint.Uint64.Marshal(uint64(id), buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := varint.Uint64.Unmarshal(data)
	return core.ID(id), err
}

// MarshalPosition serializes the insertion position of an association.
func MarshalPosition(pos int) []byte {
	buf := make([]byte, varint.Int.Size(pos))
	varint.Int.Marshal(pos, buf)
	return buf
}

// UnmarshalPosition deserializes an association position.
func UnmarshalPosition(data []byte) (int, error) {
	pos, _, err := varint.Int.Unmarshal(data)
	return pos, err
}

// MarshalQueryRecord serializes a QueryRecord to bytes.
func MarshalQueryRecord(record *core.QueryRecord) []byte {
	size := varint.Uint64.Size(uint64(record.Id)) +
		ord.String.Size(record.NormalizedText) +
		ord.String.Size(record.OriginalText) +
		sizeVector(record.Vector) +
		sizeTime(record.InsertedAt)

	buf := make([]byte, size)
	n := varint.Uint64.Marshal(uint64(record.Id), buf)
	n += ord.String.Marshal(record.NormalizedText, buf[n:])
	n += ord.String.Marshal(record.OriginalText, buf[n:])
	n += marshalVector(record.Vector, buf[n:])
	marshalTime(record.InsertedAt, buf[n:])
	return buf
}

// UnmarshalQueryRecord deserializes a QueryRecord from bytes.
func UnmarshalQueryRecord(data []byte) (*core.QueryRecord, error) {
	var (
		record core.QueryRecord
		r      = reader{data: data}
	)
	record.Id = core.ID(r.readUint64())
	record.NormalizedText = r.readString()
	record.OriginalText = r.readString()
	record.Vector = r.readVector()
	record.InsertedAt = r.readTime()
	if r.err != nil {
		return nil, r.err
	}
	return &record, nil
}

// MarshalResultRecord serializes a ResultRecord to bytes.
func MarshalResultRecord(record *core.ResultRecord) []byte {
	size := varint.Uint64.Size(uint64(record.Id)) +
		ord.String.Size(record.URL) +
		ord.String.Size(record.Title) +
		ord.String.Size(record.Content) +
		sizeVector(record.Vector) +
		sizeTime(record.FetchedAt)

	buf := make([]byte, size)
	n := varint.Uint64.Marshal(uint64(record.Id), buf)
	n += ord.String.Marshal(record.URL, buf[n:])
	n += ord.String.Marshal(record.Title, buf[n:])
	n += ord.String.Marshal(record.Content, buf[n:])
	n += marshalVector(record.Vector, buf[n:])
	marshalTime(record.FetchedAt, buf[n:])
	return buf
}

// UnmarshalResultRecord deserializes a ResultRecord from bytes.
func UnmarshalResultRecord(data []byte) (*core.ResultRecord, error) {
	var (
		record core.ResultRecord
		r      = reader{data: data}
	)
	record.Id = core.ID(r.readUint64())
	record.URL = r.readString()
	record.Title = r.readString()
	record.Content = r.readString()
	record.Vector = r.readVector()
	record.FetchedAt = r.readTime()
	if r.err != nil {
		return nil, r.err
	}
	return &record, nil
}

// MarshalBook serializes a Book to bytes.
func MarshalBook(book *core.Book) []byte {
	size := ord.String.Size(book.Id) +
		ord.String.Size(book.Title) +
		ord.String.Size(book.Author) +
		raw.Float64.Size(book.Rating) +
		varint.Int.Size(book.PublishYear) +
		sizeStrings(book.Genres) +
		sizeStrings(book.Topics) +
		sizeStrings(book.Locations)

	buf := make([]byte, size)
	n := ord.String.Marshal(book.Id, buf)
	n += ord.String.Marshal(book.Title, buf[n:])
	n += ord.String.Marshal(book.Author, buf[n:])
	n += raw.Float64.Marshal(book.Rating, buf[n:])
	n += varint.Int.Marshal(book.PublishYear, buf[n:])
	n += marshalStrings(book.Genres, buf[n:])
	n += marshalStrings(book.Topics, buf[n:])
	marshalStrings(book.Locations, buf[n:])
	return buf
}

// UnmarshalBook deserializes a Book from bytes.
func UnmarshalBook(data []byte) (*core.Book, error) {
	var (
		book core.Book
		r    = reader{data: data}
	)
	book.Id = r.readString()
	book.Title = r.readString()
	book.Author = r.readString()
	book.Rating = r.readFloat64()
	book.PublishYear = r.readInt()
	book.Genres = r.readStrings()
	book.Topics = r.readStrings()
	book.Locations = r.readStrings()
	if r.err != nil {
		return nil, r.err
	}
	return &book, nil
}

// MarshalAuthor serializes an Author to bytes.
func MarshalAuthor(author *core.Author) []byte {
	size := ord.String.Size(author.Name) +
		ord.String.Size(author.BirthYear) +
		ord.String.Size(author.DeathYear) +
		ord.String.Size(author.Bio)

	buf := make([]byte, size)
	n := ord.String.Marshal(author.Name, buf)
	n += ord.String.Marshal(author.BirthYear, buf[n:])
	n += ord.String.Marshal(author.DeathYear, buf[n:])
	ord.String.Marshal(author.Bio, buf[n:])
	return buf
}

// UnmarshalAuthor deserializes an Author from bytes.
func UnmarshalAuthor(data []byte) (*core.Author, error) {
	var (
		author core.Author
		r      = reader{data: data}
	)
	author.Name = r.readString()
	author.BirthYear = r.readString()
	author.DeathYear = r.readString()
	author.Bio = r.readString()
	if r.err != nil {
		return nil, r.err
	}
	return &author, nil
}

func sizeVector(v []float32) int {
	size := varint.Int.Size(len(v))
	for _, f := range v {
		size += raw.Float32.Size(f)
	}
	return size
}

func marshalVector(v []float32, buf []byte) int {
	n := varint.Int.Marshal(len(v), buf)
	for _, f := range v {
		n += raw.Float32.Marshal(f, buf[n:])
	}
	return n
}

func sizeStrings(s []string) int {
	size := varint.Int.Size(len(s))
	for _, str := range s {
		size += ord.String.Size(str)
	}
	return size
}

func marshalStrings(s []string, buf []byte) int {
	n := varint.Int.Marshal(len(s), buf)
	for _, str := range s {
		n += ord.String.Marshal(str, buf[n:])
	}
	return n
}

// Times are stored as UTC microseconds.
func sizeTime(t time.Time) int {
	return varint.Int64.Size(t.UnixMicro())
}

func marshalTime(t time.Time, buf []byte) int {
	return varint.Int64.Marshal(t.UnixMicro(), buf)
}

// reader decodes sequential fields, remembering the first error.
// Once an error is recorded every further read returns a zero value.
type reader struct {
	data []byte
	off  int
	err  error
}

func (r *reader) advance(n int, err error) bool {
	if err != nil {
		r.err = err
		return false
	}
	r.off += n
	return true
}

func (r *reader) readUint64() uint64 {
	if r.err != nil {
		return 0
	}
	v, n, err := varint.Uint64.Unmarshal(r.data[r.off:])
	if !r.advance(n, err) {
		return 0
	}
	return v
}

func (r *reader) readInt() int {
	if r.err != nil {
		return 0
	}
	v, n, err := varint.Int.Unmarshal(r.data[r.off:])
	if !r.advance(n, err) {
		return 0
	}
	return v
}

func (r *reader) readFloat64() float64 {
	if r.err != nil {
		return 0
	}
	v, n, err := raw.Float64.Unmarshal(r.data[r.off:])
	if !r.advance(n, err) {
		return 0
	}
	return v
}

func (r *reader) readString() string {
	if r.err != nil {
		return ""
	}
	v, n, err := ord.String.Unmarshal(r.data[r.off:])
	if !r.advance(n, err) {
		return ""
	}
	return v
}

func (r *reader) readLength() int {
	l := r.readInt()
	if r.err == nil && (l < 0 || l > len(r.data)-r.off) {
		r.err = ErrTruncatedData
		return 0
	}
	return l
}

func (r *reader) readVector() []float32 {
	l := r.readLength()
	if r.err != nil || l == 0 {
		return nil
	}
	v := make([]float32, l)
	for i := range v {
		f, n, err := raw.Float32.Unmarshal(r.data[r.off:])
		if !r.advance(n, err) {
			return nil
		}
		v[i] = f
	}
	return v
}

func (r *reader) readStrings() []string {
	l := r.readLength()
	if r.err != nil || l == 0 {
		return nil
	}
	s := make([]string, l)
	for i := range s {
		s[i] = r.readString()
	}
	if r.err != nil {
		return nil
	}
	return s
}

func (r *reader) readTime() time.Time {
	if r.err != nil {
		return time.Time{}
	}
	v, n, err := varint.Int64.Unmarshal(r.data[r.off:])
	if !r.advance(n, err) {
		return time.Time{}
	}
	return time.UnixMicro(v).UTC()
}
