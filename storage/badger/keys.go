package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/lectern/core"
)

// Key prefixes for different data types
const (
	queryRecordPrefix  = "qryrec"
	queryTextPrefix    = "qrytxt"
	resultRecordPrefix = "resrec"
	queryResultPrefix  = "qryres"

	bookPrefix   = "book"
	authorPrefix = "auth"
	genrePrefix  = "genr"

	// Edge and tag indexes. Each key is prefix:from\x00to with an empty value.
	wroteEdgePrefix    = "e:wrote"   // author -> book
	belongsEdgePrefix  = "e:belongs" // book -> genre
	genreBooksPrefix   = "e:genre"   // genre -> book, reverse of BELONGS_TO
	topicBooksPrefix   = "e:topic"   // topic -> book
	locationBookPrefix = "e:loc"     // location -> book
)

const keySep = 0x00

// makeQueryRecordKey generates a key for a query record by ID.
func makeQueryRecordKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", queryRecordPrefix, id))
}

// makeQueryTextKey generates the unique index key for a normalized query text.
func makeQueryTextKey(normalized string) []byte {
	return []byte(queryTextPrefix + ":" + normalized)
}

// makeResultRecordKey generates a key for a result record by ID.
func makeResultRecordKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", resultRecordPrefix, id))
}

// makeQueryResultKey generates a composite key for the query to result association.
// Format: prefix:queryID:resultID
func makeQueryResultKey(queryID, resultID core.ID) []byte {
	buf := makePartialQueryResultKey(queryID)
	return binary.BigEndian.AppendUint64(buf, uint64(resultID))
}

// makePartialQueryResultKey generates a partial key for association scans.
// Format: prefix:queryID
func makePartialQueryResultKey(queryID core.ID) []byte {
	prefix := queryResultPrefix + ":"
	buf := make([]byte, len(prefix)+8, len(prefix)+16)
	offset := copy(buf, prefix)
	// BigEndian so all results of one query sort together
	binary.BigEndian.PutUint64(buf[offset:], uint64(queryID))
	return buf
}

func makeBookKey(id string) []byte {
	return []byte(bookPrefix + ":" + id)
}

func makeAuthorKey(key string) []byte {
	return []byte(authorPrefix + ":" + key)
}

func makeGenreKey(key string) []byte {
	return []byte(genrePrefix + ":" + key)
}

// makeEdgeKey generates an edge key.
// Format: prefix:from\x00to
func makeEdgeKey(prefix, from, to string) []byte {
	buf := make([]byte, 0, len(prefix)+len(from)+len(to)+2)
	buf = append(buf, prefix...)
	buf = append(buf, ':')
	buf = append(buf, from...)
	buf = append(buf, keySep)
	return append(buf, to...)
}

// makePartialEdgeKey generates the scan prefix for all edges leaving from.
func makePartialEdgeKey(prefix, from string) []byte {
	buf := make([]byte, 0, len(prefix)+len(from)+2)
	buf = append(buf, prefix...)
	buf = append(buf, ':')
	buf = append(buf, from...)
	return append(buf, keySep)
}

// edgeTarget extracts the "to" component of an edge key.
func edgeTarget(key, partial []byte) string {
	return string(key[len(partial):])
}
