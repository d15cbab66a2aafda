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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/lectern"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "lectern",
		Usage: "Answer questions about books from a catalog, a query cache and the web",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config file",
				EnvVars: []string{"LECTERN_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory (overrides the config file)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ask",
				Usage:     "Answer a question and print the answer as JSON",
				ArgsUsage: "<question>",
				Action:    askCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "trace",
						Usage: "Print router states to stderr",
					},
				},
			},
			{
				Name:   "seed",
				Usage:  "Load a YAML book catalog into the fact store",
				Action: seedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "catalog",
						Aliases:  []string{"f"},
						Usage:    "Path to the catalog file",
						Required: true,
					},
				},
			},
			{
				Name:   "cache",
				Usage:  "List cached queries and their results",
				Action: cacheCommand,
			},
		},
	}
}

func loadConfig(c *cli.Context) (*lectern.Config, error) {
	cfg, err := lectern.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}
	if db := c.String("db"); db != "" {
		cfg.DBPath = db
	}
	return cfg, nil
}

func open(c *cli.Context, opts ...lectern.Option) (*lectern.Lectern, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	l, err := lectern.Open(c.Context, cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open lectern: %w", err)
	}
	return l, nil
}

func askCommand(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("a question is required")
	}

	var opts []lectern.Option
	if c.Bool("trace") {
		opts = append(opts, lectern.WithMonitor(newTraceMonitor(c.App.ErrWriter)))
	}
	l, err := open(c, opts...)
	if err != nil {
		return err
	}
	defer l.Close()

	answer, err := l.Resolve(c.Context, question)
	if err != nil {
		slog.Error("router misbehaved", "err", err)
	}
	if encErr := writeJSON(c.App.Writer, answer); encErr != nil {
		return encErr
	}
	return err
}

func seedCommand(c *cli.Context) error {
	catalog, err := lectern.LoadCatalog(c.String("catalog"))
	if err != nil {
		return err
	}

	l, err := open(c)
	if err != nil {
		return err
	}
	defer l.Close()

	if err := l.Seed(c.Context, catalog); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Seeded %d authors and %d books\n", len(catalog.Authors), len(catalog.Books))
	return nil
}

func cacheCommand(c *cli.Context) error {
	l, err := open(c)
	if err != nil {
		return err
	}
	defer l.Close()

	return printCache(c.Context, c.App.Writer, l)
}

func printCache(ctx context.Context, w io.Writer, l *lectern.Lectern) error {
	cached, err := l.CachedQueries(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%d cached queries\n", len(cached))
	for _, q := range cached {
		fmt.Fprintf(w, "%q (first asked as %q, %s)\n", q.Query.NormalizedText, q.Query.OriginalText,
			q.Query.InsertedAt.Format("2006-01-02 15:04"))
		for i, r := range q.Results {
			fmt.Fprintf(w, "  %d: %s <%s>\n", i+1, r.Title, r.URL)
		}
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
