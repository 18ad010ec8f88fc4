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
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/semdex"
	"github.com/poiesic/semdex/ai"
	"github.com/poiesic/semdex/source"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "semdex",
		Usage: "Semantic search over a local document corpus",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "index",
				Usage:  "Read and embed the corpus, warming the embedding cache",
				Action: indexCommand,
				Flags:  corpusFlags(),
			},
			{
				Name:   "search",
				Usage:  "Answer a query against the corpus",
				Action: searchCommand,
				Flags: append(corpusFlags(),
					&cli.StringFlag{
						Name:     "query",
						Aliases:  []string{"q"},
						Usage:    "Query text",
						Required: true,
					},
					&cli.IntFlag{
						Name:    "max-hits",
						Aliases: []string{"k"},
						Usage:   "Maximum number of results",
						Value:   5,
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// corpusFlags are shared between the index and search commands.
func corpusFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "corpus",
			Aliases:  []string{"c"},
			Usage:    "Path to the document corpus directory",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "cache",
			Usage: "Path to the embedding cache directory (disabled if empty)",
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
		&cli.IntFlag{
			Name:  "chunk-size",
			Usage: "Chunk window size in characters",
			Value: 1000,
		},
		&cli.IntFlag{
			Name:  "overlap",
			Usage: "Chunk overlap in characters",
			Value: 200,
		},
		&cli.IntFlag{
			Name:  "batch-size",
			Usage: "Number of chunks per embedding request",
			Value: 32,
		},
		&cli.IntFlag{
			Name:  "pool-size",
			Usage: "Number of concurrent embedding workers (0 for automatic)",
		},
	}
}

func buildEngine(c *cli.Context) (*semdex.Engine, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	reader, err := source.NewDirectoryReader(c.String("corpus"))
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus: %w", err)
	}

	opts := []semdex.EngineOption{
		semdex.WithAIConfig(aiConfig),
		semdex.WithChunking(c.Int("chunk-size"), c.Int("overlap")),
		semdex.WithBatchSize(c.Int("batch-size")),
	}
	if cachePath := c.String("cache"); cachePath != "" {
		opts = append(opts, semdex.WithCachePath(cachePath))
	}
	if poolSize := c.Int("pool-size"); poolSize > 0 {
		opts = append(opts, semdex.WithPoolSize(poolSize))
	}

	return semdex.NewEngine(reader, opts...)
}

func indexCommand(c *cli.Context) error {
	engine, err := buildEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	if err := engine.Index(context.Background()); err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Indexed %d chunks from %s\n", engine.Len(), c.String("corpus"))
	return nil
}

func searchCommand(c *cli.Context) error {
	engine, err := buildEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	ctx := context.Background()
	rank := 0
	for event := range engine.Stream(ctx, c.String("query"), c.Int("max-hits")) {
		if event.Err != nil {
			return fmt.Errorf("search failed: %w", event.Err)
		}
		rank++
		fmt.Printf("%d. [%.4f] %s\n", rank, event.Result.Score, event.Result.Chunk.SourceID)
		fmt.Printf("   %s\n", event.Result.Chunk.Text)
	}

	if rank == 0 {
		fmt.Fprintln(os.Stderr, "No results.")
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
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

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
