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
	"io"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/poiesic/stratum"
	"github.com/poiesic/stratum/ai"
	"github.com/poiesic/stratum/core"
	"github.com/poiesic/stratum/governance"
	"github.com/poiesic/stratum/ingestion"
	"github.com/poiesic/stratum/query"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "stratum",
		Usage: "Knowledge ingestion and staging governance pipeline",
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
				Name:      "ingest",
				Usage:     "Distill a document into staged knowledge atoms",
				ArgsUsage: "FILE (use - for stdin)",
				Action:    ingestCommand,
				Flags: append(dbFlags(),
					&cli.StringFlag{
						Name:     "capsule",
						Aliases:  []string{"c"},
						Usage:    "Capsule ID grouping this ingestion batch",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "source-name",
						Usage: "Human-readable source name recorded on each atom",
					},
					&cli.StringFlag{
						Name:  "source-doc",
						Usage: "Source document ID recorded on each atom",
					},
					&cli.BoolFlag{
						Name:  "mock-ai",
						Usage: "Use deterministic mock AI services instead of a model server",
					},
					&cli.StringFlag{
						Name:  "extractor-host",
						Usage: "Extraction service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "extractor-model",
						Usage: "Extraction model name",
						Value: "qwen2.5:3b",
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL (defaults to extractor-host)",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: "embeddinggemma",
					},
					&cli.IntFlag{
						Name:  "min-confidence",
						Usage: "Drop extracted atoms below this confidence (0-100)",
						Value: 50,
					},
				),
			},
			{
				Name:      "promote",
				Usage:     "Promote a review cluster's atoms to the canonical layer",
				ArgsUsage: "CLUSTER_ID",
				Action:    promoteCommand,
				Flags:     dbFlags(),
			},
			{
				Name:      "reject",
				Usage:     "Reject a review cluster and remove its atoms",
				ArgsUsage: "CLUSTER_ID",
				Action:    rejectCommand,
				Flags:     dbFlags(),
			},
			{
				Name:      "author",
				Usage:     "Write a statement directly into the exploratory layer",
				ArgsUsage: "STATEMENT",
				Action:    authorCommand,
				Flags: append(dbFlags(),
					&cli.StringFlag{
						Name:     "capsule",
						Aliases:  []string{"c"},
						Usage:    "Capsule ID to record the atom under",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "kind",
						Usage: "Atom kind (fact, decision, risk, assumption, requirement)",
						Value: "fact",
					},
				),
			},
			{
				Name:      "supersede",
				Usage:     "Mark an atom as superseded by a newer one",
				ArgsUsage: "OLD_ID NEW_ID",
				Action:    supersedeCommand,
				Flags:     dbFlags(),
			},
			{
				Name:   "items",
				Usage:  "List knowledge items",
				Action: itemsCommand,
				Flags: append(dbFlags(),
					&cli.StringFlag{
						Name:    "query",
						Aliases: []string{"q"},
						Usage:   "Free-text filter over statements and source names",
					},
					&cli.StringFlag{
						Name:  "status",
						Usage: "Filter by status (active, superseded)",
					},
					&cli.StringFlag{
						Name:  "layer",
						Usage: "Filter by layer (staging, exploratory, canonical)",
					},
					&cli.StringFlag{
						Name:    "capsule",
						Aliases: []string{"c"},
						Usage:   "Filter by capsule ID",
					},
					&cli.IntFlag{
						Name:  "offset",
						Usage: "Window offset",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Window size",
						Value: query.DefaultPageLimit,
					},
				),
			},
			{
				Name:   "clusters",
				Usage:  "List review clusters",
				Action: clustersCommand,
				Flags: append(dbFlags(),
					&cli.StringFlag{
						Name:    "capsule",
						Aliases: []string{"c"},
						Usage:   "Filter by capsule ID",
					},
					&cli.StringFlag{
						Name:  "decision",
						Usage: "Filter by decision (pending, promoted, rejected)",
					},
				),
			},
			{
				Name:   "status",
				Usage:  "Show atom counts by layer and status",
				Action: statusCommand,
				Flags:  dbFlags(),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func dbFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB database directory",
			Required: true,
		},
	}
}

func openDatabase(c *cli.Context, opts ...stratum.DatabaseOption) (*stratum.Database, error) {
	db, err := stratum.NewDatabase(c.String("db"), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one file argument (use - for stdin)")
	}

	text, err := readInput(c.Args().First())
	if err != nil {
		return err
	}

	opts := []stratum.DatabaseOption{}
	if c.Bool("mock-ai") {
		opts = append(opts, stratum.WithMockAI())
	} else {
		embeddingHost := c.String("embedding-host")
		if embeddingHost == "" {
			embeddingHost = c.String("extractor-host")
		}
		aiConfig := ai.NewConfig(
			ai.WithExtractorHost(c.String("extractor-host")),
			ai.WithExtractorModel(c.String("extractor-model")),
			ai.WithEmbeddingHost(embeddingHost),
			ai.WithEmbeddingModel(c.String("embedding-model")),
			ai.WithMinConfidence(c.Int("min-confidence")),
		)
		if err := aiConfig.Validate(); err != nil {
			return fmt.Errorf("invalid AI configuration: %w", err)
		}
		opts = append(opts, stratum.WithAIConfig(aiConfig))
	}

	db, err := openDatabase(c, opts...)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	job, err := pipeline.Ingest(ctx, c.String("capsule"), text, &ingestion.IngestOptions{
		SourceDocumentId: c.String("source-doc"),
		SourceName:       c.String("source-name"),
	})
	if err != nil {
		return fmt.Errorf("failed to start ingestion: %w", err)
	}

	for event := range job.Events() {
		if event.Terminal {
			continue
		}
		fmt.Fprintf(os.Stderr, "%-15s %s\n", event.Stage, event.State)
	}

	if err := job.Wait(); err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	service, err := db.NewQueryService(pipeline.Registry())
	if err != nil {
		return err
	}
	views, err := service.ListClusters(ctx, query.ClusterFilter{CapsuleId: c.String("capsule"), Decision: "pending"})
	if err != nil {
		return err
	}

	fmt.Printf("capsule %s ingested: %d cluster(s) staged for review\n", c.String("capsule"), len(views))
	for _, view := range views {
		fmt.Printf("  [%d] %s (%d items)\n", view.Id, view.Title, len(view.Items))
	}
	return nil
}

func promoteCommand(c *cli.Context) error {
	return transitionCommand(c, true)
}

func rejectCommand(c *cli.Context) error {
	return transitionCommand(c, false)
}

func transitionCommand(c *cli.Context, promote bool) error {
	ctx := context.Background()

	clusterID, err := parseID(c.Args().First())
	if err != nil {
		return err
	}

	db, err := openDatabase(c, stratum.WithMockAI())
	if err != nil {
		return err
	}
	defer db.Close()

	controller, err := db.NewGovernanceController()
	if err != nil {
		return err
	}

	var result governance.Outcome
	if promote {
		result, err = controller.Promote(ctx, clusterID)
	} else {
		result, err = controller.Reject(ctx, clusterID)
	}
	if err != nil {
		return err
	}

	if result.Replayed {
		fmt.Printf("cluster %d already decided: %s\n", clusterID, result.Decision)
		return nil
	}
	fmt.Printf("cluster %d %s\n", clusterID, result.Decision)
	return nil
}

func authorCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one statement argument")
	}

	db, err := openDatabase(c, stratum.WithMockAI())
	if err != nil {
		return err
	}
	defer db.Close()

	controller, err := db.NewGovernanceController()
	if err != nil {
		return err
	}

	kind, err := core.ParseAtomKind(c.String("kind"))
	if err != nil {
		return err
	}

	atom, err := controller.AuthorExploratory(ctx, c.String("capsule"), c.Args().First(), kind)
	if err != nil {
		return err
	}

	fmt.Printf("authored exploratory atom %d\n", atom.Id)
	return nil
}

func supersedeCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.NArg() != 2 {
		return fmt.Errorf("expected OLD_ID and NEW_ID arguments")
	}
	oldID, err := parseID(c.Args().Get(0))
	if err != nil {
		return err
	}
	newID, err := parseID(c.Args().Get(1))
	if err != nil {
		return err
	}

	db, err := openDatabase(c, stratum.WithMockAI())
	if err != nil {
		return err
	}
	defer db.Close()

	controller, err := db.NewGovernanceController()
	if err != nil {
		return err
	}

	if err := controller.Supersede(ctx, oldID, newID); err != nil {
		return err
	}

	fmt.Printf("atom %d superseded by %d\n", oldID, newID)
	return nil
}

func itemsCommand(c *cli.Context) error {
	ctx := context.Background()

	db, err := openDatabase(c, stratum.WithMockAI())
	if err != nil {
		return err
	}
	defer db.Close()

	service, err := db.NewQueryService(nil)
	if err != nil {
		return err
	}

	page, err := service.ListKnowledgeItems(ctx, query.Filter{
		Query:     c.String("query"),
		Status:    c.String("status"),
		Layer:     c.String("layer"),
		CapsuleId: c.String("capsule"),
	}, query.Page{
		Offset: c.Int("offset"),
		Limit:  c.Int("limit"),
	})
	if err != nil {
		return err
	}

	fmt.Printf("%d item(s), showing %d from offset %d\n", page.Total, len(page.Items), page.Offset)
	for _, item := range page.Items {
		fmt.Printf("[%d] %-11s %-11s %-10s %s\n", item.Id, item.Kind, item.Layer, item.Status, item.Content)
		if item.AIAction != "none" {
			fmt.Printf("    ai: %s %s\n", item.AIAction, item.AIReasoning)
		}
		for _, related := range item.Related {
			fmt.Printf("    %s -> [%d] %s\n", related.Type, related.Id, related.Statement)
		}
	}
	return nil
}

func clustersCommand(c *cli.Context) error {
	ctx := context.Background()

	db, err := openDatabase(c, stratum.WithMockAI())
	if err != nil {
		return err
	}
	defer db.Close()

	service, err := db.NewQueryService(nil)
	if err != nil {
		return err
	}

	views, err := service.ListClusters(ctx, query.ClusterFilter{
		CapsuleId: c.String("capsule"),
		Decision:  c.String("decision"),
	})
	if err != nil {
		return err
	}

	for _, view := range views {
		fmt.Printf("[%d] %-9s %s\n", view.Id, view.Decision, view.Title)
		for _, item := range view.Items {
			fmt.Printf("    [%d] %s\n", item.Id, item.Content)
		}
	}
	return nil
}

func statusCommand(c *cli.Context) error {
	ctx := context.Background()

	db, err := openDatabase(c, stratum.WithMockAI())
	if err != nil {
		return err
	}
	defer db.Close()

	service, err := db.NewQueryService(nil)
	if err != nil {
		return err
	}

	for _, layer := range []string{"staging", "exploratory", "canonical"} {
		counts, err := service.CountByStatus(ctx, layer)
		if err != nil {
			return err
		}
		fmt.Printf("%-12s active=%d superseded=%d\n", layer, counts["active"], counts["superseded"])
	}
	return nil
}

func readInput(path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(data), nil
}

func parseID(arg string) (core.ID, error) {
	if arg == "" {
		return 0, fmt.Errorf("missing ID argument")
	}
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid ID %q: %w", arg, err)
	}
	return core.ID(id), nil
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
