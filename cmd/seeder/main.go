package main

import (
	"bufio"
	"context"
	"flag"
	"iter"
	"log/slog"
	"os"

	"github.com/poiesic/stratum"
	"github.com/poiesic/stratum/ai"
	"github.com/poiesic/stratum/ai/mock"
	"github.com/poiesic/stratum/core"
	"github.com/poiesic/stratum/storage"
)

// Canonical baseline statements for exercising the pipeline's conflict
// correlation against a populated store.
var statements = []string{
	"The platform persists all durable state in PostgreSQL.",
	"Session data is cached in Redis with a 30 minute TTL.",
	"All public endpoints require TLS 1.3 or newer.",
	"The ingestion service processes documents asynchronously.",
	"Deployments roll out through a blue-green strategy.",
	"The API gateway enforces a rate limit of 100 requests per second.",
	"Database migrations run automatically on service startup.",
	"All inter-service traffic is authenticated with mutual TLS.",
	"The search index is rebuilt nightly from the primary store.",
	"Audit logs are retained for seven years.",
	"The message broker guarantees at-least-once delivery.",
	"Configuration is loaded from environment variables only.",
	"The billing service is the sole writer of invoice records.",
	"Feature flags are evaluated at request time, never cached.",
	"Backups are taken hourly and verified weekly.",
	"The CDN serves all static assets with a one year cache lifetime.",
	"Error budgets reset at the start of each calendar month.",
	"The scheduler assigns work using consistent hashing.",
	"Secrets rotate every ninety days.",
	"The monolith was decomposed into services along team boundaries.",
	"Read replicas lag the primary by at most five seconds.",
	"The payment processor retries failed charges three times.",
	"Container images are scanned before every deployment.",
	"The event log is the source of truth for order state.",
	"Client SDKs are generated from the OpenAPI definition.",
}

var (
	seedFileName = flag.String("src", "", "file of seed statements, one per line")
	dbPath       = flag.String("db", "./knowledge_db", "path to BadgerDB database directory")
	capsuleID    = flag.String("capsule", "seed", "capsule ID for the seeded atoms")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// linesFromFile returns an iterator over lines in a file.
func linesFromFile(filename string) (iter.Seq[string], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(string) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if !yield(scanner.Text()) {
				return
			}
		}
	}, nil
}

// linesFromSlice returns an iterator over a slice of strings.
func linesFromSlice(lines []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, line := range lines {
			if !yield(line) {
				return
			}
		}
	}
}

// seedCanonical embeds each statement and writes it straight into the
// canonical layer, bypassing staging review.
func seedCanonical(ctx context.Context, repo storage.KnowledgeRepository, embedder ai.Embedder, source iter.Seq[string]) error {
	count := 0
	for statement := range source {
		if statement == "" {
			continue
		}

		vector, err := embedder.EmbedText(ctx, statement)
		if err != nil {
			return err
		}

		atom := &core.Atom{
			CapsuleId:  *capsuleID,
			Statement:  statement,
			Kind:       core.AtomKindFact,
			Confidence: 100,
			Layer:      core.LayerCanonical,
			Status:     core.AtomStatusActive,
			SourceName: "seeder",
			Vector:     vector,
		}
		if _, err := repo.AddAtoms(ctx, atom); err != nil {
			return err
		}
		count++
	}

	slog.Info("seeded canonical atoms", "count", count, "capsule", *capsuleID)
	return nil
}

func main() {
	db, err := stratum.NewDatabase(*dbPath, stratum.WithMockAI())
	if err != nil {
		panic(err)
	}
	defer db.Close()

	ctx := context.Background()

	var source iter.Seq[string]
	if seedFileName != nil && *seedFileName != "" {
		source, err = linesFromFile(*seedFileName)
		if err != nil {
			panic(err)
		}
	} else {
		source = linesFromSlice(statements)
	}

	if err := seedCanonical(ctx, db.KnowledgeRepository(), mock.NewMockEmbedder(), source); err != nil {
		panic(err)
	}
}
