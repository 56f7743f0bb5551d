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

package stratum

import (
	"log/slog"

	"github.com/poiesic/stratum/ai"
	"github.com/poiesic/stratum/ai/mock"
	"github.com/poiesic/stratum/ai/openai"
	"github.com/poiesic/stratum/governance"
	"github.com/poiesic/stratum/ingestion"
	"github.com/poiesic/stratum/query"
	"github.com/poiesic/stratum/storage"
	"github.com/poiesic/stratum/storage/badger"
)

// Database wires the storage backend, the knowledge repository, and the AI
// provider together, and hands out the pipeline, governance, and query
// components built on them.
type Database struct {
	backend       *badger.Backend
	knowledgeRepo storage.KnowledgeRepository
	provider      ai.Provider
	logger        *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	mockAI   bool
	inMemory bool
	logger   *slog.Logger
}

// WithAIConfig overrides the default AI provider configuration.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = config
	}
}

// WithMockAI swaps the OpenAI-compatible provider for deterministic mocks.
// Useful for tests and for exercising the pipeline without a model server.
func WithMockAI() DatabaseOption {
	return func(o *databaseOptions) {
		o.mockAI = true
	}
}

// WithInMemoryStore keeps all data in memory. The file path is ignored and
// nothing survives Close.
func WithInMemoryStore() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// WithDatabaseLogger sets the logger used by the database and the components
// it creates.
func WithDatabaseLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		o.logger = logger
	}
}

func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	knowledgeRepo, err := badger.NewKnowledgeRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	var provider ai.Provider
	if options.mockAI {
		provider = mock.NewMockProvider()
	} else {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			knowledgeRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	return &Database{
		backend:       backend,
		knowledgeRepo: knowledgeRepo,
		provider:      provider,
		logger:        options.logger,
	}, nil
}

func (db *Database) Close() error {
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	if err := db.knowledgeRepo.Close(); err != nil {
		db.logger.Error("error closing knowledge repository", "err", err)
		return err
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) KnowledgeRepository() storage.KnowledgeRepository {
	return db.knowledgeRepo
}

func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(db.knowledgeRepo, db.provider, opts...)
}

func (db *Database) NewGovernanceController(opts ...governance.Option) (*governance.Controller, error) {
	return governance.NewController(db.knowledgeRepo, opts...)
}

// NewQueryService builds the read surface. Pass the registry from an
// in-process pipeline to expose ingestion progress, or nil without one.
func (db *Database) NewQueryService(registry *ingestion.Registry, opts ...query.Option) (*query.Service, error) {
	return query.NewService(db.knowledgeRepo, registry, opts...)
}
