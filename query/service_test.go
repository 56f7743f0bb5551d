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

package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/stratum/core"
	"github.com/poiesic/stratum/ingestion"
	"github.com/poiesic/stratum/storage"
	badgerstore "github.com/poiesic/stratum/storage/badger"
)

func setupService(t *testing.T) (*Service, storage.KnowledgeRepository) {
	t.Helper()

	repo, backend, err := badgerstore.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})

	service, err := NewService(repo, ingestion.NewRegistry())
	require.NoError(t, err)

	return service, repo
}

func seedAtom(t *testing.T, repo storage.KnowledgeRepository, capsuleID, statement string, layer core.Layer) *core.Atom {
	t.Helper()

	atom := &core.Atom{
		CapsuleId:  capsuleID,
		Statement:  statement,
		Kind:       core.AtomKindFact,
		Confidence: 90,
		Layer:      layer,
		Status:     core.AtomStatusActive,
		SourceName: "design-notes.md",
	}
	added, err := repo.AddAtoms(context.Background(), atom)
	require.NoError(t, err)
	return added[0]
}

func TestNewServiceRequiresRepository(t *testing.T) {
	_, err := NewService(nil, nil)
	assert.ErrorIs(t, err, ErrRepositoryRequired)
}

func TestListKnowledgeItemsFreeText(t *testing.T) {
	service, repo := setupService(t)
	ctx := context.Background()

	seedAtom(t, repo, "cap-1", "The API gateway terminates TLS", core.LayerCanonical)
	seedAtom(t, repo, "cap-1", "Sessions are stored in Redis", core.LayerCanonical)
	seedAtom(t, repo, "cap-2", "Redis is deployed in cluster mode", core.LayerStaging)

	page, err := service.ListKnowledgeItems(ctx, Filter{Query: "redis"}, Page{})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	page, err = service.ListKnowledgeItems(ctx, Filter{Query: "redis", CapsuleId: "cap-1"}, Page{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Sessions are stored in Redis", page.Items[0].Content)
	assert.Equal(t, "fact", page.Items[0].Kind)
	assert.Equal(t, "active", page.Items[0].Status)
	assert.Equal(t, "canonical", page.Items[0].Layer)
	assert.Equal(t, "design-notes.md", page.Items[0].SourceName)
}

func TestListKnowledgeItemsMatchesSourceName(t *testing.T) {
	service, repo := setupService(t)

	seedAtom(t, repo, "cap-1", "Deployments run nightly", core.LayerCanonical)

	page, err := service.ListKnowledgeItems(context.Background(), Filter{Query: "design notes"}, Page{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
}

func TestListKnowledgeItemsPagination(t *testing.T) {
	service, repo := setupService(t)
	ctx := context.Background()

	statements := []string{"alpha one", "bravo two", "charlie three", "delta four", "echo five"}
	for _, statement := range statements {
		seedAtom(t, repo, "cap-1", statement, core.LayerCanonical)
	}

	page, err := service.ListKnowledgeItems(ctx, Filter{}, Page{Offset: 0, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	assert.Len(t, page.Items, 2)

	page, err = service.ListKnowledgeItems(ctx, Filter{}, Page{Offset: 4, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)

	page, err = service.ListKnowledgeItems(ctx, Filter{}, Page{Offset: 10, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 5, page.Total)
}

func TestListKnowledgeItemsInvalidFilter(t *testing.T) {
	service, _ := setupService(t)
	ctx := context.Background()

	_, err := service.ListKnowledgeItems(ctx, Filter{Status: "archived"}, Page{})
	assert.ErrorIs(t, err, ErrInvalidFilter)

	_, err = service.ListKnowledgeItems(ctx, Filter{Layer: "basement"}, Page{})
	assert.ErrorIs(t, err, ErrInvalidFilter)

	_, err = service.ListKnowledgeItems(ctx, Filter{}, Page{Offset: -1})
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestListKnowledgeItemsResolvesRelated(t *testing.T) {
	service, repo := setupService(t)
	ctx := context.Background()

	decision := seedAtom(t, repo, "cap-1", "We will adopt PostgreSQL", core.LayerCanonical)
	risk := seedAtom(t, repo, "cap-1", "Migration downtime might exceed the window", core.LayerCanonical)

	_, err := repo.AddRelations(ctx, &core.Relation{
		FromAtomId: risk.Id,
		ToAtomId:   decision.Id,
		Type:       core.RelationSupports,
		Confidence: 80,
	})
	require.NoError(t, err)

	page, err := service.ListKnowledgeItems(ctx, Filter{Query: "migration downtime"}, Page{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Len(t, page.Items[0].Related, 1)
	assert.Equal(t, decision.Id, page.Items[0].Related[0].Id)
	assert.Equal(t, "We will adopt PostgreSQL", page.Items[0].Related[0].Statement)
	assert.Equal(t, "supports", page.Items[0].Related[0].Type)
}

func TestListClustersResolvesItems(t *testing.T) {
	service, repo := setupService(t)
	ctx := context.Background()

	batch := &core.Batch{
		CapsuleId: "cap-1",
		Atoms: []*core.Atom{
			{
				Id:         core.IDFromContent("cap-1\x00the build cache is shared"),
				CapsuleId:  "cap-1",
				Statement:  "the build cache is shared",
				Kind:       core.AtomKindFact,
				Confidence: 85,
				Layer:      core.LayerStaging,
				Status:     core.AtomStatusActive,
			},
		},
		Clusters: []*core.Cluster{
			{
				CapsuleId: "cap-1",
				Title:     "Build cache",
				Summary:   "the build cache is shared",
				ItemIds:   []core.ID{core.IDFromContent("cap-1\x00the build cache is shared")},
				Decision:  core.DecisionPending,
			},
		},
	}
	require.NoError(t, repo.AppendBatch(ctx, batch))

	views, err := service.ListClusters(ctx, ClusterFilter{CapsuleId: "cap-1"})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Build cache", views[0].Title)
	assert.Equal(t, "pending", views[0].Decision)
	assert.False(t, views[0].Promoted)
	assert.False(t, views[0].Rejected)
	require.Len(t, views[0].Items, 1)
	assert.Equal(t, "the build cache is shared", views[0].Items[0].Content)

	_, err = repo.TransitionCluster(ctx, batch.Clusters[0].Id, core.DecisionPromoted)
	require.NoError(t, err)

	views, err = service.ListClusters(ctx, ClusterFilter{Decision: "promoted"})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.True(t, views[0].Promoted)

	views, err = service.ListClusters(ctx, ClusterFilter{Decision: "pending"})
	require.NoError(t, err)
	assert.Empty(t, views)

	_, err = service.ListClusters(ctx, ClusterFilter{Decision: "undecided"})
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestCountByStatus(t *testing.T) {
	service, repo := setupService(t)
	ctx := context.Background()

	first := seedAtom(t, repo, "cap-1", "alpha", core.LayerCanonical)
	seedAtom(t, repo, "cap-1", "bravo", core.LayerCanonical)
	seedAtom(t, repo, "cap-1", "charlie", core.LayerStaging)
	require.NoError(t, repo.SupersedeAtom(ctx, first.Id))

	counts, err := service.CountByStatus(ctx, "canonical")
	require.NoError(t, err)
	assert.Equal(t, 1, counts["active"])
	assert.Equal(t, 1, counts["superseded"])

	counts, err = service.CountByStatus(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 2, counts["active"])

	_, err = service.CountByStatus(ctx, "penthouse")
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestIngestionStatusUntracked(t *testing.T) {
	service, _ := setupService(t)

	_, ok := service.IngestionStatus("cap-unknown")
	assert.False(t, ok)
}

func TestIngestionStatusNilRegistry(t *testing.T) {
	repo, backend, err := badgerstore.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})

	service, err := NewService(repo, nil)
	require.NoError(t, err)

	_, ok := service.IngestionStatus("cap-1")
	assert.False(t, ok)
}
