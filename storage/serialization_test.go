package storage

import (
	"testing"
	"time"

	"github.com/poiesic/stratum/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.IDFromContent("cap-1\x00test statement")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.Error(t, err)
}

func TestMarshalUnmarshalAtom(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	atom := &core.Atom{
		Id:         core.IDFromContent("cap-1\x00redis caches sessions"),
		CapsuleId:  "cap-1",
		Statement:  "redis caches sessions",
		Kind:       core.AtomKindDecision,
		Confidence: 90,
		Layer:      core.LayerStaging,
		Status:     core.AtomStatusActive,
		SourceName: "design.md",
		ClusterId:  4,
		Vector:     []float32{0.1, 0.2},
		Daci:       &core.DACIRoles{Driver: "jane", Contributors: []string{"li"}},
		Matrix:     &core.DecisionMatrix{Impact: core.ImpactLow, Reversibility: core.Reversible},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	data := MarshalAtom(atom)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalAtom(data)
	require.NoError(t, err)
	assert.Equal(t, atom.Id, decoded.Id)
	assert.Equal(t, atom.Statement, decoded.Statement)
	assert.Equal(t, atom.ClusterId, decoded.ClusterId)
	assert.Equal(t, atom.Vector, decoded.Vector)
	require.NotNil(t, decoded.Daci)
	assert.Equal(t, "jane", decoded.Daci.Driver)
	require.NotNil(t, decoded.Matrix)
	assert.Equal(t, core.ImpactLow, decoded.Matrix.Impact)
	assert.True(t, decoded.CreatedAt.Equal(now))

	_, err = UnmarshalAtom(data[:3])
	assert.Error(t, err)
}

func TestMarshalUnmarshalRelation(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	relation := &core.Relation{
		Id:         9,
		FromAtomId: 1,
		ToAtomId:   2,
		Type:       core.RelationSupports,
		Confidence: 75,
		CreatedAt:  now,
	}

	data := MarshalRelation(relation)
	decoded, err := UnmarshalRelation(data)
	require.NoError(t, err)
	assert.Equal(t, *relation, *decoded)
}

func TestMarshalUnmarshalCluster(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	cluster := &core.Cluster{
		Id:        3,
		CapsuleId: "cap-1",
		Title:     "Session storage",
		Summary:   "redis caches sessions",
		ItemIds:   []core.ID{1, 2},
		Decision:  core.DecisionPending,
		CreatedAt: now,
	}

	data := MarshalCluster(cluster)
	decoded, err := UnmarshalCluster(data)
	require.NoError(t, err)
	assert.Equal(t, cluster.Title, decoded.Title)
	assert.Equal(t, cluster.ItemIds, decoded.ItemIds)
	assert.Equal(t, core.DecisionPending, decoded.Decision)
	assert.True(t, decoded.DecidedAt.IsZero())
}
