package ingestion

import (
	"testing"

	"github.com/poiesic/stratum/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clusterTestAtom(statement string, vector []float32) *core.Atom {
	return &core.Atom{
		Id:        core.IDFromContent(statement),
		Statement: statement,
		Vector:    vector,
	}
}

func TestClusterAtomsGroupsBySimilarity(t *testing.T) {
	atoms := []*core.Atom{
		clusterTestAtom("first topic", []float32{1, 0, 0}),
		clusterTestAtom("same topic again", []float32{0.99, 0.05, 0}),
		clusterTestAtom("something else entirely", []float32{0, 1, 0}),
	}

	clusters := clusterAtoms(atoms, 0.80)

	require.Len(t, clusters, 2)
	assert.Equal(t, []core.ID{atoms[0].Id, atoms[1].Id}, clusters[0].ItemIds)
	assert.Equal(t, []core.ID{atoms[2].Id}, clusters[1].ItemIds)
}

func TestClusterAtomsTieBreaksToLowestIndex(t *testing.T) {
	// The third atom scores identically against both existing clusters;
	// it must join the first one.
	atoms := []*core.Atom{
		clusterTestAtom("axis one", []float32{1, 0}),
		clusterTestAtom("axis two", []float32{0, 1}),
		clusterTestAtom("diagonal", []float32{0.7071, 0.7071}),
	}

	clusters := clusterAtoms(atoms, 0.70)

	require.Len(t, clusters, 2)
	assert.Equal(t, []core.ID{atoms[0].Id, atoms[2].Id}, clusters[0].ItemIds)
	assert.Equal(t, []core.ID{atoms[1].Id}, clusters[1].ItemIds)
}

func TestClusterAtomsIsDeterministic(t *testing.T) {
	atoms := []*core.Atom{
		clusterTestAtom("alpha", []float32{1, 0, 0}),
		clusterTestAtom("beta", []float32{0.95, 0.1, 0}),
		clusterTestAtom("gamma", []float32{0, 0, 1}),
		clusterTestAtom("delta", []float32{0.1, 0.1, 0.95}),
	}

	first := clusterAtoms(atoms, 0.80)
	second := clusterAtoms(atoms, 0.80)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ItemIds, second[i].ItemIds)
		assert.Equal(t, first[i].Title, second[i].Title)
		assert.Equal(t, first[i].Summary, second[i].Summary)
	}
}

func TestClusterAtomsFallbackForMissingVectors(t *testing.T) {
	atoms := []*core.Atom{
		clusterTestAtom("has a vector", []float32{1, 0}),
		clusterTestAtom("embedding failed", nil),
		clusterTestAtom("this one too", nil),
	}

	clusters := clusterAtoms(atoms, 0.80)

	require.Len(t, clusters, 2)
	fallback := clusters[len(clusters)-1]
	assert.Equal(t, UnclusteredTitle, fallback.Title)
	assert.Equal(t, []core.ID{atoms[1].Id, atoms[2].Id}, fallback.ItemIds)
}

func TestDeriveTitleTruncatesAtWordBoundary(t *testing.T) {
	long := clusterTestAtom("this statement is quite a bit longer than the sixty character title limit allows", []float32{1})
	title := deriveTitle([]*core.Atom{long})

	assert.LessOrEqual(t, len(title), 64)
	assert.NotEqual(t, ' ', title[len(title)-1])
}

func TestDeriveSummaryCapsStatements(t *testing.T) {
	atoms := []*core.Atom{
		clusterTestAtom("one", []float32{1}),
		clusterTestAtom("two", []float32{1}),
		clusterTestAtom("three", []float32{1}),
		clusterTestAtom("four", []float32{1}),
	}

	summary := deriveSummary(atoms)
	assert.Contains(t, summary, "one")
	assert.Contains(t, summary, "three")
	assert.NotContains(t, summary, "four")
}
