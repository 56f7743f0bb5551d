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


package ingestion

import (
	"math"
	"strings"

	"github.com/poiesic/stratum/core"
)

// UnclusteredTitle names the fallback cluster for atoms without a usable
// vector.
const UnclusteredTitle = "Unclustered"

// clusterAtoms groups atoms greedily by centroid similarity. The result is
// deterministic for a given atom order: each atom joins the best-scoring
// existing cluster at or above the threshold, ties resolved toward the lowest
// cluster index, otherwise it starts a new cluster. Atoms without a vector
// land together in the fallback cluster.
func clusterAtoms(atoms []*core.Atom, threshold float32) []*core.Cluster {
	type bucket struct {
		sum     []float64
		count   int
		members []*core.Atom
	}

	var buckets []*bucket
	var unclustered []*core.Atom

	for _, atom := range atoms {
		if len(atom.Vector) == 0 {
			unclustered = append(unclustered, atom)
			continue
		}

		best := -1
		var bestScore float32
		for i, b := range buckets {
			score := centroidSimilarity(atom.Vector, b.sum, b.count)
			if score >= threshold && (best == -1 || score > bestScore) {
				best = i
				bestScore = score
			}
		}

		if best == -1 {
			b := &bucket{sum: make([]float64, len(atom.Vector))}
			addToCentroid(b.sum, atom.Vector)
			b.count = 1
			b.members = []*core.Atom{atom}
			buckets = append(buckets, b)
			continue
		}

		b := buckets[best]
		addToCentroid(b.sum, atom.Vector)
		b.count++
		b.members = append(b.members, atom)
	}

	clusters := make([]*core.Cluster, 0, len(buckets)+1)
	for _, b := range buckets {
		clusters = append(clusters, &core.Cluster{
			Title:   deriveTitle(b.members),
			Summary: deriveSummary(b.members),
			ItemIds: memberIDs(b.members),
		})
	}

	if len(unclustered) > 0 {
		clusters = append(clusters, &core.Cluster{
			Title:   UnclusteredTitle,
			Summary: deriveSummary(unclustered),
			ItemIds: memberIDs(unclustered),
		})
	}

	return clusters
}

func memberIDs(atoms []*core.Atom) []core.ID {
	ids := make([]core.ID, len(atoms))
	for i, atom := range atoms {
		ids[i] = atom.Id
	}
	return ids
}

// deriveTitle takes the first member's statement, truncated at a word
// boundary.
func deriveTitle(atoms []*core.Atom) string {
	const maxTitle = 60
	title := atoms[0].Statement
	if len(title) <= maxTitle {
		return title
	}
	cut := strings.LastIndex(title[:maxTitle], " ")
	if cut <= 0 {
		cut = maxTitle
	}
	return title[:cut] + "…"
}

// deriveSummary joins the first few member statements.
func deriveSummary(atoms []*core.Atom) string {
	const maxStatements = 3
	statements := make([]string, 0, maxStatements)
	for i, atom := range atoms {
		if i >= maxStatements {
			break
		}
		statements = append(statements, atom.Statement)
	}
	summary := strings.Join(statements, "; ")
	if len(atoms) > maxStatements {
		summary += "; …"
	}
	return summary
}

// addToCentroid accumulates a vector into a centroid sum. Vectors shorter
// than the sum contribute only their own dimensions.
func addToCentroid(sum []float64, vector []float32) {
	n := len(vector)
	if len(sum) < n {
		n = len(sum)
	}
	for i := 0; i < n; i++ {
		sum[i] += float64(vector[i])
	}
}

// centroidSimilarity computes cosine similarity between a vector and a
// centroid given as a sum over count members. The count cancels out of the
// cosine, so the raw sum is compared directly.
func centroidSimilarity(vector []float32, sum []float64, count int) float32 {
	if count == 0 {
		return 0
	}

	n := len(vector)
	if len(sum) < n {
		n = len(sum)
	}

	var dot, normV, normS float64
	for i := 0; i < n; i++ {
		v := float64(vector[i])
		dot += v * sum[i]
		normV += v * v
		normS += sum[i] * sum[i]
	}
	if normV == 0 || normS == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normV) * math.Sqrt(normS)))
}
