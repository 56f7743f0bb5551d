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


package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "same content produces same ID", content: "test content"},
		{name: "empty string", content: ""},
		{name: "capsule-scoped statement", content: "cap-1\x00The service uses PostgreSQL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("cap-1\x00statement")
	id2 := IDFromContent("cap-2\x00statement")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different capsules")
	}
}

func TestLayerCanTransitionTo(t *testing.T) {
	tests := []struct {
		name   string
		from   Layer
		to     Layer
		wantOK bool
	}{
		{name: "staging to canonical", from: LayerStaging, to: LayerCanonical, wantOK: true},
		{name: "canonical to staging", from: LayerCanonical, to: LayerStaging, wantOK: false},
		{name: "staging to exploratory", from: LayerStaging, to: LayerExploratory, wantOK: false},
		{name: "exploratory to canonical", from: LayerExploratory, to: LayerCanonical, wantOK: false},
		{name: "exploratory to staging", from: LayerExploratory, to: LayerStaging, wantOK: false},
		{name: "canonical to canonical", from: LayerCanonical, to: LayerCanonical, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.wantOK {
				t.Errorf("CanTransitionTo(%v -> %v) = %v, want %v", tt.from, tt.to, got, tt.wantOK)
			}
		})
	}
}

func TestClusterDecisionTerminal(t *testing.T) {
	if DecisionPending.Terminal() {
		t.Error("pending should not be terminal")
	}
	if !DecisionPromoted.Terminal() {
		t.Error("promoted should be terminal")
	}
	if !DecisionRejected.Terminal() {
		t.Error("rejected should be terminal")
	}
}

func TestEnumStrings(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"atom kind fact", AtomKindFact.String(), "fact"},
		{"atom kind decision", AtomKindDecision.String(), "decision"},
		{"atom kind risk", AtomKindRisk.String(), "risk"},
		{"atom kind assumption", AtomKindAssumption.String(), "assumption"},
		{"atom kind requirement", AtomKindRequirement.String(), "requirement"},
		{"atom kind unknown", AtomKind(999).String(), "unknown"},
		{"layer staging", LayerStaging.String(), "staging"},
		{"layer exploratory", LayerExploratory.String(), "exploratory"},
		{"layer canonical", LayerCanonical.String(), "canonical"},
		{"status active", AtomStatusActive.String(), "active"},
		{"status superseded", AtomStatusSuperseded.String(), "superseded"},
		{"relation supports", RelationSupports.String(), "supports"},
		{"relation contradicts", RelationContradicts.String(), "contradicts"},
		{"relation related", RelationRelated.String(), "related"},
		{"decision pending", DecisionPending.String(), "pending"},
		{"decision promoted", DecisionPromoted.String(), "promoted"},
		{"decision rejected", DecisionRejected.String(), "rejected"},
		{"ai action none", AIActionNone.String(), "none"},
		{"ai action auto-fixed", AIActionAutoFixed.String(), "auto-fixed"},
		{"ai action conflict", AIActionConflictDetected.String(), "conflict-detected"},
		{"ai action duplicate", AIActionDuplicateMerged.String(), "duplicate-merged"},
		{"impact high", ImpactHigh.String(), "high"},
		{"impact low", ImpactLow.String(), "low"},
		{"reversible", Reversible.String(), "reversible"},
		{"irreversible", Irreversible.String(), "irreversible"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("String() = %q, want %q", tt.got, tt.want)
			}
		})
	}
}
