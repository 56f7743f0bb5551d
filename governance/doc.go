// Package governance applies human review decisions to staged knowledge.
//
// The Controller promotes or rejects whole clusters: promotion moves every
// member atom to the canonical layer atomically, rejection deletes the
// members and their relations while keeping the cluster record for audit.
// Decisions are write-once; repeating one replays the recorded outcome.
// The package also covers direct authoring into the exploratory layer and
// append-only supersede of existing atoms.
package governance
