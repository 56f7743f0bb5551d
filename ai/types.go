package ai

// AtomKinds defines the valid categories for extracted atoms.
// These values are embedded into extraction prompts and parsed by callers.
var AtomKinds = []string{
	"fact",
	"decision",
	"risk",
	"assumption",
	"requirement",
}

// RelationTypes defines the valid relation categories between atoms.
var RelationTypes = []string{
	"supports",
	"contradicts",
	"related",
}

// Impacts defines the valid impact classifications for decisions.
var Impacts = []string{
	"high",
	"low",
}

// Reversibilities defines the valid reversibility classifications for decisions.
var Reversibilities = []string{
	"reversible",
	"irreversible",
}
