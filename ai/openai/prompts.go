package openai

import (
	"fmt"
	"strings"

	"github.com/poiesic/stratum/ai"
)

const extractionResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "atoms": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "statement": {
            "type": "string"
          },
          "kind": {
            "type": "string"
          },
          "confidence": {
            "type": "integer",
            "minimum": 0,
            "maximum": 100
          },
          "daci": {
            "type": "object",
            "properties": {
              "driver": {"type": "string"},
              "approver": {"type": "string"},
              "contributors": {"type": "array", "items": {"type": "string"}},
              "informed": {"type": "array", "items": {"type": "string"}}
            }
          },
          "matrix": {
            "type": "object",
            "properties": {
              "impact": {"type": "string"},
              "reversibility": {"type": "string"}
            }
          }
        },
        "required": ["statement", "kind", "confidence"],
        "additionalProperties": false
      }
    },
    "relations": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "from": {"type": "integer", "minimum": 0},
          "to": {"type": "integer", "minimum": 0},
          "type": {"type": "string"},
          "confidence": {"type": "integer", "minimum": 0, "maximum": 100}
        },
        "required": ["from", "to", "type", "confidence"],
        "additionalProperties": false
      }
    }
  },
  "required": ["atoms", "relations"],
  "additionalProperties": false
}`

const extractionPromptTemplate = `Distill the given document into discrete knowledge atoms and return them as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- Each atom is a single standalone statement. It must be understandable without the surrounding document.
- The kind field must match exactly one of: %s.
- Confidence is an integer from 0 (pure speculation) to 100 (stated verbatim in the document).
- Attach daci and matrix ONLY to atoms of kind "decision". For daci, name the driver and approver if the
  document identifies them. For matrix, impact is one of: %s; reversibility is one of: %s.
- Relations link atoms by their zero-based index in the atoms array. The type field must match exactly
  one of: %s.
- Include only statements that are explicitly made or clearly implied by the document. Do not hallucinate.
- If nothing can be distilled, return "atoms": [] and "relations": [].
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Input: "We decided to use PostgreSQL as the primary datastore. Jane drove the decision and Marco approved it.
Since the data model is still in flux, migrating later would be painful."
Output:
{
  "atoms": [
    {"statement":"PostgreSQL is the primary datastore","kind":"decision","confidence":95,
     "daci":{"driver":"Jane","approver":"Marco","contributors":[],"informed":[]},
     "matrix":{"impact":"high","reversibility":"irreversible"}},
    {"statement":"The data model is still in flux","kind":"fact","confidence":85},
    {"statement":"Migrating away from PostgreSQL later would be costly","kind":"risk","confidence":70}
  ],
  "relations": [
    {"from":2,"to":0,"type":"related","confidence":80}
  ]
}`

// buildExtractionPrompt creates the system prompt with the atom vocabulary
// embedded.
func buildExtractionPrompt() string {
	return fmt.Sprintf(extractionPromptTemplate,
		extractionResponseSchema,
		strings.Join(ai.AtomKinds, ", "),
		strings.Join(ai.Impacts, ", "),
		strings.Join(ai.Reversibilities, ", "),
		strings.Join(ai.RelationTypes, ", "))
}

const judgeResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "action": {
      "type": "string",
      "enum": ["none", "duplicate", "conflict"]
    },
    "reasoning": {
      "type": "string"
    }
  },
  "required": ["action", "reasoning"],
  "additionalProperties": false
}`

const judgePromptTemplate = `Compare a candidate statement against an established statement and return a JSON verdict.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble or
explanation. Your output must exactly follow this schema:

%s

Rules:
- "duplicate": the two statements assert the same thing, even if phrased differently.
- "conflict": the two statements cannot both be true at the same time.
- "none": the statements coexist without contradiction.
- Reasoning is one short sentence.

Example:
Candidate: "The API rate limit is 100 requests per minute"
Established: "The API rate limit is 500 requests per minute"
Output:
{"action":"conflict","reasoning":"The statements assert different rate limits for the same API."}`

// buildJudgePrompt creates the system prompt for conflict judgment.
func buildJudgePrompt() string {
	return fmt.Sprintf(judgePromptTemplate, judgeResponseSchema)
}
