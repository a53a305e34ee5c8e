package judge

import _ "embed"

// judgmentSchema constrains the JSON shape the LLM must return before any
// value from it is trusted.
//
//go:embed judgment_schema.json
var judgmentSchema []byte
