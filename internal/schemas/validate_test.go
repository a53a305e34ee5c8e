package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scoreSchema = []byte(`{
	"type": "object",
	"required": ["correctness"],
	"properties": {
		"correctness": {"type": "number", "minimum": 0, "maximum": 1}
	}
}`)

func TestValidate_ConformingDocument(t *testing.T) {
	assert.NoError(t, Validate([]byte(`{"correctness": 0.8}`), scoreSchema))
}

func TestValidate_MissingRequiredField(t *testing.T) {
	err := Validate([]byte(`{}`), scoreSchema)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Len(t, ve.Errors, 1)
	assert.Contains(t, ve.Error(), "correctness")
}

func TestValidate_OutOfRangeValue(t *testing.T) {
	err := Validate([]byte(`{"correctness": 1.5}`), scoreSchema)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestValidate_MalformedSchema(t *testing.T) {
	err := Validate([]byte(`{}`), []byte(`{"type": 42}`))
	var le *SchemaLoadError
	require.ErrorAs(t, err, &le)
}
