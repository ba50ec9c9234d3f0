package processor

import (
	"bytes"
	_ "embed"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed document.schema.json
var schemaSource string

var documentSchema = jsonschema.MustCompileString("document.schema.json", schemaSource)

// Validate checks an encoded document against the processor document schema.
func Validate(raw []byte) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return errors.Wrap(err, "decoding processor document")
	}
	return errors.Wrap(documentSchema.Validate(v), "processor document")
}
