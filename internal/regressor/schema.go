package regressor

import (
	"bytes"
	_ "embed"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "regressor.schema.json"

//go:embed schema.json
var schemaJSON []byte

var artifactSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		panic(errors.Wrap(err, "add regressor schema"))
	}
	return compiler.MustCompile(schemaURL)
}

// validateSchema checks raw artifact bytes against the embedded schema
func validateSchema(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return errors.Wrap(err, "artifact is not valid JSON")
	}
	if err := artifactSchema.Validate(v); err != nil {
		return errors.Wrap(err, "artifact schema validation failed")
	}
	return nil
}
