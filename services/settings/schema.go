package settings

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"sensornode-go/errcode"
)

// compositionSchema checks the reserved-key structure of a composition
// document. Class arguments are left to the class factories.
const compositionSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["hw"],
  "properties": {
    "hw": {"$ref": "#/definitions/container"}
  },
  "definitions": {
    "entries": {
      "type": "array",
      "items": {"$ref": "#/definitions/entry"}
    },
    "entry": {
      "type": "object",
      "minProperties": 1,
      "maxProperties": 1,
      "additionalProperties": {
        "anyOf": [{"type": "null"}, {"$ref": "#/definitions/container"}]
      }
    },
    "container": {
      "type": "object",
      "properties": {
        "name": {"type": "string"},
        "$sensors": {"$ref": "#/definitions/entries"},
        "$groups": {"$ref": "#/definitions/entries"},
        "$comms": {"$ref": "#/definitions/entries"}
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(compositionSchema)

// ValidateComposition checks doc against the composition schema. Malformed
// JSON yields FailureToParseJSON; a structural mismatch InvalidEntry with
// every violation in the message.
func ValidateComposition(doc []byte) error {
	const op = "settings.validate"
	res, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return errcode.Wrap(errcode.FailureToParseJSON, op, err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, d := range res.Errors() {
		msgs = append(msgs, fmt.Sprintf("%s: %s", d.Field(), d.Description()))
	}
	return &errcode.E{C: errcode.InvalidEntry, Op: op, Msg: strings.Join(msgs, "; ")}
}
