package submitlead

import "lead-gateway/internal/common/validation"

// envelopeSchema only constrains the parts of the body the gateway touches.
// Everything else passes through untouched.
const envelopeSchema = `{
	"type": "object",
	"properties": {
		"leads": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"fields": {"type": ["object", "null"]},
					"properties": {"type": ["object", "null"]}
				}
			}
		}
	}
}`

var envelope = validation.MustCompile(envelopeSchema)

// GetEnvelopeSchema returns the compiled request envelope schema.
func GetEnvelopeSchema() *validation.Schema {
	return envelope
}
