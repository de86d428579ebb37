package compiler

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var requestSchema []byte

// ErrInvalidPayload is returned when a request body does not match the request schema
var ErrInvalidPayload = errors.New("invalid evaluation payload")

var schemaLoader = gojsonschema.NewBytesLoader(requestSchema)

// Schema returns the JSON Schema of the evaluation request
func Schema() []byte {
	return append([]byte(nil), requestSchema...)
}

// ValidatePayload checks raw JSON against the request schema
func ValidatePayload(raw []byte) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: empty body", ErrInvalidPayload)
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
		}
		return fmt.Errorf("%w: %s", ErrInvalidPayload, strings.Join(msgs, "; "))
	}
	return nil
}
