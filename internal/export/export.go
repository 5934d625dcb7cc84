package export

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"settlecraft/internal/convert"
)

//go:embed settlement.schema.json
var schemaJSON string

const schemaURL = "settlement.schema.json"

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiled() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString(schemaURL, schemaJSON)
	})
	return schema, schemaErr
}

// Marshal encodes res and validates the encoding.
func Marshal(res *convert.Result) ([]byte, error) {
	if res == nil || res.Settlement == nil {
		return nil, fmt.Errorf("result has no settlement")
	}
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	if err := Validate(data); err != nil {
		return nil, err
	}
	return data, nil
}

// Write encodes res to w. Nothing is written when the encoding does not
// satisfy the schema.
func Write(w io.Writer, res *convert.Result) error {
	data, err := Marshal(res)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}

// Validate checks an exported document against the settlement schema.
func Validate(data []byte) error {
	s, err := compiled()
	if err != nil {
		return fmt.Errorf("compile settlement schema: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("validate document: %w", err)
	}
	return nil
}
