package export

import (
	"encoding/json"
	"fmt"
)

// JSONExporter renders values into an indented structural dump, matching the
// pretty-printed download format of the original web client.
type JSONExporter struct{}

// NewJSONExporter constructs a JSON exporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// Render marshals the value with two-space indentation.
func (e *JSONExporter) Render(value interface{}) ([]byte, error) {
	out, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render json: %w", err)
	}
	return out, nil
}
