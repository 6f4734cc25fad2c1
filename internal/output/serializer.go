package output

import (
	"encoding/json"
	"fmt"

	sigsyaml "sigs.k8s.io/yaml"
)

// Serializer converts a value into bytes of one output format.
type Serializer func(v any) ([]byte, error)

// SerializeYAML renders v as YAML. Field names follow json struct tags and
// map keys are sorted, so the output is deterministic.
func SerializeYAML(v any) ([]byte, error) {
	data, err := sigsyaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("serializing YAML: %w", err)
	}

	return ensureNewline(data), nil
}

// SerializeJSON renders v as indented JSON.
func SerializeJSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing JSON: %w", err)
	}

	return ensureNewline(data), nil
}

func ensureNewline(b []byte) []byte {
	if len(b) > 0 && b[len(b)-1] != '\n' {
		b = append(b, '\n')
	}

	return b
}
