package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// marshalConfig converts a run configuration to JSON TEXT for storage.
// HTML escaping is disabled and map keys are sorted, so equal configs
// store byte-identical text.
func marshalConfig(cfg any) (string, error) {
	if cfg == nil {
		return "{}", nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(cfg); err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	// Encoder adds a trailing newline
	return strings.TrimSpace(buf.String()), nil
}

// UnmarshalConfig decodes the stored config TEXT of a run into dst.
func UnmarshalConfig(data string, dst any) error {
	if data == "" {
		data = "{}"
	}
	if err := json.Unmarshal([]byte(data), dst); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	return nil
}
