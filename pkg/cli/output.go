package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Output formats accepted by -o
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func validFormat(format string) error {
	switch format {
	case formatText, formatJSON, formatYAML:
		return nil
	}
	return fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
}

// writeStructured encodes v as JSON or YAML
func writeStructured(w io.Writer, format string, v interface{}) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	}
	return validFormat(format)
}
