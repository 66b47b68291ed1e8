package output

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Encodings accepted by Encode.
const (
	JSON = "json"
	YAML = "yaml"
)

// Encode renders v as indented JSON or as YAML. YAML keys follow the JSON
// field names and order.
func Encode(v any, encoding string) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	switch encoding {
	case JSON, "":
		return append(data, '\n'), nil
	case YAML:
		// JSON is YAML; decoding it into a node keeps the key order.
		var node yaml.Node
		if err := yaml.Unmarshal(data, &node); err != nil {
			return nil, fmt.Errorf("failed to convert to YAML: %w", err)
		}
		blockStyle(&node)
		return yaml.Marshal(&node)
	}
	return nil, fmt.Errorf("unsupported encoding %q (supported: json, yaml)", encoding)
}

func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}
