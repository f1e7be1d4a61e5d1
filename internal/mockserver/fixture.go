package mockserver

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures/completed.json
var completedFixture []byte

// Scenarios mirror the outcomes the analysis backend reports
const (
	ScenarioCompleted       = "completed"
	ScenarioNoTenders       = "no_tenders_found"
	ScenarioTechnicalFailed = "technical_analysis_failed"
	ScenarioPricingFailed   = "pricing_failed"
)

// ScenarioBody returns the response body for a named scenario
func ScenarioBody(name string) ([]byte, error) {
	switch name {
	case "", ScenarioCompleted:
		out := make([]byte, len(completedFixture))
		copy(out, completedFixture)
		return out, nil
	case ScenarioNoTenders, ScenarioTechnicalFailed, ScenarioPricingFailed:
		return json.Marshal(map[string]string{"status": name})
	default:
		return nil, fmt.Errorf("unknown scenario: %s", name)
	}
}

// LoadFixture reads a response body from a JSON or YAML file. YAML is
// converted to JSON with mapping key order preserved.
func LoadFixture(path string) ([]byte, error) {
	// #nosec G304 - fixture path comes from the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yamlToJSON(data)
	default:
		if !json.Valid(data) {
			return nil, fmt.Errorf("fixture %s is not valid JSON", path)
		}
		return data, nil
	}
}

func yamlToJSON(data []byte) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML fixture: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("YAML fixture is empty")
	}

	var buf bytes.Buffer
	if err := writeNode(&buf, doc.Content[0]); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeNode(buf *bytes.Buffer, node *yaml.Node) error {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			buf.WriteString("null")
			return nil
		}
		return writeNode(buf, node.Content[0])

	case yaml.AliasNode:
		return writeNode(buf, node.Alias)

	case yaml.MappingNode:
		buf.WriteByte('{')
		for i := 0; i+1 < len(node.Content); i += 2 {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(node.Content[i].Value)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := writeNode(buf, node.Content[i+1]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil

	case yaml.SequenceNode:
		buf.WriteByte('[')
		for i, child := range node.Content {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeNode(buf, child); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil

	case yaml.ScalarNode:
		var value interface{}
		if err := node.Decode(&value); err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		buf.Write(encoded)
		return nil

	default:
		return fmt.Errorf("line %d: unsupported YAML node", node.Line)
	}
}
