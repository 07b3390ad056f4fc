package orchestrator

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed scenarios/simple_storage.yaml
var defaultScenario []byte

// DefaultScenario is the built-in SimpleStorage run: compile, deploy,
// retrieve, store, retrieve.
func DefaultScenario() (*Scenario, error) {
	return ParseScenario(defaultScenario)
}

// LoadScenario reads a YAML scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return scenario, nil
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	return &scenario, nil
}

// Validate checks task names and that every dependency refers to an earlier task.
func (s *Scenario) Validate() error {
	if len(s.Tasks) == 0 {
		return fmt.Errorf("scenario %q has no tasks", s.Name)
	}

	seen := make(map[string]bool, len(s.Tasks))
	for i, task := range s.Tasks {
		if task.Name == "" {
			return fmt.Errorf("task %d has no name", i)
		}
		if task.Type == "" {
			return fmt.Errorf("task %q has no type", task.Name)
		}
		if seen[task.Name] {
			return fmt.Errorf("duplicate task name %q", task.Name)
		}
		for _, dep := range task.DependsOn {
			if !seen[dep] {
				return fmt.Errorf("task %q depends on %q, which is not an earlier task", task.Name, dep)
			}
		}
		if task.Timeout < 0 {
			return fmt.Errorf("task %q has a negative timeout", task.Name)
		}
		seen[task.Name] = true
	}
	return nil
}

// expandParams substitutes ${name} references in string values, recursing into lists and maps.
func expandParams(params map[string]interface{}, vars map[string]string) (map[string]interface{}, error) {
	if params == nil {
		return map[string]interface{}{}, nil
	}
	expanded := make(map[string]interface{}, len(params))
	for key, value := range params {
		v, err := expandValue(value, vars)
		if err != nil {
			return nil, fmt.Errorf("param %s: %w", key, err)
		}
		expanded[key] = v
	}
	return expanded, nil
}

func expandValue(value interface{}, vars map[string]string) (interface{}, error) {
	switch v := value.(type) {
	case string:
		var missing []string
		out := os.Expand(v, func(name string) string {
			val, ok := vars[name]
			if !ok {
				missing = append(missing, name)
			}
			return val
		})
		if len(missing) > 0 {
			return nil, fmt.Errorf("undefined variable(s) %s", strings.Join(missing, ", "))
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			expanded, err := expandValue(item, vars)
			if err != nil {
				return nil, err
			}
			out[i] = expanded
		}
		return out, nil
	case map[string]interface{}:
		return expandParams(v, vars)
	}
	return value, nil
}
