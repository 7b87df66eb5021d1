package dialog

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidQuestions is returned for admin input that is not a non-empty
// list of strings.
var ErrInvalidQuestions = errors.New("questions must be a non-empty list of strings")

// ParseQuestions accepts a JSON array or a YAML sequence of strings.
func ParseQuestions(input string) ([]string, error) {
	var raw []string
	if err := yaml.Unmarshal([]byte(input), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuestions, err)
	}
	if len(raw) == 0 {
		return nil, ErrInvalidQuestions
	}
	out := make([]string, 0, len(raw))
	for i, q := range raw {
		q = strings.TrimSpace(q)
		if q == "" {
			return nil, fmt.Errorf("%w: item %d is empty", ErrInvalidQuestions, i+1)
		}
		out = append(out, q)
	}
	return out, nil
}
