package assist

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/Bersy123e/offerdoffer/internal/model"
)

var (
	reFencedJSON = regexp.MustCompile("(?is)```(?:json)?\\s*([\\s\\S]*?)\\s*```")

	knownKinds = func() map[string]model.AttributeKind {
		m := make(map[string]model.AttributeKind, len(model.AllKinds))
		for _, k := range model.AllKinds {
			m[string(k)] = k
		}
		return m
	}()
)

// parseAttributes extracts the kind→value object from a model response.
// Models wrap JSON in fenced blocks or prose despite instructions, so we
// try the fence first, then the outermost braces.
func parseAttributes(text string) (map[model.AttributeKind]string, error) {
	raw, err := extractObject(text)
	if err != nil {
		return nil, err
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("malformed JSON object: %w", err)
	}

	out := make(map[model.AttributeKind]string)
	for name, v := range fields {
		kind, ok := knownKinds[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			continue // unknown field names are ignored, not errors
		}
		switch val := v.(type) {
		case string:
			if s := strings.TrimSpace(val); s != "" {
				out[kind] = s
			}
		case float64:
			out[kind] = strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", val), "0"), ".")
		}
	}
	return out, nil
}

func extractObject(text string) (string, error) {
	if m := reFencedJSON.FindStringSubmatch(text); m != nil {
		text = m[1]
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("no JSON object in response")
	}
	return text[start : end+1], nil
}

func extractArray(text string) (string, error) {
	if m := reFencedJSON.FindStringSubmatch(text); m != nil {
		text = m[1]
	}
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return "", fmt.Errorf("no JSON array in response")
	}
	return text[start : end+1], nil
}
