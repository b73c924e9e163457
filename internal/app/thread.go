package app

import (
	"encoding/json"
	"fmt"
	"strings"
)

// parseThread validates raw model output against the expected shape: a
// JSON array of objects each carrying a "tweet" string, optionally
// wrapped in a markdown code fence. The model is not trusted to honor
// the contract, so anything else is ErrInvalidModelOutput.
func parseThread(raw string) ([]string, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var items []struct {
		Tweet *string `json:"tweet"`
	}
	if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModelOutput, err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: empty thread", ErrInvalidModelOutput)
	}

	texts := make([]string, len(items))
	for i, item := range items {
		if item.Tweet == nil {
			return nil, fmt.Errorf("%w: element %d missing tweet field", ErrInvalidModelOutput, i)
		}
		texts[i] = *item.Tweet
	}
	return texts, nil
}
