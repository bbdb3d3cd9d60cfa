package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"eassistant/internal/types"
)

// CleanJSON prepares a model answer for decoding: markdown fences are
// stripped, and if the remainder is not valid JSON one repair pass
// runs. The result is best effort; callers surface decode errors.
func CleanJSON(raw string) string {
	body := stripFences(raw)
	if json.Valid([]byte(body)) {
		return body
	}
	if repaired, err := jsonrepair.JSONRepair(body); err == nil {
		return repaired
	}
	return body
}

// stripFences removes a surrounding markdown code fence, if any.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.Index(s, "```json"); idx >= 0 {
		s = s[idx+len("```json"):]
		if end := strings.Index(s, "```"); end >= 0 {
			s = s[:end]
		}
	} else if idx := strings.Index(s, "```"); idx >= 0 {
		s = s[idx+3:]
		if end := strings.Index(s, "```"); end >= 0 {
			s = s[:end]
		}
	}
	return strings.TrimSpace(s)
}

// decodeInfo turns the extraction answer into structured info.
func decodeInfo(raw string) (*types.ExtractedInfo, error) {
	var info types.ExtractedInfo
	if err := json.Unmarshal([]byte(CleanJSON(raw)), &info); err != nil {
		return nil, fmt.Errorf("decode extracted info: %w", err)
	}
	return &info, nil
}
