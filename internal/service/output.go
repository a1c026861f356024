package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"task_tracker/internal/domain"
)

const (
	maxSubtasks      = 10
	maxSubtaskLength = 200
	// maxRawOutput bounds generator text kept in logs and run records, in bytes.
	maxRawOutput = 4 << 10
)

var (
	errNoJSONObject = errors.New("no JSON object in generator output")
	errSchema       = errors.New("generator output does not match schema")
)

// SanitizeOutput strips markdown fences and surrounding prose so only the
// outermost JSON object remains. It returns the trimmed input unchanged when
// no object is found.
func SanitizeOutput(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			// drop a language tag such as ```json
			if tag := strings.TrimSpace(s[:nl]); !strings.ContainsAny(tag, "{[") {
				s = s[nl+1:]
			}
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start >= 0 && end > start {
		s = s[start : end+1]
	}
	return s
}

// ParseOutcome turns raw generator text into a tagged outcome. Parsing is
// two-staged: a syntactic decode into a generic map, then a shape check of
// the label and subtasks fields. A missing or unknown label resolves to the
// default label; a missing subtasks field resolves to none.
func ParseOutcome(raw string) domain.EnrichmentOutcome {
	cleaned := SanitizeOutput(raw)
	if !strings.HasPrefix(cleaned, "{") {
		return domain.ParseFailureOutcome(raw, errNoJSONObject)
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return domain.ParseFailureOutcome(raw, fmt.Errorf("decode generator output: %w", err))
	}

	label := domain.DefaultLabel
	if v, ok := doc["label"]; ok && v != nil {
		s, ok := v.(string)
		if !ok {
			return domain.SchemaViolationOutcome(raw, fmt.Errorf("%w: label is %T", errSchema, v))
		}
		label = domain.CoerceLabel(s)
	}

	subtasks := []string{}
	if v, ok := doc["subtasks"]; ok && v != nil {
		items, ok := v.([]any)
		if !ok {
			return domain.SchemaViolationOutcome(raw, fmt.Errorf("%w: subtasks is %T", errSchema, v))
		}
		for i, item := range items {
			s, ok := item.(string)
			if !ok {
				return domain.SchemaViolationOutcome(raw, fmt.Errorf("%w: subtasks[%d] is %T", errSchema, i, item))
			}
			subtasks = append(subtasks, s)
		}
	}

	return domain.SuccessOutcome(label, NormalizeSubtasks(subtasks), raw)
}

// NormalizeSubtasks trims titles, drops empty ones and caps both the count and
// the length of each title.
func NormalizeSubtasks(titles []string) []string {
	res := make([]string, 0, len(titles))
	for _, t := range titles {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if utf8.RuneCountInString(t) > maxSubtaskLength {
			t = strings.TrimSpace(string([]rune(t)[:maxSubtaskLength]))
		}
		res = append(res, t)
		if len(res) == maxSubtasks {
			break
		}
	}
	return res
}

// truncateRaw cuts s to at most n bytes without splitting a rune.
func truncateRaw(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
