package services

import (
	"encoding/json"
	"fmt"
	"strings"

	apperrors "alfredoptarigan/resume-ranker/internal/errors"
)

// ParseCriteria decodes the criteria form field: a JSON list of strings.
func ParseCriteria(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, apperrors.NewValidationError(apperrors.ErrCodeInvalidCriteria, "criteria is required", nil)
	}

	var criteria []string
	if err := json.Unmarshal([]byte(raw), &criteria); err != nil {
		return nil, apperrors.NewValidationError(apperrors.ErrCodeInvalidCriteria,
			"invalid criteria format: must be a JSON list of strings", err)
	}

	return ValidateCriteria(criteria)
}

// ValidateCriteria trims every criterion and rejects empty lists, blank
// entries and duplicates that differ only in case or spacing.
func ValidateCriteria(criteria []string) ([]string, error) {
	if len(criteria) == 0 {
		return nil, apperrors.NewValidationError(apperrors.ErrCodeInvalidCriteria, "criteria list cannot be empty", nil)
	}

	seen := make(map[string]int, len(criteria))
	out := make([]string, 0, len(criteria))
	for i, c := range criteria {
		c = strings.TrimSpace(c)
		if c == "" {
			return nil, apperrors.NewValidationError(apperrors.ErrCodeInvalidCriteria,
				fmt.Sprintf("criterion %d is blank", i+1), nil)
		}
		key := criterionKey(c)
		if prev, dup := seen[key]; dup {
			return nil, apperrors.NewValidationError(apperrors.ErrCodeInvalidCriteria,
				fmt.Sprintf("criterion %d duplicates criterion %d: %q", i+1, prev+1, c), nil)
		}
		seen[key] = i
		out = append(out, c)
	}
	return out, nil
}

// criterionKey is the comparison form of a criterion: lower case with
// runs of whitespace collapsed.
func criterionKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
