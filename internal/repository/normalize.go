package repository

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/org-hierarchy-api/internal/domain"
)

// normalizeText обрезает пробелы по краям и проверяет, что значение не пустое и укладывается в лимит
func normalizeText(raw, field string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", domain.NewValidationError(field + " cannot be empty")
	}
	if utf8.RuneCountInString(value) > domain.MaxTextLength {
		return "", domain.NewValidationError(fmt.Sprintf("%s must be at most %d characters", field, domain.MaxTextLength))
	}
	return value, nil
}

func normalizeDepartmentName(raw string) (string, error) {
	name, err := normalizeText(raw, "department name")
	if err != nil && strings.TrimSpace(raw) == "" {
		return "", domain.ErrEmptyDepartmentName
	}
	return name, err
}
