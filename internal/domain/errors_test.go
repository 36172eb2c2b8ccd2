package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/org-hierarchy-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want domain.Kind
	}{
		{"nil", nil, ""},
		{"not found", domain.ErrDepartmentNotFound, domain.KindNotFound},
		{"conflict", domain.ErrDuplicateDepartmentName, domain.KindConflict},
		{"cycle", domain.ErrCyclicReference, domain.KindCycle},
		{"wrapped validation", fmt.Errorf("update department: %w", domain.ErrSelfReference), domain.KindValidation},
		{"custom validation", domain.NewValidationError("full_name cannot be empty"), domain.KindValidation},
		{"plain error", errors.New("connection refused"), domain.KindInternal},
		{"corrupted hierarchy", domain.ErrHierarchyCorrupted, domain.KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.KindOf(tt.err))
		})
	}
}

func TestSentinelErrorsMatchThroughWrapping(t *testing.T) {
	err := fmt.Errorf("delete department 5: %w", domain.ErrReassignTargetNotFound)

	assert.ErrorIs(t, err, domain.ErrReassignTargetNotFound)
	assert.NotErrorIs(t, err, domain.ErrReassignTargetRequired)
	assert.Equal(t, "delete department 5: target department for reassignment not found", err.Error())
}
