package seed

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/org-hierarchy-api/internal/dto"
	"github.com/org-hierarchy-api/internal/service"
	"github.com/org-hierarchy-api/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*storage.Gateway, service.DepartmentService, service.EmployeeService) {
	t.Helper()

	db, err := storage.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, storage.AutoMigrate(db))

	gw := storage.NewGateway(db, "")
	t.Cleanup(func() { _ = gw.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return gw, service.NewDepartmentService(gw, logger), service.NewEmployeeService(gw, logger)
}

func TestRun_BuildsSampleTree(t *testing.T) {
	ctx := context.Background()
	_, depts, emps := setup(t)

	stats, err := Run(ctx, depts, emps)

	require.NoError(t, err)
	assert.Equal(t, Stats{Departments: 6, Employees: 6}, stats)

	tree, err := depts.GetTree(ctx, 1, &dto.GetDepartmentQuery{Depth: 3, IncludeEmployees: true})
	require.NoError(t, err)
	assert.Equal(t, "Компания", tree.Department.Name)
	require.Len(t, tree.Children, 3)

	it := tree.Children[0]
	assert.Equal(t, "IT", it.Department.Name)
	assert.Len(t, it.Employees, 2)
	require.Len(t, it.Children, 2)
	assert.Equal(t, "Backend", it.Children[0].Department.Name)
	assert.Len(t, it.Children[0].Employees, 2)
}

func TestRun_TwiceConflictsWithoutClear(t *testing.T) {
	ctx := context.Background()
	gw, depts, emps := setup(t)

	_, err := Run(ctx, depts, emps)
	require.NoError(t, err)

	_, err = Run(ctx, depts, emps)
	assert.Error(t, err, "root name must stay unique")

	require.NoError(t, Clear(ctx, gw))

	stats, err := Run(ctx, depts, emps)
	require.NoError(t, err)
	assert.Equal(t, 6, stats.Departments)
}
