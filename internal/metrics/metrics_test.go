package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/departments/{id}", "200"))

	ObserveHTTPRequest("GET", "/departments/{id}", "200", 15*time.Millisecond)

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/departments/{id}", "200"))
	assert.Equal(t, before+1, after)
}

func TestObserveMutation(t *testing.T) {
	before := testutil.ToFloat64(departmentMutations.WithLabelValues("update_department", "cycle"))

	ObserveMutation("update_department", "cycle")
	ObserveMutation("update_department", "cycle")

	after := testutil.ToFloat64(departmentMutations.WithLabelValues("update_department", "cycle"))
	assert.Equal(t, before+2, after)
}

func TestObserveDeletion(t *testing.T) {
	cascadeBefore := testutil.ToFloat64(departmentsDeleted.WithLabelValues("cascade"))
	deletedBefore := testutil.ToFloat64(employeesAffected.WithLabelValues("deleted"))
	movedBefore := testutil.ToFloat64(employeesAffected.WithLabelValues("reassigned"))

	ObserveDeletion("cascade", 4, 3, 0)

	assert.Equal(t, cascadeBefore+4, testutil.ToFloat64(departmentsDeleted.WithLabelValues("cascade")))
	assert.Equal(t, deletedBefore+3, testutil.ToFloat64(employeesAffected.WithLabelValues("deleted")))
	assert.Equal(t, movedBefore, testutil.ToFloat64(employeesAffected.WithLabelValues("reassigned")))
}

func TestObserveTreeSize(t *testing.T) {
	ObserveTreeSize(3)

	assert.Equal(t, 1, testutil.CollectAndCount(treeSize))
}
