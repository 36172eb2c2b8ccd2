package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "orgstructure",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests by route and status.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "orgstructure",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Duration of HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	departmentMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "orgstructure",
		Subsystem: "hierarchy",
		Name:      "mutations_total",
		Help:      "Department and employee mutations by operation and result.",
	}, []string{"operation", "result"})

	departmentsDeleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "orgstructure",
		Subsystem: "hierarchy",
		Name:      "departments_deleted_total",
		Help:      "Departments removed, including cascaded descendants, by delete mode.",
	}, []string{"mode"})

	employeesAffected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "orgstructure",
		Subsystem: "hierarchy",
		Name:      "employees_affected_total",
		Help:      "Employees deleted or reassigned as a side effect of department deletion.",
	}, []string{"action"})

	treeSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "orgstructure",
		Subsystem: "hierarchy",
		Name:      "tree_nodes",
		Help:      "Number of departments returned by a subtree fetch.",
		Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250, 500},
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveMutation учитывает изменение с результатом (ok, validation, not_found, conflict, cycle, internal)
func ObserveMutation(operation, result string) {
	departmentMutations.WithLabelValues(operation, result).Inc()
}

// ObserveDeletion учитывает удалённые подразделения и затронутых сотрудников
func ObserveDeletion(mode string, departments, employeesDeleted, employeesMoved int64) {
	departmentsDeleted.WithLabelValues(mode).Add(float64(departments))
	if employeesDeleted > 0 {
		employeesAffected.WithLabelValues("deleted").Add(float64(employeesDeleted))
	}
	if employeesMoved > 0 {
		employeesAffected.WithLabelValues("reassigned").Add(float64(employeesMoved))
	}
}

// ObserveTreeSize records how many departments a subtree fetch assembled
func ObserveTreeSize(nodes int) {
	treeSize.Observe(float64(nodes))
}
