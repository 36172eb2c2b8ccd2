package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/org-hierarchy-api/internal/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

// HealthChecker проверяет доступность хранилища
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Router настраивает маршруты API
type Router struct {
	mux            *http.ServeMux
	logger         *slog.Logger
	deptHandler    *DepartmentHandler
	health         HealthChecker
	allowedOrigins []string
}

// NewRouter создаёт новый роутер
func NewRouter(deptHandler *DepartmentHandler, health HealthChecker, allowedOrigins []string, logger *slog.Logger) *Router {
	return &Router{
		mux:            http.NewServeMux(),
		logger:         logger,
		deptHandler:    deptHandler,
		health:         health,
		allowedOrigins: allowedOrigins,
	}
}

// Setup настраивает все маршруты
func (r *Router) Setup() http.Handler {
	r.mux.HandleFunc("/departments/", r.departmentsRouter)
	r.mux.HandleFunc("/departments", r.departmentsRouter)
	r.mux.HandleFunc("/health", r.healthCheck)
	r.mux.Handle("/metrics", promhttp.Handler())

	// Применяем middleware
	handler := middleware.ContentType(r.mux)
	handler = middleware.Metrics(handler)
	handler = middleware.Logger(r.logger)(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Recoverer(r.logger)(handler)

	return cors.New(cors.Options{
		AllowedOrigins: r.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
	}).Handler(handler)
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
	defer cancel()

	if err := r.health.Ping(ctx); err != nil {
		r.logger.Error("health check failed", slog.Any("error", err))
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"unavailable"}`))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// departmentsRouter обрабатывает все запросы к /departments/
func (r *Router) departmentsRouter(w http.ResponseWriter, req *http.Request) {
	path := strings.TrimPrefix(req.URL.Path, "/departments")
	path = strings.Trim(path, "/")

	// POST /departments/ - создание подразделения
	if path == "" {
		if req.Method == http.MethodPost {
			r.deptHandler.Create(w, req)
			return
		}
		http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	// Разбираем путь: может быть {id} или {id}/employees
	parts := strings.Split(path, "/")

	if len(parts) == 1 {
		// /departments/{id}
		switch req.Method {
		case http.MethodGet:
			r.deptHandler.GetByID(w, req)
		case http.MethodPatch:
			r.deptHandler.Update(w, req)
		case http.MethodDelete:
			r.deptHandler.Delete(w, req)
		default:
			http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
		}
		return
	}

	if len(parts) == 2 && parts[1] == "employees" {
		// /departments/{id}/employees/
		if req.Method == http.MethodPost {
			r.deptHandler.CreateEmployee(w, req)
			return
		}
		http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
		return
	}

	http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
}
