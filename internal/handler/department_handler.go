package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/org-hierarchy-api/internal/domain"
	"github.com/org-hierarchy-api/internal/dto"
	"github.com/org-hierarchy-api/internal/service"
)

type DepartmentHandler struct {
	deptService service.DepartmentService
	empService  service.EmployeeService
	validator   *validator.Validate
	logger      *slog.Logger
}

func NewDepartmentHandler(
	deptService service.DepartmentService,
	empService service.EmployeeService,
	logger *slog.Logger,
) *DepartmentHandler {
	return &DepartmentHandler{
		deptService: deptService,
		empService:  empService,
		validator:   validator.New(),
		logger:      logger,
	}
}

func (h *DepartmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateDepartmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusUnprocessableEntity, "invalid request body", err.Error())
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		h.respondError(w, http.StatusUnprocessableEntity, "validation error", err.Error())
		return
	}

	dept, err := h.deptService.Create(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toDepartmentResponse(dept))
}

func (h *DepartmentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := h.extractID(r)
	if err != nil {
		h.respondError(w, http.StatusUnprocessableEntity, "invalid department id", err.Error())
		return
	}

	query, err := h.parseGetQuery(r)
	if err != nil {
		h.respondError(w, http.StatusUnprocessableEntity, "invalid query", err.Error())
		return
	}
	if err := h.validator.Struct(&query); err != nil {
		h.respondError(w, http.StatusUnprocessableEntity, "validation error", err.Error())
		return
	}

	tree, err := h.deptService.GetTree(r.Context(), id, &query)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toTreeResponse(tree, query.IncludeEmployees))
}

func (h *DepartmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := h.extractID(r)
	if err != nil {
		h.respondError(w, http.StatusUnprocessableEntity, "invalid department id", err.Error())
		return
	}

	var req dto.UpdateDepartmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusUnprocessableEntity, "invalid request body", err.Error())
		return
	}

	if req.ParentID.Value != nil && *req.ParentID.Value < 0 {
		h.respondError(w, http.StatusUnprocessableEntity, "validation error", "parent_id must not be negative")
		return
	}

	dept, err := h.deptService.Update(r.Context(), id, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toDepartmentResponse(dept))
}

func (h *DepartmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := h.extractID(r)
	if err != nil {
		h.respondError(w, http.StatusUnprocessableEntity, "invalid department id", err.Error())
		return
	}

	query, err := h.parseDeleteQuery(r)
	if err != nil {
		h.respondError(w, http.StatusUnprocessableEntity, "invalid query", err.Error())
		return
	}
	if err := h.validator.Struct(&query); err != nil {
		h.respondError(w, http.StatusUnprocessableEntity, "validation error", err.Error())
		return
	}

	if _, err := h.deptService.Delete(r.Context(), id, &query); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, dto.DeleteResponse{Status: "deleted"})
}

func (h *DepartmentHandler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	deptID, err := h.extractID(r)
	if err != nil {
		h.respondError(w, http.StatusUnprocessableEntity, "invalid department id", err.Error())
		return
	}

	var req dto.CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusUnprocessableEntity, "invalid request body", err.Error())
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		h.respondError(w, http.StatusUnprocessableEntity, "validation error", err.Error())
		return
	}

	emp, err := h.empService.Create(r.Context(), deptID, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toEmployeeResponse(emp))
}

func (h *DepartmentHandler) extractID(r *http.Request) (int64, error) {
	path := strings.TrimPrefix(r.URL.Path, "/departments/")
	path = strings.TrimSuffix(path, "/")
	path = strings.TrimSuffix(path, "/employees")

	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] == "" {
		return 0, errors.New("id is required")
	}

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("id must be a positive integer, got %q", parts[0])
	}
	return id, nil
}

func (h *DepartmentHandler) parseGetQuery(r *http.Request) (dto.GetDepartmentQuery, error) {
	query := dto.GetDepartmentQuery{
		Depth:            1,
		IncludeEmployees: true,
	}

	if depthStr := r.URL.Query().Get("depth"); depthStr != "" {
		depth, err := strconv.Atoi(depthStr)
		if err != nil {
			return query, fmt.Errorf("depth must be an integer, got %q", depthStr)
		}
		query.Depth = depth
	}

	if includeStr := r.URL.Query().Get("include_employees"); includeStr != "" {
		include, err := strconv.ParseBool(includeStr)
		if err != nil {
			return query, fmt.Errorf("include_employees must be a boolean, got %q", includeStr)
		}
		query.IncludeEmployees = include
	}

	return query, nil
}

func (h *DepartmentHandler) parseDeleteQuery(r *http.Request) (dto.DeleteDepartmentQuery, error) {
	query := dto.DeleteDepartmentQuery{
		Mode: r.URL.Query().Get("mode"),
	}

	if reassignStr := r.URL.Query().Get("reassign_to_department_id"); reassignStr != "" {
		reassignID, err := strconv.ParseInt(reassignStr, 10, 64)
		if err != nil {
			return query, fmt.Errorf("reassign_to_department_id must be an integer, got %q", reassignStr)
		}
		query.ReassignToDepartmentID = &reassignID
	}

	return query, nil
}

func toDepartmentResponse(dept *domain.Department) dto.DepartmentResponse {
	return dto.DepartmentResponse{
		ID:        dept.ID,
		Name:      dept.Name,
		ParentID:  dept.ParentID,
		CreatedAt: dept.CreatedAt,
	}
}

// toTreeResponse переводит собранное дерево в ответ; сотрудники отбрасываются на каждом уровне, если includeEmployees=false
func toTreeResponse(node *domain.DepartmentNode, includeEmployees bool) dto.DepartmentTreeResponse {
	resp := dto.DepartmentTreeResponse{
		Department: toDepartmentResponse(&node.Department),
		Children:   make([]dto.DepartmentTreeResponse, len(node.Children)),
	}

	if includeEmployees {
		resp.Employees = make([]dto.EmployeeResponse, len(node.Employees))
		for i := range node.Employees {
			resp.Employees[i] = toEmployeeResponse(&node.Employees[i])
		}
	}

	for i, child := range node.Children {
		resp.Children[i] = toTreeResponse(child, includeEmployees)
	}

	return resp
}

func toEmployeeResponse(emp *domain.Employee) dto.EmployeeResponse {
	resp := dto.EmployeeResponse{
		ID:           emp.ID,
		DepartmentID: emp.DepartmentID,
		FullName:     emp.FullName,
		Position:     emp.Position,
		CreatedAt:    emp.CreatedAt,
	}

	if emp.HiredAt != nil {
		hiredAt := emp.HiredAt.Format("2006-01-02")
		resp.HiredAt = &hiredAt
	}

	return resp
}

// handleServiceError выбирает статус по категории ошибки.
// Конфликт имён считается ошибкой валидации (400), цикл в иерархии - конфликтом (409).
func (h *DepartmentHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch domain.KindOf(err) {
	case domain.KindValidation, domain.KindConflict:
		h.respondError(w, http.StatusBadRequest, err.Error(), "")
	case domain.KindNotFound:
		h.respondError(w, http.StatusNotFound, err.Error(), "")
	case domain.KindCycle:
		h.respondError(w, http.StatusConflict, err.Error(), "")
	default:
		h.logger.Error("internal error", slog.Any("error", err))
		h.respondError(w, http.StatusInternalServerError, "internal server error", "")
	}
}

func (h *DepartmentHandler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", slog.Any("error", err))
	}
}

func (h *DepartmentHandler) respondError(w http.ResponseWriter, status int, errMsg, details string) {
	w.WriteHeader(status)
	resp := dto.ErrorResponse{Error: errMsg}
	if details != "" {
		resp.Message = details
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to encode error response", slog.Any("error", err))
	}
}
