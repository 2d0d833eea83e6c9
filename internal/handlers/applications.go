package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"freight/internal/service"
	"freight/models"
)

const maxBodySize = 1048576

func parseIDParam(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", service.ErrInvalidInput, name)
	}
	return id, nil
}

// parseApplicationFilters читает фильтры из query, с дефолтами page=1 limit=20.
// Верхнюю границу limit не проверяем: этим занимается валидатор сервиса.
func parseApplicationFilters(r *http.Request) models.ApplicationFilters {
	q := r.URL.Query()
	filters := models.ApplicationFilters{Page: 1, Limit: 20}

	filters.Status = q.Get("status")
	if v, err := strconv.Atoi(q.Get("user_id")); err == nil && v > 0 {
		filters.UserID = v
	}
	if v, err := strconv.Atoi(q.Get("organization_id")); err == nil && v > 0 {
		filters.OrganizationID = v
	}
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		filters.Page = v
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		filters.Limit = v
	}
	return filters
}

// GetApplicationHandler обрабатывает GET /api/applications/{id}
func (h *Handler) GetApplicationHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		h.writeError(w, err)
		return
	}

	application, err := h.Service.GetApplicationByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, Response{
		Success: true,
		Payload: application,
		Message: "Application fetched successfully",
	})
}

// GetApplicationsHandler обрабатывает GET /api/applications с фильтрами
func (h *Handler) GetApplicationsHandler(w http.ResponseWriter, r *http.Request) {
	filters := parseApplicationFilters(r)

	applications, err := h.Service.GetApplications(r.Context(), filters)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, Response{
		Success: true,
		Payload: map[string]interface{}{
			"total":        len(applications),
			"applications": applications,
		},
		Message: fmt.Sprintf("%d application(s) fetched successfully", len(applications)),
	})
}

// CreateApplicationHandler обрабатывает POST /api/applications
func (h *Handler) CreateApplicationHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	defer r.Body.Close()

	var dto models.ApplicationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.writeError(w, fmt.Errorf("%w: invalid JSON format", service.ErrInvalidInput))
		return
	}

	application, err := h.Service.CreateApplication(r.Context(), &dto)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, Response{
		Success: true,
		Payload: application,
		Message: "Application created successfully",
	})
}

// DeleteApplicationHandler обрабатывает DELETE /api/applications/{id}
func (h *Handler) DeleteApplicationHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.Service.DeleteApplicationByID(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Application is deleted",
	})
}
