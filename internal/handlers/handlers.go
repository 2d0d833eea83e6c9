package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"freight/internal/service"
	"freight/models"
)

// ServiceInterface - контракт сервисного слоя для обработчиков
type ServiceInterface interface {
	GetApplicationByID(ctx context.Context, id int) (*models.ApplicationPublic, error)
	CreateApplication(ctx context.Context, dto *models.ApplicationDTO) (*models.ApplicationPublic, error)
	DeleteApplicationByID(ctx context.Context, id int) error
	GetApplications(ctx context.Context, filters models.ApplicationFilters) ([]models.ApplicationPublic, error)

	GetBidByID(ctx context.Context, id int) (*models.BidPublic, error)
	CreateBid(ctx context.Context, dto *models.BidDTO) (*models.BidPublic, error)
	UpdateBidStatus(ctx context.Context, id int, status string, updatedBy int) (*models.BidPublic, error)
	GetBidsApplicationID(ctx context.Context, applicationID int) ([]models.BidPublic, error)

	GetLoadTypes(ctx context.Context) ([]models.CatalogItem, error)
	GetTransportTypes(ctx context.Context) ([]models.CatalogItem, error)
	GetPaymentMethods(ctx context.Context) ([]models.CatalogItem, error)
	GetPaymentConditions(ctx context.Context) ([]models.CatalogItem, error)
}

// Handler оборачивает Service для HTTP-доступа
type Handler struct {
	Service ServiceInterface
	Log     zerolog.Logger
	// В development отдаём наружу текст ошибки, в production только общий ответ
	Development bool
}

func NewHandler(svc ServiceInterface, log zerolog.Logger, development bool) *Handler {
	return &Handler{Service: svc, Log: log, Development: development}
}

// Единый конверт ответа
type Response struct {
	Success bool        `json:"success"`
	Payload interface{} `json:"payload,omitempty"`
	Message string      `json:"message,omitempty"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.Log.Error().Err(err).Msg("failed to encode response")
	}
}

// writeError переводит доменные ошибки в HTTP-статусы: 400 для невалидного
// входа, 404 для отсутствующих ресурсов, 500 для всего остального.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	h.Log.Error().Err(err).Msg("request failed")

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	}

	resp := Response{Success: false}
	if h.Development || status != http.StatusInternalServerError {
		resp.Message = err.Error()
	}
	h.writeJSON(w, status, resp)
}

// PingHandler отвечает "ok" для проверки сервера
func (h *Handler) PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
