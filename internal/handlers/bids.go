package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"freight/internal/service"
	"freight/models"
)

// CreateBidHandler обрабатывает POST /api/bids
func (h *Handler) CreateBidHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	defer r.Body.Close()

	var dto models.BidDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.writeError(w, fmt.Errorf("%w: invalid JSON format", service.ErrInvalidInput))
		return
	}

	bid, err := h.Service.CreateBid(r.Context(), &dto)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, Response{
		Success: true,
		Payload: bid,
		Message: "Bid created successfully",
	})
}

// GetBidHandler обрабатывает GET /api/bids/{id}
func (h *Handler) GetBidHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		h.writeError(w, err)
		return
	}

	bid, err := h.Service.GetBidByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, Response{
		Success: true,
		Payload: bid,
		Message: "Bid fetched successfully",
	})
}

// UpdateBidStatusHandler обрабатывает PUT /api/bids/{id}/status
func (h *Handler) UpdateBidStatusHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		h.writeError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	var input struct {
		Status    string `json:"status"`
		UpdatedBy int    `json:"updated_by"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeError(w, fmt.Errorf("%w: invalid JSON format", service.ErrInvalidInput))
		return
	}
	defer r.Body.Close()

	bid, err := h.Service.UpdateBidStatus(r.Context(), id, input.Status, input.UpdatedBy)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, Response{
		Success: true,
		Payload: bid,
		Message: "Bid status updated successfully",
	})
}

// GetApplicationBidsHandler обрабатывает GET /api/applications/{id}/bids
func (h *Handler) GetApplicationBidsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		h.writeError(w, err)
		return
	}

	bids, err := h.Service.GetBidsApplicationID(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, Response{
		Success: true,
		Payload: bids,
		Message: "Bids fetched successfully",
	})
}
