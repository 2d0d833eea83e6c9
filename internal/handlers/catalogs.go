package handlers

import (
	"net/http"
)

// GetLoadTypesHandler обрабатывает GET /api/applications/load/types
func (h *Handler) GetLoadTypesHandler(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.GetLoadTypes(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, Response{
		Success: true,
		Payload: items,
		Message: "Load Types fetched successfully",
	})
}

// GetTransportTypesHandler обрабатывает GET /api/applications/transport/types
func (h *Handler) GetTransportTypesHandler(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.GetTransportTypes(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, Response{
		Success: true,
		Payload: items,
		Message: "Transport Types fetched successfully",
	})
}

// GetPaymentOptionsHandler обрабатывает GET /api/applications/payment/options:
// условия и способы оплаты одним ответом
func (h *Handler) GetPaymentOptionsHandler(w http.ResponseWriter, r *http.Request) {
	conditions, err := h.Service.GetPaymentConditions(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	methods, err := h.Service.GetPaymentMethods(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, Response{
		Success: true,
		Payload: map[string]interface{}{
			"conditions": conditions,
			"methods":    methods,
		},
		Message: "Payment options fetched successfully",
	})
}
