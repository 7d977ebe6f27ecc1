package http

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"groomosphere-backend/internal/domain"
	"groomosphere-backend/internal/service"
)

type AdminHandler struct {
	adminSvc service.AdminService
}

func NewAdminHandler(adminSvc service.AdminService) *AdminHandler {
	return &AdminHandler{adminSvc: adminSvc}
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.adminSvc.Dashboard(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *AdminHandler) PendingBarbers(w http.ResponseWriter, r *http.Request) {
	list, err := h.adminSvc.ListPendingBarbers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list == nil {
		list = []domain.Barber{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"barbers": list})
}

func (h *AdminHandler) VerifyBarber(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.adminSvc.VerifyBarber(r.Context(), mux.Vars(r)["id"], req.Status, req.Notes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *AdminHandler) SetBarberActive(w http.ResponseWriter, r *http.Request) {
	var req activeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.IsActive == nil {
		writeError(w, r, fmt.Errorf("%w: is_active is required", domain.ErrValidation))
		return
	}
	b, err := h.adminSvc.SetBarberActive(r.Context(), mux.Vars(r)["id"], *req.IsActive)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *AdminHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	page, pageSize, err := pageParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	status := domain.BookingStatus(r.URL.Query().Get("status"))
	list, total, err := h.adminSvc.ListBookings(r.Context(), status, page, pageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookingPage{Bookings: mapBookings(list), Total: total, Page: page, PageSize: pageSize})
}

func (h *AdminHandler) Revenue(w http.ResponseWriter, r *http.Request) {
	period := domain.RevenuePeriod(r.URL.Query().Get("period"))
	points, err := h.adminSvc.Revenue(r.Context(), period)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if points == nil {
		points = []domain.RevenuePoint{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"points": points})
}
