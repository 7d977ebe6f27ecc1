package http

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"groomosphere-backend/internal/domain"
	"groomosphere-backend/internal/service"
)

type BookingHandler struct {
	bookingSvc service.BookingService
}

func NewBookingHandler(bookingSvc service.BookingService) *BookingHandler {
	return &BookingHandler{bookingSvc: bookingSvc}
}

func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req createBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.bookingSvc.CreateBooking(r.Context(), req.toInput(actor.UserID))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *BookingHandler) ListMyBookings(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, pageSize, err := pageParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	status := domain.BookingStatus(r.URL.Query().Get("status"))
	list, total, err := h.bookingSvc.ListMyBookings(r.Context(), actor, status, page, pageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookingPage{Bookings: mapBookings(list), Total: total, Page: page, PageSize: pageSize})
}

func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.bookingSvc.GetBooking(r.Context(), mux.Vars(r)["id"], actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BookingHandler) TransitionBooking(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req transitionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.bookingSvc.TransitionBooking(r.Context(), mux.Vars(r)["id"], actor, req.Status, req.Notes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req cancelRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.bookingSvc.CancelBooking(r.Context(), mux.Vars(r)["id"], actor, req.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BookingHandler) RateBooking(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req rateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.bookingSvc.RateBooking(r.Context(), mux.Vars(r)["id"], actor.UserID, req.Score, req.Review)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// PaymentWebhook records the gateway's verdict for a settlement published earlier.
func (h *BookingHandler) PaymentWebhook(w http.ResponseWriter, r *http.Request) {
	var req paymentWebhookRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.BookingID == "" {
		writeError(w, r, fmt.Errorf("%w: booking_id is required", domain.ErrValidation))
		return
	}
	b, err := h.bookingSvc.ReconcilePayment(r.Context(), req.BookingID, req.Status, req.Reference)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func requireActor(r *http.Request) (domain.Actor, error) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		return domain.Actor{}, fmt.Errorf("%w: caller identity missing", domain.ErrAuthorization)
	}
	return actor, nil
}
