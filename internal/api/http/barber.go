package http

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"groomosphere-backend/internal/domain"
	"groomosphere-backend/internal/service"
)

type BarberHandler struct {
	barberSvc   service.BarberService
	matchingSvc service.MatchingService
}

func NewBarberHandler(barberSvc service.BarberService, matchingSvc service.MatchingService) *BarberHandler {
	return &BarberHandler{barberSvc: barberSvc, matchingSvc: matchingSvc}
}

func (h *BarberHandler) FindNearbyBarbers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("latitude") == "" || q.Get("longitude") == "" {
		writeError(w, r, fmt.Errorf("%w: latitude and longitude are required", domain.ErrValidation))
		return
	}
	lat, err := floatParam(q.Get("latitude"), "latitude")
	if err != nil {
		writeError(w, r, err)
		return
	}
	lng, err := floatParam(q.Get("longitude"), "longitude")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var radius *float64
	if raw := q.Get("radius"); raw != "" {
		km, err := floatParam(raw, "radius")
		if err != nil {
			writeError(w, r, err)
			return
		}
		radius = &km
	}

	found, err := h.matchingSvc.FindNearbyBarbers(r.Context(), domain.Coordinate{Latitude: lat, Longitude: lng}, radius)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"barbers": found})
}

func (h *BarberHandler) GetBarber(w http.ResponseWriter, r *http.Request) {
	b, err := h.barberSvc.GetProfile(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapBarberProfile(b))
}

func (h *BarberHandler) OnboardBarber(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req onboardRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.barberSvc.Onboard(r.Context(), actor, req.toInput())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *BarberHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req domain.Coordinate
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.barberSvc.UpdateLocation(r.Context(), actor, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BarberHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req availabilityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.IsAvailable == nil {
		writeError(w, r, fmt.Errorf("%w: is_available is required", domain.ErrValidation))
		return
	}
	b, err := h.barberSvc.SetAvailability(r.Context(), actor, *req.IsAvailable)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BarberHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req profileUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.barberSvc.UpdateProfile(r.Context(), actor, req.toUpdate())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BarberHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	stats, err := h.barberSvc.GetStats(r.Context(), actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
