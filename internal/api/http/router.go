package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handlers struct {
	Bookings *BookingHandler
	Barbers  *BarberHandler
	Admin    *AdminHandler
	Store    Pinger
}

// NewRouter registers every endpoint under /api/v1. Route names key the security policy
// applied by auth.
func NewRouter(h Handlers, auth *AuthMiddleware) *mux.Router {
	router := mux.NewRouter()
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(RequestLogger, auth.Handler)

	api.HandleFunc("/health", health(h.Store)).Methods(http.MethodGet).Name("Health")

	api.HandleFunc("/bookings", h.Bookings.CreateBooking).Methods(http.MethodPost).Name("CreateBooking")
	api.HandleFunc("/bookings/mine", h.Bookings.ListMyBookings).Methods(http.MethodGet).Name("ListMyBookings")
	api.HandleFunc("/bookings/{id}", h.Bookings.GetBooking).Methods(http.MethodGet).Name("GetBooking")
	api.HandleFunc("/bookings/{id}/status", h.Bookings.TransitionBooking).Methods(http.MethodPut).Name("TransitionBooking")
	api.HandleFunc("/bookings/{id}/cancel", h.Bookings.CancelBooking).Methods(http.MethodPut).Name("CancelBooking")
	api.HandleFunc("/bookings/{id}/rate", h.Bookings.RateBooking).Methods(http.MethodPut).Name("RateBooking")

	api.HandleFunc("/barbers/nearby", h.Barbers.FindNearbyBarbers).Methods(http.MethodGet).Name("FindNearbyBarbers")
	api.HandleFunc("/barbers", h.Barbers.OnboardBarber).Methods(http.MethodPost).Name("OnboardBarber")
	api.HandleFunc("/barbers/me/location", h.Barbers.UpdateLocation).Methods(http.MethodPut).Name("UpdateBarberLocation")
	api.HandleFunc("/barbers/me", h.Barbers.UpdateProfile).Methods(http.MethodPut).Name("UpdateBarberProfile")
	api.HandleFunc("/barbers/me/availability", h.Barbers.SetAvailability).Methods(http.MethodPut).Name("SetBarberAvailability")
	api.HandleFunc("/barbers/me/stats", h.Barbers.GetStats).Methods(http.MethodGet).Name("GetBarberStats")
	api.HandleFunc("/barbers/{id}", h.Barbers.GetBarber).Methods(http.MethodGet).Name("GetBarber")

	api.HandleFunc("/admin/dashboard", h.Admin.Dashboard).Methods(http.MethodGet).Name("AdminDashboard")
	api.HandleFunc("/admin/barbers/pending", h.Admin.PendingBarbers).Methods(http.MethodGet).Name("AdminPendingBarbers")
	api.HandleFunc("/admin/barbers/{id}/verify", h.Admin.VerifyBarber).Methods(http.MethodPut).Name("AdminVerifyBarber")
	api.HandleFunc("/admin/barbers/{id}/active", h.Admin.SetBarberActive).Methods(http.MethodPut).Name("AdminSetBarberActive")
	api.HandleFunc("/admin/bookings", h.Admin.ListBookings).Methods(http.MethodGet).Name("AdminListBookings")
	api.HandleFunc("/admin/revenue", h.Admin.Revenue).Methods(http.MethodGet).Name("AdminRevenue")

	api.HandleFunc("/payments/webhook", h.Bookings.PaymentWebhook).Methods(http.MethodPost).Name("PaymentWebhook")

	return router
}

func health(store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := store.Ping(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
