package httpapi

import (
	"net/http"

	"github.com/Freeeeeet/unihaven/internal/repository"
	"github.com/Freeeeeet/unihaven/internal/service"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// Handler serves the JSON API on top of the domain services.
type Handler struct {
	accommodations *service.AccommodationService
	reservations   *service.ReservationService
	ratings        *service.RatingService
	audit          *service.AuditService
	validate       *validator.Validate
	logger         *zap.Logger
}

func NewHandler(
	accommodations *service.AccommodationService,
	reservations *service.ReservationService,
	ratings *service.RatingService,
	audit *service.AuditService,
	logger *zap.Logger,
) *Handler {
	validate := validator.New()
	validate.RegisterTagNameFunc(jsonTagName)

	return &Handler{
		accommodations: accommodations,
		reservations:   reservations,
		ratings:        ratings,
		audit:          audit,
		validate:       validate,
		logger:         logger,
	}
}

// NewRouter wires all routes. Everything under /api requires a university token.
// A nil limiter disables rate limiting.
func NewRouter(h *Handler, universities repository.UniversityStore, limiter *RateLimiter, allowedOrigins []string) http.Handler {
	router := mux.NewRouter()
	router.Use(requestLogger(h.logger), securityHeaders)
	if limiter != nil {
		router.Use(limiter.Limit)
	}

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(requireToken(universities, h.logger))

	api.HandleFunc("/accommodations", h.CreateAccommodation).Methods(http.MethodPost)
	api.HandleFunc("/accommodations/search", h.SearchAccommodations).Methods(http.MethodGet)
	api.HandleFunc("/accommodations/{id:[0-9]+}", h.GetAccommodation).Methods(http.MethodGet)
	api.HandleFunc("/accommodations/{id:[0-9]+}", h.DeleteAccommodation).Methods(http.MethodDelete)
	api.HandleFunc("/accommodations/{id:[0-9]+}/slots", h.ListSlots).Methods(http.MethodGet)
	api.HandleFunc("/accommodations/{id:[0-9]+}/reserve", h.Reserve).Methods(http.MethodPost)
	api.HandleFunc("/accommodations/{id:[0-9]+}/add-availability", h.AddAvailability).Methods(http.MethodPost)
	api.HandleFunc("/accommodations/{id:[0-9]+}/mark-unavailable", h.MarkUnavailable).Methods(http.MethodPost)

	api.HandleFunc("/reservations", h.ListReservations).Methods(http.MethodGet)
	api.HandleFunc("/reservations", h.CreateReservation).Methods(http.MethodPost)
	api.HandleFunc("/reservations/{id:[0-9]+}", h.GetReservation).Methods(http.MethodGet)
	api.HandleFunc("/reservations/{id:[0-9]+}/cancel", h.CancelReservation).Methods(http.MethodPost)
	api.HandleFunc("/reservations/{id:[0-9]+}/update-status", h.UpdateReservationStatus).Methods(http.MethodPost)
	api.HandleFunc("/members/{id:[0-9]+}/reservations", h.ListMemberReservations).Methods(http.MethodGet)

	api.HandleFunc("/ratings", h.ListRatings).Methods(http.MethodGet)
	api.HandleFunc("/ratings", h.CreateRating).Methods(http.MethodPost)
	api.HandleFunc("/ratings/pending", h.PendingRatings).Methods(http.MethodGet)
	api.HandleFunc("/ratings/{id:[0-9]+}/moderate", h.ModerateRating).Methods(http.MethodPost)

	api.HandleFunc("/action-logs", h.ListActionLogs).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	return c.Handler(router)
}
