package httpapi

import (
	"net/http"

	"github.com/Freeeeeet/unihaven/internal/model"
	"github.com/Freeeeeet/unihaven/internal/service"
)

type accommodationResponse struct {
	*model.Accommodation
	TypeDisplay string `json:"type_display"`
	*model.RatingStats
}

type slotResponse struct {
	*model.AvailabilitySlot
	DurationDays int `json:"duration_days"`
}

type specialistRequest struct {
	SpecialistID *int64 `json:"specialist_id"`
}

type addAvailabilityRequest struct {
	StartDate    string `json:"start_date" validate:"required"`
	EndDate      string `json:"end_date" validate:"required"`
	SpecialistID *int64 `json:"specialist_id"`
}

func (h *Handler) CreateAccommodation(w http.ResponseWriter, r *http.Request) {
	var in service.CreateAccommodationInput
	if err := decodeJSON(r, &in); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	acc, err := h.accommodations.Create(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, accommodationResponse{
		Accommodation: acc,
		TypeDisplay:   acc.Type.Display(),
	})
}

func (h *Handler) GetAccommodation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	acc, err := h.accommodations.Get(r.Context(), callerFrom(r), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	stats, err := h.ratings.Stats(r.Context(), acc.ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, accommodationResponse{
		Accommodation: acc,
		TypeDisplay:   acc.Type.Display(),
		RatingStats:   stats,
	})
}

func (h *Handler) SearchAccommodations(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q := service.SearchQuery{
		Type:          query.Get("type"),
		AvailableFrom: query.Get("available_from"),
		AvailableTo:   query.Get("available_to"),
		SortBy:        query.Get("sort_by"),
	}

	var err error
	if q.MinBeds, err = queryInt(r, "min_beds", 0); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if q.MinBedrooms, err = queryInt(r, "min_bedrooms", 0); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if q.MinPrice, err = queryInt64(r, "min_price"); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if q.MaxPrice, err = queryInt64(r, "max_price"); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if q.CampusID, err = queryInt64(r, "campus_id"); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	results, err := h.accommodations.Search(r.Context(), callerFrom(r), q)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if results == nil {
		results = []service.SearchResult{}
	}

	writeJSON(w, http.StatusOK, results)
}

func (h *Handler) ListSlots(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	slots, err := h.accommodations.ListSlots(r.Context(), callerFrom(r), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]slotResponse, 0, len(slots))
	for _, slot := range slots {
		out = append(out, slotResponse{AvailabilitySlot: slot, DurationDays: slot.DurationDays()})
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) AddAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	var req addAvailabilityRequest
	if err := h.decode(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	slot, err := h.accommodations.AddAvailability(r.Context(), callerFrom(r), id, req.StartDate, req.EndDate, req.SpecialistID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, slot)
}

func (h *Handler) MarkUnavailable(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	var req specialistRequest
	if err := decodeOptional(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	acc, err := h.accommodations.MarkUnavailable(r.Context(), callerFrom(r), id, req.SpecialistID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, accommodationResponse{
		Accommodation: acc,
		TypeDisplay:   acc.Type.Display(),
	})
}

func (h *Handler) DeleteAccommodation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	var req specialistRequest
	if err := decodeOptional(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	name, err := h.accommodations.Delete(r.Context(), callerFrom(r), id, req.SpecialistID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{Status: "accommodation " + name + " deleted"})
}
