package httpapi

import (
	"net/http"

	"github.com/Freeeeeet/unihaven/internal/model"
	"github.com/Freeeeeet/unihaven/internal/service"
)

func ratingList(items []*model.Rating) []*model.Rating {
	if items == nil {
		return []*model.Rating{}
	}
	return items
}

func (h *Handler) ListRatings(w http.ResponseWriter, r *http.Request) {
	accommodationID, err := queryInt64(r, "accommodation")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := h.ratings.ListByAccommodation(r.Context(), accommodationID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ratingList(items))
}

func (h *Handler) CreateRating(w http.ResponseWriter, r *http.Request) {
	var in service.CreateRatingInput
	if err := decodeJSON(r, &in); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	rating, err := h.ratings.Create(r.Context(), callerFrom(r), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, rating)
}

func (h *Handler) PendingRatings(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := h.ratings.Pending(r.Context(), page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, pageResponse[*model.Rating]{Page: max(page, 1), Results: ratingList(items)})
}

func (h *Handler) ModerateRating(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	var in service.ModerateRatingInput
	if err := decodeJSON(r, &in); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	rating, err := h.ratings.Moderate(r.Context(), callerFrom(r), id, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, rating)
}
