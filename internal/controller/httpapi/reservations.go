package httpapi

import (
	"net/http"

	"github.com/Freeeeeet/unihaven/internal/model"
	"github.com/Freeeeeet/unihaven/internal/service"
)

type reservationResponse struct {
	*model.Reservation
	StatusDisplay     string `json:"status_display"`
	AccommodationName string `json:"accommodation_name,omitempty"`
	MemberName        string `json:"member_name,omitempty"`
	DurationDays      int    `json:"duration_days"`
}

func newReservationResponse(res *model.Reservation) reservationResponse {
	out := reservationResponse{
		Reservation:   res,
		StatusDisplay: res.Status.Display(),
		DurationDays:  res.DurationDays(),
	}
	if res.Accommodation != nil {
		out.AccommodationName = res.Accommodation.Name
	}
	if res.Member != nil {
		out.MemberName = res.Member.Name
	}
	return out
}

func newReservationList(items []*model.Reservation) []reservationResponse {
	out := make([]reservationResponse, 0, len(items))
	for _, res := range items {
		out = append(out, newReservationResponse(res))
	}
	return out
}

type reserveRequest struct {
	MemberID     int64  `json:"member_id" validate:"required"`
	ReservedFrom string `json:"reserved_from" validate:"required"`
	ReservedTo   string `json:"reserved_to" validate:"required"`
	ContactName  string `json:"contact_name" validate:"required,max=100"`
	ContactPhone string `json:"contact_phone" validate:"required,max=20"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type updateStatusResponse struct {
	Message     string              `json:"message"`
	Reservation reservationResponse `json:"reservation"`
}

func (h *Handler) Reserve(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	var req reserveRequest
	if err := h.decode(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	h.createReservation(w, r, service.CreateReservationInput{
		AccommodationID: id,
		MemberID:        req.MemberID,
		ReservedFrom:    req.ReservedFrom,
		ReservedTo:      req.ReservedTo,
		ContactName:     req.ContactName,
		ContactPhone:    req.ContactPhone,
	})
}

func (h *Handler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var in service.CreateReservationInput
	if err := h.decode(r, &in); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	h.createReservation(w, r, in)
}

func (h *Handler) createReservation(w http.ResponseWriter, r *http.Request, in service.CreateReservationInput) {
	res, err := h.reservations.Create(r.Context(), callerFrom(r), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, newReservationResponse(res))
}

func (h *Handler) ListReservations(w http.ResponseWriter, r *http.Request) {
	items, err := h.reservations.ListForUniversity(r.Context(), callerFrom(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newReservationList(items))
}

func (h *Handler) GetReservation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.reservations.Get(r.Context(), callerFrom(r), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newReservationResponse(res))
}

func (h *Handler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.reservations.Cancel(r.Context(), callerFrom(r), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newReservationResponse(res))
}

func (h *Handler) UpdateReservationStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	var req updateStatusRequest
	if err := h.decode(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	res, changed, err := h.reservations.UpdateStatus(r.Context(), callerFrom(r), id, req.Status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	msg := "Status updated to " + string(res.Status)
	if !changed {
		msg = "Status unchanged"
	}

	writeJSON(w, http.StatusOK, updateStatusResponse{
		Message:     msg,
		Reservation: newReservationResponse(res),
	})
}

func (h *Handler) ListMemberReservations(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := h.reservations.ListByMember(r.Context(), callerFrom(r), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newReservationList(items))
}
