package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Freeeeeet/unihaven/internal/availability"
	"github.com/Freeeeeet/unihaven/internal/model"
	"github.com/Freeeeeet/unihaven/internal/repository"
)

func (h *Handler) ListActionLogs(w http.ResponseWriter, r *http.Request) {
	filter, err := parseLogFilter(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := queryInt(r, "page", 1)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	logs, err := h.audit.List(r.Context(), filter, page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, pageResponse[*model.ActionLog]{Page: max(page, 1), Results: logs})
}

func parseLogFilter(r *http.Request) (repository.ActionLogFilter, error) {
	query := r.URL.Query()
	filter := repository.ActionLogFilter{
		ActionType: model.ActionType(strings.ToUpper(query.Get("action_type"))),
		UserType:   strings.ToUpper(query.Get("user_type")),
	}

	var err error
	if filter.UserID, err = queryInt64(r, "user_id"); err != nil {
		return filter, err
	}
	if filter.AccommodationID, err = queryInt64(r, "accommodation_id"); err != nil {
		return filter, err
	}
	if filter.CreatedFrom, err = parseTimeParam(query.Get("start_date"), false); err != nil {
		return filter, err
	}
	if filter.CreatedTo, err = parseTimeParam(query.Get("end_date"), true); err != nil {
		return filter, err
	}

	return filter, nil
}

// parseTimeParam accepts RFC 3339 timestamps or plain dates. A plain end date
// covers the whole day.
func parseTimeParam(raw string, endOfDay bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}

	d, err := availability.ParseDate(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", raw)
	}
	if endOfDay {
		d = availability.AddDays(d, 1).Add(-time.Nanosecond)
	}
	return &d, nil
}
