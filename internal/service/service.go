package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/unihaven/internal/availability"
	"github.com/Freeeeeet/unihaven/internal/model"
	"github.com/Freeeeeet/unihaven/internal/notify"
	"github.com/Freeeeeet/unihaven/internal/repository"
)

// Caller is the authenticated university on whose behalf a request runs.
type Caller struct {
	UniversityID int64
}

// Notifier receives events after the transaction that produced them has committed.
type Notifier interface {
	Dispatch(event notify.Event)
}

func parseDateRange(fromRaw, toRaw, fromField, toField string) (time.Time, time.Time, error) {
	from, err := availability.ParseDate(fromRaw)
	if err != nil {
		return time.Time{}, time.Time{}, validationf("invalid date format for %s, use YYYY-MM-DD", fromField)
	}
	to, err := availability.ParseDate(toRaw)
	if err != nil {
		return time.Time{}, time.Time{}, validationf("invalid date format for %s, use YYYY-MM-DD", toField)
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, validationf("%s must not be after %s", fromField, toField)
	}
	return from, to, nil
}

// visibleAccommodation loads an accommodation linked to the caller's university.
// Accommodations of other universities are reported as missing.
func visibleAccommodation(ctx context.Context, repos repository.Repositories, caller Caller, id int64, lock bool) (*model.Accommodation, error) {
	var (
		acc *model.Accommodation
		err error
	)
	if lock {
		acc, err = repos.Accommodations().LockByID(ctx, id)
	} else {
		acc, err = repos.Accommodations().GetByID(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get accommodation: %w", err)
	}
	if acc == nil || !acc.ServesUniversity(caller.UniversityID) {
		return nil, notFoundf("accommodation %d not found", id)
	}
	return acc, nil
}

func logAction(ctx context.Context, repos repository.Repositories, entry *model.ActionLog) error {
	if err := repos.ActionLogs().Create(ctx, entry); err != nil {
		return fmt.Errorf("create action log: %w", err)
	}
	return nil
}

func int64Ptr(v int64) *int64 {
	return &v
}
