package service_test

import (
	"context"
	"testing"

	"github.com/Freeeeeet/unihaven/internal/model"
	"github.com/Freeeeeet/unihaven/internal/repository"
	"github.com/Freeeeeet/unihaven/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func repositoryFilter(action model.ActionType) repository.ActionLogFilter {
	return repository.ActionLogFilter{ActionType: action}
}

func repositoryAccFilter(universityID int64) repository.AccommodationFilter {
	return repository.AccommodationFilter{UniversityID: universityID}
}

func TestAuditTrail(t *testing.T) {
	f := newFixture(t, service.ReservationPolicy{})
	ctx := context.Background()
	acc := f.createAccommodation(t, accOpts{from: "2025-01-01", to: "2025-01-31"})

	res, err := f.reserve(t, acc.ID, "2025-01-10", "2025-01-15")
	require.NoError(t, err)
	_, err = f.reservations.Cancel(ctx, f.caller, res.ID)
	require.NoError(t, err)

	logs, err := f.audit.List(ctx, repository.ActionLogFilter{}, 1)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, model.ActionCancelReservation, logs[0].ActionType)
	assert.Equal(t, model.ActionCreateReservation, logs[1].ActionType)
	assert.Equal(t, model.ActionCreateAccommodation, logs[2].ActionType)
	assert.Equal(t, model.ActorSystem, logs[2].UserType)

	byMember, err := f.audit.List(ctx, repository.ActionLogFilter{
		UserType: model.ActorMember,
		UserID:   &f.member.ID,
	}, 1)
	require.NoError(t, err)
	assert.Len(t, byMember, 2)

	_, err = f.audit.List(ctx, repository.ActionLogFilter{}, 2)
	require.ErrorIs(t, err, service.ErrNotFound)
	assert.Equal(t, "no logs found", service.Message(err))
}

func TestFailedOperationsLeaveNoLog(t *testing.T) {
	f := newFixture(t, service.ReservationPolicy{})
	ctx := context.Background()
	acc := f.createAccommodation(t, accOpts{from: "2025-01-01", to: "2025-01-31"})

	_, err := f.reserve(t, acc.ID, "2025-02-10", "2025-02-15")
	require.ErrorIs(t, err, service.ErrConflict)

	_, err = f.audit.List(ctx, repositoryFilter(model.ActionCreateReservation), 1)
	require.ErrorIs(t, err, service.ErrNotFound)
}
