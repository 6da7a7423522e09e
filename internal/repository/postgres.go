package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/unihaven/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres реализует Store поверх пула pgx
type Postgres struct {
	pool *pgxpool.Pool
	*pgRepositories
}

type pgRepositories struct {
	accommodations *AccommodationRepository
	slots          *SlotRepository
	reservations   *ReservationRepository
	members        *MemberRepository
	universities   *UniversityRepository
	ratings        *RatingRepository
	actionLogs     *ActionLogRepository
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{
		pool:           pool,
		pgRepositories: newPgRepositories(pool),
	}
}

func newPgRepositories(db base.DBTX) *pgRepositories {
	return &pgRepositories{
		accommodations: NewAccommodationRepository(db),
		slots:          NewSlotRepository(db),
		reservations:   NewReservationRepository(db),
		members:        NewMemberRepository(db),
		universities:   NewUniversityRepository(db),
		ratings:        NewRatingRepository(db),
		actionLogs:     NewActionLogRepository(db),
	}
}

func (r *pgRepositories) Accommodations() AccommodationStore { return r.accommodations }
func (r *pgRepositories) Slots() SlotStore                   { return r.slots }
func (r *pgRepositories) Reservations() ReservationStore     { return r.reservations }
func (r *pgRepositories) Members() MemberStore               { return r.members }
func (r *pgRepositories) Universities() UniversityStore      { return r.universities }
func (r *pgRepositories) Ratings() RatingStore               { return r.ratings }
func (r *pgRepositories) ActionLogs() ActionLogStore         { return r.actionLogs }

// WithinTx выполняет fn в одной транзакции; ошибка fn откатывает всё
func (p *Postgres) WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	// Начинаем транзакцию
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, newPgRepositories(tx)); err != nil {
		return err
	}

	// Коммитим транзакцию
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
