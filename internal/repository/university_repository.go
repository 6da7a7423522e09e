package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/unihaven/internal/model"
	"github.com/Freeeeeet/unihaven/internal/repository/base"
	"github.com/google/uuid"
)

type UniversityRepository struct {
	*base.Repository
}

func NewUniversityRepository(db base.DBTX) *UniversityRepository {
	return &UniversityRepository{Repository: base.NewRepository(db)}
}

// GetByID получает университет по ID
func (r *UniversityRepository) GetByID(ctx context.Context, id int64) (*model.University, error) {
	query := `
		SELECT id, name, country, address, token, created_at
		FROM universities
		WHERE id = $1
	`

	var u model.University
	err := r.QueryRow(ctx, query, id).Scan(&u.ID, &u.Name, &u.Country, &u.Address, &u.Token, &u.CreatedAt)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get university by id: %w", err)
	}

	return &u, nil
}

// GetByToken получает университет по API токену
func (r *UniversityRepository) GetByToken(ctx context.Context, token string) (*model.University, error) {
	parsed, err := uuid.Parse(token)
	if err != nil {
		return nil, nil
	}

	query := `
		SELECT id, name, country, address, token, created_at
		FROM universities
		WHERE token = $1
	`

	var u model.University
	err = r.QueryRow(ctx, query, parsed).Scan(&u.ID, &u.Name, &u.Country, &u.Address, &u.Token, &u.CreatedAt)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get university by token: %w", err)
	}

	return &u, nil
}

// GetCampus получает кампус по ID
func (r *UniversityRepository) GetCampus(ctx context.Context, id int64) (*model.Campus, error) {
	query := `
		SELECT id, university_id, name, latitude, longitude, created_at
		FROM campuses
		WHERE id = $1
	`

	var c model.Campus
	err := r.QueryRow(ctx, query, id).Scan(&c.ID, &c.UniversityID, &c.Name, &c.Latitude, &c.Longitude, &c.CreatedAt)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get campus by id: %w", err)
	}

	return &c, nil
}
