package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/unihaven/internal/model"
	"github.com/Freeeeeet/unihaven/internal/repository/base"
)

// MemberRepository reads members and specialists; both are managed outside this service.
type MemberRepository struct {
	*base.Repository
}

func NewMemberRepository(db base.DBTX) *MemberRepository {
	return &MemberRepository{Repository: base.NewRepository(db)}
}

// GetMember получает участника по ID
func (r *MemberRepository) GetMember(ctx context.Context, id int64) (*model.Member, error) {
	query := `
		SELECT id, university_id, name, email, phone, created_at
		FROM members
		WHERE id = $1
	`

	var member model.Member
	err := r.QueryRow(ctx, query, id).Scan(
		&member.ID,
		&member.UniversityID,
		&member.Name,
		&member.Email,
		&member.Phone,
		&member.CreatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get member by id: %w", err)
	}

	return &member, nil
}

// GetSpecialist получает специалиста по ID
func (r *MemberRepository) GetSpecialist(ctx context.Context, id int64) (*model.Specialist, error) {
	query := `
		SELECT id, university_id, name, email, phone, telegram_chat_id, created_at
		FROM specialists
		WHERE id = $1
	`

	var specialist model.Specialist
	err := r.QueryRow(ctx, query, id).Scan(
		&specialist.ID,
		&specialist.UniversityID,
		&specialist.Name,
		&specialist.Email,
		&specialist.Phone,
		&specialist.TelegramChatID,
		&specialist.CreatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get specialist by id: %w", err)
	}

	return &specialist, nil
}

// ListSpecialistsByUniversity получает специалистов университета
func (r *MemberRepository) ListSpecialistsByUniversity(ctx context.Context, universityID int64) ([]*model.Specialist, error) {
	query := `
		SELECT id, university_id, name, email, phone, telegram_chat_id, created_at
		FROM specialists
		WHERE university_id = $1
		ORDER BY id
	`

	rows, err := r.Query(ctx, query, universityID)
	if err != nil {
		return nil, fmt.Errorf("get specialists by university: %w", err)
	}
	defer rows.Close()

	var specialists []*model.Specialist
	for rows.Next() {
		var specialist model.Specialist
		err := rows.Scan(
			&specialist.ID,
			&specialist.UniversityID,
			&specialist.Name,
			&specialist.Email,
			&specialist.Phone,
			&specialist.TelegramChatID,
			&specialist.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan specialist: %w", err)
		}
		specialists = append(specialists, &specialist)
	}

	return specialists, rows.Err()
}
