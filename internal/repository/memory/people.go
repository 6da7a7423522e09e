package memory

import (
	"context"
	"sort"

	"github.com/Freeeeeet/unihaven/internal/model"
	"github.com/google/uuid"
)

type members struct{ s *Store }

func (r members) GetMember(_ context.Context, id int64) (*model.Member, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.s.st.members[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r members) GetSpecialist(_ context.Context, id int64) (*model.Specialist, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sp, ok := r.s.st.specialists[id]
	if !ok {
		return nil, nil
	}
	return &sp, nil
}

func (r members) ListSpecialistsByUniversity(_ context.Context, universityID int64) ([]*model.Specialist, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var result []*model.Specialist
	for _, sp := range r.s.st.specialists {
		if sp.UniversityID != universityID {
			continue
		}
		sp := sp
		result = append(result, &sp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

type universities struct{ s *Store }

func (r universities) GetByID(_ context.Context, id int64) (*model.University, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.st.universities[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r universities) GetByToken(_ context.Context, token string) (*model.University, error) {
	parsed, err := uuid.Parse(token)
	if err != nil {
		return nil, nil
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.st.universities {
		if u.Token == parsed {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r universities) GetCampus(_ context.Context, id int64) (*model.Campus, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.st.campuses[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}
