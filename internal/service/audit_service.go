package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/unihaven/internal/model"
	"github.com/Freeeeeet/unihaven/internal/repository"
)

const ActionLogPageSize = 20

// AuditService reads the action log trail.
type AuditService struct {
	store repository.Store
}

func NewAuditService(store repository.Store) *AuditService {
	return &AuditService{store: store}
}

// List returns one page of matching entries, newest first. An empty page is
// reported as not found.
func (s *AuditService) List(ctx context.Context, filter repository.ActionLogFilter, page int) ([]*model.ActionLog, error) {
	if page < 1 {
		page = 1
	}

	logs, err := s.store.ActionLogs().List(ctx, filter, ActionLogPageSize, (page-1)*ActionLogPageSize)
	if err != nil {
		return nil, fmt.Errorf("get action logs: %w", err)
	}
	if len(logs) == 0 {
		return nil, notFoundf("no logs found")
	}

	return logs, nil
}
