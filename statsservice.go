package main

import (
	"context"

	"folio/internal/themestore"
)

type StatsService struct {
	store *themestore.Repository
}

func NewStatsService(store *themestore.Repository) *StatsService {
	return &StatsService{store: store}
}

func (s *StatsService) GetOverview(ctx context.Context) (themestore.Overview, error) {
	return s.store.Overview(ctx)
}
