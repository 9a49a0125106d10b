package services

import (
	"context"

	"rentledger/internal/common"
	"rentledger/internal/models"
	"rentledger/internal/repositories"

	"golang.org/x/sync/errgroup"
)

type StatsService interface {
	GetOrgStats(ctx context.Context, orgSlug string) (*models.OrgStats, error)
}

type statsService struct {
	access    AccessService
	statsRepo repositories.StatsRepository
}

func NewStatsService(access AccessService, statsRepo repositories.StatsRepository) StatsService {
	return &statsService{access: access, statsRepo: statsRepo}
}

// GetOrgStats runs the seven counts concurrently. The first failure cancels
// the rest and fails the whole call.
func (s *statsService) GetOrgStats(ctx context.Context, orgSlug string) (*models.OrgStats, error) {
	orgCtx, err := s.access.ResolveFor(ctx, orgSlug, OpReadStats)
	if err != nil {
		return nil, err
	}

	stats := &models.OrgStats{}
	targets := []struct {
		target repositories.StatTarget
		dest   *int64
	}{
		{repositories.StatBuildings, &stats.Buildings},
		{repositories.StatUnits, &stats.Units},
		{repositories.StatTenants, &stats.Tenants},
		{repositories.StatOccupancies, &stats.Occupancies},
		{repositories.StatRentConfigs, &stats.RentConfigs},
		{repositories.StatRentPeriods, &stats.RentPeriods},
		{repositories.StatOverduePeriods, &stats.OverduePeriods},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range targets {
		t := t
		g.Go(func() error {
			count, err := s.statsRepo.Count(gctx, orgCtx.OrganizationID, t.target)
			if err != nil {
				return err
			}
			*t.dest = count
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, common.NewStorageError("fetch organization stats", err)
	}
	return stats, nil
}
