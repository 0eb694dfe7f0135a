package service

import (
	"time"

	"github.com/okian/wicket/internal/domain/model"
	"github.com/okian/wicket/internal/domain/pointstable"
	"github.com/okian/wicket/internal/domain/stats"
	"github.com/okian/wicket/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of pending scoring jobs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many scorecard revisions are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithSnapshotInterval sets how often leaderboard snapshots are published.
func WithSnapshotInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.snapshotInterval = d
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithQuota sets the roster constraints. Start fails without one.
func WithQuota(quota model.RoleQuota) Option {
	return func(s *Service) {
		s.quota = quota
	}
}

// WithFormat sets the match format used to sanity-check statistics.
func WithFormat(format stats.Format) Option {
	return func(s *Service) {
		if format != "" {
			s.format = format
		}
	}
}

// WithPointsTable sets the points table rosters are scored with.
func WithPointsTable(table pointstable.Table) Option {
	return func(s *Service) {
		s.table = table.Clone()
	}
}
