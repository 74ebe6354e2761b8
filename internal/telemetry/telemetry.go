// Package telemetry archives accepted samples to a local SQLite
// database, independent of the text-log recorder. It is optional; when
// disabled a no-op collector is used.
package telemetry

import (
	"github.com/twentefluids/dodecalog/internal/errors"
	"github.com/twentefluids/dodecalog/internal/logger"
	"github.com/twentefluids/dodecalog/internal/sample"
)

// Collector receives every accepted sample. It satisfies the
// acquisition worker's sink contract.
type Collector interface {
	Consume(s sample.Sample) error
	Close() error
}

type service struct {
	repo Repository
}

type noopCollector struct{}

// NewService creates a Collector for the given configuration. A
// disabled configuration yields a no-op collector.
func NewService(cfg Config) (Collector, error) {
	errFactory := errors.New()

	if !cfg.Enabled {
		logger.Debug().Msg("Telemetry disabled, using no-op collector")
		return &noopCollector{}, nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	repo, err := NewRepository(cfg)
	if err != nil {
		return nil, err
	}

	logger.Debug().Str("db_path", cfg.DBPath).Msg("Telemetry service initialized")

	return &service{repo: repo}, nil
}

func (s *service) Consume(smp sample.Sample) error {
	errFactory := errors.New()

	if err := s.repo.Store(smp); err != nil {
		return errFactory.Wrap(errors.ErrStorageAccess, err)
	}

	return nil
}

func (s *service) Close() error {
	errFactory := errors.New()

	if err := s.repo.Close(); err != nil {
		return errFactory.Wrap(errors.ErrStorageClose, err)
	}
	return nil
}

func (*noopCollector) Consume(_ sample.Sample) error { return nil }
func (*noopCollector) Close() error                  { return nil }
