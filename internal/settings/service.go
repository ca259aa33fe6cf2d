package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrJamesThe3rd/stoptracker/internal/rate"
)

// ErrNotFound is returned by a Repository that has no saved config.
var ErrNotFound = errors.New("rate config not found")

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=settings
type Repository interface {
	Load(ctx context.Context, scope string) (rate.Config, error)
	Save(ctx context.Context, scope string, cfg rate.Config) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns the saved rate config or the default one when nothing has been
// saved for scope.
func (s *Service) Get(ctx context.Context, scope string) (rate.Config, error) {
	cfg, err := s.repo.Load(ctx, scope)
	if errors.Is(err, ErrNotFound) {
		return rate.DefaultConfig(), nil
	}

	if err != nil {
		return rate.Config{}, fmt.Errorf("loading rate config: %w", err)
	}

	return cfg, nil
}

// Save replaces the stored config. Existing day totals are left untouched.
func (s *Service) Save(ctx context.Context, scope string, cfg rate.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := s.repo.Save(ctx, scope, cfg); err != nil {
		return fmt.Errorf("saving rate config: %w", err)
	}

	return nil
}

// ApplyPreset saves the named preset and returns its config.
func (s *Service) ApplyPreset(ctx context.Context, scope, name string) (rate.Config, error) {
	for _, p := range rate.Presets() {
		if p.Name != name {
			continue
		}

		if err := s.Save(ctx, scope, p.Config); err != nil {
			return rate.Config{}, err
		}

		return p.Config, nil
	}

	return rate.Config{}, fmt.Errorf("%w: unknown preset %q", rate.ErrInvalidConfig, name)
}
