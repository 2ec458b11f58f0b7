package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ntoledo319/HELLDECK/pkg/domain"
	"github.com/ntoledo319/HELLDECK/pkg/domain/quality"
)

// ProfileService reads and resets the quality profile store.
type ProfileService struct {
	repo   domain.ProfileRepository
	audit  domain.AuditLogger
	logger *slog.Logger
}

func NewProfileService(repo domain.ProfileRepository, audit domain.AuditLogger, logger *slog.Logger) *ProfileService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileService{repo: repo, audit: audit, logger: logger}
}

func (s *ProfileService) Profiles() (*quality.Profiles, error) {
	return s.repo.LoadProfiles()
}

// Init replaces the store with the shipped defaults.
func (s *ProfileService) Init(ctx context.Context) (*quality.Profiles, error) {
	defaults := quality.DefaultProfiles()
	defaults.UpdatedAt = time.Now().UTC()
	err := s.repo.UpdateProfiles(ctx, func(*quality.Profiles) (*quality.Profiles, bool, error) {
		return defaults, true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("init profiles: %w", err)
	}
	if s.audit != nil {
		if err := s.audit.Log(domain.ActionProfilesInitialized, ActorFrom(ctx), map[string]any{
			"families": len(defaults.Families),
		}); err != nil {
			s.logger.Warn("audit log failed", "action", domain.ActionProfilesInitialized, "error", err)
		}
	}
	return defaults, nil
}
