package application

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ntoledo319/HELLDECK/pkg/domain"
)

type actorKey struct{}

// WithActor tags ctx with the surface that triggered the work ("cli", "mcp",
// "watch"). Audit events record it.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom returns the actor stored by WithActor, defaulting to "cli".
func ActorFrom(ctx context.Context) string {
	if actor, ok := ctx.Value(actorKey{}).(string); ok && actor != "" {
		return actor
	}
	return "cli"
}

type AuditService struct {
	repo domain.AuditRepository
}

var _ domain.AuditLogger = (*AuditService)(nil)

func NewAuditService(repo domain.AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

// Log chains a new event onto the last recorded hash.
func (s *AuditService) Log(action string, actor string, metadata map[string]any) error {
	_, err := s.repo.AppendEvent(context.Background(), func(prevHash string) domain.Event {
		event := domain.Event{
			ID:        uuid.New().String(),
			Timestamp: time.Now().UTC(),
			Action:    action,
			Actor:     actor,
			Metadata:  metadata,
			PrevHash:  prevHash,
		}
		event.Hash = event.CalculateHash()
		return event
	})
	return err
}

func (s *AuditService) Timeline() ([]domain.Event, error) {
	return s.repo.LoadEvents()
}

func (s *AuditService) VerifyIntegrity() ([]string, error) {
	events, err := s.repo.LoadEvents()
	if err != nil {
		return nil, err
	}
	return domain.VerifyChain(events), nil
}
