package domain

import (
	"context"

	"github.com/ntoledo319/HELLDECK/pkg/domain/corpus"
	"github.com/ntoledo319/HELLDECK/pkg/domain/quality"
)

// AuditLogger appends an action to the audit trail. Services depend on this
// rather than on the store.
type AuditLogger interface {
	Log(action string, actor string, metadata map[string]any) error
}

// AuditRepository persists the audit trail. AppendEvent hands build the hash
// of the last recorded event and appends what it returns atomically.
type AuditRepository interface {
	AppendEvent(ctx context.Context, build func(prevHash string) Event) (Event, error)
	LoadEvents() ([]Event, error)
}

// CorpusSource loads a corpus snapshot from a file or directory.
type CorpusSource interface {
	LoadCorpus(ctx context.Context, path string) (*corpus.Corpus, error)
}

// ReportRepository stores sweep artifacts. LoadReports skips artifacts it
// cannot decode; LoadReportsStrict fails on them.
type ReportRepository interface {
	SaveReport(report *quality.RunReport) (string, error)
	LoadReports(ctx context.Context) ([]*quality.RunReport, error)
	LoadReportsStrict(ctx context.Context) ([]*quality.RunReport, error)
}

// ProfileRepository is the quality profile store. UpdateProfiles runs mutate
// against the current document under an exclusive lock and persists the result
// in a single write when mutate reports a change.
type ProfileRepository interface {
	LoadProfiles() (*quality.Profiles, error)
	SaveProfiles(p *quality.Profiles) error
	UpdateProfiles(ctx context.Context, mutate func(*quality.Profiles) (*quality.Profiles, bool, error)) error
}
