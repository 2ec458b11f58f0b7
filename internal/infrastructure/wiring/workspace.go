package wiring

import (
	"log/slog"

	"github.com/ntoledo319/HELLDECK/internal/infrastructure/config"
	"github.com/ntoledo319/HELLDECK/pkg/application"
	"github.com/ntoledo319/HELLDECK/pkg/storage"
)

// Workspace bundles the storage dependencies of one workspace root.
type Workspace struct {
	Root    string
	Config  *config.Config
	Repo    *storage.FilesystemRepository
	Reports *storage.ReportStore
	Corpus  *storage.CorpusLoader
	Audit   *application.AuditService
}

func NewWorkspace(root string, cfg *config.Config, logger *slog.Logger) *Workspace {
	repo := storage.NewFilesystemRepository(root)
	return &Workspace{
		Root:    root,
		Config:  cfg,
		Repo:    repo,
		Reports: storage.NewReportStore(cfg.ReportsPath(root), logger),
		Corpus:  storage.NewCorpusLoader(),
		Audit:   application.NewAuditService(repo),
	}
}
