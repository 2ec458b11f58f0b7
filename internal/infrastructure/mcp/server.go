package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/ntoledo319/HELLDECK/internal/infrastructure/wiring"
	"github.com/ntoledo319/HELLDECK/pkg/application"
	"github.com/ntoledo319/HELLDECK/pkg/domain/aggregate"
)

type Server struct {
	mcpServer *mcp.Server
	services  *wiring.AppServices
}

var (
	Version     = "dev"
	BuildCommit = "unknown"
	BuildDate   = "unknown"
)

// mcpErr returns a user-friendly error for MCP clients without internal detail.
func mcpErr(friendly string) error {
	return fmt.Errorf("%s", friendly)
}

func NewServer(root string) (*Server, error) {
	services, err := wiring.BuildAppServices(root, nil)
	if err != nil {
		return nil, fmt.Errorf("build services: %w", err)
	}
	return NewServerWithServices(services), nil
}

func NewServerWithServices(services *wiring.AppServices) *Server {
	info := mcp.ServerInfo{
		Name:    "cardqa",
		Version: Version,
	}
	s := &Server{
		mcpServer: mcp.NewServer(info,
			mcp.WithTitle("Card QA MCP Server"),
			mcp.WithDescription("Validates the card corpus, summarizes quality sweeps and calibrates per-family humor thresholds."),
			mcp.WithBuildInfo(BuildCommit, BuildDate),
			mcp.WithInstructions("Run cardqa_verify before sweeping. Use cardqa_calibrate with dry_run to preview threshold changes."),
		),
		services: services,
	}
	s.registerTools()
	return s
}

type VerifyArgs struct {
	Corpus string `json:"corpus,omitempty" jsonschema:"description=Corpus file or directory (defaults to the configured corpus)"`
}

type SweepArgs struct {
	Families []string `json:"families,omitempty" jsonschema:"description=Families to sample (default all)"`
	Seeds    []int64  `json:"seeds,omitempty" jsonschema:"description=Sampling seeds (default 12345)"`
	Count    int      `json:"count,omitempty" jsonschema:"description=Cards sampled per family and seed (default 50)"`
}

type SummaryArgs struct {
	AI    bool   `json:"ai,omitempty" jsonschema:"description=Summarize external judge scores instead of pass rates"`
	Seed  string `json:"seed,omitempty" jsonschema:"description=Only include runs with this seed (judge summary)"`
	Count string `json:"count,omitempty" jsonschema:"description=Only include runs with this count (judge summary)"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"description=Issue kinds listed per family (default 5)"`
}

type CalibrateArgs struct {
	Target float64 `json:"target,omitempty" jsonschema:"description=Target pass rate in (0,1]"`
	Step   float64 `json:"step,omitempty" jsonschema:"description=Threshold adjustment step"`
	DryRun bool    `json:"dry_run,omitempty" jsonschema:"description=Report decisions without writing profiles"`
}

// VerifyResult is the MCP view of a validation report.
type VerifyResult struct {
	Passed   bool     `json:"passed"`
	Families int      `json:"families"`
	Cards    int      `json:"cards"`
	Issues   []string `json:"issues"`
	Warnings []string `json:"warnings"`
}

func (s *Server) registerTools() {
	s.mcpServer.Tool("cardqa_verify").
		Description("Validate the card corpus and return the verdict with issues and warnings").
		Handler(s.handleVerify)

	s.mcpServer.Tool("cardqa_sweep").
		Description("Sample and score cards per family, writing one quality report per seed").
		Handler(s.handleSweep)

	s.mcpServer.Tool("cardqa_summary").
		Description("Render the Markdown quality summary across all stored reports").
		Handler(s.handleSummary)

	s.mcpServer.Tool("cardqa_calibrate").
		Description("Move per-family humor thresholds toward the target pass rate").
		Handler(s.handleCalibrate)

	s.mcpServer.Tool("cardqa_get_profiles").
		Description("Return the current per-family quality profiles").
		Handler(s.handleGetProfiles)

	s.mcpServer.Tool("cardqa_audit_verify").
		Description("Check the integrity of the audit trail").
		Handler(s.handleAuditVerify)
}

func (s *Server) handleVerify(ctx context.Context, args VerifyArgs) (any, error) {
	ctx = application.WithActor(ctx, "mcp")
	path := args.Corpus
	if path == "" {
		path = s.services.Workspace.Config.CorpusPath(s.services.Workspace.Root)
	}
	report, err := s.services.Verify.Verify(ctx, path)
	if err != nil {
		return nil, mcpErr(fmt.Sprintf("Failed to load corpus %s. Check the path and JSON syntax.", path))
	}
	out := VerifyResult{
		Passed:   report.Passed(),
		Families: report.Families,
		Cards:    report.Cards,
		Issues:   []string{},
		Warnings: []string{},
	}
	for _, f := range report.Result.Issues {
		out.Issues = append(out.Issues, f.String())
	}
	for _, f := range report.Result.Warnings {
		out.Warnings = append(out.Warnings, f.String())
	}
	return out, nil
}

func (s *Server) handleSweep(ctx context.Context, args SweepArgs) (any, error) {
	ctx = application.WithActor(ctx, "mcp")
	reports, err := s.services.Sweep.Sweep(ctx, application.SweepRequest{
		Corpus:   s.services.Workspace.Config.CorpusPath(s.services.Workspace.Root),
		Families: args.Families,
		Seeds:    args.Seeds,
		Count:    args.Count,
	})
	if err != nil {
		return nil, mcpErr("Sweep failed. Run cardqa_verify to check the corpus.")
	}
	summaries := make([]any, 0, len(reports))
	for _, r := range reports {
		summaries = append(summaries, r.Summary)
	}
	return summaries, nil
}

func (s *Server) handleSummary(ctx context.Context, args SummaryArgs) (string, error) {
	var (
		md  string
		err error
	)
	if args.AI {
		md, err = s.services.Summary.JudgeMarkdown(ctx, aggregate.Filter{Seed: args.Seed, Count: args.Count})
	} else {
		md, err = s.services.Summary.Markdown(ctx, args.TopK)
	}
	if err != nil {
		return "", mcpErr("Failed to read quality reports.")
	}
	return md, nil
}

func (s *Server) handleCalibrate(ctx context.Context, args CalibrateArgs) (any, error) {
	ctx = application.WithActor(ctx, "mcp")
	params := s.services.Workspace.Config.CalibrationParams()
	if args.Target > 0 {
		params.Target = args.Target
	}
	if args.Step > 0 {
		params.Step = args.Step
	}
	result, err := s.services.Calibration.Calibrate(ctx, params, args.DryRun)
	if err != nil {
		return nil, mcpErr(fmt.Sprintf("Calibration failed: %v", err))
	}
	return result, nil
}

func (s *Server) handleGetProfiles(ctx context.Context, args struct{}) (any, error) {
	profiles, err := s.services.Profiles.Profiles()
	if err != nil {
		return nil, mcpErr("Failed to load quality profiles. Check .cardqa/quality_profiles.yaml.")
	}
	return profiles, nil
}

func (s *Server) handleAuditVerify(ctx context.Context, args struct{}) (any, error) {
	violations, err := s.services.Audit.VerifyIntegrity()
	if err != nil {
		return nil, mcpErr("Failed to read the audit trail.")
	}
	if len(violations) == 0 {
		return "Audit trail intact.", nil
	}
	return violations, nil
}

func (s *Server) ServeStdio(ctx context.Context) error {
	return mcp.ServeStdio(ctx, s.mcpServer)
}

func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	return mcp.ServeHTTP(ctx, s.mcpServer, addr, mcp.WithDefaultCORS())
}

func (s *Server) ServeWebSocket(ctx context.Context, addr string) error {
	return mcp.ServeWebSocket(ctx, s.mcpServer, addr)
}

func (s *Server) ServeGRPC(ctx context.Context, addr string) error {
	return mcp.ServeGRPC(ctx, s.mcpServer, addr)
}

// Serve dispatches on transport: "stdio", "http", "ws" or "grpc".
func (s *Server) Serve(ctx context.Context, transport, addr string) error {
	switch transport {
	case "", "stdio":
		return s.ServeStdio(ctx)
	case "http":
		return s.ServeHTTP(ctx, addr)
	case "ws", "websocket":
		return s.ServeWebSocket(ctx, addr)
	case "grpc":
		return s.ServeGRPC(ctx, addr)
	default:
		return fmt.Errorf("unknown transport %q (want stdio, http, ws or grpc)", transport)
	}
}
