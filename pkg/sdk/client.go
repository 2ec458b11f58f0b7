package sdk

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/mcp-go/client"

	"github.com/ntoledo319/HELLDECK/pkg/domain/quality"
)

// Tool names served by cardqa mcp.
const (
	ToolVerify      = "cardqa_verify"
	ToolSweep       = "cardqa_sweep"
	ToolSummary     = "cardqa_summary"
	ToolCalibrate   = "cardqa_calibrate"
	ToolProfiles    = "cardqa_get_profiles"
	ToolAuditVerify = "cardqa_audit_verify"
)

// Client is a typed Go client for the cardqa MCP server.
type Client struct {
	mcp      *client.Client
	retryCfg retry.Config
	timeout  time.Duration
}

// NewClient creates a new SDK client wrapping the given MCP transport.
func NewClient(transport client.Transport, opts ...Option) *Client {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	return &Client{
		mcp:     client.New(transport, client.WithTimeout(o.timeout)),
		timeout: o.timeout,
		retryCfg: retry.Config{
			MaxAttempts:   o.maxAttempts,
			InitialDelay:  o.initialDelay,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
}

// Initialize performs the MCP initialize handshake.
func (c *Client) Initialize(ctx context.Context) (*client.ServerInfo, error) {
	return c.mcp.Initialize(ctx)
}

// Close closes the underlying transport.
func (c *Client) Close() error {
	return c.mcp.Close()
}

// read invokes a read-only tool with retry.
func (c *Client) read(ctx context.Context, tool string, args map[string]any) (*client.ToolResult, error) {
	r := retry.New[*client.ToolResult](c.retryCfg)
	result, err := r.Do(ctx, func(ctx context.Context) (*client.ToolResult, error) {
		return c.mcp.CallTool(ctx, tool, args)
	})
	return checkResult(tool, result, err)
}

// write invokes a tool that changes server state exactly once.
func (c *Client) write(ctx context.Context, tool string, args map[string]any) (*client.ToolResult, error) {
	result, err := c.mcp.CallTool(ctx, tool, args)
	return checkResult(tool, result, err)
}

func checkResult(tool string, result *client.ToolResult, err error) (*client.ToolResult, error) {
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", tool, err)
	}
	if result.IsError {
		msg := ""
		if len(result.Content) > 0 {
			msg = result.Content[0].Text
		}
		return nil, &ToolError{Tool: tool, Message: msg}
	}
	return result, nil
}

// unmarshalText extracts Content[0].Text from a tool result and unmarshals it as JSON.
func unmarshalText[T any](result *client.ToolResult) (*T, error) {
	text, err := textResult(result)
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	return &v, nil
}

// textResult extracts Content[0].Text from a tool result.
func textResult(result *client.ToolResult) (string, error) {
	if len(result.Content) == 0 {
		return "", ErrNoContent
	}
	return result.Content[0].Text, nil
}

// Verify validates corpus, or the server's configured corpus when empty.
func (c *Client) Verify(ctx context.Context, corpus string) (*VerifyResult, error) {
	args := map[string]any{}
	if corpus != "" {
		args["corpus"] = corpus
	}
	res, err := c.read(ctx, ToolVerify, args)
	if err != nil {
		return nil, err
	}
	return unmarshalText[VerifyResult](res)
}

// Sweep samples the configured corpus and returns one summary per written
// report.
func (c *Client) Sweep(ctx context.Context, req SweepRequest) ([]quality.Summary, error) {
	args := map[string]any{}
	if len(req.Families) > 0 {
		args["families"] = req.Families
	}
	if len(req.Seeds) > 0 {
		args["seeds"] = req.Seeds
	}
	if req.Count > 0 {
		args["count"] = req.Count
	}
	res, err := c.write(ctx, ToolSweep, args)
	if err != nil {
		return nil, err
	}
	out, err := unmarshalText[[]quality.Summary](res)
	if err != nil {
		return nil, err
	}
	return *out, nil
}

// Summary returns the Markdown summary.
func (c *Client) Summary(ctx context.Context, req SummaryRequest) (string, error) {
	args := map[string]any{}
	if req.AI {
		args["ai"] = true
	}
	if req.Seed != "" {
		args["seed"] = req.Seed
	}
	if req.Count != "" {
		args["count"] = req.Count
	}
	if req.TopK > 0 {
		args["top_k"] = req.TopK
	}
	res, err := c.read(ctx, ToolSummary, args)
	if err != nil {
		return "", err
	}
	return textResult(res)
}

// Calibrate runs one calibration. Only dry runs are retried.
func (c *Client) Calibrate(ctx context.Context, req CalibrateRequest) (*CalibrationResult, error) {
	args := map[string]any{}
	if req.Target > 0 {
		args["target"] = req.Target
	}
	if req.Step > 0 {
		args["step"] = req.Step
	}
	if req.DryRun {
		args["dry_run"] = true
	}
	call := c.write
	if req.DryRun {
		call = c.read
	}
	res, err := call(ctx, ToolCalibrate, args)
	if err != nil {
		return nil, err
	}
	return unmarshalText[CalibrationResult](res)
}

// Profiles returns the server's current quality profiles.
func (c *Client) Profiles(ctx context.Context) (*quality.Profiles, error) {
	res, err := c.read(ctx, ToolProfiles, nil)
	if err != nil {
		return nil, err
	}
	return unmarshalText[quality.Profiles](res)
}

// AuditViolations returns the integrity violations of the server's audit
// trail. An intact trail yields none.
func (c *Client) AuditViolations(ctx context.Context) ([]string, error) {
	res, err := c.read(ctx, ToolAuditVerify, nil)
	if err != nil {
		return nil, err
	}
	text, err := textResult(res)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(strings.TrimSpace(text), "[") {
		return nil, nil
	}
	var violations []string
	if err := json.Unmarshal([]byte(text), &violations); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	return violations, nil
}
