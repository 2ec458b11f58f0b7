package cli

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ntoledo319/HELLDECK/internal/infrastructure/wiring"
	"github.com/ntoledo319/HELLDECK/pkg/domain/quality"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive TUI over family pass rates and thresholds",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices()
		if err != nil {
			return err
		}
		if os.Getenv("CARDQA_SKIP_DASHBOARD_RUN") == "true" {
			return nil
		}
		p := tea.NewProgram(loadDashboard(cmd.Context(), services))
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("dashboard run failed: %w", err)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(dashboardCmd)
}

var baseStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.NormalBorder()).
	BorderForeground(lipgloss.Color("240"))

type dashboardModel struct {
	table   table.Model
	source  string
	target  float64
	reports int
	below   []string
	err     error
}

func loadDashboard(ctx context.Context, services *wiring.AppServices) dashboardModel {
	rollups, err := services.Summary.Rollups(ctx)
	if err != nil {
		return dashboardModel{err: err}
	}
	profiles, err := services.Profiles.Profiles()
	if err != nil {
		return dashboardModel{err: err}
	}
	cfg := services.Workspace.Config

	columns := []table.Column{
		{Title: "Family", Width: 22},
		{Title: "Runs", Width: 5},
		{Title: "Pass %", Width: 7},
		{Title: "Score", Width: 6},
		{Title: "Min humor", Width: 9},
		{Title: "Range", Width: 11},
		{Title: "Top issues", Width: 36},
	}

	m := dashboardModel{source: services.Workspace.Reports.Dir(), target: cfg.Target}
	rows := []table.Row{}
	for _, r := range rollups {
		m.reports += r.Runs
		prof := profiles.For(r.Family)
		threshold := "-"
		if prof.MinHumor != nil {
			threshold = fmt.Sprintf("%.2f", *prof.MinHumor)
		}
		if r.MeanPassFraction() < cfg.Target {
			m.below = append(m.below, r.Family)
		}
		rows = append(rows, table.Row{
			r.Family,
			fmt.Sprintf("%d", r.Runs),
			fmt.Sprintf("%.1f", r.MeanPassRate()),
			fmt.Sprintf("%.3f", r.MeanScore()),
			threshold,
			fmt.Sprintf("%.2f-%.2f", prof.Floor, prof.Ceiling),
			quality.FormatTop(r.TopIssues(3)),
		})
	}
	slices.Sort(m.below)

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(min(max(len(rows), 3), 16)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240"))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229"))
	t.SetStyles(s)

	m.table = t
	return m
}

func (m dashboardModel) Init() tea.Cmd { return nil }

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	}
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m dashboardModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error loading dashboard: %v\nPress q to quit.", m.err)
	}

	header := headerStyle.Render(fmt.Sprintf("Card quality  %d report(s)  target %.0f%%", m.reports, m.target*100))

	status := passStyle.Render("\nAll families at or above target")
	switch {
	case m.reports == 0:
		status = warnStyle.Render("\nNo reports yet. Run 'cardqa sweep'.")
	case len(m.below) > 0:
		status = failStyle.Render(fmt.Sprintf("\nBelow target: %v", m.below))
	}

	return baseStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			dimStyle.Render(m.source),
			m.table.View(),
			status,
			dimStyle.Render("q to quit"),
		),
	) + "\n"
}
