package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var auditLimit int

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect and verify the QA audit trail",
}

var auditVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the integrity of the hash-chained audit trail",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices()
		if err != nil {
			return err
		}

		fmt.Println("Verifying audit trail integrity...")
		violations, err := services.Audit.VerifyIntegrity()
		if err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}

		if len(violations) == 0 {
			fmt.Println("Audit trail is intact and verified.")
			return nil
		}

		fmt.Printf("Found %d integrity violations:\n", len(violations))
		for _, v := range violations {
			fmt.Printf("  - %s\n", v)
		}
		return &CLIError{Message: "audit trail has been modified", ExitCode: ExitFailed}
	},
}

var auditLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Show recent audit events",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices()
		if err != nil {
			return err
		}
		events, err := services.Audit.Timeline()
		if err != nil {
			return fmt.Errorf("load audit trail: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("No audit events yet.")
			return nil
		}
		if auditLimit > 0 && len(events) > auditLimit {
			events = events[len(events)-auditLimit:]
		}
		for _, e := range events {
			keys := make([]string, 0, len(e.Metadata))
			for k := range e.Metadata {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			parts := make([]string, 0, len(keys))
			for _, k := range keys {
				parts = append(parts, fmt.Sprintf("%s=%v", k, e.Metadata[k]))
			}
			fmt.Printf("%s  %-22s %-6s %s\n",
				e.Timestamp.Format("2006-01-02 15:04:05"), e.Action, e.Actor, dimStyle.Render(strings.Join(parts, " ")))
		}
		return nil
	},
}

func init() {
	auditLogCmd.Flags().IntVarP(&auditLimit, "limit", "n", 20, "Show at most this many events (0 for all)")
	auditCmd.AddCommand(auditVerifyCmd, auditLogCmd)
	RootCmd.AddCommand(auditCmd)
}
