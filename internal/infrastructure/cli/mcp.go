package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	inframcp "github.com/ntoledo319/HELLDECK/internal/infrastructure/mcp"
)

var (
	mcpTransport string
	mcpAddr      string
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the cardqa MCP server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if os.Getenv("CARDQA_SKIP_MCP_START") == "true" {
			return nil
		}
		services, err := loadServices()
		if err != nil {
			return err
		}
		inframcp.Version, inframcp.BuildCommit, inframcp.BuildDate = Version, Commit, Date
		server := inframcp.NewServerWithServices(services)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		err = server.Serve(ctx, strings.ToLower(mcpTransport), mcpAddr)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	mcpCmd.Flags().StringVar(&mcpTransport, "transport", "stdio", "Transport to use (stdio, http, ws, grpc)")
	mcpCmd.Flags().StringVar(&mcpAddr, "addr", ":8080", "Address for http/ws/grpc transports")
	RootCmd.AddCommand(mcpCmd)
}
