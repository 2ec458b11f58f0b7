package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var lintJSON bool

var lintCmd = &cobra.Command{
	Use:   "lint <root>",
	Short: "Scan application sources for duplicate symbols and dead click handlers",
	Long: `Scan Kotlin sources under root for core types or screens declared more than
once, duplicate route strings, empty onClick handlers and TODO markers.
Exit code is 1 when anything is found.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices()
		if err != nil {
			return err
		}
		findings, err := services.Lint.Scan(args[0])
		if err != nil {
			return fmt.Errorf("lint %s: %w", args[0], err)
		}

		if lintJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(findings); err != nil {
				return err
			}
		} else {
			for _, f := range findings {
				fmt.Printf("[%s] %s\n", f.Scanner, f)
			}
		}
		if len(findings) == 0 {
			if !lintJSON {
				fmt.Println(passStyle.Render("No lint findings."))
			}
			return nil
		}
		return &CLIError{Message: fmt.Sprintf("%d lint finding(s)", len(findings)), ExitCode: ExitFailed}
	},
}

func init() {
	lintCmd.Flags().BoolVar(&lintJSON, "json", false, "Print findings as JSON")
	RootCmd.AddCommand(lintCmd)
}
