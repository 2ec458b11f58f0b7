package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ntoledo319/HELLDECK/pkg/application"
	"github.com/ntoledo319/HELLDECK/pkg/storage"
)

var (
	profilesJSON  bool
	profilesForce bool
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Inspect and reset per-family quality profiles",
}

var profilesShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current quality profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices()
		if err != nil {
			return err
		}
		profiles, err := services.Profiles.Profiles()
		if err != nil {
			return MapError(err)
		}
		if profilesJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(profiles)
		}
		data, err := yaml.Marshal(profiles)
		if err != nil {
			return fmt.Errorf("marshal profiles: %w", err)
		}
		fmt.Print(string(data))
		return nil
	},
}

var profilesInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default quality profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices()
		if err != nil {
			return err
		}
		if profilesExist(services.Workspace.Repo) && !profilesForce {
			return NewCLIError("quality profiles already exist",
				"Pass --force to overwrite calibrated thresholds with the defaults", nil)
		}
		ctx := application.WithActor(cmd.Context(), "cli")
		profiles, err := services.Profiles.Init(ctx)
		if err != nil {
			return MapError(err)
		}
		fmt.Printf("Wrote %d family profiles to %s\n", len(profiles.Families), storage.ProfilesFile)
		return nil
	},
}

func profilesExist(repo *storage.FilesystemRepository) bool {
	path, err := repo.ResolvePath(storage.ProfilesFile)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

func init() {
	profilesShowCmd.Flags().BoolVar(&profilesJSON, "json", false, "Print as JSON")
	profilesInitCmd.Flags().BoolVar(&profilesForce, "force", false, "Overwrite existing profiles")
	profilesCmd.AddCommand(profilesShowCmd, profilesInitCmd)
	RootCmd.AddCommand(profilesCmd)
}
