package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ntoledo319/HELLDECK/internal/infrastructure/config"
	"github.com/ntoledo319/HELLDECK/pkg/storage"
)

var initCorpus string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .cardqa/ with a default config.yaml",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := getWorkspaceRoot()
		if err != nil {
			return err
		}
		repo := storage.NewFilesystemRepository(root)
		path, err := repo.ResolvePath(storage.ConfigFile)
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil {
			return NewCLIError("workspace already initialized", "Edit .cardqa/config.yaml directly", nil)
		}

		cfg := config.Default()
		if initCorpus != "" {
			cfg.Corpus = initCorpus
		}
		if err := config.Save(root, cfg); err != nil {
			return MapError(fmt.Errorf("init: %w", err))
		}
		fmt.Printf("Initialized %s (corpus: %s)\n", repo.Dir(), cfg.Corpus)
		fmt.Println("Next: cardqa verify && cardqa sweep")
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initCorpus, "corpus", "", "Corpus path relative to the workspace root")
	RootCmd.AddCommand(initCmd)
}
