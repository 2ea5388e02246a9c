package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/vocabquiz/internal/database"
)

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the stored vocabulary with a JSON, YAML, xlsx or csv file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, result, err := readItems(args[0])
			if err != nil {
				return err
			}

			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			repo := database.NewVocabRepository(db)
			if err := repo.ReplaceAll(cmd.Context(), items); err != nil {
				return err
			}
			categories, err := repo.Categories(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %d terms in %d categories.\n", len(items), len(categories))
			if result != nil && result.Skipped > 0 {
				fmt.Fprintf(out, "Skipped %d rows:\n", result.Skipped)
				for _, e := range result.Errors {
					fmt.Fprintf(out, "  %s\n", e)
				}
			}
			return nil
		},
	}
}
