package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newCategoriesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "categories",
		Aliases: []string{"days"},
		Short:   "List the vocabulary categories",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			repo, err := a.vocabulary(cmd.Context(), db)
			if err != nil {
				return err
			}
			cat, err := repo.Catalog(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if cat.Len() == 0 {
				fmt.Fprintln(out, "No vocabulary imported yet. Run: vocabquiz import <file>")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, key := range cat.Categories() {
				fmt.Fprintf(w, "%s\t%d terms\n", key, len(cat.ByCategory(key)))
			}
			fmt.Fprintf(w, "all\t%d terms\n", cat.Len())
			return w.Flush()
		},
	}
}
