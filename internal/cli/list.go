package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/example/vocabquiz/internal/bookmarks"
	"github.com/example/vocabquiz/internal/catalog"
	"github.com/example/vocabquiz/internal/database"
	"github.com/example/vocabquiz/internal/selector"
)

func newListCmd(a *app) *cobra.Command {
	var (
		owner string
		star  []string
	)

	cmd := &cobra.Command{
		Use:   "list [day]",
		Short: "List the terms of every day or of one day",
		Long: `List the terms grouped by day. Starred terms are marked with *.
--star toggles the star of a term and may be repeated.`,
		Example: `  vocabquiz list 1
  vocabquiz list --star ephemeral --star "break the ice"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			repo, err := a.vocabulary(ctx, db)
			if err != nil {
				return err
			}
			cat, err := repo.Catalog(ctx)
			if err != nil {
				return err
			}

			days := cat.Categories()
			if len(args) == 1 {
				mode := selector.ParseMode(args[0])
				if mode.Kind != selector.KindCategory || len(cat.ByCategory(mode.Category)) == 0 {
					return errors.Errorf("unknown day %q", args[0])
				}
				days = []string{mode.Category}
			}

			out := cmd.OutOrStdout()
			store := bookmarks.NewStore(database.NewBookmarkRepository(db).ForOwner(owner), a.logger)
			for _, term := range star {
				item, ok := cat.Lookup(term)
				if !ok {
					return errors.Errorf("unknown term %q", term)
				}
				if store.Toggle(item.Term) {
					fmt.Fprintf(out, "Starred %s\n", item.Term)
				} else {
					fmt.Fprintf(out, "Unstarred %s\n", item.Term)
				}
			}

			if cat.Len() == 0 {
				fmt.Fprintln(out, "No vocabulary imported yet. Run: vocabquiz import <file>")
				return nil
			}
			return writeList(out, cat, days, store)
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "local", "Profile the bookmarks belong to")
	cmd.Flags().StringArrayVar(&star, "star", nil, "Star or unstar a term")
	return cmd
}

func writeList(out io.Writer, cat *catalog.Catalog, days []string, store *bookmarks.Store) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for i, day := range days {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, day)
		for _, item := range cat.ByCategory(day) {
			mark := " "
			if store.IsStarred(item.Term) {
				mark = "*"
			}
			fmt.Fprintf(w, "%s %s\t%s\t%s\n", mark, item.Term, item.Kind, item.Definition)
		}
	}
	return w.Flush()
}
