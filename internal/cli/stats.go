package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/vocabquiz/internal/database"
)

func newStatsCmd(a *app) *cobra.Command {
	var (
		owner string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show finished quizzes and starred terms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			results := database.NewSessionResultRepository(db)
			stats, err := results.GetOwnerStats(ctx, owner)
			if err != nil {
				return err
			}
			recent, err := results.GetByOwner(ctx, owner, limit)
			if err != nil {
				return err
			}
			starred, err := database.NewBookmarkRepository(db).Terms(ctx, owner)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Profile %s: %d quizzes, %d/%d correct, average accuracy %.1f%%, best streak %d, %d starred\n",
				owner, stats.Sessions, stats.CorrectAnswers, stats.ItemsAnswered, stats.AverageAccuracy, stats.BestStreak, len(starred))
			if len(recent) == 0 {
				return nil
			}

			fmt.Fprintln(out)
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "FINISHED\tMODE\tSCORE\tACCURACY\tHINTED")
			for _, r := range recent {
				fmt.Fprintf(w, "%s\t%s\t%d/%d\t%.0f%%\t%d\n",
					r.FinishedAt.Local().Format("2006-01-02 15:04"), r.Mode, r.Correct, r.TotalItems, r.Accuracy, r.Hinted)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "local", "Profile or Telegram chat id")
	cmd.Flags().IntVar(&limit, "limit", 10, "Number of recent quizzes to list")
	return cmd
}
