package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/example/vocabquiz/internal/bookmarks"
	"github.com/example/vocabquiz/internal/database"
	"github.com/example/vocabquiz/internal/grading"
	"github.com/example/vocabquiz/internal/quiz"
	"github.com/example/vocabquiz/internal/selector"
	"github.com/example/vocabquiz/pkg/models"
)

const playHelp = `Type the term for each definition.
  :hint    show the next letter
  :reveal  show the answer
  :skip    reveal and move on
  :star    star or unstar the current term
  :quit    stop the quiz`

func newPlayCmd(a *app) *cobra.Command {
	var (
		owner string
		seed  int64
	)

	cmd := &cobra.Command{
		Use:   "play [mode]",
		Short: "Play a quiz in the terminal",
		Long: `Play a quiz in the terminal. mode is one of quick (default), all,
starred, a day number or a category name. After a quiz the missed terms
can be replayed right away.

` + playHelp,
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

			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			rnd := rand.New(rand.NewSource(seed))

			store := bookmarks.NewStore(database.NewBookmarkRepository(db).ForOwner(owner), a.logger)
			results := database.NewSessionResultRepository(db)

			name := "quick"
			if len(args) == 1 {
				name = args[0]
			}
			mode := selector.ParseMode(name)
			opts := a.cfg.SelectorOptions()
			opts.Rand = rnd

			p := &player{
				session: quiz.NewSession(a.cfg.QuizConfig(), rnd, a.logger),
				store:   store,
				in:      bufio.NewScanner(cmd.InOrStdin()),
				out:     cmd.OutOrStdout(),
			}

			for {
				summary, finished, err := p.play(selector.Select(mode, cat, store, opts))
				if err != nil {
					return errors.Wrapf(err, "cannot play %s", mode)
				}
				if !finished {
					return nil
				}
				if err := saveResult(ctx, results, owner, mode, summary); err != nil {
					return err
				}
				if len(summary.Missed) == 0 || !p.confirm(fmt.Sprintf("Retry the %d missed terms?", len(summary.Missed))) {
					return nil
				}
				mode = selector.Retry(summary.Missed)
			}
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "local", "Profile the bookmarks and results belong to")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed for a reproducible order")
	return cmd
}

// player runs one session over a line-based terminal
type player struct {
	session *quiz.Session
	store   *bookmarks.Store
	in      *bufio.Scanner
	out     io.Writer
}

var errNothingToPlay = errors.New("nothing to quiz on")

// play runs the quiz until every item is answered or the player quits.
// finished is false when the player quit early.
func (p *player) play(items []models.VocabItem) (quiz.Summary, bool, error) {
	if !p.session.Start(items) {
		return quiz.Summary{}, false, errNothingToPlay
	}
	fmt.Fprintf(p.out, "%s\n\n", playHelp)

	for p.session.State() != quiz.StateFinished {
		var quit bool
		if p.session.State() == quiz.StateActive {
			quit = p.ask()
		} else {
			quit = p.review()
		}
		if quit {
			fmt.Fprintln(p.out, "\nQuiz stopped.")
			p.printSummary(p.session.Summary())
			return p.session.Summary(), false, nil
		}
	}

	summary := p.session.Summary()
	p.printSummary(summary)
	return summary, true, nil
}

func (p *player) readLine() (string, bool) {
	if !p.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(p.in.Text()), true
}

// ask shows the current question and handles one line of input
func (p *player) ask() (quit bool) {
	v := p.session.View()
	item := v.CurrentItem

	star := ""
	if p.store.IsStarred(item.Term) {
		star = " ⭐"
	}
	header := fmt.Sprintf("[%d/%d]", v.Position+1, v.Total)
	if item.Category != "" {
		header += " " + item.Category
	}
	fmt.Fprintf(p.out, "%s · %s%s\n%s\n", header, item.Kind, star, item.Definition)
	if v.HintChars > 0 {
		fmt.Fprintf(p.out, "hint: %s\n", v.MaskedTerm())
	}
	fmt.Fprint(p.out, "> ")

	line, ok := p.readLine()
	if !ok {
		return true
	}

	switch line {
	case ":quit", ":q":
		return true
	case ":hint":
		if !p.session.ProvideHint() {
			fmt.Fprintln(p.out, "The whole term is shown already.")
		}
	case ":reveal":
		p.session.RevealAnswer()
	case ":skip":
		if p.session.Skip() {
			fmt.Fprintf(p.out, "✘ Skipped: %s\n\n", item.Term)
		}
	case ":star":
		p.toggleStar(item.Term)
	default:
		p.session.SetInput(line)
		p.session.SubmitAnswer()
	}
	return false
}

// review shows the feedback and waits for the player to move on
func (p *player) review() (quit bool) {
	p.printFeedback()
	fmt.Fprint(p.out, "[enter] next, :star, :quit > ")

	for {
		line, ok := p.readLine()
		if !ok {
			return true
		}
		switch line {
		case ":quit", ":q":
			return true
		case ":star":
			p.toggleStar(p.session.View().CurrentItem.Term)
			fmt.Fprint(p.out, "> ")
			continue
		}
		fmt.Fprintln(p.out)
		p.session.NextQuestion()
		return false
	}
}

// confirm asks a yes/no question; anything but y or yes is no
func (p *player) confirm(question string) bool {
	fmt.Fprintf(p.out, "%s [y/N] ", question)
	line, ok := p.readLine()
	if !ok {
		return false
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		fmt.Fprintln(p.out)
		return true
	}
	return false
}

func (p *player) toggleStar(term string) {
	if p.store.Toggle(term) {
		fmt.Fprintf(p.out, "⭐ starred %s\n", term)
	} else {
		fmt.Fprintf(p.out, "☆ unstarred %s\n", term)
	}
}

func (p *player) printFeedback() {
	v := p.session.View()
	if v.Feedback == nil {
		return
	}
	switch v.Feedback.Status {
	case grading.StatusCorrect:
		fmt.Fprintf(p.out, "✔ %s\n", v.Feedback.Message)
	case grading.StatusClose:
		fmt.Fprintf(p.out, "~ %s (%.0f%%) %s\n", v.Feedback.Message, v.Feedback.Similarity, v.CurrentItem.Term)
	default:
		fmt.Fprintf(p.out, "✘ %s %s\n", v.Feedback.Message, v.CurrentItem.Term)
	}
}

func saveResult(ctx context.Context, results *database.SessionResultRepository, owner string, mode selector.Mode, s quiz.Summary) error {
	return results.Create(ctx, &models.SessionResult{
		Owner:      owner,
		Mode:       mode.String(),
		TotalItems: s.Total,
		Correct:    s.Correct,
		Hinted:     s.Hinted,
		Accuracy:   s.Accuracy,
		BestStreak: s.BestStreak,
	})
}

func (p *player) printSummary(s quiz.Summary) {
	fmt.Fprintf(p.out, "\nScore: %d/%d (%.0f%%), hinted %d, best streak %d\n",
		s.Correct, s.Total, s.Accuracy, s.Hinted, s.BestStreak)
	if len(s.Missed) > 0 {
		fmt.Fprintln(p.out, "Missed:")
		for _, item := range s.Missed {
			fmt.Fprintf(p.out, "  %s: %s\n", item.Term, item.Definition)
		}
	}
}
