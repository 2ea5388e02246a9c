// Package cli implements the vocabquiz command line.
package cli

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/example/vocabquiz/internal/catalog"
	"github.com/example/vocabquiz/internal/config"
	"github.com/example/vocabquiz/internal/database"
	"github.com/example/vocabquiz/internal/excel"
	"github.com/example/vocabquiz/pkg/models"
)

const appName = "vocabquiz"

// app carries what every subcommand needs once the root command ran
type app struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Vocabulary flashcard quiz",
		Long: `vocabquiz quizzes you on term/definition pairs. Answers are graded
with fuzzy matching, missed terms come back later in the same quiz and
starred terms can be reviewed on their own.

Play in the terminal or serve the quiz as a Telegram bot.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newImportCmd(a),
		newCategoriesCmd(a),
		newListCmd(a),
		newPlayCmd(a),
		newStatsCmd(a),
		newBotCmd(a),
	)
	return cmd
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}

	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.logger)

	a.cfg = cfg
	return nil
}

func (a *app) openDB() (*sqlx.DB, error) {
	db, err := database.Connect(a.cfg.DatabaseConfig())
	if err != nil {
		return nil, err
	}
	a.logger.Debug("database connected", "driver", a.cfg.Database.Driver)
	return db, nil
}

// vocabulary returns the stored vocabulary, importing catalog.path first
// when it is configured
func (a *app) vocabulary(ctx context.Context, db *sqlx.DB) (*database.VocabRepository, error) {
	repo := database.NewVocabRepository(db)
	if a.cfg.Catalog.Path == "" {
		return repo, nil
	}

	items, _, err := readItems(a.cfg.Catalog.Path)
	if err != nil {
		return nil, err
	}
	if err := repo.ReplaceAll(ctx, items); err != nil {
		return nil, err
	}
	a.logger.Info("catalog imported", "path", a.cfg.Catalog.Path, "items", len(items))
	return repo, nil
}

// readItems loads a JSON or YAML data file, a spreadsheet or a CSV file.
// The import result is nil for data files, which are all-or-nothing.
func readItems(path string) ([]models.VocabItem, *excel.ImportResult, error) {
	var (
		items  []models.VocabItem
		result *excel.ImportResult
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".csv":
		cfg := excel.DefaultImportConfig()
		cfg.FilePath = path
		var err error
		if items, result, err = excel.Import(cfg); err != nil {
			return nil, nil, err
		}
	default:
		cat, err := catalog.LoadFile(path)
		if err != nil {
			return nil, nil, err
		}
		items = cat.Items()
	}

	if len(items) == 0 {
		return nil, result, errors.Errorf("%s contains no vocabulary", path)
	}
	// Validate the combined list once more so the stored catalog always loads
	if _, err := catalog.New(items); err != nil {
		return nil, result, err
	}
	return items, result, nil
}

// Execute runs the command line and returns the process exit code
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return 1
	}
	return 0
}
