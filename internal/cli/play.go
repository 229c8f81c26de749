package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/hanoi/internal/bestscore"
	"github.com/robalobadob/hanoi/internal/db"
	"github.com/robalobadob/hanoi/internal/rankclient"
	"github.com/robalobadob/hanoi/internal/tui"
)

// localOwner keys best scores in the terminal client's own database.
const localOwner = "local"

type playFlags struct {
	dbPath  string
	server  string
	name    string
	logFile string
	level   int
}

func newPlayCmd(o *options) *cobra.Command {
	f := playFlags{}
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, cleanup, err := f.model(o)
			if err != nil {
				return err
			}
			defer cleanup()
			_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
			return err
		},
	}
	cmd.Flags().StringVar(&f.dbPath, "db", defaultLocalDB(), "SQLite file for best scores")
	cmd.Flags().StringVar(&f.server, "server", "", "hanoi server URL for ranking submissions")
	cmd.Flags().StringVar(&f.name, "name", os.Getenv("USER"), "name shown in the ranking")
	cmd.Flags().StringVar(&f.logFile, "log-file", "", "write logs here while the game runs")
	cmd.Flags().IntVarP(&f.level, "level", "l", 0, "number of disks (default from config)")
	return cmd
}

// model validates the flags and builds the starting tui.Model. The returned
// cleanup closes the database and the log file.
func (f playFlags) model(o *options) (tui.Model, func(), error) {
	if f.level != 0 {
		if _, err := o.cfg.Game.CheckLevel(f.level); err != nil {
			return tui.Model{}, nil, err
		}
	}
	opts := tui.Options{Game: o.cfg.Game, Owner: localOwner, Name: f.name, Level: f.level}
	if f.server != "" {
		c, err := rankclient.New(f.server)
		if err != nil {
			return tui.Model{}, nil, err
		}
		opts.Ranker = c
	}

	// the alternate screen owns the terminal, so logs go elsewhere
	var logOut io.Writer = io.Discard
	var logFile *os.File
	if f.logFile != "" {
		lf, err := os.OpenFile(f.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return tui.Model{}, nil, fmt.Errorf("open log file: %w", err)
		}
		logOut, logFile = lf, lf
	}
	prev := log.Logger
	log.Logger = zerolog.New(logOut).With().Timestamp().Logger()

	sqlDB, err := db.OpenAndMigrate(f.dbPath)
	if err != nil {
		log.Logger = prev
		if logFile != nil {
			_ = logFile.Close()
		}
		return tui.Model{}, nil, fmt.Errorf("open %s: %w", f.dbPath, err)
	}
	opts.Best = bestscore.NewSQLStore(sqlDB)

	cleanup := func() {
		_ = sqlDB.Close()
		log.Logger = prev
		if logFile != nil {
			_ = logFile.Close()
		}
	}
	return tui.New(opts), cleanup, nil
}

func defaultLocalDB() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("data", "hanoi-local.db")
	}
	return filepath.Join(home, ".hanoi", "hanoi.db")
}
