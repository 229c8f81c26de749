// Package cli is the hanoi command tree.
//
//	hanoi serve          HTTP + websocket server with the browser client
//	hanoi play           terminal client
//	hanoi solve <disks>  print the optimal solution
//
// Every command loads .env, then the YAML file named by --config (or
// HANOI_CONFIG), then the environment.
package cli

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/robalobadob/hanoi/internal/config"
)

// options is shared by all subcommands and filled in before they run.
type options struct {
	configPath string
	cfg        config.Config
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:           "hanoi",
		Short:         "Tower of Hanoi server and terminal client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return o.load()
		},
	}
	root.PersistentFlags().StringVar(&o.configPath, "config", "", "YAML config file (default $HANOI_CONFIG)")

	root.AddCommand(newServeCmd(o), newPlayCmd(o), newSolveCmd())
	return root
}

func (o *options) load() error {
	_ = godotenv.Load()
	if o.configPath == "" {
		o.configPath = os.Getenv("HANOI_CONFIG")
	}
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	o.cfg = cfg
	return nil
}

// Execute runs the command tree against os.Args.
func Execute() error { return NewRootCmd().Execute() }
