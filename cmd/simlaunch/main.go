// simlaunch runs the simulation server and GUI as supervised subprocesses.
// Every flag except --config passes through to the children verbatim, so
// each child parses the same user intent independently.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"simlaunch/internal/healthserver"
	"simlaunch/internal/history"
	"simlaunch/internal/supervisor"
	"simlaunch/pkg/config"
	"simlaunch/pkg/logx"
)

// Version information - set by goreleaser via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const healthStopTimeout = 2 * time.Second

func main() {
	os.Exit(run(os.Args[1:]))
}

// run contains the main application logic and returns an exit code.
// This allows defers to execute before os.Exit is called.
func run(args []string) int {
	exitCode := 0

	cmd := newRootCmd(&exitCode, args)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return exitCode
}

func newRootCmd(exitCode *int, rawArgs []string) *cobra.Command {
	var (
		verbose    int
		serverOnly bool
		guiOnly    bool
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "simlaunch [options] <world_file>",
		Short: "Run the simulation server and GUI",
		Long: `simlaunch -- Run the simulation server and GUI.

Both run as independent processes; simlaunch relays termination signals
to them and enforces a bounded graceful shutdown. Unrecognized flags and
positional arguments are forwarded to both children verbatim.`,
		Version:       fmt.Sprintf("%s\n  commit: %s\n  built:  %s", version, commit, date),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		FParseErrWhitelist: cobra.FParseErrWhitelist{
			UnknownFlags: true,
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			if !logx.ValidVerbosity(verbose) {
				return fmt.Errorf("invalid verbosity %d: must be between %d and %d",
					verbose, logx.MinVerbosity, logx.MaxVerbosity)
			}
			logx.SetVerbosity(verbose)

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			*exitCode = launch(cfg, supervisor.ResolvePlan(serverOnly, guiOnly), passthroughArgs(rawArgs))
			return nil
		},
	}

	cmd.Flags().IntVarP(&verbose, "verbose", "v", 1,
		"Adjust the level of console output (0~4).")
	cmd.Flags().BoolVarP(&serverOnly, "server-only", "s", false,
		"Run only the server (headless mode). This will override -g, if it is also present.")
	cmd.Flags().BoolVarP(&guiOnly, "gui-only", "g", false,
		"Run only the GUI.")
	cmd.Flags().StringVar(&configPath, "config", "",
		"Launcher configuration file (executables, shutdown budget, endpoints).")

	// Pass-through flags: declared so they show in help and parse cleanly,
	// but the children do their own parsing of the forwarded argv.
	cmd.Flags().StringP("file", "f", "", "Load a world file on start.")
	cmd.Flags().Float64P("update-rate", "z", -1, "Update rate in Hertz.")
	cmd.Flags().Uint64("iterations", 0, "Number of iterations to execute.")
	cmd.Flags().BoolP("run", "r", false,
		"Run simulation on start. The default is false, which starts simulation paused.")

	return cmd
}

// launch wires up the optional endpoints and hands control to the supervisor.
func launch(cfg config.Config, plan supervisor.LaunchPlan, passthrough []string) int {
	logx.Infof("simlaunch %s", version)

	sup := supervisor.New(cfg)

	if cfg.History.Path != "" {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			logx.Warnf("run history disabled: %v", err)
		} else {
			defer func() { _ = store.Close() }()
			sup.AttachHistory(store)
		}
	}

	if cfg.Health.Addr != "" {
		srv := healthserver.New(cfg.Health.Addr, sup)
		if err := srv.Start(); err != nil {
			logx.Warnf("health endpoint disabled: %v", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), healthStopTimeout)
				defer cancel()
				_ = srv.Stop(ctx)
			}()
		}
	}

	return sup.Run(context.Background(), plan, passthrough)
}
