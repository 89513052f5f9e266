package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/VeraLinno/Task-management-utility/internal/config"
	"github.com/VeraLinno/Task-management-utility/internal/engine"
	"github.com/VeraLinno/Task-management-utility/internal/storage"
	"github.com/spf13/cobra"
)

var Version = "dev"

// app carries the state shared by every subcommand for one invocation.
type app struct {
	out     io.Writer
	backend string
	dataDir string
	format  string
	verbose bool

	store     storage.Adapter
	closeFn   func() error
	engine    *engine.Engine
	formatter formatter
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}
	cfg := config.Load()

	rootCmd := &cobra.Command{
		Use:           "taskctl",
		Short:         "Manage tasks with priorities, due dates, recurrence and dependencies",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cfg)
		},
	}
	rootCmd.SetOut(out)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.backend, "backend", cfg.StorageBackend, "Storage backend (file, badger, memory)")
	flags.StringVar(&a.dataDir, "data-dir", cfg.DataDir, "Directory holding the task collection")
	flags.StringVarP(&a.format, "output", "o", "text", "Output format (text, json, yaml)")
	flags.BoolVar(&a.verbose, "verbose", false, "Log engine activity to stderr")

	rootCmd.AddCommand(addCmd(a))
	rootCmd.AddCommand(listCmd(a))
	rootCmd.AddCommand(showCmd(a))
	rootCmd.AddCommand(updateCmd(a))
	rootCmd.AddCommand(doneCmd(a))
	rootCmd.AddCommand(rmCmd(a))
	rootCmd.AddCommand(statsCmd(a))
	rootCmd.AddCommand(upcomingCmd(a))
	rootCmd.AddCommand(canCompleteCmd(a))
	rootCmd.AddCommand(clearCmd(a))

	return rootCmd
}

func (a *app) open(cfg *config.Config) error {
	f, err := newFormatter(a.format)
	if err != nil {
		return err
	}
	a.formatter = f

	cfg.StorageBackend = a.backend
	cfg.DataDir = a.dataDir
	if err := cfg.Validate(); err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	store, closeFn, err := storage.Open(cfg.StorageBackend, cfg.DataDir, cfg.StorageKey, logger)
	if err != nil {
		return err
	}
	a.store = store
	a.closeFn = closeFn
	a.engine = engine.New(store, engine.WithLogger(logger), engine.WithLocation(loc))
	return nil
}

// run wraps a subcommand so storage is closed even when it fails.
func (a *app) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		defer func() {
			if cerr := a.close(); err == nil {
				err = cerr
			}
		}()
		return fn(cmd, args)
	}
}

func (a *app) close() error {
	if a.closeFn == nil {
		return nil
	}
	err := a.closeFn()
	a.closeFn = nil
	return err
}
