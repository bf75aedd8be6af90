// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/ava-labs/incrementer/pebble"
	"github.com/ava-labs/incrementer/programs/incrementer"
	"github.com/ava-labs/incrementer/state"
	"github.com/ava-labs/incrementer/vm"

	inctrace "github.com/ava-labs/incrementer/trace"
)

const (
	simulatorFolder = ".incrementer-sim"
	dbFolder        = "db"
	logsFolder      = "logs"
)

// flags are bound per command tree so a nested tree built by the interpreter
// does not reset the values the simulator was initialized with.
type flags struct {
	logLevel               string
	configPath             string
	dataDir                string
	cleanup                bool
	enableWriterDisplaying bool
}

type Simulator struct {
	cfg        *Config
	dataDir    string
	cleanup    bool
	logFactory *logFactory

	log        logging.Logger
	tracer     trace.Tracer
	registry   *prometheus.Registry
	dbRegistry *prometheus.Registry
	vm         *vm.VM

	// named keys share the vm database under their own prefix
	keys  state.Mutable
	nonce atomic.Uint64
}

// Execute runs the simulator with the process arguments and releases every
// resource it opened before returning.
func (s *Simulator) Execute(ctx context.Context) error {
	defer s.Close()
	return s.NewRootCmd().ExecuteContext(ctx)
}

func (s *Simulator) NewRootCmd() *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:   "incrementer-sim",
		Short: "Incrementer program simulator",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return s.Init(f)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cobra.EnablePrefixMatching = true
	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.DisableAutoGenTag = true
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})

	cmd.PersistentFlags().StringVar(&f.logLevel, "log-level", "", "log level, overrides the config file")
	cmd.PersistentFlags().StringVar(&f.configPath, "config", "", "path to a json or yaml config file")
	cmd.PersistentFlags().StringVar(&f.dataDir, "data-dir", "", "simulator directory (default ~/"+simulatorFolder+")")
	cmd.PersistentFlags().BoolVar(&f.cleanup, "cleanup", false, "remove simulator directory on exit")
	cmd.PersistentFlags().BoolVar(&f.enableWriterDisplaying, "enable-writer-displaying", false, "also write logs to stderr")

	cmd.AddCommand(
		s.newRunCmd(),
		s.newKeyCmd(),
		s.newProgramCmd(),
		s.newInterpreterCmd(),
		s.newServeCmd(),
	)
	return cmd
}

// Init opens the simulator state. It is a no-op once the simulator is
// running.
func (s *Simulator) Init(f *flags) error {
	if s.vm != nil {
		return nil
	}

	cfg, err := loadConfig(f.configPath)
	if err != nil {
		return err
	}
	if len(f.logLevel) > 0 {
		cfg.LogLevel = f.logLevel
	}
	if len(f.dataDir) > 0 {
		cfg.DataDir = f.dataDir
	}
	if len(cfg.DataDir) == 0 {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		cfg.DataDir = path.Join(homeDir, simulatorFolder)
	}
	s.cfg = cfg
	s.dataDir = cfg.DataDir
	s.cleanup = f.cleanup

	loggingConfig := logging.Config{}
	loggingConfig.LogLevel, err = logging.ToLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	loggingConfig.DisplayLevel = loggingConfig.LogLevel
	loggingConfig.Directory = path.Join(cfg.DataDir, logsFolder)
	loggingConfig.MaxSize = 8
	loggingConfig.MaxFiles = 4
	loggingConfig.MaxAge = 7
	loggingConfig.LogFormat = logging.JSON
	loggingConfig.DisableWriterDisplaying = !f.enableWriterDisplaying

	s.logFactory = newLogFactory(loggingConfig)
	s.log, err = s.logFactory.Make("simulator")
	if err != nil {
		return err
	}

	db, dbRegistry, err := pebble.New(path.Join(cfg.DataDir, dbFolder), cfg.Pebble)
	if err != nil {
		return err
	}
	s.dbRegistry = dbRegistry

	s.tracer, err = inctrace.New(cfg.Trace)
	if err != nil {
		_ = db.Close()
		return err
	}

	s.registry = prometheus.NewRegistry()
	s.vm, err = vm.New(s.log, s.tracer, db, cfg.Runtime, s.registry, incrementer.Program())
	if err != nil {
		_ = db.Close()
		return err
	}
	s.keys = state.NewDatabaseMutable(db)
	s.nonce.Store(uint64(time.Now().UnixNano()))

	s.log.Info("simulator initialized",
		zap.String("dataDir", cfg.DataDir),
		zap.String("logLevel", cfg.LogLevel),
		zap.Strings("programs", s.vm.Programs()),
	)
	return nil
}

// Close shuts down the vm and removes the simulator directory when cleanup
// was requested.
func (s *Simulator) Close() {
	if s.vm != nil {
		if err := s.vm.Shutdown(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close simulator db: %s\n", err)
		}
		s.vm = nil
	}
	if s.tracer != nil {
		if err := s.tracer.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close tracer: %s\n", err)
		}
		s.tracer = nil
	}
	if s.logFactory != nil {
		s.logFactory.Close()
		s.logFactory = nil
	}
	if s.cleanup && len(s.dataDir) > 0 {
		if err := os.RemoveAll(s.dataDir); err != nil {
			fmt.Fprintf(os.Stderr, "failed to remove simulator directory: %s\n", err)
		}
	}
}

func (s *Simulator) nextNonce() uint64 {
	return s.nonce.Inc()
}
