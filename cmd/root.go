// Copyright 2024 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cmd implements vfsctl, a small command-line client that
// registers a demonstration driver with the VFS dispatch layer and drives
// it the same way any other caller would: through fs.VFS's public
// Open/Stat/Getdents surface, never by reaching into a driver directly.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/kernelkit/vfscore/cfg"
	"github.com/kernelkit/vfscore/fs"
	"github.com/kernelkit/vfscore/fs/vfstest"
	"github.com/kernelkit/vfscore/internal/logger"
	"github.com/kernelkit/vfscore/internal/metrics"
	"github.com/kernelkit/vfscore/internal/tracing"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile       string
	bindErr       error
	configFileErr error
	unmarshalErr  error

	// AppConfig holds the fully resolved configuration once PersistentPreRunE
	// has run: flags merged over an optional config file, merged over
	// defaults.
	AppConfig cfg.Config

	// vfs is the single, process-wide dispatch instance every subcommand
	// issues its calls through.
	vfs *fs.VFS
)

var rootCmd = &cobra.Command{
	Use:   "vfsctl",
	Short: "Drive a pluggable virtual file system through its dispatch layer",
	Long: `vfsctl registers a demonstration driver with the VFS core and
exercises it through the same Open/Stat/Getdents surface any real
driver would be reached through.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if bindErr != nil {
			return bindErr
		}
		if configFileErr != nil {
			return configFileErr
		}
		if unmarshalErr != nil {
			return unmarshalErr
		}
		if err := cfg.ValidateConfig(&AppConfig); err != nil {
			return err
		}
		return setUp()
	},
}

// telemetryShutdown releases whatever exporters setUp turned on, run at
// process exit once Execute's rootCmd.Execute returns.
var telemetryShutdown metrics.ShutdownFn = func(context.Context) error { return nil }

// setUp wires the ambient stack (logging, metrics, tracing) from AppConfig
// and mounts a demonstration in-memory driver at "/" so that stat/ls have
// something to operate on without requiring a real backing store.
func setUp() error {
	if err := logger.Init(logger.Config{
		Severity:      logger.Severity(AppConfig.Logging.Severity.Rank()),
		FilePath:      AppConfig.Logging.FilePath,
		MaxFileSizeMb: AppConfig.Logging.LogRotate.MaxFileSizeMb,
		BackupCount:   AppConfig.Logging.LogRotate.BackupFileCount,
		Compress:      AppConfig.Logging.LogRotate.Compress,
	}); err != nil {
		return fmt.Errorf("logger.Init: %w", err)
	}

	rec, err := metrics.NewOpRecorder()
	if err != nil {
		return fmt.Errorf("metrics.NewOpRecorder: %w", err)
	}

	var shutdowns []metrics.ShutdownFn
	if AppConfig.Telemetry.PrometheusMetrics {
		shutdown, err := metrics.SetupPrometheus()
		if err != nil {
			return fmt.Errorf("metrics.SetupPrometheus: %w", err)
		}
		shutdowns = append(shutdowns, shutdown)
	}
	if AppConfig.Telemetry.StdoutTracing {
		shutdown, err := tracing.SetupStdout()
		if err != nil {
			return fmt.Errorf("tracing.SetupStdout: %w", err)
		}
		shutdowns = append(shutdowns, metrics.ShutdownFn(shutdown))
	}
	telemetryShutdown = metrics.JoinShutdownFunc(shutdowns...)

	vfs = fs.New(fs.WithMetrics(rec), fs.WithTracer(tracing.NewTracer("vfsctl")))

	root := fs.NewFilesystem(vfstest.New(true))
	if err := vfs.Mounts.Mount("/", root); err != nil {
		return fmt.Errorf("mounting demo driver: %w", err)
	}

	logger.Infof("vfsctl ready, demo driver mounted at /")
	return nil
}

func Execute() {
	err := rootCmd.Execute()
	if shutdownErr := telemetryShutdown(context.Background()); shutdownErr != nil {
		logger.Warnf("telemetry shutdown: %v", shutdownErr)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "Path to a YAML config file")
	bindErr = cfg.BindFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(mountCmd)
	rootCmd.AddCommand(statCmd)
	rootCmd.AddCommand(lsCmd)
}

func initConfig() {
	AppConfig = cfg.GetDefaultConfig()

	if cfgFile == "" {
		unmarshalErr = viper.Unmarshal(&AppConfig, viper.DecodeHook(cfg.DecodeHook()))
		return
	}

	viper.SetConfigFile(cfgFile)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		configFileErr = fmt.Errorf("error while reading config file: %w", err)
		return
	}
	unmarshalErr = viper.Unmarshal(&AppConfig, viper.DecodeHook(cfg.DecodeHook()))
}
