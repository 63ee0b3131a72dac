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

package cfg

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Debug DebugConfig `yaml:"debug"`

	Logging LoggingConfig `yaml:"logging"`

	FileSystem FileSystemConfig `yaml:"file-system"`

	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type TelemetryConfig struct {
	// PrometheusMetrics exports op counters/latency histograms through a
	// Prometheus registry instead of just the process-local recorder.
	PrometheusMetrics bool `yaml:"prometheus-metrics"`

	// StdoutTracing writes finished spans as JSON to stdout, for local
	// debugging without a collector.
	StdoutTracing bool `yaml:"stdout-tracing"`
}

type DebugConfig struct {
	ExitOnInvariantViolation bool `yaml:"exit-on-invariant-violation"`

	LogMutex bool `yaml:"log-mutex"`
}

type LoggingConfig struct {
	Severity LogSeverity `yaml:"severity"`

	FilePath string `yaml:"file-path"`

	Format string `yaml:"format"`

	LogRotate LogRotateLoggingConfig `yaml:"log-rotate"`
}

type LogRotateLoggingConfig struct {
	MaxFileSizeMb int `yaml:"max-file-size-mb"`

	BackupFileCount int `yaml:"backup-file-count"`

	Compress bool `yaml:"compress"`
}

type FileSystemConfig struct {
	FileMode Octal `yaml:"file-mode"`

	DirMode Octal `yaml:"dir-mode"`

	Uid int `yaml:"uid"`
}

func BindFlags(flagSet *pflag.FlagSet) error {
	var err error

	flagSet.BoolP("debug_invariants", "", false, "Exit when internal invariants are violated.")

	err = viper.BindPFlag("debug.exit-on-invariant-violation", flagSet.Lookup("debug_invariants"))
	if err != nil {
		return err
	}

	flagSet.BoolP("debug_mutex", "", false, "Print debug messages when a mutex is held too long.")

	err = viper.BindPFlag("debug.log-mutex", flagSet.Lookup("debug_mutex"))
	if err != nil {
		return err
	}

	flagSet.StringP("log-severity", "", string(InfoLogSeverity), "Logging severity: TRACE, DEBUG, INFO, WARNING, ERROR or OFF.")

	err = viper.BindPFlag("logging.severity", flagSet.Lookup("log-severity"))
	if err != nil {
		return err
	}

	flagSet.StringP("log-file", "", "", "Path to a log file. Empty means stderr.")

	err = viper.BindPFlag("logging.file-path", flagSet.Lookup("log-file"))
	if err != nil {
		return err
	}

	flagSet.StringP("log-format", "", "text", "Logging output format: text or json.")

	err = viper.BindPFlag("logging.format", flagSet.Lookup("log-format"))
	if err != nil {
		return err
	}

	flagSet.IntP("file-mode", "", int(DefaultFilePerm), "Permission bits for regular files, in octal.")

	err = viper.BindPFlag("file-system.file-mode", flagSet.Lookup("file-mode"))
	if err != nil {
		return err
	}

	flagSet.IntP("dir-mode", "", int(DefaultDirPerm), "Permission bits for directories, in octal.")

	err = viper.BindPFlag("file-system.dir-mode", flagSet.Lookup("dir-mode"))
	if err != nil {
		return err
	}

	flagSet.IntP("uid", "", -1, "UID owner of all inodes created without an explicit owner.")

	err = viper.BindPFlag("file-system.uid", flagSet.Lookup("uid"))
	if err != nil {
		return err
	}

	flagSet.BoolP("prometheus-metrics", "", false, "Export op metrics through a Prometheus registry.")

	err = viper.BindPFlag("telemetry.prometheus-metrics", flagSet.Lookup("prometheus-metrics"))
	if err != nil {
		return err
	}

	flagSet.BoolP("stdout-tracing", "", false, "Write finished spans as JSON to stdout.")

	err = viper.BindPFlag("telemetry.stdout-tracing", flagSet.Lookup("stdout-tracing"))
	if err != nil {
		return err
	}

	return nil
}
