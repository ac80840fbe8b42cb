// Copyright 2020 Kubestr Developers

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

// 	http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/kastenhq/iotester/pkg/common"
	"github.com/kastenhq/iotester/pkg/config"
	"github.com/kastenhq/iotester/pkg/device"
	"github.com/kastenhq/iotester/pkg/iotester"
	"github.com/kastenhq/iotester/pkg/jobs"
	"github.com/kastenhq/iotester/pkg/output"
	"github.com/kastenhq/iotester/pkg/runner"
	"github.com/kastenhq/iotester/pkg/txg"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configFile string
	noProgress bool
	flags      = config.Defaults()
	rootCmd    = &cobra.Command{
		Use:   "iotester",
		Short: "A tool to benchmark storage I/O",
		Long: `iotester runs a set of fio jobs one after another while sampling
		device and CPU statistics with iostat, and reports one merged record
		per job.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(flags.Verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			setupLogging(cfg.Verbose)
			ctx, cancel := signalContext()
			defer cancel()
			return RunJobSet(ctx, cfg, !noProgress)
		},
	}

	extractCmd = &cobra.Command{
		Use:   "extract [results dir]",
		Short: "Parse saved fio JSON results",
		Long:  "Parse every *.json fio result in a directory and emit one record per file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			return Extract(args[0], cfg)
		},
	}

	jobSetsCmd = &cobra.Command{
		Use:   "jobsets",
		Short: "List the predefined job sets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range jobs.BuiltinJobSets() {
				fmt.Println(name)
			}
			return nil
		},
	}

	txgLines    int
	txgInterval int
	txgPool     string
	txgOnce     bool
	txgCmd      = &cobra.Command{
		Use:   "txg",
		Short: "Watch ZFS transaction groups",
		Long:  "Periodically render the newest entries of a pool's txgs kstat in human units.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()
			return Txg(ctx, txgPool, txgLines, time.Duration(txgInterval)*time.Second, txgOnce)
		},
	}
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "A YAML run configuration. Explicit flags win over it.")
	pf.CountVarP(&flags.Verbose, "verbose", "v", "Increase log verbosity (-v debug, -vv trace)")
	pf.StringVarP(&flags.Output, "output", "o", flags.Output, "Comma separated destinations. Options(stdout,json,csv,table)")
	pf.StringVarP(&flags.OutputFile, "outfile", "e", "", "The file where json records will be written")
	pf.StringVar(&flags.TextFile, "stdout-file", "", "Redirect the text destination to a file")
	pf.StringVar(&flags.JSONFile, "json-file", "", "Redirect the json destination to a file")
	pf.StringVar(&flags.CSVFile, "csv-file", "", "Redirect the csv destination to a file")
	pf.StringVar(&flags.TableFile, "table-file", "", "Redirect the table destination to a file")
	pf.BoolVar(&flags.CompactJSON, "compact-json", false, "Write one json object per line")
	pf.StringSliceVar(&flags.Fields, "fields", nil, "Columns of the csv and table destinations")

	f := rootCmd.Flags()
	f.StringVarP(&flags.SetName, "setname", "n", "", "Unique set name, used to name jobs and the run log (Required)")
	f.StringVarP(&flags.JobFile, "jobfile", "j", "", "File containing fio commands, one per line")
	f.StringVar(&flags.JobSet, "jobset", "", fmt.Sprintf("The name of a predefined job set used without a job file. Options(%s)", strings.Join(jobs.BuiltinJobSets(), ",")))
	f.StringSliceVarP(&flags.Devices, "devices", "d", nil, "Block devices sampled by iostat")
	f.StringVarP(&flags.Filename, "filename", "f", "", "File or device every job runs against")
	f.StringVarP(&flags.Filesize, "filesize", "s", "", "Size every job writes, <digits>[KMGT]")
	f.IntVarP(&flags.Runtime, "runtime", "t", 0, "Runtime of every job in seconds (Required)")
	f.BoolVar(&flags.DropCaches, "drop-caches", false, "Drop the page cache before every job (needs root)")
	f.BoolVar(&flags.CheckDevices, "check-devices", false, "Fail early when a device is missing from /dev")
	f.StringVar(&flags.DeviceKind, "device-kind", flags.DeviceKind, "Device prepared around every job. Options(none,zram,loop)")
	f.StringVar(&flags.DeviceSize, "device-size", "", "Size of the prepared device. Defaults to the filesize")
	f.StringVar(&flags.DevicePath, "device-path", "", "Backing file of a loop device")
	f.StringVar(&flags.LogsDir, "logs-dir", flags.LogsDir, "Directory of the per set run log")
	f.StringVar(&flags.FioBinary, "fio", flags.FioBinary, "The fio binary")
	f.StringVar(&flags.IostatBinary, "iostat", flags.IostatBinary, "The iostat binary")
	f.DurationVar(&flags.SafetyMargin, "safety-margin", flags.SafetyMargin, "Time added to the runtime before a job is killed")
	f.DurationVar(&flags.SamplerGrace, "sampler-grace", flags.SamplerGrace, "Time iostat may take to finish after a job")
	f.BoolVar(&noProgress, "no-progress", false, "Do not show a spinner while a job runs")

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(jobSetsCmd)

	rootCmd.AddCommand(txgCmd)
	txgCmd.Flags().IntVarP(&txgLines, "lines", "n", 0, "Number of transaction groups to show (Required)")
	_ = txgCmd.MarkFlagRequired("lines")
	txgCmd.Flags().IntVarP(&txgInterval, "interval", "t", 0, "Refresh delay in seconds (Required)")
	_ = txgCmd.MarkFlagRequired("interval")
	txgCmd.Flags().StringVar(&txgPool, "pool", txg.DefaultPool, "The ZFS pool to watch")
	txgCmd.Flags().BoolVar(&txgOnce, "once", false, "Render a single snapshot and exit")
}

// Execute executes the main command
func Execute() (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("Unexpected failure: %v\n%s", r, debug.Stack())
			err = errors.Errorf("unexpected failure: %v", r)
		}
	}()
	return rootCmd.Execute()
}

func setupLogging(verbose int) {
	cfg := config.RunConfig{Verbose: verbose}
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(cfg.LogLevel())
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// resolveConfig layers defaults, the optional YAML file and the flags the
// user set explicitly.
func resolveConfig(cmd *cobra.Command) (*config.RunConfig, error) {
	cfg := config.Defaults()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}
	for name, apply := range map[string]func(){
		"verbose":       func() { cfg.Verbose = flags.Verbose },
		"output":        func() { cfg.Output = flags.Output },
		"outfile":       func() { cfg.OutputFile = flags.OutputFile },
		"stdout-file":   func() { cfg.TextFile = flags.TextFile },
		"json-file":     func() { cfg.JSONFile = flags.JSONFile },
		"csv-file":      func() { cfg.CSVFile = flags.CSVFile },
		"table-file":    func() { cfg.TableFile = flags.TableFile },
		"compact-json":  func() { cfg.CompactJSON = flags.CompactJSON },
		"fields":        func() { cfg.Fields = flags.Fields },
		"setname":       func() { cfg.SetName = flags.SetName },
		"jobfile":       func() { cfg.JobFile = flags.JobFile },
		"jobset":        func() { cfg.JobSet = flags.JobSet },
		"devices":       func() { cfg.Devices = flags.Devices },
		"filename":      func() { cfg.Filename = flags.Filename },
		"filesize":      func() { cfg.Filesize = flags.Filesize },
		"runtime":       func() { cfg.Runtime = flags.Runtime },
		"drop-caches":   func() { cfg.DropCaches = flags.DropCaches },
		"check-devices": func() { cfg.CheckDevices = flags.CheckDevices },
		"device-kind":   func() { cfg.DeviceKind = flags.DeviceKind },
		"device-size":   func() { cfg.DeviceSize = flags.DeviceSize },
		"device-path":   func() { cfg.DevicePath = flags.DevicePath },
		"logs-dir":      func() { cfg.LogsDir = flags.LogsDir },
		"fio":           func() { cfg.FioBinary = flags.FioBinary },
		"iostat":        func() { cfg.IostatBinary = flags.IostatBinary },
		"safety-margin": func() { cfg.SafetyMargin = flags.SafetyMargin },
		"sampler-grace": func() { cfg.SamplerGrace = flags.SamplerGrace },
	} {
		if changed(name) {
			apply()
		}
	}
	if cfg.JobFile == "" && cfg.JobSet == "" {
		cfg.JobSet = jobs.DefaultJobSet
	}
	return cfg, nil
}

// RunJobSet validates cfg and executes the benchmark.
func RunJobSet(ctx context.Context, cfg *config.RunConfig, showProgress bool) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	backend, err := device.BackendFor(cfg.DeviceKind)
	if err != nil {
		return err
	}
	sink, err := output.New(cfg.OutputOptions())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sink.Close(); cerr != nil {
			log.WithError(cerr).Error("Failed to close output")
		}
	}()
	runLog, err := runner.OpenRunLog(cfg.LogsDir, cfg.SetName)
	if err != nil {
		return err
	}
	log.WithField("run", runLog.RunID).Infof("Appending to %s", runLog.Path)

	orchestrator := runner.NewOrchestrator(cfg.RunnerConfig(), runner.NewLocalLauncher(), runner.NewPageCacheDropper())
	if showProgress {
		orchestrator.WithProgress(os.Stderr)
	}

	fmt.Fprint(os.Stderr, iotester.Logo)
	results, err := iotester.NewTester(cfg, orchestrator, backend, sink, runLog).Run(ctx)
	iotester.PrintResults(os.Stderr, results)
	if err != nil && !common.IsKind(err, common.KindConfig) {
		log.WithError(err).Error("Run finished with failures")
	}
	return err
}

// Extract parses saved fio results in dir and writes them to the configured
// destinations.
func Extract(dir string, cfg *config.RunConfig) error {
	sink, err := output.New(cfg.OutputOptions())
	if err != nil {
		return err
	}
	results, err := iotester.ExtractDir(dir, sink)
	if cerr := sink.Close(); cerr != nil {
		log.WithError(cerr).Error("Failed to close output")
	}
	iotester.PrintResults(os.Stderr, results)
	return err
}

// Txg renders the txgs kstat of pool every interval, or once.
func Txg(ctx context.Context, pool string, lines int, interval time.Duration, once bool) error {
	if lines <= 0 || interval <= 0 {
		return common.ConfigErrorf("lines and interval must be positive")
	}
	v := &txg.Viewer{
		Path:     txg.KstatPath(pool),
		Lines:    lines,
		Interval: interval,
		Out:      os.Stdout,
	}
	if once {
		return v.Once()
	}
	return v.Watch(ctx)
}
