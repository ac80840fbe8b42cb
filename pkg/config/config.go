package config

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/kastenhq/iotester/pkg/common"
	"github.com/kastenhq/iotester/pkg/device"
	"github.com/kastenhq/iotester/pkg/jobs"
	"github.com/kastenhq/iotester/pkg/output"
	"github.com/kastenhq/iotester/pkg/runner"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
	"k8s.io/apimachinery/pkg/api/resource"
)

var (
	deviceNameRe = regexp.MustCompile(`^[a-zA-Z0-9/_-]+$`)
	filesizeRe   = regexp.MustCompile(`^[0-9]+[KMGTkmgt]?$`)
)

// RunConfig is the resolved set of run parameters.
type RunConfig struct {
	SetName  string   `yaml:"setname"`
	JobFile  string   `yaml:"jobfile"`
	JobSet   string   `yaml:"jobset"`
	Devices  []string `yaml:"devices"`
	Filename string   `yaml:"filename"`
	Filesize string   `yaml:"filesize"`
	Runtime  int      `yaml:"runtime"`
	Verbose  int      `yaml:"verbose"`

	Output      string   `yaml:"output"`
	OutputFile  string   `yaml:"output_file"`
	TextFile    string   `yaml:"stdout_file"`
	JSONFile    string   `yaml:"json_file"`
	CSVFile     string   `yaml:"csv_file"`
	TableFile   string   `yaml:"table_file"`
	CompactJSON bool     `yaml:"compact_json"`
	Fields      []string `yaml:"fields"`

	DropCaches   bool   `yaml:"drop_caches"`
	CheckDevices bool   `yaml:"check_devices"`
	DeviceKind   string `yaml:"device_kind"`
	DeviceSize   string `yaml:"device_size"`
	DevicePath   string `yaml:"device_path"`

	LogsDir      string        `yaml:"logs_dir"`
	FioBinary    string        `yaml:"fio"`
	IostatBinary string        `yaml:"iostat"`
	SafetyMargin time.Duration `yaml:"safety_margin"`
	SamplerGrace time.Duration `yaml:"sampler_grace"`
}

// Defaults returns a RunConfig with every optional value filled in.
func Defaults() *RunConfig {
	return &RunConfig{
		Output:       common.DefaultOutput,
		DeviceKind:   common.DefaultDeviceKind,
		LogsDir:      common.DefaultLogsDir,
		FioBinary:    common.DefaultFioBinary,
		IostatBinary: common.DefaultIostatBinary,
		SafetyMargin: common.DefaultSafetyMargin,
		SamplerGrace: common.DefaultSamplerGrace,
	}
}

// Load reads a YAML file on top of the defaults. Unknown keys are rejected.
func Load(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, common.ConfigError(errors.Wrapf(err, "Unable to read config %s", path))
	}
	cfg := Defaults()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, common.ConfigError(errors.Wrapf(err, "Unable to parse config %s", path))
	}
	return cfg, nil
}

// Validate checks everything that must hold before the first job runs.
func (c *RunConfig) Validate() error {
	if strings.TrimSpace(c.SetName) == "" {
		return common.ConfigErrorf("A set name is required")
	}
	if c.JobFile == "" && c.JobSet == "" {
		return common.ConfigErrorf("Either a job file or a job set is required")
	}
	if c.JobFile != "" {
		if _, err := os.Stat(c.JobFile); err != nil {
			return common.ConfigError(errors.Wrapf(err, "Job file %s is not accessible", c.JobFile))
		}
	}
	if c.Runtime <= 0 {
		return common.ConfigErrorf("Runtime must be positive, got %d", c.Runtime)
	}
	for _, d := range c.Devices {
		if !deviceNameRe.MatchString(d) {
			return common.ConfigErrorf("Invalid device name %q", d)
		}
		if c.CheckDevices {
			if _, err := os.Stat(DevicePath(d)); err != nil {
				return common.ConfigError(errors.Wrapf(err, "Device %s not found", d))
			}
		}
	}
	if c.Filesize != "" {
		if !filesizeRe.MatchString(c.Filesize) {
			return common.ConfigErrorf("Invalid filesize %q, expected <digits>[KMGT]", c.Filesize)
		}
		if _, err := c.FilesizeBytes(); err != nil {
			return err
		}
	}
	if c.SafetyMargin < 0 || c.SamplerGrace < 0 {
		return common.ConfigErrorf("Timeouts must not be negative")
	}
	if _, err := device.BackendFor(c.DeviceKind); err != nil {
		return err
	}
	return nil
}

// DevicePath returns the /dev path of a device name.
func DevicePath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join("/dev", name)
}

// FilesizeBytes converts the filesize to bytes. Suffixes are binary, the
// way fio reads them.
func (c *RunConfig) FilesizeBytes() (int64, error) {
	if c.Filesize == "" {
		return 0, nil
	}
	s := c.Filesize
	if last := s[len(s)-1]; strings.ContainsRune("KMGTkmgt", rune(last)) {
		s = s[:len(s)-1] + strings.ToUpper(string(last)) + "i"
	}
	q, err := resource.ParseQuantity(s)
	if err != nil {
		return 0, common.ConfigError(errors.Wrapf(err, "Invalid filesize %q", c.Filesize))
	}
	return q.Value(), nil
}

// Overrides returns the parameters that win over every job.
func (c *RunConfig) Overrides() jobs.Overrides {
	return jobs.Overrides{
		Filename: c.Filename,
		Filesize: c.Filesize,
		Runtime:  c.Runtime,
	}
}

// LogLevel maps the verbosity count to a logrus level.
func (c *RunConfig) LogLevel() log.Level {
	switch {
	case c.Verbose >= 2:
		return log.TraceLevel
	case c.Verbose == 1:
		return log.DebugLevel
	default:
		return log.InfoLevel
	}
}

// OutputOptions returns the sink selection for this run.
func (c *RunConfig) OutputOptions() output.Options {
	return output.Options{
		Types:       c.Output,
		TextFile:    c.TextFile,
		JSONFile:    c.JSONFile,
		CSVFile:     c.CSVFile,
		TableFile:   c.TableFile,
		OutputFile:  c.OutputFile,
		CompactJSON: c.CompactJSON,
		Fields:      c.Fields,
	}
}

// RunnerConfig returns the orchestrator settings for this run.
func (c *RunConfig) RunnerConfig() runner.Config {
	return runner.Config{
		Runtime:      c.Runtime,
		SafetyMargin: c.SafetyMargin,
		SamplerGrace: c.SamplerGrace,
		IostatBinary: c.IostatBinary,
		Devices:      c.Devices,
		DropCaches:   c.DropCaches,
	}
}

// DeviceSpec returns the device backend request for this run.
func (c *RunConfig) DeviceSpec() device.Spec {
	size := c.DeviceSize
	if size == "" {
		size = c.Filesize
	}
	return device.Spec{
		Kind: c.DeviceKind,
		Size: size,
		Path: c.DevicePath,
	}
}

// LoadJobs reads the configured job source.
func (c *RunConfig) LoadJobs() ([]jobs.JobSpec, error) {
	if c.JobFile != "" {
		return jobs.ReadJobFile(c.JobFile)
	}
	return jobs.LoadBuiltin(c.JobSet)
}
