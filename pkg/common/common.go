package common

import "time"

const (
	// DefaultFioBinary is the workload generator invoked for every job
	DefaultFioBinary = "fio"
	// DefaultIostatBinary is the sampler started alongside every job
	DefaultIostatBinary = "iostat"
	// DefaultLogsDir is where the per-run append-only log is written
	DefaultLogsDir = "logs"
	// DefaultOutput is the output destination used when none is selected
	DefaultOutput = "stdout"
	// DefaultSafetyMargin is added to the runtime to bound the workload process
	DefaultSafetyMargin = 30 * time.Second
	// DefaultSamplerGrace bounds the wait on the sampler once the workload exits
	DefaultSamplerGrace = 5 * time.Second
	// DefaultDeviceKind describes the device backend used when none is selected
	DefaultDeviceKind = "none"

	// FioMetricPrefix prefixes every workload derived record field
	FioMetricPrefix = "fio_"
	// IostatMetricPrefix prefixes every sampler derived record field
	IostatMetricPrefix = "iostat_"
)
