package aggregate

import (
	"strings"

	"github.com/kastenhq/iotester/pkg/common"
	"github.com/kastenhq/iotester/pkg/fio"
	"github.com/kastenhq/iotester/pkg/iostat"
	"github.com/kastenhq/iotester/pkg/jobs"
	"github.com/kastenhq/iotester/pkg/runner"
	"github.com/shopspring/decimal"
)

// Well known record keys.
const (
	KeyJob       = "job"
	KeyCommand   = "command"
	KeyFioRC     = "fio_rc"
	KeyIostatRC  = "iostat_rc"
	KeyElapsed   = "elapsed_s"
	KeyTimedOut  = "timed_out"
	KeyError     = "error"
	KeyDirection = common.FioMetricPrefix + "direction"
)

// Mean returns the arithmetic mean rounded to 2 decimals, 0 for no samples.
func Mean(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	sum := decimal.Zero
	for _, v := range series {
		sum = sum.Add(decimal.NewFromFloat(v))
	}
	avg, _ := sum.Div(decimal.NewFromInt(int64(len(series)))).Round(2).Float64()
	return avg
}

// MetricKey turns an iostat column name into a record key: "%user" becomes
// "iostat_user", "rkB/s" becomes "iostat_rkB_s".
func MetricKey(metric string) string {
	k := strings.TrimPrefix(metric, "%")
	k = strings.NewReplacer("/", "_", "-", "_").Replace(k)
	return common.IostatMetricPrefix + k
}

// Summarize averages every whitelisted series in a fixed order.
func Summarize(samples *iostat.Samples) []Field {
	if samples == nil {
		samples = iostat.NewSamples()
	}
	fields := make([]Field, 0, len(iostat.CPUMetrics)+len(iostat.DeviceMetrics))
	for _, m := range iostat.CPUMetrics {
		fields = append(fields, Field{Key: MetricKey(m), Value: Mean(samples.CPU[m])})
	}
	for _, m := range iostat.DeviceMetrics {
		fields = append(fields, Field{Key: MetricKey(m), Value: Mean(samples.Device[m])})
	}
	return fields
}

// Input is everything known about a job once both programs have finished.
type Input struct {
	Job      jobs.NormalizedJob
	Result   *runner.JobResult
	Samples  *iostat.Samples
	Metrics  *fio.WorkloadMetrics
	ParseErr error
}

// Build merges workload metrics and sampler averages into one Record. The
// field set does not depend on success: a job whose output could not be
// parsed keeps zero metrics and carries the failure in the error field.
func Build(in Input) *Record {
	r := &Record{
		Name:    in.Job.Name,
		Command: in.Job.Command(),
	}
	r.add(KeyJob, in.Job.Name)
	r.add(KeyCommand, strings.Join(r.Command, " "))

	m := in.Metrics
	if m == nil {
		m = &fio.WorkloadMetrics{}
	}
	p := common.FioMetricPrefix
	r.add(KeyDirection, string(m.Direction))
	r.add(p+"bs", m.BlockSize)
	r.add(p+"iodepth", m.IoDepth)
	r.add(p+"usr_cpu", m.UsrCPU)
	r.add(p+"sys_cpu", m.SysCPU)
	r.add(p+"iops", m.IOPS)
	r.add(p+"bw_mbs", m.BandwidthMBs)
	r.add(p+"slat_avg_us", m.SlatMeanUs)
	r.add(p+"clat_avg_us", m.ClatMeanUs)
	r.add(p+"lat_avg_us", m.LatMeanUs)
	r.add(p+"clat_p99_us", m.ClatP99Us)
	r.add(p+"clat_p9999_us", m.ClatP9999Us)
	r.add(p+"latency_ratio", m.LatencyRatio)

	r.Fields = append(r.Fields, Summarize(in.Samples)...)

	res := in.Result
	if res == nil {
		res = &runner.JobResult{}
	}
	r.add(KeyFioRC, res.Workload.ExitCode)
	r.add(KeyIostatRC, res.Sampler.ExitCode)
	r.add(KeyElapsed, fio.Round(res.Workload.Elapsed.Seconds(), 2))
	r.add(KeyTimedOut, res.Workload.TimedOut)
	r.add(KeyError, errorText(in))

	r.Raw = RawLogs{
		WorkloadStdout: res.Workload.Stdout,
		WorkloadStderr: res.Workload.Stderr,
		SamplerStdout:  res.Sampler.Stdout,
		SamplerStderr:  res.Sampler.Stderr,
	}
	return r
}

func errorText(in Input) string {
	var msgs []string
	if in.Result != nil {
		if err := in.Result.Workload.Err; err != nil {
			msgs = append(msgs, err.Error())
		}
		if err := in.Result.Sampler.Err; err != nil {
			msgs = append(msgs, "sampler: "+err.Error())
		}
	}
	if in.ParseErr != nil {
		msgs = append(msgs, in.ParseErr.Error())
	}
	return strings.Join(msgs, "; ")
}

// SetError appends err to the record's error field.
func (r *Record) SetError(err error) {
	if err == nil {
		return
	}
	for i, f := range r.Fields {
		if f.Key != KeyError {
			continue
		}
		if prev, _ := f.Value.(string); prev != "" {
			r.Fields[i].Value = prev + "; " + err.Error()
		} else {
			r.Fields[i].Value = err.Error()
		}
		return
	}
	r.add(KeyError, err.Error())
}
