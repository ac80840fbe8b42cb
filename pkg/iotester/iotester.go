package iotester

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kastenhq/iotester/pkg/aggregate"
	"github.com/kastenhq/iotester/pkg/common"
	"github.com/kastenhq/iotester/pkg/config"
	"github.com/kastenhq/iotester/pkg/device"
	"github.com/kastenhq/iotester/pkg/fio"
	"github.com/kastenhq/iotester/pkg/iostat"
	"github.com/kastenhq/iotester/pkg/jobs"
	"github.com/kastenhq/iotester/pkg/output"
	"github.com/kastenhq/iotester/pkg/runner"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const Logo = `
**************************************
 _       _            _
(_) ___ | |_ ___  ___| |_ ___ _ __
| |/ _ \| __/ _ \/ __| __/ _ \ '__|
| | (_) | ||  __/\__ \ ||  __/ |
|_|\___/ \__\___||___/\__\___|_|

**************************************
`

//go:generate go run github.com/golang/mock/mockgen -destination=mocks/mock_job_runner.go -package=mocks . JobRunner
type JobRunner interface {
	Run(ctx context.Context, job jobs.NormalizedJob) *runner.JobResult
}

// Tester is the primary object for a benchmark run. It owns the job loop:
// device scope, execution, parsing, aggregation, the run log and delivery.
type Tester struct {
	cfg     *config.RunConfig
	runner  JobRunner
	backend device.Backend
	sink    output.Sink
	runLog  *runner.RunLog
}

// NewTester wires a Tester. runLog may be nil to skip the per-run log.
func NewTester(cfg *config.RunConfig, r JobRunner, backend device.Backend, sink output.Sink, runLog *runner.RunLog) *Tester {
	if backend == nil {
		backend = device.NoneBackend{}
	}
	return &Tester{
		cfg:     cfg,
		runner:  r,
		backend: backend,
		sink:    sink,
		runLog:  runLog,
	}
}

// Jobs loads and normalizes the configured job source.
func (t *Tester) Jobs() ([]jobs.NormalizedJob, error) {
	specs, err := t.cfg.LoadJobs()
	if err != nil {
		return nil, err
	}
	return jobs.Normalize(specs, t.cfg.SetName, t.cfg.FioBinary, t.cfg.Overrides()), nil
}

// Run executes every job in order. Only configuration problems abort the
// run; a failed job is reported in its TestOutput and in the returned error
// once all jobs are done.
func (t *Tester) Run(ctx context.Context) ([]*TestOutput, error) {
	normalized, err := t.Jobs()
	if err != nil {
		return nil, err
	}
	if len(normalized) == 0 {
		log.Warnf("No jobs found for set %s", t.cfg.SetName)
		return nil, nil
	}
	log.Infof("Running %d jobs for set %s", len(normalized), t.cfg.SetName)

	var results []*TestOutput
	failed := 0
	for _, job := range normalized {
		if ctx.Err() != nil {
			return results, errors.Wrapf(ctx.Err(), "Run interrupted after %d of %d jobs", len(results), len(normalized))
		}
		rec := t.RunJob(ctx, job)
		if err := t.sink.Write(rec); err != nil {
			log.WithError(common.SinkError(err)).WithField("sink", t.sink.Name()).Error("Failed to write record")
		}
		out := jobOutput(rec)
		if out.Failed() {
			failed++
		}
		results = append(results, out)
	}
	if failed > 0 {
		return results, errors.Errorf("%d of %d jobs failed", failed, len(normalized))
	}
	return results, nil
}

// RunJob executes one job inside its device scope and returns its record.
// It never fails: problems are carried in the record's error field.
func (t *Tester) RunJob(ctx context.Context, job jobs.NormalizedJob) *aggregate.Record {
	var rec *aggregate.Record
	err := device.With(ctx, t.backend, t.cfg.DeviceSpec(), func(h *device.Handle) error {
		if h.Path != "" && t.cfg.Filename == "" {
			job = job.WithParam("filename", h.Path)
		}
		res := t.runner.Run(ctx, job)
		rec = t.collect(job, res)
		return nil
	})
	if err != nil {
		log.WithError(err).WithField("job", job.Name).Error("Device scope failed")
		if rec == nil {
			rec = aggregate.Build(aggregate.Input{
				Job: job,
				Result: &runner.JobResult{
					Workload: runner.RunResult{
						Command:  job.Command(),
						ExitCode: runner.FailedExitCode,
						Err:      common.ProcessError(err),
					},
				},
			})
		} else {
			rec.SetError(err)
		}
	}
	return rec
}

func (t *Tester) collect(job jobs.NormalizedJob, res *runner.JobResult) *aggregate.Record {
	res0, metrics, perr := fio.Extract(res.Workload.Stdout)
	if perr != nil {
		log.WithError(perr).WithField("job", job.Name).Warn("Unable to extract workload metrics")
	} else {
		log.WithField("job", job.Name).Debug(res0.Print())
	}
	rec := aggregate.Build(aggregate.Input{
		Job:      job,
		Result:   res,
		Samples:  iostat.Parse(res.Sampler.Stdout),
		Metrics:  metrics,
		ParseErr: perr,
	})
	t.runLog.Append(job.Name, res, summary(rec))
	return rec
}

func summary(rec *aggregate.Record) string {
	var b strings.Builder
	for _, f := range rec.Fields {
		if f.Key == aggregate.KeyCommand {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", f.Key, aggregate.FormatValue(f.Value))
	}
	return b.String()
}

func jobOutput(rec *aggregate.Record) *TestOutput {
	testName := fmt.Sprintf("FIO job (%s)", rec.Name)
	if msg := rec.String(aggregate.KeyError); msg != "" {
		return makeTestOutput(testName, StatusError, msg, rec)
	}
	p := common.FioMetricPrefix
	mesg := fmt.Sprintf("%s bs=%s iodepth=%s: %s IOPS, %s MB/s, clat avg %sus, p99 %sus",
		rec.String(aggregate.KeyDirection), rec.String(p+"bs"), rec.String(p+"iodepth"),
		rec.String(p+"iops"), rec.String(p+"bw_mbs"), rec.String(p+"clat_avg_us"), rec.String(p+"clat_p99_us"))
	return makeTestOutput(testName, StatusOK, mesg, rec)
}

// PrintResults prints every TestOutput to w.
func PrintResults(w io.Writer, results []*TestOutput) {
	if w == nil {
		w = os.Stdout
	}
	for _, r := range results {
		r.Print(w)
		fmt.Fprintln(w)
	}
}
