package runner

import (
	"context"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/kastenhq/iotester/pkg/common"
	"github.com/kastenhq/iotester/pkg/iostat"
	"github.com/kastenhq/iotester/pkg/jobs"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// JobResult pairs the foreground workload with the background sampler.
type JobResult struct {
	Workload RunResult
	Sampler  RunResult
}

// Config controls how a single job is executed.
type Config struct {
	// Runtime is the nominal workload duration in seconds.
	Runtime int
	// SafetyMargin is added to Runtime to get the workload deadline.
	SafetyMargin time.Duration
	// SamplerGrace bounds the wait for the sampler after the workload exits.
	SamplerGrace time.Duration
	IostatBinary string
	Devices      []string
	DropCaches   bool
}

// Orchestrator runs one job at a time: the sampler starts first in the
// background, the workload runs in the foreground with a deadline, then the
// sampler is collected.
type Orchestrator struct {
	cfg      Config
	launcher Launcher
	cache    CacheDropper
	progress io.Writer
}

// NewOrchestrator builds an Orchestrator. cache may be nil when caches are
// never dropped.
func NewOrchestrator(cfg Config, launcher Launcher, cache CacheDropper) *Orchestrator {
	if cfg.SafetyMargin <= 0 {
		cfg.SafetyMargin = common.DefaultSafetyMargin
	}
	if cfg.SamplerGrace <= 0 {
		cfg.SamplerGrace = common.DefaultSamplerGrace
	}
	if cfg.IostatBinary == "" {
		cfg.IostatBinary = common.DefaultIostatBinary
	}
	return &Orchestrator{
		cfg:      cfg,
		launcher: launcher,
		cache:    cache,
	}
}

// WithProgress shows a spinner on w while a workload runs.
func (o *Orchestrator) WithProgress(w io.Writer) *Orchestrator {
	o.progress = w
	return o
}

// Deadline is how long a workload may run before it is killed.
func (o *Orchestrator) Deadline() time.Duration {
	return time.Duration(o.cfg.Runtime)*time.Second + o.cfg.SafetyMargin
}

// SamplerCommand is the argv used for the background sampler.
func (o *Orchestrator) SamplerCommand() []string {
	return iostat.Command(o.cfg.IostatBinary, o.cfg.Runtime, o.cfg.Devices)
}

// Run executes one job. Failures are reported in the returned JobResult,
// never as a panic or an early return.
func (o *Orchestrator) Run(ctx context.Context, job jobs.NormalizedJob) *JobResult {
	res := &JobResult{}
	if o.cfg.DropCaches && o.cache != nil {
		if err := o.cache.Drop(ctx); err != nil {
			log.WithError(err).Warn("Unable to drop caches, continuing")
		}
	}

	samplerCmd := o.SamplerCommand()
	sampler, err := o.launcher.Start(samplerCmd)
	if err != nil {
		log.WithError(err).Warn("Unable to start sampler")
		res.Sampler = failed(samplerCmd, err)
	}

	res.Workload = o.runWorkload(ctx, job)

	if sampler != nil {
		res.Sampler = o.collectSampler(ctx, sampler)
	}
	return res
}

func (o *Orchestrator) runWorkload(ctx context.Context, job jobs.NormalizedJob) RunResult {
	argv := job.Command()
	log.WithField("job", job.Name).Debugf("Running %v", argv)

	p, err := o.launcher.Start(argv)
	if err != nil {
		return failed(argv, err)
	}

	if o.progress != nil {
		spin := spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(o.progress))
		spin.Suffix = " Running " + job.Name
		spin.Start()
		defer spin.Stop()
	}

	deadline := o.Deadline()
	if p.Wait(ctx, deadline) {
		r := p.Result()
		if r.ExitCode != 0 {
			r.Err = common.ProcessError(errors.Errorf("%s exited with code %d", argv[0], r.ExitCode))
		}
		return r
	}

	if kerr := p.Kill(); kerr != nil {
		log.WithError(kerr).Error("Unable to kill workload")
	}
	r := p.Result()
	r.ExitCode = TimeoutExitCode
	r.TimedOut = true
	if ctx.Err() != nil {
		r.Err = common.ProcessError(errors.Wrap(ctx.Err(), "Workload interrupted"))
	} else {
		r.Err = common.TimeoutError(errors.Errorf("%s did not finish within %s", argv[0], deadline))
	}
	return r
}

func (o *Orchestrator) collectSampler(ctx context.Context, p Process) RunResult {
	if p.Wait(ctx, o.cfg.SamplerGrace) {
		r := p.Result()
		if r.ExitCode != 0 {
			r.Err = common.ProcessError(errors.Errorf("%s exited with code %d", r.Command[0], r.ExitCode))
		}
		return r
	}
	// Samples written so far are still usable, so a late sampler is not an error.
	log.Debugf("Sampler still running after %s, killing it", o.cfg.SamplerGrace)
	if err := p.Kill(); err != nil {
		log.WithError(err).Error("Unable to kill sampler")
	}
	r := p.Result()
	r.ExitCode = TimeoutExitCode
	r.TimedOut = true
	return r
}

func failed(argv []string, err error) RunResult {
	return RunResult{
		Command:  argv,
		ExitCode: FailedExitCode,
		Stderr:   err.Error(),
		Err:      common.ProcessError(err),
	}
}
