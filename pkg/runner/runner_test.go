package runner

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/kastenhq/iotester/pkg/common"
	"github.com/kastenhq/iotester/pkg/jobs"
	"github.com/pkg/errors"
	. "gopkg.in/check.v1"
	"k8s.io/utils/exec"
	fakeexec "k8s.io/utils/exec/testing"
)

func Test(t *testing.T) { TestingT(t) }

type RunnerTestSuite struct{}

var _ = Suite(&RunnerTestSuite{})

type fakeProcess struct {
	exits   bool
	result  RunResult
	killed  bool
	timeout time.Duration
}

func (p *fakeProcess) Wait(ctx context.Context, timeout time.Duration) bool {
	p.timeout = timeout
	return p.exits
}

func (p *fakeProcess) Kill() error {
	p.killed = true
	return nil
}

func (p *fakeProcess) Result() RunResult {
	return p.result
}

type fakeLauncher struct {
	procs   map[string]*fakeProcess
	errs    map[string]error
	started []string
}

func (l *fakeLauncher) Start(argv []string) (Process, error) {
	l.started = append(l.started, argv[0])
	if err, ok := l.errs[argv[0]]; ok {
		return nil, err
	}
	p := l.procs[argv[0]]
	p.result.Command = argv
	return p, nil
}

type fakeDropper struct {
	calls int
	err   error
}

func (d *fakeDropper) Drop(ctx context.Context) error {
	d.calls++
	return d.err
}

func testJob() jobs.NormalizedJob {
	return jobs.Normalize([]jobs.JobSpec{{"fio", "--bs=4k"}}, "set1", "fio", jobs.Overrides{Runtime: 5})[0]
}

func newFakes() (*fakeLauncher, *fakeProcess, *fakeProcess) {
	workload := &fakeProcess{exits: true, result: RunResult{Stdout: "{}", Elapsed: 5 * time.Second}}
	sampler := &fakeProcess{exits: true, result: RunResult{Stdout: "avg-cpu"}}
	l := &fakeLauncher{procs: map[string]*fakeProcess{
		"fio":    workload,
		"iostat": sampler,
	}}
	return l, workload, sampler
}

func (s *RunnerTestSuite) TestRunOrder(c *C) {
	l, workload, sampler := newFakes()
	o := NewOrchestrator(Config{Runtime: 5, Devices: []string{"sda"}}, l, nil)
	res := o.Run(context.Background(), testJob())
	c.Assert(l.started, DeepEquals, []string{"iostat", "fio"})
	c.Assert(res.Workload.ExitCode, Equals, 0)
	c.Assert(res.Workload.Err, IsNil)
	c.Assert(res.Workload.Command, DeepEquals, testJob().Command())
	c.Assert(res.Sampler.ExitCode, Equals, 0)
	c.Assert(res.Sampler.Err, IsNil)
	c.Assert(res.Sampler.Command, DeepEquals, []string{"iostat", "-c", "-d", "-x", "-y", "1", "5", "sda"})
	c.Assert(workload.timeout, Equals, 5*time.Second+common.DefaultSafetyMargin)
	c.Assert(sampler.timeout, Equals, common.DefaultSamplerGrace)
	c.Assert(workload.killed, Equals, false)
	c.Assert(sampler.killed, Equals, false)
}

func (s *RunnerTestSuite) TestDeadline(c *C) {
	o := NewOrchestrator(Config{Runtime: 10, SafetyMargin: 3 * time.Second}, nil, nil)
	c.Assert(o.Deadline(), Equals, 13*time.Second)
}

func (s *RunnerTestSuite) TestWorkloadTimeout(c *C) {
	l, workload, _ := newFakes()
	workload.exits = false
	res := NewOrchestrator(Config{Runtime: 1}, l, nil).Run(context.Background(), testJob())
	c.Assert(workload.killed, Equals, true)
	c.Assert(res.Workload.ExitCode, Equals, TimeoutExitCode)
	c.Assert(res.Workload.TimedOut, Equals, true)
	c.Assert(common.IsKind(res.Workload.Err, common.KindTimeout), Equals, true)
	c.Assert(res.Sampler.ExitCode, Equals, 0)
}

func (s *RunnerTestSuite) TestWorkloadNonZeroExit(c *C) {
	l, workload, _ := newFakes()
	workload.result.ExitCode = 1
	res := NewOrchestrator(Config{Runtime: 1}, l, nil).Run(context.Background(), testJob())
	c.Assert(res.Workload.ExitCode, Equals, 1)
	c.Assert(res.Workload.TimedOut, Equals, false)
	c.Assert(common.IsKind(res.Workload.Err, common.KindProcess), Equals, true)
}

func (s *RunnerTestSuite) TestSamplerOverrunIsKilled(c *C) {
	l, _, sampler := newFakes()
	sampler.exits = false
	res := NewOrchestrator(Config{Runtime: 1, SamplerGrace: time.Second}, l, nil).Run(context.Background(), testJob())
	c.Assert(sampler.killed, Equals, true)
	c.Assert(sampler.timeout, Equals, time.Second)
	c.Assert(res.Sampler.TimedOut, Equals, true)
	c.Assert(res.Sampler.ExitCode, Equals, TimeoutExitCode)
	c.Assert(res.Sampler.Err, IsNil)
	c.Assert(res.Sampler.Stdout, Equals, "avg-cpu")
	c.Assert(res.Workload.Err, IsNil)
}

func (s *RunnerTestSuite) TestSpawnFailures(c *C) {
	l, _, _ := newFakes()
	l.errs = map[string]error{"fio": errors.New("executable file not found")}
	res := NewOrchestrator(Config{Runtime: 1}, l, nil).Run(context.Background(), testJob())
	c.Assert(res.Workload.ExitCode, Equals, FailedExitCode)
	c.Assert(res.Workload.Stderr, Equals, "executable file not found")
	c.Assert(common.IsKind(res.Workload.Err, common.KindProcess), Equals, true)
	c.Assert(res.Sampler.ExitCode, Equals, 0)

	l, _, _ = newFakes()
	l.errs = map[string]error{"iostat": errors.New("no iostat")}
	res = NewOrchestrator(Config{Runtime: 1}, l, nil).Run(context.Background(), testJob())
	c.Assert(l.started, DeepEquals, []string{"iostat", "fio"})
	c.Assert(res.Sampler.ExitCode, Equals, FailedExitCode)
	c.Assert(common.IsKind(res.Sampler.Err, common.KindProcess), Equals, true)
	c.Assert(res.Workload.ExitCode, Equals, 0)
}

func (s *RunnerTestSuite) TestDropCaches(c *C) {
	l, _, _ := newFakes()
	d := &fakeDropper{err: errors.New("permission denied")}
	res := NewOrchestrator(Config{Runtime: 1, DropCaches: true}, l, d).Run(context.Background(), testJob())
	c.Assert(d.calls, Equals, 1)
	c.Assert(res.Workload.Err, IsNil)

	l, _, _ = newFakes()
	d = &fakeDropper{}
	NewOrchestrator(Config{Runtime: 1}, l, d).Run(context.Background(), testJob())
	c.Assert(d.calls, Equals, 0)
}

func (s *RunnerTestSuite) TestPageCacheDropper(c *C) {
	for _, tc := range []struct {
		out        string
		err        error
		errChecker Checker
	}{
		{out: "", err: nil, errChecker: IsNil},
		{out: "sh: can't create /proc/sys/vm/drop_caches: Permission denied", err: &fakeexec.FakeExitError{Status: 2}, errChecker: NotNil},
	} {
		var gotCmd string
		var gotArgs []string
		fcmd := fakeexec.FakeCmd{
			CombinedOutputScript: []fakeexec.FakeAction{
				func() ([]byte, []byte, error) { return []byte(tc.out), nil, tc.err },
			},
		}
		fexec := &fakeexec.FakeExec{
			CommandScript: []fakeexec.FakeCommandAction{
				func(cmd string, args ...string) exec.Cmd {
					gotCmd, gotArgs = cmd, args
					return fakeexec.InitFakeCmd(&fcmd, cmd, args...)
				},
			},
		}
		d := &PageCacheDropper{Exec: fexec}
		err := d.Drop(context.Background())
		c.Check(err, tc.errChecker)
		c.Check(gotCmd, Equals, "sh")
		c.Check(gotArgs, DeepEquals, []string{"-c", dropCachesScript})
		if err != nil {
			c.Check(strings.Contains(err.Error(), "Permission denied"), Equals, true)
		}
	}
}

func (s *RunnerTestSuite) TestLocalLauncherExit(c *C) {
	p, err := NewLocalLauncher().Start([]string{"sh", "-c", "echo out; echo err >&2; exit 3"})
	c.Assert(err, IsNil)
	c.Assert(p.Wait(context.Background(), 10*time.Second), Equals, true)
	r := p.Result()
	c.Assert(r.ExitCode, Equals, 3)
	c.Assert(r.Stdout, Equals, "out\n")
	c.Assert(r.Stderr, Equals, "err\n")
	c.Assert(r.Elapsed > 0, Equals, true)
	c.Assert(p.Kill(), IsNil)
}

func (s *RunnerTestSuite) TestLocalLauncherKill(c *C) {
	p, err := NewLocalLauncher().Start([]string{"sh", "-c", "sleep 30"})
	c.Assert(err, IsNil)
	c.Assert(p.Wait(context.Background(), 100*time.Millisecond), Equals, false)
	c.Assert(p.Kill(), IsNil)
	c.Assert(p.Result().ExitCode, Equals, -9)
}

func (s *RunnerTestSuite) TestLocalLauncherKillsProcessGroup(c *C) {
	pidFile := filepath.Join(c.MkDir(), "child.pid")
	p, err := NewLocalLauncher().Start([]string{"sh", "-c", "sleep 60 & echo $! > " + pidFile + "; echo partial; wait"})
	c.Assert(err, IsNil)
	c.Assert(p.Wait(context.Background(), 300*time.Millisecond), Equals, false)

	data, err := os.ReadFile(pidFile)
	c.Assert(err, IsNil)
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	c.Assert(err, IsNil)

	c.Assert(p.Kill(), IsNil)
	r := p.Result()
	c.Assert(r.Stdout, Equals, "partial\n")
	c.Assert(r.ExitCode, Equals, -9)

	// The background child is reparented; it must be gone or a zombie.
	deadline := time.Now().Add(2 * time.Second)
	for processAlive(pid) && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	c.Assert(processAlive(pid), Equals, false)
}

func processAlive(pid int) bool {
	data, err := os.ReadFile(filepath.Join("/proc", strconv.Itoa(pid), "stat"))
	if err != nil {
		return false
	}
	stat := string(data)
	i := strings.LastIndexByte(stat, ')')
	if i < 0 || i+2 >= len(stat) {
		return false
	}
	return stat[i+2] != 'Z' && stat[i+2] != 'X'
}

func (s *RunnerTestSuite) TestLocalLauncherMissingBinary(c *C) {
	_, err := NewLocalLauncher().Start([]string{"/nonexistent/iotester-binary"})
	c.Assert(err, NotNil)
	_, err = NewLocalLauncher().Start(nil)
	c.Assert(err, NotNil)
}

func (s *RunnerTestSuite) TestOrchestratorWithLocalLauncher(c *C) {
	o := NewOrchestrator(Config{Runtime: 1, IostatBinary: "true"}, NewLocalLauncher(), nil)
	job := jobs.Normalize([]jobs.JobSpec{{"x", "--bs=4k"}}, "local", "true", jobs.Overrides{})[0]
	res := o.Run(context.Background(), job)
	c.Assert(res.Workload.ExitCode, Equals, 0)
	c.Assert(res.Workload.Err, IsNil)
	c.Assert(res.Sampler.ExitCode, Equals, 0)
	c.Assert(res.Sampler.Command[0], Equals, "true")

	job = jobs.Normalize([]jobs.JobSpec{{"x"}}, "local", "false", jobs.Overrides{})[0]
	res = o.Run(context.Background(), job)
	c.Assert(res.Workload.ExitCode, Equals, 1)
	c.Assert(common.IsKind(res.Workload.Err, common.KindProcess), Equals, true)
}

func (s *RunnerTestSuite) TestLogFileName(c *C) {
	c.Assert(LogFileName(" Default-FIO "), Equals, "default-fio.log")
	c.Assert(LogFileName("a/b c"), Equals, "a_b_c.log")
	c.Assert(LogFileName(""), Equals, "run.log")
	long := strings.Repeat("x", 100)
	name := LogFileName(long)
	c.Assert(len(name), Equals, maxLogNameLength+len(".log"))
	c.Assert(name, Not(Equals), LogFileName(long+"y"))
}

func (s *RunnerTestSuite) TestRunLog(c *C) {
	dir := filepath.Join(c.MkDir(), "logs")
	l, err := OpenRunLog(dir, "set1")
	c.Assert(err, IsNil)
	c.Assert(l.Path, Equals, filepath.Join(dir, "set1.log"))
	l.Append("set1_000", &JobResult{
		Workload: RunResult{Command: []string{"fio", "--name=set1_000"}, Stdout: "{}", Stderr: "warn"},
		Sampler:  RunResult{Command: []string{"iostat"}, ExitCode: TimeoutExitCode, TimedOut: true},
	}, "iops: 10")

	l2, err := OpenRunLog(dir, "set1")
	c.Assert(err, IsNil)
	c.Assert(l2.RunID, Not(Equals), l.RunID)

	data, err := os.ReadFile(l.Path)
	c.Assert(err, IsNil)
	out := string(data)
	for _, want := range []string{
		"=== run " + l.RunID,
		"=== run " + l2.RunID,
		"--- job set1_000",
		"workload: fio --name=set1_000",
		"workload stdout:\n{}",
		"workload stderr:\nwarn",
		"sampler rc=124",
		"metrics:\niops: 10",
	} {
		c.Check(strings.Contains(out, want), Equals, true, Commentf("missing %q", want))
	}
	c.Assert(strings.Index(out, l.RunID) < strings.Index(out, "--- job"), Equals, true)
}
