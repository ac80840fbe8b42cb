package runner

import (
	"bytes"
	"context"
	"os/exec"
	"syscall"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

const (
	// TimeoutExitCode is reported for a process killed on its deadline
	TimeoutExitCode = 124
	// FailedExitCode is reported when a process could not be run at all
	FailedExitCode = 255

	// pipeDrainDelay bounds the wait for output pipes once the process is gone
	pipeDrainDelay = 2 * time.Second
)

// RunResult is what is known about one finished process.
type RunResult struct {
	Command  []string
	ExitCode int
	Stdout   string
	Stderr   string
	Elapsed  time.Duration
	TimedOut bool
	Err      error
}

// Launcher starts commands. Every process gets its own process group.
type Launcher interface {
	Start(argv []string) (Process, error)
}

// Process is a started command.
type Process interface {
	// Wait blocks until the process exits, the timeout passes or ctx is done.
	// It returns true if the process exited. A zero timeout waits on ctx only.
	Wait(ctx context.Context, timeout time.Duration) bool
	// Kill terminates the whole process group and reaps the process.
	Kill() error
	// Result returns the outcome. Output is complete only after exit.
	Result() RunResult
}

// LocalLauncher runs commands on this host via os/exec.
type LocalLauncher struct{}

// NewLocalLauncher returns a LocalLauncher.
func NewLocalLauncher() LocalLauncher {
	return LocalLauncher{}
}

// Start runs argv in a new process group.
func (LocalLauncher) Start(argv []string) (Process, error) {
	if len(argv) == 0 {
		return nil, errors.New("Empty command")
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	// A dedicated process group lets Kill take children down with the parent.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.WaitDelay = pipeDrainDelay
	p := &localProcess{
		argv: argv,
		cmd:  cmd,
		done: make(chan struct{}),
	}
	cmd.Stdout = &p.stdout
	cmd.Stderr = &p.stderr

	p.start = time.Now()
	if err := cmd.Start(); err != nil {
		return nil, errors.Wrapf(err, "Unable to start %s", argv[0])
	}
	log.WithField("pid", cmd.Process.Pid).Debugf("Started %v", argv)

	go func() {
		p.waitErr = cmd.Wait()
		p.elapsed = time.Since(p.start)
		close(p.done)
	}()
	return p, nil
}

type localProcess struct {
	argv    []string
	cmd     *exec.Cmd
	stdout  bytes.Buffer
	stderr  bytes.Buffer
	start   time.Time
	elapsed time.Duration
	waitErr error
	done    chan struct{}
}

func (p *localProcess) Wait(ctx context.Context, timeout time.Duration) bool {
	var expired <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expired = t.C
	}
	select {
	case <-p.done:
		return true
	case <-expired:
		return false
	case <-ctx.Done():
		return false
	}
}

func (p *localProcess) Kill() error {
	select {
	case <-p.done:
		return nil
	default:
	}
	// A negative pid addresses the whole process group.
	log.Debugf("Sending SIGKILL to process group %d", p.cmd.Process.Pid)
	err := unix.Kill(-p.cmd.Process.Pid, unix.SIGKILL)
	if err != nil && err != unix.ESRCH {
		return errors.Wrapf(err, "Unable to kill process group %d", p.cmd.Process.Pid)
	}
	<-p.done
	return nil
}

func (p *localProcess) Result() RunResult {
	r := RunResult{
		Command:  p.argv,
		ExitCode: FailedExitCode,
	}
	select {
	case <-p.done:
	default:
		r.Elapsed = time.Since(p.start)
		return r
	}
	r.Stdout = p.stdout.String()
	r.Stderr = p.stderr.String()
	r.Elapsed = p.elapsed
	if ps := p.cmd.ProcessState; ps != nil {
		r.ExitCode = ps.ExitCode()
		if ws, ok := ps.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			// Show what signal caused the termination.
			r.ExitCode = -int(ws.Signal())
		}
	}
	return r
}
