package runner

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kastenhq/iotester/pkg/common"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// maxLogNameLength bounds the log file name derived from the set name
const maxLogNameLength = 64

// RunLog is the append-only per-set log. Every job appends its command,
// exit codes, raw output and derived metrics.
type RunLog struct {
	Path  string
	RunID string
}

// LogFileName derives a file system safe log name from a job set name.
// Long names are truncated and suffixed with a short hash so distinct
// sets keep distinct logs.
func LogFileName(setName string) string {
	name := strings.ToLower(strings.TrimSpace(setName))
	name = strings.Map(func(r rune) rune {
		if r == '/' || r == os.PathSeparator || r == ' ' {
			return '_'
		}
		return r
	}, name)
	if name == "" {
		name = "run"
	}
	if len(name) > maxLogNameLength {
		hash := sha256.Sum256([]byte(name))
		name = name[:maxLogNameLength-6] + "-" + base64.RawURLEncoding.EncodeToString(hash[:])[:5]
	}
	return name + ".log"
}

// OpenRunLog creates dir if needed and appends a run header to the set log.
func OpenRunLog(dir, setName string) (*RunLog, error) {
	if dir == "" {
		dir = common.DefaultLogsDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, common.ConfigError(errors.Wrapf(err, "Unable to create log directory %s", dir))
	}
	l := &RunLog{
		Path:  filepath.Join(dir, LogFileName(setName)),
		RunID: uuid.New().String(),
	}
	header := fmt.Sprintf("=== run %s set %s started %s ===\n", l.RunID, setName, time.Now().Format(time.RFC3339))
	if err := l.write(header); err != nil {
		return nil, common.ConfigError(err)
	}
	return l, nil
}

// Append records one finished job. Errors are logged, never returned, so a
// full disk does not abort a benchmark run.
func (l *RunLog) Append(name string, res *JobResult, summary string) {
	if l == nil || res == nil {
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "--- job %s (%s)\n", name, time.Now().Format(time.RFC3339))
	writeResult(&b, "workload", res.Workload)
	writeResult(&b, "sampler", res.Sampler)
	if summary != "" {
		fmt.Fprintf(&b, "metrics:\n%s\n", strings.TrimRight(summary, "\n"))
	}
	if err := l.write(b.String()); err != nil {
		log.WithError(err).Warn("Unable to append to run log")
	}
}

func writeResult(b *strings.Builder, role string, r RunResult) {
	fmt.Fprintf(b, "%s: %s\n", role, strings.Join(r.Command, " "))
	fmt.Fprintf(b, "%s rc=%d elapsed=%s timed_out=%t\n", role, r.ExitCode, r.Elapsed.Round(time.Millisecond), r.TimedOut)
	if r.Err != nil {
		fmt.Fprintf(b, "%s error: %v\n", role, r.Err)
	}
	if r.Stdout != "" {
		fmt.Fprintf(b, "%s stdout:\n%s\n", role, strings.TrimRight(r.Stdout, "\n"))
	}
	if r.Stderr != "" {
		fmt.Fprintf(b, "%s stderr:\n%s\n", role, strings.TrimRight(r.Stderr, "\n"))
	}
}

func (l *RunLog) write(s string) error {
	f, err := os.OpenFile(l.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, "Unable to open run log %s", l.Path)
	}
	defer f.Close()
	if _, err := f.WriteString(s); err != nil {
		return errors.Wrapf(err, "Unable to write run log %s", l.Path)
	}
	return nil
}
