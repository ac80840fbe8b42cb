package jobs

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/kastenhq/iotester/pkg/common"
	"github.com/pkg/errors"
)

// JobSpec is the token list of one logical job line.
type JobSpec []string

// ReadJobFile loads and tokenizes a job file. A missing or unreadable file is
// a ConfigError.
func ReadJobFile(path string) ([]JobSpec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, common.ConfigError(errors.Wrapf(err, "Unable to open job file (%s)", path))
	}
	defer f.Close()
	specs, err := ParseJobs(f)
	if err != nil {
		return nil, common.ConfigError(errors.Wrapf(err, "Unable to read job file (%s)", path))
	}
	return specs, nil
}

// ParseJobs splits job file contents into logical lines and tokenizes them.
// Blank lines and '#' comments are skipped, a trailing backslash continues a
// line on the next one.
func ParseJobs(r io.Reader) ([]JobSpec, error) {
	lines, err := logicalLines(r)
	if err != nil {
		return nil, err
	}
	specs := make([]JobSpec, 0, len(lines))
	for _, l := range lines {
		toks := strings.Fields(l)
		if len(toks) == 0 {
			continue
		}
		specs = append(specs, JobSpec(toks))
	}
	return specs, nil
}

func logicalLines(r io.Reader) ([]string, error) {
	var (
		lines []string
		buf   []string
	)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		s := strings.TrimSpace(scanner.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		if strings.HasSuffix(s, `\`) {
			buf = append(buf, strings.TrimSpace(strings.TrimSuffix(s, `\`)))
			continue
		}
		if len(buf) > 0 {
			lines = append(lines, strings.Join(append(buf, s), " "))
			buf = nil
			continue
		}
		lines = append(lines, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(buf) > 0 {
		lines = append(lines, strings.Join(buf, " "))
	}
	return lines, nil
}
