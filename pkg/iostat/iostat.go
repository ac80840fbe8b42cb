package iostat

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	// CPUHeaderMarker starts the CPU summary header line
	CPUHeaderMarker = "avg-cpu"
	// DeviceHeaderMarker starts the per-device header line
	DeviceHeaderMarker = "Device"
)

// CPUMetrics are the CPU columns collected from every report.
var CPUMetrics = []string{"%user", "%system", "%iowait", "%idle"}

// DeviceMetrics are the extended device columns collected from every report.
var DeviceMetrics = []string{"r/s", "rkB/s", "r_await", "w/s", "wkB/s", "w_await", "aqu-sz", "%util"}

// SampleSeries maps a metric name to one observation per interval.
type SampleSeries map[string][]float64

func newSeries(metrics []string) SampleSeries {
	s := make(SampleSeries, len(metrics))
	for _, m := range metrics {
		s[m] = []float64{}
	}
	return s
}

// Samples holds everything collected from one sampler run.
type Samples struct {
	CPU    SampleSeries
	Device SampleSeries
}

// NewSamples returns Samples with every known metric present and empty.
func NewSamples() *Samples {
	return &Samples{
		CPU:    newSeries(CPUMetrics),
		Device: newSeries(DeviceMetrics),
	}
}

// Command builds the sampler invocation: one extended report per second for
// runtime seconds, skipping the since-boot report. A zero runtime samples
// until the process is killed.
func Command(binary string, runtime int, devices []string) []string {
	cmd := []string{binary, "-c", "-d", "-x", "-y", "1"}
	if runtime > 0 {
		cmd = append(cmd, strconv.Itoa(runtime))
	}
	return append(cmd, devices...)
}

// Parse reads iostat's alternating header/value blocks. Malformed value lines
// are logged and skipped.
func Parse(out string) *Samples {
	samples := NewSamples()
	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	for idx := 0; idx < len(lines); idx++ {
		line := strings.TrimSpace(lines[idx])
		switch {
		case strings.HasPrefix(line, CPUHeaderMarker):
			header := strings.Fields(line)
			if idx+1 >= len(lines) {
				log.WithField("line", idx).Warn("CPU header without values")
				continue
			}
			idx++
			// the marker column has no value, so values sit one column left
			if err := appendRow(samples.CPU, header, fields(lines[idx]), 1); err != nil {
				log.WithError(err).WithField("line", idx).Warn("Skipping CPU values")
			}
		case strings.HasPrefix(line, DeviceHeaderMarker):
			header := strings.Fields(line)
			for idx+1 < len(lines) && isDeviceRow(lines[idx+1]) {
				idx++
				if err := appendRow(samples.Device, header, fields(lines[idx]), 0); err != nil {
					log.WithError(err).WithField("line", idx).Warn("Skipping device values")
				}
			}
		}
	}
	return samples
}

func isDeviceRow(line string) bool {
	s := strings.TrimSpace(line)
	return s != "" && !strings.HasPrefix(s, CPUHeaderMarker) && !strings.HasPrefix(s, DeviceHeaderMarker)
}

func fields(line string) []string {
	vals := strings.Fields(line)
	for i, v := range vals {
		vals[i] = strings.ReplaceAll(v, ",", ".")
	}
	return vals
}

// appendRow maps values onto the whitelisted header columns. The row is only
// applied when every wanted column parses, so series stay aligned.
func appendRow(series SampleSeries, header, vals []string, shift int) error {
	if len(vals) != len(header)-shift {
		return errors.Errorf("Expected %d columns, got %d (%s)", len(header)-shift, len(vals), strings.Join(vals, " "))
	}
	parsed := map[string]float64{}
	for col, name := range header {
		if _, ok := series[name]; !ok {
			continue
		}
		v, err := strconv.ParseFloat(vals[col-shift], 64)
		if err != nil {
			return errors.Wrapf(err, "Column %s", name)
		}
		parsed[name] = v
	}
	for name, v := range parsed {
		series[name] = append(series[name], v)
	}
	return nil
}
