package fio

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/kastenhq/iotester/pkg/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Direction is the primary measured operation of a job.
type Direction string

const (
	DirectionRead  = Direction("read")
	DirectionWrite = Direction("write")
	DirectionMixed = Direction("mixed")
)

// Unit is the time unit a latency block was reported in.
type Unit string

const (
	Nanoseconds  = Unit("ns")
	Microseconds = Unit("us")
	Milliseconds = Unit("ms")
)

var (
	p99    = decimal.NewFromInt(99)
	p9999  = decimal.RequireFromString("99.99")
	kbToMB = decimal.NewFromInt(1024)
)

// WorkloadMetrics is the normalized summary of one fio invocation. All
// latencies are in microseconds.
type WorkloadMetrics struct {
	JobName      string    `json:"job_name"`
	Direction    Direction `json:"direction"`
	BlockSize    string    `json:"bs"`
	IoDepth      string    `json:"iodepth"`
	UsrCPU       float64   `json:"usr_cpu"`
	SysCPU       float64   `json:"sys_cpu"`
	IOPS         float64   `json:"iops"`
	BandwidthMBs float64   `json:"bw_mbs"`
	SlatMeanUs   float64   `json:"slat_avg_us"`
	ClatMeanUs   float64   `json:"clat_avg_us"`
	LatMeanUs    float64   `json:"lat_avg_us"`
	ClatP99Us    float64   `json:"clat_p99_us"`
	ClatP9999Us  float64   `json:"clat_p9999_us"`
	LatencyRatio float64   `json:"latency_ratio"`
}

// Round rounds v to the given number of decimal places, half away from zero.
func Round(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

// ToMicroseconds converts a latency figure reported in unit to microseconds.
func ToMicroseconds(v float64, unit Unit) float64 {
	switch unit {
	case Nanoseconds:
		return v / 1000
	case Milliseconds:
		return v * 1000
	default:
		return v
	}
}

// Extract locates the result blob in fio's combined output and reduces it.
func Extract(output string) (*FioResult, *WorkloadMetrics, error) {
	res, err := Parse(output)
	if err != nil {
		return nil, nil, err
	}
	m, err := Metrics(res)
	if err != nil {
		return res, nil, err
	}
	return res, m, nil
}

// Parse decodes the single result blob embedded in output.
func Parse(output string) (*FioResult, error) {
	blob, err := ExtractBlob(output)
	if err != nil {
		return nil, err
	}
	var res FioResult
	if err := json.Unmarshal([]byte(blob), &res); err != nil {
		return nil, common.ParseError(errors.Wrap(err, "Unable to parse fio output into json."))
	}
	return &res, nil
}

// Metrics reduces the first job of a result to WorkloadMetrics.
func Metrics(res *FioResult) (*WorkloadMetrics, error) {
	if len(res.Jobs) == 0 {
		return nil, common.ParseErrorf("fio result has no jobs")
	}
	job := res.Jobs[0]
	if job.Read == nil && job.Write == nil {
		return nil, common.ParseErrorf("fio job %q has neither read nor write stats", job.JobName)
	}
	read, write := orEmpty(job.Read), orEmpty(job.Write)

	dir := direction(read, write)
	primary := read
	iops, bw := read.Iops, read.BW
	switch dir {
	case DirectionWrite:
		primary = write
		iops, bw = write.Iops, write.BW
	case DirectionMixed:
		iops, bw = read.Iops+write.Iops, read.BW+write.BW
	}

	slat, slatUnit, ok := primary.latency("slat")
	if !ok {
		return nil, common.ParseErrorf("fio job %q: missing submission latency", job.JobName)
	}
	clat, clatUnit, ok := primary.latency("clat")
	if !ok {
		return nil, common.ParseErrorf("fio job %q: missing completion latency", job.JobName)
	}
	lat, latUnit, ok := primary.latency("lat")
	if !ok {
		return nil, common.ParseErrorf("fio job %q: missing total latency", job.JobName)
	}
	p99Raw, ok := percentile(clat.Percentile, p99)
	if !ok {
		return nil, common.ParseErrorf("fio job %q: missing 99th percentile completion latency", job.JobName)
	}
	p9999Raw, _ := percentile(clat.Percentile, p9999)

	clatMean := ToMicroseconds(clat.Mean, clatUnit)
	clatP99 := ToMicroseconds(p99Raw, clatUnit)
	var ratio float64
	if clatMean > 0 {
		ratio = Round(clatP99/clatMean, 2)
	}

	bs := job.JobOptions.BS
	if bs == "" {
		bs = res.GlobalOptions.BS
	}
	qd := job.JobOptions.IoDepth
	if qd == "" {
		qd = res.GlobalOptions.IoDepth
	}
	if qd == "" {
		qd = "1"
	}
	bwMBs, _ := decimal.NewFromFloat(bw).Div(kbToMB).Round(2).Float64()

	return &WorkloadMetrics{
		JobName:      job.JobName,
		Direction:    dir,
		BlockSize:    bs,
		IoDepth:      qd,
		UsrCPU:       Round(job.UsrCpu, 2),
		SysCPU:       Round(job.SysCpu, 2),
		IOPS:         Round(iops, 2),
		BandwidthMBs: bwMBs,
		SlatMeanUs:   Round(ToMicroseconds(slat.Mean, slatUnit), 2),
		ClatMeanUs:   Round(clatMean, 2),
		LatMeanUs:    Round(ToMicroseconds(lat.Mean, latUnit), 2),
		ClatP99Us:    Round(clatP99, 2),
		ClatP9999Us:  Round(ToMicroseconds(p9999Raw, clatUnit), 2),
		LatencyRatio: ratio,
	}, nil
}

func orEmpty(s *FioStats) *FioStats {
	if s == nil {
		return &FioStats{}
	}
	return s
}

// direction picks the side with bandwidth. Both sides busy is mixed, neither
// falls back to read.
func direction(read, write *FioStats) Direction {
	switch {
	case read.BW != 0 && write.BW != 0:
		return DirectionMixed
	case write.BW != 0:
		return DirectionWrite
	default:
		return DirectionRead
	}
}

func (s *FioStats) latency(kind string) (*FioLat, Unit, bool) {
	var ns, us, ms *FioLat
	switch kind {
	case "slat":
		ns, us, ms = s.SlatNs, s.SlatUs, s.SlatMs
	case "clat":
		ns, us, ms = s.ClatNs, s.ClatUs, s.ClatMs
	case "lat":
		ns, us, ms = s.LatNs, s.LatUs, s.LatMs
	}
	switch {
	case ns != nil:
		return ns, Nanoseconds, true
	case us != nil:
		return us, Microseconds, true
	case ms != nil:
		return ms, Milliseconds, true
	}
	return nil, "", false
}

// percentile finds the entry for p. fio formats keys with varying precision
// ("99.000000", "99.00"), so keys are compared by value, in sorted order so
// the result does not depend on map iteration.
func percentile(pcts map[string]float64, p decimal.Decimal) (float64, bool) {
	keys := make([]string, 0, len(pcts))
	for k := range pcts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	prefix := p.String() + "."
	if !p.IsInteger() {
		prefix = p.String()
	}
	for _, k := range keys {
		if !strings.HasPrefix(k, prefix) && k != p.String() {
			continue
		}
		d, err := decimal.NewFromString(strings.TrimSpace(k))
		if err != nil || !d.Equal(p) {
			continue
		}
		return pcts[k], true
	}
	return 0, false
}
