package fio

import "fmt"

type FioResult struct {
	FioVersion    string           `json:"fio version,omitempty"`
	Timestamp     int64            `json:"timestamp,omitempty"`
	TimestampMS   int64            `json:"timestamp_ms,omitempty"`
	Time          string           `json:"time,omitempty"`
	GlobalOptions FioGlobalOptions `json:"global options,omitempty"`
	Jobs          []FioJobs        `json:"jobs,omitempty"`
	DiskUtil      []FioDiskUtil    `json:"disk_util,omitempty"`
}

func (f FioResult) Print() string {
	var res string
	res += fmt.Sprintf("FIO version - %s\n", f.FioVersion)
	res += fmt.Sprintf("Global options - %s\n\n", f.GlobalOptions.Print())
	for _, job := range f.Jobs {
		res += fmt.Sprintf("%s\n", job.Print())
	}
	res += "Disk stats (read/write):\n"
	for _, du := range f.DiskUtil {
		res += fmt.Sprintf("%s\n", du.Print())
	}

	return res
}

type FioGlobalOptions struct {
	Directory string `json:"directory,omitempty"`
	Filename  string `json:"filename,omitempty"`
	IOEngine  string `json:"ioengine,omitempty"`
	Direct    string `json:"direct,omitempty"`
	BS        string `json:"bs,omitempty"`
	IoDepth   string `json:"iodepth,omitempty"`
	RW        string `json:"rw,omitempty"`
}

func (g FioGlobalOptions) Print() string {
	return fmt.Sprintf("ioengine=%s direct=%s bs=%s iodepth=%s", g.IOEngine, g.Direct, g.BS, g.IoDepth)
}

type FioJobs struct {
	JobName    string        `json:"jobname,omitempty"`
	GroupID    int           `json:"groupid,omitempty"`
	Error      int           `json:"error,omitempty"`
	Elapsed    int           `json:"elapsed,omitempty"`
	JobOptions FioJobOptions `json:"job options,omitempty"`
	Read       *FioStats     `json:"read,omitempty"`
	Write      *FioStats     `json:"write,omitempty"`
	Trim       *FioStats     `json:"trim,omitempty"`
	JobRuntime int64         `json:"job_runtime,omitempty"`
	UsrCpu     float64       `json:"usr_cpu,omitempty"`
	SysCpu     float64       `json:"sys_cpu,omitempty"`
	Ctx        int64         `json:"ctx,omitempty"`
	MajF       int64         `json:"majf,omitempty"`
	MinF       int64         `json:"minf,omitempty"`
}

func (j FioJobs) Print() string {
	var job string
	job += fmt.Sprintf("%s\n", j.JobOptions.Print())
	if j.Read != nil && (j.Read.Iops != 0 || j.Read.BW != 0) {
		job += fmt.Sprintf("read:\n%s\n", j.Read.Print())
	}
	if j.Write != nil && (j.Write.Iops != 0 || j.Write.BW != 0) {
		job += fmt.Sprintf("write:\n%s\n", j.Write.Print())
	}
	return job
}

type FioJobOptions struct {
	Name     string `json:"name,omitempty"`
	BS       string `json:"bs,omitempty"`
	IoDepth  string `json:"iodepth,omitempty"`
	Size     string `json:"size,omitempty"`
	RW       string `json:"rw,omitempty"`
	RampTime string `json:"ramp_time,omitempty"`
	RunTime  string `json:"runtime,omitempty"`
}

func (o FioJobOptions) Print() string {
	return fmt.Sprintf("JobName: %s\n  blocksize=%s filesize=%s iodepth=%s rw=%s", o.Name, o.BS, o.Size, o.IoDepth, o.RW)
}

// FioStats is one direction of a job. Latency blocks are reported under a
// unit suffixed key that depends on the fio version, so all three spellings
// are decoded and the present one is picked later.
type FioStats struct {
	IOBytes  int64   `json:"io_bytes,omitempty"`
	IOKBytes int64   `json:"io_kbytes,omitempty"`
	BWBytes  int64   `json:"bw_bytes,omitempty"`
	BW       float64 `json:"bw,omitempty"`
	Iops     float64 `json:"iops,omitempty"`
	Runtime  int64   `json:"runtime,omitempty"`
	TotalIos int64   `json:"total_ios,omitempty"`
	ShortIos int64   `json:"short_ios,omitempty"`
	DropIos  int64   `json:"drop_ios,omitempty"`

	SlatNs *FioLat `json:"slat_ns,omitempty"`
	SlatUs *FioLat `json:"slat_us,omitempty"`
	SlatMs *FioLat `json:"slat_ms,omitempty"`
	ClatNs *FioLat `json:"clat_ns,omitempty"`
	ClatUs *FioLat `json:"clat_us,omitempty"`
	ClatMs *FioLat `json:"clat_ms,omitempty"`
	LatNs  *FioLat `json:"lat_ns,omitempty"`
	LatUs  *FioLat `json:"lat_us,omitempty"`
	LatMs  *FioLat `json:"lat_ms,omitempty"`

	BwMin      float64 `json:"bw_min,omitempty"`
	BwMax      float64 `json:"bw_max,omitempty"`
	BwMean     float64 `json:"bw_mean,omitempty"`
	IopsMin    float64 `json:"iops_min,omitempty"`
	IopsMax    float64 `json:"iops_max,omitempty"`
	IopsMean   float64 `json:"iops_mean,omitempty"`
	IopsStdDev float64 `json:"iops_stddev,omitempty"`
}

func (s FioStats) Print() string {
	var stats string
	stats += fmt.Sprintf("  IOPS=%f BW(KiB/s)=%.0f\n", s.Iops, s.BW)
	stats += fmt.Sprintf("  iops: min=%.0f max=%.0f avg=%f\n", s.IopsMin, s.IopsMax, s.IopsMean)
	stats += fmt.Sprintf("  bw(KiB/s): min=%.0f max=%.0f avg=%f", s.BwMin, s.BwMax, s.BwMean)
	return stats
}

// FioLat is a latency distribution in the unit of the key it was read from.
type FioLat struct {
	Min        float64            `json:"min"`
	Max        float64            `json:"max"`
	Mean       float64            `json:"mean"`
	StdDev     float64            `json:"stddev"`
	N          int64              `json:"N,omitempty"`
	Percentile map[string]float64 `json:"percentile,omitempty"`
}

type FioDiskUtil struct {
	Name        string  `json:"name,omitempty"`
	ReadIos     int64   `json:"read_ios,omitempty"`
	WriteIos    int64   `json:"write_ios,omitempty"`
	ReadMerges  int64   `json:"read_merges,omitempty"`
	WriteMerges int64   `json:"write_merges,omitempty"`
	ReadTicks   int64   `json:"read_ticks,omitempty"`
	WriteTicks  int64   `json:"write_ticks,omitempty"`
	InQueue     int64   `json:"in_queue,omitempty"`
	Util        float64 `json:"util,omitempty"`
}

func (d FioDiskUtil) Print() string {
	//Disk stats (read/write):
	//rbd4: ios=30022/11982, merge=0/313, ticks=1028675/1022768, in_queue=2063740, util=99.67%
	var du string
	du += fmt.Sprintf("  %s: ios=%d/%d merge=%d/%d ticks=%d/%d in_queue=%d, util=%f%%", d.Name, d.ReadIos,
		d.WriteIos, d.ReadMerges, d.WriteMerges, d.ReadTicks, d.WriteTicks, d.InQueue, d.Util)
	return du
}
