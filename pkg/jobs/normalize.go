package jobs

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// OutputFormatKey is forced on every job so results can be extracted
	OutputFormatKey = "output-format"
	// OutputFormat is the only result format the pipeline understands
	OutputFormat = "json"
)

// Result format keys the wrapped program must not control.
var droppedKeys = []string{"output", "output_format", "outputformat"}

// Overrides are the run parameters that win over the job file.
type Overrides struct {
	Filename string
	Filesize string
	Runtime  int
}

// NormalizedJob is one fully resolved workload invocation.
type NormalizedJob struct {
	Index   int
	Name    string
	Program string
	Params  *ParamMap
}

// Command returns the argv for the job, program first.
func (j NormalizedJob) Command() []string {
	return append([]string{j.Program}, j.Params.Args()...)
}

// String renders the command line.
func (j NormalizedJob) String() string {
	return strings.Join(j.Command(), " ")
}

// WithParam returns a copy of the job with key set to value.
func (j NormalizedJob) WithParam(key, value string) NormalizedJob {
	j.Params = j.Params.Clone()
	j.Params.Set(key, value)
	return j
}

// ApplyOverrides writes the non-empty overrides into pm. Overrides always win
// and applying the same overrides twice is a no-op.
func ApplyOverrides(pm *ParamMap, o Overrides) {
	if o.Filename != "" {
		pm.Set("filename", o.Filename)
	}
	if o.Filesize != "" {
		pm.Set("size", o.Filesize)
		if pm.Has("filesize") {
			pm.Set("filesize", o.Filesize)
		}
	}
	if o.Runtime > 0 {
		pm.Set("runtime", strconv.Itoa(o.Runtime))
	}
}

// Normalize turns parsed job specs into runnable jobs for the given set.
func Normalize(specs []JobSpec, setName, program string, o Overrides) []NormalizedJob {
	set := strings.ToLower(strings.TrimSpace(setName))
	res := make([]NormalizedJob, 0, len(specs))
	for idx, spec := range specs {
		pm := ParseParams(spec)
		ApplyOverrides(pm, o)
		for _, k := range droppedKeys {
			pm.Delete(k)
		}
		pm.Set(OutputFormatKey, OutputFormat)

		name := jobName(pm.Value("name"), idx, set)
		pm.Set("name", name)
		res = append(res, NormalizedJob{
			Index:   idx,
			Name:    name,
			Program: program,
			Params:  pm,
		})
	}
	return res
}

func jobName(name string, idx int, set string) string {
	name = strings.NewReplacer(`"`, "", `'`, "").Replace(name)
	if name == "" {
		name = fmt.Sprintf("%03d", idx)
	}
	if set == "" {
		return name
	}
	return set + "_" + name
}
