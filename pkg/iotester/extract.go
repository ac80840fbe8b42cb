package iotester

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kastenhq/iotester/pkg/aggregate"
	"github.com/kastenhq/iotester/pkg/common"
	"github.com/kastenhq/iotester/pkg/fio"
	"github.com/kastenhq/iotester/pkg/jobs"
	"github.com/kastenhq/iotester/pkg/output"
	"github.com/kastenhq/iotester/pkg/runner"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ExtractDir turns saved fio results (*.json in dir) into records and
// delivers them to sink, in file name order. A file that cannot be parsed
// still yields a record carrying the error.
func ExtractDir(dir string, sink output.Sink) ([]*TestOutput, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, common.ConfigError(errors.Wrapf(err, "Unable to list %s", dir))
	}
	if len(matches) == 0 {
		return nil, common.ConfigErrorf("No .json results found in %s", dir)
	}
	sort.Strings(matches)

	var results []*TestOutput
	failed := 0
	for _, path := range matches {
		rec := extractFile(path)
		if err := sink.Write(rec); err != nil {
			log.WithError(common.SinkError(err)).WithField("sink", sink.Name()).Error("Failed to write record")
		}
		out := jobOutput(rec)
		if out.Failed() {
			failed++
		}
		results = append(results, out)
	}
	if failed > 0 {
		return results, errors.Errorf("%d of %d results could not be parsed", failed, len(matches))
	}
	return results, nil
}

func extractFile(path string) *aggregate.Record {
	job := jobs.NormalizedJob{
		Name:    strings.TrimSuffix(filepath.Base(path), ".json"),
		Program: path,
		Params:  jobs.NewParamMap(),
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return aggregate.Build(aggregate.Input{
			Job:      job,
			ParseErr: common.ParseError(errors.Wrapf(err, "Unable to read %s", path)),
		})
	}
	_, metrics, perr := fio.Extract(string(data))
	if perr != nil {
		log.WithError(perr).WithField("file", path).Warn("Skipping metrics")
	}
	return aggregate.Build(aggregate.Input{
		Job:      job,
		Result:   &runner.JobResult{Workload: runner.RunResult{Stdout: string(data)}},
		Metrics:  metrics,
		ParseErr: perr,
	})
}
