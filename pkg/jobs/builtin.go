package jobs

import (
	"sort"
	"strings"

	"github.com/kastenhq/iotester/pkg/common"
	"github.com/pkg/errors"
)

const (
	// DefaultJobSet describes the default job set
	DefaultJobSet = "default-fio"
	// QuickJobSet is a short smoke test
	QuickJobSet = "quick-fio"
)

var builtinJobs = map[string]string{
	DefaultJobSet: `# random and sequential baseline
fio --name=read_iops --bs=4K --iodepth=64 --rw=randread \
    --ioengine=libaio --direct=1 --randrepeat=0 --verify=0 --size=2G --time_based --ramp_time=2s
fio --name=write_iops --bs=4K --iodepth=64 --rw=randwrite \
    --ioengine=libaio --direct=1 --randrepeat=0 --verify=0 --size=2G --time_based --ramp_time=2s
fio --name=read_bw --bs=128K --iodepth=64 --rw=randread \
    --ioengine=libaio --direct=1 --randrepeat=0 --verify=0 --size=2G --time_based --ramp_time=2s
fio --name=write_bw --bs=128k --iodepth=64 --rw=randwrite \
    --ioengine=libaio --direct=1 --randrepeat=0 --verify=0 --size=2G --time_based --ramp_time=2s
`,
	QuickJobSet: `fio --name=randrw --bs=4k --iodepth=4 --rw=randrw --direct=1 --size=256M --time_based
`,
}

// BuiltinJobSets lists the predefined job set names.
func BuiltinJobSets() []string {
	names := make([]string, 0, len(builtinJobs))
	for n := range builtinJobs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// LoadBuiltin returns the specs of a predefined job set.
func LoadBuiltin(name string) ([]JobSpec, error) {
	data, ok := builtinJobs[name]
	if !ok {
		return nil, common.ConfigErrorf("Job set not found- (%s). Options(%s)", name, strings.Join(BuiltinJobSets(), ","))
	}
	specs, err := ParseJobs(strings.NewReader(data))
	if err != nil {
		return nil, common.ConfigError(errors.Wrapf(err, "Unable to parse job set (%s)", name))
	}
	return specs, nil
}
