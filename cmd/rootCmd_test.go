package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kastenhq/iotester/pkg/common"
	"github.com/kastenhq/iotester/pkg/config"
	"github.com/kastenhq/iotester/pkg/jobs"
	. "gopkg.in/check.v1"
)

func Test(t *testing.T) { TestingT(t) }

type CmdTestSuite struct{}

var _ = Suite(&CmdTestSuite{})

func (s *CmdTestSuite) TestResolveConfigPrecedence(c *C) {
	path := filepath.Join(c.MkDir(), "run.yaml")
	c.Assert(os.WriteFile(path, []byte("setname: nightly\nruntime: 30\nfilesize: 1G\nsampler_grace: 2s\n"), 0o644), IsNil)
	configFile = path
	defer func() { configFile = "" }()

	c.Assert(rootCmd.Flags().Parse([]string{"--runtime=5", "--devices=sda,sdb"}), IsNil)
	cfg, err := resolveConfig(rootCmd)
	c.Assert(err, IsNil)
	c.Assert(cfg.SetName, Equals, "nightly")
	c.Assert(cfg.Runtime, Equals, 5)
	c.Assert(cfg.Filesize, Equals, "1G")
	c.Assert(cfg.Devices, DeepEquals, []string{"sda", "sdb"})
	c.Assert(cfg.SamplerGrace, Equals, 2*time.Second)
	c.Assert(cfg.SafetyMargin, Equals, common.DefaultSafetyMargin)
	c.Assert(cfg.JobSet, Equals, jobs.DefaultJobSet)
}

func (s *CmdTestSuite) TestTxgRejectsBadArguments(c *C) {
	err := Txg(context.Background(), "tank", 0, time.Second, true)
	c.Assert(common.IsKind(err, common.KindConfig), Equals, true)
}

func (s *CmdTestSuite) TestRunJobSetValidatesFirst(c *C) {
	cfg := config.Defaults()
	cfg.LogsDir = c.MkDir()
	cfg.Runtime = 5
	err := RunJobSet(context.Background(), cfg, false)
	c.Assert(common.IsKind(err, common.KindConfig), Equals, true)
	entries, err := os.ReadDir(cfg.LogsDir)
	c.Assert(err, IsNil)
	c.Assert(entries, HasLen, 0)
}
