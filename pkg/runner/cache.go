package runner

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"k8s.io/utils/exec"
)

// dropCachesScript flushes dirty pages and then drops the page cache,
// dentries and inodes.
const dropCachesScript = "sync && echo 3 > /proc/sys/vm/drop_caches"

// CacheDropper empties OS caches before a job so results are not served
// from memory.
type CacheDropper interface {
	Drop(ctx context.Context) error
}

// PageCacheDropper drops the kernel page cache through a shell.
type PageCacheDropper struct {
	Exec exec.Interface
}

// NewPageCacheDropper returns a dropper backed by the host's exec.
func NewPageCacheDropper() *PageCacheDropper {
	return &PageCacheDropper{Exec: exec.New()}
}

// Drop requires root. The caller decides whether a failure matters.
func (d *PageCacheDropper) Drop(ctx context.Context) error {
	out, err := d.Exec.CommandContext(ctx, "sh", "-c", dropCachesScript).CombinedOutput()
	if err != nil {
		return errors.Wrapf(err, "Failed to drop caches (%s)", strings.TrimSpace(string(out)))
	}
	return nil
}
