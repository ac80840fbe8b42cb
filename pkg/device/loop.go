package device

import (
	"context"
	"os"
	"strings"

	"github.com/pkg/errors"
	"k8s.io/utils/exec"
)

// LoopBackend attaches a file backed loop device with losetup.
type LoopBackend struct {
	Exec exec.Interface
	// TempDir holds generated backing files. Defaults to os.TempDir().
	TempDir string
}

// NewLoopBackend returns a LoopBackend using the host's exec.
func NewLoopBackend() *LoopBackend {
	return &LoopBackend{Exec: exec.New()}
}

func (b *LoopBackend) Kind() string { return KindLoop }

func (b *LoopBackend) Prepare(ctx context.Context, spec Spec) (*Handle, error) {
	h := &Handle{Kind: KindLoop, Backing: spec.Path}
	if h.Backing == "" {
		if spec.Size == "" {
			return nil, errors.New("loop device needs a size or a backing file")
		}
		f, err := os.CreateTemp(b.TempDir, "iotester-loop-*.img")
		if err != nil {
			return nil, errors.Wrap(err, "Unable to create backing file")
		}
		h.Backing = f.Name()
		h.ownsBacking = true
		if err := f.Close(); err != nil {
			b.removeBacking(h)
			return nil, errors.Wrap(err, "Unable to close backing file")
		}
	}
	if spec.Size != "" {
		if out, err := b.Exec.CommandContext(ctx, "truncate", "-s", spec.Size, h.Backing).CombinedOutput(); err != nil {
			b.removeBacking(h)
			return nil, errors.Wrapf(err, "Unable to size %s (%s)", h.Backing, strings.TrimSpace(string(out)))
		}
	}
	out, err := b.Exec.CommandContext(ctx, "losetup", "--find", "--show", h.Backing).CombinedOutput()
	if err != nil {
		b.removeBacking(h)
		return nil, errors.Wrapf(err, "losetup failed (%s)", strings.TrimSpace(string(out)))
	}
	h.Path = strings.TrimSpace(string(out))
	return h, nil
}

func (b *LoopBackend) Teardown(ctx context.Context, h *Handle) error {
	if h == nil {
		return nil
	}
	defer b.removeBacking(h)
	if h.Path == "" {
		return nil
	}
	out, err := b.Exec.CommandContext(ctx, "losetup", "--detach", h.Path).CombinedOutput()
	if err != nil {
		return errors.Wrapf(err, "Unable to detach %s (%s)", h.Path, strings.TrimSpace(string(out)))
	}
	return nil
}

func (b *LoopBackend) removeBacking(h *Handle) {
	if h.ownsBacking && h.Backing != "" {
		_ = os.Remove(h.Backing)
		h.ownsBacking = false
	}
}
