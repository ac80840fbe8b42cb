package device

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"k8s.io/utils/exec"
)

// ZramBackend allocates a compressed RAM block device with zramctl.
type ZramBackend struct {
	Exec exec.Interface
}

// NewZramBackend returns a ZramBackend using the host's exec.
func NewZramBackend() *ZramBackend {
	return &ZramBackend{Exec: exec.New()}
}

func (b *ZramBackend) Kind() string { return KindZram }

func (b *ZramBackend) Prepare(ctx context.Context, spec Spec) (*Handle, error) {
	if spec.Size == "" {
		return nil, errors.New("zram device needs a size")
	}
	out, err := b.Exec.CommandContext(ctx, "zramctl", "--find", "--size", spec.Size).CombinedOutput()
	if err != nil {
		return nil, errors.Wrapf(err, "zramctl failed (%s)", strings.TrimSpace(string(out)))
	}
	path := strings.TrimSpace(string(out))
	if !strings.HasPrefix(path, "/dev/") {
		return nil, errors.Errorf("Unexpected zramctl output: %q", path)
	}
	return &Handle{Kind: KindZram, Path: path}, nil
}

func (b *ZramBackend) Teardown(ctx context.Context, h *Handle) error {
	if h == nil || h.Path == "" {
		return nil
	}
	out, err := b.Exec.CommandContext(ctx, "zramctl", "--reset", h.Path).CombinedOutput()
	if err != nil {
		return errors.Wrapf(err, "Unable to reset %s (%s)", h.Path, strings.TrimSpace(string(out)))
	}
	return nil
}
