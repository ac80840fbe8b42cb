package device

import (
	"context"
	"strings"

	"github.com/kastenhq/iotester/pkg/common"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Kinds of device backends.
const (
	KindNone = "none"
	KindZram = "zram"
	KindLoop = "loop"
)

// Spec describes the device a job needs.
type Spec struct {
	Kind string
	// Size is a size string understood by the backend tools, e.g. "1G".
	Size string
	// Path is the backing file of a loop device. A temporary file is used
	// when empty.
	Path string
}

// Handle is a prepared device. Path is the block device to test against
// and is empty for the none backend.
type Handle struct {
	Kind    string
	Path    string
	Backing string
	// ownsBacking is set when the backing file was created by Prepare.
	ownsBacking bool
}

//go:generate go run github.com/golang/mock/mockgen -destination=mocks/mock_backend.go -package=mocks . Backend
type Backend interface {
	Kind() string
	// Prepare allocates the device.
	Prepare(ctx context.Context, spec Spec) (*Handle, error)
	// Teardown releases a device returned by Prepare.
	Teardown(ctx context.Context, h *Handle) error
}

// BackendFor resolves a backend by kind. An empty kind selects none.
func BackendFor(kind string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindNone:
		return NoneBackend{}, nil
	case KindZram:
		return NewZramBackend(), nil
	case KindLoop, "loopback":
		return NewLoopBackend(), nil
	default:
		return nil, common.ConfigErrorf("Unknown device backend kind: %s", kind)
	}
}

// With prepares a device, runs fn with it and tears it down exactly once,
// whether fn returns an error, panics or succeeds. A teardown failure is
// returned only if fn itself succeeded.
func With(ctx context.Context, b Backend, spec Spec, fn func(h *Handle) error) (err error) {
	h, err := b.Prepare(ctx, spec)
	if err != nil {
		return errors.Wrapf(err, "Failed to prepare %s device", b.Kind())
	}
	defer func() {
		// Teardown must run even after the run context is cancelled.
		terr := b.Teardown(context.WithoutCancel(ctx), h)
		if terr == nil {
			return
		}
		log.WithError(terr).WithField("device", h.Path).Error("Failed to tear down device")
		if err == nil {
			err = errors.Wrapf(terr, "Failed to tear down %s device", b.Kind())
		}
	}()
	return fn(h)
}

// NoneBackend runs jobs against whatever the job file names.
type NoneBackend struct{}

func (NoneBackend) Kind() string { return KindNone }

func (NoneBackend) Prepare(ctx context.Context, spec Spec) (*Handle, error) {
	return &Handle{Kind: KindNone}, nil
}

func (NoneBackend) Teardown(ctx context.Context, h *Handle) error { return nil }
