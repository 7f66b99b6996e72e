// Package workspace manages per-request scratch directories for the
// conversion pipeline.
package workspace

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"audio_conversion/entity"
	"audio_conversion/pkg/logger"
)

const traceName = "workspace"

const (
	inputName  = "input.ogg"
	outputName = "output.mp3"
)

// Workspace is an isolated scratch directory owned by exactly one
// conversion request. It holds one staged input file and, on success,
// one encoder output file.
type Workspace struct {
	dir string
}

func (w *Workspace) Dir() string {
	return w.dir
}

func (w *Workspace) InputPath() string {
	return filepath.Join(w.dir, inputName)
}

func (w *Workspace) OutputPath() string {
	return filepath.Join(w.dir, outputName)
}

// Manager allocates and reclaims workspaces under a single root
// directory. Names come from a uuid, so concurrent requests never
// collide and no shared counter is needed.
type Manager struct {
	root string
	l    logger.Interface
}

func NewManager(root string, l logger.Interface) *Manager {
	return &Manager{root: root, l: l}
}

// Acquire allocates a fresh workspace directory.
func (m *Manager) Acquire(ctx context.Context) (*Workspace, error) {
	_, span := otel.Tracer(traceName).Start(ctx, "Acquire")
	defer span.End()

	if err := os.MkdirAll(m.root, 0o755); err != nil {
		return nil, errors.Wrap(entity.ErrResourceExhausted, err.Error())
	}

	dir := filepath.Join(m.root, uuid.New().String())
	if err := os.Mkdir(dir, 0o700); err != nil {
		return nil, errors.Wrap(entity.ErrResourceExhausted, err.Error())
	}

	return &Workspace{dir: dir}, nil
}

// WriteInput stages the raw payload under the workspace's fixed input
// name.
func (m *Manager) WriteInput(ctx context.Context, ws *Workspace, body []byte) error {
	_, span := otel.Tracer(traceName).Start(ctx, "WriteInput")
	defer span.End()

	if err := os.WriteFile(ws.InputPath(), body, 0o600); err != nil {
		return errors.Wrap(entity.ErrIOFailure, err.Error())
	}

	return nil
}

// ReadOutput reads the produced artifact. A missing output file is a
// distinct failure from a failed encoder run: it means the encoder
// exited zero without writing anything.
func (m *Manager) ReadOutput(ctx context.Context, ws *Workspace) ([]byte, error) {
	_, span := otel.Tracer(traceName).Start(ctx, "ReadOutput")
	defer span.End()

	body, err := os.ReadFile(ws.OutputPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errors.Wrap(entity.ErrOutputNotFound, ws.OutputPath())
		}
		return nil, errors.Wrap(entity.ErrIOFailure, err.Error())
	}

	return body, nil
}

// Release removes the workspace and everything in it. It is idempotent
// and never fails: a cleanup error must not mask the conversion result,
// so it is logged and dropped.
func (m *Manager) Release(ws *Workspace) {
	if ws == nil {
		return
	}

	if err := os.RemoveAll(ws.dir); err != nil {
		m.l.Error(err, "workspace - Release")
	}
}
