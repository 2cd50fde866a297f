package core

import (
	"sync"
	"testing"

	"github.com/go-drift/sprout/pkg/errors"
)

type recordingHandler struct {
	mu     sync.Mutex
	errs   []*errors.SproutError
	panics []*errors.PanicError
	builds []*errors.BuildError
}

func (h *recordingHandler) HandleError(err *errors.SproutError) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errs = append(h.errs, err)
}

func (h *recordingHandler) HandlePanic(err *errors.PanicError) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.panics = append(h.panics, err)
}

func (h *recordingHandler) HandleBuildError(err *errors.BuildError) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.builds = append(h.builds, err)
}

func captureErrors(t *testing.T) *recordingHandler {
	t.Helper()
	h := &recordingHandler{}
	errors.SetHandler(h)
	t.Cleanup(func() { errors.SetHandler(nil) })
	return h
}

func mustRender(t *testing.T, rt *Runtime) RenderResult {
	t.Helper()
	res, err := rt.Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return res
}

type other struct{}

func (other) Render(ctx *Context, children []Element) []Element {
	return children
}
