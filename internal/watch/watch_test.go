package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const debounce = 50 * time.Millisecond

type runner struct {
	calls atomic.Int32
	ch    chan struct{}
	err   error
}

func newRunner() *runner {
	return &runner{ch: make(chan struct{}, 16)}
}

func (r *runner) fn(context.Context) error {
	r.calls.Add(1)
	r.ch <- struct{}{}
	return r.err
}

func (r *runner) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.ch:
	case <-time.After(5 * time.Second):
		t.Fatalf("fn not called (calls so far: %d)", r.calls.Load())
	}
}

func start(t *testing.T, paths []string, r *runner) (cancel func(), done <-chan error) {
	t.Helper()
	ctx, cancelFn := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- Run(ctx, paths, Options{Debounce: debounce}, r.fn) }()
	t.Cleanup(cancelFn)
	return cancelFn, errCh
}

func TestRun_NoPaths(t *testing.T) {
	err := Run(context.Background(), nil, Options{}, func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrNoPaths)
}

func TestRun_InitialAndDebouncedReruns(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.sql")
	require.NoError(t, os.WriteFile(path, []byte("CREATE TABLE a (x);"), 0o644))

	r := newRunner()
	cancel, done := start(t, []string{path}, r)
	r.wait(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("CREATE TABLE b (x);"), 0o644))
	}
	r.wait(t)

	time.Sleep(10 * debounce)
	assert.Equal(t, int32(2), r.calls.Load(), "a burst of writes must trigger a single rerun")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_IgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.sql")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	r := newRunner()
	start(t, []string{path}, r)
	r.wait(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	time.Sleep(10 * debounce)
	assert.Equal(t, int32(1), r.calls.Load())
}

func TestRun_ErrorsDoNotStopLoop(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.sql")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	r := newRunner()
	r.err = errors.New("syntax error")
	start(t, []string{path}, r)
	r.wait(t)

	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	r.wait(t)
}

func TestRun_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "schema.sql")
	err := Run(context.Background(), []string{path}, Options{}, func(context.Context) error { return nil })
	assert.Error(t, err)
}
