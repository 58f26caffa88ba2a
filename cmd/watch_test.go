package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubiojr/py2scala/config"
	"github.com/rubiojr/py2scala/convert"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWatcher_Relevant(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "one.py"), "")
	writeFile(t, filepath.Join(dir, "tree", "a.py"), "")
	out := filepath.Join(dir, "tree", "out.py")

	j := &job{
		args:    []string{filepath.Join(dir, "one.py"), filepath.Join(dir, "tree")},
		sources: config.Sources{Include: []string{"**.py"}},
		output:  out,
	}
	w, err := newWatcher(j, time.Millisecond, quietLogger())
	require.NoError(t, err)
	defer w.close()

	tests := []struct {
		name string
		ev   fsnotify.Event
		want bool
	}{
		{"file argument", fsnotify.Event{Name: filepath.Join(dir, "one.py"), Op: fsnotify.Write}, true},
		{"sibling of file argument", fsnotify.Event{Name: filepath.Join(dir, "two.py"), Op: fsnotify.Write}, false},
		{"selected in tree", fsnotify.Event{Name: filepath.Join(dir, "tree", "b.py"), Op: fsnotify.Create}, true},
		{"not selected in tree", fsnotify.Event{Name: filepath.Join(dir, "tree", "b.txt"), Op: fsnotify.Write}, false},
		{"output file", fsnotify.Event{Name: out, Op: fsnotify.Write}, false},
		{"chmod only", fsnotify.Event{Name: filepath.Join(dir, "one.py"), Op: fsnotify.Chmod}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.relevant(tt.ev))
		})
	}
}

func TestWatcher_Errors(t *testing.T) {
	_, err := newWatcher(&job{output: "out.scala"}, time.Millisecond, quietLogger())
	require.Error(t, err)

	_, err = newWatcher(&job{args: []string{stdinArg}, output: "out.scala"}, time.Millisecond, quietLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "standard input")
}

func TestWatch_ReconvertsOnChange(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "w.py")
	out := filepath.Join(dir, "w.scala")
	writeFile(t, src, "x = True\n")

	j := &job{
		args:    []string{src},
		sources: config.Sources{Include: []string{"**.py"}},
		opts:    convert.Options{},
		output:  out,
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watch(ctx, j, 20*time.Millisecond, quietLogger()) }()

	readOut := func() string {
		data, _ := os.ReadFile(out)
		return string(data)
	}
	require.Eventually(t, func() bool { return readOut() == "x = true\n" }, 5*time.Second, 10*time.Millisecond)

	// The watcher may still be registering; keep rewriting until it notices.
	require.Eventually(t, func() bool {
		if readOut() == "x = false\n" {
			return true
		}
		writeFile(t, src, "x = False\n")
		return false
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}
