//go:build unix

package capture_test

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/outpost-run/outpost/pkg/capture"
	"github.com/outpost-run/outpost/pkg/utils/cmp"
	"github.com/outpost-run/outpost/pkg/utils/try"
)

func newStream(t *testing.T) *os.File {
	t.Helper()
	f := try.To(os.Create(filepath.Join(t.TempDir(), "stream"))).OrFatal(t)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestSession(t *testing.T) {
	t.Run("when lines are written to the captured stream, the callback receives each", func(t *testing.T) {
		stream := newStream(t)

		lines := []string{}
		sess := try.To(capture.Start(stream, func(line string) {
			lines = append(lines, line)
		})).OrFatal(t)

		try.To(stream.WriteString("abc\ndef\r\nghi")).OrFatal(t)
		if err := sess.Close(); err != nil {
			t.Fatal(err)
		}

		if !cmp.SliceEq(lines, []string{"abc\n", "def\r\n", "ghi"}) {
			t.Errorf("unexpected lines: %q", lines)
		}
	})

	t.Run("when a multi-byte rune straddles read chunks, it arrives intact", func(t *testing.T) {
		stream := newStream(t)

		lines := []string{}
		sess := try.To(capture.Start(
			stream,
			func(line string) { lines = append(lines, line) },
			capture.WithChunkSize(1),
		)).OrFatal(t)

		try.To(stream.WriteString("héllo wörld\n")).OrFatal(t)
		if err := sess.Close(); err != nil {
			t.Fatal(err)
		}

		if !cmp.SliceEq(lines, []string{"héllo wörld\n"}) {
			t.Errorf("unexpected lines: %q", lines)
		}
	})

	t.Run("when the session is closed, the stream works again", func(t *testing.T) {
		stream := newStream(t)

		sess := try.To(capture.Start(stream, func(string) {})).OrFatal(t)
		try.To(stream.WriteString("captured\n")).OrFatal(t)
		if err := sess.Close(); err != nil {
			t.Fatal(err)
		}

		try.To(stream.WriteString("direct\n")).OrFatal(t)
		content := try.To(os.ReadFile(stream.Name())).OrFatal(t)
		if string(content) != "direct\n" {
			t.Errorf("only post-capture writes should reach the file, got: %q", content)
		}
	})

	t.Run("when the worker cannot drain in time, close gives up with a warning", func(t *testing.T) {
		stream := newStream(t)

		release := make(chan struct{})
		logbuf := &strings.Builder{}
		sess := try.To(capture.Start(
			stream,
			func(string) { <-release },
			capture.WithTeardownWait(10*time.Millisecond),
			capture.WithLogger(log.New(logbuf, "", 0)),
		)).OrFatal(t)
		defer close(release)

		try.To(stream.WriteString("stuck\n")).OrFatal(t)

		done := make(chan error, 1)
		go func() { done <- sess.Close() }()
		select {
		case err := <-done:
			if err != nil {
				t.Fatal(err)
			}
		case <-time.After(time.Second):
			t.Fatal("close should stop waiting once the teardown wait expires")
		}

		if !strings.Contains(logbuf.String(), "giving up") {
			t.Errorf("expected a warning about the stuck worker, got: %q", logbuf.String())
		}
	})

	t.Run("when closed twice, the second close is a no-op", func(t *testing.T) {
		stream := newStream(t)

		sess := try.To(capture.Start(stream, func(string) {})).OrFatal(t)
		if err := sess.Close(); err != nil {
			t.Fatal(err)
		}
		if err := sess.Close(); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("a null session captures nothing and closes cleanly", func(t *testing.T) {
		if err := capture.Null().Close(); err != nil {
			t.Fatal(err)
		}
	})
}

func TestCanCapture(t *testing.T) {
	t.Run("a file-backed writer can be captured", func(t *testing.T) {
		if !capture.CanCapture(os.Stdout) {
			t.Error("stdout should be capturable")
		}
	})

	t.Run("an in-memory writer cannot", func(t *testing.T) {
		if capture.CanCapture(&bytes.Buffer{}) {
			t.Error("a bytes.Buffer has no file descriptor")
		}
	})
}
