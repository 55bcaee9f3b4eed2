//go:build unix

// Package capture redirects a process-level output stream (stdout, stderr)
// at the file-descriptor level and feeds everything written to it, line by
// line, to a callback.
//
// Writes through the captured descriptor land in a pipe, or in a
// pseudo-terminal when the stream is a terminal so that programs keep
// emitting colors and progress bars. A worker goroutine drains the read end,
// decodes UTF-8 incrementally and splits lines. Closing the session restores
// the descriptor and waits, with a bounded timeout, for the worker to drain
// what is left.
package capture

import (
	"errors"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/creack/pty"
	"github.com/mattn/go-isatty"
	"golang.org/x/sys/unix"

	"github.com/outpost-run/outpost/pkg/utils"
)

const (
	// DefaultTeardownWait bounds how long Close waits for the worker to
	// drain the pipe.
	DefaultTeardownWait = 3 * time.Second

	// DefaultChunkSize is the read granularity of the worker.
	DefaultChunkSize = 50
)

// Callback receives one line per call, terminator included. The final
// unterminated tail, if any, is delivered at teardown.
type Callback func(line string)

type config struct {
	chunkSize    int
	teardownWait time.Duration
	logger       *log.Logger
}

type Option func(*config) *config

func WithChunkSize(n int) Option {
	return func(c *config) *config {
		c.chunkSize = n
		return c
	}
}

// WithTeardownWait bounds how long Close blocks on the draining worker.
func WithTeardownWait(d time.Duration) Option {
	return func(c *config) *config {
		c.teardownWait = d
		return c
	}
}

func WithLogger(l *log.Logger) Option {
	return func(c *config) *config {
		c.logger = l
		return c
	}
}

// CanCapture reports whether w is backed by a real file descriptor.
func CanCapture(w io.Writer) bool {
	_, ok := w.(interface{ Fd() uintptr })
	return ok
}

// Session is one active capture of one stream.
type Session struct {
	stream  *os.File
	fd      int
	savedFd int

	read       func(p []byte) (int, error)
	closeWrite func() error
	closeRead  func() error

	callback Callback
	decoder  utf8Decoder
	splitter lineSplitter

	done chan struct{}
	err  error

	cfg       config
	closeOnce sync.Once
	closeErr  error
}

// Start redirects stream's file descriptor and begins forwarding lines to
// callback. The stream is unusable directly until Close; writes to its
// descriptor keep working and are what gets captured.
func Start(stream *os.File, callback Callback, options ...Option) (*Session, error) {
	cfg := utils.ApplyAll(
		&config{
			chunkSize:    DefaultChunkSize,
			teardownWait: DefaultTeardownWait,
			logger:       log.New(io.Discard, "", log.LstdFlags),
		},
		options...,
	)

	fd := int(stream.Fd())
	savedFd, err := unix.Dup(fd)
	if err != nil {
		return nil, err
	}

	s := &Session{
		stream:   stream,
		fd:       fd,
		savedFd:  savedFd,
		callback: callback,
		done:     make(chan struct{}),
		cfg:      *cfg,
	}

	var writeFd int
	if isatty.IsTerminal(stream.Fd()) {
		// a pseudo-terminal keeps isatty-probing programs emitting colors
		// and carriage-return progress bars
		ptmx, tty, err := pty.Open()
		if err != nil {
			unix.Close(savedFd)
			return nil, err
		}
		writeFd = int(tty.Fd())
		s.read = ptmx.Read
		s.closeWrite = tty.Close
		s.closeRead = ptmx.Close
	} else {
		var fds [2]int
		if err := unix.Pipe(fds[:]); err != nil {
			unix.Close(savedFd)
			return nil, err
		}
		rfd, wfd := fds[0], fds[1]
		writeFd = wfd
		s.read = func(p []byte) (int, error) { return unix.Read(rfd, p) }
		s.closeWrite = func() error { return unix.Close(wfd) }
		s.closeRead = func() error { return unix.Close(rfd) }
	}

	if err := unix.Dup2(writeFd, fd); err != nil {
		s.closeWrite()
		s.closeRead()
		unix.Close(savedFd)
		return nil, err
	}

	go s.run()
	return s, nil
}

// Null is a no-op session, for streams that cannot be captured.
func Null() *Session {
	s := &Session{done: make(chan struct{})}
	close(s.done)
	return s
}

func (s *Session) run() {
	defer close(s.done)

	buf := make([]byte, s.cfg.chunkSize)
	for {
		n, err := s.read(buf)
		if n > 0 {
			s.emit(s.decoder.Write(buf[:n]))
		}
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			// EIO is how a pty master reports its slave closing
			if errors.Is(err, io.EOF) || errors.Is(err, unix.EIO) {
				break
			}
			s.err = err
			break
		}
		if n == 0 {
			break
		}
	}

	s.emit(s.decoder.Flush())
	if tail := s.splitter.Flush(); tail != "" {
		s.callback(tail)
	}
}

func (s *Session) emit(text string) {
	for _, line := range s.splitter.Push(text) {
		s.callback(line)
	}
}

// Close restores the descriptor, waits for the worker to drain whatever was
// still in flight and returns the worker's error, if any. Waiting is bounded:
// a worker stuck past the teardown wait is abandoned with a warning.
func (s *Session) Close() error {
	s.closeOnce.Do(func() { s.closeErr = s.teardown() })
	return s.closeErr
}

func (s *Session) teardown() error {
	if s.stream == nil {
		return nil
	}

	s.stream.Sync() // not all streams support sync; best effort

	if err := unix.Dup2(s.savedFd, s.fd); err != nil {
		return err
	}
	unix.Close(s.savedFd)
	s.closeWrite()

	drained := false
	select {
	case <-s.done:
		drained = true
	case <-time.After(s.cfg.teardownWait):
		s.cfg.logger.Printf("giving up on the capture worker after %s", s.cfg.teardownWait)
	}
	s.closeRead()

	if !drained {
		return nil
	}
	return s.err
}
