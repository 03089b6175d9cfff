package push

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
)

var errBrokenPipe = errors.New("broken pipe")

// fakeChannel records fragments and fails the failOn-th Send (1-based) and
// every Send after it.
type fakeChannel struct {
	id     string
	failOn int

	mu    sync.Mutex
	sends int
	got   []string
}

func newFakeChannel(id string) *fakeChannel {
	return &fakeChannel{id: id}
}

func (c *fakeChannel) ID() string {
	return c.id
}

func (c *fakeChannel) Send(fragment string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sends++
	if c.failOn > 0 && c.sends >= c.failOn {
		return errBrokenPipe
	}
	c.got = append(c.got, fragment)
	return nil
}

func (c *fakeChannel) Received() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.got...)
}

func (c *fakeChannel) Sends() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sends
}

type fakeRenderer struct {
	err error
}

func (r fakeRenderer) RenderProgress(percent int) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return fmt.Sprintf("<div\n  style=\"width: %d%%\">\r\n</div>", percent), nil
}

func (r fakeRenderer) RenderDone() (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return "<a href=\"#\">\nDownload\n</a>", nil
}

// syncBuffer is a bytes.Buffer safe for one writer and one reader goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errBrokenPipe
}
