package push

import "errors"

// ClientID is the caller-supplied token correlating a browser session with
// its channels and job runs. It is trusted as given.
type ClientID string

// Channel is a long-lived one-way message sink for one open push connection.
type Channel interface {
	// ID distinguishes channels that share a ClientID.
	ID() string
	// Send queues one fragment for delivery. A non-nil error means the
	// channel is dead and should be dropped.
	Send(fragment string) error
}

var (
	// ErrStreamClosed is returned by Send once the connection has gone away.
	ErrStreamClosed = errors.New("push stream closed")
	// ErrStreamFull is returned by Send when the reader fell too far behind.
	ErrStreamFull = errors.New("push stream buffer full")
)

func pruneReason(err error) string {
	switch {
	case errors.Is(err, ErrStreamClosed):
		return "closed"
	case errors.Is(err, ErrStreamFull):
		return "full"
	default:
		return "error"
	}
}
