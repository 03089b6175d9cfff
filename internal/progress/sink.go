package progress

import "context"

// Sink consumes batches of progress events. Implementations must be safe for
// repeated calls, honor ctx deadlines, and may be invoked concurrently.
type Sink interface {
	Consume(ctx context.Context, batch []Event) error
	Close(ctx context.Context) error
}

// Emitter receives individual events in the order a job produces them. Emit
// has no error result: delivery problems stay on the receiving side.
type Emitter interface {
	Emit(evt Event)
}

// EmitterFunc adapts a plain function to Emitter.
type EmitterFunc func(Event)

// Emit calls f(evt).
func (f EmitterFunc) Emit(evt Event) {
	f(evt)
}

// Tee returns an Emitter that forwards each event to every non-nil emitter,
// in argument order, on the caller's goroutine.
func Tee(emitters ...Emitter) Emitter {
	targets := make([]Emitter, 0, len(emitters))
	for _, e := range emitters {
		if e != nil {
			targets = append(targets, e)
		}
	}
	return tee(targets)
}

type tee []Emitter

func (t tee) Emit(evt Event) {
	for _, e := range t {
		e.Emit(evt)
	}
}
