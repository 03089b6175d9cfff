package push

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/JakeFAU/realtime-progress/internal/metrics"
	"github.com/JakeFAU/realtime-progress/internal/progress"
)

// Notifier delivers progress events for one ClientID to every channel
// registered under it. It satisfies progress.Emitter.
type Notifier struct {
	registry *Registry
	client   ClientID
	render   Renderer
	logger   *zap.Logger
}

// NewNotifier binds a Notifier to id.
func NewNotifier(registry *Registry, id ClientID, render Renderer, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{
		registry: registry,
		client:   id,
		render:   render,
		logger:   logger.With(zap.String("client_id", string(id))),
	}
}

// Emit renders evt and broadcasts it. Rendering and delivery failures are
// logged and never reach the caller.
func (n *Notifier) Emit(evt progress.Event) {
	kind, fragment, err := n.fragment(evt)
	if err != nil {
		n.logger.Error("render fragment failed",
			zap.String("stage", string(evt.Stage)),
			zap.Error(err),
		)
		return
	}
	n.Broadcast(kind, fragment)
}

// Broadcast flattens fragment and sends it to each channel registered for
// the bound ClientID. A channel that rejects the write is dropped from the
// registry; the others still receive it. It returns the number of channels
// that accepted the fragment.
func (n *Notifier) Broadcast(kind, fragment string) int {
	fragment = Flatten(fragment)
	delivered := 0
	for _, ch := range n.registry.ChannelsFor(n.client) {
		if err := ch.Send(fragment); err != nil {
			n.prune(ch, err)
			continue
		}
		metrics.ObserveFragmentSent(kind)
		delivered++
	}
	return delivered
}

func (n *Notifier) prune(ch Channel, cause error) {
	if !n.registry.Remove(n.client, ch) {
		return
	}
	reason := pruneReason(cause)
	metrics.ObserveChannelPruned(reason)
	n.logger.Warn("dropping push channel after failed write",
		zap.String("channel_id", ch.ID()),
		zap.String("reason", reason),
		zap.Error(cause),
	)
}

func (n *Notifier) fragment(evt progress.Event) (string, string, error) {
	switch evt.Stage {
	case progress.StageProgress:
		out, err := n.render.RenderProgress(evt.Percent)
		if err != nil {
			return "", "", fmt.Errorf("render progress %d: %w", evt.Percent, err)
		}
		return KindProgress, out, nil
	case progress.StageDone:
		out, err := n.render.RenderDone()
		if err != nil {
			return "", "", fmt.Errorf("render done: %w", err)
		}
		return KindDone, out, nil
	default:
		return "", "", fmt.Errorf("unknown stage %q", evt.Stage)
	}
}
