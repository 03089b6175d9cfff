package push

import (
	"sync"

	"go.uber.org/zap"

	"github.com/JakeFAU/realtime-progress/internal/metrics"
)

// Registry maps each ClientID to the set of Channels registered for it. It is
// safe for concurrent use. The registry does not own channel lifecycles; it
// only answers lookups.
type Registry struct {
	mu      sync.RWMutex
	clients map[ClientID]map[string]Channel
	logger  *zap.Logger
}

// NewRegistry returns an empty Registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		clients: make(map[ClientID]map[string]Channel),
		logger:  logger,
	}
}

// Register adds ch under id. Several channels may share an id; registering
// the same channel ID twice keeps a single entry.
func (r *Registry) Register(id ClientID, ch Channel) {
	if ch == nil {
		return
	}
	r.mu.Lock()
	set, ok := r.clients[id]
	if !ok {
		set = make(map[string]Channel)
		r.clients[id] = set
	}
	_, dup := set[ch.ID()]
	set[ch.ID()] = ch
	count := len(set)
	r.mu.Unlock()

	if dup {
		return
	}
	metrics.ObserveChannelRegistered()
	r.logger.Debug("push channel registered",
		zap.String("client_id", string(id)),
		zap.String("channel_id", ch.ID()),
		zap.Int("channels", count),
	)
}

// ChannelsFor returns a snapshot of the channels registered under id. An
// unknown id yields an empty slice.
func (r *Registry) ChannelsFor(id ClientID) []Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.clients[id]
	out := make([]Channel, 0, len(set))
	for _, ch := range set {
		out = append(out, ch)
	}
	return out
}

// Remove drops ch from id's set and reports whether it was present. The id
// entry disappears with its last channel.
func (r *Registry) Remove(id ClientID, ch Channel) bool {
	if ch == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.clients[id]
	if !ok {
		return false
	}
	if _, ok := set[ch.ID()]; !ok {
		return false
	}
	delete(set, ch.ID())
	if len(set) == 0 {
		delete(r.clients, id)
	}
	return true
}

// Len returns the total number of registered channels.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, set := range r.clients {
		n += len(set)
	}
	return n
}

// Clients returns the number of ids with at least one channel.
func (r *Registry) Clients() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}
