// Package progress tracks per-session pipeline progress and delivers
// status events to live listeners.
//
// Delivery is best-effort by design: updates to a session with no registered
// listener are dropped, never buffered or retried, and the pipeline's control
// flow never depends on a push completing.
package progress

import (
	"sync"

	"gradescan/pkg/models"
)

// channelBuffer bounds how many undelivered updates a slow listener can hold
// before further pushes are dropped.
const channelBuffer = 16

// Registry owns the mapping from session id to progress channel. Channels are
// created on listener connect and deleted on disconnect; a pipeline run for an
// unknown session simply reports into the void.
type Registry struct {
	mu       sync.Mutex
	channels map[string]*Channel
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		channels: make(map[string]*Channel),
	}
}

// Register creates (or replaces) the channel for a session and initializes
// its state to idle.
func (r *Registry) Register(clientID string) *Channel {
	ch := &Channel{
		updates: make(chan models.ProgressState, channelBuffer),
		state:   models.ProgressState{Status: models.StatusIdle, Progress: 0, Message: ""},
	}
	r.mu.Lock()
	r.channels[clientID] = ch
	r.mu.Unlock()
	return ch
}

// Unregister deletes a session's channel and state.
func (r *Registry) Unregister(clientID string) {
	r.mu.Lock()
	delete(r.channels, clientID)
	r.mu.Unlock()
}

// State returns the current progress state for a session, if registered.
func (r *Registry) State(clientID string) (models.ProgressState, bool) {
	r.mu.Lock()
	ch, ok := r.channels[clientID]
	r.mu.Unlock()
	if !ok {
		return models.ProgressState{}, false
	}
	return ch.State(), true
}

// Reporter returns a reporter bound to the given session. The session does
// not need to be registered: pushes to an absent session are dropped.
func (r *Registry) Reporter(clientID string) *Reporter {
	return &Reporter{reg: r, id: clientID}
}

func (r *Registry) push(clientID string, state models.ProgressState) {
	r.mu.Lock()
	ch, ok := r.channels[clientID]
	r.mu.Unlock()
	if !ok {
		return
	}
	ch.push(state)
}

// Channel is the per-session conduit through which progress events reach a
// listener.
type Channel struct {
	updates chan models.ProgressState

	mu    sync.Mutex
	state models.ProgressState
}

// Updates returns the stream of progress events for this session.
func (c *Channel) Updates() <-chan models.ProgressState {
	return c.updates
}

// State returns the most recent progress state.
func (c *Channel) State() models.ProgressState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Channel) push(state models.ProgressState) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()

	// Non-blocking: a listener that stopped draining loses updates rather
	// than stalling the pipeline.
	select {
	case c.updates <- state:
	default:
	}
}
