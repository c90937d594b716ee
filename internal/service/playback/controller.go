package playback

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrPlaybackFailed marks a delivery or decode failure. It never propagates
// into the turn pipeline; the controller reports it through its notice hook.
var ErrPlaybackFailed = errors.New("playback failed")

// State of the current output stream.
type State string

const (
	StateIdle    State = "idle"
	StatePlaying State = "playing"
	StatePaused  State = "paused"
)

// Event describes a stream transition, consumed by the UI to animate the
// tutor's speaking state.
type Event struct {
	Type     string `json:"type"` // started, stopped, paused, resumed
	StreamID string `json:"streamId"`
}

// Sink delivers audio to the listening client. Implementations push the bytes
// over whatever transport the session is attached to.
type Sink interface {
	Deliver(streamID string, audio []byte, format string) error
}

type stream struct {
	id string
}

// Controller owns the single active output stream for a session. Play
// replaces the current stream; there is never more than one.
type Controller struct {
	mu       sync.Mutex
	sink     Sink
	current  *stream
	state    State
	onEvent  func(Event)
	onNotice func(reason string)
	log      *zap.Logger
}

// NewController builds a playback controller. onEvent receives stream
// transitions; onNotice is called when delivery fails, so the session can
// append a recoverable follow-up message instead of surfacing an error.
func NewController(sink Sink, onEvent func(Event), onNotice func(string), log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		sink:     sink,
		state:    StateIdle,
		onEvent:  onEvent,
		onNotice: onNotice,
		log:      log,
	}
}

// Play replaces any currently playing stream with a new one. The previous
// stream is stopped and released before the new one starts.
func (c *Controller) Play(audio []byte, format string) {
	c.mu.Lock()
	c.stopCurrentLocked()

	next := &stream{id: uuid.NewString()}
	c.current = next
	c.state = StatePlaying
	sink := c.sink
	emit := c.onEvent
	c.mu.Unlock()

	if emit != nil {
		emit(Event{Type: "started", StreamID: next.id})
	}

	if sink == nil {
		return
	}

	if err := sink.Deliver(next.id, audio, format); err != nil {
		c.log.Warn("audio delivery failed", zap.String("streamId", next.id), zap.Error(err))

		c.mu.Lock()
		var notify func(string)
		// Another Play may already have replaced this stream.
		if c.current == next {
			c.stopCurrentLocked()
			notify = c.onNotice
		}
		c.mu.Unlock()

		if notify != nil {
			notify(err.Error())
		}
	}
}

// Pause suspends the current stream, if any.
func (c *Controller) Pause() {
	c.mu.Lock()
	if c.state != StatePlaying || c.current == nil {
		c.mu.Unlock()
		return
	}
	c.state = StatePaused
	id := c.current.id
	emit := c.onEvent
	c.mu.Unlock()

	if emit != nil {
		emit(Event{Type: "paused", StreamID: id})
	}
}

// Resume continues a paused stream, if any.
func (c *Controller) Resume() {
	c.mu.Lock()
	if c.state != StatePaused || c.current == nil {
		c.mu.Unlock()
		return
	}
	c.state = StatePlaying
	id := c.current.id
	emit := c.onEvent
	c.mu.Unlock()

	if emit != nil {
		emit(Event{Type: "resumed", StreamID: id})
	}
}

// Stop halts and releases the current stream.
func (c *Controller) Stop() {
	c.mu.Lock()
	c.stopCurrentLocked()
	c.mu.Unlock()
}

// State returns the controller's current playback state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// CurrentStreamID returns the id of the active stream, or "" when idle.
func (c *Controller) CurrentStreamID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return ""
	}
	return c.current.id
}

// stopCurrentLocked releases the active stream and emits its stopped event.
// Callers hold c.mu.
func (c *Controller) stopCurrentLocked() {
	if c.current == nil {
		return
	}

	prev := c.current
	c.current = nil
	c.state = StateIdle

	if c.onEvent != nil {
		// Emit without dropping the lock: transitions stay ordered relative
		// to the stream swap, and the event hooks never call back in.
		c.onEvent(Event{Type: "stopped", StreamID: prev.id})
	}
}
