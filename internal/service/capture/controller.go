package capture

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	speechmodel "github.com/viblyapp/vibly/backend/internal/model/speech"
)

var (
	// ErrDeviceUnavailable means the platform adapter could not acquire an
	// input device (permission denied or no microphone present).
	ErrDeviceUnavailable = errors.New("audio device unavailable")

	// ErrCaptureActive is returned by Start while a recording is in progress.
	// Only one recorder may be active per session.
	ErrCaptureActive = errors.New("capture already active")
)

// maxRecordingBytes bounds buffered audio during long utterances.
const maxRecordingBytes = 32 << 20

// Controller owns the recording state machine for one session. The platform
// adapter (the capture WebSocket) feeds it chunks and interim text; it emits
// exactly one finished Recording per successful Start/Stop pair.
type Controller struct {
	mu         sync.Mutex
	active     bool
	chunks     [][]byte
	size       int
	format     string
	interim    string
	acquire    func() error
	onFinished func(speechmodel.Recording)
	log        *zap.Logger
}

// NewController wires a controller to its recording-finished callback.
// acquire is the platform hook that claims the input device; nil means the
// device is managed entirely by the adapter.
func NewController(acquire func() error, onFinished func(speechmodel.Recording), log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		acquire:    acquire,
		onFinished: onFinished,
		log:        log,
	}
}

// Start begins a recording in the given container format.
func (c *Controller) Start(format string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active {
		return ErrCaptureActive
	}

	if c.acquire != nil {
		if err := c.acquire(); err != nil {
			return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
		}
	}

	if format == "" {
		format = "webm"
	}

	c.active = true
	c.format = format
	c.chunks = nil
	c.size = 0
	c.interim = ""
	return nil
}

// OnChunk buffers one interval of recorded audio. Chunks arriving while idle
// are dropped; the buffer is capped to bound memory during long utterances.
func (c *Controller) OnChunk(data []byte) {
	if len(data) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.active {
		return
	}
	if c.size+len(data) > maxRecordingBytes {
		c.log.Warn("recording buffer full, dropping chunk", zap.Int("bufferedBytes", c.size))
		return
	}

	chunk := make([]byte, len(data))
	copy(chunk, data)
	c.chunks = append(c.chunks, chunk)
	c.size += len(chunk)
}

// OnInterimText records the live transcription preview. Display-only: it
// never enters the authoritative pipeline and is discarded on Stop.
func (c *Controller) OnInterimText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active {
		c.interim = text
	}
}

// Interim returns the current live transcription preview.
func (c *Controller) Interim() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.interim
}

// Active reports whether a recording is in progress.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Stop finalizes the buffered chunks into one opaque recording. Calling Stop
// while idle is a no-op. A stop with zero captured bytes is logged and emits
// nothing, so no turn is created for silence.
func (c *Controller) Stop() {
	c.mu.Lock()

	if !c.active {
		c.mu.Unlock()
		return
	}

	c.active = false
	c.interim = ""

	if c.size == 0 {
		c.mu.Unlock()
		c.log.Info("stopped recording with no audio data, skipping turn")
		return
	}

	audio := make([]byte, 0, c.size)
	for _, chunk := range c.chunks {
		audio = append(audio, chunk...)
	}
	recording := speechmodel.Recording{Audio: audio, Format: c.format}
	c.chunks = nil
	c.size = 0
	callback := c.onFinished
	c.mu.Unlock()

	if callback != nil {
		callback(recording)
	}
}
