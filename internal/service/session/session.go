package session

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/viblyapp/vibly/backend/internal/model/conversation"
	"github.com/viblyapp/vibly/backend/internal/model/persona"
	speechmodel "github.com/viblyapp/vibly/backend/internal/model/speech"
	"github.com/viblyapp/vibly/backend/internal/service/capture"
	"github.com/viblyapp/vibly/backend/internal/service/playback"
)

const playbackFailedNotice = "(Audio playback failed, but you can still read the response)"

// Session is the aggregate root of one conversation: it owns the message log,
// turn identity, the pending-turn set, the persona/scenario binding, and
// drives the capture → transcribe → complete → synthesize → play pipeline
// with per-stage failure containment.
type Session struct {
	ID        string
	CreatedAt time.Time

	persona persona.Persona
	deps    Deps

	mu       sync.Mutex
	scenario *persona.Scenario
	messages []conversation.Message
	pending  map[int64]struct{}
	counter  int64

	Capture  *capture.Controller
	playback *playback.Controller
	events   *broadcaster

	ctx    context.Context
	cancel context.CancelFunc

	log *zap.Logger
}

func newSession(p persona.Persona, deps Deps) *Session {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		persona:   p,
		deps:      deps,
		pending:   make(map[int64]struct{}),
		events:    newBroadcaster(),
		ctx:       ctx,
		cancel:    cancel,
		log:       deps.Logger.With(zap.String("persona", p.ID)),
	}

	s.Capture = capture.NewController(nil, func(rec speechmodel.Recording) {
		go s.RunTurn(s.ctx, rec)
	}, s.log.Named("capture"))

	s.playback = playback.NewController(
		broadcastSink{s: s},
		func(ev playback.Event) {
			s.events.Publish(Event{
				Type:      EventPlayback,
				SessionID: s.ID,
				Playback:  ev.Type,
				StreamID:  ev.StreamID,
			})
		},
		func(reason string) {
			s.log.Warn("playback failed", zap.String("reason", reason))
			s.appendMessage(conversation.Message{
				Sender: conversation.SenderTutor,
				Text:   playbackFailedNotice,
			})
		},
		s.log.Named("playback"),
	)

	s.appendMessage(conversation.Message{
		Sender: conversation.SenderTutor,
		Text:   p.Greeting(),
	})

	return s
}

// Persona returns the immutable persona this session is bound to.
func (s *Session) Persona() persona.Persona {
	return s.persona
}

// Playback exposes the session's playback controller.
func (s *Session) Playback() *playback.Controller {
	return s.playback
}

// Subscribe attaches an event listener; the returned cancel must be called.
func (s *Session) Subscribe() (<-chan Event, func()) {
	return s.events.Subscribe()
}

// SetInterim updates the live transcription preview and fans it out to
// subscribers. Display-only; the authoritative text comes from transcription.
func (s *Session) SetInterim(text string) {
	s.Capture.OnInterimText(text)
	if s.Capture.Active() {
		s.events.Publish(Event{Type: EventInterimText, SessionID: s.ID, Text: text})
	}
}

// RunTurn drives one full conversation turn from a finished recording.
// Every stage failure is contained here: fatal stages append a tutor-voiced
// error message, synthesis failures degrade to text-only, and the pending
// entry is removed no matter which branch settles the turn.
func (s *Session) RunTurn(ctx context.Context, rec speechmodel.Recording) {
	if rec.Empty() {
		s.log.Info("ignoring empty recording")
		return
	}

	turnID := s.beginTurn()
	defer s.settleTurn(turnID)

	transcription, err := s.transcribe(ctx, rec)
	if err != nil {
		s.log.Warn("transcription failed", zap.Int64("turn", turnID), zap.Error(err))
		s.appendTurnError(err)
		return
	}

	// The user message becomes visible before the reply arrives; this is the
	// ordering guarantee that the user text always precedes its reply.
	userMsg := s.appendMessage(conversation.Message{
		ID:        turnID,
		Sender:    conversation.SenderUser,
		Text:      transcription.Text,
		SpeechTip: transcription.SpeechTip,
		Score:     transcription.Score,
	})

	history := s.historyWindow(userMsg.ID)
	scenario := s.activeScenario()

	reply, err := s.complete(ctx, scenario, history, userMsg.Text)
	if err != nil {
		s.log.Warn("completion failed", zap.Int64("turn", turnID), zap.Error(err))
		s.appendTurnError(err)
		return
	}

	tutorMsg := s.appendMessage(conversation.Message{
		Sender: conversation.SenderTutor,
		Text:   reply,
	})

	if s.deps.Coach != nil {
		if critique, err := s.deps.Coach.Critique(ctx, &s.persona, userMsg.Text); err != nil {
			s.log.Warn("critique failed", zap.Int64("turn", turnID), zap.Error(err))
		} else {
			s.attachCritique(userMsg.ID, critique)
		}
	}

	if s.deps.Imager != nil {
		if imageURL, err := s.deps.Imager.GenerateSceneImage(ctx, reply); err != nil {
			s.log.Debug("scene image skipped", zap.Int64("turn", turnID), zap.Error(err))
		} else {
			s.attachImage(tutorMsg.ID, imageURL)
		}
	}

	if s.deps.Synthesizer != nil {
		audio, err := s.deps.Synthesizer.Synthesize(ctx, reply, s.persona.VoiceID)
		if err != nil {
			// Text-only degradation: the reply stands, nothing is appended.
			s.log.Warn("synthesis failed, serving text only", zap.Int64("turn", turnID), zap.Error(err))
		} else {
			s.playback.Play(audio, "mp3")
		}
	}
}

func (s *Session) transcribe(ctx context.Context, rec speechmodel.Recording) (speechmodel.Transcription, error) {
	if s.deps.Transcriber == nil {
		return speechmodel.Transcription{}, fmt.Errorf("transcription unavailable")
	}
	language := "en"
	if s.deps.Language != nil {
		language = s.deps.Language(s.persona.Role)
	}
	return s.deps.Transcriber.Transcribe(ctx, rec.Audio, rec.Format, language)
}

func (s *Session) complete(ctx context.Context, scenario *persona.Scenario, history []conversation.Message, userText string) (string, error) {
	if s.deps.Completer == nil {
		return "", fmt.Errorf("tutor unavailable")
	}
	return s.deps.Completer.Complete(ctx, &s.persona, scenario, history, userText)
}

// beginTurn allocates the turn identifier and marks it pending. The same
// counter issues message ids, so the turn id doubles as the user message id.
func (s *Session) beginTurn() int64 {
	s.mu.Lock()
	s.counter++
	turnID := s.counter
	s.pending[turnID] = struct{}{}
	s.mu.Unlock()

	s.events.Publish(Event{Type: EventTurnPending, SessionID: s.ID, TurnID: turnID})
	return turnID
}

// settleTurn removes the turn from the pending set. Idempotent; runs in the
// deferred path of RunTurn regardless of which branch terminated the turn.
func (s *Session) settleTurn(turnID int64) {
	s.mu.Lock()
	delete(s.pending, turnID)
	s.mu.Unlock()

	s.events.Publish(Event{Type: EventTurnSettled, SessionID: s.ID, TurnID: turnID})
}

// appendMessage adds a message to the log. A zero ID means the next id is
// drawn from the session counter; user turn messages arrive with their turn
// id already assigned.
func (s *Session) appendMessage(msg conversation.Message) conversation.Message {
	s.mu.Lock()
	if msg.ID == 0 {
		s.counter++
		msg.ID = s.counter
	}
	msg.CreatedAt = time.Now().UTC()
	s.messages = append(s.messages, msg)
	s.mu.Unlock()

	s.events.Publish(Event{Type: EventMessageAppended, SessionID: s.ID, Message: &msg})
	return msg
}

// appendTurnError records a stage failure as a tutor-voiced message so the
// transcript stays a single coherent log. The upstream detail is surfaced
// verbatim.
func (s *Session) appendTurnError(cause error) {
	s.appendMessage(conversation.Message{
		Sender: conversation.SenderTutor,
		Text:   fmt.Sprintf("I'm sorry, I encountered an error. Please try again. (%s)", cause.Error()),
	})
}

// attachCritique enriches an existing user message by id. Never reorders.
func (s *Session) attachCritique(messageID int64, critique conversation.Critique) {
	s.enrich(messageID, func(msg *conversation.Message) {
		msg.SpeechTip = critique.SpeechTip
		score := critique.Score
		msg.Score = &score
		msg.ImprovementTip = critique.ImprovementTip
	})
}

// attachImage enriches an existing tutor message by id.
func (s *Session) attachImage(messageID int64, imageURL string) {
	s.enrich(messageID, func(msg *conversation.Message) {
		msg.ImageURL = imageURL
	})
}

func (s *Session) enrich(messageID int64, update func(*conversation.Message)) {
	s.mu.Lock()
	var updated *conversation.Message
	for i := range s.messages {
		if s.messages[i].ID == messageID {
			update(&s.messages[i])
			cp := s.messages[i]
			updated = &cp
			break
		}
	}
	s.mu.Unlock()

	if updated != nil {
		s.events.Publish(Event{Type: EventMessageEnriched, SessionID: s.ID, Message: updated})
	}
}

// historyWindow returns the bounded context window: the most recent
// HistoryLimit messages, excluding the in-flight user message which travels
// separately as the query. Older turns are dropped, never summarized.
func (s *Session) historyWindow(excludeID int64) []conversation.Message {
	limit := s.deps.HistoryLimit
	if limit <= 0 {
		limit = 10
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	window := make([]conversation.Message, 0, limit)
	for _, msg := range s.messages {
		if msg.ID == excludeID {
			continue
		}
		window = append(window, msg)
	}
	if len(window) > limit {
		window = window[len(window)-limit:]
	}
	return window
}

// SelectScenario swaps the effective system instruction used by subsequent
// completions. Turns already in flight are unaffected; an empty id clears
// the scenario back to the persona's base prompt.
func (s *Session) SelectScenario(id string) error {
	if id == "" {
		s.mu.Lock()
		s.scenario = nil
		s.mu.Unlock()
		return nil
	}

	scenario, ok := s.persona.FindScenario(id)
	if !ok {
		return ErrScenarioNotFound
	}

	s.mu.Lock()
	s.scenario = &scenario
	s.mu.Unlock()
	return nil
}

func (s *Session) activeScenario() *persona.Scenario {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scenario == nil {
		return nil
	}
	cp := *s.scenario
	return &cp
}

// Snapshot produces the read-only view handed to the UI layer.
func (s *Session) Snapshot() conversation.Snapshot {
	s.mu.Lock()
	messages := make([]conversation.Message, len(s.messages))
	copy(messages, s.messages)

	pending := make([]int64, 0, len(s.pending))
	for id := range s.pending {
		pending = append(pending, id)
	}

	scenarioID := ""
	if s.scenario != nil {
		scenarioID = s.scenario.ID
	}
	s.mu.Unlock()

	sort.Slice(pending, func(i, j int) bool { return pending[i] < pending[j] })

	return conversation.Snapshot{
		SessionID:   s.ID,
		PersonaID:   s.persona.ID,
		ScenarioID:  scenarioID,
		Messages:    messages,
		Pending:     pending,
		Playback:    string(s.playback.State()),
		Capturing:   s.Capture.Active(),
		InterimText: s.Capture.Interim(),
		CreatedAt:   s.CreatedAt,
	}
}

// Close tears the session down: in-flight turns are cancelled, playback is
// stopped and all event subscribers are released.
func (s *Session) Close() {
	s.cancel()
	s.Capture.Stop()
	s.playback.Stop()
	s.events.Close()
}

// broadcastSink pushes synthesized audio onto the session event stream; the
// attached transport (WebSocket or SSE) relays it to the client for playback.
type broadcastSink struct {
	s *Session
}

func (b broadcastSink) Deliver(streamID string, audio []byte, format string) error {
	b.s.events.Publish(Event{
		Type:      EventPlaybackAudio,
		SessionID: b.s.ID,
		StreamID:  streamID,
		Audio:     audio,
		Format:    format,
	})
	return nil
}
