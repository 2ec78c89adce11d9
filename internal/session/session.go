package session

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/dmorgan81/captionbot/internal/caption"
	"github.com/dmorgan81/captionbot/internal/log"
	"github.com/dmorgan81/captionbot/internal/media"
	"github.com/dmorgan81/captionbot/internal/tone"
	"github.com/samber/lo"
)

// ErrBusy is returned when a generation is already in flight for the session.
var ErrBusy = errors.New("a generation is already in progress")

type State int

const (
	Idle State = iota
	Loading
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Done:
		return "done"
	}
	return "unknown"
}

// Attempt is what the form submits. Image may be nil when nothing was
// uploaded.
type Attempt struct {
	Image      io.Reader
	MediaType  string
	Keywords   string
	Tone       string
	CustomTone string
}

// Snapshot is a copy of a session's visible state.
type Snapshot struct {
	State    State
	Content  *caption.Content
	Preview  media.Payload
	Error    string
	Keywords string
	Tone     string
	Custom   string
}

// Session is one user's generate/reset flow. At most one attempt runs at a
// time; every attempt ends in Done or back in Idle.
type Session struct {
	ID string

	assembler *media.Assembler
	generator caption.Generator

	mu   sync.Mutex
	snap Snapshot
}

func New(id string, assembler *media.Assembler, generator caption.Generator) *Session {
	return &Session{
		ID:        id,
		assembler: assembler,
		generator: generator,
		snap:      Snapshot{Tone: tone.Default()},
	}
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap.State == Loading {
		return
	}
	s.snap = Snapshot{Tone: tone.Default()}
}

func (s *Session) Submit(ctx context.Context, attempt Attempt) (caption.Content, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("session").With("session", s.ID)

	if err := s.begin(attempt); err != nil {
		log.Warn("submission refused", "error", err.Error())
		return caption.Content{}, err
	}

	content, payload, err := s.run(ctx, attempt)
	s.finish(content, payload, err)
	if err != nil {
		log.Warn("generation attempt failed", "error", err.Error())
		return caption.Content{}, err
	}

	log.Info("generation attempt succeeded")
	return content, nil
}

// begin validates the attempt and moves to Loading. Validation failures leave
// the session idle with the message set.
func (s *Session) begin(attempt Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snap.State == Loading {
		return ErrBusy
	}

	s.snap.Keywords = attempt.Keywords
	s.snap.Tone = lo.Ternary(attempt.Tone == "", tone.Default(), attempt.Tone)
	s.snap.Custom = attempt.CustomTone
	s.snap.Content = nil
	s.snap.Preview = media.Payload{}
	s.snap.Error = ""

	err := validate(attempt)
	if err != nil {
		s.snap.State = Idle
		s.snap.Error = Message(err)
		return err
	}
	s.snap.State = Loading
	return nil
}

func validate(attempt Attempt) error {
	if attempt.Image == nil {
		return caption.ErrNoImage
	}
	_, err := tone.Resolve(attempt.Tone, attempt.CustomTone)
	return err
}

func (s *Session) run(ctx context.Context, attempt Attempt) (caption.Content, media.Payload, error) {
	resolved, err := tone.Resolve(attempt.Tone, attempt.CustomTone)
	if err != nil {
		return caption.Content{}, media.Payload{}, err
	}
	payload, err := s.assembler.Encode(ctx, attempt.Image, attempt.MediaType)
	if err != nil {
		return caption.Content{}, media.Payload{}, err
	}
	content, err := s.generator.Generate(ctx, caption.Request{
		Payload:  payload,
		Keywords: attempt.Keywords,
		Tone:     resolved,
	})
	return content, payload, err
}

func (s *Session) finish(content caption.Content, payload media.Payload, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.snap.State = Idle
		s.snap.Error = Message(err)
		return
	}
	s.snap.State = Done
	s.snap.Content = &content
	s.snap.Preview = payload
}
