// Package form holds the state of one event authoring session: the draft
// record, the editors for its tags and agenda, the image preview pipeline and
// the submission lifecycle.
//
// A Session is safe for concurrent use. Every mutation is serialized by the
// session's lock and announced to subscribers before the mutating call returns.
// Image decoding and submission run without holding the lock, so editing can
// go on while they are pending.
package form

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"devevents/src-server/client"
	"devevents/src-server/model"
)

// Sender delivers an encoded draft to the events endpoint.
type Sender interface {
	Create(ctx context.Context, payload client.Payload) (*client.Response, error)
}

// Decoder turns a selected image into something the presentation layer can
// show, typically a data URL.
type Decoder interface {
	Decode(ctx context.Context, file model.ImageFile) (string, error)
}

type Session struct {
	mu sync.Mutex

	draft   model.DraftEvent
	phase   Phase
	outcome Outcome
	message string

	sender  Sender
	decoder Decoder

	// bumped on every selection and reset; a decode may only write the
	// preview if the sequence it started with is still current
	imageSeq uint64
	decodes  sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc

	listenerID int
	listeners  []listener
	// bumped by every state change; notifyMu orders delivery and delivered
	// is the newest version handed to listeners
	version   uint64
	notifyMu  sync.Mutex
	delivered uint64
	onSettle   func(outcome Outcome, took time.Duration)
	logger     *slog.Logger
}

type listener struct {
	id int
	fn func(Snapshot)
}

func New(sender Sender, decoder Decoder) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		draft:   model.NewDraftEvent(),
		phase:   PhaseIdle,
		sender:  sender,
		decoder: decoder,
		ctx:     ctx,
		cancel:  cancel,
		logger:  slog.Default(),
	}
}

// SetLogger replaces the logger used for decode and submission failures.
func (s *Session) SetLogger(logger *slog.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger = logger
}

// OnSettle registers a hook called after every submission that reached the
// network, with its outcome and how long the round trip took.
func (s *Session) OnSettle(fn func(outcome Outcome, took time.Duration)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSettle = fn
}

// Subscribe registers fn to receive a snapshot after every state change.
// Calling the returned function removes it.
//
// Listeners are called one at a time and never see an older snapshot after a
// newer one; a snapshot superseded before it could be delivered is skipped.
// A listener must not call a mutating method of the session.
func (s *Session) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listenerID++
	id := s.listenerID
	s.listeners = append(s.listeners, listener{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// Close stops pending image decodes. The session must not be used afterwards.
func (s *Session) Close() {
	s.cancel()
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Draft returns a copy of the current draft.
func (s *Session) Draft() model.DraftEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Clone()
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		Draft:   s.draft.Clone(),
		Phase:   s.phase,
		Outcome: s.outcome,
		Message: s.message,
	}
}

// update runs mutate under the lock and, if it reports a change, hands a
// fresh snapshot to every listener once the lock is released. Delivery is
// serialized by notifyMu; a snapshot older than one already delivered is
// dropped.
func (s *Session) update(mutate func() bool) bool {
	s.mu.Lock()
	if !mutate() {
		s.mu.Unlock()
		return false
	}
	s.version++
	version := s.version
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	if version <= s.delivered {
		return true
	}
	s.delivered = version

	s.mu.Lock()
	listeners := append([]listener(nil), s.listeners...)
	s.mu.Unlock()
	for _, l := range listeners {
		l.fn(snapshot)
	}
	return true
}
