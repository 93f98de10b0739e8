package utils

import (
	"log/slog"
	"time"

	"devevents/src-server/form"

	"github.com/google/uuid"
)

type FormSessionInfo struct {
	ID       string
	LastUsed time.Time
	Session  *form.Session
}

// NewFormSession starts a form session wired to the app's client, preview
// decoder and metrics.
func (as *AppState) NewFormSession() *FormSessionInfo {
	id := uuid.NewString()
	session := form.New(as.Client, as.Decoder)
	session.SetLogger(slog.Default().With("form_session", id))
	session.OnSettle(func(outcome form.Outcome, took time.Duration) {
		Observe(as.MetricChans.SubmitLatency, float64(took.Microseconds()))
		Observe(as.MetricChans.SubmitOutcome, outcome.String())
	})

	info := &FormSessionInfo{
		ID:       id,
		LastUsed: time.Now(),
		Session:  session,
	}
	as.formSessionsMu.Lock()
	as.formSessions[id] = info
	as.formSessionsMu.Unlock()
	slog.Debug("form session created", "form_session", id)
	return info
}

// GetFormSession looks a session up and marks it as used.
func (as *AppState) GetFormSession(id string) (*form.Session, bool) {
	as.formSessionsMu.Lock()
	defer as.formSessionsMu.Unlock()
	info, ok := as.formSessions[id]
	if !ok {
		return nil, false
	}
	info.LastUsed = time.Now()
	return info.Session, true
}

func (as *AppState) RemoveFormSession(id string) bool {
	as.formSessionsMu.Lock()
	info, ok := as.formSessions[id]
	delete(as.formSessions, id)
	as.formSessionsMu.Unlock()
	if ok {
		info.Session.Close()
	}
	return ok
}

func (as *AppState) FormSessionCount() int {
	as.formSessionsMu.Lock()
	defer as.formSessionsMu.Unlock()
	return len(as.formSessions)
}

// EvictIdleFormSessions drops sessions unused since before cutoff, except
// those with a submission in flight.
func (as *AppState) EvictIdleFormSessions(cutoff time.Time) int {
	var evicted []*FormSessionInfo
	as.formSessionsMu.Lock()
	for id, info := range as.formSessions {
		if info.LastUsed.After(cutoff) || info.Session.Snapshot().Loading() {
			continue
		}
		delete(as.formSessions, id)
		evicted = append(evicted, info)
	}
	as.formSessionsMu.Unlock()

	for _, info := range evicted {
		info.Session.Close()
		slog.Info("form session evicted", "form_session", info.ID, "last_used", info.LastUsed)
	}
	return len(evicted)
}

func (as *AppState) evictIdleFormSessions() {
	ttl := as.Config.GetSessionTTL()
	gracefulShutdownCh := as.CreateGracefulShutdownChan()
	ticker := time.NewTicker(max(ttl/2, time.Second))
	defer ticker.Stop()
	for {
		select {
		case <-*gracefulShutdownCh:
			return
		case <-ticker.C:
			as.EvictIdleFormSessions(time.Now().Add(-ttl))
		}
	}
}
