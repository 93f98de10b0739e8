package form

import (
	"context"
	"errors"
	"time"

	"devevents/src-server/client"
	"devevents/src-server/model"
)

// Submit sends the draft to the events endpoint and blocks until the attempt
// settles. A call made while another is in flight returns ErrSubmitInFlight
// without touching anything. On success the draft is reset to its defaults;
// on any failure it is left exactly as it was and the message explains why.
//
// The request is detached from ctx's cancellation: once sent, it runs until
// the transport resolves it.
func (s *Session) Submit(ctx context.Context) error {
	var (
		payload client.Payload
		err     error
	)
	s.update(func() bool {
		switch {
		case s.phase == PhaseSubmitting:
			err = ErrSubmitInFlight
			return false
		case s.draft.Image == nil:
			err = ErrImageRequired
			s.phase = PhaseSettled
			s.outcome = OutcomeFailure
			s.message = MessageImageRequired
			return true
		}
		s.phase = PhaseSubmitting
		s.outcome = OutcomeNone
		s.message = ""
		payload = buildPayload(s.draft)
		return true
	})
	if err != nil {
		return err
	}

	start := time.Now()
	_, err = s.sender.Create(context.WithoutCancel(ctx), payload)
	took := time.Since(start)

	var outcome Outcome
	s.update(func() bool {
		s.phase = PhaseSettled
		var rejected *client.RejectedError
		switch {
		case err == nil:
			s.outcome = OutcomeSuccess
			s.message = MessageSuccess
			s.draft = model.NewDraftEvent()
			// a decode still running for the old image must not come back
			s.imageSeq++
		case errors.As(err, &rejected):
			s.outcome = OutcomeFailure
			s.message = MessageFailedPrefix + rejected.Message
			s.logger.Info("event rejected", "status", rejected.StatusCode, "message", rejected.Message)
		default:
			s.outcome = OutcomeFailure
			s.message = MessageTransport
			s.logger.Error("can't submit event", "error", err)
		}
		outcome = s.outcome
		return true
	})

	s.mu.Lock()
	onSettle := s.onSettle
	s.mu.Unlock()
	if onSettle != nil {
		onSettle(outcome, took)
	}
	return err
}

func buildPayload(d model.DraftEvent) client.Payload {
	return client.Payload{
		Fields: d.Fields(),
		Image:  *d.Image,
		Tags:   append([]string{}, d.Tags...),
		Agenda: d.FlattenAgenda(),
	}
}
