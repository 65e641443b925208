package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/stemsi/profile-setup/internal/echo"
	"github.com/stemsi/profile-setup/internal/form"
	"github.com/stemsi/profile-setup/internal/model"
)

// ProfilePoster sends a profile to the echo endpoint.
type ProfilePoster interface {
	Post(ctx context.Context, p model.Profile) (echo.Result, error)
}

// ProfileService runs profile submissions. Every submission issues exactly
// one request; overlapping submissions on the same form are neither queued
// nor cancelled, and only the most recently started one may set the final
// status.
type ProfileService struct {
	poster ProfilePoster
	log    zerolog.Logger
	wg     sync.WaitGroup
}

// NewProfileService creates a ProfileService.
func NewProfileService(poster ProfilePoster, log zerolog.Logger) *ProfileService {
	return &ProfileService{
		poster: poster,
		log:    log.With().Str("component", "profile_service").Logger(),
	}
}

// Submit moves f to sending before returning and posts its current fields in
// the background. The returned channel yields the classified outcome once and
// is then closed; the outcome is reported even if a newer submission has
// superseded this one.
//
// The request is detached from ctx cancellation so that an HTTP handler
// returning does not abort the call.
func (s *ProfileService) Submit(ctx context.Context, f *form.Form) <-chan model.Status {
	profile, seq := f.Begin()
	done := make(chan model.Status, 1)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(done)

		res, err := s.poster.Post(context.WithoutCancel(ctx), profile)
		status := Classify(res, err)

		log := s.log.With().
			Str("view_id", f.ID()).
			Uint64("seq", seq).
			Str("status", string(status)).
			Int("http_status", res.StatusCode).
			Dur("duration", res.Duration).
			Logger()

		switch {
		case err != nil:
			log.Warn().Err(err).Msg("Profile submission failed to reach endpoint")
		case status != model.StatusSuccess:
			log.Warn().Msg("Profile submission rejected")
		default:
			log.Debug().Msg("Profile submitted")
		}

		if !f.Complete(seq, status) {
			log.Debug().Msg("Superseded submission outcome dropped")
		}
		done <- status
	}()

	return done
}

// Wait blocks until all in-flight submissions finish or ctx is done.
func (s *ProfileService) Wait(ctx context.Context) error {
	finished := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Classify maps a request outcome to a status: transport errors are network
// failures, completed non-2xx responses are response failures.
func Classify(res echo.Result, err error) model.Status {
	switch {
	case err != nil:
		return model.StatusNetworkFailure
	case res.OK():
		return model.StatusSuccess
	default:
		return model.StatusResponseFailure
	}
}
