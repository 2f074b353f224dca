package domain

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"businessboard/backend/models"
)

type Options struct {
	// DefaultPassword is assigned to every user created through the API.
	DefaultPassword string
	HashPassword    func(string) (string, error)
	Notifier        Notifier
	NotifyTimeout   time.Duration
	Logger          log.FieldLogger
}

// Service implements the board operations on top of a Store.
type Service struct {
	st              Store
	notifier        Notifier
	notifyTimeout   time.Duration
	log             log.FieldLogger
	defaultPassword string
	hash            func(string) (string, error)

	wg sync.WaitGroup
}

func NewService(st Store, opts Options) *Service {
	s := &Service{
		st:              st,
		notifier:        opts.Notifier,
		notifyTimeout:   opts.NotifyTimeout,
		log:             opts.Logger,
		defaultPassword: opts.DefaultPassword,
		hash:            opts.HashPassword,
	}
	if s.notifier == nil {
		s.notifier = NopNotifier{}
	}
	if s.notifyTimeout <= 0 {
		s.notifyTimeout = 10 * time.Second
	}
	if s.log == nil {
		s.log = log.StandardLogger()
	}
	if s.defaultPassword == "" {
		s.defaultPassword = "password"
	}
	if s.hash == nil {
		s.hash = func(pw string) (string, error) { return pw, nil }
	}
	return s
}

// Wait blocks until every pending notification has finished.
func (s *Service) Wait() { s.wg.Wait() }

func (s *Service) Ping(ctx context.Context) error { return s.st.Ping(ctx) }

// ListBoard returns businesses (with relations), states, business types and
// users in one call.
func (s *Service) ListBoard(ctx context.Context) (models.Board, error) {
	return s.st.Board(ctx)
}

func (s *Service) ListBusinessTypes(ctx context.Context) ([]models.BusinessType, error) {
	return s.st.BusinessTypes(ctx)
}

func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.st.Users(ctx)
}

// notifyWelcome sends the welcome message in the background. Failures are
// logged and never reach the caller.
func (s *Service) notifyWelcome(u models.User) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
		defer cancel()
		if err := s.notifier.SendWelcome(ctx, u); err != nil {
			s.log.WithFields(log.Fields{"user_id": u.ID, "email": u.Email}).WithError(err).Warn("welcome mail not sent")
			return
		}
		s.log.WithField("user_id", u.ID).Debug("welcome mail sent")
	}()
}
