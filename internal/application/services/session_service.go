package services

import (
	"context"
	"fmt"
	"time"

	"github.com/AtRiskMedia/ussd-go/internal/domain/entities/gateway"
	"github.com/AtRiskMedia/ussd-go/internal/domain/entities/session"
	"github.com/AtRiskMedia/ussd-go/internal/domain/repositories"
	"github.com/AtRiskMedia/ussd-go/internal/infrastructure/observability/logging"
)

// SessionService manages the session lifecycle around the store: creation
// on first contact, inactivity restarts, and persistence after each
// exchange.
type SessionService struct {
	store   repositories.SessionStore
	timeout time.Duration
	logger  *logging.ChanneledLogger
}

// NewSessionService creates a session service over the given store.
func NewSessionService(store repositories.SessionStore, timeout time.Duration, logger *logging.ChanneledLogger) *SessionService {
	return &SessionService{
		store:   store,
		timeout: timeout,
		logger:  logger,
	}
}

// GetOrCreate loads the session for the request, creating and persisting a
// fresh one on a store miss. A session idle past the timeout is restarted
// at the initial screen with its captured data preserved. Store failures
// are fatal for the request.
func (ss *SessionService) GetOrCreate(ctx context.Context, req *gateway.Request, initialScreen string) (*session.Session, error) {
	s, err := ss.store.Retrieve(ctx, req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve session: %w", err)
	}

	if s == nil {
		s = session.New(req.SessionID, initialScreen, req.Language, req.MSISDN)
		if err := ss.store.Store(ctx, s); err != nil {
			return nil, fmt.Errorf("failed to persist new session: %w", err)
		}
		ss.logger.Session().Info("Session created",
			"sessionId", logging.SanitizeSessionID(s.SessionID),
			"msisdn", logging.SanitizeMSISDN(s.MSISDN),
			"initialScreen", initialScreen)
		return s, nil
	}

	if s.HasTimedOut(ss.timeout) {
		ss.logger.Session().Info("Session timed out, restarting",
			"sessionId", logging.SanitizeSessionID(s.SessionID),
			"idle", time.Since(s.LastInteractionTime).String())
		s.Restart(initialScreen)
		return s, nil
	}

	s.Touch()
	return s, nil
}

// Update refreshes the interaction timestamp and persists the session.
// Called once per displayed screen, not once per hop.
func (ss *SessionService) Update(ctx context.Context, s *session.Session) error {
	s.Touch()
	if err := ss.store.Store(ctx, s); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}

// Timeout reports the configured inactivity timeout.
func (ss *SessionService) Timeout() time.Duration {
	return ss.timeout
}
