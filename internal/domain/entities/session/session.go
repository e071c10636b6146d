// Package session provides the domain entities for USSD conversation state.
// A Session is the durable, per-conversation state machine instance the
// screen execution engine drives one input at a time.
package session

import (
	"strings"
	"time"
)

// Session holds the mutable state of one USSD conversation, keyed by the
// gateway-assigned session id. It is serialized as-is into the session store
// between requests.
type Session struct {
	SessionID           string          `json:"sessionId"`
	Data                map[string]Data `json:"data"`
	CurrentScreen       string          `json:"currentScreen"`
	Displayed           map[string]bool `json:"displayed"`
	VisitedScreens      []string        `json:"visitedScreens"`
	ErrorMessage        string          `json:"errorMessage,omitempty"`
	LastInteractionTime time.Time       `json:"lastInteractionTime"`
	EndSession          bool            `json:"endSession"`
	Language            string          `json:"language"`
	MSISDN              string          `json:"msisdn"`
}

// New creates a fresh session positioned at the given initial screen.
func New(sessionID, initialScreen, language, msisdn string) *Session {
	return &Session{
		SessionID:           sessionID,
		Data:                make(map[string]Data),
		CurrentScreen:       initialScreen,
		Displayed:           make(map[string]bool),
		VisitedScreens:      []string{},
		LastInteractionTime: time.Now().UTC(),
		Language:            language,
		MSISDN:              msisdn,
	}
}

// HasTimedOut reports whether the conversation has been idle longer than
// the configured timeout.
func (s *Session) HasTimedOut(timeout time.Duration) bool {
	return time.Since(s.LastInteractionTime) > timeout
}

// Touch refreshes the last interaction timestamp.
func (s *Session) Touch() {
	s.LastInteractionTime = time.Now().UTC()
}

// Restart resets the state machine to the initial screen after an
// inactivity timeout. Captured data is deliberately preserved; only the
// navigation state is reset.
func (s *Session) Restart(initialScreen string) {
	s.VisitedScreens = s.VisitedScreens[:0]
	s.Displayed = make(map[string]bool)
	s.CurrentScreen = initialScreen
	s.ErrorMessage = ""
	s.Touch()
}

// PushVisited records a screen on the navigation trail.
func (s *Session) PushVisited(screen string) {
	s.VisitedScreens = append(s.VisitedScreens, screen)
}

// PopVisited removes and returns the most recently visited screen.
func (s *Session) PopVisited() (string, bool) {
	if len(s.VisitedScreens) == 0 {
		return "", false
	}
	last := s.VisitedScreens[len(s.VisitedScreens)-1]
	s.VisitedScreens = s.VisitedScreens[:len(s.VisitedScreens)-1]
	return last, true
}

// FirstVisited returns the oldest entry of the trail. "Home" means the
// first screen this conversation ever visited, not a designated home
// screen in the menu definition.
func (s *Session) FirstVisited() (string, bool) {
	if len(s.VisitedScreens) == 0 {
		return "", false
	}
	return s.VisitedScreens[0], true
}

// SetData writes a value into the session data bag.
func (s *Session) SetData(key string, value Data) {
	if s.Data == nil {
		s.Data = make(map[string]Data)
	}
	s.Data[key] = value
}

// GetData reads a value from the session data bag.
func (s *Session) GetData(key string) (Data, bool) {
	v, ok := s.Data[key]
	return v, ok
}

// HistoryTrace renders the navigation trail for debug logging.
func (s *Session) HistoryTrace() string {
	if len(s.VisitedScreens) == 0 {
		return s.CurrentScreen
	}
	return strings.Join(s.VisitedScreens, " > ") + " > " + s.CurrentScreen
}
