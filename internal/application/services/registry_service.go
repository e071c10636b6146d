// Package services contains the application-layer orchestration: menu
// lifecycle, session lifecycle, service invocation, and the screen
// execution engine that ties them together per request.
package services

import (
	"sync"
	"time"

	"github.com/AtRiskMedia/ussd-go/internal/domain/entities/menu"
	"github.com/AtRiskMedia/ussd-go/internal/domain/entities/session"
	"github.com/AtRiskMedia/ussd-go/internal/infrastructure/observability/logging"
)

// HandlerFunc is a registered business function invoked from a Function
// screen. It receives the session and the service's configured URL (empty
// when none) and returns the value stored into session data.
type HandlerFunc func(s *session.Session, functionURL string) session.Data

// FunctionRegistry maps service function names to handlers. Registration
// happens at startup before traffic; resolution is read-mostly and safe for
// concurrent use.
type FunctionRegistry struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
	logger   *logging.ChanneledLogger
}

// NewFunctionRegistry creates an empty registry.
func NewFunctionRegistry(logger *logging.ChanneledLogger) *FunctionRegistry {
	return &FunctionRegistry{
		handlers: make(map[string]HandlerFunc),
		logger:   logger,
	}
}

// Register binds a function name to a handler, replacing any previous
// binding.
func (r *FunctionRegistry) Register(name string, fn HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = fn
	r.logger.System().Info("Registered service handler", "function", name)
}

// Resolve looks up a handler by function name.
func (r *FunctionRegistry) Resolve(name string) (HandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.handlers[name]
	return fn, ok
}

// Names returns the registered function names.
func (r *FunctionRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	return names
}

// Invoke resolves and calls the service's handler, writing the result into
// session data under the service's data key. A missing handler writes a
// structured error value instead so the menu flow can render a fallback;
// it never fails the request.
func (r *FunctionRegistry) Invoke(svc menu.Service, s *session.Session) {
	start := time.Now()

	fn, ok := r.Resolve(svc.FunctionName)
	if !ok {
		r.logger.Engine().Warn("Service handler not registered",
			"function", svc.FunctionName,
			"sessionId", logging.SanitizeSessionID(s.SessionID))
		s.SetData(svc.DataKey, session.ErrorValue("Function not found"))
		r.logger.LogServiceInvocation(s.SessionID, svc.DataKey, svc.FunctionName, false, time.Since(start))
		return
	}

	result := fn(s, svc.FunctionURL)
	s.SetData(svc.DataKey, result)
	r.logger.LogServiceInvocation(s.SessionID, svc.DataKey, svc.FunctionName, true, time.Since(start))
}
