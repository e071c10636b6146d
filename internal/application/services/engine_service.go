package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/AtRiskMedia/ussd-go/internal/domain/entities/gateway"
	"github.com/AtRiskMedia/ussd-go/internal/domain/entities/menu"
	"github.com/AtRiskMedia/ussd-go/internal/domain/entities/session"
	"github.com/AtRiskMedia/ussd-go/internal/infrastructure/expr"
	"github.com/AtRiskMedia/ussd-go/internal/infrastructure/observability/logging"
)

// User-facing messages. Menu text itself comes from the definition; these
// cover the paths where no screen can speak for itself.
const (
	MsgGenericFailure    = "Something went wrong, please try again later"
	MsgSessionEnded      = "Session has ended. Please dial again."
	MsgInvalidMenuOption = "Invalid menu option"

	inputBack = "0"
	inputHome = "00"
)

// EngineService drives the screen state machine: for one inbound input it
// resolves the chain of non-displaying screens, pauses at the first screen
// that needs a reply, and persists the session. Processing within one
// session is strictly sequential; concurrency exists only across sessions.
type EngineService struct {
	menus     *MenuService
	sessions  *SessionService
	registry  *FunctionRegistry
	evaluator *expr.Evaluator
	logger    *logging.ChanneledLogger
	maxHops   int
}

// NewEngineService wires the engine's collaborators. maxHops bounds the
// number of screen transitions resolved for a single input, guarding
// against cyclic chains of non-displaying screens in a bad menu.
func NewEngineService(
	menus *MenuService,
	sessions *SessionService,
	registry *FunctionRegistry,
	evaluator *expr.Evaluator,
	logger *logging.ChanneledLogger,
	maxHops int,
) *EngineService {
	if maxHops <= 0 {
		maxHops = 32
	}
	return &EngineService{
		menus:     menus,
		sessions:  sessions,
		registry:  registry,
		evaluator: evaluator,
		logger:    logger,
		maxHops:   maxHops,
	}
}

// ProcessRequest handles one gateway exchange and returns the display text
// for the user. It never returns an error: every failure path degrades to
// a generic failure message so the dialog always gets a reply.
func (e *EngineService) ProcessRequest(ctx context.Context, req *gateway.Request) *gateway.Response {
	start := time.Now()

	resp := &gateway.Response{
		SessionID: req.SessionID,
		MSISDN:    req.MSISDN,
		Message:   MsgGenericFailure,
	}

	m := e.menuFor(req.ServiceCode)
	if m == nil {
		e.logger.Engine().Error("No active menu definition")
		return resp
	}

	initialScreen, err := m.InitialScreen()
	if err != nil {
		e.logger.Engine().Error("Menu has no initial screen", "error", err)
		return resp
	}

	sess, err := e.sessions.GetOrCreate(ctx, req, initialScreen)
	if err != nil {
		e.logger.LogError(logging.ChannelStore, "getOrCreateSession", err)
		return resp
	}

	if sess.EndSession {
		resp.Message = MsgSessionEnded
		resp.EndSession = true
		return resp
	}

	e.logger.Engine().Debug("Screen history",
		"sessionId", logging.SanitizeSessionID(sess.SessionID),
		"trace", sess.HistoryTrace())

	input := strings.TrimSpace(req.Input)

	for hops := 0; hops < e.maxHops; hops++ {
		name := sess.CurrentScreen
		screen, ok := m.Get(name)
		if !ok {
			// Deliberately not persisted: keeping the pre-request state
			// avoids wedging the session on a broken screen name.
			e.logger.Engine().Error("Current screen not found in menu",
				"sessionId", logging.SanitizeSessionID(sess.SessionID),
				"screen", name)
			return resp
		}

		if !screen.Displays() {
			e.executeScreen(m, sess, &screen, input)
			e.logger.LogScreenTransition(sess.SessionID, name, sess.CurrentScreen)
			continue
		}

		if !sess.Displayed[name] {
			resp.Message = e.render(&screen, sess)
			sess.Displayed[name] = true

			if screen.Type == menu.TypeQuit {
				sess.EndSession = true
				resp.EndSession = true
			}

			if err := e.sessions.Update(ctx, sess); err != nil {
				e.logger.LogError(logging.ChannelStore, "updateSession", err)
				resp.Message = MsgGenericFailure
				resp.EndSession = false
			}

			e.logger.LogExchange(req.SessionID, req.MSISDN, input, name, resp.EndSession, time.Since(start))
			return resp
		}

		// Already shown this conversation step: the input belongs to it.
		e.executeScreen(m, sess, &screen, input)
		delete(sess.Displayed, name)
		e.logger.LogScreenTransition(sess.SessionID, name, sess.CurrentScreen)
	}

	e.logger.Engine().Error("Screen hop limit exceeded, menu likely cyclic",
		"sessionId", logging.SanitizeSessionID(sess.SessionID),
		"screen", sess.CurrentScreen,
		"maxHops", e.maxHops)
	return resp
}

// menuFor picks the active menu, narrowed to the dialed service code when
// the code actually maps to a usable sub-menu.
func (e *EngineService) menuFor(serviceCode string) *menu.Menu {
	m := e.menus.Active()
	if m == nil || serviceCode == "" {
		return m
	}

	sub := m.BelongingTo(serviceCode)
	if len(sub.Screens) == 0 {
		return m
	}
	if _, err := sub.InitialScreen(); err != nil {
		return m
	}
	return sub
}

// executeScreen applies one input to a non-displaying screen or an
// already-displayed interactive screen. Back and home navigation only
// applies to interactive screens; the rest transition unconditionally.
// Services resolve against m, the menu pinned for this request, so a
// concurrent reload or the service-code narrowing cannot change what a
// Function screen reaches mid-exchange.
func (e *EngineService) executeScreen(m *menu.Menu, sess *session.Session, screen *menu.Screen, input string) {
	switch screen.Type {
	case menu.TypeInitial:
		sess.CurrentScreen = screen.Initial.DefaultNextScreen

	case menu.TypeMenu:
		if e.navigate(sess, input) {
			return
		}
		sess.PushVisited(sess.CurrentScreen)
		e.executeMenu(sess, screen.Menu, input)

	case menu.TypeInput:
		if e.navigate(sess, input) {
			return
		}
		sess.PushVisited(sess.CurrentScreen)
		if screen.Input.InputIdentifier != "" {
			sess.SetData(screen.Input.InputIdentifier, session.NewStr(input))
		}
		sess.CurrentScreen = screen.Input.DefaultNextScreen

	case menu.TypeFunction:
		if svc, ok := m.GetService(screen.Function.Function); ok {
			e.registry.Invoke(svc, sess)
		} else {
			// Reachable when a narrowed sub-menu's screen names a service
			// tagged with another code; a fallback value keeps the flow
			// alive.
			e.logger.Engine().Error("Function screen references unknown service",
				"service", screen.Function.Function)
			sess.SetData(screen.Function.Function, session.ErrorValue("Function not found"))
		}
		sess.CurrentScreen = screen.Function.DefaultNextScreen

	case menu.TypeRouter:
		for _, option := range screen.Router.Options {
			if e.evaluator.EvaluateCondition(sess, option.Expression) {
				sess.CurrentScreen = option.NextScreen
				return
			}
		}
		sess.CurrentScreen = screen.Router.DefaultNextScreen
	}
}

// navigate handles the reserved back and home inputs. It reports true when
// the input was consumed as navigation, in which case no variant logic
// runs this pass.
func (e *EngineService) navigate(sess *session.Session, input string) bool {
	switch input {
	case inputBack:
		if prev, ok := sess.PopVisited(); ok {
			sess.CurrentScreen = prev
		}
		return true
	case inputHome:
		if first, ok := sess.FirstVisited(); ok {
			sess.CurrentScreen = first
		}
		return true
	}
	return false
}

// executeMenu applies a numeric selection to a menu screen. An in-range
// lookup miss re-prompts with an error message; non-numeric input falls
// through to the default screen.
func (e *EngineService) executeMenu(sess *session.Session, ms *menu.MenuScreen, input string) {
	n, err := strconv.Atoi(input)
	if err != nil || n <= 0 {
		e.logger.Engine().Warn("Non-numeric menu input",
			"sessionId", logging.SanitizeSessionID(sess.SessionID),
			"input", input)
		sess.CurrentScreen = ms.DefaultNextScreen
		return
	}

	want := strconv.Itoa(n)
	for _, item := range ms.Items {
		if item.Option == want {
			sess.CurrentScreen = item.NextScreen
			return
		}
	}

	e.logger.Engine().Warn("Invalid menu option",
		"sessionId", logging.SanitizeSessionID(sess.SessionID),
		"input", input)
	sess.ErrorMessage = MsgInvalidMenuOption
}

// render produces the caller-visible text for a displaying screen,
// prepending and clearing any pending error message.
func (e *EngineService) render(screen *menu.Screen, sess *session.Session) string {
	var msg string

	switch screen.Type {
	case menu.TypeMenu:
		msg = e.renderMenu(screen.Menu, sess)
	case menu.TypeInput:
		msg = e.evaluator.Interpolate(screen.Input.Text, sess)
	case menu.TypeQuit:
		msg = e.evaluator.Interpolate(screen.Quit.Text, sess)
	}

	if sess.ErrorMessage != "" {
		msg = sess.ErrorMessage + "\n" + msg
		sess.ErrorMessage = ""
	}
	return msg
}

// renderMenu renders the menu text plus its items sorted by the numeric
// value of their option field, re-numbered 1..n in display order.
func (e *EngineService) renderMenu(ms *menu.MenuScreen, sess *session.Session) string {
	var b strings.Builder
	b.WriteString(e.evaluator.Interpolate(ms.Text, sess))

	if len(ms.Items) == 0 {
		b.WriteString("\nNo menu items found")
		return b.String()
	}

	items := make([]menu.MenuItem, 0, len(ms.Items))
	for _, item := range ms.Items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		a, _ := strconv.Atoi(items[i].Option)
		c, _ := strconv.Atoi(items[j].Option)
		return a < c
	})

	for i, item := range items {
		b.WriteString(fmt.Sprintf("\n%d. %s", i+1, item.DisplayName))
	}
	return b.String()
}
