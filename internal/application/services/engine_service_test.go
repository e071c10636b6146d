package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/AtRiskMedia/ussd-go/internal/domain/entities/gateway"
	"github.com/AtRiskMedia/ussd-go/internal/domain/entities/menu"
	"github.com/AtRiskMedia/ussd-go/internal/domain/entities/session"
	"github.com/AtRiskMedia/ussd-go/internal/infrastructure/expr"
	"github.com/AtRiskMedia/ussd-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/ussd-go/internal/infrastructure/persistence/sessions"
)

const testMenuDoc = `{
	"menus": {
		"welcome": {"type": "Initial", "default_next_screen": "main_menu"},
		"main_menu": {
			"type": "Menu",
			"text": "Welcome {{name}}",
			"default_next_screen": "main_menu",
			"menu_items": {
				"balance": {"option": "2", "display_name": "Check Balance", "next_screen": "balance_fn"},
				"register": {"option": "1", "display_name": "Register", "next_screen": "name_input"}
			}
		},
		"name_input": {
			"type": "Input",
			"text": "Enter your name",
			"default_next_screen": "goodbye",
			"input_identifier": "name"
		},
		"goodbye": {"type": "Quit", "text": "Thanks {{name}}"},
		"balance_fn": {"type": "Function", "default_next_screen": "balance_router", "function": "get_balance"},
		"balance_router": {
			"type": "Router",
			"default_next_screen": "balance_quit",
			"router_options": [
				{"router_option": "{{balance.balance > '100'}}", "next_screen": "rich_quit"}
			]
		},
		"balance_quit": {"type": "Quit", "text": "Balance: {{balance}}"},
		"rich_quit": {"type": "Quit", "text": "Big balance: {{balance}}"}
	},
	"services": {
		"get_balance": {"function_name": "get_balance", "data_key": "balance"}
	}
}`

func quietLogger(t *testing.T) *logging.ChanneledLogger {
	t.Helper()
	cfg := logging.DefaultLoggerConfig()
	cfg.OutputToFile = false
	cfg.OutputToConsole = false
	cfg.DefaultLevel = slog.LevelError + 4
	logger, err := logging.NewChanneledLogger(cfg)
	if err != nil {
		t.Fatalf("failed to build logger: %v", err)
	}
	return logger
}

func newTestEngine(t *testing.T) (*EngineService, *sessions.MemoryStore) {
	t.Helper()

	logger := quietLogger(t)

	m, err := menu.LoadFromJSON([]byte(testMenuDoc))
	if err != nil {
		t.Fatalf("failed to load test menu: %v", err)
	}

	menuSvc := NewMenuService(nil, "", logger)
	if err := menuSvc.Publish(m); err != nil {
		t.Fatalf("failed to publish test menu: %v", err)
	}

	store := sessions.NewMemoryStore()
	sessionSvc := NewSessionService(store, 2*time.Minute, logger)

	registry := NewFunctionRegistry(logger)
	registry.Register("get_balance", func(s *session.Session, url string) session.Data {
		return session.NewDict(map[string]session.Data{
			"balance": session.NewStr("150"),
		})
	})

	evaluator := expr.NewEvaluator(logger.Expr())
	engine := NewEngineService(menuSvc, sessionSvc, registry, evaluator, logger, 32)
	return engine, store
}

func dial(t *testing.T, e *EngineService, sessionID, input string) *gateway.Response {
	t.Helper()
	return e.ProcessRequest(context.Background(), &gateway.Request{
		SessionID: sessionID,
		MSISDN:    "233200000000",
		Input:     input,
		Language:  "en",
	})
}

func TestFreshDialRendersMainMenuInOptionOrder(t *testing.T) {
	e, _ := newTestEngine(t)

	resp := dial(t, e, "s1", "")

	// {{name}} has no value yet and stays verbatim.
	want := "Welcome {{name}}\n1. Register\n2. Check Balance"
	if resp.Message != want {
		t.Errorf("message = %q, want %q", resp.Message, want)
	}
	if resp.EndSession {
		t.Error("fresh dial must not end the session")
	}
}

func TestFreshDialIsDeterministicAcrossSessions(t *testing.T) {
	e, _ := newTestEngine(t)

	first := dial(t, e, "s1", "")
	second := dial(t, e, "s2", "")

	if first.Message != second.Message {
		t.Errorf("fresh dials diverged: %q vs %q", first.Message, second.Message)
	}
}

func TestMenuSelectionNavigatesByOptionValue(t *testing.T) {
	e, _ := newTestEngine(t)

	dial(t, e, "s1", "")
	resp := dial(t, e, "s1", "1")

	if resp.Message != "Enter your name" {
		t.Errorf("message = %q, want input prompt", resp.Message)
	}
}

func TestInputCaptureFlowsIntoTemplates(t *testing.T) {
	e, store := newTestEngine(t)

	dial(t, e, "s1", "")
	dial(t, e, "s1", "1")
	resp := dial(t, e, "s1", "John")

	if resp.Message != "Thanks John" {
		t.Errorf("message = %q, want %q", resp.Message, "Thanks John")
	}
	if !resp.EndSession {
		t.Error("quit screen must end the session")
	}

	stored, err := store.Retrieve(context.Background(), "s1")
	if err != nil || stored == nil {
		t.Fatalf("failed to retrieve session: %v", err)
	}
	name, ok := stored.GetData("name")
	if !ok || name.Str != "John" {
		t.Errorf("data[name] = %+v, want Str John", name)
	}
}

func TestFunctionAndRouterResolveWithinOneExchange(t *testing.T) {
	e, _ := newTestEngine(t)

	dial(t, e, "s1", "")
	resp := dial(t, e, "s1", "2")

	// get_balance returns {"balance": "150"}; the router sees 150 > 100
	// lexically and branches; the quit template uses the self-referential
	// dict lookup.
	if resp.Message != "Big balance: 150" {
		t.Errorf("message = %q, want %q", resp.Message, "Big balance: 150")
	}
	if !resp.EndSession {
		t.Error("quit screen must end the session")
	}
}

func TestUnregisteredFunctionWritesErrorValueAndContinues(t *testing.T) {
	e, store := newTestEngine(t)

	logger := quietLogger(t)
	emptyRegistry := NewFunctionRegistry(logger)
	e.registry = emptyRegistry

	dial(t, e, "s1", "")
	resp := dial(t, e, "s1", "2")

	// The error value does not satisfy the router condition, so the flow
	// falls through to the default quit screen.
	if !strings.HasPrefix(resp.Message, "Balance:") {
		t.Errorf("message = %q, want default balance screen", resp.Message)
	}

	stored, _ := store.Retrieve(context.Background(), "s1")
	val, ok := stored.GetData("balance")
	if !ok || val.Kind != session.KindDict {
		t.Fatalf("data[balance] = %+v, want error dict", val)
	}
	if val.Dict["error"].Str != "Function not found" {
		t.Errorf("data[balance].error = %q, want %q", val.Dict["error"].Str, "Function not found")
	}
}

func TestInvalidMenuOptionReprompts(t *testing.T) {
	e, _ := newTestEngine(t)

	dial(t, e, "s1", "")
	resp := dial(t, e, "s1", "9")

	if !strings.HasPrefix(resp.Message, MsgInvalidMenuOption+"\n") {
		t.Errorf("message = %q, want error-prefixed re-prompt", resp.Message)
	}
	if !strings.Contains(resp.Message, "1. Register") {
		t.Errorf("message = %q, want the menu re-rendered", resp.Message)
	}

	// The error message is transient: the next render is clean.
	resp = dial(t, e, "s1", "abc")
	if strings.HasPrefix(resp.Message, MsgInvalidMenuOption) {
		t.Errorf("message = %q, error message not cleared", resp.Message)
	}
}

func TestBackNavigationReturnsToPreviousScreen(t *testing.T) {
	e, _ := newTestEngine(t)

	dial(t, e, "s1", "")
	dial(t, e, "s1", "1")
	resp := dial(t, e, "s1", "0")

	if !strings.Contains(resp.Message, "1. Register") {
		t.Errorf("message = %q, want main menu after back", resp.Message)
	}
}

func TestHomeNavigationReturnsToOldestVisited(t *testing.T) {
	e, store := newTestEngine(t)

	dial(t, e, "s1", "")
	dial(t, e, "s1", "1")
	resp := dial(t, e, "s1", "00")

	if !strings.Contains(resp.Message, "1. Register") {
		t.Errorf("message = %q, want main menu after home", resp.Message)
	}

	stored, _ := store.Retrieve(context.Background(), "s1")
	if stored.CurrentScreen != "main_menu" {
		t.Errorf("current screen = %q, want main_menu", stored.CurrentScreen)
	}
}

func TestNavigationStackSemantics(t *testing.T) {
	s := session.New("s1", "D", "en", "233200000000")
	s.VisitedScreens = []string{"A", "B", "C"}

	prev, ok := s.PopVisited()
	if !ok || prev != "C" {
		t.Fatalf("PopVisited = %q, want C", prev)
	}
	if len(s.VisitedScreens) != 2 || s.VisitedScreens[0] != "A" || s.VisitedScreens[1] != "B" {
		t.Errorf("trail = %v, want [A B]", s.VisitedScreens)
	}

	first, ok := s.FirstVisited()
	if !ok || first != "A" {
		t.Errorf("FirstVisited = %q, want A", first)
	}
}

func TestTimeoutRestartPreservesData(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()

	dial(t, e, "s1", "")
	dial(t, e, "s1", "1")

	stored, _ := store.Retrieve(ctx, "s1")
	stored.SetData("name", session.NewStr("John"))
	stored.LastInteractionTime = time.Now().UTC().Add(-10 * time.Minute)
	if err := store.Store(ctx, stored); err != nil {
		t.Fatalf("failed to store stale session: %v", err)
	}

	resp := dial(t, e, "s1", "ignored")

	// Restarted at the initial screen with captured data intact, so the
	// greeting resolves the stored name.
	if !strings.HasPrefix(resp.Message, "Welcome John") {
		t.Errorf("message = %q, want restarted greeting with preserved data", resp.Message)
	}

	restarted, _ := store.Retrieve(ctx, "s1")
	if len(restarted.VisitedScreens) != 0 {
		t.Errorf("trail = %v, want empty after restart", restarted.VisitedScreens)
	}
}

func TestQuitFinality(t *testing.T) {
	e, _ := newTestEngine(t)

	dial(t, e, "s1", "")
	dial(t, e, "s1", "1")
	resp := dial(t, e, "s1", "John")
	if !resp.EndSession {
		t.Fatal("quit screen must end the session")
	}

	resp = dial(t, e, "s1", "1")
	if resp.Message != MsgSessionEnded {
		t.Errorf("message = %q, want %q", resp.Message, MsgSessionEnded)
	}
	if !resp.EndSession {
		t.Error("ended session must stay ended")
	}
}

func TestUnknownScreenFailsWithoutPersisting(t *testing.T) {
	e, store := newTestEngine(t)
	ctx := context.Background()

	s := session.New("s1", "nonexistent", "en", "233200000000")
	if err := store.Store(ctx, s); err != nil {
		t.Fatalf("failed to seed session: %v", err)
	}

	resp := dial(t, e, "s1", "")
	if resp.Message != MsgGenericFailure {
		t.Errorf("message = %q, want generic failure", resp.Message)
	}

	stored, _ := store.Retrieve(ctx, "s1")
	if stored.CurrentScreen != "nonexistent" {
		t.Errorf("current screen = %q, session must be left unchanged", stored.CurrentScreen)
	}
}

const codedMenuDoc = `{
	"menus": {
		"welcome": {"type": "Initial", "default_next_screen": "balance_fn", "service_code": "*123#"},
		"balance_fn": {"type": "Function", "default_next_screen": "balance_quit", "function": "get_balance", "service_code": "*123#"},
		"balance_quit": {"type": "Quit", "text": "Balance: {{balance}}", "service_code": "*123#"}
	},
	"services": {
		"get_balance": {"function_name": "get_balance", "data_key": "balance", "service_code": "%s"}
	}
}`

func newCodedEngine(t *testing.T, serviceTag string) *EngineService {
	t.Helper()

	logger := quietLogger(t)

	m, err := menu.LoadFromJSON([]byte(fmt.Sprintf(codedMenuDoc, serviceTag)))
	if err != nil {
		t.Fatalf("failed to load coded menu: %v", err)
	}

	menuSvc := NewMenuService(nil, "", logger)
	if err := menuSvc.Publish(m); err != nil {
		t.Fatalf("failed to publish coded menu: %v", err)
	}

	sessionSvc := NewSessionService(sessions.NewMemoryStore(), 2*time.Minute, logger)

	registry := NewFunctionRegistry(logger)
	registry.Register("get_balance", func(s *session.Session, url string) session.Data {
		return session.NewDict(map[string]session.Data{
			"balance": session.NewStr("150"),
		})
	})

	evaluator := expr.NewEvaluator(logger.Expr())
	return NewEngineService(menuSvc, sessionSvc, registry, evaluator, logger, 32)
}

func dialCoded(t *testing.T, e *EngineService, sessionID string) *gateway.Response {
	t.Helper()
	return e.ProcessRequest(context.Background(), &gateway.Request{
		SessionID:   sessionID,
		MSISDN:      "233200000000",
		Input:       "",
		Language:    "en",
		ServiceCode: "*123#",
	})
}

func TestFunctionResolvesServiceWithinNarrowedMenu(t *testing.T) {
	e := newCodedEngine(t, "*123#")

	resp := dialCoded(t, e, "s1")

	if resp.Message != "Balance: 150" {
		t.Errorf("message = %q, want %q", resp.Message, "Balance: 150")
	}
}

func TestFunctionCannotReachServiceOfAnotherCode(t *testing.T) {
	e := newCodedEngine(t, "*456#")

	// The dialed code narrows the menu; get_balance carries another code,
	// so the handler is out of reach and the placeholder stays verbatim.
	resp := dialCoded(t, e, "s1")

	if resp.Message != "Balance: {{balance}}" {
		t.Errorf("message = %q, want unresolved placeholder", resp.Message)
	}
}
