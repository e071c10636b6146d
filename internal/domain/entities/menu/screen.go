// Package menu provides the immutable USSD menu definition: a named graph
// of screens plus the services reachable from Function screens. A Menu is
// loaded once and shared read-only across concurrent requests.
package menu

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ScreenType discriminates the screen variants in the menu document.
type ScreenType string

const (
	TypeInitial  ScreenType = "Initial"
	TypeMenu     ScreenType = "Menu"
	TypeInput    ScreenType = "Input"
	TypeFunction ScreenType = "Function"
	TypeRouter   ScreenType = "Router"
	TypeQuit     ScreenType = "Quit"
)

// MenuItem is one selectable option on a Menu screen. Option is the numeric
// selection value as a string; it defines display order independent of map
// insertion order.
type MenuItem struct {
	Option      string `json:"option"`
	DisplayName string `json:"display_name"`
	NextScreen  string `json:"next_screen"`
}

// RouterOption pairs a condition expression with the screen to jump to when
// the expression evaluates true against session data.
type RouterOption struct {
	Expression string `json:"router_option"`
	NextScreen string `json:"next_screen"`
}

// InitialScreen jumps unconditionally to the first real screen.
type InitialScreen struct {
	DefaultNextScreen string
}

// MenuScreen displays numbered options and routes on the user's selection.
type MenuScreen struct {
	Text              string
	DefaultNextScreen string
	Items             map[string]MenuItem
}

// InputScreen prompts for free-form input and captures it into session data.
type InputScreen struct {
	Text              string
	DefaultNextScreen string
	InputIdentifier   string
	InputType         string
}

// FunctionScreen invokes a named service, then jumps to the default screen.
type FunctionScreen struct {
	DefaultNextScreen string
	Function          string
}

// RouterScreen branches to the first option whose condition holds,
// falling back to the default screen.
type RouterScreen struct {
	DefaultNextScreen string
	Options           []RouterOption
}

// QuitScreen displays a final message and terminates the conversation.
type QuitScreen struct {
	Text string
}

// Screen is the closed tagged union of screen variants. Exactly one of the
// variant pointers is non-nil, matching Type. Keeping per-variant payloads
// in distinct structs means a Router can never accidentally carry menu
// items.
type Screen struct {
	Type        ScreenType
	ServiceCode string

	Initial  *InitialScreen
	Menu     *MenuScreen
	Input    *InputScreen
	Function *FunctionScreen
	Router   *RouterScreen
	Quit     *QuitScreen
}

// screenJSON is the flat wire form of a screen in the menu document.
type screenJSON struct {
	Type              ScreenType          `json:"type"`
	Text              string              `json:"text,omitempty"`
	DefaultNextScreen string              `json:"default_next_screen,omitempty"`
	ServiceCode       string              `json:"service_code,omitempty"`
	MenuItems         map[string]MenuItem `json:"menu_items,omitempty"`
	Function          string              `json:"function,omitempty"`
	RouterOptions     []RouterOption      `json:"router_options,omitempty"`
	InputIdentifier   string              `json:"input_identifier,omitempty"`
	InputType         string              `json:"input_type,omitempty"`
}

// UnmarshalJSON decodes the flat document form into the tagged union.
func (s *Screen) UnmarshalJSON(b []byte) error {
	var w screenJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}

	*s = Screen{Type: w.Type, ServiceCode: w.ServiceCode}
	switch w.Type {
	case TypeInitial:
		s.Initial = &InitialScreen{DefaultNextScreen: w.DefaultNextScreen}
	case TypeMenu:
		s.Menu = &MenuScreen{
			Text:              w.Text,
			DefaultNextScreen: w.DefaultNextScreen,
			Items:             w.MenuItems,
		}
	case TypeInput:
		s.Input = &InputScreen{
			Text:              w.Text,
			DefaultNextScreen: w.DefaultNextScreen,
			InputIdentifier:   w.InputIdentifier,
			InputType:         w.InputType,
		}
	case TypeFunction:
		s.Function = &FunctionScreen{
			DefaultNextScreen: w.DefaultNextScreen,
			Function:          w.Function,
		}
	case TypeRouter:
		s.Router = &RouterScreen{
			DefaultNextScreen: w.DefaultNextScreen,
			Options:           w.RouterOptions,
		}
	case TypeQuit:
		s.Quit = &QuitScreen{Text: w.Text}
	default:
		return fmt.Errorf("unknown screen type %q", w.Type)
	}
	return nil
}

// MarshalJSON flattens the tagged union back to the document form.
func (s Screen) MarshalJSON() ([]byte, error) {
	w := screenJSON{Type: s.Type, ServiceCode: s.ServiceCode}
	switch s.Type {
	case TypeInitial:
		if s.Initial != nil {
			w.DefaultNextScreen = s.Initial.DefaultNextScreen
		}
	case TypeMenu:
		if s.Menu != nil {
			w.Text = s.Menu.Text
			w.DefaultNextScreen = s.Menu.DefaultNextScreen
			w.MenuItems = s.Menu.Items
		}
	case TypeInput:
		if s.Input != nil {
			w.Text = s.Input.Text
			w.DefaultNextScreen = s.Input.DefaultNextScreen
			w.InputIdentifier = s.Input.InputIdentifier
			w.InputType = s.Input.InputType
		}
	case TypeFunction:
		if s.Function != nil {
			w.DefaultNextScreen = s.Function.DefaultNextScreen
			w.Function = s.Function.Function
		}
	case TypeRouter:
		if s.Router != nil {
			w.DefaultNextScreen = s.Router.DefaultNextScreen
			w.RouterOptions = s.Router.Options
		}
	case TypeQuit:
		if s.Quit != nil {
			w.Text = s.Quit.Text
		}
	default:
		return nil, fmt.Errorf("unknown screen type %q", s.Type)
	}
	return json.Marshal(w)
}

// Displays reports whether this screen variant renders caller-visible text.
func (s *Screen) Displays() bool {
	switch s.Type {
	case TypeMenu, TypeInput, TypeQuit:
		return true
	default:
		return false
	}
}

// validate checks the per-variant invariants that the engine relies on.
func (s *Screen) validate(name string) error {
	switch s.Type {
	case TypeMenu:
		seen := make(map[int]bool, len(s.Menu.Items))
		for key, item := range s.Menu.Items {
			n, err := strconv.Atoi(item.Option)
			if err != nil {
				return fmt.Errorf("screen %q: menu item %q has non-numeric option %q", name, key, item.Option)
			}
			if seen[n] {
				return fmt.Errorf("screen %q: duplicate menu option %q", name, item.Option)
			}
			seen[n] = true
		}
	case TypeInput:
		if s.Input.InputIdentifier == "" {
			return fmt.Errorf("screen %q: input screen has no input_identifier", name)
		}
	case TypeFunction:
		if s.Function.Function == "" {
			return fmt.Errorf("screen %q: function screen names no service", name)
		}
	}
	return nil
}
