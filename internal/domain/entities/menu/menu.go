package menu

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrNoInitialScreen is returned when a menu document defines no screen of
// type Initial. Loading must fail rather than let the engine start.
var ErrNoInitialScreen = errors.New("menu has no initial screen")

// ErrMultipleInitialScreens is returned when more than one Initial screen
// exists; the entry point would be nondeterministic.
var ErrMultipleInitialScreens = errors.New("menu has more than one initial screen")

// Menu is the immutable menu definition: named screens plus named services.
// It must never be mutated during request processing so it can be shared
// across concurrent sessions without locking.
type Menu struct {
	Screens  map[string]Screen  `json:"menus"`
	Services map[string]Service `json:"services"`
}

// New returns an empty menu.
func New() *Menu {
	return &Menu{
		Screens:  make(map[string]Screen),
		Services: make(map[string]Service),
	}
}

// LoadFromJSON parses a menu document and validates its invariants.
func LoadFromJSON(data []byte) (*Menu, error) {
	var m Menu
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse menu document: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadFromFile reads and parses a menu document from disk.
func LoadFromFile(path string) (*Menu, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read menu file %s: %w", path, err)
	}
	return LoadFromJSON(data)
}

// SaveToFile writes the menu document back to disk.
func (m *Menu) SaveToFile(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode menu document: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write menu file %s: %w", path, err)
	}
	return nil
}

// Validate enforces the load-time invariants: exactly one Initial screen,
// well-formed variant payloads, and every Function screen naming a service
// that exists. Service resolution is checked here so a broken reference
// fails at load instead of mid-conversation.
func (m *Menu) Validate() error {
	initials := 0
	for name, screen := range m.Screens {
		if screen.Type == TypeInitial {
			initials++
		}
		if err := screen.validate(name); err != nil {
			return err
		}
		if screen.Type == TypeFunction {
			if _, ok := m.Services[screen.Function.Function]; !ok {
				return fmt.Errorf("screen %q references unknown service %q", name, screen.Function.Function)
			}
		}
	}
	if initials == 0 {
		return ErrNoInitialScreen
	}
	if initials > 1 {
		return ErrMultipleInitialScreens
	}
	return nil
}

// InitialScreen returns the name of the single Initial screen.
func (m *Menu) InitialScreen() (string, error) {
	for name, screen := range m.Screens {
		if screen.Type == TypeInitial {
			return name, nil
		}
	}
	return "", ErrNoInitialScreen
}

// Get looks up a screen by name.
func (m *Menu) Get(name string) (Screen, bool) {
	s, ok := m.Screens[name]
	return s, ok
}

// GetService looks up a service by name.
func (m *Menu) GetService(name string) (Service, bool) {
	s, ok := m.Services[name]
	return s, ok
}

// BelongingTo filters screens and services down to those tagged with the
// given service code. Untagged entries are excluded, matching the dispatch
// behavior for gateways that multiplex several short codes.
func (m *Menu) BelongingTo(serviceCode string) *Menu {
	out := New()
	for name, screen := range m.Screens {
		if screen.ServiceCode == serviceCode {
			out.Screens[name] = screen
		}
	}
	for name, svc := range m.Services {
		if svc.ServiceCode == serviceCode {
			out.Services[name] = svc
		}
	}
	return out
}
