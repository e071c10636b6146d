// Package menus persists menu screens and services as named JSON rows so
// the admin API can edit them individually and the engine can rebuild the
// full menu definition on reload.
package menus

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/AtRiskMedia/ussd-go/internal/domain/entities/menu"
)

// Repository provides CRUD over the screens and services tables.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a menu repository over the given connection.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// UpsertScreen inserts or replaces a screen row by name.
func (r *Repository) UpsertScreen(ctx context.Context, name string, screen menu.Screen) error {
	payload, err := json.Marshal(screen)
	if err != nil {
		return fmt.Errorf("failed to encode screen %q: %w", name, err)
	}

	now := time.Now().UTC()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO screens (id, name, payload, created, changed)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, changed = excluded.changed`,
		ulid.Make().String(), name, string(payload), now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert screen %q: %w", name, err)
	}
	return nil
}

// GetScreen loads one screen by name. A miss returns sql.ErrNoRows.
func (r *Repository) GetScreen(ctx context.Context, name string) (menu.Screen, error) {
	var payload string
	err := r.db.QueryRowContext(ctx, `SELECT payload FROM screens WHERE name = ?`, name).Scan(&payload)
	if err != nil {
		return menu.Screen{}, err
	}

	var s menu.Screen
	if err := json.Unmarshal([]byte(payload), &s); err != nil {
		return menu.Screen{}, fmt.Errorf("failed to decode screen %q: %w", name, err)
	}
	return s, nil
}

// ListScreens loads all screen rows keyed by name.
func (r *Repository) ListScreens(ctx context.Context) (map[string]menu.Screen, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name, payload FROM screens ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list screens: %w", err)
	}
	defer rows.Close()

	screens := make(map[string]menu.Screen)
	for rows.Next() {
		var name, payload string
		if err := rows.Scan(&name, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan screen row: %w", err)
		}
		var s menu.Screen
		if err := json.Unmarshal([]byte(payload), &s); err != nil {
			return nil, fmt.Errorf("failed to decode screen %q: %w", name, err)
		}
		screens[name] = s
	}
	return screens, rows.Err()
}

// DeleteScreen removes a screen row by name.
func (r *Repository) DeleteScreen(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM screens WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete screen %q: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpsertService inserts or replaces a service row by name.
func (r *Repository) UpsertService(ctx context.Context, name string, svc menu.Service) error {
	payload, err := json.Marshal(svc)
	if err != nil {
		return fmt.Errorf("failed to encode service %q: %w", name, err)
	}

	now := time.Now().UTC()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO services (id, name, payload, created, changed)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, changed = excluded.changed`,
		ulid.Make().String(), name, string(payload), now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert service %q: %w", name, err)
	}
	return nil
}

// GetService loads one service by name. A miss returns sql.ErrNoRows.
func (r *Repository) GetService(ctx context.Context, name string) (menu.Service, error) {
	var payload string
	err := r.db.QueryRowContext(ctx, `SELECT payload FROM services WHERE name = ?`, name).Scan(&payload)
	if err != nil {
		return menu.Service{}, err
	}

	var s menu.Service
	if err := json.Unmarshal([]byte(payload), &s); err != nil {
		return menu.Service{}, fmt.Errorf("failed to decode service %q: %w", name, err)
	}
	return s, nil
}

// ListServices loads all service rows keyed by name.
func (r *Repository) ListServices(ctx context.Context) (map[string]menu.Service, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name, payload FROM services ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	defer rows.Close()

	services := make(map[string]menu.Service)
	for rows.Next() {
		var name, payload string
		if err := rows.Scan(&name, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan service row: %w", err)
		}
		var s menu.Service
		if err := json.Unmarshal([]byte(payload), &s); err != nil {
			return nil, fmt.Errorf("failed to decode service %q: %w", name, err)
		}
		services[name] = s
	}
	return services, rows.Err()
}

// DeleteService removes a service row by name.
func (r *Repository) DeleteService(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM services WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete service %q: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// BuildMenu assembles a validated menu definition from all stored rows.
func (r *Repository) BuildMenu(ctx context.Context) (*menu.Menu, error) {
	screens, err := r.ListScreens(ctx)
	if err != nil {
		return nil, err
	}
	services, err := r.ListServices(ctx)
	if err != nil {
		return nil, err
	}

	m := &menu.Menu{Screens: screens, Services: services}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// ImportMenu replaces all stored rows with the given menu definition in a
// single transaction.
func (r *Repository) ImportMenu(ctx context.Context, m *menu.Menu) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin import transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM screens`); err != nil {
		return fmt.Errorf("failed to clear screens: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM services`); err != nil {
		return fmt.Errorf("failed to clear services: %w", err)
	}

	now := time.Now().UTC()
	for name, screen := range m.Screens {
		payload, err := json.Marshal(screen)
		if err != nil {
			return fmt.Errorf("failed to encode screen %q: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO screens (id, name, payload, created, changed) VALUES (?, ?, ?, ?, ?)`,
			ulid.Make().String(), name, string(payload), now, now); err != nil {
			return fmt.Errorf("failed to insert screen %q: %w", name, err)
		}
	}
	for name, svc := range m.Services {
		payload, err := json.Marshal(svc)
		if err != nil {
			return fmt.Errorf("failed to encode service %q: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO services (id, name, payload, created, changed) VALUES (?, ?, ?, ?, ?)`,
			ulid.Make().String(), name, string(payload), now, now); err != nil {
			return fmt.Errorf("failed to insert service %q: %w", name, err)
		}
	}

	return tx.Commit()
}
