package profile

import (
	"context"
	"log/slog"
)

// Manager ties the store to a lamp: it snapshots the live state into named
// modes and applies them back.
type Manager struct {
	store  Store
	lamp   Lamp
	logger *slog.Logger
}

func NewManager(store Store, l Lamp, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{store: store, lamp: l, logger: logger}
}

// List returns every stored mode that decodes. Undecodable records are
// logged and left out.
func (m *Manager) List(ctx context.Context) ([]Profile, error) {
	names, err := m.store.List(ctx)
	if err != nil {
		return nil, err
	}
	profiles := make([]Profile, 0, len(names))
	for _, name := range names {
		p, err := m.Get(ctx, name)
		if err != nil {
			m.logger.Warn("[PROFILE] skipping unreadable mode", "name", name, "error", err)
			continue
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// Get returns one decoded mode.
func (m *Manager) Get(ctx context.Context, name string) (Profile, error) {
	rec, err := m.store.Get(ctx, name)
	if err != nil {
		return Profile{}, err
	}
	return Decode(name, rec)
}

// SaveCurrent snapshots the lamp's live state under name, replacing any
// mode of that name.
func (m *Manager) SaveCurrent(ctx context.Context, name string) (Profile, error) {
	if err := validName(name); err != nil {
		return Profile{}, err
	}
	rec, err := Snapshot(m.lamp.GetState(ctx))
	if err != nil {
		return Profile{}, err
	}
	if err := m.store.Put(ctx, name, rec); err != nil {
		return Profile{}, err
	}
	p, err := Decode(name, rec)
	if err != nil {
		return Profile{}, err
	}
	m.logger.Info("[PROFILE] saved", "name", name, "light_on", p.LightOn, "brightness", p.Brightness, "color", p.Color.String())
	return p, nil
}

// ApplyNamed loads a mode and applies it to the lamp.
func (m *Manager) ApplyNamed(ctx context.Context, name string) (Profile, error) {
	p, err := m.Get(ctx, name)
	if err != nil {
		return Profile{}, err
	}
	if err := Apply(ctx, m.lamp, p); err != nil {
		m.logger.Error("[PROFILE] apply failed", "name", name, "error", err)
		return Profile{}, err
	}
	m.logger.Info("[PROFILE] applied", "name", name)
	return p, nil
}
