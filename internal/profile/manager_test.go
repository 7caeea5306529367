package profile

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaz8081/lampctl/internal/ble/protocol"
	"github.com/chaz8081/lampctl/internal/lamp"
)

func newTestManager(t *testing.T, l Lamp) (*Manager, Store, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	store := NewFileStore(filepath.Join(t.TempDir(), "modes.yaml"))
	return NewManager(store, l, slog.New(slog.NewTextHandler(&buf, nil))), store, &buf
}

func TestManagerSaveAndApply(t *testing.T) {
	ctx := context.Background()
	l := &fakeLamp{state: lamp.State{
		Connected:  true,
		LightOn:    true,
		Brightness: 30,
		Color:      protocol.RGB{R: 200, G: 10, B: 10},
	}}
	m, _, _ := newTestManager(t, l)

	saved, err := m.SaveCurrent(ctx, "cozy")
	require.NoError(t, err)
	assert.Equal(t, Profile{Name: "cozy", LightOn: true, Brightness: 30, Color: protocol.RGB{R: 200, G: 10, B: 10}}, saved)

	applied, err := m.ApplyNamed(ctx, "cozy")
	require.NoError(t, err)
	assert.Equal(t, saved, applied)
	assert.Equal(t, []string{"on", "brightness", "color"}, l.Calls())

	list, err := m.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Profile{saved}, list)
}

func TestManagerSaveDisconnected(t *testing.T) {
	m, store, _ := newTestManager(t, &fakeLamp{})

	_, err := m.SaveCurrent(context.Background(), "cozy")
	assert.ErrorIs(t, err, ErrStateUnavailable)

	names, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestManagerApplyUnknown(t *testing.T) {
	l := &fakeLamp{}
	m, _, _ := newTestManager(t, l)

	_, err := m.ApplyNamed(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrProfileNotFound)
	assert.Empty(t, l.Calls())
}

func TestManagerApplyMalformed(t *testing.T) {
	ctx := context.Background()
	l := &fakeLamp{}
	m, store, _ := newTestManager(t, l)
	require.NoError(t, store.Put(ctx, "broken", Record{LightState: "01", Brightness: "500"}))

	_, err := m.ApplyNamed(ctx, "broken")
	assert.ErrorIs(t, err, ErrInvalidProfile)
	assert.Empty(t, l.Calls(), "malformed profile must not touch the lamp")
}

func TestManagerListSkipsMalformed(t *testing.T) {
	ctx := context.Background()
	m, store, logs := newTestManager(t, &fakeLamp{})
	require.NoError(t, store.Put(ctx, "good", sampleRecord("10")))
	require.NoError(t, store.Put(ctx, "bad", Record{LightState: "nope"}))

	list, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "good", list[0].Name)
	assert.Contains(t, logs.String(), "skipping unreadable mode")
}

func TestManagerListSkipsBadRecordInFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "modes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(mixedModesFile), 0o644))
	var buf bytes.Buffer
	m := NewManager(NewFileStore(path), &fakeLamp{}, slog.New(slog.NewTextHandler(&buf, nil)))

	profiles, err := m.List(context.Background())
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "good", profiles[0].Name)
	assert.Equal(t, protocol.RGB{B: 255}, profiles[0].Color)
	assert.Contains(t, buf.String(), "skipping unreadable mode")
}
