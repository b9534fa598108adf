package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shinoburc/drivelog-export/internal/model"
)

type fakeSettingsStore struct {
	settings *model.ExportSettings
	presets  map[uuid.UUID]model.ExportPreset
}

func newFakeSettingsStore() *fakeSettingsStore {
	return &fakeSettingsStore{presets: make(map[uuid.UUID]model.ExportPreset)}
}

func (f *fakeSettingsStore) GetSettings(context.Context) (*model.ExportSettings, error) {
	return f.settings, nil
}

func (f *fakeSettingsStore) SaveSettings(_ context.Context, settings model.ExportSettings) error {
	f.settings = &settings
	return nil
}

func (f *fakeSettingsStore) ListPresets(context.Context) ([]model.ExportPreset, error) {
	presets := make([]model.ExportPreset, 0, len(f.presets))
	for _, p := range f.presets {
		presets = append(presets, p)
	}
	return presets, nil
}

func (f *fakeSettingsStore) GetPreset(_ context.Context, id uuid.UUID) (*model.ExportPreset, error) {
	p, ok := f.presets[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

// SavePreset enforces the schema's partial unique index: at most one
// preset row may carry the default flag.
func (f *fakeSettingsStore) SavePreset(_ context.Context, preset model.ExportPreset) error {
	if preset.IsDefault {
		for id, p := range f.presets {
			if p.IsDefault && id != preset.ID {
				return errors.New("duplicate key value violates unique constraint \"uq_export_presets_default\"")
			}
		}
	}
	f.presets[preset.ID] = preset
	return nil
}

func (f *fakeSettingsStore) DeletePreset(_ context.Context, id uuid.UUID) error {
	if _, ok := f.presets[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.presets, id)
	return nil
}

func (f *fakeSettingsStore) SetDefaultPreset(_ context.Context, id uuid.UUID) error {
	if _, ok := f.presets[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	for pid, p := range f.presets {
		p.IsDefault = pid == id
		f.presets[pid] = p
	}
	return nil
}

func (f *fakeSettingsStore) MarkPresetUsed(_ context.Context, id uuid.UUID) error {
	p, ok := f.presets[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.UseCount++
	f.presets[id] = p
	return nil
}

func newSettingsService(store SettingsStore) *SettingsService {
	return NewSettingsService(store, zerolog.Nop())
}

func TestLoadOrDefaultReturnsDefaultsWithoutPersisting(t *testing.T) {
	store := newFakeSettingsStore()
	svc := newSettingsService(store)

	settings, err := svc.LoadOrDefault(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.DefaultExportSettings(), settings)
	assert.Nil(t, store.settings, "defaults must not be written back")
}

func TestLoadOrDefaultPrefersStoredSettings(t *testing.T) {
	store := newFakeSettingsStore()
	stored := model.DefaultExportSettings()
	stored.Format.Delimiter = model.DelimiterTab
	store.settings = &stored
	svc := newSettingsService(store)

	settings, err := svc.LoadOrDefault(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.DelimiterTab, settings.Format.Delimiter)
}

func TestSaveRejectsInvalidSettings(t *testing.T) {
	svc := newSettingsService(newFakeSettingsStore())

	bad := model.DefaultExportSettings()
	bad.Format.Encoding = "ebcdic"
	err := svc.Save(context.Background(), bad)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSavePresetAssignsIDAndTimestamps(t *testing.T) {
	store := newFakeSettingsStore()
	svc := newSettingsService(store)

	saved, err := svc.SavePreset(context.Background(), model.ExportPreset{
		Name:     "monthly",
		Settings: model.DefaultExportSettings(),
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())
	assert.False(t, saved.UpdatedAt.IsZero())
}

func TestSavePresetRequiresName(t *testing.T) {
	svc := newSettingsService(newFakeSettingsStore())

	_, err := svc.SavePreset(context.Background(), model.ExportPreset{
		Name:     "   ",
		Settings: model.DefaultExportSettings(),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSavePresetDefaultFlagClearsOthers(t *testing.T) {
	store := newFakeSettingsStore()
	svc := newSettingsService(store)

	first, err := svc.SavePreset(context.Background(), model.ExportPreset{
		Name:      "first",
		Settings:  model.DefaultExportSettings(),
		IsDefault: true,
	})
	require.NoError(t, err)
	require.True(t, store.presets[first.ID].IsDefault)

	// The store rejects a second default row outright, so this only
	// succeeds if the service clears the old default before flipping the
	// flag.
	second, err := svc.SavePreset(context.Background(), model.ExportPreset{
		Name:      "second",
		Settings:  model.DefaultExportSettings(),
		IsDefault: true,
	})
	require.NoError(t, err)

	assert.False(t, store.presets[first.ID].IsDefault)
	assert.True(t, store.presets[second.ID].IsDefault)
}

func TestDeletePresetRequiresAdmin(t *testing.T) {
	store := newFakeSettingsStore()
	svc := newSettingsService(store)
	saved, err := svc.SavePreset(context.Background(), model.ExportPreset{
		Name:     "keeper",
		Settings: model.DefaultExportSettings(),
	})
	require.NoError(t, err)

	driver := model.Principal{UserID: uuid.New(), Role: model.RoleDriver}
	err = svc.DeletePreset(context.Background(), driver, saved.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	admin := model.Principal{UserID: uuid.New(), Role: model.RoleAdmin}
	require.NoError(t, svc.DeletePreset(context.Background(), admin, saved.ID))
}

func TestDeleteMissingPresetIsNotFound(t *testing.T) {
	svc := newSettingsService(newFakeSettingsStore())

	admin := model.Principal{UserID: uuid.New(), Role: model.RoleAdmin}
	err := svc.DeletePreset(context.Background(), admin, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetMissingPresetIsNotFound(t *testing.T) {
	svc := newSettingsService(newFakeSettingsStore())

	_, err := svc.GetPreset(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkPresetUsedBumpsCounter(t *testing.T) {
	store := newFakeSettingsStore()
	svc := newSettingsService(store)
	saved, err := svc.SavePreset(context.Background(), model.ExportPreset{
		Name:     "used",
		Settings: model.DefaultExportSettings(),
	})
	require.NoError(t, err)

	require.NoError(t, svc.MarkPresetUsed(context.Background(), saved.ID))
	require.NoError(t, svc.MarkPresetUsed(context.Background(), saved.ID))
	assert.Equal(t, int64(2), store.presets[saved.ID].UseCount)
}
