package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/shinoburc/drivelog-export/internal/model"
)

// SettingsStore is the persistence surface the settings service needs.
// *repository.SettingsRepository satisfies it; a missing row surfaces as
// gorm.ErrRecordNotFound.
type SettingsStore interface {
	GetSettings(ctx context.Context) (*model.ExportSettings, error)
	SaveSettings(ctx context.Context, settings model.ExportSettings) error
	ListPresets(ctx context.Context) ([]model.ExportPreset, error)
	GetPreset(ctx context.Context, id uuid.UUID) (*model.ExportPreset, error)
	SavePreset(ctx context.Context, preset model.ExportPreset) error
	DeletePreset(ctx context.Context, id uuid.UUID) error
	SetDefaultPreset(ctx context.Context, id uuid.UUID) error
	MarkPresetUsed(ctx context.Context, id uuid.UUID) error
}

// SettingsService manages the persisted export settings and presets.
type SettingsService struct {
	repo SettingsStore
	log  zerolog.Logger
}

func NewSettingsService(repo SettingsStore, log zerolog.Logger) *SettingsService {
	return &SettingsService{repo: repo, log: log}
}

// LoadOrDefault returns the persisted settings, or the in-memory
// defaults when nothing has been saved. Defaults are not persisted
// implicitly.
func (s *SettingsService) LoadOrDefault(ctx context.Context) (model.ExportSettings, error) {
	stored, err := s.repo.GetSettings(ctx)
	if err != nil {
		return model.ExportSettings{}, err
	}
	if stored == nil {
		return model.DefaultExportSettings(), nil
	}
	return *stored, nil
}

func (s *SettingsService) Save(ctx context.Context, settings model.ExportSettings) error {
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}
	return s.repo.SaveSettings(ctx, settings)
}

func (s *SettingsService) ListPresets(ctx context.Context) ([]model.ExportPreset, error) {
	return s.repo.ListPresets(ctx)
}

func (s *SettingsService) GetPreset(ctx context.Context, id uuid.UUID) (*model.ExportPreset, error) {
	preset, err := s.repo.GetPreset(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return preset, nil
}

// SavePreset upserts by id; a zero id gets a fresh one.
func (s *SettingsService) SavePreset(ctx context.Context, preset model.ExportPreset) (*model.ExportPreset, error) {
	if strings.TrimSpace(preset.Name) == "" {
		return nil, fmt.Errorf("%w: preset name is required", ErrInvalidInput)
	}
	if err := preset.Settings.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}
	if preset.ID == uuid.Nil {
		preset.ID = uuid.New()
		preset.CreatedAt = timeNow()
	}
	if preset.CreatedAt.IsZero() {
		preset.CreatedAt = timeNow()
	}
	preset.UpdatedAt = timeNow()

	// The schema allows at most one default preset. Write the row with the
	// flag off and let SetDefaultPreset flip it after clearing the previous
	// default, so the upsert never collides with the unique index.
	stored := preset
	stored.IsDefault = false
	if err := s.repo.SavePreset(ctx, stored); err != nil {
		return nil, err
	}
	if preset.IsDefault {
		if err := s.repo.SetDefaultPreset(ctx, preset.ID); err != nil {
			return nil, err
		}
	}
	return &preset, nil
}

// DeletePreset fails with ErrNotFound for an unknown id.
func (s *SettingsService) DeletePreset(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	if !principal.IsAdmin() {
		return ErrPermissionDenied
	}
	if err := s.repo.DeletePreset(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// SetDefaultPreset makes one preset the default, clearing the flag
// everywhere else first.
func (s *SettingsService) SetDefaultPreset(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SetDefaultPreset(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// MarkPresetUsed records one use of a preset.
func (s *SettingsService) MarkPresetUsed(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.MarkPresetUsed(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
