package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shinoburc/drivelog-export/internal/model"
)

const settingsKey = "export"

// SettingsRepository persists export settings, presets and the run
// history. Settings and preset payloads are stored as JSON documents.
type SettingsRepository struct {
	db           *gorm.DB
	historyLimit int
}

func NewSettingsRepository(db *gorm.DB, historyLimit int) *SettingsRepository {
	if historyLimit <= 0 {
		historyLimit = 100
	}
	return &SettingsRepository{db: db, historyLimit: historyLimit}
}

// GetSettings returns the persisted settings, or (nil, nil) when nothing
// has been saved yet.
func (r *SettingsRepository) GetSettings(ctx context.Context) (*model.ExportSettings, error) {
	var raw []byte
	err := r.db.WithContext(ctx).Raw(`
		SELECT value FROM export_settings WHERE key = ? LIMIT 1
	`, settingsKey).Scan(&raw).Error
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var settings model.ExportSettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return nil, fmt.Errorf("decode stored settings: %w", err)
	}
	return &settings, nil
}

func (r *SettingsRepository) SaveSettings(ctx context.Context, settings model.ExportSettings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO export_settings (key, value, updated_at)
		VALUES (?, ?, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`, settingsKey, raw).Error
}

type presetRow struct {
	ID         uuid.UUID
	Name       string
	Settings   []byte
	IsDefault  bool
	UseCount   int64
	LastUsedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (row presetRow) toModel() (model.ExportPreset, error) {
	var settings model.ExportSettings
	if err := json.Unmarshal(row.Settings, &settings); err != nil {
		return model.ExportPreset{}, fmt.Errorf("decode preset %s: %w", row.ID, err)
	}
	return model.ExportPreset{
		ID:         row.ID,
		Name:       row.Name,
		Settings:   settings,
		IsDefault:  row.IsDefault,
		UseCount:   row.UseCount,
		LastUsedAt: row.LastUsedAt,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}, nil
}

func (r *SettingsRepository) ListPresets(ctx context.Context) ([]model.ExportPreset, error) {
	var rows []presetRow
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, name, settings, is_default, use_count, last_used_at, created_at, updated_at
		FROM export_presets
		ORDER BY created_at ASC
	`).Scan(&rows).Error; err != nil {
		return nil, err
	}
	presets := make([]model.ExportPreset, 0, len(rows))
	for _, row := range rows {
		preset, err := row.toModel()
		if err != nil {
			return nil, err
		}
		presets = append(presets, preset)
	}
	return presets, nil
}

func (r *SettingsRepository) GetPreset(ctx context.Context, id uuid.UUID) (*model.ExportPreset, error) {
	var rows []presetRow
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, name, settings, is_default, use_count, last_used_at, created_at, updated_at
		FROM export_presets
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	preset, err := rows[0].toModel()
	if err != nil {
		return nil, err
	}
	return &preset, nil
}

// SavePreset upserts a preset by id.
func (r *SettingsRepository) SavePreset(ctx context.Context, preset model.ExportPreset) error {
	raw, err := json.Marshal(preset.Settings)
	if err != nil {
		return fmt.Errorf("encode preset settings: %w", err)
	}
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO export_presets (id, name, settings, is_default, use_count, last_used_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			settings = EXCLUDED.settings,
			is_default = EXCLUDED.is_default,
			updated_at = NOW()
	`, preset.ID, preset.Name, raw, preset.IsDefault, preset.UseCount, preset.LastUsedAt, preset.CreatedAt).Error
}

// DeletePreset removes a preset; a missing id is reported as
// gorm.ErrRecordNotFound, not a silent no-op.
func (r *SettingsRepository) DeletePreset(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Exec(`DELETE FROM export_presets WHERE id = ?`, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetDefaultPreset marks one preset default, clearing the flag on every
// other preset inside the same transaction.
func (r *SettingsRepository) SetDefaultPreset(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`UPDATE export_presets SET is_default = FALSE, updated_at = NOW() WHERE is_default`).Error; err != nil {
			return err
		}
		res := tx.Exec(`UPDATE export_presets SET is_default = TRUE, updated_at = NOW() WHERE id = ?`, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// MarkPresetUsed bumps the usage counter and last-used timestamp.
func (r *SettingsRepository) MarkPresetUsed(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE export_presets
		SET use_count = use_count + 1, last_used_at = NOW(), updated_at = NOW()
		WHERE id = ?
	`, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Append stores a history entry and trims the table beyond the cap,
// oldest entries first.
func (r *SettingsRepository) Append(ctx context.Context, entry model.ExportHistoryEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`
			INSERT INTO export_history (id, filename, success, byte_size, total_records, exported_records, elapsed_ms, error_code, exported_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, entry.ID, entry.Filename, entry.Success, entry.ByteSize, entry.TotalRecords,
			entry.ExportedRecords, entry.Elapsed.Milliseconds(), entry.ErrorCode, entry.ExportedAt).Error; err != nil {
			return err
		}
		return tx.Exec(`
			DELETE FROM export_history
			WHERE id NOT IN (
				SELECT id FROM export_history ORDER BY exported_at DESC LIMIT ?
			)
		`, r.historyLimit).Error
	})
}

type historyRow struct {
	ID              uuid.UUID
	Filename        string
	Success         bool
	ByteSize        int64
	TotalRecords    int
	ExportedRecords int
	ElapsedMs       int64
	ErrorCode       string
	ExportedAt      time.Time
}

// ListHistory returns up to limit entries, newest first.
func (r *SettingsRepository) ListHistory(ctx context.Context, limit int) ([]model.ExportHistoryEntry, error) {
	if limit <= 0 || limit > r.historyLimit {
		limit = r.historyLimit
	}
	var rows []historyRow
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, filename, success, byte_size, total_records, exported_records, elapsed_ms, error_code, exported_at
		FROM export_history
		ORDER BY exported_at DESC
		LIMIT ?
	`, limit).Scan(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]model.ExportHistoryEntry, len(rows))
	for i, row := range rows {
		entries[i] = model.ExportHistoryEntry{
			ID:              row.ID,
			Filename:        row.Filename,
			Success:         row.Success,
			ByteSize:        row.ByteSize,
			TotalRecords:    row.TotalRecords,
			ExportedRecords: row.ExportedRecords,
			Elapsed:         time.Duration(row.ElapsedMs) * time.Millisecond,
			ErrorCode:       row.ErrorCode,
			ExportedAt:      row.ExportedAt,
		}
	}
	return entries, nil
}
