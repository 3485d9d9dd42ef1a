package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/taqi-m/unique-plant-sync/internal/logger"
)

type preferenceRepository struct {
	*DB
	logger *logger.Logger
}

func NewPreferenceRepository(db *DB, logger *logger.Logger) PreferenceRepository {
	return &preferenceRepository{
		DB:     db,
		logger: logger,
	}
}

func (p *preferenceRepository) GetBool(ctx context.Context, key string) (bool, error) {
	raw, err := p.get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrPreferenceNotFound) {
			return false, nil
		}
		return false, err
	}

	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("preference %s is not a bool: %w", key, err)
	}
	return value, nil
}

func (p *preferenceRepository) SetBool(ctx context.Context, key string, value bool) error {
	return p.set(ctx, key, strconv.FormatBool(value))
}

func (p *preferenceRepository) GetInt64(ctx context.Context, key string) (int64, error) {
	raw, err := p.get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrPreferenceNotFound) {
			return 0, nil
		}
		return 0, err
	}

	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("preference %s is not an int: %w", key, err)
	}
	return value, nil
}

func (p *preferenceRepository) SetInt64(ctx context.Context, key string, value int64) error {
	return p.set(ctx, key, strconv.FormatInt(value, 10))
}

func (p *preferenceRepository) GetString(ctx context.Context, key string) (string, error) {
	raw, err := p.get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrPreferenceNotFound) {
			return "", nil
		}
		return "", err
	}
	return raw, nil
}

func (p *preferenceRepository) SetString(ctx context.Context, key, value string) error {
	return p.set(ctx, key, value)
}

func (p *preferenceRepository) Delete(ctx context.Context, key string) error {
	log := logger.FromContext(ctx)

	if _, err := p.DB.ExecContext(ctx, deletePreference, key); err != nil {
		log.Err(err).
			Str("func", "preferenceRepository.Delete").
			Str("key", key).
			Msg("failed to execute delete for preference")
		return fmt.Errorf("failed to delete preference %s: %w", key, err)
	}

	return nil
}

func (p *preferenceRepository) get(ctx context.Context, key string) (string, error) {
	log := logger.FromContext(ctx)

	var value string
	row := p.DB.QueryRowContext(ctx, getPreference, key)
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrPreferenceNotFound
		}
		log.Err(err).
			Str("func", "preferenceRepository.get").
			Str("key", key).
			Msg("failed to scan preference row")
		return "", fmt.Errorf("failed to read preference %s: %w", key, err)
	}

	return value, nil
}

func (p *preferenceRepository) set(ctx context.Context, key, value string) error {
	log := logger.FromContext(ctx)

	if _, err := p.DB.ExecContext(ctx, upsertPreference, key, value, time.Now().UnixMilli()); err != nil {
		log.Err(err).
			Str("func", "preferenceRepository.set").
			Str("key", key).
			Msg("failed to execute upsert for preference")
		return fmt.Errorf("failed to write preference %s: %w", key, err)
	}

	return nil
}
