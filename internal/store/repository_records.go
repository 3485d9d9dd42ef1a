package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/taqi-m/unique-plant-sync/internal/logger"
	"github.com/taqi-m/unique-plant-sync/models"
)

type recordRepository struct {
	*DB
	logger *logger.Logger
}

func NewRecordRepository(db *DB, logger *logger.Logger) RecordRepository {
	return &recordRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *recordRepository) Insert(ctx context.Context, rec models.Record) error {
	log := logger.FromContext(ctx)

	result, err := r.DB.ExecContext(ctx, insertRecord,
		rec.Kind.String(),
		rec.UserID,
		rec.LocalID,
		rec.RemoteID,
		rec.ParentKind.Collection(),
		rec.ParentLocalID,
		rec.ParentRemoteID,
		string(rec.Fields),
		rec.IsDeleted,
		rec.IsSynced,
		rec.NeedsSync,
		rec.CreatedAt,
		rec.UpdatedAt,
		rec.LastSyncedAt,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return fmt.Errorf("insert record (local_id=%s): %w", rec.LocalID, ErrDuplicateLocalID)
		}
		log.Err(err).
			Str("func", "recordRepository.Insert").
			Str("user_id", rec.UserID).
			Str("local_id", rec.LocalID).
			Msg("failed to execute insert for record")
		return fmt.Errorf("failed to insert record (local_id=%s): %w", rec.LocalID, err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("insert record (local_id=%s): %w", rec.LocalID, ErrRecordNotSaved)
	}

	return nil
}

func (r *recordRepository) Update(ctx context.Context, rec models.Record) error {
	log := logger.FromContext(ctx)

	result, err := r.DB.ExecContext(ctx, updateRecord,
		string(rec.Fields),
		rec.ParentKind.Collection(),
		rec.ParentLocalID,
		rec.ParentRemoteID,
		rec.IsDeleted,
		rec.UpdatedAt,
		rec.LocalID,
	)
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.Update").
			Str("user_id", rec.UserID).
			Str("local_id", rec.LocalID).
			Msg("failed to execute update for record")
		return fmt.Errorf("failed to update record (local_id=%s): %w", rec.LocalID, err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("update record (local_id=%s): %w", rec.LocalID, ErrRecordNotFound)
	}

	return nil
}

func (r *recordRepository) SoftDelete(ctx context.Context, localID string, now int64) error {
	log := logger.FromContext(ctx)

	result, err := r.DB.ExecContext(ctx, softDeleteRecord, now, localID)
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.SoftDelete").
			Str("local_id", localID).
			Msg("failed to execute soft delete for record")
		return fmt.Errorf("failed to soft delete record (local_id=%s): %w", localID, err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("soft delete record (local_id=%s): %w", localID, ErrRecordNotFound)
	}

	return nil
}

func (r *recordRepository) GetDirty(ctx context.Context, kind models.SyncType, userID string) ([]models.Record, error) {
	return r.queryRecords(ctx, "recordRepository.GetDirty", getDirtyRecords, kind.String(), userID)
}

func (r *recordRepository) GetAll(ctx context.Context, kind models.SyncType, userID string) ([]models.Record, error) {
	return r.queryRecords(ctx, "recordRepository.GetAll", getAllRecords, kind.String(), userID)
}

func (r *recordRepository) GetByLocalID(ctx context.Context, localID string) (models.Record, error) {
	return r.queryRecord(ctx, "recordRepository.GetByLocalID", getRecordByLocalID, localID)
}

func (r *recordRepository) GetByRemoteID(ctx context.Context, remoteID string) (models.Record, error) {
	if remoteID == "" {
		return models.Record{}, fmt.Errorf("get record by empty remote id: %w", ErrRecordNotFound)
	}
	return r.queryRecord(ctx, "recordRepository.GetByRemoteID", getRecordByRemoteID, remoteID)
}

func (r *recordRepository) MarkSynced(ctx context.Context, localID, remoteID string, syncedAt int64) error {
	log := logger.FromContext(ctx)

	result, err := r.DB.ExecContext(ctx, markRecordSynced, remoteID, syncedAt, localID)
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.MarkSynced").
			Str("local_id", localID).
			Str("remote_id", remoteID).
			Msg("failed to execute mark synced for record")
		return fmt.Errorf("failed to mark record synced (local_id=%s): %w", localID, err)
	}

	affected, _ := result.RowsAffected()
	if affected > 0 {
		return nil
	}

	// Zero rows: either the row is missing or its remote_id is already
	// assigned to a different value. Distinguish for the caller.
	if _, getErr := r.GetByLocalID(ctx, localID); getErr != nil {
		return getErr
	}
	return fmt.Errorf("mark record synced (local_id=%s, remote_id=%s): %w", localID, remoteID, ErrRemoteIDConflict)
}

func (r *recordRepository) ApplyRemote(ctx context.Context, rec models.Record, syncedAt int64) error {
	log := logger.FromContext(ctx)

	result, err := r.DB.ExecContext(ctx, applyRemoteRecord,
		string(rec.Fields),
		rec.ParentKind.Collection(),
		rec.ParentLocalID,
		rec.ParentRemoteID,
		rec.IsDeleted,
		rec.UpdatedAt,
		syncedAt,
		rec.LocalID,
	)
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.ApplyRemote").
			Str("local_id", rec.LocalID).
			Msg("failed to execute apply remote for record")
		return fmt.Errorf("failed to apply remote record (local_id=%s): %w", rec.LocalID, err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("apply remote record (local_id=%s): %w", rec.LocalID, ErrRecordNotFound)
	}

	return nil
}

func (r *recordRepository) CountUnsynced(ctx context.Context, kind models.SyncType, userID string) (int, error) {
	log := logger.FromContext(ctx)

	var count int
	row := r.DB.QueryRowContext(ctx, countUnsyncedRecords, kind.String(), userID)
	if err := row.Scan(&count); err != nil {
		log.Err(err).
			Str("func", "recordRepository.CountUnsynced").
			Str("kind", kind.String()).
			Str("user_id", userID).
			Msg("failed to scan unsynced count")
		return 0, fmt.Errorf("failed to count unsynced records: %w", err)
	}

	return count, nil
}

func (r *recordRepository) HasUnsynced(ctx context.Context, userID string) (bool, error) {
	log := logger.FromContext(ctx)

	var exists bool
	row := r.DB.QueryRowContext(ctx, hasUnsyncedRecords, userID)
	if err := row.Scan(&exists); err != nil {
		log.Err(err).
			Str("func", "recordRepository.HasUnsynced").
			Str("user_id", userID).
			Msg("failed to scan unsynced existence")
		return false, fmt.Errorf("failed to check unsynced records: %w", err)
	}

	return exists, nil
}

func (r *recordRepository) queryRecord(ctx context.Context, caller, query string, arg any) (models.Record, error) {
	log := logger.FromContext(ctx)

	row := r.DB.QueryRowContext(ctx, query, arg)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Record{}, ErrRecordNotFound
		}
		log.Err(err).
			Str("func", caller).
			Msg("failed to scan record row")
		return models.Record{}, fmt.Errorf("failed to scan record row: %w", err)
	}

	return rec, nil
}

func (r *recordRepository) queryRecords(ctx context.Context, caller, query string, args ...any) ([]models.Record, error) {
	log := logger.FromContext(ctx)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", caller).
			Msg("failed to execute records query")
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var items []models.Record

	for rows.Next() {
		rec, scanErr := scanRecord(rows)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", caller).
				Msg("failed to scan record row")
			return nil, fmt.Errorf("failed to scan record row: %w", scanErr)
		}
		items = append(items, rec)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", caller).
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("error iterating record rows: %w", rowsErr)
	}

	return items, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (models.Record, error) {
	var (
		rec        models.Record
		kind       string
		parentKind string
		fields     string
	)

	err := row.Scan(
		&rec.ID,
		&kind,
		&rec.UserID,
		&rec.LocalID,
		&rec.RemoteID,
		&parentKind,
		&rec.ParentLocalID,
		&rec.ParentRemoteID,
		&fields,
		&rec.IsDeleted,
		&rec.IsSynced,
		&rec.NeedsSync,
		&rec.CreatedAt,
		&rec.UpdatedAt,
		&rec.LastSyncedAt,
	)
	if err != nil {
		return models.Record{}, err
	}

	rec.Kind, err = models.ParseSyncType(kind)
	if err != nil {
		return models.Record{}, fmt.Errorf("record %s: %w", rec.LocalID, err)
	}
	if parentKind != "" {
		// Tolerate an unknown parent kind: the reference columns still
		// carry enough to resolve the row.
		rec.ParentKind, _ = models.ParseSyncType(parentKind)
	}
	rec.Fields = []byte(fields)

	return rec, nil
}
