// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Muhammad Taqi

package store

const (
	recordColumns = `
		id,
		kind,
		user_id,
		local_id,
		remote_id,
		parent_kind,
		parent_local_id,
		parent_remote_id,
		fields,
		deleted,
		synced,
		needs_sync,
		created_at,
		updated_at,
		last_synced_at`

	insertRecord = `
		INSERT INTO records (
			kind,
			user_id,
			local_id,
			remote_id,
			parent_kind,
			parent_local_id,
			parent_remote_id,
			fields,
			deleted,
			synced,
			needs_sync,
			created_at,
			updated_at,
			last_synced_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);`

	updateRecord = `
		UPDATE records SET
			fields           = $1,
			parent_kind      = $2,
			parent_local_id  = $3,
			parent_remote_id = $4,
			deleted          = $5,
			synced           = 0,
			needs_sync       = 1,
			updated_at       = $6
		WHERE local_id = $7;`

	softDeleteRecord = `
		UPDATE records SET
			deleted    = 1,
			synced     = 0,
			needs_sync = 1,
			updated_at = $1
		WHERE local_id = $2;`

	getDirtyRecords = `
		SELECT ` + recordColumns + `
		FROM records
		WHERE kind = $1 AND user_id = $2 AND needs_sync = 1
		ORDER BY id;`

	getRecordByLocalID = `
		SELECT ` + recordColumns + `
		FROM records
		WHERE local_id = $1;`

	getRecordByRemoteID = `
		SELECT ` + recordColumns + `
		FROM records
		WHERE remote_id = $1;`

	getAllRecords = `
		SELECT ` + recordColumns + `
		FROM records
		WHERE kind = $1 AND user_id = $2 AND deleted = 0
		ORDER BY id;`

	// remote_id is write-once: an already assigned id is kept as is and the
	// mismatch is detected by the affected-rows check.
	markRecordSynced = `
		UPDATE records SET
			remote_id      = CASE WHEN remote_id = '' THEN $1 ELSE remote_id END,
			synced         = 1,
			needs_sync     = 0,
			last_synced_at = $2
		WHERE local_id = $3 AND (remote_id = '' OR remote_id = $1);`

	applyRemoteRecord = `
		UPDATE records SET
			fields           = $1,
			parent_kind      = $2,
			parent_local_id  = $3,
			parent_remote_id = $4,
			deleted          = $5,
			synced           = 1,
			needs_sync       = 0,
			updated_at       = $6,
			last_synced_at   = $7
		WHERE local_id = $8;`

	countUnsyncedRecords = `
		SELECT COUNT(*)
		FROM records
		WHERE kind = $1 AND user_id = $2 AND needs_sync = 1;`

	hasUnsyncedRecords = `
		SELECT EXISTS (
			SELECT 1 FROM records WHERE user_id = $1 AND needs_sync = 1
		);`

	getPreference = `
		SELECT value FROM preferences WHERE key = $1;`

	upsertPreference = `
		INSERT INTO preferences (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at;`

	deletePreference = `
		DELETE FROM preferences WHERE key = $1;`
)
