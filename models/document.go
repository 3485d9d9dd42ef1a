// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Muhammad Taqi

package models

import "encoding/json"

// Document is the remote document-store wire payload. It carries the
// parent reference in both directions so the receiving device can
// resolve the foreign key without a second round-trip query.
type Document struct {
	LocalID        string          `json:"local_id"`
	RemoteID       string          `json:"remote_id"`
	UserID         string          `json:"user_id"`
	ParentKind     string          `json:"parent_kind,omitempty"`
	ParentRemoteID string          `json:"parent_remote_id,omitempty"`
	Fields         json.RawMessage `json:"fields,omitempty"`
	Deleted        bool            `json:"deleted"`
	CreatedAt      int64           `json:"created_at"`
	UpdatedAt      int64           `json:"updated_at"`
}

// Record converts a downloaded document into a local row. The caller is
// responsible for resolving ParentLocalID from ParentRemoteID and for
// setting the reconciliation flags.
func (d Document) Record(kind SyncType) Record {
	parentKind, _ := ParseSyncType(d.ParentKind)
	return Record{
		Kind:           kind,
		UserID:         d.UserID,
		LocalID:        d.LocalID,
		RemoteID:       d.RemoteID,
		ParentKind:     parentKind,
		ParentRemoteID: d.ParentRemoteID,
		Fields:         d.Fields,
		IsDeleted:      d.Deleted,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}
