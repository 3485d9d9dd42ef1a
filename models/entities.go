package models

import (
	"encoding/json"
	"fmt"
)

// Category is a spending or earning category. Categories are standalone
// (Critical) records with no parent reference.
type Category struct {
	Name  string `json:"name"`
	Icon  string `json:"icon,omitempty"`
	Color string `json:"color,omitempty"`
	Kind  string `json:"kind,omitempty"` // "expense" or "income"
}

// Person is a counterparty an expense or income is attributed to.
type Person struct {
	Name     string `json:"name"`
	Relation string `json:"relation,omitempty"`
}

// Expense is a single spending entry. Its category reference rides in
// the record's parent fields; PersonLocalID is plain payload data the
// engine does not resolve.
type Expense struct {
	Title         string  `json:"title"`
	Amount        float64 `json:"amount"`
	SpentAt       int64   `json:"spent_at"`
	PersonLocalID string  `json:"person_local_id,omitempty"`
	Notes         string  `json:"notes,omitempty"`
}

// Income is a single earning entry attributed to a person.
type Income struct {
	Title      string  `json:"title"`
	Amount     float64 `json:"amount"`
	ReceivedAt int64   `json:"received_at"`
	Notes      string  `json:"notes,omitempty"`
}

// NewCategoryRecord wraps a category payload in a dirty, never-synced
// record envelope. localID must be freshly generated and is immutable
// from this point on.
func NewCategoryRecord(localID, userID string, c Category, now int64) (Record, error) {
	return newRecord(SyncTypeCategories, localID, userID, c, now)
}

// NewPersonRecord wraps a person payload in a dirty record envelope.
func NewPersonRecord(localID, userID string, p Person, now int64) (Record, error) {
	return newRecord(SyncTypePersons, localID, userID, p, now)
}

// NewExpenseRecord wraps an expense payload in a dirty record envelope
// referencing the category identified by categoryLocalID.
func NewExpenseRecord(localID, userID, categoryLocalID string, e Expense, now int64) (Record, error) {
	rec, err := newRecord(SyncTypeExpenses, localID, userID, e, now)
	if err != nil {
		return Record{}, err
	}
	rec.ParentKind = SyncTypeCategories
	rec.ParentLocalID = categoryLocalID
	return rec, nil
}

// NewIncomeRecord wraps an income payload in a dirty record envelope
// referencing the person identified by personLocalID.
func NewIncomeRecord(localID, userID, personLocalID string, i Income, now int64) (Record, error) {
	rec, err := newRecord(SyncTypeIncomes, localID, userID, i, now)
	if err != nil {
		return Record{}, err
	}
	rec.ParentKind = SyncTypePersons
	rec.ParentLocalID = personLocalID
	return rec, nil
}

func newRecord(kind SyncType, localID, userID string, payload any, now int64) (Record, error) {
	fields, err := json.Marshal(payload)
	if err != nil {
		return Record{}, fmt.Errorf("marshal %s payload: %w", kind, err)
	}
	return Record{
		Kind:      kind,
		UserID:    userID,
		LocalID:   localID,
		Fields:    fields,
		NeedsSync: true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Category decodes the record's payload. Valid only for category records.
func (r *Record) Category() (Category, error) {
	var c Category
	return c, r.decodeFields(SyncTypeCategories, &c)
}

// Person decodes the record's payload. Valid only for person records.
func (r *Record) Person() (Person, error) {
	var p Person
	return p, r.decodeFields(SyncTypePersons, &p)
}

// Expense decodes the record's payload. Valid only for expense records.
func (r *Record) Expense() (Expense, error) {
	var e Expense
	return e, r.decodeFields(SyncTypeExpenses, &e)
}

// Income decodes the record's payload. Valid only for income records.
func (r *Record) Income() (Income, error) {
	var i Income
	return i, r.decodeFields(SyncTypeIncomes, &i)
}

func (r *Record) decodeFields(want SyncType, dst any) error {
	if r.Kind != want {
		return fmt.Errorf("record %s holds %s, not %s", r.LocalID, r.Kind, want)
	}
	if err := json.Unmarshal(r.Fields, dst); err != nil {
		return fmt.Errorf("decode %s payload for %s: %w", want, r.LocalID, err)
	}
	return nil
}
