package repository

import (
	"context"
	"database/sql"

	"github.com/brajcamp/camp-registration/internal/model"
)

// MySQLStore persists registrations in the `registrations` table.  Each
// column mirrors a field of model.RegistrationRecord; the payment and
// devotee sub-structs are flattened rather than stored as JSON so the
// stats query can aggregate with plain SQL.
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore returns a store bound to the given database.
func NewMySQLStore(db *sql.DB) *MySQLStore { return &MySQLStore{db: db} }

// Append inserts one registration row.  There is no uniqueness constraint
// beyond the primary key, matching the store contract.
func (s *MySQLStore) Append(ctx context.Context, rec *model.RegistrationRecord) error {
	if err := validate(rec); err != nil {
		return err
	}
	const q = `INSERT INTO registrations
		(id, name, email, contact_no, facilitator, area, level, medical_notes,
		 accommodation, payment_id, order_id, amount_rupees, payment_status, registered_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q,
		rec.ID,
		rec.Devotee.Name, rec.Devotee.Email, rec.Devotee.ContactNo,
		rec.Devotee.Facilitator, rec.Devotee.Area, rec.Devotee.Level,
		rec.Devotee.MedicalNotes, string(rec.Devotee.Accommodation),
		rec.Payment.PaymentID, rec.Payment.OrderID, rec.Payment.Amount,
		rec.Payment.Status, rec.RegistrationTime.UTC(),
	)
	return err
}

// List returns all registrations in insertion order.
func (s *MySQLStore) List(ctx context.Context) ([]model.RegistrationRecord, error) {
	const q = `SELECT id, name, email, contact_no, facilitator, area, level,
		medical_notes, accommodation, payment_id, order_id, amount_rupees,
		payment_status, registered_at
		FROM registrations ORDER BY registered_at ASC`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.RegistrationRecord
	for rows.Next() {
		var r model.RegistrationRecord
		var accommodation string
		if err := rows.Scan(
			&r.ID,
			&r.Devotee.Name, &r.Devotee.Email, &r.Devotee.ContactNo,
			&r.Devotee.Facilitator, &r.Devotee.Area, &r.Devotee.Level,
			&r.Devotee.MedicalNotes, &accommodation,
			&r.Payment.PaymentID, &r.Payment.OrderID, &r.Payment.Amount,
			&r.Payment.Status, &r.RegistrationTime,
		); err != nil {
			return nil, err
		}
		r.Devotee.Accommodation = model.Accommodation(accommodation)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Stats aggregates counts and revenue with two queries: one for the scalar
// totals and one grouped query per breakdown dimension.
func (s *MySQLStore) Stats(ctx context.Context) (model.RegistrationStats, error) {
	stats := model.RegistrationStats{
		FacilitatorBreakdown: map[string]int{},
		AreaBreakdown:        map[string]int{},
		LevelBreakdown:       map[string]int{},
	}

	const totals = `SELECT COUNT(*),
		COALESCE(SUM(accommodation = 'room'), 0),
		COALESCE(SUM(accommodation = 'dormitory'), 0),
		COALESCE(SUM(amount_rupees), 0)
		FROM registrations`
	if err := s.db.QueryRowContext(ctx, totals).Scan(
		&stats.TotalRegistrations, &stats.RoomBookings,
		&stats.DormitoryBookings, &stats.TotalRevenue,
	); err != nil {
		return stats, err
	}

	for col, dst := range map[string]map[string]int{
		"facilitator": stats.FacilitatorBreakdown,
		"area":        stats.AreaBreakdown,
		"level":       stats.LevelBreakdown,
	} {
		if err := s.groupCount(ctx, col, dst); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// groupCount fills dst with COUNT(*) grouped by the given column.  The
// column name comes from a fixed set above, never from user input.
func (s *MySQLStore) groupCount(ctx context.Context, column string, dst map[string]int) error {
	rows, err := s.db.QueryContext(ctx, `SELECT `+column+`, COUNT(*) FROM registrations GROUP BY `+column)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return err
		}
		dst[key] = n
	}
	return rows.Err()
}
