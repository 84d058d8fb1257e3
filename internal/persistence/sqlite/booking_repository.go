package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/deputy-schedule/internal/persistence"
	"github.com/example/deputy-schedule/internal/schedule"
)

// BookingRepository implements persistence.BookingRepository.
type BookingRepository struct {
	db *DB
}

// NewBookingRepository wraps the shared database handle.
func NewBookingRepository(db *DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `id, requested_by_id, requested_by_name, requested_by_position,
	title, date, time, end_time, description, status, created_at, approved_by, approved_at`

// CreateBooking inserts a new request.
func (r *BookingRepository) CreateBooking(ctx context.Context, request schedule.BookingRequest) error {
	createdAt := request.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.db.conn.ExecContext(ctx, `
		INSERT INTO booking_requests (id, requested_by_id, requested_by_name, requested_by_position,
			title, date, time, end_time, description, status, created_at, approved_by, approved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		request.ID, request.RequestedBy.ID, request.RequestedBy.Name, request.RequestedBy.Position,
		request.Title, request.Date, request.Time, request.EndTime,
		nullString(request.Description), string(request.Status),
		createdAt.UTC().Format(time.RFC3339), nullString(request.ApprovedBy), nullTime(request.ApprovedAt),
	)
	return mapError(err)
}

// UpdateBooking rewrites the status and approval fields of a request.
func (r *BookingRepository) UpdateBooking(ctx context.Context, request schedule.BookingRequest) error {
	result, err := r.db.conn.ExecContext(ctx, `
		UPDATE booking_requests
		SET status = ?, approved_by = ?, approved_at = ?
		WHERE id = ?`,
		string(request.Status), nullString(request.ApprovedBy), nullTime(request.ApprovedAt), request.ID,
	)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetBooking retrieves a request by id.
func (r *BookingRepository) GetBooking(ctx context.Context, id string) (schedule.BookingRequest, error) {
	row := r.db.conn.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM booking_requests WHERE id = ?`, id)
	return scanBooking(row)
}

// ListBookings returns requests in submission order, optionally restricted
// to one status.
func (r *BookingRepository) ListBookings(ctx context.Context, status schedule.BookingStatus) ([]schedule.BookingRequest, error) {
	query := `SELECT ` + bookingColumns + ` FROM booking_requests`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []schedule.BookingRequest
	for rows.Next() {
		request, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}
	return requests, rows.Err()
}

func scanBooking(row rowScanner) (schedule.BookingRequest, error) {
	var (
		request                            schedule.BookingRequest
		status, createdAt                  string
		description, approvedBy, approvedAt sql.NullString
	)
	err := row.Scan(&request.ID, &request.RequestedBy.ID, &request.RequestedBy.Name,
		&request.RequestedBy.Position, &request.Title, &request.Date, &request.Time,
		&request.EndTime, &description, &status, &createdAt, &approvedBy, &approvedAt)
	if err != nil {
		return schedule.BookingRequest{}, mapError(err)
	}
	request.Description = description.String
	request.Status = schedule.BookingStatus(status)
	request.ApprovedBy = approvedBy.String
	if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
		request.CreatedAt = ts
	}
	if approvedAt.Valid {
		if ts, err := time.Parse(time.RFC3339, approvedAt.String); err == nil {
			request.ApprovedAt = &ts
		}
	}
	return request, nil
}

func nullTime(value *time.Time) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: value.UTC().Format(time.RFC3339), Valid: true}
}
