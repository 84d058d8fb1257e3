package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/deputy-schedule/internal/persistence"
	"github.com/example/deputy-schedule/internal/schedule"
)

// EventRepository implements persistence.EventRepository.
type EventRepository struct {
	db *DB
}

// NewEventRepository wraps the shared database handle.
func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `id, title, type, date, time, end_time, end_date, location, vks_link,
	description, status, region_name, is_multi_day, booking_request_id, created_at`

// CreateEvent inserts the event with its responsible snapshots and reminders.
func (r *EventRepository) CreateEvent(ctx context.Context, event schedule.Event) error {
	tx, err := r.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	createdAt := event.CreatedAt.UTC().Format(time.RFC3339)
	if event.CreatedAt.IsZero() {
		createdAt = now
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO events (id, title, type, date, time, end_time, end_date, location, vks_link,
			description, status, region_name, is_multi_day, booking_request_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.Title, string(event.Type), event.Date, event.Time,
		nullString(event.EndTime), nullString(event.EndDate), nullString(event.Location),
		nullString(event.VKSLink), nullString(event.Description), string(event.Status),
		nullString(event.RegionName), event.IsMultiDay, nullString(event.BookingRequestID),
		createdAt, now,
	)
	if err != nil {
		return mapError(err)
	}

	if err := insertEventDependents(ctx, tx, event); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateEvent rewrites the event row and replaces its snapshots and reminders.
func (r *EventRepository) UpdateEvent(ctx context.Context, event schedule.Event) error {
	tx, err := r.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE events
		SET title = ?, type = ?, date = ?, time = ?, end_time = ?, end_date = ?, location = ?,
			vks_link = ?, description = ?, status = ?, region_name = ?, is_multi_day = ?,
			booking_request_id = ?, updated_at = ?
		WHERE id = ?`,
		event.Title, string(event.Type), event.Date, event.Time,
		nullString(event.EndTime), nullString(event.EndDate), nullString(event.Location),
		nullString(event.VKSLink), nullString(event.Description), string(event.Status),
		nullString(event.RegionName), event.IsMultiDay, nullString(event.BookingRequestID),
		time.Now().UTC().Format(time.RFC3339), event.ID,
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

	if _, err := tx.ExecContext(ctx, `DELETE FROM event_responsible WHERE event_id = ?`, event.ID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM event_reminders WHERE event_id = ?`, event.ID); err != nil {
		return err
	}
	if err := insertEventDependents(ctx, tx, event); err != nil {
		return err
	}
	return tx.Commit()
}

func insertEventDependents(ctx context.Context, tx *sql.Tx, event schedule.Event) error {
	for _, person := range event.Responsible {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO event_responsible (event_id, person_id, name, position)
			VALUES (?, ?, ?, ?)`,
			event.ID, person.ID, person.Name, person.Position,
		); err != nil {
			return err
		}
	}
	for seq, reminder := range event.Reminders {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO event_reminders (event_id, seq, reminder_text) VALUES (?, ?, ?)`,
			event.ID, seq, reminder,
		); err != nil {
			return err
		}
	}
	return nil
}

// GetEvent loads a single event with its snapshots and reminders.
func (r *EventRepository) GetEvent(ctx context.Context, id string) (schedule.Event, error) {
	row := r.db.conn.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	event, err := scanEvent(row)
	if err != nil {
		return schedule.Event{}, mapError(err)
	}
	if err := r.loadDependents(ctx, &event); err != nil {
		return schedule.Event{}, err
	}
	return event, nil
}

// ListEvents returns all events ordered by date and time descending, the
// order the original directory served them in.
func (r *EventRepository) ListEvents(ctx context.Context) ([]schedule.Event, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY date DESC, time DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []schedule.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range events {
		if err := r.loadDependents(ctx, &events[i]); err != nil {
			return nil, err
		}
	}
	return events, nil
}

// DeleteEvent removes the event; dependents cascade.
func (r *EventRepository) DeleteEvent(ctx context.Context, id string) error {
	result, err := r.db.conn.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return err
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

func (r *EventRepository) loadDependents(ctx context.Context, event *schedule.Event) error {
	rows, err := r.db.conn.QueryContext(ctx, `
		SELECT person_id, name, position FROM event_responsible WHERE event_id = ? ORDER BY name`,
		event.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var person schedule.Person
		if err := rows.Scan(&person.ID, &person.Name, &person.Position); err != nil {
			return err
		}
		event.Responsible = append(event.Responsible, person)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	reminderRows, err := r.db.conn.QueryContext(ctx, `
		SELECT reminder_text FROM event_reminders WHERE event_id = ? ORDER BY seq`, event.ID)
	if err != nil {
		return err
	}
	defer reminderRows.Close()
	for reminderRows.Next() {
		var reminder string
		if err := reminderRows.Scan(&reminder); err != nil {
			return err
		}
		event.Reminders = append(event.Reminders, reminder)
	}
	return reminderRows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (schedule.Event, error) {
	var (
		event                                                    schedule.Event
		eventType, status, createdAt                             string
		endTime, endDate, location, vksLink, description         sql.NullString
		regionName, bookingRequestID                             sql.NullString
	)
	err := row.Scan(&event.ID, &event.Title, &eventType, &event.Date, &event.Time,
		&endTime, &endDate, &location, &vksLink, &description, &status,
		&regionName, &event.IsMultiDay, &bookingRequestID, &createdAt)
	if err != nil {
		return schedule.Event{}, err
	}
	event.Type = schedule.EventType(eventType)
	event.Status = schedule.EventStatus(status)
	event.EndTime = endTime.String
	event.EndDate = endDate.String
	event.Location = location.String
	event.VKSLink = vksLink.String
	event.Description = description.String
	event.RegionName = regionName.String
	event.BookingRequestID = bookingRequestID.String
	if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
		event.CreatedAt = ts
	}
	return event, nil
}
