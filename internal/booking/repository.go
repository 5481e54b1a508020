package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CheckFunc inspects the active bookings that intersect a window and vetoes a write by
// returning an error.
type CheckFunc func(active []*Booking) error

// Repository is the reservation ledger. It enforces no overlap policy of its own; Reserve
// and Reschedule run the caller's check and the write as one atomic unit.
type Repository interface {
	Add(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	// Update writes attendee, location and responses. Cancelled bookings are refused with
	// ErrBookingCancelled.
	Update(ctx context.Context, b *Booking) error
	// SetStatus moves the booking to status. With from given, the write only happens while
	// the stored status is one of them; otherwise the stored booking comes back unchanged
	// and the bool is false.
	SetStatus(ctx context.Context, id string, status Status, reason *string, from ...Status) (*Booking, bool, error)
	// AppendReminder adds a receipt in one step. It fails with ErrBookingCancelled or
	// ErrReminderOutOfOrder instead of writing.
	AppendReminder(ctx context.Context, id string, sentAt time.Time) (*Booking, error)
	ListByDateRange(ctx context.Context, meetingTypeID string, from, to time.Time, allStatuses bool) ([]*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	CountActiveByMeetingType(ctx context.Context, meetingTypeID string) (int, error)
	// GuardUsage runs fn with the active booking count of a meeting type while holding
	// the lock Reserve and Reschedule take for it.
	GuardUsage(ctx context.Context, meetingTypeID string, fn func(active int) error) error

	// Reserve lists the active bookings of b.MeetingTypeID intersecting [from, to), runs
	// check and inserts b only when check returns nil.
	Reserve(ctx context.Context, b *Booking, from, to time.Time, check CheckFunc) error
	// Reschedule is Reserve for an existing booking: b itself is left out of the listing
	// and b's schedule and metadata are written on success. Only pending bookings move;
	// others fail with ErrScheduleLocked or ErrBookingCancelled.
	Reschedule(ctx context.Context, b *Booking, from, to time.Time, check CheckFunc) error
}

var selectColumns = []string{
	"id", "meeting_type_id", "owner_id", "attendee", "start_time", "end_time", "status",
	"location", "responses", "cancellation_reason", "reminders_sent", "created_at", "updated_at",
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

type encodedBooking struct {
	attendee  []byte
	location  []byte
	responses []byte
}

func encode(b *Booking) (encodedBooking, error) {
	var (
		enc encodedBooking
		err error
	)
	if enc.attendee, err = json.Marshal(b.Attendee); err != nil {
		return enc, fmt.Errorf("encode attendee failed: %w", err)
	}
	if enc.location, err = json.Marshal(b.Location); err != nil {
		return enc, fmt.Errorf("encode location failed: %w", err)
	}
	responses := b.Responses
	if responses == nil {
		responses = map[string]string{}
	}
	if enc.responses, err = json.Marshal(responses); err != nil {
		return enc, fmt.Errorf("encode responses failed: %w", err)
	}
	return enc, nil
}

func scanBooking(row pgx.Row, extra ...any) (*Booking, error) {
	var (
		b                             Booking
		attendee, location, responses []byte
	)
	dest := []any{
		&b.ID, &b.MeetingTypeID, &b.OwnerID, &attendee, &b.StartTime, &b.EndTime, &b.Status,
		&location, &responses, &b.CancellationReason, &b.RemindersSent, &b.CreatedAt, &b.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(attendee, &b.Attendee); err != nil {
		return nil, fmt.Errorf("decode attendee failed: %w", err)
	}
	if err := json.Unmarshal(location, &b.Location); err != nil {
		return nil, fmt.Errorf("decode location failed: %w", err)
	}
	if err := json.Unmarshal(responses, &b.Responses); err != nil {
		return nil, fmt.Errorf("decode responses failed: %w", err)
	}
	return &b, nil
}

// mapWriteError turns a violated exclusion constraint into a scheduling conflict.
func mapWriteError(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ExclusionViolation {
		return ErrTimeConflict
	}
	return fmt.Errorf("%s failed: %w", op, err)
}

func insert(ctx context.Context, q querier, b *Booking) error {
	enc, err := encode(b)
	if err != nil {
		return err
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.bookings").
		Columns("meeting_type_id", "owner_id", "attendee", "start_time", "end_time", "status",
			"location", "responses", "cancellation_reason", "reminders_sent").
		Values(b.MeetingTypeID, b.OwnerID, enc.attendee, b.StartTime, b.EndTime, b.Status,
			enc.location, enc.responses, b.CancellationReason, remindersOrEmpty(b.RemindersSent)).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	if err := q.QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return mapWriteError(err, "create booking")
	}
	return nil
}

func remindersOrEmpty(ts []time.Time) []time.Time {
	if ts == nil {
		return []time.Time{}
	}
	return ts
}

func (r *pgxRepository) Add(ctx context.Context, b *Booking) error {
	return insert(ctx, r.pool, b)
}

func getByID(ctx context.Context, q querier, id string) (*Booking, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(selectColumns...).
		From("public.bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	return getByID(ctx, r.pool, id)
}

// write persists b's metadata, plus its schedule when withSchedule is set. The status
// guard is part of the statement so a concurrent approve or cancel is never overwritten.
func write(ctx context.Context, q querier, b *Booking, withSchedule bool) error {
	enc, err := encode(b)
	if err != nil {
		return err
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	builder := psql.Update("public.bookings").
		Set("attendee", enc.attendee).
		Set("location", enc.location).
		Set("responses", enc.responses).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": b.ID})
	if withSchedule {
		builder = builder.
			Set("meeting_type_id", b.MeetingTypeID).
			Set("start_time", b.StartTime).
			Set("end_time", b.EndTime).
			Where(squirrel.Eq{"status": StatusPending})
	} else {
		builder = builder.Where(squirrel.NotEq{"status": StatusCancelled})
	}

	query, args, err := builder.
		Suffix("RETURNING " + strings.Join(selectColumns, ", ")).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update booking query failed: %w", err)
	}

	stored, err := scanBooking(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return explainSkippedWrite(ctx, q, b.ID)
		}
		return mapWriteError(err, "update booking")
	}
	*b = *stored
	return nil
}

// explainSkippedWrite reports why a guarded write of id matched no row.
func explainSkippedWrite(ctx context.Context, q querier, id string) error {
	current, err := getByID(ctx, q, id)
	if err != nil {
		return err
	}
	if current.Status == StatusCancelled {
		return ErrBookingCancelled
	}
	return ErrScheduleLocked
}

func (r *pgxRepository) Update(ctx context.Context, b *Booking) error {
	return write(ctx, r.pool, b, false)
}

func (r *pgxRepository) SetStatus(ctx context.Context, id string, status Status, reason *string, from ...Status) (*Booking, bool, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	builder := psql.Update("public.bookings").
		Set("status", status).
		Set("cancellation_reason", reason).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id})
	if len(from) > 0 {
		builder = builder.Where(squirrel.Eq{"status": from})
	}

	query, args, err := builder.
		Suffix("RETURNING " + strings.Join(selectColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("build set booking status query failed: %w", err)
	}

	b, err := scanBooking(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Unknown id, or the status guard did not match.
			current, err := r.GetByID(ctx, id)
			if err != nil {
				return nil, false, err
			}
			return current, false, nil
		}
		return nil, false, mapWriteError(err, "set booking status")
	}
	return b, true, nil
}

func (r *pgxRepository) AppendReminder(ctx context.Context, id string, sentAt time.Time) (*Booking, error) {
	sentAt = sentAt.UTC()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.bookings").
		Set("reminders_sent", squirrel.Expr("reminders_sent || ?::timestamptz", sentAt)).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.NotEq{"status": StatusCancelled}).
		Where(squirrel.Expr("(cardinality(reminders_sent) = 0 OR reminders_sent[cardinality(reminders_sent)] <= ?)", sentAt)).
		Suffix("RETURNING " + strings.Join(selectColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build append reminder query failed: %w", err)
	}

	b, err := scanBooking(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("append reminder failed: %w", err)
		}
		current, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if current.Status == StatusCancelled {
			return nil, ErrBookingCancelled
		}
		return nil, ErrReminderOutOfOrder
	}
	return b, nil
}

func listIntersecting(ctx context.Context, q querier, meetingTypeID string, from, to time.Time, allStatuses bool, excludeID string) ([]*Booking, error) {
	// Overlap: start < to AND end > from
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	builder := psql.Select(selectColumns...).
		From("public.bookings").
		Where(squirrel.Eq{"meeting_type_id": meetingTypeID}).
		Where(squirrel.Lt{"start_time": to}).
		Where(squirrel.Gt{"end_time": from})
	if !allStatuses {
		builder = builder.Where(squirrel.NotEq{"status": StatusCancelled})
	}
	if excludeID != "" {
		builder = builder.Where(squirrel.NotEq{"id": excludeID})
	}

	query, args, err := builder.OrderBy("start_time ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list bookings by range query failed: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings by range failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (r *pgxRepository) ListByDateRange(ctx context.Context, meetingTypeID string, from, to time.Time, allStatuses bool) ([]*Booking, error) {
	return listIntersecting(ctx, r.pool, meetingTypeID, from, to, allStatuses, "")
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(append(selectColumns, "count(*) OVER() as total_count")...).
		From("public.bookings")

	if filter.OwnerID != "" {
		query = query.Where(squirrel.Eq{"owner_id": filter.OwnerID})
	}
	if filter.MeetingTypeID != "" {
		query = query.Where(squirrel.Eq{"meeting_type_id": filter.MeetingTypeID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.From != nil {
		query = query.Where(squirrel.Gt{"end_time": *filter.From})
	}
	if filter.To != nil {
		query = query.Where(squirrel.Lt{"start_time": *filter.To})
	}

	orderDir := "ASC"
	if strings.EqualFold(filter.SortOrder, "desc") {
		orderDir = "DESC"
	}
	query = query.OrderBy("start_time "+orderDir, "id "+orderDir)

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize
	query = query.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var (
		bookings []*Booking
		total    int
	)
	for rows.Next() {
		b, err := scanBooking(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, total, rows.Err()
}

func countActive(ctx context.Context, q querier, meetingTypeID string) (int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("count(*)").
		From("public.bookings").
		Where(squirrel.Eq{"meeting_type_id": meetingTypeID}).
		Where(squirrel.NotEq{"status": StatusCancelled}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count bookings query failed: %w", err)
	}

	var n int
	if err := q.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count bookings failed: %w", err)
	}
	return n, nil
}

func (r *pgxRepository) CountActiveByMeetingType(ctx context.Context, meetingTypeID string) (int, error) {
	return countActive(ctx, r.pool, meetingTypeID)
}

// GuardUsage counts and runs fn inside the schedule lock of the meeting type. fn's own
// writes commit before the lock is released.
func (r *pgxRepository) GuardUsage(ctx context.Context, meetingTypeID string, fn func(active int) error) error {
	return r.withScheduleLock(ctx, meetingTypeID, func(tx pgx.Tx) error {
		n, err := countActive(ctx, tx, meetingTypeID)
		if err != nil {
			return err
		}
		return fn(n)
	})
}

// withScheduleLock runs fn in a transaction that holds the advisory lock of a meeting type,
// serializing every reservation against that meeting type.
func (r *pgxRepository) withScheduleLock(ctx context.Context, meetingTypeID string, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin transaction failed: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", meetingTypeID); err != nil {
		return fmt.Errorf("acquire schedule lock failed: %w", err)
	}

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return mapWriteError(err, "commit booking")
	}
	return nil
}

func (r *pgxRepository) Reserve(ctx context.Context, b *Booking, from, to time.Time, check CheckFunc) error {
	return r.withScheduleLock(ctx, b.MeetingTypeID, func(tx pgx.Tx) error {
		active, err := listIntersecting(ctx, tx, b.MeetingTypeID, from, to, false, "")
		if err != nil {
			return err
		}
		if err := check(active); err != nil {
			return err
		}
		return insert(ctx, tx, b)
	})
}

func (r *pgxRepository) Reschedule(ctx context.Context, b *Booking, from, to time.Time, check CheckFunc) error {
	return r.withScheduleLock(ctx, b.MeetingTypeID, func(tx pgx.Tx) error {
		current, err := getByID(ctx, tx, b.ID)
		if err != nil {
			return err
		}
		switch current.Status {
		case StatusCancelled:
			return ErrBookingCancelled
		case StatusConfirmed:
			return ErrScheduleLocked
		}

		active, err := listIntersecting(ctx, tx, b.MeetingTypeID, from, to, false, b.ID)
		if err != nil {
			return err
		}
		if err := check(active); err != nil {
			return err
		}
		return write(ctx, tx, b, true)
	})
}
