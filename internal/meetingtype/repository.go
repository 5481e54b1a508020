package meetingtype

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, mt *MeetingType) error
	GetByID(ctx context.Context, id string) (*MeetingType, error)
	List(ctx context.Context, filter Filter) ([]*MeetingType, int, error)
	Update(ctx context.Context, mt *MeetingType) error
	Delete(ctx context.Context, id string) error
}

var selectColumns = []string{
	"id", "owner_id", "name", "description", "duration_minutes", "buffer_minutes",
	"price", "currency", "requires_approval", "is_active", "location", "questions", "color",
	"created_at", "updated_at",
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func encodeJSON(mt *MeetingType) (location, questions []byte, err error) {
	if location, err = json.Marshal(mt.Location); err != nil {
		return nil, nil, fmt.Errorf("encode location failed: %w", err)
	}
	qs := mt.Questions
	if qs == nil {
		qs = []Question{}
	}
	if questions, err = json.Marshal(qs); err != nil {
		return nil, nil, fmt.Errorf("encode questions failed: %w", err)
	}
	return location, questions, nil
}

func scanMeetingType(row pgx.Row) (*MeetingType, error) {
	var (
		mt        MeetingType
		location  []byte
		questions []byte
	)
	if err := row.Scan(
		&mt.ID, &mt.OwnerID, &mt.Name, &mt.Description, &mt.Duration, &mt.BufferTime,
		&mt.Price, &mt.Currency, &mt.RequiresApproval, &mt.IsActive, &location, &questions, &mt.Color,
		&mt.CreatedAt, &mt.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(location, &mt.Location); err != nil {
		return nil, fmt.Errorf("decode location failed: %w", err)
	}
	if err := json.Unmarshal(questions, &mt.Questions); err != nil {
		return nil, fmt.Errorf("decode questions failed: %w", err)
	}
	return &mt, nil
}

func (r *pgxRepository) Create(ctx context.Context, mt *MeetingType) error {
	location, questions, err := encodeJSON(mt)
	if err != nil {
		return err
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.meeting_types").
		Columns("owner_id", "name", "description", "duration_minutes", "buffer_minutes",
			"price", "currency", "requires_approval", "is_active", "location", "questions", "color").
		Values(mt.OwnerID, mt.Name, mt.Description, mt.Duration, mt.BufferTime,
			mt.Price, mt.Currency, mt.RequiresApproval, mt.IsActive, location, questions, mt.Color).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create meeting type query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&mt.ID, &mt.CreatedAt, &mt.UpdatedAt); err != nil {
		return fmt.Errorf("create meeting type failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*MeetingType, error) {
	// The id column is a uuid; anything else cannot name a row.
	if uuid.Validate(id) != nil {
		return nil, ErrNotFound
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(selectColumns...).
		From("public.meeting_types").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get meeting type query failed: %w", err)
	}

	mt, err := scanMeetingType(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get meeting type failed: %w", err)
	}
	return mt, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*MeetingType, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(append(selectColumns, "count(*) OVER() AS total_count")...).
		From("public.meeting_types")

	if filter.OwnerID != "" {
		query = query.Where(squirrel.Eq{"owner_id": filter.OwnerID})
	}
	if filter.ActiveOnly {
		query = query.Where(squirrel.Eq{"is_active": true})
	}

	// Insertion order
	query = query.OrderBy("seq ASC")

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
		return nil, 0, fmt.Errorf("build list meeting types query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list meeting types failed: %w", err)
	}
	defer rows.Close()

	var (
		result []*MeetingType
		total  int
	)
	for rows.Next() {
		var (
			mt        MeetingType
			location  []byte
			questions []byte
		)
		if err := rows.Scan(
			&mt.ID, &mt.OwnerID, &mt.Name, &mt.Description, &mt.Duration, &mt.BufferTime,
			&mt.Price, &mt.Currency, &mt.RequiresApproval, &mt.IsActive, &location, &questions, &mt.Color,
			&mt.CreatedAt, &mt.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan meeting type failed: %w", err)
		}
		if err := json.Unmarshal(location, &mt.Location); err != nil {
			return nil, 0, fmt.Errorf("decode location failed: %w", err)
		}
		if err := json.Unmarshal(questions, &mt.Questions); err != nil {
			return nil, 0, fmt.Errorf("decode questions failed: %w", err)
		}
		result = append(result, &mt)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate meeting types failed: %w", err)
	}

	return result, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, mt *MeetingType) error {
	location, questions, err := encodeJSON(mt)
	if err != nil {
		return err
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.meeting_types").
		Set("name", mt.Name).
		Set("description", mt.Description).
		Set("duration_minutes", mt.Duration).
		Set("buffer_minutes", mt.BufferTime).
		Set("price", mt.Price).
		Set("currency", mt.Currency).
		Set("requires_approval", mt.RequiresApproval).
		Set("is_active", mt.IsActive).
		Set("location", location).
		Set("questions", questions).
		Set("color", mt.Color).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": mt.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update meeting type query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&mt.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update meeting type failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.meeting_types").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete meeting type query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete meeting type failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
