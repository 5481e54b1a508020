package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Get(ctx context.Context, userID string) (*Profile, error)
	Upsert(ctx context.Context, p *Profile) error
	Delete(ctx context.Context, userID string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Get(ctx context.Context, userID string) (*Profile, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(
		"user_id", "name", "bio", "profile_image_id", "video_url", "resume_url",
		"services", "skills", "social_links", "contact", "testimonials", "published", "updated_at",
	).
		From("public.profiles").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get profile query failed: %w", err)
	}

	var p Profile
	var services, skills, socialLinks, contact, reviews []byte
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&p.UserID, &p.Name, &p.Bio, &p.ProfileImageID, &p.VideoURL, &p.ResumeURL,
		&services, &skills, &socialLinks, &contact, &reviews, &p.Published, &p.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get profile failed: %w", err)
	}

	for _, field := range []struct {
		raw []byte
		dst any
	}{
		{services, &p.Services},
		{skills, &p.Skills},
		{socialLinks, &p.SocialLinks},
		{contact, &p.Contact},
		{reviews, &p.Testimonials},
	} {
		if err := json.Unmarshal(field.raw, field.dst); err != nil {
			return nil, fmt.Errorf("decode profile failed: %w", err)
		}
	}
	return &p, nil
}

func (r *pgxRepository) Upsert(ctx context.Context, p *Profile) error {
	encoded := make([][]byte, 0, 5)
	for _, v := range []any{p.Services, p.Skills, p.SocialLinks, p.Contact, p.Testimonials} {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode profile failed: %w", err)
		}
		encoded = append(encoded, raw)
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.profiles").
		Columns("user_id", "name", "bio", "profile_image_id", "video_url", "resume_url",
			"services", "skills", "social_links", "contact", "testimonials", "published").
		Values(p.UserID, p.Name, p.Bio, p.ProfileImageID, p.VideoURL, p.ResumeURL,
			encoded[0], encoded[1], encoded[2], encoded[3], encoded[4], p.Published).
		Suffix(`ON CONFLICT (user_id) DO UPDATE SET
			name = EXCLUDED.name, bio = EXCLUDED.bio, profile_image_id = EXCLUDED.profile_image_id,
			video_url = EXCLUDED.video_url, resume_url = EXCLUDED.resume_url,
			services = EXCLUDED.services, skills = EXCLUDED.skills, social_links = EXCLUDED.social_links,
			contact = EXCLUDED.contact, testimonials = EXCLUDED.testimonials,
			published = EXCLUDED.published, updated_at = now()
			RETURNING updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert profile query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&p.UpdatedAt); err != nil {
		return fmt.Errorf("upsert profile failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, userID string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.profiles").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete profile query failed: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("delete profile failed: %w", err)
	}
	return nil
}
