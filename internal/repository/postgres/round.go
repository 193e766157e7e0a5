package postgres

import (
	"context"
	"time"

	"github.com/TeeMe/round-service/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type roundRepo struct {
	db *pgxpool.Pool
}

func newRoundRepo(db *pgxpool.Pool) Round {
	return &roundRepo{
		db: db,
	}
}

func (r *roundRepo) Create(ctx context.Context, round model.Round) (*model.Round, error) {
	round.CreatedAt = time.Now()
	round.Likes = 0
	if err := r.db.QueryRow(
		ctx,
		`INSERT INTO rounds(author_id, author_username, author_display_name, title, score, holes, greens_in_regulation, likes, created_at)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		round.AuthorID,
		round.AuthorUsername,
		round.AuthorDisplayName,
		round.Title,
		round.Score,
		round.Holes,
		round.GreensInRegulation,
		round.Likes,
		round.CreatedAt,
	).Scan(&round.ID); err != nil {
		return nil, err
	}

	return &round, nil
}

func (r *roundRepo) FindByID(ctx context.Context, id int64) (*model.Round, error) {
	var round model.Round
	if err := r.db.QueryRow(
		ctx,
		`SELECT r.id, r.author_id, r.author_username, r.author_display_name, r.title, r.score, r.holes, r.greens_in_regulation, r.likes, r.created_at
		FROM rounds r
		WHERE r.id = $1`,
		id,
	).Scan(
		&round.ID,
		&round.AuthorID,
		&round.AuthorUsername,
		&round.AuthorDisplayName,
		&round.Title,
		&round.Score,
		&round.Holes,
		&round.GreensInRegulation,
		&round.Likes,
		&round.CreatedAt,
	); err != nil {
		return nil, err
	}

	return &round, nil
}

func (r *roundRepo) FindAuthorRounds(ctx context.Context, authorID uuid.UUID, limit int, offset int) ([]*model.Round, error) {
	maxLimit(&limit)

	rows, err := r.db.Query(
		ctx,
		`SELECT r.id, r.author_id, r.author_username, r.author_display_name, r.title, r.score, r.holes, r.greens_in_regulation, r.likes, r.created_at
		FROM rounds r
		WHERE r.author_id = $1
		ORDER BY r.created_at DESC
		LIMIT $2
		OFFSET $3`,
		authorID,
		limit,
		offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRounds(rows)
}

// FindAllAuthorRounds reads every round of one author, newest first. The
// by-course view aggregates over the full history, so no pagination here.
func (r *roundRepo) FindAllAuthorRounds(ctx context.Context, authorID uuid.UUID) ([]*model.Round, error) {
	rows, err := r.db.Query(
		ctx,
		`SELECT r.id, r.author_id, r.author_username, r.author_display_name, r.title, r.score, r.holes, r.greens_in_regulation, r.likes, r.created_at
		FROM rounds r
		WHERE r.author_id = $1
		ORDER BY r.created_at DESC`,
		authorID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRounds(rows)
}

// FindAll reads the whole rounds table in global recency order. The rounds
// table is the single feed collection, so one query replaces the per-author
// fan-out the mobile client used to do.
func (r *roundRepo) FindAll(ctx context.Context) ([]*model.Round, error) {
	rows, err := r.db.Query(
		ctx,
		`SELECT r.id, r.author_id, r.author_username, r.author_display_name, r.title, r.score, r.holes, r.greens_in_regulation, r.likes, r.created_at
		FROM rounds r
		ORDER BY r.created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRounds(rows)
}

func (r *roundRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, "DELETE FROM rounds WHERE id = $1", id)
	return err
}

// UpdateLikes is a last-write-wins overwrite. The caller computes the value
// from the like ledger; two concurrent writers can lose an increment.
func (r *roundRepo) UpdateLikes(ctx context.Context, id int64, likes int64) error {
	_, err := r.db.Exec(ctx, "UPDATE rounds SET likes = $1 WHERE id = $2", likes, id)
	return err
}

func (r *roundRepo) ReconcileLikes(ctx context.Context) error {
	_, err := r.db.Exec(
		ctx,
		"UPDATE rounds r SET likes = (SELECT COUNT(*) FROM round_likes l WHERE l.round_id = r.id)",
	)
	return err
}
