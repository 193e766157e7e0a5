package postgres

import (
	"context"

	"github.com/TeeMe/round-service/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type likeRepo struct {
	db *pgxpool.Pool
}

func newLikeRepo(db *pgxpool.Pool) Like {
	return &likeRepo{
		db: db,
	}
}

// SetLiked is idempotent: liking an already-liked round and unliking a round
// that was never liked are both no-ops at the ledger level.
func (r *likeRepo) SetLiked(ctx context.Context, roundID int64, userID uuid.UUID, liked bool) error {
	if liked {
		_, err := r.db.Exec(
			ctx,
			"INSERT INTO round_likes(round_id, user_id) VALUES($1, $2) ON CONFLICT (round_id, user_id) DO NOTHING",
			roundID,
			userID,
		)
		return err
	}

	_, err := r.db.Exec(ctx, "DELETE FROM round_likes WHERE round_id = $1 AND user_id = $2", roundID, userID)
	return err
}

func (r *likeRepo) IsLiked(ctx context.Context, roundID int64, userID uuid.UUID) (bool, error) {
	var liked bool
	if err := r.db.QueryRow(
		ctx,
		"SELECT EXISTS(SELECT 1 FROM round_likes l WHERE l.round_id = $1 AND l.user_id = $2)",
		roundID,
		userID,
	).Scan(&liked); err != nil {
		return false, err
	}

	return liked, nil
}

func (r *likeRepo) CountLikes(ctx context.Context, roundID int64) (int64, error) {
	var count int64
	if err := r.db.QueryRow(
		ctx,
		"SELECT COUNT(*) FROM round_likes l WHERE l.round_id = $1",
		roundID,
	).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

func (r *likeRepo) FindUserLikes(ctx context.Context, userID uuid.UUID, limit int, offset int) ([]*model.Round, error) {
	maxLimit(&limit)

	rows, err := r.db.Query(
		ctx,
		`SELECT r.id, r.author_id, r.author_username, r.author_display_name, r.title, r.score, r.holes, r.greens_in_regulation, r.likes, r.created_at
		FROM rounds r
		JOIN round_likes l ON r.id = l.round_id
		WHERE l.user_id = $1
		ORDER BY r.created_at DESC
		LIMIT $2
		OFFSET $3`,
		userID,
		limit,
		offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRounds(rows)
}
