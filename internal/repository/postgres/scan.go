package postgres

import (
	"github.com/TeeMe/round-service/internal/model"
	"github.com/jackc/pgx/v5"
)

func scanRounds(rows pgx.Rows) ([]*model.Round, error) {
	var rounds []*model.Round
	for rows.Next() {
		var round model.Round
		if err := rows.Scan(
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

		rounds = append(rounds, &round)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rounds, nil
}
