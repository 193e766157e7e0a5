package model

import (
	"time"

	"github.com/google/uuid"
)

// Round is one shared round of golf. The author's username and display name are
// snapshotted onto the row at creation time so the feed renders without a profile
// lookup per round; the snapshot is allowed to go stale when the profile changes.
type Round struct {
	ID                 int64     `json:"id"`
	AuthorID           uuid.UUID `json:"author_id"`
	AuthorUsername     string    `json:"author_username"`
	AuthorDisplayName  string    `json:"author_display_name"`
	Title              string    `json:"title"`
	Score              int       `json:"score"`
	Holes              int       `json:"holes"`
	GreensInRegulation int       `json:"greens_in_regulation"`
	Likes              int64     `json:"likes"`
	CreatedAt          time.Time `json:"created_at"`
}
