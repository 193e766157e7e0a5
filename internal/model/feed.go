package model

type FeedItemKind string

const (
	FeedItemRound FeedItemKind = "round"
	FeedItemPromo FeedItemKind = "promo"
)

// FeedItem is one slot in an assembled feed: either a round, or a promotional
// placeholder whose content is resolved by the promotional provider downstream.
type FeedItem struct {
	Kind  FeedItemKind `json:"kind"`
	Round *Round       `json:"round,omitempty"`
	Promo *PromoSlot   `json:"promo,omitempty"`
}

type PromoSlot struct {
	Position int `json:"position"`
}

// CourseGroup is the by-course view of a user's rounds. Stats are derived from
// the grouped rounds on every read and never persisted.
type CourseGroup struct {
	Course       string   `json:"course"`
	BestScore    int      `json:"best_score"`
	AverageScore float64  `json:"average_score"`
	TotalRounds  int      `json:"total_rounds"`
	Rounds       []*Round `json:"rounds"`
}
