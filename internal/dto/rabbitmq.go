package dto

import (
	"time"

	"github.com/google/uuid"
)

type MQRoundCreatedMsg struct {
	RoundID   int64     `json:"round_id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}
