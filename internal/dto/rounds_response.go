package dto

import "github.com/TeeMe/round-service/internal/model"

type GetRound struct {
	Round   model.Round `json:"round"`
	IsLiked bool        `json:"is_liked"`
}
