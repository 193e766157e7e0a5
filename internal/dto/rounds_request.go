package dto

// CreateRoundRequest carries the round fields as the client submits them.
// Score, holes and greens in regulation arrive as free-form strings and are
// validated by the service before anything reaches the store.
type CreateRoundRequest struct {
	Title              string `json:"title" binding:"required,min=2"`
	Score              string `json:"score" binding:"required"`
	Holes              string `json:"holes" binding:"required"`
	GreensInRegulation string `json:"greens_in_regulation" binding:"required"`
}

type GetRoundsRequest struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type UpdateLikesRequest struct {
	Likes int64 `json:"likes"`
}
