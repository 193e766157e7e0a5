package model

import "github.com/google/uuid"

// CachedUser mirrors the identity provider's current profile for a user. It is
// kept in sync through the user_info_updated queue and stamps the author
// snapshot onto newly created rounds.
type CachedUser struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url"`
}
