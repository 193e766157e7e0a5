package redisrepo

import "fmt"

const (
	ROUND_KEY         = "round:%d"              // <roundID>
	AUTHOR_ROUNDS_KEY = "author:%s-rounds:%d:%d" // <authorID>:<limit>:<offset>
	USER_LIKES_KEY    = "user:%s-likes:%d:%d"   // <userID>:<limit>:<offset>
	USER_CACHE_KEY    = "user-cache:%s"         // <userID>
	GLOBAL_FEED_KEY   = "feed:global"
)

func RoundKey(roundID int64) string {
	return fmt.Sprintf(ROUND_KEY, roundID)
}

func AuthorRoundsKey(authorID string, limit int, offset int) string {
	return fmt.Sprintf(AUTHOR_ROUNDS_KEY, authorID, limit, offset)
}

func UserLikesKey(userID string, limit int, offset int) string {
	return fmt.Sprintf(USER_LIKES_KEY, userID, limit, offset)
}

func UserCacheKey(userID string) string {
	return fmt.Sprintf(USER_CACHE_KEY, userID)
}

func GlobalFeedKey() string {
	return GLOBAL_FEED_KEY
}
