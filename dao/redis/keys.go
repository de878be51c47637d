package redis

import "fmt"

// Key layout. Everything this service writes lives under the freesound:
// prefix.
const (
	KeyPrefix           = "freesound:"
	KeyUserAccessToken  = "active_access_token:"  // freesound:active_access_token:<user_id>
	KeyUserRefreshToken = "active_refresh_token:" // freesound:active_refresh_token:<user_id>
	KeySimilarityPrefix = "similarity:"           // freesound:similarity:<sound_id>:<preset>
)

func getRedisKey(key string) string {
	return KeyPrefix + key
}

func getSimilarityKey(soundID int64, preset string) string {
	return getRedisKey(fmt.Sprintf("%s%d:%s", KeySimilarityPrefix, soundID, preset))
}
