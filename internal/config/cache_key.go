package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserSessionKey returns the cache key for a user's login session.
func (r *CacheKeyStruct) UserSessionKey(userID int) string {
	return fmt.Sprintf("login:%d", userID)
}

// CourseMaterialsKey returns the cache key for a course's approved materials listing.
func (r *CacheKeyStruct) CourseMaterialsKey(courseID string) string {
	return fmt.Sprintf("course:%s:materials", courseID)
}

// CourseModerationChannel returns the Redis PubSub channel name for a course's
// moderation events.
func (r *CacheKeyStruct) CourseModerationChannel(courseID string) string {
	return fmt.Sprintf("course:%s:moderation", courseID)
}

var CacheKey = NewCacheKeyStruct()
