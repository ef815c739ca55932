package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// QuestionListKey returns the cache key for a tenant's full question list.
func (r *CacheKeyStruct) QuestionListKey(tenantID string) string {
	return fmt.Sprintf("tenant:%s:questions", tenantID)
}

// QuestionEventsChannel returns the Redis PubSub channel name for a tenant's
// question change events.
func (r *CacheKeyStruct) QuestionEventsChannel(tenantID string) string {
	return fmt.Sprintf("tenant:%s:question_events", tenantID)
}

var CacheKey = NewCacheKeyStruct()
