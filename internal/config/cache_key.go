package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ExamAnswerKey returns the cache key for an exam's answer-key hash
// (question id -> correct letter).
func (r *CacheKeyStruct) ExamAnswerKey(examID string) string {
	return fmt.Sprintf("exam:%s:answer_key", examID)
}

var CacheKey = NewCacheKeyStruct()
