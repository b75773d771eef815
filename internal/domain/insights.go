package domain

import (
	"fmt"
	"regexp"
	"time"
)

// InsightTopic is the kind of natural-language insight requested.
type InsightTopic string

const (
	TopicDailyOverview InsightTopic = "daily_overview"
	TopicMetric        InsightTopic = "metric"
	TopicWeeklySummary InsightTopic = "weekly_summary"
	TopicTrend         InsightTopic = "trend"
	TopicLab           InsightTopic = "lab"
)

// ParseInsightTopic validates s against the closed set of topics.
func ParseInsightTopic(s string) (InsightTopic, error) {
	switch t := InsightTopic(s); t {
	case TopicDailyOverview, TopicMetric, TopicWeeklySummary, TopicTrend, TopicLab:
		return t, nil
	}
	return "", fmt.Errorf("%w: unknown insight topic %q", ErrInvalidInput, s)
}

// CacheKey identifies one logical insight request: "<topic>_<scope>".
type CacheKey string

var scopePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

// NewCacheKey builds the key for a topic and scope. No topic is a prefix of
// another topic followed by "_", so distinct (topic, scope) pairs never collide.
func NewCacheKey(topic InsightTopic, scope string) (CacheKey, error) {
	if _, err := ParseInsightTopic(string(topic)); err != nil {
		return "", err
	}
	if !scopePattern.MatchString(scope) {
		return "", fmt.Errorf("%w: invalid insight scope %q", ErrInvalidInput, scope)
	}
	return CacheKey(string(topic) + "_" + scope), nil
}

// CachedInsight is a previously generated text with the buckets and fingerprint
// it was produced under.
type CachedInsight struct {
	Key         string    `gorm:"type:varchar(128);primaryKey" json:"key"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	HourBucket  int       `gorm:"not null" json:"hour_bucket"`
	DayBucket   string    `gorm:"type:varchar(10);not null" json:"day_bucket"`
	Fingerprint uint64    `gorm:"not null" json:"fingerprint"`
	ProducedAt  time.Time `gorm:"not null" json:"produced_at"`
}

func (CachedInsight) TableName() string {
	return "cached_insights"
}

// InsightInput is one named numeric input that determines an insight's substance.
type InsightInput struct {
	Name  string  `json:"name" validate:"required,max=64"`
	Value float64 `json:"value"`
}

// InsightRequest asks for an insight on topic/scope derived from inputs.
type InsightRequest struct {
	Topic   InsightTopic   `json:"topic" validate:"required,insight_topic"`
	Scope   string         `json:"scope" validate:"required,max=64"`
	Inputs  []InsightInput `json:"inputs" validate:"max=64,dive"`
	Context string         `json:"context,omitempty" validate:"max=4000"`
}

// Insight is the text returned to the caller.
type Insight struct {
	Key      CacheKey `json:"key"`
	Text     string   `json:"text"`
	Cached   bool     `json:"cached"`
	Fallback bool     `json:"fallback"`
	TraceID  string   `json:"trace_id,omitempty"`
}
