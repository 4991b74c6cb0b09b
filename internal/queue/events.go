package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types on the article stream
const (
	EventArticleCreated = "article_created"
	EventArticleDeleted = "article_deleted"
)

const (
	StreamArticles = "stream:articles"

	// ConsumerGroupFeed is the group of workers maintaining feed caches
	ConsumerGroupFeed = "feed_workers"

	// StreamMaxLen bounds the stream; older entries are trimmed approximately
	StreamMaxLen = 10000
)

// ArticleEvent is published after an article write commits.
type ArticleEvent struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"` // unix millis when published

	ArticleID string `json:"article_id"`
	AuthorID  string `json:"author_id"`
	// CreatedAt is the article's creation time in unix millis, the feed score
	CreatedAt int64 `json:"created_at,omitempty"`
}

func NewArticleCreatedEvent(articleID, authorID string, createdAt time.Time) ArticleEvent {
	return ArticleEvent{
		Type:      EventArticleCreated,
		Timestamp: time.Now().UnixMilli(),
		ArticleID: articleID,
		AuthorID:  authorID,
		CreatedAt: createdAt.UnixMilli(),
	}
}

func NewArticleDeletedEvent(articleID, authorID string) ArticleEvent {
	return ArticleEvent{
		Type:      EventArticleDeleted,
		Timestamp: time.Now().UnixMilli(),
		ArticleID: articleID,
		AuthorID:  authorID,
	}
}

// ToMap serializes the event into a single "data" field for XADD.
func (e ArticleEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseArticleEvent parses an event from stream message values.
func ParseArticleEvent(values map[string]interface{}) (ArticleEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return ArticleEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event ArticleEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return ArticleEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	if event.ArticleID == "" || event.AuthorID == "" {
		return ArticleEvent{}, fmt.Errorf("event %q missing article or author id", event.Type)
	}
	return event, nil
}
