package queue

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Publisher appends article events to the stream.
type Publisher interface {
	Publish(ctx context.Context, event ArticleEvent) (messageID string, err error)
}

// RedisPublisher implements Publisher using Redis Streams.
type RedisPublisher struct {
	client *redis.Client
	stream string
}

func NewPublisher(client *redis.Client) Publisher {
	return &RedisPublisher{client: client, stream: StreamArticles}
}

// Publish runs XADD with an auto-generated id and approximate MAXLEN trimming.
func (p *RedisPublisher) Publish(ctx context.Context, event ArticleEvent) (string, error) {
	startTime := time.Now()

	values, err := event.ToMap()
	if err != nil {
		log.Printf("[Publisher] Publish FAILED: stream=%s type=%s err=%v", p.stream, event.Type, err)
		return "", fmt.Errorf("serialize event: %w", err)
	}

	messageID, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: StreamMaxLen,
		Approx: true,
		Values: values,
	}).Result()
	if err != nil {
		log.Printf("[Publisher] Publish FAILED: stream=%s type=%s err=%v", p.stream, event.Type, err)
		return "", fmt.Errorf("xadd to stream: %w", err)
	}

	log.Printf("[Publisher] Publish OK: stream=%s type=%s article=%s author=%s msgID=%s duration=%v",
		p.stream, event.Type, event.ArticleID, event.AuthorID, messageID, time.Since(startTime))
	return messageID, nil
}
