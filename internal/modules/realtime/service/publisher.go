package service

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const channelPrefix = "safereport:"

// Channel names a client may subscribe to.
const (
	ChannelReports       = "reports"
	ChannelAnnouncements = "announcements"
)

func ReportChannel(id uuid.UUID) string {
	return "report:" + id.String()
}

func CommentsChannel(reportID uuid.UUID) string {
	return "report_comments:" + reportID.String()
}

// RedisChannel maps a public channel name to its redis channel.
func RedisChannel(name string) string {
	return channelPrefix + name
}

// ParseReportChannel extracts the report id from report:<id> and
// report_comments:<id> channel names.
func ParseReportChannel(name string) (uuid.UUID, bool) {
	for _, prefix := range []string{"report:", "report_comments:"} {
		if rest, ok := strings.CutPrefix(name, prefix); ok {
			id, err := uuid.Parse(rest)
			return id, err == nil
		}
	}
	return uuid.Nil, false
}

// Event tells subscribers a row changed so they can re-fetch.
type Event struct {
	Table  string `json:"table"`
	Action string `json:"action"`
	ID     string `json:"id"`
}

type Publisher interface {
	Publish(ctx context.Context, channel string, event Event)
}

type redisPublisher struct {
	redisClient *redis.Client
}

// NewPublisher publishes over redis pub/sub. With a nil client events are
// dropped.
func NewPublisher(redisClient *redis.Client) Publisher {
	return &redisPublisher{redisClient: redisClient}
}

func (p *redisPublisher) Publish(ctx context.Context, channel string, event Event) {
	if p.redisClient == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return
	}

	if err := p.redisClient.Publish(ctx, RedisChannel(channel), payload).Err(); err != nil {
		log.Printf("Realtime publish to %s failed: %v", channel, err)
	}
}
