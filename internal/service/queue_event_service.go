package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"smart-opd/internal/delivery/dto"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Queue event kinds published on the per-department channel.
const (
	QueueEventRegistered = "token_registered"
	QueueEventCalled     = "token_called"
	QueueEventCompleted  = "token_completed"
	QueueEventMissed     = "token_missed"
	QueueEventReset      = "queue_reset"
)

const (
	queueEventChannelPrefix = "queue:events:"
	liveQueueKeyPrefix      = "queue:live:"
)

// QueueEvent is the wire shape published to display boards and pollers.
type QueueEvent struct {
	Event       string      `json:"event"`
	Department  string      `json:"department"`
	TokenNumber int         `json:"token_number,omitempty"`
	Payload     interface{} `json:"payload,omitempty"`
	OccurredAt  time.Time   `json:"occurred_at"`
}

// QueueEventService fans queue changes out over Redis pub/sub and keeps the
// short-lived live-queue snapshot cache. Both are best-effort: a Redis outage
// must never fail the queue mutation that triggered the broadcast.
type QueueEventService struct {
	redisClient *redis.Client
	log         *logrus.Logger
	liveTTL     time.Duration
}

func NewQueueEventService(redisClient *redis.Client, log *logrus.Logger, liveTTL time.Duration) *QueueEventService {
	return &QueueEventService{
		redisClient: redisClient,
		log:         log,
		liveTTL:     liveTTL,
	}
}

// Publish broadcasts a queue event and drops the cached snapshot for the
// department, since it just went stale.
func (s *QueueEventService) Publish(ctx context.Context, department, event string, tokenNumber int, payload interface{}) {
	s.InvalidateLiveQueue(ctx, department)

	body, err := json.Marshal(QueueEvent{
		Event:       event,
		Department:  department,
		TokenNumber: tokenNumber,
		Payload:     payload,
		OccurredAt:  time.Now().UTC(),
	})
	if err != nil {
		s.log.Warnf("Failed to marshal queue event %s: %+v", event, err)
		return
	}

	channel := queueEventChannelPrefix + department
	if err := s.redisClient.Publish(ctx, channel, body).Err(); err != nil {
		s.log.Warnf("Failed to publish queue event to %s: %+v", channel, err)
	}
}

// CachedLiveQueue returns the cached snapshot for the department, if any.
func (s *QueueEventService) CachedLiveQueue(ctx context.Context, department string) (*dto.LiveQueueResponse, bool) {
	raw, err := s.redisClient.Get(ctx, liveQueueKey(department)).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.log.Warnf("Failed to read live queue cache: %+v", err)
		}
		return nil, false
	}

	var snapshot dto.LiveQueueResponse
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		s.log.Warnf("Failed to decode live queue cache: %+v", err)
		return nil, false
	}
	return &snapshot, true
}

// StoreLiveQueue caches a freshly built snapshot with the configured TTL.
func (s *QueueEventService) StoreLiveQueue(ctx context.Context, department string, snapshot *dto.LiveQueueResponse) {
	body, err := json.Marshal(snapshot)
	if err != nil {
		s.log.Warnf("Failed to marshal live queue snapshot: %+v", err)
		return
	}

	if err := s.redisClient.Set(ctx, liveQueueKey(department), body, s.liveTTL).Err(); err != nil {
		s.log.Warnf("Failed to store live queue cache: %+v", err)
	}
}

// InvalidateLiveQueue drops the cached snapshot for the department.
func (s *QueueEventService) InvalidateLiveQueue(ctx context.Context, department string) {
	if err := s.redisClient.Del(ctx, liveQueueKey(department)).Err(); err != nil {
		s.log.Warnf("Failed to invalidate live queue cache: %+v", err)
	}
}

func liveQueueKey(department string) string {
	return fmt.Sprintf("%s%s", liveQueueKeyPrefix, department)
}
