package audit

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// Channel carries change notifications for the sales table.
const Channel = "sales.events"

type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

type Event struct {
	Action            Action    `json:"action"`
	SaleID            int64     `json:"sale_id"`
	TransactionNumber string    `json:"transaction_number"`
	ActorID           int64     `json:"actor_id"`
	OccurredAt        time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

// RedisPublisher fans sale changes out over pub/sub. Delivery is fire and
// forget: a failed publish is logged and dropped, matching the audit
// trail's no-replay contract.
type RedisPublisher struct {
	rdb *redis.Client
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

func (p *RedisPublisher) Publish(ctx context.Context, ev Event) {
	if p == nil || p.rdb == nil {
		return
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("audit: failed to encode event: %v", err)
		return
	}
	if err := p.rdb.Publish(ctx, Channel, payload).Err(); err != nil {
		log.Printf("audit: failed to publish event: %v", err)
	}
}
