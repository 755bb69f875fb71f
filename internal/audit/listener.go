// Package audit keeps a purely in-memory trail of sales changes. Records
// are never persisted: a restart starts the trail empty, and events missed
// while the listener was down are not replayed.
package audit

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"saleshub-system/internal/database/models"
)

const maxRecords = 500

type Record struct {
	ID                string    `json:"id"`
	SaleID            int64     `json:"sale_id"`
	TransactionNumber string    `json:"transaction_number"`
	Action            Action    `json:"action"`
	User              string    `json:"user"`
	Timestamp         time.Time `json:"timestamp"`
}

type Listener struct {
	db  *gorm.DB
	rdb *redis.Client

	mu      sync.Mutex
	records []Record
}

func NewListener(db *gorm.DB, rdb *redis.Client) *Listener {
	return &Listener{db: db, rdb: rdb}
}

// Run blocks consuming sale events until the context is cancelled.
func (l *Listener) Run(ctx context.Context) {
	if l.rdb == nil {
		log.Println("audit: no redis client, listener disabled")
		return
	}

	pubsub := l.rdb.Subscribe(ctx, Channel)
	defer pubsub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-pubsub.Channel():
			if !ok {
				return
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("audit: dropping malformed event: %v", err)
				continue
			}
			l.Apply(ctx, ev)
		}
	}
}

// Apply resolves the acting user and prepends a record, newest first.
func (l *Listener) Apply(ctx context.Context, ev Event) {
	ts := ev.OccurredAt
	if ts.IsZero() {
		ts = time.Now()
	}

	rec := Record{
		ID:                uuid.NewString(),
		SaleID:            ev.SaleID,
		TransactionNumber: ev.TransactionNumber,
		Action:            ev.Action,
		User:              l.resolveActor(ctx, ev.ActorID),
		Timestamp:         ts,
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append([]Record{rec}, l.records...)
	if len(l.records) > maxRecords {
		l.records = l.records[:maxRecords]
	}
}

// resolveActor falls back from display name to email to the raw id.
func (l *Listener) resolveActor(ctx context.Context, actorID int64) string {
	var user models.User
	if err := l.db.WithContext(ctx).First(&user, actorID).Error; err != nil {
		return strconv.FormatInt(actorID, 10)
	}
	if user.DisplayName != "" {
		return user.DisplayName
	}
	if user.Email != "" {
		return user.Email
	}
	return strconv.FormatInt(actorID, 10)
}

// Records returns a snapshot, newest first.
func (l *Listener) Records() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}
