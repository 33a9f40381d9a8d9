// internal/events/publisher.go
//
// 將已提交的帳本紀錄發佈到 Redis pub/sub 頻道，供下游（通知、對帳）訂閱。
// 發佈是盡力而為：失敗只回傳錯誤並由呼叫端記錄，帳本本身不受影響。

package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bankledger/internal/bank"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const EventLedgerRecord = "ledger.record"

// Event 為單筆帳本紀錄的對外格式。
type Event struct {
	EventType      string          `json:"event_type"`
	TransactionID  string          `json:"transaction_id"`
	AccountID      string          `json:"account_id"`
	Type           string          `json:"transaction_type"`
	Label          string          `json:"label"`
	Amount         decimal.Decimal `json:"amount"`
	BalanceAfter   decimal.Decimal `json:"balance_after"`
	CounterAccount string          `json:"counter_account,omitempty"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

// FromTransaction 將帳本紀錄轉為事件。
func FromTransaction(t bank.Transaction) Event {
	return Event{
		EventType:      EventLedgerRecord,
		TransactionID:  t.ID,
		AccountID:      t.AccountID,
		Type:           string(t.Type),
		Label:          t.Label(),
		Amount:         t.Amount,
		BalanceAfter:   t.BalanceAfter,
		CounterAccount: t.CounterID,
		OccurredAt:     t.Time,
	}
}

// Publisher 發佈一次操作新增的帳本紀錄。
type Publisher interface {
	Publish(ctx context.Context, recs []bank.Transaction) error
}

// NopPublisher 不做任何事；未設定 Redis 時使用。
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, []bank.Transaction) error { return nil }

// pubsub 為 *redis.Client 中本套件用到的部分。
type pubsub interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisPublisher 以 JSON 將每筆紀錄發佈到指定頻道。
type RedisPublisher struct {
	rdb     pubsub
	channel string
	log     *zap.Logger
}

func NewRedisPublisher(rdb *redis.Client, channel string, log *zap.Logger) *RedisPublisher {
	return newRedisPublisher(rdb, channel, log)
}

func newRedisPublisher(rdb pubsub, channel string, log *zap.Logger) *RedisPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisPublisher{rdb: rdb, channel: channel, log: log}
}

// Publish 依序發佈；遇到第一個錯誤即停止並回傳。
func (p *RedisPublisher) Publish(ctx context.Context, recs []bank.Transaction) error {
	for _, t := range recs {
		payload, err := json.Marshal(FromTransaction(t))
		if err != nil {
			return fmt.Errorf("marshal event %s: %w", t.ID, err)
		}
		if err := p.rdb.Publish(ctx, p.channel, payload).Err(); err != nil {
			return fmt.Errorf("publish event %s: %w", t.ID, err)
		}
		p.log.Debug("ledger event published",
			zap.String("channel", p.channel),
			zap.String("transaction_id", t.ID),
			zap.String("type", string(t.Type)))
	}
	return nil
}
