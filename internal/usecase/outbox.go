package usecase

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/marble-shop/go-backend/internal/domain"
)

type OutboxStatus string

const (
	Pending    OutboxStatus = "pending"
	Processing OutboxStatus = "processing"
	Processed  OutboxStatus = "processed"
)

type OutboxEventType string

const (
	EventOrderPlaced OutboxEventType = "order.placed"
)

// OutboxEvent: событие, записанное в той же транзакции, что и изменение данных.
// Отправкой в Kafka занимается outbox-воркер.
type OutboxEvent struct {
	ID          int64
	EventID     string
	EventType   OutboxEventType
	AggregateID int64
	Payload     []byte
	Status      OutboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// AggregateKey: ключ партиционирования в Kafka.
func (o *OutboxEvent) AggregateKey() string {
	return strconv.FormatInt(o.AggregateID, 10)
}

// OrderPlacedPayload: тело события order.placed.
type OrderPlacedPayload struct {
	OrderID     int64             `json:"order_id"`
	UserUID     string            `json:"user_uid"`
	Lines       []OrderPlacedLine `json:"lines"`
	TotalAmount int64             `json:"total_amount"`
	PlacedAt    time.Time         `json:"placed_at"`
}

type OrderPlacedLine struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
	UnitPrice int64 `json:"unit_price"`
}

func NewOrderPlacedEvent(order *domain.Order) (*OutboxEvent, error) {
	lines := make([]OrderPlacedLine, len(order.Lines))
	for i, l := range order.Lines {
		lines[i] = OrderPlacedLine{ProductID: l.ProductID, Quantity: l.Quantity, UnitPrice: l.UnitPrice}
	}

	payload, err := json.Marshal(OrderPlacedPayload{
		OrderID:     order.ID,
		UserUID:     order.UserUID,
		Lines:       lines,
		TotalAmount: order.TotalAmount,
		PlacedAt:    order.CreatedAt,
	})
	if err != nil {
		return nil, err
	}

	return &OutboxEvent{
		EventID:     uuid.NewString(),
		EventType:   EventOrderPlaced,
		AggregateID: order.ID,
		Payload:     payload,
		Status:      Pending,
		CreatedAt:   time.Now().UTC(),
	}, nil
}
