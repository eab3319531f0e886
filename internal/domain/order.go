package domain

import "time"

// OrderLine: позиция заказа. UnitPrice фиксируется в момент коммита.
type OrderLine struct {
	ProductID int64
	Quantity  int64
	UnitPrice int64
}

// Amount возвращает стоимость позиции в копейках.
func (l OrderLine) Amount() int64 {
	return l.UnitPrice * l.Quantity
}

// Order: оформленный заказ. После создания не изменяется.
type Order struct {
	ID          int64
	UserID      int64
	UserUID     string
	Lines       []OrderLine
	TotalAmount int64
	CreatedAt   time.Time
}

func NewOrder(userID int64, userUID string, lines []OrderLine, total int64) *Order {
	return &Order{
		UserID:      userID,
		UserUID:     userUID,
		Lines:       lines,
		TotalAmount: total,
	}
}

// OrderDetails: заказ с раскрытыми товарами и покупателем, для чтения.
type OrderDetails struct {
	Order
	User     User
	Products map[int64]Product
}

// PlacementState: состояние обработки одного запроса на оформление заказа.
type PlacementState string

const (
	PlacementReceived   PlacementState = "received"
	PlacementValidating PlacementState = "validating"
	PlacementCommitting PlacementState = "committing"
	PlacementCommitted  PlacementState = "committed"
	PlacementRejected   PlacementState = "rejected"
)

// Terminal сообщает, что из состояния больше нет переходов.
func (s PlacementState) Terminal() bool {
	return s == PlacementCommitted || s == PlacementRejected
}
