package domain

import (
	"math"

	"github.com/marble-shop/go-backend/pkg/e"
)

// LineRequest: запрошенная покупателем позиция.
type LineRequest struct {
	ProductID int64
	Quantity  int64
}

// StockDecrement: отложенное списание остатка по одному товару.
type StockDecrement struct {
	ProductID int64
	Quantity  int64
}

// Ledger: результат проверки остатков и расчёта стоимости.
// Lines повторяют порядок запроса, Decrements сгруппированы по товару
// в порядке первого появления.
type Ledger struct {
	Lines      []OrderLine
	Decrements []StockDecrement
	Total      int64
}

// BuildLedger проверяет, что остатков хватает на все позиции, и считает сумму.
// Ничего не сохраняет, поэтому безопасно вызывается повторно на свежем снимке товаров.
// Несколько позиций одного товара проверяются по суммарному количеству.
func BuildLedger(products map[int64]Product, lines []LineRequest) (*Ledger, error) {
	ledger := &Ledger{
		Lines:      make([]OrderLine, 0, len(lines)),
		Decrements: make([]StockDecrement, 0, len(lines)),
	}

	idx := make(map[int64]int, len(lines))
	for _, line := range lines {
		product, ok := products[line.ProductID]
		if !ok {
			return nil, e.Detail(e.ErrProductNotFound, "product %d not found", line.ProductID)
		}
		if line.Quantity <= 0 {
			return nil, e.Detail(e.ErrInvalidRequest, "quantity for product %d must be positive", line.ProductID)
		}

		i, seen := idx[line.ProductID]
		if !seen {
			i = len(ledger.Decrements)
			idx[line.ProductID] = i
			ledger.Decrements = append(ledger.Decrements, StockDecrement{ProductID: line.ProductID})
		}

		requested := ledger.Decrements[i].Quantity + line.Quantity
		if requested > product.Stock {
			return nil, e.Detail(e.ErrInsufficientStock,
				"not enough stock for %s (product %d: available %d, requested %d)",
				product.Name, product.ID, product.Stock, requested)
		}
		ledger.Decrements[i].Quantity = requested

		orderLine := OrderLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: product.Price,
		}
		if product.Price > 0 && line.Quantity > (math.MaxInt64-ledger.Total)/product.Price {
			return nil, e.Detail(e.ErrInvalidRequest, "order amount overflows for product %d", line.ProductID)
		}

		ledger.Total += orderLine.Amount()
		ledger.Lines = append(ledger.Lines, orderLine)
	}

	return ledger, nil
}

// DecrementIDs возвращает идентификаторы товаров, по которым будет списание.
func (l *Ledger) DecrementIDs() []int64 {
	ids := make([]int64, len(l.Decrements))
	for i, d := range l.Decrements {
		ids[i] = d.ProductID
	}
	return ids
}
