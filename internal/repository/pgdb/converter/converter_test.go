package converter

import (
	"testing"
	"time"

	"github.com/marble-shop/go-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductConverter_ImageIsOptional(t *testing.T) {
	conv := ProductConverterImpl{}

	model := conv.ToModel(&domain.Product{ID: 1, Name: "Onyx"})
	assert.Nil(t, model.ImageKey)
	assert.Nil(t, conv.ToEntity(model).Image)

	key := "Onyx/1.jpg"
	model.ImageKey = &key
	entity := conv.ToEntity(model)
	require.NotNil(t, entity.Image)
	assert.Equal(t, key, entity.Image.Key)
	assert.Empty(t, entity.Image.URL)
}

func TestOrderConverter_NumbersLines(t *testing.T) {
	order := &domain.Order{
		ID:          9,
		UserID:      3,
		TotalAmount: 700,
		CreatedAt:   time.Unix(1700000000, 0).UTC(),
		Lines: []domain.OrderLine{
			{ProductID: 1, Quantity: 2, UnitPrice: 100},
			{ProductID: 2, Quantity: 1, UnitPrice: 500},
		},
	}

	model := OrderConverterImpl{}.ToModel(order)
	require.Len(t, model.Lines, 2)
	assert.Equal(t, 1, model.Lines[0].LineNo)
	assert.Equal(t, 2, model.Lines[1].LineNo)
	assert.Equal(t, int64(9), model.Lines[1].OrderID)

	assert.Equal(t, order, OrderConverterImpl{}.ToEntity(model))
}
