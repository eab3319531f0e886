package infrastructure

import (
	"testing"

	"github.com/marble-shop/go-backend/pkg/e"
	"github.com/stretchr/testify/assert"
)

func TestGetExtensionFromMIME(t *testing.T) {
	ext, err := GetExtensionFromMIME("image/jpeg")
	assert.NoError(t, err)
	assert.Equal(t, "jpg", ext)

	_, err = GetExtensionFromMIME("application/pdf")
	assert.ErrorIs(t, err, e.ErrUnsupportedMediaType)
}

func TestObjectPrefix(t *testing.T) {
	assert.Equal(t, "nero-marquina-60x60", ObjectPrefix("  Nero Marquina 60x60 "))
	assert.Equal(t, "мрамор-белый", ObjectPrefix("Мрамор / белый!"))
	assert.Equal(t, "product", ObjectPrefix("///"))
}
