package usecase

import (
	"github.com/marble-shop/go-backend/internal/domain"
)

// PRODUCT USECASE

// AddProductReq: запрос на добавление нового товара.
type AddProductReq struct {
	Name         string
	CategoryName string
	Price        int64 // в копейках
	Stock        int64
	WhereToUse   string
	Description  string
	Images       []ProductImage
}

// ProductImage представляет изображение, загруженное через multipart/form-data.
type ProductImage struct {
	Data     []byte // байты изображения
	MimeType string // Content-Type, определённый по содержимому (image/jpeg)
	Size     int64  // фактический размер в байтах
	Name     string // оригинальное имя файла
}

// GetProductsReq запрос информации о продуктах по их идентификаторам.
type GetProductsReq struct {
	IDs []int64
}

// GetProductsRes: ответ с данными запрошенных продуктов.
type GetProductsRes struct {
	Products         []ProductInfo
	NotFoundProducts []int64
}

// ProductInfo: DTO с информацией о продукте для внешнего использования и кэша.
type ProductInfo struct {
	ID           int64
	Name         string
	CategoryName string
	Price        int64
	Stock        int64
	WhereToUse   string
	Description  string
	ImageKey     string
	ImageURL     string
}

// CachedProducts: результат чтения кэша. Generations хранит счётчики инвалидаций
// всех запрошенных товаров на момент чтения, в том числе для промахов.
type CachedProducts struct {
	Products    map[int64]ProductInfo
	Generations map[int64]int64
}

// ORDER USECASE

// PlaceOrderReq: запрос на оформление заказа.
type PlaceOrderReq struct {
	UserUID string
	Lines   []domain.LineRequest
}

// USERS

type RegisterUserReq struct {
	UID         string
	Name        string
	PhoneNumber string
	Email       string
	Address     string
}

type RegisterAdminReq struct {
	UID   string
	Name  string
	Phone string
	Email string
}

// INFRASTRUCTURE

// WriteRawMessageReq: готовое к отправке в брокер событие.
type WriteRawMessageReq struct {
	Key       string
	EventType OutboxEventType
	EventID   string
	Payload   []byte
}

// UploadImagesRes: результат загрузки изображений (ключи в MinIO).
type UploadImagesRes struct {
	Images []domain.ImageRef
}

// UploadImagesReq: запрос на загрузку изображений товара.
type UploadImagesReq struct {
	Name   string
	Images []ProductImage
}

// Keys возвращает ключи загруженных объектов.
func (u *UploadImagesRes) Keys() []string {
	keys := make([]string, len(u.Images))
	for i, img := range u.Images {
		keys[i] = img.Key
	}
	return keys
}

// MAPPERS

func NewProductInfo(p *domain.Product) ProductInfo {
	info := ProductInfo{
		ID:           p.ID,
		Name:         p.Name,
		CategoryName: p.Category,
		Price:        p.Price,
		Stock:        p.Stock,
		WhereToUse:   p.WhereToUse,
		Description:  p.Description,
	}
	if p.Image != nil {
		info.ImageKey = p.Image.Key
		info.ImageURL = p.Image.URL
	}
	return info
}

func NewUploadImagesReq(name string, images []ProductImage) *UploadImagesReq {
	return &UploadImagesReq{
		Name:   name,
		Images: images,
	}
}

func NewUploadImagesRes(images []domain.ImageRef) *UploadImagesRes {
	return &UploadImagesRes{
		Images: images,
	}
}

func NewAddProductReq(name, category string, price, stock int64, whereToUse, description string, images []ProductImage) *AddProductReq {
	return &AddProductReq{
		Name:         name,
		CategoryName: category,
		Price:        price,
		Stock:        stock,
		WhereToUse:   whereToUse,
		Description:  description,
		Images:       images,
	}
}

func NewProductImage(data []byte, mimeType string, size int64, name string) *ProductImage {
	return &ProductImage{
		Data:     data,
		MimeType: mimeType,
		Size:     size,
		Name:     name,
	}
}

func NewGetProductsRes(pr []ProductInfo, notFoundProducts []int64) *GetProductsRes {
	return &GetProductsRes{
		Products:         pr,
		NotFoundProducts: notFoundProducts,
	}
}

func NewGetProductsReq(ids []int64) *GetProductsReq {
	return &GetProductsReq{ids}
}

func NewPlaceOrderReq(userUID string, lines []domain.LineRequest) *PlaceOrderReq {
	return &PlaceOrderReq{
		UserUID: userUID,
		Lines:   lines,
	}
}

func NewWriteRawMessageReq(event *OutboxEvent) *WriteRawMessageReq {
	return &WriteRawMessageReq{
		Key:       event.AggregateKey(),
		EventType: event.EventType,
		EventID:   event.EventID,
		Payload:   event.Payload,
	}
}
