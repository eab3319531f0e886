package domain

import "time"

// Product описывает товар каталога
type Product struct {
	ID          int64
	Name        string
	Price       int64 // Цена хранится в копейках
	Stock       int64 // Количество единиц, доступных к продаже
	CategoryID  int64
	Category    string
	WhereToUse  string
	Description string
	Image       *ImageRef
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// ImageRef: ссылка на изображение товара в объектном хранилище.
type ImageRef struct {
	Key string // ключ объекта в бакете
	URL string // публичный адрес
}

func NewProduct(name string, price int64, stock int64, categoryID int64, whereToUse string, description string, image *ImageRef) *Product {
	return &Product{
		Name:        name,
		Price:       price,
		Stock:       stock,
		CategoryID:  categoryID,
		WhereToUse:  whereToUse,
		Description: description,
		Image:       image,
	}
}
