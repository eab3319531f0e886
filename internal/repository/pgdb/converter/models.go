package converter

import "time"

// ProductModel представляет запись таблицы products в PostgreSQL
// вместе с именем категории из JOIN.
type ProductModel struct {
	ID           int64      `db:"id"`
	Name         string     `db:"name"`
	Price        int64      `db:"price"`
	Stock        int64      `db:"stock"`
	CategoryID   int64      `db:"category_id"`
	CategoryName string     `db:"category_name"`
	WhereToUse   string     `db:"where_to_use"`
	Description  string     `db:"description"`
	ImageKey     *string    `db:"image_key"`
	ImageURL     *string    `db:"image_url"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    *time.Time `db:"updated_at"`
}

// CategoryModel представляет запись таблицы categories в PostgreSQL.
type CategoryModel struct {
	ID         int64      `db:"id"`
	Name       string     `db:"name"`
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  *time.Time `db:"updated_at"`
	IsArchived bool       `db:"is_archived"`
}

// UserModel представляет запись таблицы users в PostgreSQL.
type UserModel struct {
	ID          int64     `db:"id"`
	UID         string    `db:"uid"`
	Name        string    `db:"name"`
	PhoneNumber string    `db:"phone_number"`
	Email       string    `db:"email"`
	Address     string    `db:"address"`
	CreatedAt   time.Time `db:"created_at"`
}

// AdminModel представляет запись таблицы admins в PostgreSQL.
type AdminModel struct {
	ID        int64     `db:"id"`
	UID       string    `db:"uid"`
	Name      string    `db:"name"`
	Phone     string    `db:"phone"`
	Email     string    `db:"email"`
	CreatedAt time.Time `db:"created_at"`
}

// OrderModel представляет запись таблицы orders в PostgreSQL.
type OrderModel struct {
	ID          int64     `db:"id"`
	UserID      int64     `db:"user_id"`
	UserUID     string    `db:"user_uid"`
	TotalAmount int64     `db:"total_amount"`
	CreatedAt   time.Time `db:"created_at"`
	Lines       []OrderLineModel
}

// OrderLineModel представляет запись таблицы order_lines в PostgreSQL.
type OrderLineModel struct {
	OrderID   int64 `db:"order_id"`
	LineNo    int   `db:"line_no"`
	ProductID int64 `db:"product_id"`
	Quantity  int64 `db:"quantity"`
	UnitPrice int64 `db:"unit_price"`
}

// OutboxEventModel представляет запись таблицы outbox_events в PostgreSQL.
type OutboxEventModel struct {
	ID          int64      `db:"id"`
	EventID     string     `db:"event_id"`
	EventType   string     `db:"event_type"`
	AggregateID int64      `db:"aggregate_id"`
	Payload     []byte     `db:"payload"`
	Status      string     `db:"status"`
	CreatedAt   time.Time  `db:"created_at"`
	ProcessedAt *time.Time `db:"processed_at"`
}
