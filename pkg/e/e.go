package e

import (
	"errors"
	"fmt"
)

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// Ошибки оформления заказа
	ErrInvalidRequest     = fmt.Errorf("invalid request")
	ErrUserNotFound       = fmt.Errorf("user not found")
	ErrProductNotFound    = fmt.Errorf("product not found")
	ErrInsufficientStock  = fmt.Errorf("insufficient stock")
	ErrStockConflict      = fmt.Errorf("stock changed concurrently")
	ErrPersistenceFailure = fmt.Errorf("persistence failure")
	ErrOrderNotFound      = fmt.Errorf("order not found")

	// Пользователи и администраторы
	ErrAdminNotFound      = fmt.Errorf("admin not found")
	ErrUIDRequired        = fmt.Errorf("uid is required")
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrAdminAlreadyExists = fmt.Errorf("admin already exists")
	ErrForbidden          = fmt.Errorf("admin uid is required for authentication purpose")

	// 400 Bad Request
	ErrStatusBadRequest     = fmt.Errorf("bad request")
	ErrExpectedMultipart    = fmt.Errorf("expected multipart/form-data")
	ErrExpectedJSON         = fmt.Errorf("expected application/json body")
	ErrMissingFields        = fmt.Errorf("missing required fields")
	ErrInvalidPrice         = fmt.Errorf("invalid price")
	ErrPricePrecision       = fmt.Errorf("price must have at most 2 decimal places")
	ErrInvalidStock         = fmt.Errorf("stock must be a non-negative integer")
	ErrInvalidID            = fmt.Errorf("invalid id")
	ErrProductNameRequired  = fmt.Errorf("product name is required")
	ErrPriceMustBePositive  = fmt.Errorf("price must not be negative")
	ErrNoImages             = fmt.Errorf("no images provided")
	ErrFileTooLarge         = fmt.Errorf("file too large")
	ErrUnsupportedMediaType = fmt.Errorf("unsupported media type")
	ErrProductAlreadyExists = fmt.Errorf("product already exists")

	// Конфигурация
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")

	// 500
	ErrInternalServerError = fmt.Errorf("internal server error")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}

// DetailedError: доменная ошибка с описанием сущности, на которой она возникла.
// Описание безопасно отдавать клиенту, в отличие от полной цепочки Wrap.
type DetailedError struct {
	Kind   error
	Detail string
}

func (d *DetailedError) Error() string {
	return fmt.Sprintf("%s: %s", d.Kind.Error(), d.Detail)
}

func (d *DetailedError) Unwrap() error {
	return d.Kind
}

// Detail создаёт DetailedError заданного вида.
func Detail(kind error, format string, args ...any) error {
	return &DetailedError{
		Kind:   kind,
		Detail: fmt.Sprintf(format, args...),
	}
}

// DetailOf достаёт клиентское описание из цепочки ошибок.
func DetailOf(err error) (string, bool) {
	var de *DetailedError
	if errors.As(err, &de) {
		return de.Detail, true
	}

	return "", false
}
