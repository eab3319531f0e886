package http

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
	"github.com/marble-shop/go-backend/internal/infrastructure"
	"github.com/marble-shop/go-backend/internal/usecase"
	"github.com/marble-shop/go-backend/pkg/e"
	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type ProductMetadata struct {
	Name         string
	CategoryName string
	Price        int64
	Stock        int64
	WhereToUse   string
	Description  string
}

func NewErrorResponse(errMsg, message string) *ErrorResponse {
	return &ErrorResponse{
		Error:   errMsg,
		Message: message,
	}
}

// ToHTTPResponse сопоставляет ошибку статусу. Для клиентских ошибок отдаётся
// описание из e.Detail, если оно есть, иначе текст сентинела.
func ToHTTPResponse(err error) (int, *ErrorResponse) {
	code, kind := classify(err)
	if code == http.StatusInternalServerError {
		message := e.ErrInternalServerError.Error()
		if errors.Is(err, e.ErrPersistenceFailure) {
			message = e.ErrPersistenceFailure.Error()
		}
		return code, NewErrorResponse(e.ErrInternalServerError.Error(), message)
	}

	if detail, ok := e.DetailOf(err); ok {
		return code, NewErrorResponse(detail, "")
	}
	return code, NewErrorResponse(kind.Error(), "")
}

func classify(err error) (int, error) {
	for _, m := range []struct {
		kind error
		code int
	}{
		{e.ErrStockConflict, http.StatusConflict},
		{e.ErrProductNotFound, http.StatusNotFound},
		{e.ErrOrderNotFound, http.StatusNotFound},
		{e.ErrUserAlreadyExists, http.StatusConflict},
		{e.ErrAdminAlreadyExists, http.StatusConflict},
		{e.ErrProductAlreadyExists, http.StatusConflict},
		{e.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{e.ErrUnsupportedMediaType, http.StatusUnsupportedMediaType},
		{e.ErrInvalidRequest, http.StatusBadRequest},
		{e.ErrUserNotFound, http.StatusBadRequest},
		{e.ErrAdminNotFound, http.StatusBadRequest},
		{e.ErrInsufficientStock, http.StatusBadRequest},
		{e.ErrForbidden, http.StatusBadRequest},
		{e.ErrUIDRequired, http.StatusBadRequest},
		{e.ErrStatusBadRequest, http.StatusBadRequest},
		{e.ErrExpectedMultipart, http.StatusBadRequest},
		{e.ErrExpectedJSON, http.StatusBadRequest},
		{e.ErrMissingFields, http.StatusBadRequest},
		{e.ErrInvalidPrice, http.StatusBadRequest},
		{e.ErrPricePrecision, http.StatusBadRequest},
		{e.ErrInvalidStock, http.StatusBadRequest},
		{e.ErrInvalidID, http.StatusBadRequest},
		{e.ErrProductNameRequired, http.StatusBadRequest},
		{e.ErrPriceMustBePositive, http.StatusBadRequest},
		{e.ErrNoImages, http.StatusBadRequest},
	} {
		if errors.Is(err, m.kind) {
			return m.code, m.kind
		}
	}

	return http.StatusInternalServerError, e.ErrInternalServerError
}

func WriteError(w http.ResponseWriter, err error) {
	code, body := ToHTTPResponse(err)
	WriteSuccess(w, code, body)
}

func WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// decodeJSON читает тело запроса в dst. Неизвестные поля игнорируются.
func decodeJSON(r *http.Request, dst any) error {
	const maxBodySize = 1 << 20

	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		return e.ErrExpectedJSON
	}

	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(dst); err != nil {
		return e.Detail(e.ErrInvalidRequest, "malformed JSON body")
	}
	return nil
}

// pathID разбирает положительный целочисленный параметр пути.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, e.Detail(e.ErrInvalidID, "invalid %s %q", name, chi.URLParam(r, name))
	}
	return id, nil
}

// parsePriceToCents переводит строку вида "599.99" или "600" в копейки.
// Отрицательные значения, больше двух знаков после точки и суммы свыше
// миллиарда рублей отклоняются.
func parsePriceToCents(s string) (int64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, e.Detail(e.ErrMissingFields, "price is required")
	}

	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, e.ErrInvalidPrice
	}

	if d.IsNegative() {
		return 0, e.ErrInvalidPrice
	}

	maxPrice := decimal.NewFromInt(1_000_000_000)
	if d.GreaterThan(maxPrice) {
		return 0, e.ErrInvalidPrice
	}

	if d.Exponent() < -2 && !d.Equal(d.Round(2)) {
		return 0, e.ErrPricePrecision
	}

	return d.Shift(2).Round(0).IntPart(), nil
}

// formatCents возвращает сумму в рублях с двумя знаками: 129900 -> "1299.00".
func formatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

func parseStock(s string) (int64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}

	stock, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || stock < 0 {
		return 0, e.ErrInvalidStock
	}
	return stock, nil
}

func ensureMultipartForm(r *http.Request, maxMemory int64) error {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return e.Wrap(whereami.WhereAmI(), e.ErrExpectedMultipart)
	}
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return e.Wrap(whereami.WhereAmI(), e.ErrFileTooLarge)
		}
		return e.Wrap(whereami.WhereAmI(), e.Detail(e.ErrStatusBadRequest, "malformed multipart form"))
	}
	return nil
}

func parseProductForm(r *http.Request) (*ProductMetadata, error) {
	name := strings.TrimSpace(r.FormValue("name"))
	category := strings.TrimSpace(r.FormValue("category"))

	if name == "" || category == "" {
		return nil, e.Detail(e.ErrMissingFields, "name and category are required")
	}

	priceCents, err := parsePriceToCents(r.FormValue("price"))
	if err != nil {
		return nil, err
	}

	stock, err := parseStock(r.FormValue("stock"))
	if err != nil {
		return nil, err
	}

	return &ProductMetadata{
		Name:         name,
		CategoryName: category,
		Price:        priceCents,
		Stock:        stock,
		WhereToUse:   r.FormValue("wheretouse"),
		Description:  r.FormValue("description"),
	}, nil
}

func parseImages(files []*multipart.FileHeader) ([]usecase.ProductImage, error) {
	const (
		maxImageCount = 1
		maxFileSize   = 15 << 20
	)

	if len(files) == 0 {
		return nil, e.ErrNoImages
	}
	if len(files) > maxImageCount {
		return nil, e.Detail(e.ErrStatusBadRequest, "only one image is allowed per product")
	}

	images := make([]usecase.ProductImage, 0, len(files))
	for _, fh := range files {
		data, mimeType, err := readFile(fh, maxFileSize)
		if err != nil {
			return nil, err
		}
		images = append(images, *usecase.NewProductImage(data, mimeType, int64(len(data)), fh.Filename))
	}
	return images, nil
}

func readFile(fh *multipart.FileHeader, maxSize int64) ([]byte, string, error) {
	if fh.Size > maxSize {
		return nil, "", e.Wrap(fh.Filename, e.ErrFileTooLarge)
	}

	src, err := fh.Open()
	if err != nil {
		return nil, "", e.Wrap(whereami.WhereAmI(), err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxSize+1))
	if err != nil {
		return nil, "", e.Wrap(whereami.WhereAmI(), err)
	}
	if int64(len(data)) > maxSize {
		return nil, "", e.Wrap(fh.Filename, e.ErrFileTooLarge)
	}

	mimeType := http.DetectContentType(data[:min(len(data), 512)])
	if _, err := infrastructure.GetExtensionFromMIME(mimeType); err != nil {
		return nil, "", e.Detail(e.ErrUnsupportedMediaType, "%s: %s", fh.Filename, mimeType)
	}
	return data, mimeType, nil
}
