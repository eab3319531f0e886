package grpc

import (
	"errors"

	"github.com/marble-shop/go-backend/pkg/e"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// GRPCErrorResponse сопоставляет доменную ошибку коду gRPC. Клиенту уходит
// только описание из e.Detail, внутренняя цепочка остаётся в логах.
func GRPCErrorResponse(err error) error {
	code := codeOf(err)
	if code == codes.Internal {
		return status.Error(codes.Internal, e.ErrInternalServerError.Error())
	}

	if detail, ok := e.DetailOf(err); ok {
		return status.Error(code, detail)
	}
	return status.Error(code, err.Error())
}

func codeOf(err error) codes.Code {
	switch {
	case errors.Is(err, e.ErrStockConflict):
		return codes.Aborted
	case errors.Is(err, e.ErrInsufficientStock):
		return codes.FailedPrecondition
	case errors.Is(err, e.ErrProductNotFound),
		errors.Is(err, e.ErrUserNotFound),
		errors.Is(err, e.ErrOrderNotFound):
		return codes.NotFound
	case errors.Is(err, e.ErrInvalidRequest),
		errors.Is(err, e.ErrInvalidID):
		return codes.InvalidArgument
	default:
		return codes.Internal
	}
}
