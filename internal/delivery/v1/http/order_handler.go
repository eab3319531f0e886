package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/marble-shop/go-backend/internal/domain"
	"github.com/marble-shop/go-backend/internal/usecase"
	"github.com/marble-shop/go-backend/pkg/e"
	"github.com/marble-shop/go-backend/pkg/logger"
)

type OrderHandler struct {
	orderUsecase usecase.OrderUC
	authorizer   usecase.AdminAuthorizer
	logger       logger.Logger
}

func NewOrderHandler(orderUsecase usecase.OrderUC, authorizer usecase.AdminAuthorizer, logger logger.Logger) *OrderHandler {
	return &OrderHandler{orderUsecase: orderUsecase, authorizer: authorizer, logger: logger}
}

// placeOrder
//
//	@Summary		Оформление заказа
//	@Description	Списывает остатки и сохраняет заказ атомарно: либо все позиции, либо ничего
//	@Tags			orders
//	@Accept			json
//	@Produce		json
//	@Param			request	body		PlaceOrderRequest	true	"Заказ"
//	@Success		201		{object}	map[string]interface{}
//	@Failure		400		{object}	ErrorResponse	"Неверный запрос, нет покупателя или не хватает остатка"
//	@Failure		404		{object}	ErrorResponse	"Товар не найден"
//	@Failure		409		{object}	ErrorResponse	"Остаток изменился во время оформления"
//	@Failure		500		{object}	ErrorResponse
//	@Router			/orders [post]
func (o *OrderHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	order, err := o.orderUsecase.PlaceOrder(r.Context(), toPlaceOrderReq(&req))
	if err != nil {
		if !errors.Is(err, e.ErrPersistenceFailure) {
			o.logger.Warnf("order rejected: user=%s: %v", req.UserID, err)
		}
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, map[string]interface{}{
		"message": "Order placed successfully",
		"order":   newOrderResponse(order),
	})
}

// listOrders
//
//	@Summary	Все заказы
//	@Tags		orders
//	@Produce	json
//	@Success	200	{object}	map[string]interface{}
//	@Router		/orders [get]
func (o *OrderHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := o.orderUsecase.ListOrders(r.Context())
	if err != nil {
		o.logger.Errorf(err, "list orders failed")
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"orders":  newOrderDetailsResponses(orders),
		"message": "successfully fetched the orders",
	})
}

// listOrdersForAdmin
//
//	@Summary		Все заказы для администратора
//	@Description	Доступно только зарегистрированному администратору
//	@Tags			orders
//	@Produce		json
//	@Param			uid	path		string	true	"UID администратора"
//	@Success		200	{object}	map[string]interface{}
//	@Failure		400	{object}	ErrorResponse
//	@Router			/orders/{uid} [get]
func (o *OrderHandler) listOrdersForAdmin(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	if err := o.authorizer.Authorize(r.Context(), uid); err != nil {
		o.logger.Warnf("orders listing denied: uid=%s: %v", uid, err)
		WriteError(w, err)
		return
	}

	orders, err := o.orderUsecase.ListOrders(r.Context())
	if err != nil {
		o.logger.Errorf(err, "list orders failed")
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]interface{}{"orders": newOrderDetailsResponses(orders)})
}

// getOrder
//
//	@Summary	Заказ по id
//	@Tags		orders
//	@Produce	json
//	@Param		id	path		int	true	"ID заказа"
//	@Success	200	{object}	map[string]interface{}
//	@Failure	404	{object}	ErrorResponse
//	@Router		/orders/id/{id} [get]
func (o *OrderHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}

	details, err := o.orderUsecase.GetOrder(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]interface{}{"order": newOrderDetailsResponse(details)})
}

func newOrderDetailsResponses(orders []domain.OrderDetails) []OrderResponse {
	res := make([]OrderResponse, len(orders))
	for i := range orders {
		res[i] = newOrderDetailsResponse(&orders[i])
	}
	return res
}
