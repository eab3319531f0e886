package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/marble-shop/go-backend/docs" // регистрация swagger-спецификации
	"github.com/marble-shop/go-backend/internal/usecase"
	"github.com/marble-shop/go-backend/pkg/logger"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type Router struct {
	router     *chi.Mux
	logger     logger.Logger
	swaggerURL string
}

func NewRouter(router *chi.Mux, logger logger.Logger, swaggerURL string) *Router {
	return &Router{router: router, logger: logger, swaggerURL: swaggerURL}
}

// Init монтирует API в корень и под /api/v1.
func (r *Router) Init(prUC usecase.ProductUC, orderUC usecase.OrderUC, userUC usecase.UserUC, adminUC usecase.AdminUC) {
	r.router.Use(middleware.RequestID)
	r.router.Use(middleware.RealIP)
	r.router.Use(requestLogger(r.logger))
	r.router.Use(middleware.Recoverer)

	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(r.swaggerURL),
	))

	prHandler := NewProductHandler(prUC, r.logger)
	orderHandler := NewOrderHandler(orderUC, adminUC, r.logger)
	accountHandler := NewAccountHandler(userUC, adminUC, r.logger)

	routes := func(api chi.Router) {
		registerProductRoutes(api, prHandler)
		registerOrderRoutes(api, orderHandler)
		registerAccountRoutes(api, accountHandler)
		api.Get("/hello-world", helloWorld)
	}

	r.router.Group(routes)
	r.router.Route("/api/v1", routes)
}

func registerProductRoutes(router chi.Router, prHandler *ProductHandler) {
	router.Get("/products", prHandler.listProducts)
	router.Get("/products/{id}", prHandler.getProduct)
	router.Post("/add-product", prHandler.addProduct)
	router.Delete("/delete-product/{id}", prHandler.deleteProduct)
}

func registerOrderRoutes(router chi.Router, orderHandler *OrderHandler) {
	router.Route("/orders", func(or chi.Router) {
		or.Post("/", orderHandler.placeOrder)
		or.Get("/", orderHandler.listOrders)
		or.Get("/id/{id}", orderHandler.getOrder)
		or.Get("/{uid}", orderHandler.listOrdersForAdmin)
	})
}

func registerAccountRoutes(router chi.Router, accountHandler *AccountHandler) {
	router.Post("/user/register", accountHandler.registerUser)
	router.Get("/user/{uid}", accountHandler.getUser)
	router.Post("/admin/register", accountHandler.registerAdmin)
	router.Get("/admin/{uid}", accountHandler.getAdmin)
}

// helloWorld
//
//	@Summary	Проверка живости
//	@Tags		health
//	@Produce	plain
//	@Success	200	{string}	string
//	@Router		/hello-world [get]
func helloWorld(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Hello world!"))
}
