package api

import (
	"github.com/example/marketplace/internal/service"
	"go.uber.org/zap"
)

type Handlers struct {
	users    *service.UserService
	products *service.ProductService
	orders   *service.OrderService
	logger   *zap.Logger
}

func NewHandlers(users *service.UserService, products *service.ProductService, orders *service.OrderService, logger *zap.Logger) *Handlers {
	return &Handlers{
		users:    users,
		products: products,
		orders:   orders,
		logger:   logger,
	}
}
