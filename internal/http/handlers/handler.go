package handlers

import (
	"github.com/mercato-next/internal/provider"
	"github.com/mercato-next/internal/service"
)

// Handler 购物车接口处理器
type Handler struct {
	CartService *service.CartService
}

// New 创建处理器
func New(c *provider.Container) *Handler {
	return &Handler{
		CartService: c.CartService,
	}
}
