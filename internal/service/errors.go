package service

import "errors"

// 购物车业务错误。handler 层据此映射 HTTP 状态码，
// 目录服务的网络错误已在网关层归一，不会出现在这里。
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidQuantity     = errors.New("invalid quantity")
	ErrCartNotFound        = errors.New("cart not found")
	ErrItemNotFound        = errors.New("item not in cart")
	ErrProductNotFound     = errors.New("product not found")
	ErrProductNotAvailable = errors.New("product not available")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrCartEmpty           = errors.New("cart is empty")
)
