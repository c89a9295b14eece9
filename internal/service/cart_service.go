package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mercato-next/internal/catalog"
	"github.com/mercato-next/internal/config"
	"github.com/mercato-next/internal/logger"
	"github.com/mercato-next/internal/models"
	"github.com/mercato-next/internal/repository"
)

const (
	defaultMaxQuantityPerItem = 100
	defaultMaxBulkItems       = 50

	minShippingAddressLen = 10
	maxShippingAddressLen = 500
	maxCheckoutNotesLen   = 1000
)

// CartItemDetail 购物车项详情（含目录快照装饰字段）。
// 快照缺失时装饰字段为空，但购物车项本身保留。
type CartItemDetail struct {
	ID           string       `json:"id"`
	CartID       string       `json:"cart_id"`
	ProductID    string       `json:"product_id"`
	Quantity     int          `json:"quantity"`
	UnitPrice    models.Money `json:"unit_price"`
	TotalPrice   models.Money `json:"total_price"`
	ProductTitle *string      `json:"product_title"`
	ProductImage *string      `json:"product_image"`
	InStock      bool         `json:"product_in_stock"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// CartDetail 购物车详情响应
type CartDetail struct {
	ID         string           `json:"id"`
	UserID     string           `json:"user_id"`
	Items      []CartItemDetail `json:"items"`
	TotalItems int              `json:"total_items"`
	Subtotal   models.Money     `json:"subtotal"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// CartSummary 购物车轻量摘要（只有合计，不做目录装饰）
type CartSummary struct {
	ID         string       `json:"id"`
	UserID     string       `json:"user_id"`
	TotalItems int          `json:"total_items"`
	Subtotal   models.Money `json:"subtotal"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// AddItemInput 添加购物车项输入
type AddItemInput struct {
	ProductID string
	Quantity  int
}

// BulkAddResult 批量添加结果。批量操作不保证原子性，
// 调用方通过错误列表判断哪些商品成功入车。
type BulkAddResult struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
}

// CheckoutInput 结算准备输入
type CheckoutInput struct {
	ShippingAddress string
	BillingAddress  string
	Notes           string
}

// CheckoutDetail 结算准备响应。该操作只读，可在用户编辑地址期间反复调用。
type CheckoutDetail struct {
	CartID               string           `json:"cart_id"`
	TotalItems           int              `json:"total_items"`
	Subtotal             models.Money     `json:"subtotal"`
	ShippingAddress      string           `json:"shipping_address"`
	BillingAddress       string           `json:"billing_address"`
	Notes                string           `json:"notes,omitempty"`
	Items                []CartItemDetail `json:"items"`
	AvailableForCheckout bool             `json:"available_for_checkout"`
	UnavailableItems     []string         `json:"unavailable_items"`
}

// CartService 购物车一致性引擎：编排购物车存储与目录网关，
// 在每次变更时对库存和上架状态做决策点校验。
type CartService struct {
	cartRepo           repository.CartRepository
	catalogClient      catalog.Client
	maxQuantityPerItem int
	maxBulkItems       int
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, catalogClient catalog.Client, cfg config.CartConfig) *CartService {
	maxQuantity := cfg.MaxQuantityPerItem
	if maxQuantity <= 0 {
		maxQuantity = defaultMaxQuantityPerItem
	}
	maxBulk := cfg.MaxBulkItems
	if maxBulk <= 0 {
		maxBulk = defaultMaxBulkItems
	}
	return &CartService{
		cartRepo:           cartRepo,
		catalogClient:      catalogClient,
		maxQuantityPerItem: maxQuantity,
		maxBulkItems:       maxBulk,
	}
}

// GetCart 获取用户购物车（懒创建），每个购物车项附带新鲜目录快照
func (s *CartService) GetCart(ctx context.Context, userID string) (*CartDetail, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	cart, err := s.cartRepo.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}
	return s.buildCartDetail(ctx, cart), nil
}

// GetSummary 获取购物车轻量摘要
func (s *CartService) GetSummary(ctx context.Context, userID string) (*CartSummary, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	cart, err := s.cartRepo.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}
	return &CartSummary{
		ID:         cart.ID,
		UserID:     cart.UserID,
		TotalItems: cart.TotalItems(),
		Subtotal:   cart.Subtotal(),
		UpdatedAt:  cart.UpdatedAt,
	}, nil
}

// AddItem 添加商品。重复添加累加数量；库存按
// 请求数量 + 已在车数量 校验；成交价取当前快照价并覆盖旧快照。
func (s *CartService) AddItem(ctx context.Context, userID string, input AddItemInput) (*CartDetail, error) {
	if userID == "" || input.ProductID == "" {
		return nil, ErrInvalidInput
	}
	if input.Quantity < 1 || input.Quantity > s.maxQuantityPerItem {
		return nil, ErrInvalidQuantity
	}

	cart, err := s.cartRepo.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}

	product := s.catalogClient.GetProduct(ctx, input.ProductID)
	if product == nil {
		return nil, ErrProductNotFound
	}
	if !product.IsActive {
		return nil, ErrProductNotAvailable
	}

	existing, err := s.cartRepo.GetItem(cart.ID, input.ProductID)
	if err != nil {
		return nil, err
	}
	newQuantity := input.Quantity
	if existing != nil {
		newQuantity += existing.Quantity
	}
	if product.Stock < newQuantity {
		return nil, ErrInsufficientStock
	}

	if _, err := s.cartRepo.UpsertItem(&models.CartItem{
		CartID:    cart.ID,
		ProductID: input.ProductID,
		Quantity:  input.Quantity,
		UnitPrice: product.Price,
	}); err != nil {
		return nil, err
	}

	return s.GetCart(ctx, userID)
}

// AddItemsBulk 批量添加，逐项独立校验和入库。单项失败只记入错误列表，
// 不中断也不回滚其他项。
func (s *CartService) AddItemsBulk(ctx context.Context, userID string, items []AddItemInput) (*BulkAddResult, error) {
	if userID == "" || len(items) == 0 || len(items) > s.maxBulkItems {
		return nil, ErrInvalidInput
	}

	cart, err := s.cartRepo.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}

	result := &BulkAddResult{Errors: make([]string, 0)}
	for _, item := range items {
		if item.ProductID == "" || item.Quantity < 1 || item.Quantity > s.maxQuantityPerItem {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("product %s: invalid quantity", item.ProductID))
			continue
		}

		product := s.catalogClient.GetProduct(ctx, item.ProductID)
		if product == nil || !product.IsActive {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("product %s not available", item.ProductID))
			continue
		}
		if product.Stock < item.Quantity {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("product %s insufficient stock", item.ProductID))
			continue
		}

		if _, err := s.cartRepo.UpsertItem(&models.CartItem{
			CartID:    cart.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
		}); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("product %s: %v", item.ProductID, err))
			continue
		}
		result.Success++
	}

	return result, nil
}

// UpdateItem 按绝对数量更新已有购物车项，数量可用性按请求值整体校验
func (s *CartService) UpdateItem(ctx context.Context, userID, productID string, quantity int) (*CartDetail, error) {
	if userID == "" || productID == "" {
		return nil, ErrInvalidInput
	}
	if quantity < 1 || quantity > s.maxQuantityPerItem {
		return nil, ErrInvalidQuantity
	}

	cart, err := s.cartRepo.GetByUser(userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, ErrCartNotFound
	}

	item, err := s.cartRepo.GetItem(cart.ID, productID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrItemNotFound
	}

	if !s.catalogClient.CheckAvailability(ctx, productID, quantity) {
		return nil, ErrInsufficientStock
	}

	affected, err := s.cartRepo.SetItemQuantity(cart.ID, productID, quantity)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrItemNotFound
	}

	return s.GetCart(ctx, userID)
}

// RemoveItem 删除购物车项
func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (*CartDetail, error) {
	if userID == "" || productID == "" {
		return nil, ErrInvalidInput
	}
	cart, err := s.cartRepo.GetByUser(userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, ErrCartNotFound
	}

	affected, err := s.cartRepo.RemoveItem(cart.ID, productID)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrItemNotFound
	}

	return s.GetCart(ctx, userID)
}

// ClearCart 清空购物车
func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrInvalidInput
	}
	cart, err := s.cartRepo.GetByUser(userID)
	if err != nil {
		return err
	}
	if cart == nil {
		return ErrCartNotFound
	}
	return s.cartRepo.ClearItems(cart.ID)
}

// PrepareCheckout 结算前校验：所有项逐一对照目录做存在/上架/库存检查。
// 只读操作，不改购物车也不占库存。
func (s *CartService) PrepareCheckout(ctx context.Context, userID string, input CheckoutInput) (*CheckoutDetail, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	shipping := strings.TrimSpace(input.ShippingAddress)
	if len(shipping) < minShippingAddressLen || len(shipping) > maxShippingAddressLen {
		return nil, ErrInvalidInput
	}
	if len(input.Notes) > maxCheckoutNotesLen {
		return nil, ErrInvalidInput
	}

	cart, err := s.cartRepo.GetByUser(userID)
	if err != nil {
		return nil, err
	}
	if cart == nil || len(cart.Items) == 0 {
		return nil, ErrCartEmpty
	}

	validation := make([]catalog.ValidationItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		validation = append(validation, catalog.ValidationItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	_, invalid := s.catalogClient.Validate(ctx, validation)

	unavailable := make([]string, 0, len(invalid))
	for _, item := range invalid {
		unavailable = append(unavailable, item.ProductID)
	}

	billing := strings.TrimSpace(input.BillingAddress)
	if billing == "" {
		billing = shipping
	}

	detail := s.buildCartDetail(ctx, cart)
	return &CheckoutDetail{
		CartID:               cart.ID,
		TotalItems:           detail.TotalItems,
		Subtotal:             detail.Subtotal,
		ShippingAddress:      shipping,
		BillingAddress:       billing,
		Notes:                strings.TrimSpace(input.Notes),
		Items:                detail.Items,
		AvailableForCheckout: len(unavailable) == 0,
		UnavailableItems:     unavailable,
	}, nil
}

// SyncPrices 把每个购物车项的快照价对齐到目录现价。
// 目录里已消失的商品保持原快照价不动，也不删除该项。
func (s *CartService) SyncPrices(ctx context.Context, userID string) (*CartDetail, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	cart, err := s.cartRepo.GetByUser(userID)
	if err != nil {
		return nil, err
	}
	if cart == nil || len(cart.Items) == 0 {
		return s.GetCart(ctx, userID)
	}

	products := s.catalogClient.GetProductsBatch(ctx, productIDs(cart.Items))
	for _, item := range cart.Items {
		product, ok := products[item.ProductID]
		if !ok || product == nil {
			continue
		}
		if product.Price.Equal(item.UnitPrice) {
			continue
		}
		if _, err := s.cartRepo.SetItemPrice(item.ID, product.Price); err != nil {
			logger.Warnw("cart_price_sync_failed",
				"cart_id", cart.ID,
				"product_id", item.ProductID,
				"error", err,
			)
		}
	}

	return s.GetCart(ctx, userID)
}

// buildCartDetail 组装购物车详情：一次批量拉取所有快照做装饰，
// 快照缺失（商品被上游删除）不剔除购物车项。
func (s *CartService) buildCartDetail(ctx context.Context, cart *models.Cart) *CartDetail {
	items := make([]CartItemDetail, 0, len(cart.Items))
	var products map[string]*catalog.Product
	if len(cart.Items) > 0 {
		products = s.catalogClient.GetProductsBatch(ctx, productIDs(cart.Items))
	}

	for _, item := range cart.Items {
		detail := CartItemDetail{
			ID:         item.ID,
			CartID:     item.CartID,
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.TotalPrice(),
			CreatedAt:  item.CreatedAt,
			UpdatedAt:  item.UpdatedAt,
		}
		if product := products[item.ProductID]; product != nil {
			title := product.Title
			detail.ProductTitle = &title
			if image := product.PrimaryImage(); image != "" {
				detail.ProductImage = &image
			}
			detail.InStock = product.InStock()
		}
		items = append(items, detail)
	}

	return &CartDetail{
		ID:         cart.ID,
		UserID:     cart.UserID,
		Items:      items,
		TotalItems: cart.TotalItems(),
		Subtotal:   cart.Subtotal(),
		CreatedAt:  cart.CreatedAt,
		UpdatedAt:  cart.UpdatedAt,
	}
}

func productIDs(items []models.CartItem) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	return ids
}
