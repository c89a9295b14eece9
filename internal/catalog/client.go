package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mercato-next/internal/config"
	"github.com/mercato-next/internal/logger"
)

const (
	defaultConnectTimeout = 5 * time.Second
	defaultTotalTimeout   = 10 * time.Second
)

// Client 商品目录网关。目录服务独立部署，本服务把"不可达"与
// "不存在"同等对待：任何传输失败都归一为未找到，不向引擎层抛网络错误。
type Client interface {
	GetProduct(ctx context.Context, productID string) *Product
	GetProductsBatch(ctx context.Context, productIDs []string) map[string]*Product
	CheckAvailability(ctx context.Context, productID string, quantity int) bool
	Validate(ctx context.Context, items []ValidationItem) ([]ValidItem, []InvalidItem)
}

// HTTPClient 目录网关 HTTP 实现
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient 创建目录网关客户端（短连接超时 + 长整体超时）
func NewHTTPClient(cfg config.CatalogConfig) *HTTPClient {
	connectTimeout := millisOr(cfg.ConnectTimeoutMS, defaultConnectTimeout)
	totalTimeout := millisOr(cfg.TimeoutMS, defaultTotalTimeout)

	dialer := &net.Dialer{Timeout: connectTimeout}
	transport := &http.Transport{
		DialContext:         dialer.DialContext,
		TLSHandshakeTimeout: connectTimeout,
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		httpClient: &http.Client{
			Timeout:   totalTimeout,
			Transport: transport,
		},
	}
}

// GetProduct 获取单个商品快照，未找到或请求失败返回 nil
func (c *HTTPClient) GetProduct(ctx context.Context, productID string) *Product {
	endpoint := fmt.Sprintf("%s/products/%s", c.baseURL, productID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		logger.Warnw("catalog_request_build_failed", "product_id", productID, "error", err)
		return nil
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warnw("catalog_request_failed", "product_id", productID, "error", err)
		return nil
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var product Product
		if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
			logger.Warnw("catalog_response_decode_failed", "product_id", productID, "error", err)
			return nil
		}
		return &product
	case http.StatusNotFound:
		logger.Debugw("catalog_product_not_found", "product_id", productID)
		return nil
	default:
		logger.Warnw("catalog_unexpected_status", "product_id", productID, "status", resp.StatusCode)
		return nil
	}
}

// GetProductsBatch 并发获取多个商品快照。失败/缺失的商品不出现在结果里，
// 单个商品失败不影响其他商品。
func (c *HTTPClient) GetProductsBatch(ctx context.Context, productIDs []string) map[string]*Product {
	results := make(map[string]*Product, len(productIDs))
	if len(productIDs) == 0 {
		return results
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, productID := range productIDs {
		if productID == "" {
			continue
		}
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if product := c.GetProduct(ctx, id); product != nil {
				mu.Lock()
				results[id] = product
				mu.Unlock()
			}
		}(productID)
	}
	wg.Wait()
	return results
}

// CheckAvailability 校验商品是否可按指定数量购买（存在 + 上架 + 库存充足）
func (c *HTTPClient) CheckAvailability(ctx context.Context, productID string, quantity int) bool {
	product := c.GetProduct(ctx, productID)
	if product == nil {
		return false
	}
	return product.IsActive && product.Stock >= quantity
}

// Validate 批量校验商品。原因按 不存在 > 已下架 > 库存不足 的优先级给出。
func (c *HTTPClient) Validate(ctx context.Context, items []ValidationItem) ([]ValidItem, []InvalidItem) {
	return classify(c.GetProductsBatch(ctx, collectIDs(items)), items)
}

func classify(products map[string]*Product, items []ValidationItem) ([]ValidItem, []InvalidItem) {
	valid := make([]ValidItem, 0, len(items))
	invalid := make([]InvalidItem, 0)
	for _, item := range items {
		product, ok := products[item.ProductID]
		if !ok || product == nil {
			invalid = append(invalid, InvalidItem{ProductID: item.ProductID, Reason: "product not found"})
			continue
		}
		if !product.IsActive {
			invalid = append(invalid, InvalidItem{ProductID: item.ProductID, Reason: "product not active"})
			continue
		}
		if product.Stock < item.Quantity {
			invalid = append(invalid, InvalidItem{
				ProductID: item.ProductID,
				Reason:    fmt.Sprintf("insufficient stock (available: %d)", product.Stock),
			})
			continue
		}
		valid = append(valid, ValidItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     product.Price,
		})
	}
	return valid, invalid
}

func collectIDs(items []ValidationItem) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	return ids
}

func millisOr(ms int, fallback time.Duration) time.Duration {
	if ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return fallback
}
