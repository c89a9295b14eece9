package catalog

import "github.com/mercato-next/internal/models"

// ProductImage 商品图片
type ProductImage struct {
	URL       string `json:"url"`
	IsPrimary bool   `json:"is_primary"`
}

// Product 商品快照（目录服务某一时刻的读值，本服务不落库不缓存）
type Product struct {
	ID       string         `json:"id"`
	Title    string         `json:"title"`
	Price    models.Money   `json:"price"`
	Stock    int            `json:"stock"`
	IsActive bool           `json:"is_active"`
	Images   []ProductImage `json:"images"`
}

// PrimaryImage 主图地址：优先 is_primary，其次第一张，没有返回空串
func (p *Product) PrimaryImage() string {
	if p == nil {
		return ""
	}
	for _, img := range p.Images {
		if img.IsPrimary {
			return img.URL
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0].URL
	}
	return ""
}

// InStock 是否有货
func (p *Product) InStock() bool {
	return p != nil && p.Stock > 0
}

// ValidationItem 校验输入（商品 + 需求数量）
type ValidationItem struct {
	ProductID string
	Quantity  int
}

// ValidItem 校验通过的商品
type ValidItem struct {
	ProductID string
	Quantity  int
	Price     models.Money
}

// InvalidItem 校验失败的商品及原因
type InvalidItem struct {
	ProductID string
	Reason    string
}
