package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Cart 用户购物车（每个用户唯一）
type Cart struct {
	ID        string    `gorm:"type:varchar(36);primarykey" json:"id"`            // 主键（UUID）
	UserID    string    `gorm:"type:varchar(36);not null;uniqueIndex" json:"user_id"` // 用户ID（UUID，唯一）
	CreatedAt time.Time `gorm:"index" json:"created_at"`                          // 创建时间
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`                          // 更新时间

	Items []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items,omitempty"` // 购物车项
}

// TableName 指定表名
func (Cart) TableName() string {
	return "carts"
}

// BeforeCreate 生成主键
func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// TotalItems 商品总数（按数量累加，读时计算）
func (c *Cart) TotalItems() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// Subtotal 小计（数量 × 快照单价累加，读时计算）
func (c *Cart) Subtotal() Money {
	subtotal := decimal.Zero
	for _, item := range c.Items {
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return NewMoneyFromDecimal(subtotal)
}

// CartItem 购物车项。unit_price 是加入/更新时的商品快照价，
// 只通过显式 sync-prices 与目录服务对账，不做实时联动。
type CartItem struct {
	ID        string    `gorm:"type:varchar(36);primarykey" json:"id"`                               // 主键（UUID）
	CartID    string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_cart_item_cart_product" json:"cart_id"` // 所属购物车
	ProductID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_cart_item_cart_product" json:"product_id"` // 商品ID（外部目录，无外键）
	Quantity  int       `gorm:"not null" json:"quantity"`                                            // 数量
	UnitPrice Money     `gorm:"type:decimal(12,2);not null" json:"unit_price"`                       // 快照单价
	CreatedAt time.Time `gorm:"index" json:"created_at"`                                             // 创建时间
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`                                             // 更新时间
}

// TableName 指定表名
func (CartItem) TableName() string {
	return "cart_items"
}

// BeforeCreate 生成主键
func (i *CartItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// TotalPrice 单项合计
func (i *CartItem) TotalPrice() Money {
	return NewMoneyFromDecimal(i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity))))
}
