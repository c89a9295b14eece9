package repository

import (
	"errors"
	"time"

	"github.com/mercato-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartRepository 购物车数据访问接口
type CartRepository interface {
	GetOrCreate(userID string) (*models.Cart, error)
	GetByUser(userID string) (*models.Cart, error)
	GetItem(cartID, productID string) (*models.CartItem, error)
	UpsertItem(item *models.CartItem) (*models.CartItem, error)
	SetItemQuantity(cartID, productID string, quantity int) (int64, error)
	SetItemPrice(itemID string, price models.Money) (int64, error)
	RemoveItem(cartID, productID string) (int64, error)
	ClearItems(cartID string) error
	DeleteCart(cartID string) error
}

// GormCartRepository GORM 实现
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// GetByUser 获取用户购物车（含购物车项），不存在返回 nil
func (r *GormCartRepository) GetByUser(userID string) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at asc")
	}).Where("user_id = ?", userID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// GetOrCreate 获取或创建用户购物车。并发首次访问依赖 user_id 唯一索引，
// 冲突时回读既有记录而不是报错。
func (r *GormCartRepository) GetOrCreate(userID string) (*models.Cart, error) {
	cart, err := r.GetByUser(userID)
	if err != nil {
		return nil, err
	}
	if cart != nil {
		return cart, nil
	}

	cart = &models.Cart{UserID: userID}
	if err := r.db.Create(cart).Error; err != nil {
		if existing, ferr := r.GetByUser(userID); ferr == nil && existing != nil {
			return existing, nil
		}
		return nil, err
	}
	return cart, nil
}

// GetItem 获取指定购物车项，不存在返回 nil
func (r *GormCartRepository) GetItem(cartID, productID string) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.Where("cart_id = ? AND product_id = ?", cartID, productID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpsertItem 添加或累加购物车项。同一 (cart_id, product_id) 冲突时
// 在单条语句内累加数量并以新价覆盖快照价，避免读改写竞态。
func (r *GormCartRepository) UpsertItem(item *models.CartItem) (*models.CartItem, error) {
	if item == nil {
		return nil, errors.New("cart item is nil")
	}
	now := time.Now()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("quantity + excluded.quantity"),
			"unit_price": gorm.Expr("excluded.unit_price"),
			"updated_at": gorm.Expr("excluded.updated_at"),
		}),
	}).Create(item).Error
	if err != nil {
		return nil, err
	}
	return r.GetItem(item.CartID, item.ProductID)
}

// SetItemQuantity 设置购物车项绝对数量，返回受影响行数
func (r *GormCartRepository) SetItemQuantity(cartID, productID string, quantity int) (int64, error) {
	result := r.db.Model(&models.CartItem{}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Updates(map[string]interface{}{
			"quantity":   quantity,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

// SetItemPrice 设置购物车项快照单价（价格同步用），返回受影响行数
func (r *GormCartRepository) SetItemPrice(itemID string, price models.Money) (int64, error) {
	result := r.db.Model(&models.CartItem{}).
		Where("id = ?", itemID).
		Updates(map[string]interface{}{
			"unit_price": price,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

// RemoveItem 删除购物车项，返回受影响行数
func (r *GormCartRepository) RemoveItem(cartID, productID string) (int64, error) {
	result := r.db.Where("cart_id = ? AND product_id = ?", cartID, productID).Delete(&models.CartItem{})
	return result.RowsAffected, result.Error
}

// ClearItems 清空购物车项
func (r *GormCartRepository) ClearItems(cartID string) error {
	return r.db.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}

// DeleteCart 删除购物车及其所有项
func (r *GormCartRepository) DeleteCart(cartID string) error {
	if err := r.ClearItems(cartID); err != nil {
		return err
	}
	return r.db.Where("id = ?", cartID).Delete(&models.Cart{}).Error
}
