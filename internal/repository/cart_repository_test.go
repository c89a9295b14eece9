package repository

import (
	"testing"

	"github.com/mercato-next/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupCartRepositoryTest(t *testing.T) *GormCartRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Cart{}, &models.CartItem{}); err != nil {
		t.Fatalf("migrate cart tables failed: %v", err)
	}
	return NewCartRepository(db)
}

func moneyFromInt(t *testing.T, value int64) models.Money {
	t.Helper()
	return models.NewMoneyFromDecimal(decimal.NewFromInt(value))
}

func TestGetOrCreateReturnsSameCart(t *testing.T) {
	repo := setupCartRepositoryTest(t)
	userID := uuid.NewString()

	first, err := repo.GetOrCreate(userID)
	if err != nil {
		t.Fatalf("first get-or-create failed: %v", err)
	}
	if first.ID == "" {
		t.Fatalf("cart id should be generated")
	}

	second, err := repo.GetOrCreate(userID)
	if err != nil {
		t.Fatalf("second get-or-create failed: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("cart id want %s got %s", first.ID, second.ID)
	}
}

func TestGetByUserMissingReturnsNil(t *testing.T) {
	repo := setupCartRepositoryTest(t)

	cart, err := repo.GetByUser(uuid.NewString())
	if err != nil {
		t.Fatalf("get by user failed: %v", err)
	}
	if cart != nil {
		t.Fatalf("missing cart should be nil, got %+v", cart)
	}
}

func TestUpsertItemAccumulatesQuantityAndRefreshesPrice(t *testing.T) {
	repo := setupCartRepositoryTest(t)
	cart, err := repo.GetOrCreate(uuid.NewString())
	if err != nil {
		t.Fatalf("get-or-create failed: %v", err)
	}
	productID := uuid.NewString()

	item, err := repo.UpsertItem(&models.CartItem{
		CartID:    cart.ID,
		ProductID: productID,
		Quantity:  2,
		UnitPrice: moneyFromInt(t, 100),
	})
	if err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	if item.Quantity != 2 {
		t.Fatalf("quantity want 2 got %d", item.Quantity)
	}

	item, err = repo.UpsertItem(&models.CartItem{
		CartID:    cart.ID,
		ProductID: productID,
		Quantity:  3,
		UnitPrice: moneyFromInt(t, 80),
	})
	if err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}
	if item.Quantity != 5 {
		t.Fatalf("accumulated quantity want 5 got %d", item.Quantity)
	}
	if !item.UnitPrice.Equal(moneyFromInt(t, 80)) {
		t.Fatalf("unit price want 80 got %s", item.UnitPrice.String())
	}
}

func TestSetItemQuantityMissingReturnsZeroAffected(t *testing.T) {
	repo := setupCartRepositoryTest(t)
	cart, err := repo.GetOrCreate(uuid.NewString())
	if err != nil {
		t.Fatalf("get-or-create failed: %v", err)
	}

	affected, err := repo.SetItemQuantity(cart.ID, uuid.NewString(), 3)
	if err != nil {
		t.Fatalf("set quantity failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("affected want 0 got %d", affected)
	}
}

func TestRemoveItemThenReAdd(t *testing.T) {
	repo := setupCartRepositoryTest(t)
	cart, err := repo.GetOrCreate(uuid.NewString())
	if err != nil {
		t.Fatalf("get-or-create failed: %v", err)
	}
	productID := uuid.NewString()

	if _, err := repo.UpsertItem(&models.CartItem{
		CartID:    cart.ID,
		ProductID: productID,
		Quantity:  1,
		UnitPrice: moneyFromInt(t, 50),
	}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	affected, err := repo.RemoveItem(cart.ID, productID)
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("remove affected want 1 got %d", affected)
	}

	// 删除为物理删除，同一商品应能重新加入
	item, err := repo.UpsertItem(&models.CartItem{
		CartID:    cart.ID,
		ProductID: productID,
		Quantity:  4,
		UnitPrice: moneyFromInt(t, 60),
	})
	if err != nil {
		t.Fatalf("re-add failed: %v", err)
	}
	if item.Quantity != 4 {
		t.Fatalf("re-added quantity want 4 got %d", item.Quantity)
	}
}

func TestClearItemsKeepsCartRecord(t *testing.T) {
	repo := setupCartRepositoryTest(t)
	userID := uuid.NewString()
	cart, err := repo.GetOrCreate(userID)
	if err != nil {
		t.Fatalf("get-or-create failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := repo.UpsertItem(&models.CartItem{
			CartID:    cart.ID,
			ProductID: uuid.NewString(),
			Quantity:  1,
			UnitPrice: moneyFromInt(t, 10),
		}); err != nil {
			t.Fatalf("upsert %d failed: %v", i, err)
		}
	}

	if err := repo.ClearItems(cart.ID); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	got, err := repo.GetByUser(userID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got == nil {
		t.Fatalf("cart record should survive clear")
	}
	if len(got.Items) != 0 {
		t.Fatalf("items want 0 got %d", len(got.Items))
	}
}

func TestSetItemPriceUpdatesSnapshot(t *testing.T) {
	repo := setupCartRepositoryTest(t)
	cart, err := repo.GetOrCreate(uuid.NewString())
	if err != nil {
		t.Fatalf("get-or-create failed: %v", err)
	}
	productID := uuid.NewString()

	item, err := repo.UpsertItem(&models.CartItem{
		CartID:    cart.ID,
		ProductID: productID,
		Quantity:  2,
		UnitPrice: moneyFromInt(t, 100),
	})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	affected, err := repo.SetItemPrice(item.ID, moneyFromInt(t, 75))
	if err != nil {
		t.Fatalf("set price failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("affected want 1 got %d", affected)
	}

	got, err := repo.GetItem(cart.ID, productID)
	if err != nil {
		t.Fatalf("reload item failed: %v", err)
	}
	if !got.UnitPrice.Equal(moneyFromInt(t, 75)) {
		t.Fatalf("unit price want 75 got %s", got.UnitPrice.String())
	}
}
