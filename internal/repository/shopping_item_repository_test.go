package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shinyyama/shopping-items/internal/db"
	"github.com/shinyyama/shopping-items/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestRepo(t *testing.T) (ShoppingItemRepository, *gorm.DB, *testClock) {
	t.Helper()
	conn := db.NewTestDB(t)
	clock := &testClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	conn.NowFunc = clock.Now
	return NewShoppingItemRepository(conn), conn, clock
}

func addItem(t *testing.T, repo ShoppingItemRepository, name, category string) *model.ShoppingItem {
	t.Helper()
	item, err := repo.Add(context.Background(), &model.ShoppingItem{
		Name:     name,
		Price:    decimal.RequireFromString("1.25"),
		Quantity: 1,
		Category: category,
		IsActive: true,
	})
	require.NoError(t, err)
	return item
}

func names(items []model.ShoppingItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name)
	}
	return out
}

func TestShoppingItemRepository_Add(t *testing.T) {
	repo, _, clock := newTestRepo(t)
	ctx := context.Background()

	first := addItem(t, repo, "Milk", "Dairy")
	second := addItem(t, repo, "Eggs", "Dairy")

	assert.NotZero(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.True(t, first.CreatedAt.Equal(clock.now))
	assert.True(t, first.CreatedAt.Equal(first.UpdatedAt))

	got, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Milk", got.Name)
	assert.True(t, got.IsActive)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("1.25")))
	assert.True(t, got.CreatedAt.Equal(got.UpdatedAt))
}

func TestShoppingItemRepository_GetAllOrdersByName(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	ctx := context.Background()

	addItem(t, repo, "Pears", "Produce")
	addItem(t, repo, "Apples", "Produce")
	addItem(t, repo, "Milk", "Dairy")

	items, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Apples", "Milk", "Pears"}, names(items))
}

func TestShoppingItemRepository_GetByIDMissing(t *testing.T) {
	repo, _, _ := newTestRepo(t)

	_, err := repo.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestShoppingItemRepository_Update(t *testing.T) {
	repo, _, clock := newTestRepo(t)
	ctx := context.Background()

	item := addItem(t, repo, "Milk", "Dairy")
	createdAt := item.CreatedAt

	clock.Advance(time.Minute)
	item.Name = "Oat Milk"
	item.Quantity = 4
	updated, err := repo.Update(ctx, item)
	require.NoError(t, err)
	assert.True(t, updated.UpdatedAt.Equal(clock.now))

	got, err := repo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Oat Milk", got.Name)
	assert.Equal(t, 4, got.Quantity)
	assert.True(t, got.CreatedAt.Equal(createdAt))
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))
}

func TestShoppingItemRepository_UpdateInactive(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	ctx := context.Background()

	item := addItem(t, repo, "Milk", "Dairy")
	deleted, err := repo.Delete(ctx, item.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	item.IsActive = true
	_, err = repo.Update(ctx, item)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	ok, err := repo.Exists(ctx, item.ID)
	require.NoError(t, err)
	assert.False(t, ok, "update must not resurrect a deleted item")
}

func TestShoppingItemRepository_SoftDelete(t *testing.T) {
	repo, conn, clock := newTestRepo(t)
	ctx := context.Background()

	item := addItem(t, repo, "Milk", "Dairy")
	clock.Advance(time.Hour)

	deleted, err := repo.Delete(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = repo.GetByID(ctx, item.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	byCategory, err := repo.GetByCategory(ctx, "Dairy")
	require.NoError(t, err)
	assert.Empty(t, byCategory)

	// The row stays in the table as a tombstone.
	var raw model.ShoppingItem
	require.NoError(t, conn.First(&raw, item.ID).Error)
	assert.False(t, raw.IsActive)
	assert.True(t, raw.UpdatedAt.Equal(clock.now))
	assert.True(t, raw.CreatedAt.Equal(item.CreatedAt))

	again, err := repo.Delete(ctx, item.ID)
	require.NoError(t, err)
	assert.False(t, again)
}

func TestShoppingItemRepository_DeleteMissing(t *testing.T) {
	repo, _, _ := newTestRepo(t)

	deleted, err := repo.Delete(context.Background(), 999)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestShoppingItemRepository_GetByCategory(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	ctx := context.Background()

	addItem(t, repo, "Pears", "Produce")
	addItem(t, repo, "Apples", "Produce")
	addItem(t, repo, "Kale", "produce")
	addItem(t, repo, "Milk", "Dairy")

	items, err := repo.GetByCategory(ctx, "Produce")
	require.NoError(t, err)
	assert.Equal(t, []string{"Apples", "Pears"}, names(items))

	none, err := repo.GetByCategory(ctx, "Bakery")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestShoppingItemRepository_Exists(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	ctx := context.Background()

	item := addItem(t, repo, "Milk", "Dairy")

	ok, err := repo.Exists(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Exists(ctx, item.ID+100)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestShoppingItemRepository_NotReady(t *testing.T) {
	repo := NewShoppingItemRepository(nil)
	ctx := context.Background()

	assert.False(t, repo.Ready())
	_, err := repo.GetAll(ctx)
	assert.ErrorIs(t, err, ErrDBNotReady)
	_, err = repo.Delete(ctx, 1)
	assert.ErrorIs(t, err, ErrDBNotReady)

	repo.SetDB(db.NewTestDB(t))
	assert.True(t, repo.Ready())
	_, err = repo.GetAll(ctx)
	assert.NoError(t, err)
}

func TestForUpdate(t *testing.T) {
	mysqlDB, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "app:secret@tcp(127.0.0.1:3306)/shopping",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)

	var item model.ShoppingItem
	stmt := mysqlDB.Scopes(active, forUpdate).First(&item, 1).Statement
	assert.Contains(t, stmt.SQL.String(), "FOR UPDATE")

	sqliteDB := db.NewTestDB(t)
	stmt = sqliteDB.Session(&gorm.Session{DryRun: true}).Scopes(active, forUpdate).First(&item, 1).Statement
	assert.NotContains(t, stmt.SQL.String(), "FOR UPDATE")
}
