package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"umarket/internal/feature/listings/domain"
	"umarket/internal/feature/listings/domain/entity"
)

// setupTestDB prepares an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")

	// :memory: はコネクションごとに別DBになるため1本に固定する
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(Models()...), "failed to migrate tables")
	return db
}

func clothingListing(seller string) *entity.Listing {
	return &entity.Listing{
		SellerID: seller,
		Name:     "Hoodie",
		Price:    25,
		Quantity: 2,
		Category: entity.CategoryClothing,
		Details: &entity.Details{
			Category: entity.CategoryClothing, Gender: "UNISEX", Size: "L", Type: "SWEATERS", Color: "GREY", Used: true,
		},
	}
}

func TestListingGorm_CreateAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewListingGormRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, clothingListing("s1"))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	require.NotNil(t, created.Details)
	assert.Equal(t, "SWEATERS", created.Details.Type)
	assert.True(t, created.Details.Used)

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Details, found.Details)

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrListingNotFound)
}

func TestListingGorm_List_Filters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewListingGormRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, clothingListing("s1"))
	require.NoError(t, err)
	other, err := repo.Create(ctx, &entity.Listing{SellerID: "s2", Name: "Pens", Price: 2, Quantity: 1, Category: entity.CategorySchoolSupplies})
	require.NoError(t, err)
	sold := true
	_, err = repo.Update(ctx, other.ID, entity.ListingChanges{Sold: &sold})
	require.NoError(t, err)

	all, err := repo.List(ctx, entity.ListingFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	seller := "s1"
	mine, err := repo.List(ctx, entity.ListingFilter{SellerID: &seller})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Hoodie", mine[0].Name)

	soldOnly, err := repo.List(ctx, entity.ListingFilter{Sold: &sold})
	require.NoError(t, err)
	require.Len(t, soldOnly, 1)
	assert.Equal(t, "Pens", soldOnly[0].Name)
}

func TestListingGorm_Update_SwitchesSideTable(t *testing.T) {
	db := setupTestDB(t)
	repo := NewListingGormRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, clothingListing("s1"))
	require.NoError(t, err)

	cat := entity.CategoryDecor
	length := 40
	updated, err := repo.Update(ctx, created.ID, entity.ListingChanges{
		Category:    &cat,
		SyncDetails: true,
		Details: &entity.Details{
			Category: entity.CategoryDecor, Type: "RUGS", Color: "BLUE", Length: &length,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.CategoryDecor, updated.Category)
	require.NotNil(t, updated.Details)
	assert.Equal(t, entity.CategoryDecor, updated.Details.Category)
	assert.Equal(t, 40, *updated.Details.Length)

	var n int64
	require.NoError(t, db.Model(&ClothingModel{}).Where("clothing_id = ?", created.ID).Count(&n).Error)
	assert.Zero(t, n)
}

func TestListingGorm_Update_ClearsDescriptionAndZeroes(t *testing.T) {
	db := setupTestDB(t)
	repo := NewListingGormRepository(db)
	ctx := context.Background()

	desc := "with a note"
	created, err := repo.Create(ctx, &entity.Listing{SellerID: "s1", Name: "Box", Description: &desc, Price: 3, Quantity: 1, Category: entity.CategoryMiscellaneous})
	require.NoError(t, err)

	zero := 0
	updated, err := repo.Update(ctx, created.ID, entity.ListingChanges{
		Description: entity.DescriptionChange{Set: true},
		Quantity:    &zero,
	})
	require.NoError(t, err)
	assert.Nil(t, updated.Description)
	assert.Zero(t, updated.Quantity)

	_, err = repo.Update(ctx, "missing", entity.ListingChanges{Quantity: &zero})
	assert.ErrorIs(t, err, domain.ErrListingNotFound)
}

func TestListingGorm_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewListingGormRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, clothingListing("s1"))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, created.ID))

	_, err = repo.FindByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrListingNotFound)

	var n int64
	require.NoError(t, db.Model(&ClothingModel{}).Count(&n).Error)
	assert.Zero(t, n)
}
