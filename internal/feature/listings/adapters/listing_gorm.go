package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"umarket/internal/feature/listings/domain"
	"umarket/internal/feature/listings/domain/entity"
	"umarket/internal/feature/listings/usecase"
)

type listingGorm struct {
	db *gorm.DB
}

var _ usecase.ListingRepository = (*listingGorm)(nil)

// NewListingGormRepository は Postgres に直接接続する ListingRepository を生成します。
func NewListingGormRepository(db *gorm.DB) *listingGorm {
	return &listingGorm{db: db}
}

// ProductModel は Product テーブルの行です。
type ProductModel struct {
	ID          string    `gorm:"column:prod_id;primaryKey;size:36"`
	SellerID    string    `gorm:"size:36;not null;index"`
	Name        string    `gorm:"not null"`
	Description *string   `gorm:"size:1500"`
	Price       float64   `gorm:"not null"`
	Quantity    int       `gorm:"not null;default:1"`
	Sold        bool      `gorm:"not null;default:false;index"`
	Category    string    `gorm:"size:32;not null;default:miscellaneous"`
	CreatedAt   time.Time `gorm:"not null"`

	Clothing *ClothingModel `gorm:"foreignKey:ClothingID;references:ID;constraint:OnDelete:CASCADE"`
	Decor    *DecorModel    `gorm:"foreignKey:DecorID;references:ID;constraint:OnDelete:CASCADE"`
	Tickets  *TicketsModel  `gorm:"foreignKey:TicketsID;references:ID;constraint:OnDelete:CASCADE"`
}

func (ProductModel) TableName() string { return "Product" }

type ClothingModel struct {
	ClothingID string `gorm:"column:clothing_id;primaryKey;size:36"`
	Gender     string `gorm:"size:16;not null"`
	Size       string `gorm:"size:16;not null"`
	Type       string `gorm:"size:32;not null"`
	Color      string `gorm:"size:16;not null"`
	Used       bool   `gorm:"not null;default:false"`
}

func (ClothingModel) TableName() string { return "Clothing" }

type DecorModel struct {
	DecorID string `gorm:"column:decor_id;primaryKey;size:36"`
	Type    string `gorm:"size:32;not null"`
	Color   string `gorm:"size:16;not null"`
	Used    bool   `gorm:"not null;default:false"`
	Length  *int
	Width   *int
	Height  *int
}

func (DecorModel) TableName() string { return "Decor" }

type TicketsModel struct {
	TicketsID string `gorm:"column:tickets_id;primaryKey;size:36"`
	Type      string `gorm:"size:32;not null"`
}

func (TicketsModel) TableName() string { return "Tickets" }

// Models はAutoMigrate対象のモデルです。親テーブルが先です。
func Models() []any {
	return []any{&ProductModel{}, &ClothingModel{}, &DecorModel{}, &TicketsModel{}}
}

// ToEntity は ProductModel と読み込まれた詳細を Listing に変換します。
func (m *ProductModel) ToEntity() entity.Listing {
	l := entity.Listing{
		ID:          m.ID,
		SellerID:    m.SellerID,
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		Quantity:    m.Quantity,
		Sold:        m.Sold,
		Category:    entity.Category(m.Category),
		CreatedAt:   m.CreatedAt,
	}
	if l.Category == "" {
		l.Category = entity.CategoryMiscellaneous
	}
	switch {
	case m.Clothing != nil:
		l.Details = &entity.Details{
			Category: entity.CategoryClothing,
			Gender:   m.Clothing.Gender,
			Size:     m.Clothing.Size,
			Type:     m.Clothing.Type,
			Color:    entity.Color(m.Clothing.Color),
			Used:     m.Clothing.Used,
		}
	case m.Decor != nil:
		l.Details = &entity.Details{
			Category: entity.CategoryDecor,
			Type:     m.Decor.Type,
			Color:    entity.Color(m.Decor.Color),
			Used:     m.Decor.Used,
			Length:   m.Decor.Length,
			Width:    m.Decor.Width,
			Height:   m.Decor.Height,
		}
	case m.Tickets != nil:
		l.Details = &entity.Details{Category: entity.CategoryTickets, Type: m.Tickets.Type}
	}
	return l
}

// WithDetails は詳細テーブルをプリロードします。orders の gorm ストアからも使います。
func WithDetails(db *gorm.DB) *gorm.DB {
	return db.Preload("Clothing").Preload("Decor").Preload("Tickets")
}

func (r *listingGorm) List(ctx context.Context, filter entity.ListingFilter) ([]entity.Listing, error) {
	q := WithDetails(r.db.WithContext(ctx)).Order("created_at ASC")
	if filter.SellerID != nil {
		q = q.Where("seller_id = ?", *filter.SellerID)
	}
	if filter.Sold != nil {
		q = q.Where("sold = ?", *filter.Sold)
	}
	var rows []ProductModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	out := make([]entity.Listing, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToEntity())
	}
	return out, nil
}

func (r *listingGorm) FindByID(ctx context.Context, id string) (*entity.Listing, error) {
	return r.find(r.db.WithContext(ctx), id)
}

func (r *listingGorm) find(db *gorm.DB, id string) (*entity.Listing, error) {
	var m ProductModel
	if err := WithDetails(db).Where("prod_id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrListingNotFound
		}
		return nil, fmt.Errorf("get listing %s: %w", id, err)
	}
	l := m.ToEntity()
	return &l, nil
}

func (r *listingGorm) Create(ctx context.Context, listing *entity.Listing) (*entity.Listing, error) {
	m := ProductModel{
		ID:          uuid.NewString(),
		SellerID:    listing.SellerID,
		Name:        listing.Name,
		Description: listing.Description,
		Price:       listing.Price,
		Quantity:    listing.Quantity,
		Sold:        listing.Sold,
		Category:    string(listing.Category),
		CreatedAt:   time.Now().UTC(),
	}

	var out *entity.Listing
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&m).Error; err != nil {
			return fmt.Errorf("create listing: %w", err)
		}
		if err := syncDetailsGorm(tx, m.ID, listing.Category, listing.Details); err != nil {
			return err
		}
		created, err := r.find(tx, m.ID)
		if err != nil {
			return err
		}
		out = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *listingGorm) Update(ctx context.Context, id string, changes entity.ListingChanges) (*entity.Listing, error) {
	var out *entity.Listing
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := r.find(tx, id)
		if err != nil {
			return err
		}
		if changes.HasFieldChanges() {
			if err := tx.Model(&ProductModel{}).Where("prod_id = ?", id).Updates(updateColumns(changes)).Error; err != nil {
				return fmt.Errorf("update listing %s: %w", id, err)
			}
		}
		if changes.SyncDetails {
			category := existing.Category
			if changes.Category != nil {
				category = *changes.Category
			}
			if err := syncDetailsGorm(tx, id, category, changes.Details); err != nil {
				return err
			}
		}
		out, err = r.find(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *listingGorm) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := clearDetailsGorm(tx, id, ""); err != nil {
			return err
		}
		if err := tx.Where("prod_id = ?", id).Delete(&ProductModel{}).Error; err != nil {
			return fmt.Errorf("delete listing %s: %w", id, err)
		}
		return nil
	})
}

// updateColumns はカラム名をキーにした更新内容を作ります。
// map で渡すことで false / 0 / NULL も更新対象になります。
func updateColumns(c entity.ListingChanges) map[string]any {
	cols := map[string]any{}
	if c.Name != nil {
		cols["name"] = *c.Name
	}
	if c.Description.Set {
		cols["description"] = c.Description.Value
	}
	if c.Price != nil {
		cols["price"] = *c.Price
	}
	if c.Quantity != nil {
		cols["quantity"] = *c.Quantity
	}
	if c.Sold != nil {
		cols["sold"] = *c.Sold
	}
	if c.Category != nil {
		cols["category"] = string(*c.Category)
	}
	return cols
}

// syncDetailsGorm は category の詳細テーブルに details を upsert し、他の詳細テーブルの行を削除します。
func syncDetailsGorm(tx *gorm.DB, id string, category entity.Category, details *entity.Details) error {
	keep := entity.Category("")
	if details != nil {
		var row any
		switch category {
		case entity.CategoryClothing:
			row = &ClothingModel{ClothingID: id, Gender: details.Gender, Size: details.Size,
				Type: details.Type, Color: string(details.Color), Used: details.Used}
		case entity.CategoryDecor:
			row = &DecorModel{DecorID: id, Type: details.Type, Color: string(details.Color), Used: details.Used,
				Length: details.Length, Width: details.Width, Height: details.Height}
		case entity.CategoryTickets:
			row = &TicketsModel{TicketsID: id, Type: details.Type}
		}
		if row != nil {
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(row).Error; err != nil {
				return fmt.Errorf("upsert %s details for %s: %w", category, id, err)
			}
			keep = category
		}
	}
	return clearDetailsGorm(tx, id, keep)
}

// clearDetailsGorm は keep 以外の詳細テーブルから id の行を削除します。
func clearDetailsGorm(tx *gorm.DB, id string, keep entity.Category) error {
	tables := []struct {
		category entity.Category
		model    any
		column   string
	}{
		{entity.CategoryClothing, &ClothingModel{}, "clothing_id"},
		{entity.CategoryDecor, &DecorModel{}, "decor_id"},
		{entity.CategoryTickets, &TicketsModel{}, "tickets_id"},
	}
	for _, t := range tables {
		if t.category == keep {
			continue
		}
		if err := tx.Where(t.column+" = ?", id).Delete(t.model).Error; err != nil {
			return fmt.Errorf("clear %s details for %s: %w", t.category, id, err)
		}
	}
	return nil
}
