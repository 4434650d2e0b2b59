package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	listingadapters "umarket/internal/feature/listings/adapters"
	listingdomain "umarket/internal/feature/listings/domain"
	"umarket/internal/feature/orders/domain"
	"umarket/internal/feature/orders/domain/entity"
	"umarket/internal/feature/orders/usecase"
	"umarket/internal/platform/db"
)

type orderGorm struct {
	db *gorm.DB
}

var _ usecase.OrderRepository = (*orderGorm)(nil)

// NewOrderGormRepository は Postgres に直接接続する OrderRepository を生成します。
func NewOrderGormRepository(db *gorm.DB) *orderGorm {
	return &orderGorm{db: db}
}

// TransactionModel は Transactions テーブルの行です。
type TransactionModel struct {
	ID            string    `gorm:"primaryKey;size:36"`
	ProdID        string    `gorm:"column:prod_id;size:36;not null;index"`
	BuyerID       string    `gorm:"size:36;not null;index"`
	PaymentMethod *string   `gorm:"size:16"`
	CreatedAt     time.Time `gorm:"not null"`

	BuyerConfirmed          bool `gorm:"not null;default:false"`
	SellerConfirmed         bool `gorm:"not null;default:false"`
	BuyerConfirmedAt        *time.Time
	SellerConfirmedAt       *time.Time
	BuyerConfirmationNotes  *string
	SellerConfirmationNotes *string

	Product *listingadapters.ProductModel `gorm:"foreignKey:ProdID;references:ID"`
}

func (TransactionModel) TableName() string { return "Transactions" }

// Models はAutoMigrate対象のモデルです。Product の後に移行してください。
func Models() []any {
	return []any{&TransactionModel{}}
}

// ToEntity は TransactionModel と読み込まれた Product を Order に変換します。
func (m *TransactionModel) ToEntity() entity.Order {
	o := entity.Order{
		ID:                      m.ID,
		ListingID:               m.ProdID,
		BuyerID:                 m.BuyerID,
		BuyerConfirmed:          m.BuyerConfirmed,
		SellerConfirmed:         m.SellerConfirmed,
		BuyerConfirmedAt:        m.BuyerConfirmedAt,
		SellerConfirmedAt:       m.SellerConfirmedAt,
		BuyerConfirmationNotes:  m.BuyerConfirmationNotes,
		SellerConfirmationNotes: m.SellerConfirmationNotes,
	}
	if m.PaymentMethod != nil {
		pm := entity.PaymentMethod(*m.PaymentMethod)
		o.PaymentMethod = &pm
	}
	if !m.CreatedAt.IsZero() {
		created := m.CreatedAt
		o.CreatedAt = &created
	}
	if m.Product != nil {
		l := m.Product.ToEntity()
		o.Product = &l
		o.SellerID = l.SellerID
	}
	o.Status = entity.DeriveStatus(o.BuyerConfirmed, o.SellerConfirmed)
	return o
}

// withProduct は Product とその詳細テーブルをプリロードします。
func withProduct(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Product").
		Preload("Product.Clothing").
		Preload("Product.Decor").
		Preload("Product.Tickets")
}

func (r *orderGorm) List(ctx context.Context, filter entity.OrderFilter) ([]entity.Order, error) {
	q := withProduct(r.db.WithContext(ctx)).Order("created_at ASC")
	if filter.BuyerID != nil {
		q = q.Where("buyer_id = ?", *filter.BuyerID)
	}
	if filter.SellerID != nil {
		sellerProducts := r.db.Model(&listingadapters.ProductModel{}).
			Select("prod_id").
			Where("seller_id = ?", *filter.SellerID)
		q = q.Where("prod_id IN (?)", sellerProducts)
	}
	var rows []TransactionModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	out := make([]entity.Order, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToEntity())
	}
	return out, nil
}

func (r *orderGorm) FindByID(ctx context.Context, id string) (*entity.Order, error) {
	var m TransactionModel
	if err := withProduct(r.db.WithContext(ctx)).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}
	o := m.ToEntity()
	return &o, nil
}

func (r *orderGorm) Create(ctx context.Context, in entity.NewOrder) (*entity.Order, error) {
	m := TransactionModel{
		ID:        uuid.NewString(),
		ProdID:    in.ListingID,
		BuyerID:   in.BuyerID,
		CreatedAt: time.Now().UTC(),
	}
	if in.PaymentMethod != nil {
		pm := string(*in.PaymentMethod)
		m.PaymentMethod = &pm
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&m).Error; err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, listingdomain.ErrListingNotFound
		}
		return nil, fmt.Errorf("create order: %w", err)
	}
	return r.FindByID(ctx, m.ID)
}

func (r *orderGorm) Update(ctx context.Context, id string, changes entity.OrderChanges) (*entity.Order, error) {
	cols := map[string]any{}
	if pm := changes.PaymentMethod; pm.Set {
		if pm.Value != nil {
			cols["payment_method"] = string(*pm.Value)
		} else {
			cols["payment_method"] = nil
		}
	}
	if c := changes.BuyerConfirmation; c != nil {
		cols["buyer_confirmed"] = true
		cols["buyer_confirmed_at"] = c.At
		if c.Notes != nil {
			cols["buyer_confirmation_notes"] = *c.Notes
		}
	}
	if c := changes.SellerConfirmation; c != nil {
		cols["seller_confirmed"] = true
		cols["seller_confirmed_at"] = c.At
		if c.Notes != nil {
			cols["seller_confirmation_notes"] = *c.Notes
		}
	}
	if len(cols) > 0 {
		res := r.db.WithContext(ctx).Model(&TransactionModel{}).Where("id = ?", id).Updates(cols)
		if res.Error != nil {
			return nil, fmt.Errorf("update order %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, domain.ErrOrderNotFound
		}
	}
	return r.FindByID(ctx, id)
}
