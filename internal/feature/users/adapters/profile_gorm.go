package adapters

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"umarket/internal/feature/users/domain"
	"umarket/internal/feature/users/domain/entity"
	"umarket/internal/feature/users/usecase"
)

// ProfileModel は profiles テーブル（auth.users の公開ミラー）の行です。
type ProfileModel struct {
	ID                 string  `gorm:"primaryKey;size:36"`
	Email              *string `gorm:"size:320"`
	FullName           *string
	ProfileDescription *string
	AvatarPath         *string
}

func (ProfileModel) TableName() string { return "profiles" }

// Models はAutoMigrate対象のモデルです。
func Models() []any {
	return []any{&ProfileModel{}}
}

type profileGorm struct {
	db        *gorm.DB
	avatarURL func(path string) *string
}

var _ usecase.ProfileRepository = (*profileGorm)(nil)

// NewProfileGormRepository は profiles テーブルを読む ProfileRepository を生成します。
// avatarURL は avatar_path を公開URLに変換します。
func NewProfileGormRepository(db *gorm.DB, avatarURL func(path string) *string) *profileGorm {
	return &profileGorm{db: db, avatarURL: avatarURL}
}

func (r *profileGorm) FindByID(ctx context.Context, id string) (*entity.Profile, error) {
	var m ProfileModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get profile %s: %w", id, err)
	}

	p := &entity.Profile{ID: m.ID, Email: m.Email, FullName: m.FullName}
	if p.FullName == nil || *p.FullName == "" {
		p.FullName = m.Email
	}
	if m.ProfileDescription != nil {
		p.ProfileDescription = *m.ProfileDescription
	}
	if m.AvatarPath != nil && *m.AvatarPath != "" {
		p.AvatarPath = m.AvatarPath
		if r.avatarURL != nil {
			p.AvatarURL = r.avatarURL(*m.AvatarPath)
		}
	}
	return p, nil
}
