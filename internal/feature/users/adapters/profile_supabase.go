// Package adapters はユーザープロフィールの取得元（GoTrue admin API / Postgres）を実装します。
package adapters

import (
	"context"
	"errors"
	"fmt"

	"umarket/internal/feature/users/domain"
	"umarket/internal/feature/users/domain/entity"
	"umarket/internal/feature/users/usecase"
	"umarket/internal/platform/supabase"
	"umarket/internal/shared/coerce"
)

// AuthAdminClient is the subset of the Supabase client the profile store needs.
type AuthAdminClient interface {
	AdminUser(ctx context.Context, id string) (supabase.Row, error)
	PublicObjectURL(path string) *string
}

type profileSupabase struct {
	client AuthAdminClient
}

var _ usecase.ProfileRepository = (*profileSupabase)(nil)

// NewProfileSupabaseRepository は GoTrue の user_metadata からプロフィールを組み立てる
// ProfileRepository を生成します。
func NewProfileSupabaseRepository(c AuthAdminClient) *profileSupabase {
	return &profileSupabase{client: c}
}

func (r *profileSupabase) FindByID(ctx context.Context, id string) (*entity.Profile, error) {
	row, err := r.client.AdminUser(ctx, id)
	if err != nil {
		if errors.Is(err, supabase.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}

	meta, _ := row["user_metadata"].(map[string]any)
	p := &entity.Profile{Email: coerce.StringPtr(row["email"])}
	p.ID, _ = coerce.String(row["id"])

	// full_name が無ければ email を表示名にする
	if name, ok := coerce.String(meta["full_name"]); ok && name != "" {
		p.FullName = &name
	} else {
		p.FullName = p.Email
	}
	p.ProfileDescription, _ = coerce.String(meta["profile_description"])

	if path, ok := coerce.String(meta["avatar_path"]); ok && path != "" {
		p.AvatarPath = &path
		p.AvatarURL = r.client.PublicObjectURL(path)
	}
	return p, nil
}
