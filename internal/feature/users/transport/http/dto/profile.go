// Package dto はusersフィーチャーのレスポンスを定義します。
package dto

import "umarket/internal/feature/users/domain/entity"

// UserProfileRes は GET /users/:id のレスポンスです。
type UserProfileRes struct {
	ID                 string  `json:"id"`
	Email              *string `json:"email"`
	FullName           *string `json:"full_name"`
	ProfileDescription string  `json:"profile_description"`
	AvatarPath         *string `json:"avatar_path"`
	AvatarURL          *string `json:"avatar_url"`
}

// FromEntity は Profile をレスポンスに変換します。
func FromEntity(p entity.Profile) UserProfileRes {
	return UserProfileRes{
		ID:                 p.ID,
		Email:              p.Email,
		FullName:           p.FullName,
		ProfileDescription: p.ProfileDescription,
		AvatarPath:         p.AvatarPath,
		AvatarURL:          p.AvatarURL,
	}
}
