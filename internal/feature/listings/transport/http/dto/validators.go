package dto

import (
	"umarket/internal/feature/listings/domain/entity"
	"umarket/internal/platform/validation"
)

// RegisterValidators はリクエストDTOが使う "category" ルールを登録します。
func RegisterValidators() error {
	return validation.RegisterEnum("category", validation.Strings(entity.Categories), false)
}
