// Package validation はginのバインディングに列挙型のカスタムバリデーターを登録します。
package validation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterEnum は tag という名前で、値が values のいずれかであることを検証するルールを登録します。
// fold が true なら大文字小文字を区別しません。同じ tag の再登録は上書きになります。
func RegisterEnum(tag string, values []string, fold bool) error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("validation: unexpected validator engine %T", binding.Validator.Engine())
	}
	return v.RegisterValidation(tag, enum(values, fold))
}

func enum(values []string, fold bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if fold {
			return slices.ContainsFunc(values, func(v string) bool { return strings.EqualFold(v, s) })
		}
		return slices.Contains(values, s)
	}
}

// Strings は文字列型の列挙値を []string に変換します。
func Strings[T ~string](vs []T) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = string(v)
	}
	return out
}
