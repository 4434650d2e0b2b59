// Package api はフィーチャー間で共有するHTTPレスポンス型とリクエスト補助型を定義します。
package api

import (
	"bytes"
	stdjson "encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

// ErrorResponse はすべてのエラーレスポンスのボディです。
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// Nullable は「キーなし」「null」「値あり」を区別するJSONフィールドです。
// Set はキーがボディに存在した場合に true になります。
type Nullable[T any] struct {
	Set   bool
	Value *T
}

// UnmarshalJSON はキーが存在するときだけ呼ばれるので、ここで Set を立てます。
func (n *Nullable[T]) UnmarshalJSON(b []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

// BindingMessage はバインド/バリデーションエラーを利用者向けの1行メッセージにします。
func BindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fieldMessage(fe))
		}
		return strings.Join(msgs, "; ")
	}
	// gin はリクエストボディを標準ライブラリの encoding/json でデコードする
	var typeErr *stdjson.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Sprintf("%s: expected %s", typeErr.Field, typeErr.Type)
	}
	return "invalid request body"
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + ": field required"
	case "gt":
		return fmt.Sprintf("%s: must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s: must be greater than or equal to %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s: must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s: invalid value %v", field, fe.Value())
	}
}
