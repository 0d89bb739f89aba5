package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_IsMatchesKindAndCode(t *testing.T) {
	sentinel := NotFound(21001, "儿童不存在")
	wrapped := fmt.Errorf("service: %w", sentinel.Wrap(stderrors.New("record not found")))

	if !stderrors.Is(wrapped, sentinel) {
		t.Error("包装后的错误应与哨兵错误匹配")
	}
	if stderrors.Is(wrapped, NotFound(21002, "班级不存在")) {
		t.Error("不同 Code 不应匹配")
	}
}

func TestKind_HTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindAuthentication, http.StatusUnauthorized},
		{KindAuthorization, http.StatusForbidden},
		{KindNotFound, http.StatusNotFound},
		{KindConflict, http.StatusConflict},
		{KindRateLimit, http.StatusTooManyRequests},
		{KindDatabase, http.StatusInternalServerError},
		{KindFileUpload, http.StatusInternalServerError},
		{KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := tt.kind.HTTPStatus(); got != tt.want {
			t.Errorf("%s: 期望 %d，实际 %d", tt.kind, tt.want, got)
		}
	}
}

func TestKindOf_NonAppErrorIsInternal(t *testing.T) {
	if KindOf(stderrors.New("boom")) != KindInternal {
		t.Error("普通错误应归类为内部错误")
	}
	if KindInternal.Operational() || KindDatabase.Operational() {
		t.Error("内部/数据库错误不属于业务错误")
	}
	if !KindConflict.Operational() {
		t.Error("冲突错误属于业务错误")
	}
}

func TestWithFields_DoesNotMutateSentinel(t *testing.T) {
	sentinel := Validation(10001, "参数校验失败")
	withFields := sentinel.WithFields(FieldError{Field: "email", Message: "格式无效"})

	if len(sentinel.Fields) != 0 {
		t.Error("哨兵错误不应被修改")
	}
	if len(withFields.Fields) != 1 || withFields.Fields[0].Field != "email" {
		t.Errorf("字段错误未正确附加: %+v", withFields.Fields)
	}
}
