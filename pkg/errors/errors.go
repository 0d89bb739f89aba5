package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind 错误分类
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConflict
	KindRateLimit
	KindDatabase
	KindFileUpload
)

// String 返回分类名称
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindAuthentication:
		return "AuthenticationError"
	case KindAuthorization:
		return "AuthorizationError"
	case KindNotFound:
		return "NotFoundError"
	case KindConflict:
		return "ConflictError"
	case KindRateLimit:
		return "RateLimitError"
	case KindDatabase:
		return "DatabaseError"
	case KindFileUpload:
		return "FileUploadError"
	default:
		return "InternalError"
	}
}

// HTTPStatus 分类对应的 HTTP 状态码
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Operational 是否为可预期的业务错误（非业务错误需记录完整上下文并隐藏细节）
func (k Kind) Operational() bool {
	switch k {
	case KindValidation, KindAuthentication, KindAuthorization, KindNotFound, KindConflict, KindRateLimit:
		return true
	}
	return false
}

// FieldError 字段级校验错误
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AppError 业务错误
type AppError struct {
	Kind    Kind
	Code    int
	Message string
	Fields  []FieldError
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// Is 同 Kind + Code 视为同一错误，便于 errors.Is 比较哨兵错误
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// Wrap 在哨兵错误基础上附加底层原因
func (e *AppError) Wrap(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

// WithFields 在哨兵错误基础上附加字段错误
func (e *AppError) WithFields(fields ...FieldError) *AppError {
	cp := *e
	cp.Fields = append([]FieldError(nil), fields...)
	return &cp
}

// WithMessage 替换错误消息（保留 Kind/Code）
func (e *AppError) WithMessage(msg string) *AppError {
	cp := *e
	cp.Message = msg
	return &cp
}

// ── 构造函数 ──

func New(kind Kind, code int, message string) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message}
}

func Validation(code int, message string) *AppError {
	return New(KindValidation, code, message)
}

func Authentication(code int, message string) *AppError {
	return New(KindAuthentication, code, message)
}

func Authorization(code int, message string) *AppError {
	return New(KindAuthorization, code, message)
}

func NotFound(code int, message string) *AppError {
	return New(KindNotFound, code, message)
}

func Conflict(code int, message string) *AppError {
	return New(KindConflict, code, message)
}

func RateLimit(code int, message string) *AppError {
	return New(KindRateLimit, code, message)
}

func Database(err error) *AppError {
	return &AppError{Kind: KindDatabase, Code: 50001, Message: "数据库操作失败", Err: err}
}

func FileUpload(message string, err error) *AppError {
	return &AppError{Kind: KindFileUpload, Code: 50002, Message: message, Err: err}
}

// As 提取 AppError
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf 返回错误分类，非 AppError 视为内部错误
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindInternal
}

// ── 通用哨兵错误 ──

var (
	// ErrAccessDenied 统一的越权错误，不透露正确的租户范围
	ErrAccessDenied = Authorization(10003, "无权限访问")
	// ErrUnauthenticated 未认证
	ErrUnauthenticated = Authentication(10002, "未认证")
	// ErrInvalidParams 参数校验失败
	ErrInvalidParams = Validation(10001, "参数校验失败")
	// ErrTooManyRequests 请求过于频繁
	ErrTooManyRequests = RateLimit(10004, "请求过于频繁，请稍后再试")
)
