package service

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Error 面向客户端的业务错误，携带 HTTP 状态码和原样展示的消息
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	// DuplicateEmail 沿用 401，兼容现有前端
	ErrDuplicateEmail = &Error{http.StatusUnauthorized, "Email already exists"}
	// 邮箱不存在与密码错误返回同一个错误，避免枚举账号
	ErrInvalidCredentials = &Error{http.StatusUnauthorized, "Invalid email or password"}
	ErrUnauthenticated    = &Error{http.StatusUnauthorized, "Unauthorized"}
	// token 有效但账号已不存在
	ErrAccountGone = &Error{http.StatusUnauthorized, "Login first to access this endpoint."}
	ErrForbidden   = &Error{http.StatusForbidden, "Admin access required"}
	// 不存在与无权限合并为一个错误，不向调用方区分
	ErrProfileNotFound     = &Error{http.StatusBadRequest, "Profile not found or you do not have permission."}
	ErrProfileLimitReached = &Error{http.StatusBadRequest, "You can only have up to 4 profiles."}
	ErrContentNotFound     = &Error{http.StatusNotFound, "Content not found"}
)

// ValidationError 请求字段校验失败，Fields 为 字段名 -> 错误信息
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for k, v := range e.Fields {
		parts = append(parts, k+": "+v)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// 错误信息里使用 json 字段名
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// validateStruct 校验请求结构体，失败时返回 *ValidationError
func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe)] = fieldMessage(fe)
	}
	return &ValidationError{Fields: fields}
}

// fieldPath 去掉顶层结构体名，如 ContentInput.episodes[0].title -> episodes[0].title
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "Please enter a valid email"
	case "min":
		if fe.Kind() == reflect.String {
			return "must be at least " + fe.Param() + " characters"
		}
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "url":
		return "must be a URL address"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	default:
		return "is invalid"
	}
}
