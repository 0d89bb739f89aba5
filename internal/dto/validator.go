package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/cliffordobure/daycare-sub000/internal/model"
	apperrors "github.com/cliffordobure/daycare-sub000/pkg/errors"
)

// 自定义校验标签
const (
	hhmmTag    = "hhmm"
	weekdayTag = "weekday"
)

var weekdays = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

// IsWeekday 是否为合法的星期名（小写英文）
func IsWeekday(s string) bool {
	return weekdays[s]
}

// RegisterValidators 注册自定义校验器，并让错误字段名使用 json/form 标签
func RegisterValidators(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, key := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	if err := v.RegisterValidation(hhmmTag, func(fl validator.FieldLevel) bool {
		_, err := model.ParseHHMM(fl.Field().String())
		return err == nil
	}); err != nil {
		return err
	}
	return v.RegisterValidation(weekdayTag, func(fl validator.FieldLevel) bool {
		return IsWeekday(fl.Field().String())
	})
}

// FieldErrors 将绑定错误转换为逐字段错误列表
// 非校验错误（如 JSON 语法错误）返回单条 body 错误
func FieldErrors(err error) []apperrors.FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []apperrors.FieldError{{Field: "body", Message: "请求体格式错误"}}
	}
	out := make([]apperrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, apperrors.FieldError{Field: fieldPath(fe), Message: fieldMessage(fe)})
	}
	return out
}

// fieldPath 去掉顶层结构体名，保留嵌套路径，例如 records[0].child_id
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
		return "必填"
	case "email":
		return "邮箱格式不正确"
	case "uuid":
		return "必须是合法的 UUID"
	case "min":
		return fmt.Sprintf("不能小于 %s", fe.Param())
	case "max":
		return fmt.Sprintf("不能大于 %s", fe.Param())
	case "len":
		return fmt.Sprintf("长度必须为 %s", fe.Param())
	case "gt", "gte", "lt", "lte":
		return fmt.Sprintf("取值超出范围（%s %s）", fe.Tag(), fe.Param())
	case "oneof":
		return fmt.Sprintf("必须是以下之一: %s", fe.Param())
	case "datetime":
		return fmt.Sprintf("日期格式必须为 %s", fe.Param())
	case "url":
		return "URL 格式不正确"
	case "timezone":
		return "时区不合法"
	case "alphanum":
		return "只能包含字母和数字"
	case hhmmTag:
		return "时间格式必须为 HH:MM"
	case weekdayTag:
		return "必须是 monday..sunday"
	}
	return "校验失败: " + fe.Tag()
}
