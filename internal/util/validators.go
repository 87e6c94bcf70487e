package util

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// 11位手机号，首位不为0
var mobilePattern = regexp.MustCompile(`^[1-9][0-9]{10}$`)

// IsMobile 判断字符串是否为合法手机号
func IsMobile(s string) bool {
	return mobilePattern.MatchString(s)
}

// ValidateCNMobile 供 gin binding 使用的手机号验证器
func ValidateCNMobile(fl validator.FieldLevel) bool {
	value, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return IsMobile(value)
}
