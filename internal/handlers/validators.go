package handlers

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// 资产编码：大写字母/数字开头，允许 - / . 分隔，3-50位
var kodeAsetPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9\-/.]{2,49}$`)

// RegisterValidators 注册自定义校验规则，启动时调用一次
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	v.RegisterValidation("kode_aset", func(fl validator.FieldLevel) bool {
		return kodeAsetPattern.MatchString(fl.Field().String())
	})
}
