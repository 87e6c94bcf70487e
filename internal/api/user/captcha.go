package user

import (
	"membership-backend/internal/captcha"
	"membership-backend/internal/errors"

	"github.com/gin-gonic/gin"
)

// CaptchaHandler 处理验证码签发
type CaptchaHandler struct {
	store *captcha.Store
}

// NewCaptchaHandler 创建一个新的 CaptchaHandler 实例
func NewCaptchaHandler(store *captcha.Store) *CaptchaHandler {
	return &CaptchaHandler{store}
}

// GetCaptcha 签发一个绑定到新会话的一次性验证码
// 图片渲染由前端的验证码服务完成，后端只负责期望值
func (h *CaptchaHandler) GetCaptcha(c *gin.Context) {
	id, code, err := h.store.Issue()
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "生成验证码失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{
		"captcha_id": id,
		"captcha":    code,
	}, "")
}
