package user

import (
	"membership-backend/internal/captcha"
	"membership-backend/internal/errors"
	"membership-backend/internal/model"
	"membership-backend/internal/service"
	"membership-backend/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler 处理与认证相关的HTTP请求
type AuthHandler struct {
	userService  service.UserServiceInterface
	captchaStore *captcha.Store
}

// NewAuthHandler 创建一个新的 AuthHandler 实例
func NewAuthHandler(userService service.UserServiceInterface, captchaStore *captcha.Store) *AuthHandler {
	return &AuthHandler{userService, captchaStore}
}

// Register 处理用户注册请求
// 手机号必填且唯一，密码可选，注册前必须通过验证码校验
func (h *AuthHandler) Register(c *gin.Context) {
	var registerData struct {
		Phone     string `json:"phone" binding:"required,cn_mobile"`
		Password  string `json:"password"`
		NickName  string `json:"nick_name"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		CaptchaID string `json:"captcha_id" binding:"required"`
		Captcha   string `json:"captcha" binding:"required"`
	}

	if err := c.ShouldBindJSON(&registerData); err != nil {
		util.Logger.Warn("注册失败，无效的请求数据", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	// 一次性验证码门禁，匹配即失效
	if !h.captchaStore.Verify(registerData.CaptchaID, registerData.Captcha) {
		errors.HandleError(c, errors.New(errors.ErrCaptchaMismatch, "验证码错误").WithFields(errors.FieldError{
			Field:    "captcha",
			Location: "body",
			Messages: []string{"验证码错误"},
		}))
		return
	}

	user := &model.User{
		Phone:    registerData.Phone,
		NickName: registerData.NickName,
		Name:     registerData.Name,
		Email:    registerData.Email,
	}

	if err := h.userService.Register(user, registerData.Password); err != nil {
		if appErr, ok := err.(*errors.AppError); ok && appErr.Code == errors.ErrResourceConflict {
			util.Logger.Warn("注册失败，手机号已存在",
				zap.String("phone", user.Phone))
			errors.HandleError(c, err)
			return
		}
		util.Logger.Error("注册失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "注册失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{
		"user": user.Transform(),
	}, "注册成功")
}

// Login 处理用户登录请求
// 携带验证码走验证码路径，携带刷新令牌走续签路径
func (h *AuthHandler) Login(c *gin.Context) {
	var loginData struct {
		Phone        string `json:"phone" binding:"required,cn_mobile"`
		Captcha      string `json:"captcha"`
		RefreshToken string `json:"refresh_token"`
	}

	if err := c.ShouldBindJSON(&loginData); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	result, err := h.userService.FindAndGenerateToken(loginData.Phone, loginData.Captcha, loginData.RefreshToken)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{
		"token":         result.AccessToken,
		"refresh_token": result.RefreshToken,
		"user":          result.User.Transform(),
	}, "登录成功")
}

// RefreshToken 处理令牌续签
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var refreshData struct {
		Phone        string `json:"phone" binding:"required,cn_mobile"`
		RefreshToken string `json:"refresh_token" binding:"required"`
	}

	if err := c.ShouldBindJSON(&refreshData); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	result, err := h.userService.FindAndGenerateToken(refreshData.Phone, "", refreshData.RefreshToken)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{
		"token":         result.AccessToken,
		"refresh_token": result.RefreshToken,
	}, "令牌刷新成功")
}
