package user

import (
	"membership-backend/internal/errors"
	"membership-backend/internal/model"
	"membership-backend/internal/repository/interfaces"
	"membership-backend/internal/service"
	"membership-backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler struct {
	userService service.UserServiceInterface
}

func NewUserHandler(userService service.UserServiceInterface) *UserHandler {
	return &UserHandler{userService}
}

// ListUsers 分页返回用户列表（管理员）
// page 默认 1，per_page 默认 30，按创建时间降序
func (h *UserHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "30"))

	opts := interfaces.ListUsersOptions{
		Page:     page,
		PerPage:  perPage,
		NickName: c.Query("nick_name"),
		Phone:    c.Query("phone"),
	}

	users, err := h.userService.ListUsers(opts)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取用户列表失败", err))
		return
	}

	profiles := make([]model.UserProfile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.Transform())
	}

	errors.HandleSuccess(c, gin.H{
		"users":    profiles,
		"page":     opts.Page,
		"per_page": opts.PerPage,
	}, "")
}

// GetUser 通过ID返回单个用户（管理员）
func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的用户ID", err))
		return
	}

	user, err := h.userService.GetUserByID(id)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{"user": user.Transform()}, "")
}

// GetUserByPhone 通过手机号返回单个用户（管理员）
func (h *UserHandler) GetUserByPhone(c *gin.Context) {
	phone := c.Param("phone")
	if !util.IsMobile(phone) {
		errors.HandleError(c, errors.New(errors.ErrValidation, "无效的手机号").WithFields(errors.FieldError{
			Field:    "phone",
			Location: "path",
			Messages: []string{"无效的手机号"},
		}))
		return
	}

	user, err := h.userService.GetUserByPhone(phone)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{"user": user.Transform()}, "")
}

// UpdateUserRole 更新用户角色（管理员）
func (h *UserHandler) UpdateUserRole(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的用户ID", err))
		return
	}

	var roleData struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&roleData); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	if err := h.userService.UpdateUserRole(id, roleData.Role); err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, nil, "角色更新成功")
}

// AwardScore 为用户发放积分（管理员）
// 追加一条积分明细并触发等级重算
func (h *UserHandler) AwardScore(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的用户ID", err))
		return
	}

	var scoreData struct {
		Value  int    `json:"value" binding:"required,gt=0"`
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&scoreData); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的积分数据", err))
		return
	}

	user, err := h.userService.AwardScore(id, scoreData.Value, scoreData.Reason)
	if err != nil {
		util.Logger.Error("积分发放失败", zap.Error(err), zap.Int("user_id", id))
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{
		"user": user.Transform(),
	}, "积分发放成功")
}

// CreateAddress 为当前用户创建收货地址
func (h *UserHandler) CreateAddress(c *gin.Context) {
	var address model.UserAddress
	if err := c.ShouldBindJSON(&address); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的地址数据", err))
		return
	}

	address.UserID = c.GetInt("user_id")
	if err := h.userService.CreateAddress(&address); err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, address, "地址创建成功")
}

// UpdateAddress 更新当前用户的收货地址
func (h *UserHandler) UpdateAddress(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的地址ID", err))
		return
	}

	var address model.UserAddress
	if err := c.ShouldBindJSON(&address); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的地址数据", err))
		return
	}

	address.ID = id
	address.UserID = c.GetInt("user_id")

	if err := h.userService.UpdateAddress(&address); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "更新地址失败", err))
		return
	}

	errors.HandleSuccess(c, address, "地址更新成功")
}

// DeleteAddress 删除当前用户的收货地址
func (h *UserHandler) DeleteAddress(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的地址ID", err))
		return
	}

	if err := h.userService.DeleteAddress(id); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "删除地址失败", err))
		return
	}

	errors.HandleSuccess(c, nil, "地址删除成功")
}

// ListAddresses 返回当前用户的收货地址列表
func (h *UserHandler) ListAddresses(c *gin.Context) {
	userID := c.GetInt("user_id")
	addresses, err := h.userService.ListUserAddresses(userID)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取地址列表失败", err))
		return
	}

	errors.HandleSuccess(c, addresses, "")
}
