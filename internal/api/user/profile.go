package user

import (
	"fmt"
	"membership-backend/config"
	"membership-backend/internal/errors"
	"membership-backend/internal/model"
	"membership-backend/internal/service"
	"membership-backend/internal/storage"
	"membership-backend/internal/util"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProfileHandler struct {
	userService service.UserServiceInterface
	storage     storage.Storage
}

func NewProfileHandler(userService service.UserServiceInterface, storage storage.Storage) *ProfileHandler {
	return &ProfileHandler{userService, storage}
}

// GetProfile 返回当前用户的公开资料视图
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID := c.GetInt("user_id")
	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		util.Logger.Error("获取用户资料失败", zap.Error(err))
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{
		"user": user.Transform(),
	}, "")
}

// GetScoreRecords 返回当前用户的积分明细视图
func (h *ProfileHandler) GetScoreRecords(c *gin.Context) {
	userID := c.GetInt("user_id")
	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, user.GetScoreRecords(), "")
}

// UpdateProfile 更新当前用户的资料
// 性别和职业以枚举键提交，等级字段不接受写入
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	currentUser, err := h.userService.GetUserByID(userID)
	if err != nil {
		util.Logger.Error("获取用户信息失败", zap.Error(err))
		errors.HandleError(c, err)
		return
	}

	var updateData struct {
		Name       string `json:"name"`
		NickName   string `json:"nick_name"`
		Gender     string `json:"gender"`
		Birthday   string `json:"birthday"`
		Profession int    `json:"profession"`
		Email      string `json:"email"`
	}

	if err := c.ShouldBindJSON(&updateData); err != nil {
		util.Logger.Warn("更新用户资料失败，无效的请求数据", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	if !model.IsValidGender(updateData.Gender) {
		errors.HandleError(c, errors.New(errors.ErrValidation, "无效的性别").WithFields(errors.FieldError{
			Field:    "gender",
			Location: "body",
			Messages: []string{"无效的性别"},
		}))
		return
	}
	if !model.IsValidProfession(updateData.Profession) {
		errors.HandleError(c, errors.New(errors.ErrValidation, "无效的职业").WithFields(errors.FieldError{
			Field:    "profession",
			Location: "body",
			Messages: []string{"无效的职业"},
		}))
		return
	}

	// 只更新允许用户修改的字段
	if updateData.Name != "" {
		currentUser.Name = updateData.Name
	}
	if updateData.NickName != "" {
		currentUser.NickName = updateData.NickName
	}
	if updateData.Gender != "" {
		currentUser.Gender = updateData.Gender
	}
	if updateData.Birthday != "" {
		currentUser.Birthday = updateData.Birthday
	}
	if updateData.Profession != 0 {
		currentUser.Profession = updateData.Profession
	}
	if updateData.Email != "" {
		currentUser.Email = updateData.Email
	}

	if err := h.userService.UpdateUser(currentUser); err != nil {
		util.Logger.Error("更新用户资料失败", zap.Error(err))
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{
		"user": currentUser.Transform(),
	}, "资料更新成功")
}

// UploadAvatar 上传并更新当前用户的头像
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	userID := c.GetInt("user_id")

	file, err := c.FormFile("avatar")
	if err != nil {
		util.Logger.Error("获取上传文件失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrBadRequest, "无法获取上传文件", err))
		return
	}

	filename := util.GenerateUniqueFilename(file.Filename)
	path := fmt.Sprintf("avatars/%d/%s", userID, filename)

	avatarURL, err := h.storage.UploadFile(file, path)
	if err != nil {
		util.Logger.Error("上传头像失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "上传头像失败", err))
		return
	}

	fullAvatarURL := avatarURL
	if !strings.HasPrefix(avatarURL, "http://") && !strings.HasPrefix(avatarURL, "https://") {
		fullAvatarURL = fmt.Sprintf("%s/uploads/%s", config.AppConfig.BackendURL, avatarURL)
	}

	if err := h.userService.UpdateAvatar(userID, fullAvatarURL); err != nil {
		util.Logger.Error("更新用户头像失败", zap.Error(err))
		errors.HandleError(c, err)
		return
	}

	errors.HandleSuccess(c, gin.H{
		"avatar": fullAvatarURL,
	}, "头像上传成功")
}
