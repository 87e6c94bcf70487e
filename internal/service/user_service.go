package service

import (
	"membership-backend/config"
	"membership-backend/internal/errors"
	"membership-backend/internal/model"
	"membership-backend/internal/repository/interfaces"
	"membership-backend/internal/util"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"golang.org/x/crypto/bcrypt"
)

// UserService 处理与用户相关的业务逻辑
type UserService struct {
	userRepo interfaces.UserRepository
}

// NewUserService 创建一个新的 UserService 实例
func NewUserService(userRepo interfaces.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// LoginResult 登录结果，包含用户和签发的令牌
type LoginResult struct {
	User         *model.User
	AccessToken  string
	RefreshToken string
}

// applyLevel 持久化前的等级重算步骤
// 等级始终由积分总和推导，重复调用无副作用
func applyLevel(user *model.User) {
	user.Level = model.ResolveLevel(user.TotalScore(), model.Levels)
}

// Register 注册新用户
// 手机号必填且唯一，密码可选（验证码登录不校验密码）
func (s *UserService) Register(user *model.User, password string) error {
	user.Role = model.RoleUser
	applyLevel(user)

	if password != "" {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		user.PasswordHash = string(hashedPassword)
	}

	// 手机号唯一键冲突由仓库层翻译为结构化错误
	if err := s.userRepo.Create(user); err != nil {
		return err
	}

	util.Logger.Info("用户注册成功",
		zap.Int("user_id", user.ID),
		zap.String("phone", user.Phone))
	return nil
}

// GetUserByID 通过ID获取用户信息
func (s *UserService) GetUserByID(id int) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "查询用户失败", err)
	}
	if user == nil {
		return nil, errors.New(errors.ErrUserNotFound, "用户不存在")
	}
	return user, nil
}

// GetUserByPhone 通过手机号获取用户信息
func (s *UserService) GetUserByPhone(phone string) (*model.User, error) {
	user, err := s.userRepo.FindByPhone(phone)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "查询用户失败", err)
	}
	if user == nil {
		return nil, errors.New(errors.ErrUserNotFound, "用户不存在")
	}
	return user, nil
}

// UpdateUser 更新用户资料
// 保存前无条件重算等级，等级不接受外部写入
func (s *UserService) UpdateUser(user *model.User) error {
	existingUser, err := s.GetUserByID(user.ID)
	if err != nil {
		return err
	}

	// 只更新允许修改的字段
	existingUser.Name = user.Name
	existingUser.NickName = user.NickName
	existingUser.Gender = user.Gender
	existingUser.Birthday = user.Birthday
	existingUser.Profession = user.Profession
	existingUser.Email = user.Email

	applyLevel(existingUser)
	if err := s.userRepo.Update(existingUser); err != nil {
		return errors.Wrap(errors.ErrDatabase, "更新用户失败", err)
	}

	*user = *existingUser
	return nil
}

// ListUsers 分页列出用户，按创建时间降序
// page 默认 1，perPage 默认 30，支持昵称和手机号的等值过滤
func (s *UserService) ListUsers(opts interfaces.ListUsersOptions) ([]*model.User, error) {
	if opts.Page <= 0 {
		opts.Page = 1
	}
	if opts.PerPage <= 0 {
		opts.PerPage = 30
	}
	return s.userRepo.List(opts)
}

// UpdateUserRole 更新用户角色
func (s *UserService) UpdateUserRole(userID int, newRole string) error {
	if !model.IsValidRole(newRole) {
		return errors.New(errors.ErrValidation, "无效的角色")
	}
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}
	user.Role = newRole
	applyLevel(user)
	return s.userRepo.Update(user)
}

// AwardScore 为用户追加一条积分明细并重算等级
// 明细只增不改，等级在保存前由总积分推导
func (s *UserService) AwardScore(userID, value int, reason string) (*model.User, error) {
	if value <= 0 {
		return nil, errors.New(errors.ErrValidation, "积分值必须大于0")
	}

	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	entry := &model.ScoreEntry{
		UserID:     userID,
		Value:      value,
		Reason:     reason,
		RecordedAt: time.Now(),
	}
	if err := s.userRepo.AppendScore(entry); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "追加积分失败", err)
	}

	user.Score = append(user.Score, *entry)
	applyLevel(user)
	if err := s.userRepo.Update(user); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "保存用户失败", err)
	}

	util.Logger.Info("积分发放成功",
		zap.Int("user_id", userID),
		zap.Int("value", value),
		zap.Int("total_score", user.TotalScore()),
		zap.String("level", user.Level.Name))
	return user, nil
}

// UpdateAvatar 更新用户头像
func (s *UserService) UpdateAvatar(userID int, avatarURL string) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}

	user.Avatar = avatarURL
	applyLevel(user)
	return s.userRepo.Update(user)
}

// FindAndGenerateToken 根据手机号查找用户并签发令牌
// 两条路径：验证码登录和刷新令牌续签，二者都不校验密码
func (s *UserService) FindAndGenerateToken(phone, captchaValue, refreshToken string) (*LoginResult, error) {
	if phone == "" {
		return nil, errors.New(errors.ErrValidation, "需要手机号才能生成令牌")
	}

	user, err := s.userRepo.FindByPhone(phone)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "查询用户失败", err)
	}

	switch {
	case captchaValue != "":
		// TODO: 将验证码与会话中保存的期望值比对后再签发令牌
		if user == nil {
			return nil, errors.New(errors.ErrUserNotFound, "用户不存在")
		}
		return s.issueTokens(user)

	case refreshToken != "":
		rt, err := s.userRepo.FindRefreshToken(refreshToken)
		if err != nil {
			return nil, errors.Wrap(errors.ErrDatabase, "查询刷新令牌失败", err)
		}
		if rt == nil || rt.UserPhone != phone {
			return nil, errors.New(errors.ErrInvalidCredentials, "手机号或刷新令牌不正确")
		}
		if rt.Expires.Before(time.Now()) {
			return nil, errors.New(errors.ErrInvalidRefreshToken, "刷新令牌已失效")
		}
		if user == nil {
			return nil, errors.New(errors.ErrUserNotFound, "用户不存在")
		}
		// 旧令牌作废，换发新令牌
		if err := s.userRepo.DeleteRefreshToken(refreshToken); err != nil {
			return nil, errors.Wrap(errors.ErrDatabase, "作废刷新令牌失败", err)
		}
		return s.issueTokens(user)

	default:
		return nil, errors.New(errors.ErrInvalidCredentials, "手机号或刷新令牌不正确")
	}
}

// issueTokens 签发访问令牌和刷新令牌
func (s *UserService) issueTokens(user *model.User) (*LoginResult, error) {
	accessToken, err := util.GenerateToken(user.ID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInternal, "生成令牌失败", err)
	}

	rt := &model.RefreshToken{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		UserPhone: user.Phone,
		Expires:   time.Now().AddDate(0, 0, config.AppConfig.RefreshExpirationDays),
	}
	if err := s.userRepo.CreateRefreshToken(rt); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "保存刷新令牌失败", err)
	}

	return &LoginResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: rt.Token,
	}, nil
}

// UserServiceInterface 定义处理器依赖的服务方法
type UserServiceInterface interface {
	Register(user *model.User, password string) error
	GetUserByID(id int) (*model.User, error)
	GetUserByPhone(phone string) (*model.User, error)
	UpdateUser(user *model.User) error
	ListUsers(opts interfaces.ListUsersOptions) ([]*model.User, error)
	UpdateUserRole(userID int, newRole string) error
	AwardScore(userID, value int, reason string) (*model.User, error)
	UpdateAvatar(userID int, avatarURL string) error
	FindAndGenerateToken(phone, captchaValue, refreshToken string) (*LoginResult, error)
	CreateAddress(address *model.UserAddress) error
	UpdateAddress(address *model.UserAddress) error
	DeleteAddress(id int) error
	ListUserAddresses(userID int) ([]*model.UserAddress, error)
}

// 确保 UserService 实现了 UserServiceInterface
var _ UserServiceInterface = (*UserService)(nil)

// CreateAddress 创建收货地址
func (s *UserService) CreateAddress(address *model.UserAddress) error {
	if _, err := s.GetUserByID(address.UserID); err != nil {
		return err
	}
	if err := validateAddress(address); err != nil {
		return err
	}
	return s.userRepo.CreateAddress(address)
}

func validateAddress(address *model.UserAddress) error {
	if address.ReceiverName == "" {
		return errors.New(errors.ErrValidation, "收件人姓名不能为空")
	}
	if address.Phone == "" {
		return errors.New(errors.ErrValidation, "收件人手机号不能为空")
	}
	if address.Province == "" || address.City == "" || address.District == "" {
		return errors.New(errors.ErrValidation, "地址信息不完整")
	}
	if address.DetailAddress == "" {
		return errors.New(errors.ErrValidation, "详细地址不能为空")
	}
	return nil
}

// UpdateAddress 更新收货地址
func (s *UserService) UpdateAddress(address *model.UserAddress) error {
	return s.userRepo.UpdateAddress(address)
}

// DeleteAddress 删除收货地址
func (s *UserService) DeleteAddress(id int) error {
	return s.userRepo.DeleteAddress(id)
}

// ListUserAddresses 返回用户的收货地址列表
func (s *UserService) ListUserAddresses(userID int) ([]*model.UserAddress, error) {
	return s.userRepo.ListUserAddresses(userID)
}
