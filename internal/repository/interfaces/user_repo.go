package interfaces

import "membership-backend/internal/model"

// ListUsersOptions 用户列表查询参数
type ListUsersOptions struct {
	Page     int
	PerPage  int
	NickName string
	Phone    string
}

// UserRepository 接口定义了用户仓库应该实现的方法
type UserRepository interface {
	Create(user *model.User) error
	FindByID(id int) (*model.User, error)
	FindByPhone(phone string) (*model.User, error)
	Update(user *model.User) error
	Count() (int, error)
	List(opts ListUsersOptions) ([]*model.User, error)
	AppendScore(entry *model.ScoreEntry) error
	CreateRefreshToken(token *model.RefreshToken) error
	FindRefreshToken(token string) (*model.RefreshToken, error)
	DeleteRefreshToken(token string) error
	CreateAddress(address *model.UserAddress) error
	UpdateAddress(address *model.UserAddress) error
	DeleteAddress(id int) error
	ListUserAddresses(userID int) ([]*model.UserAddress, error)
}
