package model

import "time"

// ScoreEntry 积分明细，追加后不可修改或删除
type ScoreEntry struct {
	ID         int       `json:"id"`
	UserID     int       `json:"-"`
	Value      int       `json:"value"`
	Reason     string    `json:"reason"`
	RecordedAt time.Time `json:"recorded_at"`
}

// User 结构体表示用户模型
type User struct {
	ID           int            `json:"id"`
	Phone        string         `json:"phone"`
	Name         string         `json:"name"`
	NickName     string         `json:"nick_name"`
	Avatar       string         `json:"avatar"`
	Gender       string         `json:"gender"`     // 性别键，见 Genders
	Birthday     string         `json:"birthday"`
	Profession   int            `json:"profession"` // 职业键，见 Professions
	Email        string         `json:"email"`
	PasswordHash string         `json:"-"` // 密码哈希不应在JSON中暴露
	Role         string         `json:"role"`
	Level        Level          `json:"level"` // 由积分总和推导，不接受客户端写入
	Score        []ScoreEntry   `json:"score"`
	Addresses    []*UserAddress `json:"delivery_addresses"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// UserAddress 用户收货地址模型
type UserAddress struct {
	ID            int       `json:"id"`
	UserID        int       `json:"user_id"`
	ReceiverName  string    `json:"receiver_name"`
	Phone         string    `json:"phone"`
	Province      string    `json:"province"`
	City          string    `json:"city"`
	District      string    `json:"district"`
	DetailAddress string    `json:"detail_address"`
	IsDefault     bool      `json:"is_default"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// RefreshToken 刷新令牌，绑定用户手机号并带有过期时间
type RefreshToken struct {
	ID        int       `json:"-"`
	Token     string    `json:"token"`
	UserID    int       `json:"-"`
	UserPhone string    `json:"user_phone"`
	Expires   time.Time `json:"expires"`
}

// TotalScore 返回用户积分明细的总和
func (u *User) TotalScore() int {
	return TotalScore(u.Score)
}

// UserProfile 公开资料视图，不包含任何凭据字段
type UserProfile struct {
	ID             int            `json:"id"`
	Name           string         `json:"name"`
	NickName       string         `json:"nick_name"`
	Phone          string         `json:"phone"`
	Avatar         string         `json:"avatar"`
	Gender         string         `json:"gender"`
	GenderName     string         `json:"gender_name,omitempty"`
	Birthday       string         `json:"birthday"`
	Profession     int            `json:"profession"`
	ProfessionName string         `json:"profession_name,omitempty"`
	Addresses      []*UserAddress `json:"delivery_addresses"`
	Score          []ScoreEntry   `json:"score"`
	TotalScore     int            `json:"total_score"`
	Level          Level          `json:"level"`
	CreatedAt      time.Time      `json:"created_at"`
}

// ScoreRecords 仅包含积分明细的视图
type ScoreRecords struct {
	Score []ScoreEntry `json:"score"`
}

// Transform 返回用户的公开资料视图
func (u *User) Transform() UserProfile {
	return UserProfile{
		ID:             u.ID,
		Name:           u.Name,
		NickName:       u.NickName,
		Phone:          u.Phone,
		Avatar:         u.Avatar,
		Gender:         u.Gender,
		GenderName:     Genders[u.Gender],
		Birthday:       u.Birthday,
		Profession:     u.Profession,
		ProfessionName: Professions[u.Profession],
		Addresses:      u.Addresses,
		Score:          u.Score,
		TotalScore:     u.TotalScore(),
		Level:          u.Level,
		CreatedAt:      u.CreatedAt,
	}
}

// GetScoreRecords 返回仅含积分明细的视图
func (u *User) GetScoreRecords() ScoreRecords {
	return ScoreRecords{Score: u.Score}
}
