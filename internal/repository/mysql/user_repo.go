package mysql

import (
	"database/sql"
	"fmt"
	"log"
	"membership-backend/internal/errors"
	"membership-backend/internal/model"
	"membership-backend/internal/repository/interfaces"
	"membership-backend/internal/util"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

// userRepository 实现了 UserRepository 接口
type userRepository struct {
	db *sql.DB
}

// NewUserRepository 创建一个新的 userRepository 实例
func NewUserRepository(db *sql.DB) *userRepository {
	return &userRepository{db}
}

// translateDuplicatePhone 将存储层的唯一键冲突翻译为结构化的冲突错误
// 其他错误原样返回
func translateDuplicatePhone(err error) error {
	if mysqlErr, ok := err.(*mysql.MySQLError); ok && mysqlErr.Number == 1062 {
		appErr := errors.Wrap(errors.ErrResourceConflict, "Validation Error", err).WithFields(errors.FieldError{
			Field:    "phone",
			Location: "body",
			Messages: []string{"手机号已存在"},
		})
		appErr.IsPublic = true
		return appErr
	}
	return err
}

// Create 创建一个新用户
func (r *userRepository) Create(user *model.User) error {
	log.Printf("尝试创建新用户：%s", user.Phone)
	query := `INSERT INTO users (phone, name, nick_name, avatar, gender, birthday, profession, email, password_hash, role, level_key)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.Exec(query,
		user.Phone, user.Name, user.NickName, user.Avatar, user.Gender,
		user.Birthday, user.Profession, user.Email, user.PasswordHash,
		user.Role, user.Level.Key)
	if err != nil {
		log.Printf("创建用户失败：%v", err)
		return translateDuplicatePhone(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		log.Printf("获取新用户ID失败：%v", err)
		return err
	}
	user.ID = int(id)
	log.Printf("用户创建成功：ID=%d", user.ID)
	return nil
}

const userColumns = `id, phone, name, nick_name, avatar, gender, birthday, profession,
                     email, password_hash, role, level_key, created_at, updated_at`

func (r *userRepository) scanUser(row *sql.Row) (*model.User, error) {
	var user model.User
	var levelKey int
	err := row.Scan(
		&user.ID, &user.Phone, &user.Name, &user.NickName, &user.Avatar,
		&user.Gender, &user.Birthday, &user.Profession, &user.Email,
		&user.PasswordHash, &user.Role, &levelKey, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Level = model.LevelByKey(levelKey)
	return &user, nil
}

// loadScores 加载用户的积分明细，按记录时间升序
func (r *userRepository) loadScores(userID int) ([]model.ScoreEntry, error) {
	query := `SELECT id, user_id, value, reason, recorded_at
              FROM user_scores WHERE user_id = ? ORDER BY recorded_at ASC, id ASC`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("查询积分明细失败: %w", err)
	}
	defer rows.Close()

	var entries []model.ScoreEntry
	for rows.Next() {
		var entry model.ScoreEntry
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Value, &entry.Reason, &entry.RecordedAt); err != nil {
			return nil, fmt.Errorf("扫描积分明细失败: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// FindByID 通过ID查找用户，包含积分明细和收货地址
func (r *userRepository) FindByID(id int) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	user, err := r.scanUser(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if user.Score, err = r.loadScores(user.ID); err != nil {
		return nil, err
	}
	if user.Addresses, err = r.ListUserAddresses(user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

// FindByPhone 通过手机号查找用户
func (r *userRepository) FindByPhone(phone string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE phone = ?`
	user, err := r.scanUser(r.db.QueryRow(query, phone))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if user.Score, err = r.loadScores(user.ID); err != nil {
		return nil, err
	}
	if user.Addresses, err = r.ListUserAddresses(user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

// Update 更新用户信息，等级键由调用方在保存前重新计算
func (r *userRepository) Update(user *model.User) error {
	_, err := r.db.Exec(`
		UPDATE users
		SET name = ?, nick_name = ?, avatar = ?, gender = ?, birthday = ?,
		    profession = ?, email = ?, role = ?, level_key = ?, updated_at = ?
		WHERE id = ?`,
		user.Name, user.NickName, user.Avatar, user.Gender, user.Birthday,
		user.Profession, user.Email, user.Role, user.Level.Key, time.Now(), user.ID)
	return err
}

// Count 返回用户总数
func (r *userRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// List 返回分页的用户列表，按创建时间降序
// 支持按昵称和手机号的等值过滤
func (r *userRepository) List(opts interfaces.ListUsersOptions) ([]*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE 1=1`
	args := []interface{}{}

	if opts.NickName != "" {
		query += " AND nick_name = ?"
		args = append(args, opts.NickName)
	}
	if opts.Phone != "" {
		query += " AND phone = ?"
		args = append(args, opts.Phone)
	}

	query += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, opts.PerPage, (opts.Page-1)*opts.PerPage)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		var user model.User
		var levelKey int
		err := rows.Scan(
			&user.ID, &user.Phone, &user.Name, &user.NickName, &user.Avatar,
			&user.Gender, &user.Birthday, &user.Profession, &user.Email,
			&user.PasswordHash, &user.Role, &levelKey, &user.CreatedAt, &user.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		user.Level = model.LevelByKey(levelKey)
		users = append(users, &user)
	}
	return users, rows.Err()
}

// AppendScore 追加一条积分明细，明细只增不改
func (r *userRepository) AppendScore(entry *model.ScoreEntry) error {
	query := `INSERT INTO user_scores (user_id, value, reason, recorded_at) VALUES (?, ?, ?, ?)`
	result, err := r.db.Exec(query, entry.UserID, entry.Value, entry.Reason, entry.RecordedAt)
	if err != nil {
		util.Logger.Error("追加积分明细失败",
			zap.Error(err),
			zap.Int("user_id", entry.UserID))
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	entry.ID = int(id)
	util.Logger.Info("积分明细追加成功",
		zap.Int("user_id", entry.UserID),
		zap.Int("value", entry.Value))
	return nil
}

// CreateRefreshToken 保存刷新令牌
func (r *userRepository) CreateRefreshToken(token *model.RefreshToken) error {
	query := `INSERT INTO refresh_tokens (token, user_id, user_phone, expires) VALUES (?, ?, ?, ?)`
	result, err := r.db.Exec(query, token.Token, token.UserID, token.UserPhone, token.Expires)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	token.ID = int(id)
	return nil
}

// FindRefreshToken 查找刷新令牌，未找到时返回 nil
func (r *userRepository) FindRefreshToken(token string) (*model.RefreshToken, error) {
	query := `SELECT id, token, user_id, user_phone, expires FROM refresh_tokens WHERE token = ?`
	var rt model.RefreshToken
	err := r.db.QueryRow(query, token).Scan(&rt.ID, &rt.Token, &rt.UserID, &rt.UserPhone, &rt.Expires)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &rt, nil
}

// DeleteRefreshToken 删除刷新令牌
func (r *userRepository) DeleteRefreshToken(token string) error {
	_, err := r.db.Exec(`DELETE FROM refresh_tokens WHERE token = ?`, token)
	return err
}

// CreateAddress 创建一个新地址
func (r *userRepository) CreateAddress(address *model.UserAddress) error {
	query := `INSERT INTO user_addresses
              (user_id, receiver_name, phone, province, city, district, detail_address, is_default)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.Exec(query,
		address.UserID, address.ReceiverName, address.Phone,
		address.Province, address.City, address.District,
		address.DetailAddress, address.IsDefault)
	if err != nil {
		util.Logger.Error("创建地址失败",
			zap.Error(err),
			zap.Int("user_id", address.UserID))
		return fmt.Errorf("failed to create address: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	address.ID = int(id)
	return nil
}

// UpdateAddress 更新地址信息
func (r *userRepository) UpdateAddress(address *model.UserAddress) error {
	query := `UPDATE user_addresses
              SET receiver_name = ?, phone = ?, province = ?, city = ?,
                  district = ?, detail_address = ?, is_default = ?
              WHERE id = ? AND user_id = ?`
	_, err := r.db.Exec(query,
		address.ReceiverName, address.Phone,
		address.Province, address.City, address.District,
		address.DetailAddress, address.IsDefault,
		address.ID, address.UserID)
	return err
}

// DeleteAddress 删除地址
func (r *userRepository) DeleteAddress(id int) error {
	_, err := r.db.Exec(`DELETE FROM user_addresses WHERE id = ?`, id)
	return err
}

// ListUserAddresses 返回用户的地址列表
func (r *userRepository) ListUserAddresses(userID int) ([]*model.UserAddress, error) {
	query := `SELECT id, user_id, receiver_name, phone, province, city, district,
                     detail_address, is_default, created_at, updated_at
              FROM user_addresses
              WHERE user_id = ?
              ORDER BY is_default DESC, created_at DESC`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query addresses: %w", err)
	}
	defer rows.Close()

	var addresses []*model.UserAddress
	for rows.Next() {
		var address model.UserAddress
		err := rows.Scan(
			&address.ID, &address.UserID, &address.ReceiverName,
			&address.Phone, &address.Province, &address.City,
			&address.District, &address.DetailAddress, &address.IsDefault,
			&address.CreatedAt, &address.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan address: %w", err)
		}
		addresses = append(addresses, &address)
	}

	return addresses, rows.Err()
}
