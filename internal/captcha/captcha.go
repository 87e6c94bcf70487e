package captcha

import (
	"crypto/rand"
	"math/big"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// 验证码字符集，去掉了易混淆的 0/O/1/I
const charset = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// Store 保存会话级的一次性验证码
// 每个会话只保存一个期望值，匹配成功后立即清除
type Store struct {
	mu     sync.Mutex
	codes  map[string]string
	length int
}

// NewStore 创建验证码存储，length 为验证码长度
func NewStore(length int) *Store {
	if length <= 0 {
		length = 4
	}
	return &Store{
		codes:  make(map[string]string),
		length: length,
	}
}

// Issue 生成一个新的验证码并绑定到新的会话ID
// 返回会话ID和验证码明文，图片渲染由前端服务完成
func (s *Store) Issue() (string, string, error) {
	code, err := randomCode(s.length)
	if err != nil {
		return "", "", err
	}

	id := uuid.NewString()

	s.mu.Lock()
	s.codes[id] = code
	s.mu.Unlock()

	return id, code, nil
}

// Set 为指定会话写入期望值，覆盖旧值
func (s *Store) Set(sessionID, code string) {
	s.mu.Lock()
	s.codes[sessionID] = strings.ToUpper(code)
	s.mu.Unlock()
}

// Verify 将提交的验证码与会话中的期望值做大小写不敏感的比对
// 匹配成功时清除期望值，防止多次使用；期望值缺失或不匹配时返回 false 且不改变状态
func (s *Store) Verify(sessionID, supplied string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	expected, ok := s.codes[sessionID]
	if !ok || expected == "" {
		return false
	}

	if expected == strings.ToUpper(supplied) {
		delete(s.codes, sessionID)
		return true
	}
	return false
}

func randomCode(length int) (string, error) {
	var sb strings.Builder
	max := big.NewInt(int64(len(charset)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		sb.WriteByte(charset[n.Int64()])
	}
	return sb.String(), nil
}
