package user

import (
	"bytes"
	"encoding/json"
	"membership-backend/config"
	"membership-backend/internal/captcha"
	"membership-backend/internal/errors"
	"membership-backend/internal/model"
	"membership-backend/internal/repository/interfaces"
	"membership-backend/internal/service"
	"membership-backend/internal/util"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	util.InitLogger("error")
	config.AppConfig = config.Config{
		JWTSecret:            "test-secret",
		JWTExpirationMinutes: 15,
	}
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("cn_mobile", util.ValidateCNMobile)
	}
	os.Exit(m.Run())
}

// MockUserService 是 UserServiceInterface 的模拟实现
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(user *model.User, password string) error {
	args := m.Called(user, password)
	return args.Error(0)
}

func (m *MockUserService) GetUserByID(id int) (*model.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) GetUserByPhone(phone string) (*model.User, error) {
	args := m.Called(phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) UpdateUser(user *model.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserService) ListUsers(opts interfaces.ListUsersOptions) ([]*model.User, error) {
	args := m.Called(opts)
	return args.Get(0).([]*model.User), args.Error(1)
}

func (m *MockUserService) UpdateUserRole(userID int, newRole string) error {
	args := m.Called(userID, newRole)
	return args.Error(0)
}

func (m *MockUserService) AwardScore(userID, value int, reason string) (*model.User, error) {
	args := m.Called(userID, value, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) UpdateAvatar(userID int, avatarURL string) error {
	args := m.Called(userID, avatarURL)
	return args.Error(0)
}

func (m *MockUserService) FindAndGenerateToken(phone, captchaValue, refreshToken string) (*service.LoginResult, error) {
	args := m.Called(phone, captchaValue, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LoginResult), args.Error(1)
}

func (m *MockUserService) CreateAddress(address *model.UserAddress) error {
	args := m.Called(address)
	return args.Error(0)
}

func (m *MockUserService) UpdateAddress(address *model.UserAddress) error {
	args := m.Called(address)
	return args.Error(0)
}

func (m *MockUserService) DeleteAddress(id int) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockUserService) ListUserAddresses(userID int) ([]*model.UserAddress, error) {
	args := m.Called(userID)
	return args.Get(0).([]*model.UserAddress), args.Error(1)
}

// 确保 MockUserService 实现了 UserServiceInterface
var _ service.UserServiceInterface = (*MockUserService)(nil)

// TestRegister 测试注册处理器
func TestRegister(t *testing.T) {
	mockService := new(MockUserService)
	store := captcha.NewStore(4)
	handler := NewAuthHandler(mockService, store)

	router := gin.New()
	router.POST("/register", handler.Register)

	// 模拟成功注册
	store.Set("session-1", "AB12")
	mockService.On("Register", mock.AnythingOfType("*model.User"), "").Return(nil)

	body := []byte(`{"phone": "13800138000", "nick_name": "测试", "captcha_id": "session-1", "captcha": "ab12"}`)
	req, _ := http.NewRequest("POST", "/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

// TestRegisterCaptchaMismatch 测试验证码不匹配时拒绝注册
func TestRegisterCaptchaMismatch(t *testing.T) {
	mockService := new(MockUserService)
	store := captcha.NewStore(4)
	handler := NewAuthHandler(mockService, store)

	router := gin.New()
	router.POST("/register", handler.Register)

	store.Set("session-1", "AB12")

	body := []byte(`{"phone": "13800138000", "captcha_id": "session-1", "captcha": "XXXX"}`)
	req, _ := http.NewRequest("POST", "/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response errors.ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "captcha", response.Errors[0].Field)
	mockService.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

// TestRegisterInvalidPhone 测试手机号格式校验
func TestRegisterInvalidPhone(t *testing.T) {
	mockService := new(MockUserService)
	store := captcha.NewStore(4)
	handler := NewAuthHandler(mockService, store)

	router := gin.New()
	router.POST("/register", handler.Register)

	// 以0开头的手机号不合法
	body := []byte(`{"phone": "03800138000", "captcha_id": "session-1", "captcha": "AB12"}`)
	req, _ := http.NewRequest("POST", "/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

// TestRegisterDuplicatePhone 测试手机号冲突返回409
func TestRegisterDuplicatePhone(t *testing.T) {
	mockService := new(MockUserService)
	store := captcha.NewStore(4)
	handler := NewAuthHandler(mockService, store)

	router := gin.New()
	router.POST("/register", handler.Register)

	store.Set("session-1", "AB12")
	conflict := errors.New(errors.ErrResourceConflict, "Validation Error").WithFields(errors.FieldError{
		Field:    "phone",
		Location: "body",
		Messages: []string{"手机号已存在"},
	})
	mockService.On("Register", mock.AnythingOfType("*model.User"), "").Return(conflict)

	body := []byte(`{"phone": "13800138000", "captcha_id": "session-1", "captcha": "AB12"}`)
	req, _ := http.NewRequest("POST", "/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	var response errors.ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "phone", response.Errors[0].Field)
}

// TestLogin 测试登录处理器
func TestLogin(t *testing.T) {
	mockService := new(MockUserService)
	handler := NewAuthHandler(mockService, captcha.NewStore(4))

	router := gin.New()
	router.POST("/login", handler.Login)

	// 模拟成功登录
	mockUser := &model.User{ID: 1, Phone: "13800138000", Level: model.DefaultLevel()}
	mockService.On("FindAndGenerateToken", "13800138000", "AB12", "").Return(&service.LoginResult{
		User:         mockUser,
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
	}, nil)

	body := []byte(`{"phone": "13800138000", "captcha": "AB12"}`)
	req, _ := http.NewRequest("POST", "/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "access-token", data["token"])
	assert.Equal(t, "refresh-token", data["refresh_token"])
	mockService.AssertExpectations(t)
}

// TestLoginUserNotFound 测试验证码路径下用户不存在返回404
func TestLoginUserNotFound(t *testing.T) {
	mockService := new(MockUserService)
	handler := NewAuthHandler(mockService, captcha.NewStore(4))

	router := gin.New()
	router.POST("/login", handler.Login)

	mockService.On("FindAndGenerateToken", "13800138009", "AB12", "").
		Return(nil, errors.New(errors.ErrUserNotFound, "用户不存在"))

	body := []byte(`{"phone": "13800138009", "captcha": "AB12"}`)
	req, _ := http.NewRequest("POST", "/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestRefreshTokenExpired 测试过期刷新令牌返回401
func TestRefreshTokenExpired(t *testing.T) {
	mockService := new(MockUserService)
	handler := NewAuthHandler(mockService, captcha.NewStore(4))

	router := gin.New()
	router.POST("/refresh-token", handler.RefreshToken)

	mockService.On("FindAndGenerateToken", "13800138000", "", "expired-token").
		Return(nil, errors.New(errors.ErrInvalidRefreshToken, "刷新令牌已失效"))

	body := []byte(`{"phone": "13800138000", "refresh_token": "expired-token"}`)
	req, _ := http.NewRequest("POST", "/refresh-token", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// TestGetCaptcha 测试验证码签发接口
func TestGetCaptcha(t *testing.T) {
	store := captcha.NewStore(4)
	handler := NewCaptchaHandler(store)

	router := gin.New()
	router.GET("/captcha", handler.GetCaptcha)

	req, _ := http.NewRequest("GET", "/captcha", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	data := response["data"].(map[string]interface{})
	assert.NotEmpty(t, data["captcha_id"])
	assert.Len(t, data["captcha"], 4)

	// 签发的验证码一次性有效
	assert.True(t, store.Verify(data["captcha_id"].(string), data["captcha"].(string)))
	assert.False(t, store.Verify(data["captcha_id"].(string), data["captcha"].(string)))
}
