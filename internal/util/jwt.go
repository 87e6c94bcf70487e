package util

import (
	"errors"
	"membership-backend/config"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// GenerateToken 为指定用户签发访问令牌
// 载荷为 {sub, iat, exp}，有效期由配置的分钟数决定
func GenerateToken(userID int) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"exp": now.Add(time.Duration(config.AppConfig.JWTExpirationMinutes) * time.Minute).Unix(),
	})

	return token.SignedString([]byte(config.AppConfig.JWTSecret))
}

// ValidateToken 校验访问令牌并返回其中的用户ID
func ValidateToken(tokenString string) (int, error) {
	if tokenString == "" {
		return 0, errors.New("令牌为空")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("意外的签名方法")
		}
		return []byte(config.AppConfig.JWTSecret), nil
	})

	if err != nil {
		return 0, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		sub, ok := claims["sub"].(float64)
		if !ok {
			return 0, errors.New("无效的用户ID")
		}
		return int(sub), nil
	}

	return 0, errors.New("无效的令牌")
}
