package config

import (
	"log"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// Config 结构体用于存储应用程序的配置信息
type Config struct {
	DBHost                string
	DBPort                string
	DBUser                string
	DBPassword            string
	DBName                string
	JWTSecret             string
	JWTExpirationMinutes  int
	RefreshExpirationDays int
	CaptchaLength         int
	LogLevel              string
	FrontendURL           string
	BackendURL            string
	S3Region              string
	S3Bucket              string
	LocalStoragePath      string
	DocsPath              string
	ViewsPath             string
	Debug                 bool // 是否开启调试模式
}

// AppConfig 是全局配置变量
var AppConfig Config

// Init 函数用于初始化配置
func Init() {
	// 加载 .env 文件
	err := godotenv.Load()
	if err != nil {
		log.Printf("警告：无法加载 .env 文件: %v", err)
	}

	// 从环境变量中读取配置
	AppConfig = Config{
		DBHost:                getEnv("DB_HOST", ""),
		DBPort:                getEnv("DB_PORT", ""),
		DBUser:                getEnv("DB_USER", ""),
		DBPassword:            getEnv("DB_PASSWORD", ""),
		DBName:                getEnv("DB_NAME", ""),
		JWTSecret:             getEnv("JWT_SECRET", ""),
		JWTExpirationMinutes:  getEnvAsInt("JWT_EXPIRATION_MINUTES", 15),
		RefreshExpirationDays: getEnvAsInt("REFRESH_EXPIRATION_DAYS", 30),
		CaptchaLength:         getEnvAsInt("CAPTCHA_LENGTH", 4),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		FrontendURL:           getEnv("FRONTEND_URL", "http://localhost:5173"),
		BackendURL:            getEnv("BACKEND_URL", "http://localhost:8080"),
		S3Region:              getEnv("S3_REGION", "us-west-2"),
		S3Bucket:              getEnv("S3_BUCKET", ""),
		LocalStoragePath:      getEnv("LOCAL_STORAGE_PATH", "./uploads"),
		DocsPath:              getEnv("DOCS_PATH", "./docs"),
		ViewsPath:             getEnv("VIEWS_PATH", "./views"),
		Debug:                 getEnvAsBool("DEBUG", true),
	}

	validateConfig()

	if AppConfig.Debug {
		gin.SetMode(gin.DebugMode)
		log.Println("应用程序运行在调试模式")
	} else {
		gin.SetMode(gin.ReleaseMode)
		log.Println("应用程序运行在生产模式")
	}

	log.Printf("配置加载完成。数据库：%s:%s", AppConfig.DBHost, AppConfig.DBPort)
	log.Printf("令牌配置：有效期=%d分钟，刷新令牌有效期=%d天",
		AppConfig.JWTExpirationMinutes, AppConfig.RefreshExpirationDays)
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultVal int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	valStr := getEnv(key, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}
	return defaultVal
}

func validateConfig() {
	if AppConfig.DBHost == "" || AppConfig.DBPort == "" || AppConfig.DBUser == "" || AppConfig.DBPassword == "" || AppConfig.DBName == "" {
		log.Fatal("错误：数据库配置不完整")
	}
	if AppConfig.JWTSecret == "" {
		log.Fatal("错误：JWT密钥未设置")
	}
	if AppConfig.JWTExpirationMinutes <= 0 {
		log.Fatal("错误：JWT有效期必须大于0")
	}
}
