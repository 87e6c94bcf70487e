package main

import (
	"context"
	"database/sql"
	"fmt"
	"membership-backend/config"
	"membership-backend/internal/api/user"
	"membership-backend/internal/captcha"
	"membership-backend/internal/middleware"
	"membership-backend/internal/repository/mysql"
	"membership-backend/internal/service"
	"membership-backend/internal/storage"
	"membership-backend/internal/util"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			util.Logger.Error("程序发生严重错误", zap.Any("error", r))
		}
	}()

	// 初始化配置
	config.Init()

	// 初始化日志
	util.InitLogger(config.AppConfig.LogLevel)
	defer util.Logger.Sync()

	util.Logger.Info("应用程序启动")

	// 设置数据库连接字符串
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		config.AppConfig.DBUser,
		config.AppConfig.DBPassword,
		config.AppConfig.DBHost,
		config.AppConfig.DBPort,
		config.AppConfig.DBName)

	// 连接数据库
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		util.Logger.Fatal("连接数据库失败", zap.Error(err))
	}
	defer db.Close()

	// 测试数据库连接
	if err = db.Ping(); err != nil {
		util.Logger.Fatal("数据库连接测试失败", zap.Error(err))
	}
	util.Logger.Info("数据库连接成功")

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	// 注册自定义验证器
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("cn_mobile", util.ValidateCNMobile)
	}

	// 初始化文件存储后端，配置了 S3 桶时使用 S3，否则落本地磁盘
	var fileStorage storage.Storage
	if config.AppConfig.S3Bucket != "" {
		fileStorage, err = storage.NewS3Client(config.AppConfig.S3Region, config.AppConfig.S3Bucket)
		if err != nil {
			util.Logger.Fatal("初始化S3存储失败", zap.Error(err))
		}
	} else {
		fileStorage, err = storage.NewLocalStorage(config.AppConfig.LocalStoragePath)
		if err != nil {
			util.Logger.Fatal("初始化本地存储失败", zap.Error(err))
		}
	}

	// 初始化存储库、服务和处理器
	userRepo := mysql.NewUserRepository(db)
	userService := service.NewUserService(userRepo)
	captchaStore := captcha.NewStore(config.AppConfig.CaptchaLength)

	authHandler := user.NewAuthHandler(userService, captchaStore)
	captchaHandler := user.NewCaptchaHandler(captchaStore)
	profileHandler := user.NewProfileHandler(userService, fileStorage)
	userHandler := user.NewUserHandler(userService)

	// 初始化错误监控
	errorMonitor := middleware.NewErrorMonitor()

	// 设置 Gin 路由
	r := gin.New()
	r.Use(gin.Logger())

	// 添加中间件
	r.Use(middleware.RecoveryMiddleware())
	r.Use(middleware.ErrorMonitorMiddleware(errorMonitor))

	// 配置 CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{config.AppConfig.FrontendURL}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Length",
		"Content-Type",
		"Authorization",
	}
	r.Use(cors.New(corsConfig))

	// 健康检查
	r.GET("/v1/status", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	// 配置静态文件服务：文档、页面和上传文件原样对外
	r.Static("/v1/docs", config.AppConfig.DocsPath)
	r.Static("/v1/views", config.AppConfig.ViewsPath)
	r.Static("/uploads", config.AppConfig.LocalStoragePath)

	// 定义 API 路由
	api := r.Group("/api/v1")
	{
		api.GET("/captcha", captchaHandler.GetCaptcha)

		// 认证相关路由
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh-token", authHandler.RefreshToken)
		}

		// 需要认证的路由
		authorized := api.Group("/")
		authorized.Use(middleware.AuthMiddleware())
		{
			authorized.GET("/profile", profileHandler.GetProfile)
			authorized.PUT("/profile", profileHandler.UpdateProfile)
			authorized.GET("/profile/score", profileHandler.GetScoreRecords)
			authorized.POST("/profile/avatar", profileHandler.UploadAvatar)

			authorized.POST("/addresses", userHandler.CreateAddress)
			authorized.PUT("/addresses/:id", userHandler.UpdateAddress)
			authorized.DELETE("/addresses/:id", userHandler.DeleteAddress)
			authorized.GET("/addresses", userHandler.ListAddresses)
		}

		// 用户管理路由（管理员）
		adminRoutes := api.Group("/users")
		adminRoutes.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware(userService))
		{
			adminRoutes.GET("", userHandler.ListUsers)
			adminRoutes.GET("/:id", userHandler.GetUser)
			adminRoutes.GET("/phone/:phone", userHandler.GetUserByPhone)
			adminRoutes.PUT("/:id/role", userHandler.UpdateUserRole)
			adminRoutes.POST("/:id/score", userHandler.AwardScore)
		}
	}

	// 创建一个带有超时的 http.Server
	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	// 在一个新的 goroutine 中启动服务器
	go func() {
		util.Logger.Info("服务器正在启动，监听端口 :8080")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			util.Logger.Fatal("启动服务器失败", zap.Error(err))
		}
	}()

	// 等待中断信号以优雅地关闭服务器（设置 5 秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	util.Logger.Info("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		util.Logger.Fatal("服务器强制关闭", zap.Error(err))
	}

	util.Logger.Info("服务器已优雅关闭")
}
