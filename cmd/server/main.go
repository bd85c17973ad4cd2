package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // 确保在精简镜像中也能识别时区

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/user/streambox/internal/config"
	"github.com/user/streambox/internal/handler"
	"github.com/user/streambox/internal/repository"
	"github.com/user/streambox/internal/router"
	"github.com/user/streambox/internal/search"
	"github.com/user/streambox/internal/service"
	"github.com/user/streambox/internal/utils"
)

func main() {
	flags := pflag.NewFlagSet("server", pflag.ExitOnError)
	envFile := flags.String("env-file", ".env", "path to .env file")
	flags.String("port", "5000", "HTTP listen port")
	flags.String("db-driver", "postgres", "database driver: postgres or sqlite")
	flags.String("log-level", "info", "log level")
	_ = flags.Parse(os.Args[1:])

	// 加载环境变量
	envErr := godotenv.Load(*envFile)

	// 加载配置
	cfg := config.Load(flags)
	log := utils.NewLogger(cfg.Env, cfg.LogLevel)
	if envErr != nil {
		log.Infof("未找到 %s 文件，使用系统环境变量", *envFile)
	}
	if cfg.UsesDefaultSecret() {
		log.Warn("APP_SECRET 未设置，正在使用默认密钥，请勿用于生产环境")
	}

	// 初始化数据库
	db, err := repository.InitDB(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}
	sqlDB, _ := db.DB()
	defer sqlDB.Close()

	if err := repository.Migrate(db); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}

	// 初始化仓库
	repos := repository.NewRepositories(db)

	// 全文索引常驻内存，启动时从数据库重建
	index, err := search.New()
	if err != nil {
		log.Fatalf("创建搜索索引失败: %v", err)
	}
	defer index.Close()

	catalog := service.NewCatalogService(repos.Content, index, utils.NewCache(5*time.Minute, 10*time.Minute), log)
	n, err := catalog.RebuildIndex(context.Background())
	if err != nil {
		log.Fatalf("重建搜索索引失败: %v", err)
	}
	log.WithField("documents", n).Info("搜索索引已就绪")

	// 启动定时任务
	bgCtx, stopJobs := context.WithCancel(context.Background())
	defer stopJobs()
	service.NewMaintenanceService(catalog, cfg.IndexSyncInterval, log).Start(bgCtx)

	h := handler.NewHandler(
		service.NewAuthService(repos.Account, cfg.AppSecret, cfg.JWTExpiry, log),
		service.NewProfileService(repos.Profile, service.NewGuard(repos.Profile), log),
		catalog,
		service.NewTMDBService(cfg, log),
		cfg,
		log,
	)
	r := router.NewEngine(h)

	srv := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   20 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	// 在 goroutine 中启动服务器，这样我们就可以监听信号
	go func() {
		log.Infof("服务器启动于 http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务器启动失败: %v", err)
		}
	}()

	// 等待中断信号以优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("正在关闭服务器...")
	stopJobs()

	// 5 秒超时上下文用于关闭过程
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("服务器强制关闭: %v", err)
		return
	}

	log.Info("服务器已退出")
}
