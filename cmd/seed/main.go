package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/user/streambox/internal/config"
	"github.com/user/streambox/internal/repository"
	"github.com/user/streambox/internal/search"
	"github.com/user/streambox/internal/service"
	"github.com/user/streambox/internal/utils"
)

// 导入 TMDB 热门内容，或将账号设为管理员
//
//	go run ./cmd/seed --kind movie
//	go run ./cmd/seed --promote admin@example.com
func main() {
	flags := pflag.NewFlagSet("seed", pflag.ExitOnError)
	envFile := flags.String("env-file", ".env", "path to .env file")
	kind := flags.String("kind", "movie", "TMDB trending kind: movie or tv")
	promote := flags.String("promote", "", "grant admin to the account with this email and exit")
	flags.String("db-driver", "postgres", "database driver: postgres or sqlite")
	flags.String("log-level", "info", "log level")
	_ = flags.Parse(os.Args[1:])

	_ = godotenv.Load(*envFile)
	cfg := config.Load(flags)
	log := utils.NewLogger(cfg.Env, cfg.LogLevel)

	db, err := repository.InitDB(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}
	sqlDB, _ := db.DB()
	defer sqlDB.Close()

	if err := repository.Migrate(db); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}
	repos := repository.NewRepositories(db)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if *promote != "" {
		n, err := repos.Account.SetAdmin(ctx, *promote, true)
		if err != nil {
			log.Fatalf("设置管理员失败: %v", err)
		}
		if n == 0 {
			log.Fatalf("账号不存在: %s", *promote)
		}
		log.WithField("email", *promote).Info("已设置为管理员")
		return
	}

	tmdb := service.NewTMDBService(cfg, log)
	if !tmdb.Configured() {
		log.Fatal("请先设置 TMDB_TOKEN 或 TMDB_API_KEY")
	}

	// 导入只写库，服务端启动时会重建索引
	index, err := search.New()
	if err != nil {
		log.Fatalf("创建搜索索引失败: %v", err)
	}
	defer index.Close()

	catalog := service.NewCatalogService(repos.Content, index, utils.NewCache(time.Minute, time.Minute), log)
	seeder := service.NewSeeder(tmdb, catalog, repos.Content, log)

	res, err := seeder.SeedTrending(ctx, *kind)
	if err != nil {
		log.Fatalf("导入失败: %v", err)
	}
	log.Infof("导入完成：新增 %d，跳过 %d", res.Created, res.Skipped)
}
