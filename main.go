// @title Codeshin 后端 API
// @version 1.0
// @description 自适应刷题推荐服务：代码评测、主题掌握程度与多指标题目推荐。

// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"flag"
	"log"

	"codeshin_backend/internal/app"
	"codeshin_backend/internal/config"
	"codeshin_backend/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	// 命令行参数
	configDir := flag.String("config", "configs", "配置文件目录")
	migrateOnly := flag.Bool("migrate-only", false, "只执行数据库迁移，完成后退出")
	migrate := flag.Bool("migrate", false, "启动时强制执行数据库迁移（即使是 release 模式）")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 设置迁移标志
	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly

	application, err := app.NewApp(cfg)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer logger.Log.Sync()

	// 迁移完成后直接退出
	if *migrateOnly {
		application.Close()
		logger.Log.Info("数据库迁移完成，退出程序")
		return
	}

	application.WatchConfig(*configDir)
	if err := application.Run(); err != nil {
		logger.Log.Error("Server stopped with error", zap.Error(err))
	}
}
