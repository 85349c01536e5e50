// 导入题目目录
//
// 先导入题目表（含 related_topics 列），再导入按难度分组的主题表。
// 两个文件都可以省略，重复导入会覆盖已有记录。
//
// 用法: go run scripts/import_catalog.go -problems problems.csv -topics sorted_topics.csv

package main

import (
	"context"
	"flag"
	"log"
	"os"

	"codeshin_backend/internal/config"
	"codeshin_backend/internal/repository"
	"codeshin_backend/pkg/database"
	"codeshin_backend/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	configDir := flag.String("config", "configs", "配置文件目录")
	problemsPath := flag.String("problems", "", "题目 CSV")
	topicsPath := flag.String("topics", "", "主题分组 CSV")
	flag.Parse()

	if *problemsPath == "" && *topicsPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}

	importer := repository.NewCatalogImporter(db)
	ctx := context.Background()

	if *problemsPath != "" {
		f, err := os.Open(*problemsPath)
		if err != nil {
			log.Fatalf("打开文件失败: %v", err)
		}
		stats, err := importer.ImportProblems(ctx, f)
		f.Close()
		if err != nil {
			log.Fatalf("导入题目失败: %v", err)
		}
		logger.Log.Info("题目导入完成",
			zap.Int("problems", stats.Problems),
			zap.Int("topics", stats.Topics),
			zap.Int("links", stats.Links))
	}

	if *topicsPath != "" {
		f, err := os.Open(*topicsPath)
		if err != nil {
			log.Fatalf("打开文件失败: %v", err)
		}
		stats, err := importer.ImportTopicBuckets(ctx, f)
		f.Close()
		if err != nil {
			log.Fatalf("导入主题失败: %v", err)
		}
		logger.Log.Info("主题导入完成",
			zap.Int("topics", stats.Topics),
			zap.Int("links", stats.Links),
			zap.Int("missing", stats.Missing))
	}
}
