package main

import (
	"context"
	"log"

	"github.com/LJTian/NewsPulse/internal/collector"
	"github.com/LJTian/NewsPulse/internal/config"
	"github.com/LJTian/NewsPulse/internal/pipeline"
	"github.com/LJTian/NewsPulse/internal/processor"
	"github.com/LJTian/NewsPulse/internal/storage"
	"github.com/joho/godotenv"
)

// 一个仅执行一次采集任务的命令行入口：适合手动触发采集
func main() {
	// .env 不存在时忽略
	_ = godotenv.Load()
	cfg := config.Load()

	feeds := collector.NewFeedFetcher(cfg.FeedURLTemplate, cfg.FeedTimeout, cfg.FeedRetries, cfg.UserAgent)

	var extractor processor.Extractor
	if cfg.ArticleExtract {
		extractor = collector.NewArticleExtractor(cfg.ExtractorOptions())
	}
	proc := processor.NewProcessor(extractor)

	var mirrors []pipeline.StageWriter
	store, err := storage.NewStore(cfg.PostgresDSN, cfg.RedisAddr)
	if err != nil {
		log.Fatalf("init store failed: %v", err)
	}
	if store.Enabled() {
		mirrors = append(mirrors, store)
	}

	files := storage.NewFileStore(cfg.DataDir)
	o := pipeline.New(cfg.PipelineOptions(), feeds, proc, files, mirrors...)

	report, err := o.Run(context.Background())
	if err != nil {
		log.Fatalf("pipeline run failed: %v", err)
	}
	if report.Warning != "" {
		log.Printf("warning: %s", report.Warning)
	}
	log.Printf("stage files written to %s (run %s)", files.Dir(), report.RunID)
}
