package main

import (
	"log"

	"github.com/LJTian/NewsPulse/internal/api"
	"github.com/LJTian/NewsPulse/internal/collector"
	"github.com/LJTian/NewsPulse/internal/config"
	"github.com/LJTian/NewsPulse/internal/pipeline"
	"github.com/LJTian/NewsPulse/internal/processor"
	"github.com/LJTian/NewsPulse/internal/scheduler"
	"github.com/LJTian/NewsPulse/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	store, err := storage.NewStore(cfg.PostgresDSN, cfg.RedisAddr)
	if err != nil {
		log.Fatalf("init store failed: %v", err)
	}

	feeds := collector.NewFeedFetcher(cfg.FeedURLTemplate, cfg.FeedTimeout, cfg.FeedRetries, cfg.UserAgent)
	var extractor processor.Extractor
	if cfg.ArticleExtract {
		extractor = collector.NewArticleExtractor(cfg.ExtractorOptions())
	}

	var (
		mirrors []pipeline.StageWriter
		cache   api.StageCache
	)
	if store.Enabled() {
		mirrors = append(mirrors, store)
	}
	if store.Redis != nil {
		cache = store
	}

	files := storage.NewFileStore(cfg.DataDir)
	o := pipeline.New(cfg.PipelineOptions(), feeds, processor.NewProcessor(extractor), files, mirrors...)

	// 配置了 CRON_SPEC 时定时执行流水线
	if cfg.CronSpec != "" {
		s, err := scheduler.New(cfg.CronSpec, o)
		if err != nil {
			log.Fatalf("init scheduler failed: %v", err)
		}
		s.Start()
		defer s.Stop()
	}

	r := gin.Default()
	// APP_BASIC_USER 与 APP_BASIC_PASS 都设置时启用 Basic Auth
	if cfg.BasicAuthUser != "" && cfg.BasicAuthPass != "" {
		r.Use(api.BasicAuth(cfg.BasicAuthUser, cfg.BasicAuthPass))
	}

	api.NewServer(files, cache, o).RegisterRoutes(r)

	addr := ":" + cfg.AppPort
	log.Printf("starting api server at %s ...", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server exit: %v", err)
	}
}
