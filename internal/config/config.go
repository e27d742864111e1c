package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/LJTian/NewsPulse/internal/collector"
	"github.com/LJTian/NewsPulse/internal/pipeline"
)

const defaultQueries = "Inteligência Artificial Piauí,SIA Piauí"

type Config struct {
	AppPort       string
	BasicAuthUser string
	BasicAuthPass string

	Queries         []string
	FeedURLTemplate string
	FeedRetries     int
	FeedTimeout     time.Duration
	FeedItemLimit   int
	MaxItems        int
	MinItems        int

	ArticleExtract  bool
	ArticleTimeout  time.Duration
	ArticleMinChars int
	ArticleMaxChars int
	UserAgent       string

	DataDir string

	// 以下为可选后端，留空则不启用
	PostgresDSN string
	RedisAddr   string
	CronSpec    string
}

func Load() *Config {
	cfg := &Config{
		AppPort:       getEnv("APP_PORT", "9000"),
		BasicAuthUser: getEnv("APP_BASIC_USER", ""),
		BasicAuthPass: getEnv("APP_BASIC_PASS", ""),

		Queries:         splitList(getEnv("NEWS_QUERIES", defaultQueries)),
		FeedURLTemplate: getEnv("FEED_URL_TEMPLATE", collector.DefaultFeedURLTemplate),
		FeedRetries:     getEnvInt("FEED_RETRIES", 1),
		FeedTimeout:     getEnvDuration("FEED_TIMEOUT", 10*time.Second),
		FeedItemLimit:   getEnvInt("FEED_ITEM_LIMIT", 0),
		MaxItems:        getEnvInt("MAX_ITEMS", pipeline.DefaultMaxItems),
		MinItems:        getEnvInt("MIN_ITEMS", pipeline.DefaultMinItems),

		ArticleExtract:  getEnvBool("ARTICLE_EXTRACT", true),
		ArticleTimeout:  getEnvDuration("ARTICLE_TIMEOUT", 10*time.Second),
		ArticleMinChars: getEnvInt("ARTICLE_MIN_CHARS", collector.DefaultArticleMinChars),
		ArticleMaxChars: getEnvInt("ARTICLE_MAX_CHARS", collector.DefaultArticleMaxChars),
		UserAgent:       getEnv("USER_AGENT", "NewsPulseBot/1.0 (+https://github.com/LJTian/NewsPulse)"),

		DataDir: getEnv("DATA_DIR", "data"),

		PostgresDSN: getEnv("POSTGRES_DSN", ""),
		RedisAddr:   getEnv("REDIS_ADDR", ""),
		CronSpec:    getEnv("CRON_SPEC", ""),
	}

	log.Printf("config loaded: queries=%d cap=%d data=%s cron=%q", len(cfg.Queries), cfg.MaxItems, cfg.DataDir, cfg.CronSpec)
	return cfg
}

// PipelineOptions 转换为流水线参数
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Queries:   c.Queries,
		MaxItems:  c.MaxItems,
		MinItems:  c.MinItems,
		FeedLimit: c.FeedItemLimit,
	}
}

// ExtractorOptions 转换为正文抽取参数
func (c *Config) ExtractorOptions() collector.ExtractorOptions {
	return collector.ExtractorOptions{
		UserAgent: c.UserAgent,
		Timeout:   c.ArticleTimeout,
		MinChars:  c.ArticleMinChars,
		MaxChars:  c.ArticleMaxChars,
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("warn: invalid %s=%q, using default %d", key, v, def)
		return def
	}
	return n
}

func getEnvBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("warn: invalid %s=%q, using default %t", key, v, def)
		return def
	}
	return b
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		// 兼容直接写秒数，例如 FEED_TIMEOUT=10
		if secs, convErr := strconv.Atoi(v); convErr == nil {
			return time.Duration(secs) * time.Second
		}
		log.Printf("warn: invalid %s=%q, using default %s", key, v, def)
		return def
	}
	return d
}

// splitList 按逗号切分并去掉空项
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
