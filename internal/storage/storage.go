package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/LJTian/NewsPulse/internal/collector"
	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Run 记录一次流水线执行
type Run struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	Warning   string `gorm:"size:512" json:"warning"`
	ItemCount int    `json:"itemCount"`

	CreatedAt time.Time `json:"createdAt"`
}

// NewsRecord 某次执行 sentiment 阶段的一条新闻。
// 以 (run_id, news_id) 归档，不同批次之间不做合并。
type NewsRecord struct {
	ID             uint           `gorm:"primaryKey" json:"-"`
	RunID          string         `gorm:"size:36;index" json:"runId"`
	NewsID         string         `gorm:"size:32;index" json:"newsId"`
	Position       int            `json:"position"`
	Title          string         `gorm:"size:512" json:"title"`
	Link           string         `gorm:"size:2048" json:"link"`
	Published      *string        `gorm:"size:64" json:"published"`
	Source         *string        `gorm:"size:128;index" json:"source"`
	Description    string         `gorm:"type:text" json:"description"`
	ArticleText    string         `gorm:"type:text" json:"articleText"`
	TextClean      string         `gorm:"type:text" json:"textClean"`
	Tokens         datatypes.JSON `gorm:"type:jsonb" json:"tokens"`
	SentimentScore int            `json:"sentimentScore"`
	SentimentLabel string         `gorm:"size:16;index" json:"sentimentLabel"`

	CreatedAt time.Time `json:"createdAt"`
}

const stageCacheTTL = 30 * time.Minute

// Store 可选的 Postgres 归档与 Redis 阶段快照；两者都可以不配置
type Store struct {
	DB    *gorm.DB
	Redis *redis.Client
}

func NewStore(dsn, redisAddr string) (*Store, error) {
	s := &Store{}

	if dsn != "" {
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return nil, err
		}
		if err := db.AutoMigrate(&Run{}, &NewsRecord{}); err != nil {
			return nil, err
		}
		s.DB = db
	}

	if redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr: redisAddr,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("warn: redis ping failed: %v", err)
		}
		s.Redis = rdb
	}

	return s, nil
}

// Enabled 至少配置了一个后端
func (s *Store) Enabled() bool {
	return s != nil && (s.DB != nil || s.Redis != nil)
}

// Save 作为阶段镜像：每个阶段写入 Redis 快照，sentiment 阶段额外归档到 Postgres
func (s *Store) Save(ctx context.Context, stage Stage, rs ResultSet) error {
	if s.Redis != nil {
		if err := s.CacheStage(ctx, stage, rs); err != nil {
			return err
		}
	}
	if s.DB != nil && stage == StageSentiment {
		if err := s.ArchiveRun(ctx, RunIDFromContext(ctx), rs); err != nil {
			return err
		}
	}
	return nil
}

func stageCacheKey(stage Stage) string {
	return "newspulse:stage:" + string(stage)
}

// stageSnapshot Redis 中的阶段快照，SavedAt 用于和阶段文件比较新旧
type stageSnapshot struct {
	SavedAt time.Time `json:"savedAt"`
	ResultSet
}

// CacheStage 写入最新一次执行的阶段快照；写入失败时删除旧快照
func (s *Store) CacheStage(ctx context.Context, stage Stage, rs ResultSet) error {
	key := stageCacheKey(stage)
	bs, err := json.Marshal(stageSnapshot{
		SavedAt:   time.Now(),
		ResultSet: NewResultSet(rs.News, rs.Warning),
	})
	if err != nil {
		return err
	}
	if err := s.Redis.Set(ctx, key, bs, stageCacheTTL).Err(); err != nil {
		if derr := s.Redis.Del(ctx, key).Err(); derr != nil {
			log.Printf("warn: drop stale %s snapshot error: %v", stage, derr)
		}
		return fmt.Errorf("cache %s stage: %w", stage, err)
	}
	return nil
}

// CachedStage 读取阶段快照及其写入时间；未命中时 ok=false
func (s *Store) CachedStage(ctx context.Context, stage Stage) (ResultSet, time.Time, bool) {
	if s == nil || s.Redis == nil {
		return ResultSet{}, time.Time{}, false
	}
	bs, err := s.Redis.Get(ctx, stageCacheKey(stage)).Bytes()
	if err != nil {
		return ResultSet{}, time.Time{}, false
	}
	var snap stageSnapshot
	if err := json.Unmarshal(bs, &snap); err != nil {
		return ResultSet{}, time.Time{}, false
	}
	return NewResultSet(snap.News, snap.Warning), snap.SavedAt, true
}

// ArchiveRun 保存一次执行及其 sentiment 阶段的全部新闻
func (s *Store) ArchiveRun(ctx context.Context, runID string, rs ResultSet) error {
	if runID == "" {
		return fmt.Errorf("archive run: empty run id")
	}
	records := ToRecords(runID, rs.News)

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		run := &Run{
			ID:        runID,
			Warning:   clipColumn(rs.Warning, 512),
			ItemCount: len(records),
		}
		if err := tx.Create(run).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return tx.CreateInBatches(records, 100).Error
	})
}

// ToRecords 把新闻转换为归档行
func ToRecords(runID string, items []collector.NewsItem) []NewsRecord {
	records := make([]NewsRecord, 0, len(items))
	for i, it := range items {
		rec := NewsRecord{
			RunID:       runID,
			NewsID:      it.ID,
			Position:    i,
			Title:       clipColumn(it.Title, 512),
			Link:        clipColumn(it.Link, 2048),
			Published:   clipNullable(it.Published, 64),
			Source:      clipNullable(it.Source, 128),
			Description: validText(it.Description),
			Tokens:      datatypes.JSON("[]"),
		}
		if it.Enrichment != nil {
			rec.ArticleText = validText(it.ArticleText)
			rec.TextClean = validText(it.TextClean)
			if bs, err := json.Marshal(it.Tokens); err == nil && it.Tokens != nil {
				rec.Tokens = datatypes.JSON(bs)
			}
		}
		if it.Sentiment != nil {
			rec.SentimentScore = it.SentimentScore
			rec.SentimentLabel = it.SentimentLabel
		}
		records = append(records, rec)
	}
	return records
}

// validText 非法字节替换为 U+FFFD，postgres 拒绝非 UTF-8 的 text
func validText(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}

// clipColumn 去掉首尾空白并按字符数截断到 varchar(limit)
func clipColumn(s string, limit int) string {
	s = strings.TrimSpace(validText(s))
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}

// clipNullable 对可空列做同样处理，nil 保持为 NULL
func clipNullable(p *string, limit int) *string {
	if p == nil {
		return nil
	}
	v := clipColumn(*p, limit)
	return &v
}

type runIDKey struct{}

// WithRunID 把执行 id 放入 context，供镜像写入时使用
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

func RunIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}
