// Package pipeline 串联 feed 拉取、解析、正文补全、清洗与情感打分，并在每个阶段落盘。
// 整个执行过程是严格顺序的。
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/LJTian/NewsPulse/internal/collector"
	"github.com/LJTian/NewsPulse/internal/processor"
	"github.com/LJTian/NewsPulse/internal/storage"
	"github.com/google/uuid"
)

const (
	DefaultMaxItems = 15
	DefaultMinItems = 5
)

// ErrRunInProgress 上一次执行尚未结束
var ErrRunInProgress = errors.New("pipeline run already in progress")

// FeedSource 按查询词返回 feed 原始内容
type FeedSource interface {
	Fetch(ctx context.Context, query string) ([]byte, error)
}

// StageWriter 持久化某个阶段的结果
type StageWriter interface {
	Save(ctx context.Context, stage storage.Stage, rs storage.ResultSet) error
}

// Options 流水线策略参数
type Options struct {
	Queries   []string
	MaxItems  int // limited 集合上限
	MinItems  int // 少于该数量时写入 warning，<= 0 时取默认值
	FeedLimit int // 单个 feed 解析条数上限，0 表示不限制
}

// Report 一次执行的摘要
type Report struct {
	RunID      string         `json:"runId"`
	StartedAt  time.Time      `json:"startedAt"`
	FinishedAt time.Time      `json:"finishedAt"`
	Queries    int            `json:"queries"`
	Raw        int            `json:"raw"`
	Limited    int            `json:"limited"`
	Labels     map[string]int `json:"labels"`
	Warning    string         `json:"warning,omitempty"`
	Aborted    bool           `json:"aborted"`
}

// Orchestrator 流水线编排
type Orchestrator struct {
	opts    Options
	feeds   FeedSource
	proc    *processor.Processor
	files   StageWriter
	mirrors []StageWriter

	mu sync.Mutex
}

// New files 为主存储，写失败即中止；mirrors 失败只记录日志
func New(opts Options, feeds FeedSource, proc *processor.Processor, files StageWriter, mirrors ...StageWriter) *Orchestrator {
	if opts.MaxItems <= 0 {
		opts.MaxItems = DefaultMaxItems
	}
	if opts.MinItems <= 0 {
		opts.MinItems = DefaultMinItems
	}
	return &Orchestrator{
		opts:    opts,
		feeds:   feeds,
		proc:    proc,
		files:   files,
		mirrors: mirrors,
	}
}

// Run 执行一次完整流水线。feed 拉取/解析失败不会返回 error，
// 而是写出带 warning 的空结果；只有落盘失败才返回 error。
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	if !o.mu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer o.mu.Unlock()

	report := &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Labels:    map[string]int{},
	}
	ctx = storage.WithRunID(ctx, report.RunID)
	log.Printf("start pipeline run %s, queries=%d cap=%d", report.RunID, len(o.opts.Queries), o.opts.MaxItems)

	raw, limited, err := o.collect(ctx, report)
	if err != nil {
		report.Aborted = true
		report.Warning = err.Error()
		log.Printf("pipeline run %s aborted: %v", report.RunID, err)
		empty := storage.NewResultSet(nil, report.Warning)
		for _, stage := range storage.Stages {
			if err := o.save(ctx, stage, empty); err != nil {
				return report, err
			}
		}
		report.FinishedAt = time.Now()
		return report, nil
	}

	report.Raw, report.Limited = len(raw), len(limited)
	if len(limited) < o.opts.MinItems {
		report.Warning = fmt.Sprintf("Menos de %d notícias encontradas (%d coletadas).", o.opts.MinItems, len(limited))
		log.Printf("warn: %s", report.Warning)
	}

	if err := o.save(ctx, storage.StageRaw, storage.NewResultSet(raw, report.Warning)); err != nil {
		return report, err
	}
	if err := o.save(ctx, storage.StageLimited, storage.NewResultSet(limited, report.Warning)); err != nil {
		return report, err
	}

	processed := o.proc.Process(limited)
	if err := o.save(ctx, storage.StageProcessed, storage.NewResultSet(processed, report.Warning)); err != nil {
		return report, err
	}

	scored := o.proc.Score(processed)
	for _, it := range scored {
		report.Labels[it.SentimentLabel]++
	}
	if err := o.save(ctx, storage.StageSentiment, storage.NewResultSet(scored, report.Warning)); err != nil {
		return report, err
	}

	report.FinishedAt = time.Now()
	log.Printf("pipeline run %s done, raw=%d limited=%d labels=%v", report.RunID, report.Raw, report.Limited, report.Labels)
	return report, nil
}

// collect 依次处理查询词；任何一次拉取或解析失败都会中止整个执行
func (o *Orchestrator) collect(ctx context.Context, report *Report) (raw, limited []collector.NewsItem, err error) {
	raw = make([]collector.NewsItem, 0, o.opts.MaxItems)
	limited = make([]collector.NewsItem, 0, o.opts.MaxItems)

	for _, query := range o.opts.Queries {
		if len(limited) >= o.opts.MaxItems {
			break
		}
		report.Queries++

		body, err := o.feeds.Fetch(ctx, query)
		if err != nil {
			return nil, nil, err
		}
		items, err := collector.ParseFeed(body, o.opts.FeedLimit)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("query %q parsed %d items", query, len(items))

		for _, it := range items {
			raw = append(raw, it)
			if len(limited) < o.opts.MaxItems {
				limited = append(limited, it)
			}
		}
	}
	return raw, limited, nil
}

func (o *Orchestrator) save(ctx context.Context, stage storage.Stage, rs storage.ResultSet) error {
	if err := o.files.Save(ctx, stage, rs); err != nil {
		return fmt.Errorf("save %s stage: %w", stage, err)
	}
	for _, m := range o.mirrors {
		if err := m.Save(ctx, stage, rs); err != nil {
			log.Printf("warn: mirror %s stage error: %v", stage, err)
		}
	}
	return nil
}
