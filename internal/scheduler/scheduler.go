package scheduler

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/LJTian/NewsPulse/internal/pipeline"
	"github.com/robfig/cron/v3"
)

// Runner 执行一次流水线
type Runner interface {
	Run(ctx context.Context) (*pipeline.Report, error)
}

type Scheduler struct {
	cron   *cron.Cron
	runner Runner
}

func New(spec string, runner Runner) (*Scheduler, error) {
	c := cron.New()

	s := &Scheduler{
		cron:   c,
		runner: runner,
	}

	_, err := c.AddFunc(spec, s.runOnce)
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	// 延迟执行首轮采集，避免与服务启动争抢资源
	const startupDelay = 15 * time.Second
	time.AfterFunc(startupDelay, s.runOnce)
}

// Stop 停止调度并等待正在执行的任务结束
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunOnce 对外暴露的单次执行入口，方便手动触发采集
func (s *Scheduler) RunOnce() {
	s.runOnce()
}

func (s *Scheduler) runOnce() {
	log.Println("start collect job...")

	report, err := s.runner.Run(context.Background())
	if errors.Is(err, pipeline.ErrRunInProgress) {
		log.Println("collect job skipped: previous run still in progress")
		return
	}
	if err != nil {
		log.Printf("collect job error: %v", err)
		return
	}
	if report.Warning != "" {
		log.Printf("collect job done with warning: %s", report.Warning)
		return
	}
	log.Printf("collect job done, raw=%d limited=%d", report.Raw, report.Limited)
}
