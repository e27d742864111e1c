package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/LJTian/NewsPulse/internal/pipeline"
	"github.com/LJTian/NewsPulse/internal/storage"
	"github.com/gin-gonic/gin"
)

// StageCache 阶段快照缓存（Redis），可为 nil
type StageCache interface {
	CachedStage(ctx context.Context, stage storage.Stage) (storage.ResultSet, time.Time, bool)
}

// Runner 手动触发一次流水线
type Runner interface {
	Run(ctx context.Context) (*pipeline.Report, error)
}

type Server struct {
	files  *storage.FileStore
	cache  StageCache
	runner Runner
}

func NewServer(files *storage.FileStore, cache StageCache, runner Runner) *Server {
	return &Server{files: files, cache: cache, runner: runner}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.health)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/stages/:stage", s.getStage)
		if s.runner != nil {
			v1.POST("/runs", s.triggerRun)
		}
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) getStage(c *gin.Context) {
	stage, err := storage.ParseStage(c.Param("stage"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    "unknown_stage",
			"message": err.Error(),
		})
		return
	}

	// 优先读 Redis 快照；快照比阶段文件旧（镜像写入失败）时读文件
	if s.cache != nil {
		if rs, savedAt, ok := s.cache.CachedStage(c.Request.Context(), stage); ok && s.snapshotFresh(stage, savedAt) {
			c.JSON(http.StatusOK, gin.H{"code": "ok", "message": "success", "data": rs})
			return
		}
	}

	rs, err := s.files.Load(stage)
	if errors.Is(err, os.ErrNotExist) {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    "not_found",
			"message": "stage file not found, run the pipeline first",
		})
		return
	}
	if err != nil {
		log.Printf("load %s stage error: %v", stage, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "internal_error",
			"message": "internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": "ok", "message": "success", "data": rs})
}

func (s *Server) snapshotFresh(stage storage.Stage, savedAt time.Time) bool {
	mt, err := s.files.ModTime(stage)
	if err != nil {
		return true
	}
	return !mt.After(savedAt)
}

func (s *Server) triggerRun(c *gin.Context) {
	// 客户端断开不应中断正在进行的执行
	report, err := s.runner.Run(context.WithoutCancel(c.Request.Context()))
	if errors.Is(err, pipeline.ErrRunInProgress) {
		c.JSON(http.StatusConflict, gin.H{
			"code":    "run_in_progress",
			"message": err.Error(),
		})
		return
	}
	if err != nil {
		log.Printf("manual run error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "internal_error",
			"message": "internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": "ok", "message": "success", "data": report})
}
