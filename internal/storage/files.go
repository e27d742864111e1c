package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/LJTian/NewsPulse/internal/collector"
)

// Stage 流水线落盘阶段
type Stage string

const (
	StageRaw       Stage = "raw"
	StageLimited   Stage = "limited"
	StageProcessed Stage = "processed"
	StageSentiment Stage = "sentiment"
)

// Stages 按流水线顺序排列
var Stages = []Stage{StageRaw, StageLimited, StageProcessed, StageSentiment}

// ErrUnknownStage 请求了不存在的阶段
var ErrUnknownStage = errors.New("unknown stage")

// ParseStage 校验阶段名
func ParseStage(name string) (Stage, error) {
	for _, s := range Stages {
		if string(s) == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStage, name)
}

// FileName 阶段文件名，例如 news_raw.json
func (s Stage) FileName() string {
	return "news_" + string(s) + ".json"
}

// ResultSet 是每个阶段文件的结构：{"news": [...], "warning": "..."}
type ResultSet struct {
	News    []collector.NewsItem `json:"news"`
	Warning string               `json:"warning,omitempty"`
}

// NewResultSet news 为 nil 时替换为空切片，保证 JSON 中始终是数组
func NewResultSet(news []collector.NewsItem, warning string) ResultSet {
	if news == nil {
		news = []collector.NewsItem{}
	}
	return ResultSet{News: news, Warning: warning}
}

// FileStore 把各阶段结果写入目录下的 JSON 文件，每次整体覆盖
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (f *FileStore) Dir() string {
	return f.dir
}

func (f *FileStore) Path(stage Stage) string {
	return filepath.Join(f.dir, stage.FileName())
}

// Save 先写临时文件再 rename，读者不会看到写了一半的文件
func (f *FileStore) Save(_ context.Context, stage Stage, rs ResultSet) error {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	data, err := EncodeResultSet(NewResultSet(rs.News, rs.Warning))
	if err != nil {
		return fmt.Errorf("encode %s stage: %w", stage, err)
	}

	tmp, err := os.CreateTemp(f.dir, "."+stage.FileName()+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s stage: %w", stage, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s stage: %w", stage, err)
	}
	if err := os.Rename(tmpName, f.Path(stage)); err != nil {
		return fmt.Errorf("replace %s stage: %w", stage, err)
	}
	return nil
}

// Load 读取阶段文件；文件不存在时返回 os.ErrNotExist
func (f *FileStore) Load(stage Stage) (ResultSet, error) {
	data, err := os.ReadFile(f.Path(stage))
	if err != nil {
		return ResultSet{}, err
	}
	var rs ResultSet
	if err := json.Unmarshal(data, &rs); err != nil {
		return ResultSet{}, fmt.Errorf("decode %s stage: %w", stage, err)
	}
	return NewResultSet(rs.News, rs.Warning), nil
}

// ModTime 返回阶段文件的最后写入时间
func (f *FileStore) ModTime(stage Stage) (time.Time, error) {
	fi, err := os.Stat(f.Path(stage))
	if err != nil {
		return time.Time{}, err
	}
	return fi.ModTime(), nil
}

// EncodeResultSet 缩进输出且不转义 HTML 字符，与下游工具读取的格式一致
func EncodeResultSet(rs ResultSet) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rs); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
