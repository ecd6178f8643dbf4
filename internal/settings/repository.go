package settings

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pterm/pterm"

	"gloco/internal/coalesce"
)

// DefaultSaveDelay 默认的保存防抖时间
const DefaultSaveDelay = 300 * time.Millisecond

// Repository 样式仓库，读写唯一一条样式记录
type Repository struct {
	store Store
	key   string
}

// NewRepository 创建样式仓库
func NewRepository(store Store) *Repository {
	return &Repository{store: store, key: Key}
}

// Load 读取样式；首次运行（无记录）时返回默认值
func (r *Repository) Load(ctx context.Context) (Style, error) {
	data, ok, err := r.store.Get(ctx, r.key)
	if err != nil {
		return Defaults(), err
	}
	if !ok {
		return Defaults(), nil
	}
	return Decode(data)
}

// Save 保存样式
func (r *Repository) Save(ctx context.Context, s Style) error {
	data, err := s.Normalize().Encode()
	if err != nil {
		return fmt.Errorf("序列化样式失败: %w", err)
	}
	if err := r.store.Set(ctx, r.key, data); err != nil {
		return fmt.Errorf("写入样式失败: %w", err)
	}
	return nil
}

// Saver 防抖保存：连续编辑只写入最后一次的值
type Saver struct {
	repo *Repository
	q    *coalesce.Coalescer[Style]

	mu  sync.Mutex
	err error // 最近一次写入的错误
}

// NewSaver 创建防抖保存器
func NewSaver(repo *Repository, delay time.Duration) *Saver {
	if delay <= 0 {
		delay = DefaultSaveDelay
	}
	s := &Saver{repo: repo}
	s.q = coalesce.New(delay, s.save)
	return s
}

func (s *Saver) save(style Style) {
	err := s.repo.Save(context.Background(), style)
	if err != nil {
		pterm.Warning.Printfln("保存样式失败: %v", err)
	}

	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// Submit 提交一次编辑
func (s *Saver) Submit(style Style) {
	s.q.Submit(style)
}

// Flush 立即写入待保存的值，返回最近一次写入的错误
func (s *Saver) Flush() error {
	s.q.Flush()
	return s.Err()
}

// Close 写入待保存的值并停止，返回最近一次写入的错误
func (s *Saver) Close() error {
	s.q.Close()
	return s.Err()
}

// Err 最近一次写入的错误；写入成功后清空
func (s *Saver) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
