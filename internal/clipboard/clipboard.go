package clipboard

import (
	"errors"
	"fmt"
	"sync"

	"golang.design/x/clipboard"
)

// ErrUnavailable 当前环境没有可用的剪贴板
var ErrUnavailable = errors.New("剪贴板不可用")

// Clipboard 剪贴板接口
type Clipboard interface {
	// WriteImage 写入 PNG 编码的图片
	WriteImage(png []byte) error
}

// SystemClipboard 系统剪贴板
type SystemClipboard struct {
	once    sync.Once
	initErr error
}

// NewClipboard 创建剪贴板实例（首次写入时初始化）
func NewClipboard() Clipboard {
	return &SystemClipboard{}
}

// WriteImage 写入图片
func (c *SystemClipboard) WriteImage(png []byte) error {
	if len(png) == 0 {
		return errors.New("图片数据为空")
	}

	c.once.Do(func() {
		c.initErr = clipboard.Init()
	})
	if c.initErr != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, c.initErr)
	}

	clipboard.Write(clipboard.FmtImage, png)
	return nil
}

// Memory 内存剪贴板，用于无界面环境和测试
type Memory struct {
	mu   sync.Mutex
	data []byte
	Err  error // 非 nil 时写入返回该错误
}

// WriteImage 写入图片
func (m *Memory) WriteImage(png []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.data = append([]byte(nil), png...)
	return nil
}

// Image 最近一次写入的图片
func (m *Memory) Image() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data
}
