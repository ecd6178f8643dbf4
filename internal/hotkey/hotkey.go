package hotkey

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pterm/pterm"
	"golang.design/x/hotkey"
	"golang.design/x/hotkey/mainthread"
)

// Binding 快捷键组合，修饰键已规范化为 ctrl/alt/shift/win
type Binding struct {
	Modifiers []string
	Key       string
}

// String 形如 ctrl+alt+s
func (b Binding) String() string {
	return strings.Join(append(append([]string{}, b.Modifiers...), b.Key), "+")
}

// Parse 解析快捷键字符串，如 "ctrl+alt+s"
func Parse(s string) (Binding, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "+")
	if len(parts) < 2 {
		return Binding{}, fmt.Errorf("快捷键格式无效，需要至少一个修饰键和一个主键: %q", s)
	}

	b := Binding{Key: strings.TrimSpace(parts[len(parts)-1])}
	for _, part := range parts[:len(parts)-1] {
		mod, err := normalizeModifier(part)
		if err != nil {
			return Binding{}, err
		}
		b.Modifiers = append(b.Modifiers, mod)
	}

	if _, err := parseKey(b.Key); err != nil {
		return Binding{}, err
	}
	return b, nil
}

// normalizeModifier 统一修饰键别名
func normalizeModifier(mod string) (string, error) {
	switch strings.TrimSpace(mod) {
	case "ctrl", "control":
		return "ctrl", nil
	case "alt", "option":
		return "alt", nil
	case "shift":
		return "shift", nil
	case "win", "cmd", "command", "super":
		return "win", nil
	}
	return "", fmt.Errorf("未知的修饰键: %s", mod)
}

// parseModifiers 解析修饰键
func parseModifiers(mods []string) ([]hotkey.Modifier, error) {
	var result []hotkey.Modifier
	for _, mod := range mods {
		name, err := normalizeModifier(strings.ToLower(mod))
		if err != nil {
			return nil, err
		}
		result = append(result, modifiers[name])
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("需要至少一个修饰键 (Ctrl/Alt/Shift/Win)")
	}
	return result, nil
}

// parseKey 解析主键
func parseKey(key string) (hotkey.Key, error) {
	if k, ok := keys[strings.ToLower(strings.TrimSpace(key))]; ok {
		return k, nil
	}
	return 0, fmt.Errorf("无效的主键: %s (支持 a-z, 0-9, f1-f12)", key)
}

// Manager 热键管理器
type Manager struct {
	mu       sync.Mutex
	hk       *hotkey.Hotkey
	callback func()
}

// NewManager 创建热键管理器
func NewManager() *Manager {
	return &Manager{}
}

// Register 注册热键
func (m *Manager) Register(modifiers []string, key string, callback func()) error {
	mods, err := parseModifiers(modifiers)
	if err != nil {
		return err
	}
	k, err := parseKey(key)
	if err != nil {
		return err
	}

	pterm.Debug.Printfln("注册热键: modifiers=%v, key=%s, keyCode=0x%X", mods, key, k)

	hk := hotkey.New(mods, k)
	if err := hk.Register(); err != nil {
		return fmt.Errorf("无法注册热键: %w", err)
	}

	m.mu.Lock()
	m.hk = hk
	m.callback = callback
	m.mu.Unlock()
	return nil
}

// Unregister 注销热键
func (m *Manager) Unregister() error {
	m.mu.Lock()
	hk := m.hk
	m.hk = nil
	m.mu.Unlock()

	if hk != nil {
		return hk.Unregister()
	}
	return nil
}

// Listen 开始监听热键（阻塞）
func (m *Manager) Listen() {
	m.mu.Lock()
	hk, callback := m.hk, m.callback
	m.mu.Unlock()
	if hk == nil {
		return
	}

	serve(hk.Keydown(), callback)
}

// serve 每次按下调用一次 callback，直到通道关闭
func serve(events <-chan hotkey.Event, callback func()) {
	for range events {
		if callback != nil {
			callback()
		}
	}
}

// ListenAsync 异步监听热键
func (m *Manager) ListenAsync() {
	go m.Listen()
}

// Run 在主线程中运行（某些平台需要）
func Run(fn func()) {
	mainthread.Init(fn)
}

// GetSupportedModifiers 获取支持的修饰键列表
func GetSupportedModifiers() []string {
	return []string{"ctrl", "alt", "shift", "win"}
}

// GetSupportedKeys 获取支持的主键列表
func GetSupportedKeys() []string {
	keys := []string{}

	// 字母
	for c := 'a'; c <= 'z'; c++ {
		keys = append(keys, string(c))
	}

	// 数字
	for c := '0'; c <= '9'; c++ {
		keys = append(keys, string(c))
	}

	// 功能键
	for i := 1; i <= 12; i++ {
		keys = append(keys, fmt.Sprintf("f%d", i))
	}

	return keys
}
