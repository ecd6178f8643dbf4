package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

// 环境变量覆盖
const (
	EnvConfigPath = "GLOCO_CONFIG"
	EnvStorageDir = "GLOCO_STORAGE_DIR"
	EnvSettingsDB = "GLOCO_SETTINGS_DB"
	EnvFormat     = "GLOCO_FORMAT"
	EnvDisplay    = "GLOCO_DISPLAY"
	EnvDebounceMs = "GLOCO_DEBOUNCE_MS"
	EnvNotifyOff  = "GLOCO_NO_NOTIFY"
)

var validModifiers = []string{"ctrl", "alt", "shift", "win", "cmd", "control", "option", "super", "command"}

// Hotkey 快捷键配置
type Hotkey struct {
	Modifiers []string `json:"modifiers"` // ctrl, alt, shift, win(windows)/cmd(mac)
	Key       string   `json:"key"`       // 主键，如 s, a, 1, f1 等
}

// Storage 存储配置
type Storage struct {
	Directory  string `json:"directory"`  // 下载目录
	Format     string `json:"format"`     // 图片格式: png, webp
	SettingsDB string `json:"settingsDb"` // 样式数据库
}

// Behavior 行为配置
type Behavior struct {
	ShowNotification bool    `json:"showNotification"` // 显示通知
	CopyAfterCapture bool    `json:"copyAfterCapture"` // 截图后自动复制
	DebounceMs       int     `json:"debounceMs"`       // 样式保存防抖
	Display          int     `json:"display"`          // 截图的显示器
	MinPixelRatio    float64 `json:"minPixelRatio"`    // 输出像素比下限
	RetentionDays    int     `json:"retentionDays"`    // 自动清理天数，0 表示不清理
}

// Config 主配置结构
type Config struct {
	Hotkey   Hotkey   `json:"hotkey"`
	Storage  Storage  `json:"storage"`
	Behavior Behavior `json:"behavior"`

	path string
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Hotkey: Hotkey{
			Modifiers: []string{"alt"},
			Key:       "1",
		},
		Storage: Storage{
			Directory:  filepath.Join(homeDir, "Pictures", "gloco"),
			Format:     "png",
			SettingsDB: filepath.Join(configDir(), "gloco", "settings.db"),
		},
		Behavior: Behavior{
			ShowNotification: true,
			CopyAfterCapture: false,
			DebounceMs:       300,
			Display:          0,
			MinPixelRatio:    2,
			RetentionDays:    0,
		},
	}
}

func configDir() string {
	if runtime.GOOS == "windows" {
		if dir := os.Getenv("APPDATA"); dir != "" {
			return dir
		}
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, "AppData", "Roaming")
	}
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config")
}

// GetConfigPath 获取配置文件路径
func GetConfigPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return filepath.Join(configDir(), "gloco", "config.json")
}

// Load 加载配置：先读 .env，再读配置文件，最后应用环境变量
func Load() (*Config, error) {
	// .env 可选
	_ = godotenv.Load()
	return LoadFile(GetConfigPath())
}

// LoadFile 从指定路径加载配置；文件不存在时写入默认配置
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.path = path

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		// 保存默认配置
		_ = cfg.Save()
		cfg.ApplyEnv()
		cfg.Validate()
		return cfg, nil
	}
	if err != nil {
		cfg.ApplyEnv()
		return cfg, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		def := DefaultConfig()
		def.path = path
		def.ApplyEnv()
		return def, err
	}

	cfg.ApplyEnv()
	cfg.Validate()
	return cfg, nil
}

// ApplyEnv 应用环境变量覆盖
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvStorageDir); v != "" {
		c.Storage.Directory = v
	}
	if v := os.Getenv(EnvSettingsDB); v != "" {
		c.Storage.SettingsDB = v
	}
	if v := os.Getenv(EnvFormat); v != "" {
		c.Storage.Format = v
	}
	if v, err := strconv.Atoi(os.Getenv(EnvDisplay)); err == nil {
		c.Behavior.Display = v
	}
	if v, err := strconv.Atoi(os.Getenv(EnvDebounceMs)); err == nil {
		c.Behavior.DebounceMs = v
	}
	if v, err := strconv.ParseBool(os.Getenv(EnvNotifyOff)); err == nil && v {
		c.Behavior.ShowNotification = false
	}
}

// Validate 验证并修正配置值
func (c *Config) Validate() {
	defaults := DefaultConfig()

	// 验证图片格式
	format := strings.ToLower(c.Storage.Format)
	if format != "png" && format != "webp" {
		c.Storage.Format = defaults.Storage.Format
	} else {
		c.Storage.Format = format
	}

	// 防止路径遍历
	if c.Storage.Directory == "" || strings.Contains(c.Storage.Directory, "..") {
		c.Storage.Directory = defaults.Storage.Directory
	}
	if c.Storage.SettingsDB == "" || strings.Contains(c.Storage.SettingsDB, "..") {
		c.Storage.SettingsDB = defaults.Storage.SettingsDB
	}

	if c.Behavior.DebounceMs < 50 || c.Behavior.DebounceMs > 5000 {
		c.Behavior.DebounceMs = defaults.Behavior.DebounceMs
	}
	if c.Behavior.Display < 0 {
		c.Behavior.Display = 0
	}
	c.Behavior.MinPixelRatio = lo.Clamp(c.Behavior.MinPixelRatio, 1, 4)
	c.Behavior.RetentionDays = max(c.Behavior.RetentionDays, 0)

	// 验证快捷键
	if c.Hotkey.Key == "" {
		c.Hotkey = defaults.Hotkey
	}

	// 验证修饰键
	mods := lo.Uniq(lo.FilterMap(c.Hotkey.Modifiers, func(m string, _ int) (string, bool) {
		m = strings.ToLower(strings.TrimSpace(m))
		return m, lo.Contains(validModifiers, m)
	}))
	if len(mods) == 0 {
		c.Hotkey.Modifiers = defaults.Hotkey.Modifiers
	} else {
		c.Hotkey.Modifiers = mods
	}
}

// Path 配置文件路径
func (c *Config) Path() string {
	if c.path == "" {
		return GetConfigPath()
	}
	return c.path
}

// Save 保存配置
func (c *Config) Save() error {
	configPath := c.Path()

	// 确保目录存在
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "    ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

// SetHotkey 设置快捷键
func (c *Config) SetHotkey(modifiers []string, key string) error {
	c.Hotkey.Modifiers = modifiers
	c.Hotkey.Key = key
	c.Validate()
	return c.Save()
}

// GetHotkeyString 获取快捷键的字符串表示
func (c *Config) GetHotkeyString() string {
	return strings.Join(append(append([]string{}, c.Hotkey.Modifiers...), c.Hotkey.Key), "+")
}

// EnsureStorageDir 确保存储目录存在
func (c *Config) EnsureStorageDir() error {
	// 展开 ~
	dir := c.Storage.Directory
	if len(dir) > 0 && dir[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		dir = filepath.Join(homeDir, dir[1:])
	}
	c.Storage.Directory = dir

	return os.MkdirAll(dir, 0755)
}
