package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// 文件名中不允许出现的字符
var unsafeName = regexp.MustCompile(`[\\/:*?"<>|\x00-\x1f]+`)

// Downloader 下载目录管理
type Downloader struct {
	directory string
	now       func() time.Time
}

// NewDownloader 创建下载器
func NewDownloader(directory string) *Downloader {
	return &Downloader{
		directory: ExpandHome(directory),
		now:       time.Now,
	}
}

// ExpandHome 展开 ~
func ExpandHome(dir string) string {
	if len(dir) > 0 && dir[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		dir = filepath.Join(homeDir, dir[1:])
	}
	return dir
}

// Directory 获取保存目录
func (d *Downloader) Directory() string {
	return d.directory
}

// FileName 生成文件名：用户填写的名称，否则 screenshot_时间戳；自动补全扩展名
func (d *Downloader) FileName(name, ext string) string {
	ext = "." + strings.TrimPrefix(strings.ToLower(ext), ".")
	if ext == "." {
		ext = ".png"
	}

	name = strings.TrimSpace(unsafeName.ReplaceAllString(name, "_"))
	if strings.EqualFold(filepath.Ext(name), ext) {
		name = name[:len(name)-len(ext)]
	}
	name = strings.Trim(name, ". ")
	if name == "" {
		name = "screenshot_" + d.now().Format("20060102_150405")
	}
	return name + ext
}

// Save 写入文件，同名文件存在时追加序号，返回文件路径
func (d *Downloader) Save(data []byte, name, ext string) (string, error) {
	// 确保目录存在
	if err := os.MkdirAll(d.directory, 0755); err != nil {
		return "", fmt.Errorf("无法创建目录: %w", err)
	}

	filename := d.FileName(name, ext)
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	suffix := filepath.Ext(filename)

	path := filepath.Join(d.directory, filename)
	for i := 1; ; i++ {
		file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, os.ErrExist) {
			path = filepath.Join(d.directory, fmt.Sprintf("%s (%d)%s", base, i, suffix))
			continue
		}
		if err != nil {
			return "", fmt.Errorf("无法创建文件: %w", err)
		}

		if _, err := file.Write(data); err != nil {
			file.Close()
			os.Remove(path)
			return "", fmt.Errorf("无法保存图片: %w", err)
		}
		if err := file.Close(); err != nil {
			return "", fmt.Errorf("无法保存图片: %w", err)
		}
		return path, nil
	}
}

// Cleanup 清理旧截图，返回删除的文件数
func (d *Downloader) Cleanup(olderThan time.Duration) (int, error) {
	entries, err := os.ReadDir(d.directory)
	if err != nil {
		return 0, err
	}

	cutoff := d.now().Add(-olderThan)
	removed := 0

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".png" && ext != ".webp" {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoff) {
			if os.Remove(filepath.Join(d.directory, entry.Name())) == nil {
				removed++
			}
		}
	}

	return removed, nil
}
