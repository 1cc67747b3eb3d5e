// reader.go
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// 数据目录里参与扫描的文件类型
var dataExts = []string{".csv", ".xlsx"}

// ensureDir 确保目录存在
func ensureDir(dirPath string) error {
	if info, err := os.Stat(dirPath); err == nil {
		if info.IsDir() {
			return nil
		}
		return fmt.Errorf("%s exists but is not a directory", dirPath)
	}
	return os.MkdirAll(dirPath, 0755)
}

// EnsureDataDir 确保数据目录存在并返回其路径
func EnsureDataDir(dir string) (string, error) {
	if err := ensureDir(dir); err != nil {
		return "", fmt.Errorf("创建数据目录失败: %w", err)
	}
	return dir, nil
}

// IsDataFile 判断是否为可加载的数据文件(.csv/.xlsx且文件名含关键字)
func IsDataFile(name, keyword string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	matched := false
	for _, e := range dataExts {
		if ext == e {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	return keyword == "" || strings.Contains(filepath.Base(name), keyword)
}

// FindLatestDataFile 在目录中查找修改时间最新的数据文件
func FindLatestDataFile(dir, keyword string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory: %w", err)
	}

	var latest string
	var latestMod time.Time
	for _, entry := range entries {
		if entry.IsDir() || !IsDataFile(entry.Name(), keyword) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if latest == "" || info.ModTime().After(latestMod) {
			latest = filepath.Join(dir, entry.Name())
			latestMod = info.ModTime()
		}
	}

	if latest == "" {
		return "", fmt.Errorf("no matching data files found in %s", dir)
	}
	return latest, nil
}
