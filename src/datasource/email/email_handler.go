// email_handler.go
package email

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"DelayInsight/src/storage"
)

// ====================== 邮件处理器实现 ======================

// AttachmentHandler 把目标邮件里的延误数据附件落盘到数据目录
type AttachmentHandler struct {
	TargetSubject string          // 目标邮件主题关键词
	DataDir       string          // 附件保存目录
	processedUIDs map[uint32]bool // 已处理邮件UID记录
	mu            sync.RWMutex    // 保护processedUIDs的读写锁
}

func NewAttachmentHandler(subject, dataDir string) *AttachmentHandler {
	return &AttachmentHandler{
		TargetSubject: subject,
		DataDir:       dataDir,
		processedUIDs: make(map[uint32]bool),
	}
}

// IsProcessed 检查邮件是否已处理过（线程安全）
func (h *AttachmentHandler) IsProcessed(uid uint32) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.processedUIDs[uid]
}

// markAsProcessed 标记邮件为已处理（线程安全）
func (h *AttachmentHandler) markAsProcessed(uid uint32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.processedUIDs[uid] = true
}

// Handle 处理单个邮件：校验主题后把.csv/.xlsx附件保存到DataDir
// 返回保存成功的文件路径列表，保存动作由文件监控接手触发数据刷新
func (h *AttachmentHandler) Handle(email *Email, logger *storage.Logger) ([]string, error) {
	// 检查是否已处理过该邮件
	if h.IsProcessed(email.UID) {
		return nil, nil
	}

	// 检查邮件主题是否包含目标关键词
	if !strings.Contains(email.Subject, h.TargetSubject) {
		logger.Info(fmt.Sprintf("跳过主题不匹配的邮件: %s", email.Subject))
		return nil, nil
	}

	logger.Info(fmt.Sprintf("处理邮件: %s 发件人: %s 日期: %s",
		email.Subject, email.From, email.Date.Format("2006-01-02 15:04:05")))

	// 确保保存目录存在
	if err := os.MkdirAll(h.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("创建目录失败: %w", err)
	}

	var saved []string
	for _, attachment := range email.Attachments {
		ext := strings.ToLower(filepath.Ext(attachment.Filename))
		if ext != ".csv" && ext != ".xlsx" {
			continue
		}

		// 附件名只取基础名，防止路径穿越
		filePath := filepath.Join(h.DataDir, filepath.Base(attachment.Filename))
		if err := os.WriteFile(filePath, attachment.Content, 0644); err != nil {
			return saved, fmt.Errorf("保存附件失败: %w", err)
		}

		logger.Info(fmt.Sprintf("附件已保存到: %s", filePath))
		saved = append(saved, filePath)
	}

	// 只有真正落盘了数据文件才记为已处理
	if len(saved) > 0 {
		h.markAsProcessed(email.UID)
	}

	return saved, nil
}
