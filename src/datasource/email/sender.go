// sender.go
package email

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"os"
	"strings"

	"github.com/jordan-wright/email"

	"DelayInsight/src/config"
)

// SendReport 把分析产物作为附件发送给配置的收件人
// 参数:
//   - c: 应用配置(send_email段)
//   - subject: 邮件主题
//   - body: 正文文本
//   - attachments: 附件路径列表，可为空
//
// 返回: 发送过程中的错误
func SendReport(c *config.Config, subject, body string, attachments []string) error {
	from := c.SendEmail.Username
	if from == "" || c.SendEmail.Server == "" {
		return fmt.Errorf("未配置发件邮箱")
	}
	if len(c.SendEmail.To) == 0 {
		return fmt.Errorf("未配置报告收件人")
	}

	e := email.NewEmail()
	e.From = fmt.Sprintf("DelayInsight <%s>", from)
	e.To = c.SendEmail.To
	e.Subject = subject
	e.Text = []byte(body)

	// 附件全部存在才发送，缺一个就整封拒发
	for _, path := range attachments {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("附件文件不存在: %s", path)
		}
		if _, err := e.AttachFile(path); err != nil {
			return fmt.Errorf("附件添加失败: %w", err)
		}
	}

	// 确保服务器地址包含端口
	smtpAddr := c.SendEmail.Server
	if !strings.Contains(smtpAddr, ":") {
		smtpAddr += ":465" // 默认 SSL 端口
	}
	host := strings.Split(smtpAddr, ":")[0]

	if err := e.SendWithTLS(
		smtpAddr,
		smtp.PlainAuth("", from, c.SendEmail.Password, host),
		&tls.Config{ServerName: host},
	); err != nil {
		return fmt.Errorf("邮件发送失败: %w (Server: %s)", err, smtpAddr)
	}
	return nil
}
