// client.go
package email

import (
	// 标准库导入
	"bytes"
	"fmt"
	"io"
	"log"
	"mime"
	"strings"
	"sync"
	"time"

	// 第三方库导入
	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	// 项目内部导入
	"DelayInsight/src/storage"
)

/******************** 常量定义 ********************/
const (
	fetchLimit   = 100            // 单次最多拉取的邮件数，防止大批量附件撑爆内存
	fetchBuffer  = 10             // 邮件拉取通道缓冲区大小
	ReportWindow = 48 * time.Hour // 延误数据按月下发，未读窗口放宽到两天
)

/******************** 接口定义 ********************/

// Mailbox 邮件数据源接口
type Mailbox interface {
	// Connect 建立与邮件服务器的连接
	// 返回: 连接错误信息
	Connect() error

	// Disconnect 安全断开与邮件服务器的连接
	Disconnect()

	// Unread 获取since之后的未读邮件
	// 返回: 邮件列表，错误信息
	Unread(since time.Time) ([]*Email, error)
}

// Handler 邮件处理器接口
type Handler interface {
	// Handle 处理单封邮件，返回落盘成功的数据文件路径
	Handle(email *Email, logger *storage.Logger) ([]string, error)
}

/******************** 数据结构 ********************/

// Email 邮件基础数据结构
type Email struct {
	UID         uint32        // 邮件唯一标识符(IMAP UID)
	Date        time.Time     // 邮件发送时间
	From        string        // 发件人信息(已解码)
	Subject     string        // 邮件主题(已解码)
	Attachments []*Attachment // 邮件附件列表
}

// Attachment 邮件附件数据结构
type Attachment struct {
	Filename string // 附件文件名(已解码)
	Content  []byte // 附件二进制内容
}

/******************** IMAP客户端实现 ********************/

// IMAPSource 基于IMAP协议的延误数据邮件源
type IMAPSource struct {
	server    string         // IMAP服务器地址(包含端口)
	username  string         // 登录用户名
	password  string         // 登录密码/授权码
	client    *client.Client // IMAP客户端实例
	mu        sync.Mutex     // 线程安全锁
	connected bool           // 连接状态标记
}

// NewIMAPSource 构造函数：创建邮件数据源实例
// 参数:
//   - server: 服务器地址(如"imap.qq.com:993")
//   - username: 邮箱账号
//   - password: 密码/授权码
//
// 返回: 初始化后的邮件数据源指针
func NewIMAPSource(server, username, password string) *IMAPSource {
	return &IMAPSource{
		server:   server,
		username: username,
		password: password,
	}
}

// Connect 建立TLS连接并登录(线程安全)
// 已有连接仍可用时直接复用，失效则重建
func (c *IMAPSource) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		if _, err := c.client.Capability(); err == nil {
			return nil
		}
		// 连接已失效则重置
		c.client.Logout()
		c.client = nil
	}

	conn, err := client.DialTLS(c.server, nil)
	if err != nil {
		return fmt.Errorf("连接服务器失败: %w", err)
	}

	if err := conn.Login(c.username, c.password); err != nil {
		conn.Logout()
		return fmt.Errorf("登录失败: %w", err)
	}

	c.client = conn
	c.connected = true
	return nil
}

// Disconnect 安全断开连接(线程安全)
func (c *IMAPSource) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		c.client.Logout()
		c.client = nil
	}
	c.connected = false
}

// Unread 拉取收件箱中since之后的未读邮件(线程安全)
func (c *IMAPSource) Unread(since time.Time) ([]*Email, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil, fmt.Errorf("未连接到邮件服务器")
	}

	if _, err := c.client.Select("INBOX", false); err != nil {
		return nil, fmt.Errorf("选择收件箱失败: %w", err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	criteria.Since = since

	ids, err := c.client.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("搜索邮件失败: %w", err)
	}

	if len(ids) == 0 {
		return nil, nil
	}

	if len(ids) > fetchLimit {
		ids = ids[:fetchLimit]
	}

	return c.fetchAll(ids)
}

// fetchAll 按序号集拉取邮件全文并逐封解析
// 单封解析失败不中断整批
func (c *IMAPSource) fetchAll(ids []uint32) ([]*Email, error) {
	seqset := new(imap.SeqSet)
	seqset.AddNum(ids...)

	section := &imap.BodySectionName{}
	items := []imap.FetchItem{
		imap.FetchEnvelope,     // 信封信息(发件人、主题等)
		imap.FetchFlags,        // 邮件标志
		imap.FetchInternalDate, // 内部日期
		imap.FetchUid,          // 唯一标识
		section.FetchItem(),    // 正文内容
	}

	messages := make(chan *imap.Message, fetchBuffer)
	done := make(chan error, 1)

	go func() {
		done <- c.client.Fetch(seqset, items, messages)
	}()

	var emails []*Email
	for msg := range messages {
		parsed, err := c.parseMessage(msg, section)
		if err != nil {
			log.Printf("解析邮件失败: %v", err)
			continue
		}
		emails = append(emails, parsed)
	}

	if err := <-done; err != nil {
		return nil, fmt.Errorf("拉取邮件内容失败: %w", err)
	}

	return emails, nil
}

/******************** 邮件解析相关 ********************/

// parseMessage 把IMAP原始报文解析成Email，附件内容全部读入内存
// 参数:
//   - msg: 原始邮件数据
//   - section: 正文部分标识
//
// 返回: 解析后的邮件对象
func (c *IMAPSource) parseMessage(msg *imap.Message, section *imap.BodySectionName) (*Email, error) {
	r := msg.GetBody(section)
	if r == nil {
		return nil, fmt.Errorf("邮件正文为空")
	}

	mr, err := mail.CreateReader(r)
	if err != nil {
		return nil, fmt.Errorf("创建邮件阅读器失败: %w", err)
	}

	date, _ := mr.Header.Date() // 日期解析失败不影响附件落盘
	parsed := &Email{
		UID:     msg.Uid,
		Date:    date,
		From:    decodeHeader(mr.Header.Get("From")),
		Subject: decodeHeader(mr.Header.Get("Subject")),
	}

	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // 个别部分损坏时跳过
		}

		h, ok := p.Header.(*mail.AttachmentHeader)
		if !ok {
			continue
		}

		filename, err := h.Filename()
		if err != nil || filename == "" {
			log.Printf("跳过无名附件: UID=%d", msg.Uid)
			continue
		}

		var buf bytes.Buffer
		if _, err := io.Copy(&buf, p.Body); err != nil {
			log.Printf("读取附件 %s 失败: %v", filename, err)
			continue
		}

		parsed.Attachments = append(parsed.Attachments, &Attachment{
			Filename: decodeHeader(filename),
			Content:  buf.Bytes(),
		})
	}

	return parsed, nil
}

/******************** 工具函数 ********************/

// decodeHeader 解码RFC 2047编码的邮件头(=?charset?encoding?text?=)
func decodeHeader(raw string) string {
	decoder := mime.WordDecoder{CharsetReader: charsetReader}

	decoded, err := decoder.DecodeHeader(raw)
	if err != nil {
		return raw // 解码失败时保留原文
	}
	return decoded
}

// charsetReader 字符集转换器
// 国内邮箱客户端常用GBK/GB2312编码附件名，统一转成UTF-8
func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(charset) {
	case "gbk", "gb2312":
		return transform.NewReader(input, simplifiedchinese.GBK.NewDecoder()), nil
	default:
		return input, nil // 其他编码原样返回
	}
}

/******************** 业务逻辑函数 ********************/

// FetchLatestReport 邮件检查主流程：连接、拉取窗口内未读、按主题关键词挑出最新一封
// 参数:
//   - box: 邮件数据源
//   - keyword: 目标邮件主题关键词(配置的target_subject)
//   - logger: 日志记录器
//
// 返回: 最新目标邮件(没有新邮件或没有目标邮件时为nil)，错误信息
func FetchLatestReport(box Mailbox, keyword string, logger *storage.Logger) (*Email, error) {
	startTime := time.Now()
	logger.Info("开始检查延误数据邮箱...")

	if err := box.Connect(); err != nil {
		return nil, fmt.Errorf("连接失败: %w", err)
	}
	defer box.Disconnect() // 确保连接关闭

	emails, err := box.Unread(time.Now().Add(-ReportWindow))
	if err != nil {
		return nil, fmt.Errorf("获取邮件失败: %w", err)
	}

	if len(emails) == 0 {
		logger.Info("没有新邮件")
		return nil, nil
	}

	target := latestMatching(emails, keyword)
	if target == nil {
		logger.Info("没有目标邮件")
		return nil, nil
	}

	logger.Info(fmt.Sprintf("检查完成，耗时: %v", time.Since(startTime)))
	return target, nil
}

// latestMatching 在主题含关键词的邮件里挑发送时间最新的一封
func latestMatching(emails []*Email, keyword string) *Email {
	var latest *Email
	for _, e := range emails {
		if !strings.Contains(e.Subject, keyword) {
			continue
		}
		if latest == nil || e.Date.After(latest.Date) {
			latest = e
		}
	}
	return latest
}
