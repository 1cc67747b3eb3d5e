package datapush

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"DelayInsight/src/config"
)

// 常量定义
const (
	DefaultBaseURL = "https://oapi.dingtalk.com"
	TokenExpire    = 7200 // token有效期(秒)
	RetryTimes     = 5
	RetryInterval  = 2 * time.Second
)

// 钉钉 API 响应结构体
type DingTalkResponse struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

// Token 响应
type TokenResponse struct {
	DingTalkResponse
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// 上传媒体文件响应
type UploadMediaResponse struct {
	DingTalkResponse
	MediaID string `json:"media_id"`
}

// Pusher 钉钉工作通知推送器
// 把延误分析结果以文本+文件的形式推给配置的接收人
type Pusher struct {
	appKey    string
	appSecret string
	agentID   string
	baseURL   string
	client    *http.Client

	mu             sync.Mutex // 保护token缓存
	accessToken    string
	tokenTimestamp int64
}

// NewPusher 从应用配置构造推送器
// base_url留空时使用钉钉开放平台默认地址
func NewPusher(cfg *config.Config) *Pusher {
	base := cfg.DingTalk.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return &Pusher{
		appKey:    cfg.DingTalk.AppKey,
		appSecret: cfg.DingTalk.AppSecret,
		agentID:   cfg.DingTalk.AgentID,
		baseURL:   strings.TrimRight(base, "/"),
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

// getAccessToken 获取 AccessToken，未过期时直接复用缓存
func (p *Pusher) getAccessToken() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now().Unix()
	if now-p.tokenTimestamp < TokenExpire-60 && p.accessToken != "" {
		return p.accessToken, nil
	}

	url := fmt.Sprintf("%s/gettoken?appkey=%s&appsecret=%s", p.baseURL, p.appKey, p.appSecret)

	resp, err := p.client.Get(url)
	if err != nil {
		return "", fmt.Errorf("获取 token 请求失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("读取 token 响应失败: %w", err)
	}

	var tokenResp TokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("解析 token 响应失败: %w", err)
	}

	if tokenResp.ErrCode != 0 {
		return "", fmt.Errorf("获取 token 错误: %s", tokenResp.ErrMsg)
	}

	p.accessToken = tokenResp.AccessToken
	p.tokenTimestamp = now
	return p.accessToken, nil
}

// UploadFile 上传文件到钉钉媒体库
// 返回: media_id，发文件消息时引用
func (p *Pusher) UploadFile(filePath string) (string, error) {
	token, err := p.getAccessToken()
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/media/upload?access_token=%s&type=file", p.baseURL, token)

	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("打开文件失败: %w", err)
	}
	defer file.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("media", filepath.Base(filePath))
	if err != nil {
		return "", fmt.Errorf("创建表单文件失败: %w", err)
	}

	if _, err = io.Copy(part, file); err != nil {
		return "", fmt.Errorf("复制文件内容失败: %w", err)
	}

	if err = writer.Close(); err != nil {
		return "", fmt.Errorf("关闭写入器失败: %w", err)
	}

	req, err := http.NewRequest("POST", url, body)
	if err != nil {
		return "", fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("发送请求失败: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("读取响应失败: %w", err)
	}

	var uploadResp UploadMediaResponse
	if err := json.Unmarshal(respBody, &uploadResp); err != nil {
		return "", fmt.Errorf("解析响应失败: %w", err)
	}

	if uploadResp.ErrCode != 0 {
		return "", fmt.Errorf("上传文件失败: %s", uploadResp.ErrMsg)
	}

	return uploadResp.MediaID, nil
}

// SendText 发送文本工作通知
// 参数:
//   - content: 消息正文
//   - receiverIDs: 接收人userid列表
func (p *Pusher) SendText(content string, receiverIDs []string) error {
	msg := map[string]interface{}{
		"msgtype": "text",
		"text": map[string]string{
			"content": content,
		},
	}
	return p.sendWorkMessage(msg, receiverIDs)
}

// SendFile 发送文件工作通知
// 参数:
//   - mediaID: UploadFile返回的媒体标识
//   - receiverIDs: 接收人userid列表
func (p *Pusher) SendFile(mediaID string, receiverIDs []string) error {
	msg := map[string]interface{}{
		"msgtype": "file",
		"file": map[string]string{
			"media_id": mediaID,
		},
	}
	return p.sendWorkMessage(msg, receiverIDs)
}

// sendWorkMessage 调用asyncsend_v2下发工作通知
func (p *Pusher) sendWorkMessage(msg map[string]interface{}, receiverIDs []string) error {
	if len(receiverIDs) == 0 {
		return fmt.Errorf("接收人列表为空")
	}

	token, err := p.getAccessToken()
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/topapi/message/corpconversation/asyncsend_v2", p.baseURL)

	// userid_list按接口要求是逗号分隔的字符串
	payload := map[string]interface{}{
		"agent_id":    p.agentID,
		"userid_list": strings.Join(receiverIDs, ","),
		"msg":         msg,
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("序列化请求体失败: %w", err)
	}

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-acs-dingtalk-access-token", token)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("发送请求失败: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("读取响应失败: %w", err)
	}

	var result DingTalkResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return fmt.Errorf("解析响应失败: %w", err)
	}

	if result.ErrCode != 0 {
		return fmt.Errorf("发送消息失败: %s", result.ErrMsg)
	}

	return nil
}

// PushReport 推送一次分析结果：先发文本概要，再逐个上传并发送导出文件
// 每一步都带重试
func (p *Pusher) PushReport(content string, receiverIDs []string, files []string) error {
	if err := retry(func() error {
		return p.SendText(content, receiverIDs)
	}, RetryTimes, RetryInterval); err != nil {
		return err
	}

	for _, f := range files {
		var mediaID string
		if err := retry(func() error {
			var uerr error
			mediaID, uerr = p.UploadFile(f)
			return uerr
		}, RetryTimes, RetryInterval); err != nil {
			return fmt.Errorf("上传 %s 失败: %w", f, err)
		}

		if err := retry(func() error {
			return p.SendFile(mediaID, receiverIDs)
		}, RetryTimes, RetryInterval); err != nil {
			return fmt.Errorf("发送文件 %s 失败: %w", f, err)
		}
	}

	return nil
}

// 重试函数
func retry(fn func() error, times int, interval time.Duration) error {
	var err error
	for i := 0; i < times; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < times-1 {
			time.Sleep(interval)
		}
	}
	return fmt.Errorf("重试 %d 次后失败: %v", times, err)
}
