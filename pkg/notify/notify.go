// Package notify 邮件与短信外发
//
// 未配置凭据时返回空操作实现，调用方无需区分环境。
package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/cliffordobure/daycare-sub000/config"
)

// Email 一封待发送的邮件
// Template 为模板名，渲染交给服务商；Context 为模板变量
type Email struct {
	To       string
	ToName   string
	Subject  string
	Template string
	Context  map[string]any
}

// SMS 一条待发送的短信
type SMS struct {
	To      string
	Message string
}

// Mailer 邮件发送
type Mailer interface {
	SendEmail(ctx context.Context, email Email) error
	Configured() bool
}

// SMSSender 短信发送
type SMSSender interface {
	SendSMS(ctx context.Context, sms SMS) error
	Configured() bool
}

// ── 空操作实现 ──

type noopMailer struct {
	logger *zap.Logger
}

func (m noopMailer) SendEmail(_ context.Context, email Email) error {
	m.logger.Debug("邮件服务未配置，跳过发送",
		zap.String("to", email.To),
		zap.String("template", email.Template),
	)
	return nil
}

func (noopMailer) Configured() bool { return false }

type noopSMS struct {
	logger *zap.Logger
}

func (s noopSMS) SendSMS(_ context.Context, sms SMS) error {
	s.logger.Debug("短信服务未配置，跳过发送", zap.String("to", sms.To))
	return nil
}

func (noopSMS) Configured() bool { return false }

// NewMailer 根据配置选择 SendGrid 或空操作实现
func NewMailer(cfg *config.MailConfig, appName string, logger *zap.Logger) Mailer {
	if !cfg.Configured() {
		logger.Warn("邮件服务未配置（mail.api_key / mail.from_email），邮件将不会发送")
		return noopMailer{logger: logger}
	}
	return newSendgridMailer(cfg, appName, logger)
}

// NewSMSSender 根据配置选择 Twilio 或空操作实现
func NewSMSSender(cfg *config.SMSConfig, logger *zap.Logger) SMSSender {
	if !cfg.Configured() {
		logger.Warn("短信服务未配置（sms.account_sid / sms.auth_token / sms.from_number），短信将不会发送")
		return noopSMS{logger: logger}
	}
	return newTwilioSender(cfg, logger)
}
