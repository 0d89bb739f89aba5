package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cliffordobure/daycare-sub000/pkg/notify"
)

const dispatchTimeout = 15 * time.Second

// Dispatcher 异步外发邮件与短信
// 发送失败只记录日志，不影响主流程
type Dispatcher struct {
	mailer notify.Mailer
	sms    notify.SMSSender
	logger *zap.Logger
	wg     sync.WaitGroup
}

// NewDispatcher 创建 Dispatcher
func NewDispatcher(mailer notify.Mailer, sms notify.SMSSender, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{mailer: mailer, sms: sms, logger: logger}
}

// Email 后台发送邮件
func (d *Dispatcher) Email(email notify.Email) {
	if d == nil || d.mailer == nil || email.To == "" {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()
		if err := d.mailer.SendEmail(ctx, email); err != nil {
			d.logger.Warn("邮件发送失败",
				zap.String("to", email.To),
				zap.String("template", email.Template),
				zap.Error(err),
			)
		}
	}()
}

// SMS 后台发送短信
func (d *Dispatcher) SMS(sms notify.SMS) {
	if d == nil || d.sms == nil || sms.To == "" {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()
		if err := d.sms.SendSMS(ctx, sms); err != nil {
			d.logger.Warn("短信发送失败", zap.String("to", sms.To), zap.Error(err))
		}
	}()
}

// Wait 等待所有已提交的发送完成（优雅退出与测试使用）
func (d *Dispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}
