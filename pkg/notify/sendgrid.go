package notify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/cliffordobure/daycare-sub000/config"
)

var (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

type sendgridMailer struct {
	key        string
	from       *sgmail.Email
	subjPrefix string
	templates  map[string]string
	logger     *zap.Logger
}

func newSendgridMailer(cfg *config.MailConfig, appName string, logger *zap.Logger) *sendgridMailer {
	fromName := cfg.FromName
	if fromName == "" {
		fromName = appName
	}
	return &sendgridMailer{
		key:        cfg.APIKey,
		from:       sgmail.NewEmail(fromName, cfg.FromEmail),
		subjPrefix: "[" + appName + "] ",
		templates:  cfg.Templates,
		logger:     logger,
	}
}

func (m *sendgridMailer) Configured() bool { return true }

// prepare 有映射的模板走动态模板，否则退化为纯文本邮件
func (m *sendgridMailer) prepare(email Email) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.AddTos(sgmail.NewEmail(email.ToName, email.To))
	p.Subject = m.subjPrefix + email.Subject

	msg := sgmail.NewV3Mail()
	msg.SetFrom(m.from)

	if id, ok := m.templates[email.Template]; ok && id != "" {
		msg.SetTemplateID(id)
		p.SetDynamicTemplateData("subject", p.Subject)
		for k, v := range email.Context {
			p.SetDynamicTemplateData(k, v)
		}
	} else {
		msg.AddContent(sgmail.NewContent("text/plain", plainBody(email)))
	}
	msg.AddPersonalizations(p)
	return msg
}

func (m *sendgridMailer) SendEmail(ctx context.Context, email Email) error {
	if email.To == "" {
		return nil
	}
	req := sendgrid.GetRequest(m.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m.prepare(email))

	res, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid 请求失败: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid 返回状态 %d: %s", res.StatusCode, res.Body)
	}
	m.logger.Debug("邮件已发送", zap.String("to", email.To), zap.String("template", email.Template))
	return nil
}

// plainBody 无模板时的正文：优先使用 context["message"]
func plainBody(email Email) string {
	if v, ok := email.Context["message"]; ok {
		return fmt.Sprint(v)
	}
	return email.Subject
}
