package notify

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"

	"github.com/cliffordobure/daycare-sub000/config"
)

// messageCreator twilioApi 客户端中用到的部分
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

type twilioSender struct {
	api    messageCreator
	from   string
	logger *zap.Logger
}

func newTwilioSender(cfg *config.SMSConfig, logger *zap.Logger) *twilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &twilioSender{api: client.Api, from: cfg.FromNumber, logger: logger}
}

func (s *twilioSender) Configured() bool { return true }

// SendSMS twilio-go 不接收 context，调用前检查是否已取消
func (s *twilioSender) SendSMS(ctx context.Context, sms SMS) error {
	if sms.To == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(sms.To)
	params.SetFrom(s.from)
	params.SetBody(sms.Message)

	resp, err := s.api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio 发送失败: %w", err)
	}
	if resp != nil && resp.Sid != nil {
		s.logger.Debug("短信已发送", zap.String("to", sms.To), zap.String("sid", *resp.Sid))
	}
	return nil
}
