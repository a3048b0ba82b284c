// internal/providers/ses.go
package providers

import (
	"context"

	"bloodcare-alerts/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

const SESName = "ses"

// SESService is the subset of the SES client used by the adapter, defined
// for mocking.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESConfig holds the adapter settings; the AWS credential chain itself is
// resolved by the SDK.
type SESConfig struct {
	Enabled   bool
	FromEmail string
}

// SES sends email through AWS SES.
type SES struct {
	cfg    SESConfig
	client SESService
}

func NewSES(cfg SESConfig, client SESService) *SES {
	return &SES{cfg: cfg, client: client}
}

// NewSESFromRegion builds the adapter on a real SES client resolved from the
// default AWS credential chain.
func NewSESFromRegion(ctx context.Context, region string, cfg SESConfig) (*SES, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return NewSES(cfg, ses.NewFromConfig(awsCfg)), nil
}

func (s *SES) Name() string    { return SESName }
func (s *SES) Channel() string { return models.ChannelEmail }

func (s *SES) Configured() bool {
	return s.cfg.Enabled && s.cfg.FromEmail != "" && s.client != nil
}

func (s *SES) Send(ctx context.Context, req SendRequest) SendResult {
	if !s.Configured() {
		return unconfigured(SESName, "SES adapter is disabled or has no from email")
	}

	out, err := s.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{req.To},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(req.Subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(req.Body)},
				Html: &types.Content{Data: aws.String(req.HTMLBody)},
			},
		},
		Source: aws.String(s.cfg.FromEmail),
	})
	if err != nil {
		return transportFailure(SESName, err)
	}

	return SendResult{Accepted: true, ProviderRef: aws.ToString(out.MessageId)}
}
