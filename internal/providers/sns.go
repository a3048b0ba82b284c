// internal/providers/sns.go
package providers

import (
	"context"

	"bloodcare-alerts/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

const SNSName = "sns"

// SNSService is the subset of the SNS client used by the adapter, defined
// for mocking.
type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSConfig holds the adapter settings; the AWS credential chain itself is
// resolved by the SDK.
type SNSConfig struct {
	Enabled  bool
	SenderID string
}

// SNS sends SMS through AWS SNS.
type SNS struct {
	cfg    SNSConfig
	client SNSService
}

func NewSNS(cfg SNSConfig, client SNSService) *SNS {
	return &SNS{cfg: cfg, client: client}
}

// NewSNSFromRegion builds the adapter on a real SNS client resolved from the
// default AWS credential chain.
func NewSNSFromRegion(ctx context.Context, region string, cfg SNSConfig) (*SNS, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return NewSNS(cfg, sns.NewFromConfig(awsCfg)), nil
}

func (s *SNS) Name() string    { return SNSName }
func (s *SNS) Channel() string { return models.ChannelSMS }

func (s *SNS) Configured() bool {
	return s.cfg.Enabled && s.client != nil
}

func (s *SNS) Send(ctx context.Context, req SendRequest) SendResult {
	if !s.Configured() {
		return unconfigured(SNSName, "SNS adapter is disabled or has no client")
	}

	input := &sns.PublishInput{
		PhoneNumber: aws.String(req.To),
		Message:     aws.String(req.Body),
	}
	if s.cfg.SenderID != "" {
		input.MessageAttributes = map[string]types.MessageAttributeValue{
			"AWS.SNS.SMS.SenderID": {
				DataType:    aws.String("String"),
				StringValue: aws.String(s.cfg.SenderID),
			},
		}
	}

	out, err := s.client.Publish(ctx, input)
	if err != nil {
		return transportFailure(SNSName, err)
	}

	return SendResult{Accepted: true, ProviderRef: aws.ToString(out.MessageId)}
}
