package sns

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/go-member-gate/internal/config"
)

// subjectLimit is the longest Subject SNS accepts.
const subjectLimit = 100

type publisher interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Alerter publishes operator-facing alerts (configuration errors, members left
// without roles) to an SNS topic.
type Alerter struct {
	client   publisher
	topicARN string
}

func NewAlerter(cfg *config.Config) (*Alerter, error) {
	if cfg.SNSAlertTopicARN == "" {
		return nil, fmt.Errorf("SNS_ALERT_TOPIC_ARN is not set")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.SNSRegion),
	)
	if err != nil {
		return nil, err
	}
	client := sns.NewFromConfig(awsCfg, func(o *sns.Options) {
		if cfg.AWSEndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
		}
	})
	return &Alerter{client: client, topicARN: cfg.SNSAlertTopicARN}, nil
}

func (a *Alerter) Alert(ctx context.Context, subject, message string) error {
	if len(subject) > subjectLimit {
		subject = subject[:subjectLimit]
	}
	_, err := a.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(a.topicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	})
	if err != nil {
		return fmt.Errorf("publish alert: %w", err)
	}
	return nil
}
