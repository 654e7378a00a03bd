package export

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"learncoach/internal/observability"
)

// ErrNoSender is returned when email dispatch is not configured.
var ErrNoSender = errors.New("email dispatch not configured")

// Dispatcher sends a rendered report to a recipient.
type Dispatcher interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// EmailConfig holds SES settings.
type EmailConfig struct {
	Region    string
	From      string
	AccessKey string
	SecretKey string
}

// EmailConfigFromEnv reads SES settings from LEARNCOACH_SES_* variables.
func EmailConfigFromEnv() EmailConfig {
	return EmailConfig{
		Region:    os.Getenv("LEARNCOACH_SES_REGION"),
		From:      os.Getenv("LEARNCOACH_SES_FROM"),
		AccessKey: os.Getenv("LEARNCOACH_SES_ACCESS_KEY"),
		SecretKey: os.Getenv("LEARNCOACH_SES_SECRET_KEY"),
	}
}

// Configured reports whether enough settings are present to send mail.
func (c EmailConfig) Configured() bool {
	return c.Region != "" && c.From != ""
}

type sesClient interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESDispatcher sends reports through Amazon SES.
type SESDispatcher struct {
	client sesClient
	from   string
	logger observability.Logger
}

// NewSESDispatcher builds a dispatcher from config. Static credentials are
// used when provided; otherwise the default AWS credential chain applies.
func NewSESDispatcher(ctx context.Context, cfg EmailConfig, logger observability.Logger) (*SESDispatcher, error) {
	if !cfg.Configured() {
		return nil, ErrNoSender
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &SESDispatcher{
		client: sesv2.NewFromConfig(awsCfg),
		from:   cfg.From,
		logger: logger.WithComponent("export.email"),
	}, nil
}

// Send delivers an HTML report to a single recipient.
func (d *SESDispatcher) Send(ctx context.Context, to, subject, htmlBody string) error {
	_, err := d.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(d.from),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(htmlBody)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	d.logger.InfoContext(ctx, "report email sent", "to", to)
	return nil
}
