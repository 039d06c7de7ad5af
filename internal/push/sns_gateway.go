package push

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/umichkisa/pocha-backend/pkg/logger"
)

// SNS reports an existing endpoint with other attributes as InvalidParameter
var existingEndpointRe = regexp.MustCompile(`Endpoint (arn:aws:sns:\S+) already exists`)

type SNSGateway struct {
	client      *sns.Client
	platformARN string
}

// NewSNSGateway uses static keys when given, otherwise the default AWS credential chain
func NewSNSGateway(ctx context.Context, region, accessKeyID, secretAccessKey, platformARN string) (*SNSGateway, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if accessKeyID != "" && secretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &SNSGateway{
		client:      sns.NewFromConfig(cfg),
		platformARN: platformARN,
	}, nil
}

// CreateEndpoint registers the token; re-registering returns the existing endpoint, re-enabled
func (g *SNSGateway) CreateEndpoint(ctx context.Context, token, userData string) (string, error) {
	out, err := g.client.CreatePlatformEndpoint(ctx, &sns.CreatePlatformEndpointInput{
		PlatformApplicationArn: aws.String(g.platformARN),
		Token:                  aws.String(token),
		CustomUserData:         aws.String(userData),
	})
	if err == nil {
		return aws.ToString(out.EndpointArn), nil
	}

	var invalid *types.InvalidParameterException
	if !errors.As(err, &invalid) {
		return "", fmt.Errorf("failed to create platform endpoint: %w", err)
	}
	m := existingEndpointRe.FindStringSubmatch(invalid.ErrorMessage())
	if m == nil {
		return "", fmt.Errorf("failed to create platform endpoint: %w", err)
	}

	endpointARN := m[1]
	_, err = g.client.SetEndpointAttributes(ctx, &sns.SetEndpointAttributesInput{
		EndpointArn: aws.String(endpointARN),
		Attributes: map[string]string{
			"Token":          token,
			"CustomUserData": userData,
			"Enabled":        "true",
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to refresh platform endpoint: %w", err)
	}

	logger.Debug("Existing SNS endpoint refreshed", map[string]interface{}{
		"endpoint": endpointARN,
	})
	return endpointARN, nil
}

func (g *SNSGateway) Publish(ctx context.Context, endpointARN string, msg Message) error {
	payload, err := BuildPayload(msg)
	if err != nil {
		return err
	}

	input := &sns.PublishInput{
		TargetArn:        aws.String(endpointARN),
		Message:          aws.String(payload),
		MessageStructure: aws.String("json"),
	}
	if msg.Subject != "" {
		input.Subject = aws.String(msg.Subject)
	}

	out, err := g.client.Publish(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to publish to endpoint: %w", err)
	}

	logger.Debug("Push published", map[string]interface{}{
		"endpoint":   endpointARN,
		"message_id": aws.ToString(out.MessageId),
		"silent":     msg.Silent,
	})
	return nil
}
