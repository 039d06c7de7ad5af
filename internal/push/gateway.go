package push

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/umichkisa/pocha-backend/pkg/logger"
)

// Message is one push to a device. Silent pushes carry Data only;
// alerts carry Title and Body.
type Message struct {
	Subject string
	Title   string
	Body    string
	Silent  bool
	Data    map[string]interface{}
}

// Gateway registers device tokens and delivers messages to endpoints
type Gateway interface {
	CreateEndpoint(ctx context.Context, token, userData string) (string, error)
	Publish(ctx context.Context, endpointARN string, msg Message) error
}

// BuildPayload renders the per-platform SNS message (MessageStructure=json)
func BuildPayload(msg Message) (string, error) {
	var gcm, apns map[string]interface{}
	if msg.Silent {
		gcm = map[string]interface{}{"data": msg.Data}
		apns = map[string]interface{}{"aps": map[string]interface{}{"content-available": 1}}
		for k, v := range msg.Data {
			apns[k] = v
		}
	} else {
		gcm = map[string]interface{}{
			"notification": map[string]string{"title": msg.Title, "body": msg.Body},
		}
		if len(msg.Data) > 0 {
			gcm["data"] = msg.Data
		}
		apns = map[string]interface{}{
			"aps": map[string]interface{}{
				"alert": map[string]string{"title": msg.Title, "body": msg.Body},
				"sound": "default",
			},
		}
	}

	gcmJSON, err := json.Marshal(gcm)
	if err != nil {
		return "", fmt.Errorf("failed to encode GCM payload: %w", err)
	}
	apnsJSON, err := json.Marshal(apns)
	if err != nil {
		return "", fmt.Errorf("failed to encode APNS payload: %w", err)
	}

	defaultText := msg.Body
	if defaultText == "" {
		defaultText = msg.Subject
	}
	payload, err := json.Marshal(map[string]string{
		"default":      defaultText,
		"GCM":          string(gcmJSON),
		"APNS":         string(apnsJSON),
		"APNS_SANDBOX": string(apnsJSON),
	})
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

// LogGateway only logs; used when push delivery is disabled
type LogGateway struct{}

func (LogGateway) CreateEndpoint(_ context.Context, token, userData string) (string, error) {
	logger.Debug("Push disabled, issuing local endpoint", map[string]interface{}{
		"user": userData,
	})
	return "local:" + userData, nil
}

func (LogGateway) Publish(_ context.Context, endpointARN string, msg Message) error {
	logger.Info("Push disabled, message dropped", map[string]interface{}{
		"endpoint": endpointARN,
		"subject":  msg.Subject,
		"silent":   msg.Silent,
	})
	return nil
}
