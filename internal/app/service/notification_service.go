package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/umichkisa/pocha-backend/internal/app/model"
	"github.com/umichkisa/pocha-backend/internal/app/repository"
	"github.com/umichkisa/pocha-backend/internal/push"
	"github.com/umichkisa/pocha-backend/pkg/logger"
)

var (
	ErrPushEndpointNotFound = errors.New("no push endpoint registered for user")
	ErrInvalidDeviceToken   = errors.New("device token is required")
	ErrPushRegistration     = errors.New("push endpoint registration failed")
)

// NotificationService owns device registration and implements Notifier
type NotificationService interface {
	Notifier
	RegisterToken(ctx context.Context, email, token string) (*model.PushEndpoint, error)
}

type notificationService struct {
	userRepo     repository.UserRepository
	endpointRepo repository.PushEndpointRepository
	gateway      push.Gateway
}

func NewNotificationService(
	userRepo repository.UserRepository,
	endpointRepo repository.PushEndpointRepository,
	gateway push.Gateway,
) NotificationService {
	return &notificationService{
		userRepo:     userRepo,
		endpointRepo: endpointRepo,
		gateway:      gateway,
	}
}

// RegisterToken creates or refreshes the user's device endpoint
func (s *notificationService) RegisterToken(ctx context.Context, email, token string) (*model.PushEndpoint, error) {
	if token == "" {
		return nil, ErrInvalidDeviceToken
	}
	if _, err := s.userRepo.FindByEmail(email); err != nil {
		return nil, orNotFound(err, ErrUserNotFound)
	}

	endpointARN, err := s.gateway.CreateEndpoint(ctx, token, email)
	if err != nil {
		logger.Error("Failed to create push endpoint", err, map[string]interface{}{
			"email": email,
		})
		return nil, fmt.Errorf("%w: %v", ErrPushRegistration, err)
	}

	endpoint := &model.PushEndpoint{Email: email, DeviceToken: token, EndpointARN: endpointARN}
	if err := s.endpointRepo.Upsert(endpoint); err != nil {
		return nil, err
	}

	logger.Info("Push endpoint registered", map[string]interface{}{
		"email": email,
	})
	return endpoint, nil
}

func (s *notificationService) SendSilent(ctx context.Context, email, subject string, data map[string]interface{}) error {
	return s.send(ctx, email, push.Message{Subject: subject, Silent: true, Data: data})
}

func (s *notificationService) SendAlert(ctx context.Context, email, subject, title, body string) error {
	return s.send(ctx, email, push.Message{Subject: subject, Title: title, Body: body})
}

func (s *notificationService) send(ctx context.Context, email string, msg push.Message) error {
	endpoint, err := s.endpointRepo.FindByEmail(email)
	if err != nil {
		return orNotFound(err, ErrPushEndpointNotFound)
	}
	return s.gateway.Publish(ctx, endpoint.EndpointARN, msg)
}
