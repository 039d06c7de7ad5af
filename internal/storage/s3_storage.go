package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/umichkisa/pocha-backend/pkg/logger"
)

const (
	menuImageFolder = "menu-images"
	presignExpiry   = 15 * time.Minute
)

var (
	ErrContentTypeNotAllowed = errors.New("content type is not allowed")
	ErrForeignURL            = errors.New("url does not belong to this bucket")
)

// AllowedImageTypes 메뉴 이미지 허용 타입
var AllowedImageTypes = []string{
	"image/jpeg",
	"image/jpg",
	"image/png",
	"image/gif",
	"image/webp",
}

type S3Storage struct {
	client  *s3.Client
	bucket  string
	region  string
	baseURL string
}

type PresignedURLResponse struct {
	UploadURL string `json:"uploadURL"`
	FileURL   string `json:"fileURL"`
	Key       string `json:"key"`
}

func NewS3Storage(ctx context.Context, region, bucket, accessKeyID, secretAccessKey, baseURL string) *S3Storage {
	var cfg aws.Config
	var err error

	// If credentials are provided, use them. Otherwise, use default credential chain
	if accessKeyID != "" && secretAccessKey != "" {
		cfg = aws.Config{
			Region:      region,
			Credentials: credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		}
	} else {
		cfg, err = config.LoadDefaultConfig(ctx, config.WithRegion(region))
		if err != nil {
			logger.Warn("Falling back to region-only AWS config", map[string]interface{}{
				"error": err.Error(),
			})
			cfg = aws.Config{Region: region}
		}
	}

	return &S3Storage{
		client:  s3.NewFromConfig(cfg),
		bucket:  bucket,
		region:  region,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// PresignMenuImageUpload returns a PUT URL for a new image under the pocha's folder
func (s *S3Storage) PresignMenuImageUpload(ctx context.Context, pochaID uint, filename, contentType string) (*PresignedURLResponse, error) {
	if err := ValidateContentType(contentType, AllowedImageTypes); err != nil {
		return nil, err
	}

	key := s.menuImageKey(pochaID, filename)
	presignClient := s3.NewPresignClient(s.client)
	presignedReq, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return nil, fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return &PresignedURLResponse{
		UploadURL: presignedReq.URL,
		FileURL:   s.FileURL(key),
		Key:       key,
	}, nil
}

// DeleteByURL removes the object a public file URL points at
func (s *S3Storage) DeleteByURL(ctx context.Context, url string) error {
	key, err := s.KeyFromURL(url)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}

	logger.Info("Menu image deleted", map[string]interface{}{
		"key": key,
	})
	return nil
}

func (s *S3Storage) menuImageKey(pochaID uint, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("%s/%d/%s%s", menuImageFolder, pochaID, uuid.New().String(), ext)
}

// FileURL CloudFront(baseURL) 또는 S3 direct URL
func (s *S3Storage) FileURL(key string) string {
	return s.publicPrefix() + key
}

// KeyFromURL strips the public prefix; URLs from elsewhere are rejected
func (s *S3Storage) KeyFromURL(url string) (string, error) {
	prefix := s.publicPrefix()
	if !strings.HasPrefix(url, prefix) || len(url) == len(prefix) {
		return "", fmt.Errorf("%w: %s", ErrForeignURL, url)
	}
	return strings.TrimPrefix(url, prefix), nil
}

func (s *S3Storage) publicPrefix() string {
	if s.baseURL != "" {
		return s.baseURL + "/"
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", s.bucket, s.region)
}

// ValidateContentType validates the content type
func ValidateContentType(contentType string, allowedTypes []string) error {
	for _, allowed := range allowedTypes {
		if contentType == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrContentTypeNotAllowed, contentType)
}
