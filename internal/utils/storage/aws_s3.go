package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"mealmatch-backend/internal/utils"
)

const (
	// MaxFileSize is the largest image accepted for upload.
	MaxFileSize = 5 * 1024 * 1024

	// UploadTimeout bounds how long a single upload may take.
	UploadTimeout = 60 * time.Second
)

// AllowImage lists the content types accepted for food and profile images.
var AllowImage = []string{"image/jpeg", "image/png", "image/webp"}

var (
	ErrFileTooLarge    = errors.New("file exceeds the 5MB size limit")
	ErrInvalidFileType = errors.New("file type must be JPEG, PNG or WebP")
	ErrUploadTimeout   = errors.New("file upload timed out")
	ErrUploadFailed    = errors.New("file upload failed")
)

type (
	AwsS3 interface {
		UploadFile(ctx context.Context, file *multipart.FileHeader, folder string, allowedTypes ...string) (string, error)
		UpdateFile(ctx context.Context, objectKey string, file *multipart.FileHeader, allowedTypes ...string) (string, error)
		DeleteFile(ctx context.Context, objectKey string) error
		GetPublicLinkKey(objectKey string) string
		GetObjectKeyFromLink(link string) string
	}

	awsS3 struct {
		client *s3.Client
		bucket string
		region string
	}
)

func NewAwsS3() AwsS3 {
	region := utils.GetConfig("AWS_S3_REGION")
	cfg, err := awsconfig.LoadDefaultConfig(
		context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			utils.GetConfig("AWS_ACCESS_KEY"),
			utils.GetConfig("AWS_SECRET_KEY"),
			"",
		)),
	)
	if err != nil {
		log.Fatalf("error loading AWS config: %v", err)
	}

	return &awsS3{
		client: s3.NewFromConfig(cfg),
		bucket: utils.GetConfig("AWS_S3_BUCKET"),
		region: region,
	}
}

// ValidateFile applies the size and content-type gate. Callers run it before
// touching any other backend so a bad file never causes partial writes.
func ValidateFile(file *multipart.FileHeader, allowedTypes ...string) error {
	if file.Size > MaxFileSize {
		return ErrFileTooLarge
	}
	contentType := file.Header.Get("Content-Type")
	for _, allowed := range allowedTypes {
		if contentType == allowed {
			return nil
		}
	}
	return ErrInvalidFileType
}

// ObjectKey builds a collision-resistant key: upload timestamp, a random
// token, then the original file name.
func ObjectKey(folder, fileName string) string {
	token := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("%s/%d-%s-%s", folder, time.Now().UnixMilli(), token, fileName)
}

func (s *awsS3) UploadFile(ctx context.Context, file *multipart.FileHeader, folder string, allowedTypes ...string) (string, error) {
	if err := ValidateFile(file, allowedTypes...); err != nil {
		return "", err
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	uploadCtx, cancel := context.WithTimeout(ctx, UploadTimeout)
	defer cancel()

	objectKey := ObjectKey(folder, file.Filename)
	_, err = s.client.PutObject(uploadCtx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey),
		Body:        src,
		ContentType: aws.String(file.Header.Get("Content-Type")),
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(uploadCtx.Err(), context.DeadlineExceeded) {
			log.Printf("s3 upload of %s timed out after %s", objectKey, UploadTimeout)
			return "", ErrUploadTimeout
		}
		log.Printf("s3 upload of %s failed: %v", objectKey, err)
		return "", ErrUploadFailed
	}

	return objectKey, nil
}

func (s *awsS3) UpdateFile(ctx context.Context, objectKey string, file *multipart.FileHeader, allowedTypes ...string) (string, error) {
	if err := s.DeleteFile(ctx, objectKey); err != nil {
		log.Printf("delete previous object %s: %v", objectKey, err)
	}
	folder := objectKey
	if idx := strings.Index(objectKey, "/"); idx > 0 {
		folder = objectKey[:idx]
	}
	return s.UploadFile(ctx, file, folder, allowedTypes...)
}

func (s *awsS3) DeleteFile(ctx context.Context, objectKey string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	return err
}

func (s *awsS3) GetPublicLinkKey(objectKey string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, objectKey)
}

func (s *awsS3) GetObjectKeyFromLink(link string) string {
	prefix := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", s.bucket, s.region)
	return strings.TrimPrefix(link, prefix)
}
