package uploadservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	uploadURLExpiry  = 1000 * time.Second
	imageContentType = "image/jpeg"
)

var ErrStorage = errors.New("could not create upload url")

type Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	// Endpoint overrides the S3 endpoint, e.g. for MinIO or localstack.
	Endpoint string
}

type UploadService struct {
	presigner Presigner
	bucket    string
	now       func() time.Time
	newID     func() (string, error)
}

type UploadURL struct {
	URL       string        `json:"uploadUrl"`
	ExpiresIn time.Duration `json:"-"`
}

func NewUploadService(ctx context.Context, cfg Config) (*UploadService, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("could not load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newUploadService(s3.NewPresignClient(client), cfg.Bucket), nil
}

func newUploadService(p Presigner, bucket string) *UploadService {
	return &UploadService{
		presigner: p,
		bucket:    bucket,
		now:       time.Now,
		newID:     func() (string, error) { return gonanoid.New() },
	}
}

// GetUploadURL returns a presigned PUT url for a new jpeg object under a unique key.
func (s *UploadService) GetUploadURL(ctx context.Context) (*UploadURL, error) {
	id, err := s.newID()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	key := fmt.Sprintf("%s-%d.jpeg", id, s.now().UnixMilli())

	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(imageContentType),
	}, s3.WithPresignExpires(uploadURLExpiry))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return &UploadURL{URL: req.URL, ExpiresIn: uploadURLExpiry}, nil
}
