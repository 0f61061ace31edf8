package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	appconfig "github.com/a11enyan97/enterprise-approval-sys/internal/config"
	"github.com/a11enyan97/enterprise-approval-sys/internal/utils"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

// S3Storage 基于 S3 兼容协议的对象存储实现
type S3Storage struct {
	client        *s3.Client
	presigner     *s3.PresignClient
	bucket        string
	keyPrefix     string
	publicBaseURL string
	presignExpiry time.Duration
}

// NewS3Storage 创建 S3 对象存储客户端
// Endpoint 非空时指向 S3 兼容服务(如 MinIO、OSS 的 S3 网关)
func NewS3Storage(cfg appconfig.OSSConfig) (*S3Storage, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.AccessKeySecret, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	publicBase := cfg.PublicBaseURL
	if publicBase == "" {
		publicBase = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}

	expiry := time.Duration(cfg.PresignExpiry) * time.Second
	if expiry <= 0 {
		expiry = 10 * time.Minute
	}

	return &S3Storage{
		client:        client,
		presigner:     s3.NewPresignClient(client),
		bucket:        cfg.Bucket,
		keyPrefix:     strings.Trim(cfg.KeyPrefix, "/"),
		publicBaseURL: strings.TrimRight(publicBase, "/"),
		presignExpiry: expiry,
	}, nil
}

// BuildObjectKey 生成唯一对象键,避免同名文件互相覆盖
func (s *S3Storage) BuildObjectKey(fileName string) string {
	date := time.Now().Format("2006-01-02")
	sanitized := utils.SanitizeFileName(fileName)
	return fmt.Sprintf("%s/%s/%s-%s", s.keyPrefix, date, uuid.NewString(), sanitized)
}

// SignPutURL 签发预签名 PUT 凭证
func (s *S3Storage) SignPutURL(ctx context.Context, fileName, contentType string) (*UploadCredential, error) {
	key := s.BuildObjectKey(fileName)

	if contentType == "" {
		contentType = "application/octet-stream"
	}

	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(s.presignExpiry))
	if err != nil {
		return nil, fmt.Errorf("failed to presign put for %s: %w", fileName, err)
	}

	return &UploadCredential{
		UploadURL: req.URL,
		PublicURL: s.publicBaseURL + "/" + key,
		ObjectKey: key,
	}, nil
}

// DeleteObjects 批量删除对象
func (s *S3Storage) DeleteObjects(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	objects := make([]types.ObjectIdentifier, 0, len(keys))
	for _, key := range keys {
		objects = append(objects, types.ObjectIdentifier{Key: aws.String(key)})
	}

	out, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s.bucket),
		Delete: &types.Delete{
			Objects: objects,
			Quiet:   aws.Bool(true),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete objects: %w", err)
	}
	if len(out.Errors) > 0 {
		first := out.Errors[0]
		return fmt.Errorf("failed to delete %d objects, first: %s (%s)",
			len(out.Errors), aws.ToString(first.Key), aws.ToString(first.Message))
	}
	return nil
}

// KeyFromURL 从公共读地址还原对象键
func KeyFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid object URL %q: %w", rawURL, err)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", fmt.Errorf("object URL %q has no key", rawURL)
	}
	return key, nil
}
