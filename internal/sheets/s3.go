package sheets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// objectAPI is the subset of *s3.Client the S3 driver needs.
type objectAPI interface {
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config holds construction parameters for the S3 driver.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string // optional; e.g. MinIO
	Prefix          string // optional key prefix
	PathStyle       bool
	AccessKeyID     string // optional (falls back to default credentials chain)
	SecretAccessKey string
}

// S3Opener stores each sheet as one TSV object.
type S3Opener struct {
	client objectAPI
	bucket string
	prefix string
}

// NewS3Opener creates an S3-backed opener.
func NewS3Opener(ctx context.Context, cfg S3Config) (*S3Opener, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return newS3Opener(client, cfg.Bucket, cfg.Prefix), nil
}

func newS3Opener(client objectAPI, bucket, prefix string) *S3Opener {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &S3Opener{client: client, bucket: bucket, prefix: prefix}
}

func (o *S3Opener) Open(ctx context.Context, title string) (Sheet, bool, error) {
	sheet := &s3Sheet{opener: o, title: title, key: o.prefix + objectName(title)}

	_, err := o.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &o.bucket, Key: &sheet.key})
	if err == nil {
		return sheet, false, nil
	}
	if !isNotFound(err) {
		return nil, false, fmt.Errorf("head %s: %w", sheet.key, err)
	}
	if err := sheet.put(ctx, EncodeRows([][]string{Header})); err != nil {
		return nil, false, err
	}
	return sheet, true, nil
}

type s3Sheet struct {
	opener *S3Opener
	title  string
	key    string
}

func (s *s3Sheet) Title() string { return s.title }

func (s *s3Sheet) read(ctx context.Context) ([]byte, error) {
	out, err := s.opener.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.opener.bucket, Key: &s.key})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", s.key, err)
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

func (s *s3Sheet) put(ctx context.Context, body []byte) error {
	_, err := s.opener.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.opener.bucket,
		Key:         &s.key,
		Body:        bytes.NewReader(body),
		ContentType: aws.String("text/tab-separated-values; charset=utf-8"),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", s.key, err)
	}
	return nil
}

func (s *s3Sheet) CreatedAts(ctx context.Context) (map[string]bool, error) {
	body, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	return readCreatedAts(bytes.NewReader(body))
}

// AppendRows rewrites the object with rows added; S3 objects cannot be appended in place.
func (s *s3Sheet) AppendRows(ctx context.Context, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	body, err := s.read(ctx)
	if err != nil {
		return err
	}
	if len(body) > 0 && body[len(body)-1] != '\n' {
		body = append(body, '\n')
	}
	return s.put(ctx, append(body, EncodeRows(rows)...))
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}
