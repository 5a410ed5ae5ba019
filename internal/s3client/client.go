// Package s3client stores capture artifacts in an S3-compatible bucket.
// Tests run it against gofakes3.
package s3client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// ErrObjectNotFound is returned by Download for a missing key.
var ErrObjectNotFound = errors.New("s3client: object not found")

// Config selects the bucket and how to reach it.
type Config struct {
	Endpoint        string // empty means AWS
	Region          string
	AccessKeyID     string // with SecretAccessKey; otherwise the default credential chain
	SecretAccessKey string
	BucketName      string
	BaseURL         string // browsable prefix for Location
	UsePathStyle    bool   // needed by most S3-compatible servers
}

// Client is bound to one bucket.
type Client struct {
	api     *s3.Client
	bucket  string
	baseURL string
}

func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.BucketName == "" {
		return nil, errors.New("s3client: bucket name is required")
	}

	var loadOpts []func(*config.LoadOptions) error
	loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		static := credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
		loadOpts = append(loadOpts, config.WithCredentialsProvider(static))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("s3client: load aws config: %w", err)
	}

	api := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return Wrap(api, cfg.BucketName, cfg.BaseURL), nil
}

// Wrap binds an existing SDK client to bucket.
func Wrap(api *s3.Client, bucket, baseURL string) *Client {
	return &Client{api: api, bucket: bucket, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func opError(op, key string, err error) error {
	return fmt.Errorf("s3client: %s %q: %w", op, key, err)
}

// Upload streams body to key.
func (c *Client) Upload(ctx context.Context, key string, body io.Reader, contentType string) error {
	_, err := c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &c.bucket,
		Key:         &key,
		Body:        body,
		ContentType: &contentType,
	})
	if err != nil {
		return opError("upload", key, err)
	}
	return nil
}

// Download reads the whole object at key.
func (c *Client) Download(ctx context.Context, key string) ([]byte, error) {
	out, err := c.api.GetObject(ctx, &s3.GetObjectInput{Bucket: &c.bucket, Key: &key})
	if isNotFound(err) {
		return nil, ErrObjectNotFound
	}
	if err != nil {
		return nil, opError("download", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, opError("read", key, err)
	}
	return data, nil
}

func isNotFound(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "NoSuchKey", "NotFound":
		return true
	}
	return false
}

// List returns every key under prefix, following pagination.
func (c *Client) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	pages := s3.NewListObjectsV2Paginator(c.api, &s3.ListObjectsV2Input{Bucket: &c.bucket, Prefix: &prefix})
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, opError("list", prefix, err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}

// Delete removes key. A missing key is not an error.
func (c *Client) Delete(ctx context.Context, key string) error {
	if _, err := c.api.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: &c.bucket, Key: &key}); err != nil {
		return opError("delete", key, err)
	}
	return nil
}

// Location links to key under BaseURL, or as an s3:// URI without one.
func (c *Client) Location(key string) string {
	key = strings.TrimPrefix(key, "/")
	if c.baseURL == "" {
		return "s3://" + c.bucket + "/" + key
	}
	return c.baseURL + "/" + key
}
