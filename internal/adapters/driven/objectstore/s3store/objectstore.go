// Package s3store implements the document storage gateway on Amazon S3 or
// an S3-compatible service.
//
// Waiver templates are written with a public-read ACL and addressed by their
// virtual-hosted URL. Signed documents are private and reached only through
// time-limited presigned URLs.
package s3store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/custodia-labs/waiverdesk/internal/core/domain"
	"github.com/custodia-labs/waiverdesk/internal/core/ports/driven"
)

// Ensure ObjectStore implements the interface.
var _ driven.ObjectStore = (*ObjectStore)(nil)

// maxDeleteBatch is the DeleteObjects per-request key limit.
const maxDeleteBatch = 1000

// Config identifies the bucket and how to reach it.
type Config struct {
	Bucket string
	Region string

	// Endpoint targets an S3-compatible service and enables path-style addressing.
	Endpoint string

	// AccessKeyID and SecretAccessKey are optional. When empty the default
	// AWS credential chain is used.
	AccessKeyID     string
	SecretAccessKey string

	// PublicBaseURL replaces the bucket URL in public template links.
	PublicBaseURL string
}

// objectAPI is the subset of *s3.Client the store calls.
type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// presignAPI is the subset of *s3.PresignClient the store calls.
type presignAPI interface {
	PresignGetObject(
		ctx context.Context,
		params *s3.GetObjectInput,
		optFns ...func(*s3.PresignOptions),
	) (*v4.PresignedHTTPRequest, error)
}

// ObjectStore stores waiver documents in an S3 bucket.
type ObjectStore struct {
	cfg     Config
	client  objectAPI
	presign presignAPI
}

// New loads AWS configuration and creates an object store for cfg.Bucket.
func New(ctx context.Context, cfg Config) (*ObjectStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket: %w", domain.ErrNotConfigured)
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newObjectStore(cfg, client, s3.NewPresignClient(client)), nil
}

func newObjectStore(cfg Config, client objectAPI, presign presignAPI) *ObjectStore {
	return &ObjectStore{cfg: cfg, client: client, presign: presign}
}

// PutPublic uploads a publicly readable object and returns its URL.
func (s *ObjectStore) PutPublic(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	if err := s.put(ctx, key, body, contentType, types.ObjectCannedACLPublicRead); err != nil {
		return "", err
	}
	return s.PublicURL(key), nil
}

// PutPrivate uploads a private object.
func (s *ObjectStore) PutPrivate(ctx context.Context, key string, body []byte, contentType string) error {
	return s.put(ctx, key, body, contentType, types.ObjectCannedACLPrivate)
}

func (s *ObjectStore) put(
	ctx context.Context,
	key string,
	body []byte,
	contentType string,
	acl types.ObjectCannedACL,
) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
		ACL:         acl,
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// Get downloads an object. Missing keys return domain.ErrNotFound.
func (s *ObjectStore) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("object %s: %w", key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// Delete removes objects in batches. Keys that fail are reported together.
func (s *ObjectStore) Delete(ctx context.Context, keys ...string) error {
	var (
		errs   []error
		failed []string
	)
	for _, batch := range Batches(keys, maxDeleteBatch) {
		ids := make([]types.ObjectIdentifier, 0, len(batch))
		for _, key := range batch {
			ids = append(ids, types.ObjectIdentifier{Key: aws.String(key)})
		}

		out, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(s.cfg.Bucket),
			Delete: &types.Delete{Objects: ids},
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("delete %d objects: %w", len(batch), err))
			failed = append(failed, batch...)
			continue
		}
		for _, e := range out.Errors {
			errs = append(errs, fmt.Errorf("delete %s: %s", aws.ToString(e.Key), aws.ToString(e.Message)))
			failed = append(failed, aws.ToString(e.Key))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return &driven.DeleteError{Failed: failed, Err: errors.Join(errs...)}
}

// PresignGet returns a time-limited download URL.
func (s *ObjectStore) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = domain.DefaultPresignTTL
	}
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return req.URL, nil
}

// Ping checks that the bucket is reachable with the configured credentials.
func (s *ObjectStore) Ping(ctx context.Context) error {
	if _, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.cfg.Bucket)}); err != nil {
		return fmt.Errorf("head bucket %s: %w", s.cfg.Bucket, err)
	}
	return nil
}

// PublicURL returns the public address of key.
func (s *ObjectStore) PublicURL(key string) string {
	base := strings.TrimSuffix(s.cfg.PublicBaseURL, "/")
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", s.cfg.Bucket, s.cfg.Region)
	}
	return base + "/" + escapeKey(key)
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

// Batches splits keys into consecutive groups of at most size.
func Batches(keys []string, size int) [][]string {
	if size <= 0 {
		size = maxDeleteBatch
	}
	var batches [][]string
	for len(keys) > 0 {
		n := min(size, len(keys))
		batches = append(batches, keys[:n])
		keys = keys[n:]
	}
	return batches
}
