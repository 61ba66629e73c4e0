package alioss

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"github.com/wieldyrabbit783/cherished-memories/internal/storage"
)

// Options configures the OSS-backed object store.
type Options struct {
	Endpoint        string
	Bucket          string
	AccessKeyID     string
	AccessKeySecret string
	// PublicBaseURL overrides the public URL prefix, e.g. when a CDN fronts
	// the bucket. Empty derives https://{bucket}.{endpoint}.
	PublicBaseURL string
	Logger        *logrus.Logger
}

// Store serves memorial images from an Alibaba Cloud OSS bucket.
type Store struct {
	bucket     *oss.Bucket
	bucketName string
	endpoint   string
	publicBase string
	logger     *logrus.Logger
}

var _ storage.ObjectStore = (*Store)(nil)

// New connects to the configured bucket.
func New(opts Options) (*Store, error) {
	if opts.Endpoint == "" {
		return nil, eris.New("oss endpoint is required")
	}
	if opts.Bucket == "" {
		return nil, eris.New("oss bucket name is required")
	}
	if opts.AccessKeyID == "" || opts.AccessKeySecret == "" {
		return nil, eris.New("oss credentials are required")
	}

	client, err := oss.New(opts.Endpoint, opts.AccessKeyID, opts.AccessKeySecret)
	if err != nil {
		return nil, eris.Wrap(err, "creating oss client")
	}

	bucket, err := client.Bucket(opts.Bucket)
	if err != nil {
		return nil, eris.Wrapf(err, "opening oss bucket: %s", opts.Bucket)
	}

	return &Store{
		bucket:     bucket,
		bucketName: opts.Bucket,
		endpoint:   strings.TrimPrefix(strings.TrimPrefix(opts.Endpoint, "https://"), "http://"),
		publicBase: strings.TrimRight(opts.PublicBaseURL, "/"),
		logger:     opts.Logger,
	}, nil
}

// Upload writes the object and returns its public URL.
func (s *Store) Upload(ctx context.Context, path string, contentType string, body io.Reader) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", eris.New("object path is required")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	options := []oss.Option{
		oss.WithContext(ctx),
		oss.ContentType(contentType),
		oss.ContentDisposition("inline"),
		oss.CacheControl("public, max-age=31536000, immutable"),
	}

	if err := s.bucket.PutObject(path, body, options...); err != nil {
		s.logError(logrus.Fields{"path": path}, err, "uploading object")
		return "", eris.Wrapf(err, "uploading object: %s", path)
	}

	return s.PublicURL(path), nil
}

// PublicBase returns the URL prefix public object URLs are served under.
func (s *Store) PublicBase() string {
	if s.publicBase != "" {
		return s.publicBase
	}
	return fmt.Sprintf("https://%s.%s", s.bucketName, s.endpoint)
}

// PublicURL resolves the public URL an object at path is served under.
func (s *Store) PublicURL(path string) string {
	if path == "" {
		return ""
	}
	if s.publicBase != "" {
		return s.publicBase + "/" + path
	}
	return fmt.Sprintf("https://%s.%s/%s", s.bucketName, s.endpoint, path)
}

// Remove issues one bulk delete for the listed objects.
func (s *Store) Remove(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	if _, err := s.bucket.DeleteObjects(paths, oss.WithContext(ctx)); err != nil {
		s.logError(logrus.Fields{"count": len(paths)}, err, "removing objects")
		return eris.Wrap(err, "removing objects")
	}

	return nil
}

func (s *Store) logError(fields logrus.Fields, err error, message string) {
	if s.logger == nil {
		return
	}

	entry := s.logger.WithField("error", err.Error())
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Error(message)
}
