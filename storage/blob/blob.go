// Package blob provides the file stores behind attachments.
package blob

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/pkg/errors"

	"github.com/mutsa-team6/myacademy-sub001/core"
)

// New returns the store selected by conf.Storage.Driver.
func New(conf *core.Config) (core.FileStorage, error) {
	switch conf.Storage.Driver {
	case "", "memory":
		return NewMemory("/files"), nil
	case "oss":
		return NewOSS(conf.Storage)
	default:
		return nil, errors.Errorf("unknown storage driver %q", conf.Storage.Driver)
	}
}

// OSS stores objects in an Aliyun OSS bucket.
type OSS struct {
	bucket   *oss.Bucket
	endpoint string
	prefix   string
}

var _ core.FileStorage = (*OSS)(nil) // interface compliance check

func NewOSS(conf core.StorageConfig) (*OSS, error) {
	if conf.OSSEndpoint == "" || conf.OSSBucket == "" {
		return nil, errors.New("oss storage needs an endpoint and a bucket")
	}
	client, err := oss.New(conf.OSSEndpoint, conf.OSSAccessKeyID, conf.OSSAccessKeySecret)
	if err != nil {
		return nil, errors.Wrap(err, "creating oss client")
	}
	bucket, err := client.Bucket(conf.OSSBucket)
	if err != nil {
		return nil, errors.Wrapf(err, "opening bucket %s", conf.OSSBucket)
	}
	endpoint := strings.TrimPrefix(strings.TrimPrefix(conf.OSSEndpoint, "https://"), "http://")
	return &OSS{bucket: bucket, endpoint: endpoint, prefix: strings.Trim(conf.OSSPrefix, "/")}, nil
}

func (s *OSS) objectKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + "/" + key
}

func (s *OSS) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	err := s.bucket.PutObject(s.objectKey(key), r,
		oss.WithContext(ctx),
		oss.ContentType(contentType),
		oss.ContentDisposition("inline"),
	)
	return errors.Wrapf(err, "putting %s", key)
}

func (s *OSS) Delete(ctx context.Context, key string) error {
	return errors.Wrapf(s.bucket.DeleteObject(s.objectKey(key), oss.WithContext(ctx)), "deleting %s", key)
}

func (s *OSS) URL(key string) string {
	return "https://" + s.bucket.BucketName + "." + s.endpoint + "/" + s.objectKey(key)
}

// Memory keeps objects in a map. Used in tests and local development.
type Memory struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]Object
}

type Object struct {
	ContentType string
	Data        []byte
}

var _ core.FileStorage = (*Memory)(nil) // interface compliance check

func NewMemory(baseURL string) *Memory {
	return &Memory{baseURL: strings.TrimRight(baseURL, "/"), objects: make(map[string]Object)}
}

func (s *Memory) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return errors.Wrapf(err, "reading %s", key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = Object{ContentType: contentType, Data: buf.Bytes()}
	return nil
}

// Delete is idempotent, as it is on OSS.
func (s *Memory) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *Memory) URL(key string) string {
	return s.baseURL + "/" + key
}

func (s *Memory) Get(key string) (Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	return obj, ok
}

func (s *Memory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
