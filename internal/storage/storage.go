package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrStorage wraps every failure reported by the object store. The upstream
// message is kept so it can be shown to the user as-is.
var ErrStorage = errors.New("storage failure")

type Storage interface {
	SaveFile(ctx context.Context, src io.Reader, storagePath, contentType string) error
	DeleteFile(ctx context.Context, storagePath string) error
	PublicURL(storagePath string) string
}

type LocalStorage struct {
	uploadDir string
	baseURL   string
}

type SpacesStorage struct {
	client *s3.S3
	bucket string
	prefix string
	cdnURL string
}

// NewLocalStorage stores objects under uploadDir and serves them from baseURL
// (e.g. "http://localhost:8080/uploads").
func NewLocalStorage(uploadDir, baseURL string) *LocalStorage {
	return &LocalStorage{uploadDir: uploadDir, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func NewSpacesStorage(endpoint, region, bucket, cdnURL, accessKey, secretKey string) (*SpacesStorage, error) {
	config := &aws.Config{
		Credentials:      credentials.NewStaticCredentials(accessKey, secretKey, ""),
		Endpoint:         aws.String(endpoint),
		Region:           aws.String(region),
		S3ForcePathStyle: aws.Bool(false),
	}

	sess, err := session.NewSession(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &SpacesStorage{
		client: s3.New(sess),
		bucket: bucket,
		prefix: "media",
		cdnURL: strings.TrimSuffix(cdnURL, "/"),
	}, nil
}

// ObjectPath builds the storage path for a new upload: <owner>/<unix-ms>.<ext>.
func ObjectPath(owner uuid.UUID, ext string, now time.Time) string {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	if ext == "" {
		ext = "bin"
	}
	return fmt.Sprintf("%s/%d.%s", owner, now.UnixMilli(), ext)
}

// cleanPath rejects absolute paths and anything escaping the storage root.
func cleanPath(storagePath string) (string, error) {
	p := path.Clean("/" + storagePath)[1:]
	if p == "" || p != strings.TrimPrefix(storagePath, "./") || strings.HasPrefix(p, "..") {
		return "", fmt.Errorf("%w: invalid storage path %q", ErrStorage, storagePath)
	}
	return p, nil
}

func (ls *LocalStorage) fullPath(storagePath string) (string, error) {
	p, err := cleanPath(storagePath)
	if err != nil {
		return "", err
	}
	return filepath.Join(ls.uploadDir, filepath.FromSlash(p)), nil
}

func (ls *LocalStorage) SaveFile(_ context.Context, src io.Reader, storagePath, _ string) error {
	full, err := ls.fullPath(storagePath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("%w: failed to create upload directory: %v", ErrStorage, err)
	}

	// write to a temp file and rename so readers never see a partial object
	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return fmt.Errorf("%w: failed to create destination file: %v", ErrStorage, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := io.Copy(tmp, src); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: failed to save file: %v", ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: failed to save file: %v", ErrStorage, err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		return fmt.Errorf("%w: failed to save file: %v", ErrStorage, err)
	}
	log.Debug().Str("path", full).Msg("stored upload locally")
	return nil
}

func (ls *LocalStorage) DeleteFile(_ context.Context, storagePath string) error {
	full, err := ls.fullPath(storagePath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: failed to delete file: %v", ErrStorage, err)
	}
	return nil
}

func (ls *LocalStorage) PublicURL(storagePath string) string {
	return ls.baseURL + "/" + escapePath(storagePath)
}

func (ss *SpacesStorage) key(storagePath string) (string, error) {
	p, err := cleanPath(storagePath)
	if err != nil {
		return "", err
	}
	return ss.prefix + "/" + p, nil
}

func (ss *SpacesStorage) SaveFile(ctx context.Context, src io.Reader, storagePath, contentType string) error {
	key, err := ss.key(storagePath)
	if err != nil {
		return err
	}
	body, ok := src.(io.ReadSeeker)
	if !ok {
		// the S3 client needs to seek for signing and retries
		buf, err := os.CreateTemp("", "upload-*")
		if err != nil {
			return fmt.Errorf("%w: %v", ErrStorage, err)
		}
		defer func() {
			_ = buf.Close()
			_ = os.Remove(buf.Name())
		}()
		if _, err := io.Copy(buf, src); err != nil {
			return fmt.Errorf("%w: %v", ErrStorage, err)
		}
		if _, err := buf.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("%w: %v", ErrStorage, err)
		}
		body = buf
	}

	_, err = ss.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(ss.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
		ACL:         aws.String("public-read"),
	})
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to upload file to Spaces")
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}

func (ss *SpacesStorage) DeleteFile(ctx context.Context, storagePath string) error {
	key, err := ss.key(storagePath)
	if err != nil {
		return err
	}
	_, err = ss.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(ss.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to delete file from Spaces")
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}

func (ss *SpacesStorage) PublicURL(storagePath string) string {
	return fmt.Sprintf("%s/%s/%s", ss.cdnURL, ss.prefix, escapePath(storagePath))
}

func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
