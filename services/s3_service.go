package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gosimple/slug"
)

const (
	referenceScheme = "s3://"
	uploadURLTTL    = 5 * time.Minute
)

var ErrInvalidReference = errors.New("invalid storage reference")

// PresignAPI is the part of *s3.PresignClient the storage service uses.
type PresignAPI interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Service turns stored avatar references into time-limited URLs and
// issues upload URLs for new avatars.
type S3Service struct {
	Presigner PresignAPI
	Bucket    string
	ReadTTL   time.Duration
	now       func() time.Time
}

func NewS3Service(client *s3.Client, bucket string, readTTL time.Duration) *S3Service {
	return &S3Service{
		Presigner: s3.NewPresignClient(client),
		Bucket:    bucket,
		ReadTTL:   readTTL,
	}
}

func (s *S3Service) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

// URLFromPath presigns a GET for a path inside the configured bucket.
func (s *S3Service) URLFromPath(ctx context.Context, objectPath string) (string, error) {
	key := strings.TrimPrefix(objectPath, "/")
	if key == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidReference)
	}
	return s.presignGet(ctx, s.Bucket, key)
}

// URLFromReference presigns a GET for a full s3://bucket/key reference.
func (s *S3Service) URLFromReference(ctx context.Context, ref string) (string, error) {
	bucket, key, err := ParseReference(ref)
	if err != nil {
		return "", err
	}
	return s.presignGet(ctx, bucket, key)
}

// ParseReference splits s3://bucket/key into its bucket and key.
func ParseReference(ref string) (string, string, error) {
	if !strings.HasPrefix(ref, referenceScheme) {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidReference, ref)
	}
	bucket, key, ok := strings.Cut(strings.TrimPrefix(ref, referenceScheme), "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidReference, ref)
	}
	return bucket, key, nil
}

func (s *S3Service) presignGet(ctx context.Context, bucket, key string) (string, error) {
	ttl := s.ReadTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	req, err := s.Presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("failed to presign %s/%s: %w", bucket, key, err)
	}
	return req.URL, nil
}

// Upload is a presigned avatar upload.
type Upload struct {
	URL         string `json:"uploadUrl"`
	Key         string `json:"key"`
	Reference   string `json:"reference"`
	ContentType string `json:"contentType"`
}

// UploadURL presigns a PUT for avatars/{uid}/profile-{timestamp}-{name}.{ext}.
// The returned reference is what gets stored on the user profile.
func (s *S3Service) UploadURL(ctx context.Context, uid, fileName, contentType string) (*Upload, error) {
	if uid == "" {
		return nil, fmt.Errorf("%w: missing user", ErrInvalidReference)
	}

	ext := strings.ToLower(strings.TrimPrefix(path.Ext(fileName), "."))
	if ext == "" || len(ext) > 5 {
		ext = "jpg"
	}
	base := slug.Make(strings.TrimSuffix(path.Base(fileName), path.Ext(fileName)))
	if base == "" || base == "." {
		base = "avatar"
	}
	if contentType == "" {
		contentType = ContentTypeFor(ext)
	}

	key := fmt.Sprintf("avatars/%s/profile-%d-%s.%s", uid, s.clock().UnixMilli(), base, ext)
	req, err := s.Presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(uploadURLTTL))
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload: %w", err)
	}

	return &Upload{
		URL:         req.URL,
		Key:         key,
		Reference:   referenceScheme + s.Bucket + "/" + key,
		ContentType: contentType,
	}, nil
}

// ContentTypeFor maps an image extension to its MIME type; unknown
// extensions are treated as JPEG.
func ContentTypeFor(ext string) string {
	switch strings.ToLower(ext) {
	case "png":
		return "image/png"
	case "webp":
		return "image/webp"
	case "heic", "heif":
		return "image/heic"
	default:
		return "image/jpeg"
	}
}
