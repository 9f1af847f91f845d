package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var ErrUnsupportedImageType = errors.New("unsupported image type")

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// ImageUploader stores a dessert image and returns its public URL.
type ImageUploader interface {
	UploadDessertImage(ctx context.Context, dessertID, filename, contentType string, body io.Reader) (string, error)
}

type uploadAPI interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

type S3Uploader struct {
	uploader uploadAPI
	bucket   string
	now      func() time.Time
}

// NewS3Uploader loads the default AWS config chain (env, shared config, IMDS).
func NewS3Uploader(ctx context.Context, bucket string) (*S3Uploader, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %w", err)
	}
	return &S3Uploader{
		uploader: manager.NewUploader(s3.NewFromConfig(cfg)),
		bucket:   bucket,
		now:      time.Now,
	}, nil
}

func (u *S3Uploader) UploadDessertImage(ctx context.Context, dessertID, filename, contentType string, body io.Reader) (string, error) {
	ext, ok := allowedImageTypes[strings.ToLower(contentType)]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedImageType, contentType)
	}

	result, err := u.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(ObjectKey(dessertID, filename, ext, u.now())),
		Body:        body,
		ACL:         "public-read",
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", filename, err)
	}
	return result.Location, nil
}

// ObjectKey builds a collision-free key such as
// "desserts/<id>/20260102150405-basundi.png".
func ObjectKey(dessertID, filename, ext string, at time.Time) string {
	base := strings.TrimSuffix(path.Base(filename), path.Ext(filename))
	base = strings.ToLower(strings.Join(strings.Fields(base), "-"))
	if base == "" || base == "." || base == "/" {
		base = "image"
	}
	return fmt.Sprintf("desserts/%s/%s-%s%s", dessertID, at.UTC().Format("20060102150405"), base, ext)
}
