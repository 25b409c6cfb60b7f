package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	domain "github.com/rajcreationz/livesite/internal/domain/entities/media"
	"github.com/rajcreationz/livesite/internal/domain/errs"
	"github.com/rajcreationz/livesite/internal/domain/repositories"
	imageproc "github.com/rajcreationz/livesite/internal/infrastructure/media"
	"github.com/rajcreationz/livesite/internal/infrastructure/observability/logging"
	"github.com/rajcreationz/livesite/internal/infrastructure/observability/metrics"
)

// UploaderConfig tunes validation and retries.
type UploaderConfig struct {
	BucketName  string
	MaxBytes    int64
	MaxAttempts int
	RetryDelay  time.Duration
	// Variants enables the WebP renditions written under <folder>/thumbs/.
	Variants bool
}

// Uploader validates images and pushes them into a bucket with retries.
type Uploader struct {
	bucket repositories.Bucket
	config UploaderConfig
	logger *logging.ChanneledLogger
	sleep  func(ctx context.Context, d time.Duration) error
}

// UploadResult is the stored object and any generated variants.
type UploadResult struct {
	Path     string            `json:"path"`
	URL      string            `json:"url"`
	Variants map[string]string `json:"variants,omitempty"`
}

func NewUploader(bucket repositories.Bucket, config UploaderConfig, logger *logging.ChanneledLogger) *Uploader {
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	if config.BucketName == "" {
		config.BucketName = "images"
	}
	return &Uploader{bucket: bucket, config: config, logger: logger, sleep: sleepContext}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Validate rejects empty and oversized payloads.
func (u *Uploader) Validate(upload domain.Upload) error {
	if len(upload.Data) == 0 {
		return errs.Invalid("file", "File is empty or invalid")
	}
	if u.config.MaxBytes > 0 && int64(len(upload.Data)) > u.config.MaxBytes {
		return errs.Invalid("file", fmt.Sprintf("File size exceeds %dMB limit", u.config.MaxBytes/(1024*1024)))
	}
	if strings.TrimSpace(upload.FileName) == "" {
		return errs.Invalid("fileName", "is required")
	}
	return nil
}

// Upload stores upload at folder/FileName. Transient failures are retried with
// a linearly growing delay; configuration failures stop immediately.
func (u *Uploader) Upload(ctx context.Context, upload domain.Upload, folder string) (*UploadResult, error) {
	if err := u.Validate(upload); err != nil {
		return nil, err
	}
	imageproc.SniffContentType(&upload)
	if upload.ContentType == "" {
		upload.ContentType = "image/jpeg"
	}

	marker := metrics.StartOperation("upload")
	defer marker.Complete()

	objectPath := path.Join(folder, path.Base(upload.FileName))
	url, err := u.put(ctx, objectPath, upload.Data, upload.ContentType, folder)
	if err != nil {
		marker.SetError(err)
		return nil, err
	}

	result := &UploadResult{Path: objectPath, URL: url}
	if u.config.Variants && imageproc.IsRaster(upload) {
		result.Variants = u.uploadVariants(ctx, upload, folder)
	}
	return result, nil
}

func (u *Uploader) put(ctx context.Context, objectPath string, data []byte, contentType, folder string) (string, error) {
	log := u.logger.Storage()
	var lastErr error

	for attempt := 1; attempt <= u.config.MaxAttempts; attempt++ {
		log.Debug("Upload attempt", "path", objectPath, "attempt", attempt, "maxAttempts", u.config.MaxAttempts, "size", len(data))

		url, err := u.bucket.Upload(ctx, objectPath, data, contentType)
		if err == nil {
			metrics.UploadAttemptsTotal.WithLabelValues(folder, "success").Inc()
			log.Info("File uploaded", "path", objectPath, "url", url, "attempt", attempt)
			return url, nil
		}

		lastErr = err
		metrics.UploadAttemptsTotal.WithLabelValues(folder, "error").Inc()
		log.Warn("Upload attempt failed", "path", objectPath, "attempt", attempt, "error", err)

		if !retryable(err) {
			break
		}
		if attempt < u.config.MaxAttempts {
			if err := u.sleep(ctx, time.Duration(attempt)*u.config.RetryDelay); err != nil {
				return "", errs.Remote("upload", err)
			}
		}
	}

	return "", u.classify(lastErr)
}

// retryable reports whether another attempt could succeed.
func retryable(err error) bool {
	msg := err.Error()
	for _, marker := range []string{"Bucket not found", "permission", "policy", "already exists"} {
		if strings.Contains(msg, marker) {
			return false
		}
	}
	return true
}

// classify turns known storage failures into instructive configuration errors.
func (u *Uploader) classify(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "Bucket not found"):
		return &errs.ConfigurationError{
			Problem: fmt.Sprintf("Storage bucket %q not found", u.config.BucketName),
			Hint:    fmt.Sprintf("Create it in the storage dashboard (name: %q, make it PUBLIC) or run setup-bucket", u.config.BucketName),
			Err:     err,
		}
	case strings.Contains(msg, "permission"), strings.Contains(msg, "policy"):
		return &errs.ConfigurationError{
			Problem: "Storage permission denied",
			Hint:    "Set up storage policies that allow uploads to the bucket",
			Err:     err,
		}
	}
	return errs.Remote("upload", err)
}

// uploadVariants stores the WebP renditions. Failures are logged and skipped.
func (u *Uploader) uploadVariants(ctx context.Context, upload domain.Upload, folder string) map[string]string {
	log := u.logger.Media()
	variants, err := imageproc.GenerateWebPVariants(upload.Data, upload.FileName)
	if err != nil {
		log.Warn("Skipping WebP variants", "file", upload.FileName, "error", err)
		return nil
	}

	out := make(map[string]string, len(variants))
	for _, v := range variants {
		objectPath := path.Join(folder, "thumbs", v.FileName)
		url, err := u.bucket.Upload(ctx, objectPath, v.Data, "image/webp")
		if err != nil {
			log.Warn("Failed to upload WebP variant", "path", objectPath, "error", err)
			continue
		}
		out[fmt.Sprintf("%dpx", v.Width)] = url
	}
	return out
}

// Remove deletes an object; failures are reported but never retried.
func (u *Uploader) Remove(ctx context.Context, objectPath string) error {
	if err := u.bucket.Remove(ctx, objectPath); err != nil {
		return errs.Remote("remove", err)
	}
	return nil
}
