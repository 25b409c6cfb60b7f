// Package storage implements object storage buckets for uploaded images.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SupabaseBucket talks to a Supabase-compatible Storage REST API.
type SupabaseBucket struct {
	baseURL string
	apiKey  string
	bucket  string
	client  *http.Client
}

// NewSupabaseBucket returns a client for bucket at baseURL (the project URL).
func NewSupabaseBucket(baseURL, apiKey, bucket string) *SupabaseBucket {
	return &SupabaseBucket{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		bucket:  bucket,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// APIError is a non-2xx response from the storage API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("storage API error (%d): %s", e.Status, e.Message)
}

func (s *SupabaseBucket) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("apikey", s.apiKey)
	return req, nil
}

func (s *SupabaseBucket) do(req *http.Request, out any) error {
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("storage request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read storage response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Message: apiMessage(body)}
	}
	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to decode storage response: %w", err)
		}
	}
	return nil
}

// apiMessage pulls the human-readable error out of a storage error body.
func apiMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return strings.TrimSpace(string(body))
}

func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

// Upload stores data at objectPath, overwriting any existing object.
func (s *SupabaseBucket) Upload(ctx context.Context, objectPath string, data []byte, contentType string) (string, error) {
	req, err := s.newRequest(ctx, http.MethodPost,
		fmt.Sprintf("/storage/v1/object/%s/%s", s.bucket, escapePath(objectPath)), bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")
	req.Header.Set("cache-control", "max-age=3600")

	if err := s.do(req, nil); err != nil {
		return "", err
	}
	return s.PublicURL(objectPath), nil
}

// Remove deletes the object at objectPath.
func (s *SupabaseBucket) Remove(ctx context.Context, objectPath string) error {
	payload, err := json.Marshal(map[string][]string{"prefixes": {objectPath}})
	if err != nil {
		return err
	}
	req, err := s.newRequest(ctx, http.MethodDelete, "/storage/v1/object/"+s.bucket, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return s.do(req, nil)
}

// PublicURL is the anonymous download URL of objectPath.
func (s *SupabaseBucket) PublicURL(objectPath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, escapePath(objectPath))
}

// BucketInfo is one entry of the bucket listing.
type BucketInfo struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Public        bool   `json:"public"`
	FileSizeLimit *int64 `json:"file_size_limit,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
}

// ListBuckets returns every bucket visible to the key.
func (s *SupabaseBucket) ListBuckets(ctx context.Context) ([]BucketInfo, error) {
	req, err := s.newRequest(ctx, http.MethodGet, "/storage/v1/bucket", nil)
	if err != nil {
		return nil, err
	}
	var buckets []BucketInfo
	if err := s.do(req, &buckets); err != nil {
		return nil, err
	}
	return buckets, nil
}

// CreateBucket creates the configured bucket.
func (s *SupabaseBucket) CreateBucket(ctx context.Context, public bool, sizeLimit int64) error {
	payload, err := json.Marshal(map[string]any{
		"id":              s.bucket,
		"name":            s.bucket,
		"public":          public,
		"file_size_limit": sizeLimit,
	})
	if err != nil {
		return err
	}
	req, err := s.newRequest(ctx, http.MethodPost, "/storage/v1/bucket", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return s.do(req, nil)
}

// Name returns the bucket id.
func (s *SupabaseBucket) Name() string { return s.bucket }
