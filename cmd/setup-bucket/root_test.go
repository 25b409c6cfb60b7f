package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajcreationz/livesite/internal/infrastructure/storage"
)

type fakeAdmin struct {
	buckets   []storage.BucketInfo
	listErr   error
	createErr error
	created   bool
	public    bool
	limit     int64
}

func (f *fakeAdmin) ListBuckets(context.Context) ([]storage.BucketInfo, error) {
	return f.buckets, f.listErr
}

func (f *fakeAdmin) CreateBucket(_ context.Context, public bool, limit int64) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created, f.public, f.limit = true, public, limit
	return nil
}

func (f *fakeAdmin) Name() string { return bucketName }

func TestSetupBucket_CreatesPublicBucket(t *testing.T) {
	admin := &fakeAdmin{}
	var out bytes.Buffer

	require.NoError(t, setupBucket(context.Background(), admin, &out))
	assert.True(t, admin.created)
	assert.True(t, admin.public)
	assert.Equal(t, int64(52428800), admin.limit)
	assert.Contains(t, out.String(), "50 MB")
}

func TestSetupBucket_ExistingPrivateBucketPrintsSteps(t *testing.T) {
	admin := &fakeAdmin{buckets: []storage.BucketInfo{{Name: "images", Public: false}}}
	var out bytes.Buffer

	require.NoError(t, setupBucket(context.Background(), admin, &out))
	assert.False(t, admin.created)
	assert.Contains(t, out.String(), "not public")
	assert.Contains(t, out.String(), "Toggle \"Public bucket\" to ON")
}

func TestSetupBucket_ExistingPublicBucketIsNoop(t *testing.T) {
	admin := &fakeAdmin{buckets: []storage.BucketInfo{{Name: "other"}, {Name: "images", Public: true}}}
	var out bytes.Buffer

	require.NoError(t, setupBucket(context.Background(), admin, &out))
	assert.False(t, admin.created)
	assert.NotContains(t, out.String(), "not public")
}

func TestSetupBucket_ListFailureExplains(t *testing.T) {
	admin := &fakeAdmin{listErr: &storage.APIError{Status: 401, Message: "invalid JWT"}}

	err := setupBucket(context.Background(), admin, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service_role key")
	var apiErr *storage.APIError
	assert.True(t, errors.As(err, &apiErr))
}

func TestSetupBucket_CreateRaceAlreadyExists(t *testing.T) {
	admin := &fakeAdmin{createErr: errors.New("The resource already exists")}
	require.NoError(t, setupBucket(context.Background(), admin, &bytes.Buffer{}))
}

func TestRootCommand_RejectsPlaceholderKey(t *testing.T) {
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_SERVICE_KEY", "")

	cmd := newRootCommand(&bytes.Buffer{})
	cmd.SetArgs([]string{"--url", "https://project.supabase.co", "--service-key", placeholderKey})
	err := cmd.Execute()
	assert.ErrorIs(t, err, errMissingKey)

	cmd = newRootCommand(&bytes.Buffer{})
	cmd.SetArgs([]string{"--url", "https://project.supabase.co"})
	assert.ErrorIs(t, cmd.Execute(), errMissingKey)

	cmd = newRootCommand(&bytes.Buffer{})
	cmd.SetArgs([]string{"--service-key", "real"})
	assert.Error(t, cmd.Execute())
}
