package artifact

import (
	"context"
	"errors"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyBuckets fails the first n BucketExists calls, then reports the
// bucket as missing until MakeBucket runs.
type flakyBuckets struct {
	failures    int
	exists      bool
	existsCalls int
	makeCalls   int
}

func (f *flakyBuckets) BucketExists(_ context.Context, _ string) (bool, error) {
	f.existsCalls++
	if f.existsCalls <= f.failures {
		return false, errors.New("connection reset")
	}
	return f.exists, nil
}

func (f *flakyBuckets) MakeBucket(_ context.Context, _ string, _ minio.MakeBucketOptions) error {
	f.makeCalls++
	f.exists = true
	return nil
}

func TestEnsureBucketRetriesAfterTransientFailure(t *testing.T) {
	buckets := &flakyBuckets{failures: 1}
	s := &S3Store{buckets: buckets, bucketName: "artifacts", region: "us-east-1"}

	require.Error(t, s.ensureBucket(context.Background()))
	// The first failure must not stick.
	require.NoError(t, s.ensureBucket(context.Background()))
	assert.Equal(t, 2, buckets.existsCalls)
	assert.Equal(t, 1, buckets.makeCalls)
}

func TestEnsureBucketInitializesOnce(t *testing.T) {
	buckets := &flakyBuckets{exists: true}
	s := &S3Store{buckets: buckets, bucketName: "artifacts", region: "us-east-1"}

	require.NoError(t, s.ensureBucket(context.Background()))
	require.NoError(t, s.ensureBucket(context.Background()))
	assert.Equal(t, 1, buckets.existsCalls)
	assert.Zero(t, buckets.makeCalls)
}

func TestObjectKeyValidation(t *testing.T) {
	key, err := objectKey("run1", "README.md")
	require.NoError(t, err)
	assert.Equal(t, "run1/README.md", key)

	for _, name := range []string{"", "a/b", "../escape"} {
		_, err := objectKey("run1", name)
		assert.Error(t, err)
	}
	_, err = objectKey("", "README.md")
	assert.Error(t, err)
}
