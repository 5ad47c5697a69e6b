package s3

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/seqdist/blobstore"
	"github.com/hupe1980/seqdist/export"
	"github.com/hupe1980/seqdist/matrix"
)

type triangle struct {
	n    int
	vals []float64
}

func (t *triangle) N() int              { return t.n }
func (t *triangle) Triangle() []float64 { return t.vals }

func TestIntegration_PublishArchive(t *testing.T) {
	bucket := os.Getenv("SEQDIST_S3_BUCKET")
	if bucket == "" {
		t.Skip("SEQDIST_S3_BUCKET not set")
	}

	ctx := context.Background()
	cfg, err := config.LoadDefaultConfig(ctx)
	require.NoError(t, err)

	prefix := fmt.Sprintf("seqdist-test-%d", time.Now().UnixNano())
	store := NewStore(s3.NewFromConfig(cfg), bucket, prefix,
		WithUploadConfig(UploadConfig{PartSize: 5 * 1024 * 1024, Concurrency: 2, EnableChecksum: true}))

	// 1200 sequences give an archive larger than one upload part.
	n := 1200
	src := &triangle{n: n, vals: make([]float64, matrix.VecSize(n))}
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		ids[i] = fmt.Sprintf("seq%04d", i)
		for j := i + 1; j < n; j++ {
			src.vals[matrix.Index(n, i, j)] = float64(i*j%97) + 0.5
		}
	}

	const name = "run.sqdm"
	hdr, err := export.Publish(ctx, store, name, src, ids, "edit distance",
		export.WithCompression(export.CompressionNone))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Delete(ctx, name) })

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, names, name)

	a, err := export.Fetch(ctx, store, name)
	require.NoError(t, err)
	assert.Equal(t, *hdr, a.Header)
	assert.Equal(t, ids, a.Header.IDs)

	v, err := a.Get(10, 500)
	require.NoError(t, err)
	assert.Equal(t, src.vals[matrix.Index(n, 10, 500)], v)

	require.NoError(t, store.Delete(ctx, name))
	_, err = store.Open(ctx, name)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
