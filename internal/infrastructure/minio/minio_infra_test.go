package minio

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/marble-shop/go-backend/internal/cfg"
	"github.com/marble-shop/go-backend/internal/domain"
	"github.com/marble-shop/go-backend/internal/usecase"
	"github.com/marble-shop/go-backend/pkg/e"
	"github.com/marble-shop/go-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeImageRepo struct {
	mu         sync.Mutex
	objects    map[string]*domain.Image
	deleted    []string
	failUpload func(img *domain.Image) error
	deleteErrs int
}

func newFakeImageRepo() *fakeImageRepo {
	return &fakeImageRepo{objects: map[string]*domain.Image{}}
}

func (f *fakeImageRepo) Upload(ctx context.Context, img *domain.Image) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpload != nil {
		if err := f.failUpload(img); err != nil {
			return "", err
		}
	}
	f.objects[img.ObjectKey] = img
	return img.ObjectKey, nil
}

func (f *fakeImageRepo) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErrs > 0 {
		f.deleteErrs--
		return errors.New("temporary failure")
	}
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeImageRepo) deletedKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

func minioCfg() *cfg.MinIOCfg {
	return &cfg.MinIOCfg{BucketName: "product-images", PublicBaseURL: "http://cdn.local/product-images/", UploadImagesLimit: 2}
}

func images(mimes ...string) []usecase.ProductImage {
	out := make([]usecase.ProductImage, len(mimes))
	for i, m := range mimes {
		out[i] = usecase.ProductImage{Data: []byte("img"), MimeType: m, Size: 3, Name: "file"}
	}
	return out
}

func TestUploadImages_PreservesOrderAndBuildsURLs(t *testing.T) {
	repo := newFakeImageRepo()
	infra := NewMinioInfrastructure(repo, minioCfg(), logger.NewNop(), context.Background())

	res, err := infra.UploadImages(context.Background(), usecase.NewUploadImagesReq("Nero Marquina", images("image/png", "image/jpeg", "image/webp")))
	require.NoError(t, err)
	require.Len(t, res.Images, 3)

	for i, ext := range []string{".png", ".jpg", ".webp"} {
		ref := res.Images[i]
		assert.True(t, strings.HasPrefix(ref.Key, "nero-marquina/"), ref.Key)
		assert.True(t, strings.HasSuffix(ref.Key, ext), ref.Key)
		assert.Equal(t, "http://cdn.local/product-images/"+ref.Key, ref.URL)
		assert.Equal(t, "product-images", repo.objects[ref.Key].Bucket)
	}
}

func TestUploadImages_UnsupportedMimeCleansUp(t *testing.T) {
	repo := newFakeImageRepo()
	infra := NewMinioInfrastructure(repo, minioCfg(), logger.NewNop(), context.Background())

	_, err := infra.UploadImages(context.Background(), usecase.NewUploadImagesReq("slab", images("image/png", "application/pdf")))
	require.ErrorIs(t, err, e.ErrUnsupportedMediaType)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, infra.WaitForCleanup(ctx))

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Empty(t, repo.objects)
}

func TestCleanupImages_RetriesWithBackoff(t *testing.T) {
	repo := newFakeImageRepo()
	repo.deleteErrs = 2
	infra := NewMinioInfrastructure(repo, minioCfg(), logger.NewNop(), context.Background())
	infra.cleanupBackoff = time.Millisecond

	infra.CleanupImages([]string{"a/1.png"})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, infra.WaitForCleanup(ctx))
	assert.Equal(t, []string{"a/1.png"}, repo.deletedKeys())
}

func TestCleanupImages_StopsOnShutdown(t *testing.T) {
	repo := newFakeImageRepo()
	repo.deleteErrs = 100
	shutdownCtx, shutdown := context.WithCancel(context.Background())
	infra := NewMinioInfrastructure(repo, minioCfg(), logger.NewNop(), shutdownCtx)
	infra.cleanupBackoff = time.Hour

	infra.CleanupImages([]string{"a/1.png"})
	shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, infra.WaitForCleanup(ctx))
	assert.Empty(t, repo.deletedKeys())
}
