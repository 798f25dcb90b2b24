package service

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"simplemercari/pkg/catalog"
	"simplemercari/pkg/imagestore"
	"simplemercari/pkg/storage/disk"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readBlob(t *testing.T, b *imagestore.Blob) []byte {
	t.Helper()
	defer b.Close()
	data, err := io.ReadAll(b)
	require.NoError(t, err)
	return data
}

func TestSubmit_HashNaming(t *testing.T) {
	ctx := context.Background()
	svc := NewCatalogService(setupTestApp(t, imagestore.NamingHash, nil))

	img := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00}
	item, err := svc.Submit(ctx, Submission{Name: "bike", Category: "Vehicles", ImageFilename: "photo.JPEG", Image: img})
	require.NoError(t, err)

	assert.Equal(t, "bike", item.Name)
	assert.Equal(t, "vehicles", item.Category)
	assert.Equal(t, imagestore.NameForContent(img, ".jpg"), item.ImageFilename)

	blob, err := svc.Image(ctx, item.ImageFilename)
	require.NoError(t, err)
	assert.False(t, blob.Fallback)
	assert.Equal(t, img, readBlob(t, blob))

	// 相同图片复用同一个文件名
	second, err := svc.Submit(ctx, Submission{Name: "bike 2", Category: "vehicles", ImageFilename: "b.jpg", Image: img})
	require.NoError(t, err)
	assert.Equal(t, item.ImageFilename, second.ImageFilename)
	assert.NotEqual(t, item.ID, second.ID)

	cats, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 1)
}

func TestSubmit_IDNaming(t *testing.T) {
	ctx := context.Background()
	svc := NewCatalogService(setupTestApp(t, imagestore.NamingID, nil))

	img := []byte("jpeg-bytes")
	item, err := svc.Submit(ctx, Submission{Name: "lamp", Category: "home", ImageFilename: "lamp.jpg", Image: img})
	require.NoError(t, err)
	assert.Equal(t, item.ID.String()+".jpg", item.ImageFilename)

	blob, err := svc.Image(ctx, item.ImageFilename)
	require.NoError(t, err)
	assert.False(t, blob.Fallback)
	assert.Equal(t, img, readBlob(t, blob))

	latest, err := svc.LatestID(ctx)
	require.NoError(t, err)
	assert.Equal(t, item.ID, latest)
}

func TestSubmit_IDNaming_WriteFailureLeavesNoItem(t *testing.T) {
	ctx := context.Background()
	store, err := disk.NewAdapter(filepath.Join(t.TempDir(), "images"))
	require.NoError(t, err)
	svc := NewCatalogService(setupTestApp(t, imagestore.NamingID, &failingStore{Store: store}))

	_, err = svc.Submit(ctx, Submission{Name: "lamp", Category: "home", ImageFilename: "lamp.jpg", Image: []byte("x")})
	assert.ErrorIs(t, err, errDiskFull)

	items, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSubmit_HashNaming_WriteFailureIsReturned(t *testing.T) {
	ctx := context.Background()
	store, err := disk.NewAdapter(filepath.Join(t.TempDir(), "images"))
	require.NoError(t, err)
	svc := NewCatalogService(setupTestApp(t, imagestore.NamingHash, &failingStore{Store: store}))

	_, err = svc.Submit(ctx, Submission{Name: "lamp", Category: "home", ImageFilename: "lamp.jpg", Image: []byte("x")})
	assert.ErrorIs(t, err, errDiskFull)

	items, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSubmit_Validation(t *testing.T) {
	ctx := context.Background()
	svc := NewCatalogService(setupTestApp(t, imagestore.NamingHash, nil))

	tests := []struct {
		name    string
		sub     Submission
		wantErr error
	}{
		{"png rejected", Submission{Name: "a", Category: "b", ImageFilename: "a.png", Image: []byte("x")}, imagestore.ErrUnsupportedImage},
		{"no extension", Submission{Name: "a", Category: "b", ImageFilename: "a", Image: []byte("x")}, imagestore.ErrUnsupportedImage},
		{"empty image", Submission{Name: "a", Category: "b", ImageFilename: "a.jpg"}, catalog.ErrInvalidItem},
		{"empty name", Submission{Category: "b", ImageFilename: "a.jpg", Image: []byte("x")}, catalog.ErrInvalidItem},
		{"blank category", Submission{Name: "a", Category: "  ", ImageFilename: "a.jpg", Image: []byte("x")}, catalog.ErrInvalidItem},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(ctx, tt.sub)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	items, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestReads(t *testing.T) {
	ctx := context.Background()
	svc := NewCatalogService(setupTestApp(t, imagestore.NamingHash, nil))

	for _, name := range []string{"Red Shirt", "blue shirt", "jeans"} {
		_, err := svc.Submit(ctx, Submission{Name: name, Category: "fashion", ImageFilename: "x.jpg", Image: []byte(name)})
		require.NoError(t, err)
	}

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	found, err := svc.Search(ctx, "SHIRT")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	got, err := svc.Get(ctx, all[2].ID)
	require.NoError(t, err)
	assert.Equal(t, "jeans", got.Name)

	_, err = svc.Get(ctx, 999)
	assert.ErrorIs(t, err, catalog.ErrItemNotFound)

	// 缺失的图片退回默认图
	blob, err := svc.Image(ctx, "nothing.jpg")
	require.NoError(t, err)
	assert.True(t, blob.Fallback)
	blob.Close()

	_, err = svc.Image(ctx, "nothing.png")
	assert.ErrorIs(t, err, imagestore.ErrInvalidExtension)
}
