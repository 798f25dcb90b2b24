package ignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcher_CatalogDefaults(t *testing.T) {
	// 没有 .mercariignore 的导入根目录
	matcher, err := NewMatcher(t.TempDir())
	require.NoError(t, err)

	tests := []struct {
		path string
		skip bool
	}{
		// 商品库自身
		{".mercari", true},
		{".mercari/db/mercari.sqlite3", true},
		{"images", true},
		{"images/1.jpg", true},
		{"images/", true},
		{"mercari.sqlite3", true},
		{"items.json", true},
		{"images.bolt", true},
		{"images.pebble/000001.sst", true},
		{"default.jpg", true},
		{"toys/default.jpg", true},
		{FileName, true},

		// 凭证
		{"config.yaml", true},
		{".env", true},

		// 系统垃圾
		{"toys/.DS_Store", true},
		{"toys/Thumbs.db", true},
		{"toys/._bear.jpg", true},

		// 正常的 分类/商品 图片
		{"toys", false},
		{"toys/images/bear.jpg", false}, // 只排除根目录下的图片库
		{"toys/bear.jpg", false},
		{"books/novel.jpeg", false},
		{"fashion/jacket.jpg", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.skip, matcher.Matches(tt.path), "Path: %s", tt.path)
		})
	}
}

func TestMatcher_UserRules(t *testing.T) {
	root := t.TempDir()

	// 卖家自己的规则：不上架草稿和非 jpg，但保留一张 png 占位
	content := `
# 还没拍好的
drafts
*.png
*.heic
!fashion/keep.png
`
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte(content), 0644))

	matcher, err := NewMatcher(root)
	require.NoError(t, err)

	tests := []struct {
		path string
		skip bool
	}{
		// 内置规则照样生效
		{".mercari", true},
		{"images/1.jpg", true},

		{"drafts", true},
		{"drafts/bear.jpg", true},
		{"toys/drafts/robot.jpg", true},
		{"toys/bear.png", true},
		{"fashion/IMG_0001.heic", true},
		{"fashion/keep.png", false},

		{"toys/bear.jpg", false},
		{"vehicles/bike.jpg", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.skip, matcher.Matches(tt.path), "Path: %s", tt.path)
		})
	}
}

func TestMatcher_ExtraImageDir(t *testing.T) {
	matcher, err := NewMatcher(t.TempDir(), "shop/photos", "../elsewhere", ".")
	require.NoError(t, err)

	assert.True(t, matcher.Matches("shop/photos"))
	assert.True(t, matcher.Matches("shop/photos/3.jpg"))
	// 锚定在根目录，别的分类下同名目录不受影响
	assert.False(t, matcher.Matches("toys/shop/photos/bear.jpg"))
	// 根目录之外和根目录本身不会变成规则
	assert.False(t, matcher.Matches("toys/bear.jpg"))
}
