package ignore

import (
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// FileName 放在导入根目录下，语法同 .gitignore
const FileName = ".mercariignore"

// catalogRules 是 `mercari import` 永远跳过的路径
// 导入根目录常常就是工作目录，里面混着商品库自己的数据
var catalogRules = []string{
	// 商品库自身：配置、数据库、图片库
	".mercari",
	"/images",
	"*.sqlite3",
	"*.db",
	"items.json",
	"*.bolt",
	"*.pebble",
	"default.jpg", // 占位图，不是商品
	FileName,

	// 凭证，config.yaml 里可能有 S3 key
	"config.yaml",
	".env",

	// 相机/系统生成的缩略图与元数据
	".git",
	".DS_Store",
	"Thumbs.db",
	"._*",
}

// Matcher 判断导入遍历到的分类目录或商品图片是否要跳过
type Matcher struct {
	ignorer *gitignore.GitIgnore
}

// NewMatcher 编译 catalogRules、extra 以及 root 下的 .mercariignore
// extra 是相对 root 的路径，import 用它排除落在 root 里的图片库
func NewMatcher(root string, extra ...string) (*Matcher, error) {
	rules := make([]string, 0, len(catalogRules)+len(extra))
	rules = append(rules, catalogRules...)
	for _, p := range extra {
		p = filepath.ToSlash(filepath.Clean(p))
		if p == "." || p == "" || strings.HasPrefix(p, "../") || p == ".." {
			continue
		}
		// 锚定到根目录，避免误伤同名分类
		rules = append(rules, "/"+p)
	}

	userFile := filepath.Join(root, FileName)
	if _, err := os.Stat(userFile); err != nil {
		return &Matcher{ignorer: gitignore.CompileIgnoreLines(rules...)}, nil
	}
	ignorer, err := gitignore.CompileIgnoreFileAndLines(userFile, rules...)
	if err != nil {
		return nil, err
	}
	return &Matcher{ignorer: ignorer}, nil
}

// Matches 的 path 相对导入根目录，如 "toys/bear.jpg"；目录可以带尾部斜杠
func (m *Matcher) Matches(path string) bool {
	if m.ignorer == nil {
		return false
	}
	return m.ignorer.MatchesPath(strings.TrimSuffix(filepath.ToSlash(path), "/"))
}
