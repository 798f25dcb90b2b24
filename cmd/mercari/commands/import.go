package commands

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"simplemercari/pkg/ignore"
	"simplemercari/pkg/imagestore"
	"simplemercari/pkg/service"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var importJobs int

var importCmd = &cobra.Command{
	Use:   "import [dir]",
	Short: "Bulk import images laid out as <dir>/<category>/<name>.jpg",
	Long: `Walk a directory tree and add one item per .jpg/.jpeg file.
The parent directory name becomes the category and the file name (without extension) the item name.
Paths matched by .mercariignore in the import root are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Svc == nil {
			return fmt.Errorf("app not initialized")
		}
		if importJobs < 1 {
			return fmt.Errorf("--jobs must be at least 1, got %d", importJobs)
		}
		root := args[0]
		out := cmd.OutOrStdout()
		start := time.Now()

		matcher, err := ignore.NewMatcher(root, libraryPaths(root)...)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", ignore.FileName, err)
		}

		// 1. 收集待导入文件
		var files []string
		walkFn := func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			if rel == "." {
				return nil
			}
			if matcher.Matches(rel) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if _, err := imagestore.UploadExt(path); err != nil {
				return nil
			}
			// 顶层文件没有分类
			if filepath.Dir(rel) == "." {
				fmt.Fprintf(out, "⚠️  Skipped %s (no category directory)\n", rel)
				return nil
			}
			files = append(files, path)
			return nil
		}
		if err := filepath.WalkDir(root, walkFn); err != nil {
			return fmt.Errorf("walk failed: %w", err)
		}

		if len(files) == 0 {
			fmt.Fprintln(out, "⚠️  No images found.")
			return nil
		}

		// 2. 并发导入
		var added atomic.Int64
		g, ctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(importJobs)
		for _, path := range files {
			g.Go(func() error {
				if err := importFile(ctx, path); err != nil {
					return fmt.Errorf("failed to import %s: %w", path, err)
				}
				added.Add(1)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		fmt.Fprintf(out, "✅ Imported %d items in %s\n", added.Load(), time.Since(start))
		return nil
	},
}

// libraryPaths 返回落在导入根目录里的图片库和数据库路径（相对 root）
func libraryPaths(root string) []string {
	if MC == nil {
		return nil
	}
	var rels []string
	for _, p := range []string{MC.Config.Storage.Path, MC.Config.Database.Path} {
		if p == "" {
			continue
		}
		rel, err := filepath.Rel(root, p)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		rels = append(rels, rel)
	}
	return rels
}

func importFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	base := filepath.Base(path)
	_, err = Svc.Submit(ctx, service.Submission{
		Name:          strings.TrimSuffix(base, filepath.Ext(base)),
		Category:      filepath.Base(filepath.Dir(path)),
		ImageFilename: base,
		Image:         data,
	})
	return err
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().IntVarP(&importJobs, "jobs", "j", 4, "number of concurrent submissions")
}
