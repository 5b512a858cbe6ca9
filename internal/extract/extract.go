// Package extract turns raw article archives into domain.Article values.
package extract

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"articlerag/internal/domain"
	"articlerag/internal/logger"
)

// Dir extracts every .epub and .txt file under dataDir, in lexical path
// order. Articles without text are dropped.
func Dir(ctx context.Context, dataDir string) ([]domain.Article, error) {
	var out []domain.Article
	err := filepath.WalkDir(dataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		var articles []domain.Article
		switch strings.ToLower(filepath.Ext(path)) {
		case ".epub":
			articles, err = EPUB(path)
		case ".txt":
			var a domain.Article
			a, err = Text(path)
			articles = []domain.Article{a}
		default:
			logger.Debug("skipping unsupported file", "path", path)
			return nil
		}
		if err != nil {
			return fmt.Errorf("extract %s: %w", path, err)
		}
		kept := 0
		for _, a := range articles {
			if strings.TrimSpace(a.Text) == "" {
				continue
			}
			out = append(out, a)
			kept++
		}
		logger.Debug("extracted", "path", path, "articles", kept)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
