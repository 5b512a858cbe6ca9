package extract

import (
	"os"
	"path/filepath"
	"strings"

	"articlerag/internal/domain"
)

// Text reads a plain-text article. The title is the file name without its
// extension; author and date are left empty.
func Text(path string) (domain.Article, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Article{}, err
	}
	base := filepath.Base(path)
	title := strings.TrimSuffix(base, filepath.Ext(base))
	title = strings.NewReplacer("_", " ", "-", " ").Replace(title)
	return domain.Article{
		Text:   strings.TrimSpace(string(data)),
		Title:  strings.TrimSpace(title),
		Source: path,
	}, nil
}
