package extract

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"

	"golang.org/x/net/html"

	"articlerag/internal/domain"
)

// EPUB extracts the articles of a magazine issue. Each XHTML page under the
// archive's pages/ directory may hold several article blocks
// (div with an id starting with "ancre"); the issue date comes from the
// page header (div.tetiere, the text after its first comma).
func EPUB(epubPath string) ([]domain.Article, error) {
	zr, err := zip.OpenReader(epubPath)
	if err != nil {
		return nil, fmt.Errorf("open epub: %w", err)
	}
	defer zr.Close()

	var pages []*zip.File
	for _, f := range zr.File {
		if isPage(f.Name) {
			pages = append(pages, f)
		}
	}
	slices.SortFunc(pages, func(a, b *zip.File) int { return strings.Compare(a.Name, b.Name) })

	var articles []domain.Article
	for _, f := range pages {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", f.Name, err)
		}
		found, err := parsePage(rc, epubPath+":"+f.Name)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", f.Name, err)
		}
		articles = append(articles, found...)
	}
	return articles, nil
}

func isPage(name string) bool {
	if !strings.HasSuffix(name, ".xhtml") {
		return false
	}
	return slices.Contains(strings.Split(path.Dir(name), "/"), "pages")
}

func parsePage(r io.Reader, source string) ([]domain.Article, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	date := ""
	if t := findFirst(doc, isDivClass("tetiere")); t != nil {
		if parts := strings.Split(textOf(t), ","); len(parts) > 1 {
			date = strings.TrimSpace(parts[1])
		}
	}

	var articles []domain.Article
	for _, block := range findAll(doc, isArticleBlock) {
		a := domain.Article{Date: date, Source: source}
		if h := findFirst(block, isElemClass("h1", "h1")); h != nil {
			a.Title = textOf(h)
		}
		if da := findFirst(block, isDivClass("dates_auteurs")); da != nil {
			if s := findFirst(da, isElemClass("span", "auteurs")); s != nil {
				a.Author = strings.ReplaceAll(textOf(s), "&", " & ")
			}
		}
		if la := findFirst(block, isDivClass("lesauteurs")); la != nil {
			if b := findFirst(la, isBioDiv); b != nil {
				a.Bio = textOf(b)
			}
		}
		if tx := findFirst(block, isDivClass("texte")); tx != nil {
			var paras []string
			for _, p := range findAll(tx, isElem("p")) {
				paras = append(paras, textOf(p))
			}
			a.Text = strings.TrimSpace(strings.Join(paras, "\n"))
		}
		articles = append(articles, a)
	}
	return articles, nil
}

type matcher func(*html.Node) bool

func isElem(tag string) matcher {
	return func(n *html.Node) bool { return n.Type == html.ElementNode && n.Data == tag }
}

func isElemClass(tag, class string) matcher {
	return func(n *html.Node) bool { return isElem(tag)(n) && slices.Contains(classes(n), class) }
}

func isDivClass(class string) matcher { return isElemClass("div", class) }

func isArticleBlock(n *html.Node) bool {
	return isElem("div")(n) && strings.HasPrefix(attr(n, "id"), "ancre")
}

func isBioDiv(n *html.Node) bool {
	return isElem("div")(n) && slices.ContainsFunc(classes(n), func(c string) bool { return strings.Contains(c, "bio") })
}

// isNoteRef marks footnote call-outs, which are left out of article text.
func isNoteRef(n *html.Node) bool { return isElemClass("span", "spip_note_ref")(n) }

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func classes(n *html.Node) []string { return strings.Fields(attr(n, "class")) }

// findFirst returns the first descendant of n matching m, in document order.
func findFirst(n *html.Node, m matcher) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if m(c) {
			return c
		}
		if found := findFirst(c, m); found != nil {
			return found
		}
	}
	return nil
}

func findAll(n *html.Node, m matcher) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if m(c) {
			out = append(out, c)
		}
		out = append(out, findAll(c, m)...)
	}
	return out
}

// textOf joins the trimmed text nodes under n with single spaces.
func textOf(n *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if isNoteRef(n) {
			return
		}
		if n.Type == html.TextNode {
			if s := strings.TrimSpace(n.Data); s != "" {
				parts = append(parts, s)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}
