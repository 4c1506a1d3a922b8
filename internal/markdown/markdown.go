// Package markdown implements the HTML→Markdown converter (component G
// of SPEC_FULL.md): a DOM pre-pass that resolves image sources per
// spec.md §4.7, delegates the structural rendering to
// JohannesKaufmann/html-to-markdown/v2 (the teacher's own converter,
// cleaner/markdown.go), and a post-pass that rewrites inline links into
// reference-style citations, adapted from the teacher's
// cleaner/citations.go with an added guard so image markup is never
// mistaken for a link.
package markdown

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
)

// conv is a package-level converter instance; converter.Converter is
// documented as safe for concurrent use once constructed.
var conv = newConverter()

func newConverter() *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(commonmark.WithHorizontalRule("---")),
			table.NewTablePlugin(),
		),
	)
}

// Convert renders htmlFragment to Markdown. baseURL anchors relative
// image source resolution (spec.md §4.7); link hrefs are not resolved
// against it. preserveImages controls whether <img>/<figure>/<iframe>
// survive the pre-pass at all.
func Convert(htmlFragment, baseURL string, preserveImages bool) (string, error) {
	prepared, err := prepareImages(htmlFragment, baseURL, preserveImages)
	if err != nil {
		return "", fmt.Errorf("markdown: prepare images: %w", err)
	}

	rendered, err := conv.ConvertString(prepared)
	if err != nil {
		return "", fmt.Errorf("markdown: convert: %w", err)
	}

	return toReferenceLinks(rendered), nil
}

// prepareImages rewrites every <img> to a single resolved src/alt/title
// triple the base converter can render directly, and flattens every
// <figure> containing an <img> into a standalone image using the
// figcaption text as alt when present. When preserveImages is false,
// <img>, <figure>, and <iframe> are removed outright.
func prepareImages(htmlFragment, baseURL string, preserveImages bool) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlFragment))
	if err != nil {
		return "", err
	}

	if !preserveImages {
		doc.Find("img, figure, iframe").Remove()
		out, err := doc.Html()
		if err != nil {
			return "", err
		}
		return out, nil
	}

	parsedBase, err := url.Parse(baseURL)
	if err != nil {
		parsedBase = nil
	}

	doc.Find("figure").Each(func(_ int, fig *goquery.Selection) {
		img := fig.Find("img").First()
		if img.Length() == 0 {
			return
		}
		if caption := strings.TrimSpace(fig.Find("figcaption").Text()); caption != "" {
			img.SetAttr("alt", caption)
		}
		// Detach img from the figure, then replace the figure node with it.
		imgHTML, err := goquery.OuterHtml(img)
		if err == nil {
			fig.ReplaceWithHtml(imgHTML)
		}
	})

	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		resolveImage(img, parsedBase)
	})

	out, err := doc.Html()
	if err != nil {
		return "", err
	}
	return out, nil
}

// resolveImage applies spec.md §4.7's source-priority and URL-resolution
// rules in place, normalizing the element down to plain src/alt/title
// attributes (or removing it when no usable source exists).
func resolveImage(img *goquery.Selection, base *url.URL) {
	var src string
	for _, attr := range []string{"data-src", "data-lazy-src", "src"} {
		if v, ok := img.Attr(attr); ok && v != "" {
			src = v
			break
		}
	}
	if src == "" || strings.HasPrefix(src, "data:") {
		img.Remove()
		return
	}

	resolved := resolveURL(src, base)

	alt, _ := img.Attr("alt")
	alt = strings.TrimSpace(alt)
	if alt == "" {
		if title, ok := img.Attr("title"); ok {
			alt = strings.TrimSpace(title)
		}
	}
	if alt == "" {
		alt = "image"
	}

	title, _ := img.Attr("title")
	title = strings.TrimSpace(title)

	img.RemoveAttr("data-src")
	img.RemoveAttr("data-lazy-src")
	img.SetAttr("src", resolved)
	img.SetAttr("alt", alt)
	if title != "" && title != alt {
		img.SetAttr("title", title)
	} else {
		img.RemoveAttr("title")
	}
}

// resolveURL implements spec.md §4.7's image URL resolution: net/url's
// Parse+ResolveReference already covers protocol-relative ("//host/..."),
// absolute-path ("/path"), and bare-relative forms correctly per RFC
// 3986, and passes through other schemes (data:, mailto:, etc.) unchanged
// when base can't combine with them meaningfully.
func resolveURL(src string, base *url.URL) string {
	if base == nil {
		return src
	}
	ref, err := url.Parse(src)
	if err != nil {
		return src
	}
	if ref.IsAbs() || ref.Scheme != "" {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}

// inlineLinkRe matches Markdown inline links: [text](url). The negative
// assertion for a preceding '!' is done by hand below since RE2 has no
// lookbehind, guarding against rewriting image syntax as a citation.
var inlineLinkRe = regexp.MustCompile(`!?\[([^\]]+)\]\(([^)\s]+)(?:\s+"[^"]*")?\)`)

// citationTable assigns stable, de-duplicated reference numbers to URLs in
// the order they're first seen, and renders the trailing "[n]: url" block.
type citationTable struct {
	numberOf map[string]int
	ordered  []string
}

func newCitationTable() *citationTable {
	return &citationTable{numberOf: make(map[string]int)}
}

// numberFor returns href's reference number, assigning the next one if
// href hasn't been cited yet.
func (c *citationTable) numberFor(href string) int {
	if n, ok := c.numberOf[href]; ok {
		return n
	}
	n := len(c.ordered) + 1
	c.numberOf[href] = n
	c.ordered = append(c.ordered, href)
	return n
}

func (c *citationTable) block() string {
	if len(c.ordered) == 0 {
		return ""
	}
	lines := make([]string, len(c.ordered))
	for i, href := range c.ordered {
		lines[i] = fmt.Sprintf("[%d]: %s", i+1, href)
	}
	return "\n\n---\n" + strings.Join(lines, "\n")
}

// toReferenceLinks rewrites inline Markdown links into reference-style
// citations (duplicate URLs share one reference number) and appends the
// reference block. Grounded on Easonliuliang-purify's cleaner/citations.go
// ConvertToCitations for the rewrite idea, restructured around a
// citationTable instead of loose counter/map/slice locals so the
// numbering and rendering logic can be tested independently of the regex
// rewrite pass. Image markup (a leading '!') is left untouched, per
// spec.md §4.7's requirement that images stay inline.
func toReferenceLinks(md string) string {
	table := newCitationTable()

	rewritten := inlineLinkRe.ReplaceAllStringFunc(md, func(match string) string {
		if strings.HasPrefix(match, "!") {
			return match
		}
		parts := inlineLinkRe.FindStringSubmatch(match)
		if len(parts) != 3 {
			return match
		}
		text, href := parts[1], parts[2]
		return fmt.Sprintf("[%s][%d]", text, table.numberFor(href))
	})

	return rewritten + table.block()
}
