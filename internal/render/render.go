// Package render turns post markdown into sanitized HTML with highlighted code blocks.
package render

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/debemdeboas/quill/internal/cache"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	md_html "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
)

var renderLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	renderLogger = l
}

const DefaultStyle = "github"

var formatter = html.New(html.WithClasses(true), html.PreventSurroundingPre(false))

var policy = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^[a-zA-Z0-9 _-]+$`)).OnElements("span", "div", "pre", "code")
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}()

// HighlightCode returns code as chroma HTML using CSS classes. Unknown
// languages fall back to plain text.
func HighlightCode(code, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "<pre><code>" + escape(code) + "</code></pre>"
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, styles.Get(DefaultStyle), iterator); err != nil {
		return "<pre><code>" + escape(code) + "</code></pre>"
	}
	return buf.String()
}

// StyleCSS writes the stylesheet matching the classes emitted by HighlightCode.
func StyleCSS(w io.Writer, style string) error {
	s := styles.Get(style)
	if s == nil {
		s = styles.Fallback
	}
	return formatter.WriteCSS(w, s)
}

func escape(s string) string {
	var buf bytes.Buffer
	md_html.EscapeHTML(&buf, []byte(s))
	return buf.String()
}

// Markdown renders md to HTML and runs the result through the UGC policy.
func Markdown(md []byte) []byte {
	opts := md_html.RendererOptions{
		Flags: md_html.CommonFlags | md_html.HrefTargetBlank | md_html.FootnoteReturnLinks,
		RenderNodeHook: func(w io.Writer, node ast.Node, entering bool) (ast.WalkStatus, bool) {
			if code, ok := node.(*ast.CodeBlock); ok && entering {
				fmt.Fprintf(w, "<div class=\"highlight\">%s</div>", HighlightCode(string(code.Literal), string(code.Info)))
				return ast.GoToNext, true
			}
			return ast.GoToNext, false
		},
	}

	doc := parser.NewWithExtensions(
		parser.CommonExtensions | parser.AutoHeadingIDs | parser.Footnotes | parser.NoIntraEmphasis,
	).Parse(markdown.NormalizeNewlines(md))

	return policy.SanitizeBytes(markdown.Render(doc, md_html.NewRenderer(opts)))
}

var renderMu sync.Mutex

// Cached renders md once per content hash. An empty hash bypasses the cache.
func Cached(md []byte, contentHash string) []byte {
	if contentHash == "" {
		return Markdown(md)
	}
	if out, ok := cache.GetRendered(contentHash); ok {
		return out
	}

	renderMu.Lock()
	defer renderMu.Unlock()
	if out, ok := cache.GetRendered(contentHash); ok {
		return out
	}

	out := Markdown(md)
	cache.SetRendered(contentHash, out)
	renderLogger.Debug().Str("content_hash", contentHash).Int("bytes", len(out)).Msg("Rendered markdown")
	return out
}
