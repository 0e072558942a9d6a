// Package web embeds the HTML templates and static assets of the site.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/gofiber/template/html/v2"
)

// BaseLayout wraps every page.
const BaseLayout = "layouts/base"

//go:embed templates
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// NewEngine returns the template engine for fiber.Config.Views.
func NewEngine() *html.Engine {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		panic(err)
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFunc("nl2br", Nl2br)
	engine.AddFunc("seq", Seq)
	return engine
}

// Static exposes the embedded assets for the filesystem middleware.
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

// Nl2br escapes text and turns blank-line separated blocks into paragraphs
// and remaining newlines into line breaks.
func Nl2br(text string) template.HTML {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var b strings.Builder
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.Trim(para, "\n")
		if para == "" {
			continue
		}
		lines := strings.Split(para, "\n")
		for i, line := range lines {
			lines[i] = template.HTMLEscapeString(line)
		}
		b.WriteString("<p>")
		b.WriteString(strings.Join(lines, "<br>\n"))
		b.WriteString("</p>\n")
	}
	return template.HTML(b.String())
}

// Seq returns 1..n for rendering page links.
func Seq(n int) []int {
	out := make([]int, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, i)
	}
	return out
}
