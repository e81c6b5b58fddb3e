package web

import (
	"strings"

	"golang.org/x/net/html"
)

// droppedElements contribute no readable text.
var droppedElements = map[string]bool{
	"script": true, "style": true, "noscript": true, "head": true,
	"svg": true, "template": true, "iframe": true,
}

// blockElements start and end on their own line.
var blockElements = map[string]bool{
	"p": true, "div": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"li": true, "dt": true, "dd": true, "tr": true, "td": true, "th": true, "blockquote": true,
	"pre": true, "table": true, "section": true, "article": true, "header": true, "footer": true,
	"nav": true, "aside": true, "main": true, "figure": true, "figcaption": true, "ul": true, "ol": true,
	"br": true, "hr": true,
}

// extractPage walks the token stream once and returns the decoded <title>
// and the readable text of the page, one block element per line.
func extractPage(content string) (title, text string) {
	z := html.NewTokenizer(strings.NewReader(content))

	var out, titleText strings.Builder
	skip := 0
	inTitle := false
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return tidyLines(titleText.String(), " "), tidyLines(out.String(), "\n")

		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			switch {
			case tag == "title" && tt == html.StartTagToken:
				inTitle = true
			case droppedElements[tag] && tt == html.StartTagToken:
				skip++
			case blockElements[tag]:
				out.WriteByte('\n')
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			switch {
			case tag == "title":
				inTitle = false
			case droppedElements[tag]:
				skip = max(skip-1, 0)
			case blockElements[tag]:
				out.WriteByte('\n')
			}

		case html.TextToken:
			switch {
			case inTitle:
				titleText.Write(z.Text())
			case skip == 0:
				out.Write(z.Text())
			}
		}
	}
}

// tidyLines collapses whitespace within each line, drops blank lines and
// joins the rest with sep.
func tidyLines(content, sep string) string {
	lines := strings.Split(content, "\n")
	result := lines[:0]
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			result = append(result, line)
		}
	}
	return strings.Join(result, sep)
}
