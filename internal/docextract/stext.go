package docextract

import (
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// average glyph width as a fraction of the font size, used when a layout only
// reports a line's origin
const glyphWidthRatio = 0.5

// ParseStextHTML reads one page of MuPDF's structured-text HTML, where every
// line is a <p> absolutely positioned with top/left in points.
func ParseStextHTML(r io.Reader, pageNumber int) (Page, error) {
	page := Page{Number: pageNumber}
	z := html.NewTokenizer(r)

	var (
		inLine   bool
		line     Token
		lineH    float64
		fontSize float64
		text     strings.Builder
	)

	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return Page{}, err
			}
			return page, nil

		case html.StartTagToken:
			tok := z.Token()
			style := parseStyle(attr(tok, "style"))
			switch tok.Data {
			case "div":
				if strings.HasPrefix(attr(tok, "id"), "page") {
					page.Width = style["width"]
					page.Height = style["height"]
				}
			case "p":
				inLine = true
				line = Token{Page: pageNumber, X: style["left"], Y: style["top"]}
				lineH = style["line-height"]
				fontSize = 0
				text.Reset()
			case "span":
				if fs := style["font-size"]; fs > fontSize {
					fontSize = fs
				}
			}

		case html.TextToken:
			if inLine {
				text.Write(z.Text())
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			if string(name) != "p" || !inLine {
				continue
			}
			inLine = false
			s := strings.Join(strings.Fields(text.String()), " ")
			if s == "" {
				continue
			}
			if lineH == 0 {
				lineH = fontSize
			}
			line.Str = s
			line.Height = lineH
			line.Width = float64(utf8.RuneCountInString(s)) * fontSize * glyphWidthRatio
			page.Content = append(page.Content, line)
		}
	}
}

func attr(tok html.Token, key string) string {
	for _, a := range tok.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// parseStyle returns the numeric declarations of an inline style, with any
// "pt"/"px" unit stripped.
func parseStyle(s string) map[string]float64 {
	out := map[string]float64{}
	for _, decl := range strings.Split(s, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		v = strings.TrimSpace(v)
		v = strings.TrimSuffix(strings.TrimSuffix(v, "pt"), "px")
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			continue
		}
		out[strings.TrimSpace(strings.ToLower(k))] = f
	}
	return out
}
