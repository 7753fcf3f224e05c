package main

import (
	"github.com/russross/blackfriday/v2"
)

const htmlFlags = blackfriday.UseXHTML |
	blackfriday.Smartypants |
	blackfriday.SmartypantsFractions |
	blackfriday.SmartypantsLatexDashes

const extensions = blackfriday.NoIntraEmphasis |
	blackfriday.Tables |
	blackfriday.FencedCode |
	blackfriday.Autolink |
	blackfriday.Strikethrough |
	blackfriday.HeadingIDs

type renderer interface {
	render(in []byte) string
}

func newMarkdownRenderer() renderer {
	return &blackfridayHtmlRenderer{htmlFlags, extensions}
}

type blackfridayHtmlRenderer struct {
	flags      blackfriday.HTMLFlags
	extensions blackfriday.Extensions
}

// The HTML renderer keeps per-document state, so each call gets its own.
func (b *blackfridayHtmlRenderer) render(in []byte) string {
	r := blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{Flags: b.flags})
	return string(blackfriday.Run(in, blackfriday.WithRenderer(r), blackfriday.WithExtensions(b.extensions)))
}
