package pipeline

import (
	"bytes"
	"path"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// obsidianEmbed matches ![[target]] or ![[target|caption]] at the reader position.
// PrepareSource has already escaped the separator to \| by the time it runs.
var obsidianEmbed = regexp.MustCompile(`^!\[\[([^\[\]]*)\]\]`)

// ParseObsidianEmbed splits the inside of ![[...]] into a target and a label.
// The label is the trimmed caption, or the final path segment of the target
// when no caption is given. ok is false for an empty target.
func ParseObsidianEmbed(inner string) (target, label string, ok bool) {
	target, caption, found := strings.Cut(inner, `\|`)
	if !found {
		target, caption, _ = strings.Cut(inner, "|")
	}
	target = strings.TrimSpace(target)
	if target == "" {
		return "", "", false
	}
	label = strings.TrimSpace(caption)
	if label == "" {
		label = path.Base(strings.TrimRight(target, "/"))
	}
	return target, label, true
}

// obsidianImageParser turns Obsidian embeds into standard image nodes.
// Text around an embed stays in the surrounding text nodes.
type obsidianImageParser struct{}

var _ parser.InlineParser = (*obsidianImageParser)(nil)

func (p *obsidianImageParser) Trigger() []byte {
	return []byte{'!'}
}

func (p *obsidianImageParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	if !bytes.HasPrefix(line, []byte("![[")) {
		return nil
	}
	m := obsidianEmbed.FindSubmatchIndex(line)
	if m == nil {
		return nil
	}
	target, label, ok := ParseObsidianEmbed(string(line[m[2]:m[3]]))
	if !ok {
		return nil
	}
	block.Advance(m[1])

	link := ast.NewLink()
	link.Destination = []byte(target)
	img := ast.NewImage(link)
	img.AppendChild(img, ast.NewString([]byte(label)))
	return img
}

type obsidianImages struct{}

// ObsidianImages is a Goldmark extension for ![[path|caption]] image embeds.
// It runs ahead of the link parser so "![[" is never read as a link label.
var ObsidianImages goldmark.Extender = &obsidianImages{}

func (e *obsidianImages) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(&obsidianImageParser{}, 100),
	))
}
