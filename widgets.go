package mdblog

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/alnah/go-mdblog/internal/pipeline"
)

// CopyResetDelay is how long a code block reports Copied after a copy.
const CopyResetDelay = 2 * time.Second

// ErrNoClipboard indicates CodeBlock.Copy was called without a clipboard.
var ErrNoClipboard = errors.New("no clipboard")

// Clipboard receives copied code.
type Clipboard interface {
	WriteText(text string) error
}

// ClipboardFunc adapts a function to Clipboard.
type ClipboardFunc func(text string) error

// WriteText calls f(text).
func (f ClipboardFunc) WriteText(text string) error { return f(text) }

// timer is the part of *time.Timer a CodeBlock uses.
type timer interface {
	Stop() bool
}

// CodeBlock is the interactive state of a rendered code block.
type CodeBlock struct {
	Index    int
	Language string
	Label    string

	afterFunc func(time.Duration, func()) timer

	mu     sync.Mutex
	text   string
	lines  int
	copied bool
	reset  timer
	gen    uint64
}

func newCodeBlock(info pipeline.CodeBlockInfo, text string) *CodeBlock {
	c := &CodeBlock{
		Index:    info.Index,
		Language: info.Language,
		Label:    info.Label,
		afterFunc: func(d time.Duration, f func()) timer {
			return time.AfterFunc(d, f)
		},
	}
	c.SetText(text)
	return c
}

// Text returns the rendered text content, the text Copy writes.
func (c *CodeBlock) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

// Lines returns the line count of the rendered text, trailing empty line
// excluded.
func (c *CodeBlock) Lines() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lines
}

// SetText replaces the rendered text and recomputes the line count.
func (c *CodeBlock) SetText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = text
	c.lines = pipeline.CountLines(text)
}

// Copy writes the rendered text to clip and reports Copied for
// CopyResetDelay. Copying again restarts the delay.
func (c *CodeBlock) Copy(clip Clipboard) error {
	if clip == nil {
		return ErrNoClipboard
	}
	if err := clip.WriteText(c.Text()); err != nil {
		return fmt.Errorf("copy code block %d: %w", c.Index, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.reset != nil {
		c.reset.Stop()
	}
	c.gen++
	gen := c.gen
	c.copied = true
	c.reset = c.afterFunc(CopyResetDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if gen == c.gen {
			c.copied = false
			c.reset = nil
		}
	})
	return nil
}

// Copied reports whether a copy happened within the last CopyResetDelay.
func (c *CodeBlock) Copied() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copied
}

// Close stops a pending reset.
func (c *CodeBlock) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.reset != nil {
		c.reset.Stop()
		c.reset = nil
	}
	c.gen++
	c.copied = false
}

// Image is the load state of a rendered image. Failure is one-way.
type Image struct {
	Index int
	Src   string
	Alt   string

	mu     sync.Mutex
	failed bool
}

func newImage(info pipeline.ImageInfo) *Image {
	return &Image{Index: info.Index, Src: info.Src, Alt: info.Alt}
}

// Fail marks the image as failed to load. There is no way back.
func (img *Image) Fail() {
	img.mu.Lock()
	defer img.mu.Unlock()
	img.failed = true
}

// Failed reports whether the image failed to load.
func (img *Image) Failed() bool {
	img.mu.Lock()
	defer img.mu.Unlock()
	return img.failed
}

// Label is the accessible name: the alt text, or a generic label.
func (img *Image) Label() string {
	if img.Alt != "" {
		return img.Alt
	}
	return pipeline.ImageUnavailableLabel
}

// PlaceholderHTML is the markup that replaces the image once it failed.
func (img *Image) PlaceholderHTML() string {
	return pipeline.ImagePlaceholderHTML(img.Index, img.Alt)
}
