package main

import (
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"

	mdblog "github.com/alnah/go-mdblog"
)

// runStrip executes the strip command: plain text by default, or the
// excerpt and reading time when asked.
func runStrip(args []string, env *Environment) error {
	fs := flag.NewFlagSet("strip", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	fs.Usage = func() { printStripUsage(env.Stderr) }

	excerpt := fs.Int("excerpt", 0, "print an excerpt of at most n characters")
	readingTime := fs.Bool("reading-time", false, "print the reading time in minutes")

	if err := parseFlagSet(fs, args); err != nil {
		return err
	}
	if fs.NArg() > 1 {
		return fmt.Errorf("%w: strip takes at most one file", ErrUsage)
	}
	if *excerpt < 0 {
		return fmt.Errorf("%w: --excerpt must not be negative", ErrUsage)
	}

	text, err := readStripInput(fs.Arg(0), env.Stdin)
	if err != nil {
		return err
	}

	wantExcerpt := fs.Changed("excerpt")
	if !wantExcerpt && !*readingTime {
		fmt.Fprintln(env.Stdout, mdblog.StripMarkdown(text))
		return nil
	}
	if wantExcerpt {
		fmt.Fprintln(env.Stdout, mdblog.Excerpt(text, *excerpt))
	}
	if *readingTime {
		fmt.Fprintln(env.Stdout, mdblog.ReadingTime(text))
	}
	return nil
}

// readStripInput reads name, or stdin when name is empty or "-".
func readStripInput(name string, stdin io.Reader) (string, error) {
	if name == "" || name == "-" {
		if stdin == nil {
			return "", fmt.Errorf("%w: no stdin", ErrNoInput)
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("%w: stdin: %w", ErrReadInput, err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(name) // #nosec G304 -- user-provided input path
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrReadInput, err)
	}
	return string(data), nil
}
