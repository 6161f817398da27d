// Package input reads user agent strings from plain files, standard input and
// compressed archives.
package input

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// maxLineSize bounds a single line. Longer lines fail the read.
const maxLineSize = 1 << 20

// Format selects how a user agent is found on a line.
type Format string

const (
	// FormatLines treats every non-blank line as one user agent.
	FormatLines Format = "lines"
	// FormatCombined extracts the user agent of an Apache/nginx combined log
	// line: the last double-quoted field.
	FormatCombined Format = "combined"
)

// ParseFormat converts a configuration string to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatLines:
		return FormatLines, nil
	case FormatCombined:
		return FormatCombined, nil
	}
	return "", fmt.Errorf("unknown input format %q (want lines or combined)", s)
}

// Line is one user agent read from a source.
type Line struct {
	Source string // file name, archive member as "archive:member", or "-"
	Number int    // 1-based line number within Source
	Text   string
}

// Config controls how sources are read.
type Config struct {
	Format Format
	// Stdin replaces os.Stdin for the "-" path.
	Stdin io.Reader
}

// Each reads every user agent of path and calls fn for each in order. The path
// "-" reads standard input. Files ending in .gz are decompressed; .zip and .7z
// archives are read member by member in archive order.
func Each(ctx context.Context, path string, cfg Config, fn func(Line) error) error {
	if path == "-" {
		stdin := cfg.Stdin
		if stdin == nil {
			stdin = os.Stdin
		}
		return scan(ctx, "-", stdin, cfg.Format, fn)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip":
		return eachZip(ctx, path, cfg.Format, fn)
	case ".7z":
		return eachSevenZip(ctx, path, cfg.Format, fn)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.EqualFold(filepath.Ext(path), ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("failed to open gzip %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}
	return scan(ctx, path, r, cfg.Format, fn)
}

// scan splits r into lines and hands every user agent to fn.
func scan(ctx context.Context, source string, r io.Reader, format Format, fn func(Line) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	n := 0
	for sc.Scan() {
		n++
		if n%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		text, ok := extract(strings.TrimRight(sc.Text(), "\r"), format)
		if !ok {
			continue
		}
		if err := fn(Line{Source: source, Number: n, Text: text}); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading %s: %w", source, err)
	}
	return ctx.Err()
}

// extract returns the user agent of line, or false when the line carries
// none.
func extract(line string, format Format) (string, bool) {
	if format != FormatCombined {
		if strings.TrimSpace(line) == "" {
			return "", false
		}
		return line, true
	}

	end := strings.LastIndexByte(line, '"')
	if end <= 0 {
		return "", false
	}
	start := strings.LastIndexByte(line[:end], '"')
	if start < 0 {
		return "", false
	}
	ua := line[start+1 : end]
	if ua == "" || ua == "-" {
		return "", false
	}
	return ua, true
}
