package input

import (
	"archive/zip"
	"context"
	"fmt"
	"io"

	"github.com/bodgit/sevenzip"
)

// eachZip reads every regular member of a zip archive.
func eachZip(ctx context.Context, path string, format Format, fn func(Line) error) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("failed to open zip %s: %w", path, err)
	}
	defer zr.Close()

	for _, file := range zr.File {
		if file.FileInfo().IsDir() {
			continue
		}
		if err := eachMember(ctx, path+":"+file.Name, file.Open, format, fn); err != nil {
			return err
		}
	}
	return nil
}

// eachSevenZip reads every regular member of a 7z archive.
func eachSevenZip(ctx context.Context, path string, format Format, fn func(Line) error) error {
	r, err := sevenzip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("failed to open 7z %s: %w", path, err)
	}
	defer r.Close()

	for _, file := range r.File {
		if file.FileInfo().IsDir() {
			continue
		}
		if err := eachMember(ctx, path+":"+file.Name, file.Open, format, fn); err != nil {
			return err
		}
	}
	return nil
}

func eachMember(ctx context.Context, source string, open func() (io.ReadCloser, error), format Format, fn func(Line) error) error {
	rc, err := open()
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", source, err)
	}
	defer rc.Close()
	return scan(ctx, source, rc, format, fn)
}
