package core

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"glaunch/internal/domain"
)

// Extractor unpacks a downloaded game payload archive into a staging
// directory. The patch server ships zip payloads only.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract unpacks archivePath into destDir, checking ctx between entries
// so a cancelled install stops before the staging swap.
func (e *Extractor) Extract(ctx context.Context, archivePath, destDir string) (err error) {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("%w: creating destination directory: %v", domain.ErrFilesystem, err)
	}

	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("opening payload archive: %w", err)
	}
	defer func() {
		if cerr := r.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing payload archive: %w", cerr)
		}
	}()

	for _, f := range r.File {
		select {
		case <-ctx.Done():
			return domain.ErrCancelled
		default:
		}

		if err := e.extractFile(f, destDir); err != nil {
			return err
		}
	}

	return nil
}

// extractFile writes a single archive entry under destDir.
func (e *Extractor) extractFile(f *zip.File, destDir string) (err error) {
	destPath, err := e.sanitizePath(destDir, f.Name)
	if err != nil {
		return err
	}

	if f.FileInfo().IsDir() {
		// 0755 so later entries can be written into it
		return os.MkdirAll(destPath, 0755)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", f.Name, err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("opening archive entry %s: %w", f.Name, err)
	}
	defer func() {
		if cerr := rc.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing archive entry %s: %w", f.Name, cerr)
		}
	}()

	outFile, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
	if err != nil {
		return fmt.Errorf("creating file %s: %w", destPath, err)
	}
	defer func() {
		if cerr := outFile.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing file %s: %w", destPath, cerr)
		}
	}()

	if _, err = io.Copy(outFile, rc); err != nil {
		return fmt.Errorf("writing file %s: %w", destPath, err)
	}

	return nil
}

// sanitizePath ensures an extracted path stays within the destination
// directory, rejecting "zip slip" entries like "../../../etc/passwd".
func (e *Extractor) sanitizePath(destDir, filePath string) (string, error) {
	cleanPath := filepath.Clean(filePath)
	destPath := filepath.Join(destDir, cleanPath)

	if !strings.HasPrefix(filepath.Clean(destPath)+string(os.PathSeparator), filepath.Clean(destDir)+string(os.PathSeparator)) {
		if filepath.Clean(destPath) != filepath.Clean(destDir) {
			return "", fmt.Errorf("path traversal detected: %s", filePath)
		}
	}

	return destPath, nil
}
