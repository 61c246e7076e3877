package anki_package

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// Package bundles decks and media into one distributable .apkg file.
// MediaFiles are paths on the local filesystem; each is stored under a
// numeric name inside the archive with a manifest mapping numbers back to
// the original basenames. Files that do not exist are silently skipped, so
// callers can pass the full wanted list even when some downloads failed.
type Package struct {
	Decks      []*Deck
	MediaFiles []string
}

// WriteFile writes the package to the given path.
func (p *Package) WriteFile(path string) error {
	tmpDir, err := os.MkdirTemp("", "ankipkg-*")
	if err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	dbPath := filepath.Join(tmpDir, "collection.anki2")
	if err := writeCollection(dbPath, p.Decks); err != nil {
		return err
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create package file: %w", err)
	}
	defer out.Close()

	archive := zip.NewWriter(out)

	if err := addZipFile(archive, "collection.anki2", dbPath); err != nil {
		return err
	}

	manifest := map[string]string{}
	index := 0
	for _, mediaPath := range p.MediaFiles {
		if _, err := os.Stat(mediaPath); err != nil {
			continue
		}
		name := strconv.Itoa(index)
		if err := addZipFile(archive, name, mediaPath); err != nil {
			return err
		}
		manifest[name] = filepath.Base(mediaPath)
		index++
	}

	manifestJSON, err := json.Marshal(manifest)
	if err != nil {
		return err
	}
	w, err := archive.Create("media")
	if err != nil {
		return fmt.Errorf("failed to add media manifest: %w", err)
	}
	if _, err := w.Write(manifestJSON); err != nil {
		return err
	}

	if err := archive.Close(); err != nil {
		return fmt.Errorf("failed to finalize package: %w", err)
	}
	return out.Close()
}

func addZipFile(archive *zip.Writer, name, srcPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", srcPath, err)
	}
	defer src.Close()

	w, err := archive.Create(name)
	if err != nil {
		return fmt.Errorf("failed to add %s to package: %w", name, err)
	}
	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("failed to write %s into package: %w", name, err)
	}
	return nil
}
