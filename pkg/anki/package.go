package anki

import (
	"archive/zip"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Package is a set of decks headed for one .apkg archive.
type Package struct {
	decks []*Deck
}

// NewPackage groups decks for serialization.
func NewPackage(decks ...*Deck) *Package {
	return &Package{decks: decks}
}

// WriteToFile serializes the package to path. The archive is staged in the
// destination directory and renamed into place on success, so a failed run
// never leaves a partial or corrupt output file.
func (p *Package) WriteToFile(path string) error {
	if len(p.decks) == 0 {
		return errors.New("package contains no decks")
	}

	tmpDir, err := os.MkdirTemp("", "apkg-")
	if err != nil {
		return fmt.Errorf("creating staging directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	dbPath := filepath.Join(tmpDir, "collection.anki2")
	if err := buildCollectionFile(dbPath, p.decks); err != nil {
		return err
	}

	out, err := os.CreateTemp(filepath.Dir(path), ".apkg-stage-")
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := writeArchive(out, dbPath); err != nil {
		out.Close()
		os.Remove(out.Name())
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(out.Name())
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(out.Name(), path); err != nil {
		os.Remove(out.Name())
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func buildCollectionFile(dbPath string, decks []*Deck) error {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("opening collection database: %w", err)
	}
	if err := initCollection(db); err != nil {
		db.Close()
		return err
	}
	if err := writeCollection(db, decks); err != nil {
		db.Close()
		return err
	}
	// Close flushes the database before the file is zipped.
	return db.Close()
}

// writeArchive zips the collection plus an empty media manifest. Explicit
// headers with zero timestamps keep the archive bytes reproducible.
func writeArchive(w io.Writer, dbPath string) error {
	zw := zip.NewWriter(w)

	dbw, err := zw.CreateHeader(&zip.FileHeader{Name: "collection.anki2", Method: zip.Deflate})
	if err != nil {
		return err
	}
	f, err := os.Open(dbPath)
	if err != nil {
		return err
	}
	_, err = io.Copy(dbw, f)
	f.Close()
	if err != nil {
		return err
	}

	// The manifest maps archive member names to media filenames; this
	// package embeds no media.
	mw, err := zw.CreateHeader(&zip.FileHeader{Name: "media", Method: zip.Deflate})
	if err != nil {
		return err
	}
	if _, err := mw.Write([]byte("{}")); err != nil {
		return err
	}
	return zw.Close()
}
