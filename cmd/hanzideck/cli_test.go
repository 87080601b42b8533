package main_test

import (
	"archive/zip"
	"bytes"
	"database/sql"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

const sampleInput = `
[
    ('男', 'nán', 'man', 'Mann', '他是一个男人。'),
    ('学', 'xué', 'to study', 'lernen', '我喜欢学习中文。'),
]
`

// buildCLI compiles the binary once per test run.
func buildCLI(t *testing.T) string {
	t.Helper()
	bin := filepath.Join(t.TempDir(), "hanzideck.bin")
	build := exec.Command("go", "build", "-o", bin, "github.com/mbruckner/hanzideck/cmd/hanzideck")
	build.Stdout = os.Stdout
	build.Stderr = os.Stderr
	if err := build.Run(); err != nil {
		t.Fatalf("failed to build CLI: %v", err)
	}
	return bin
}

// runCLI executes the binary in dir and returns combined output and exit code.
func runCLI(t *testing.T, bin, dir string, args ...string) (string, int) {
	t.Helper()
	cmd := exec.Command(bin, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err == nil {
		return string(out), 0
	}
	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		t.Fatalf("cli did not run: %v\noutput:\n%s", err, out)
	}
	return string(out), exitErr.ExitCode()
}

// openCollection pulls collection.anki2 out of the archive and opens it.
func openCollection(t *testing.T, apkgPath string) *sql.DB {
	t.Helper()
	zr, err := zip.OpenReader(apkgPath)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer zr.Close()
	for _, f := range zr.File {
		if f.Name != "collection.anki2" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open member: %v", err)
		}
		raw, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read member: %v", err)
		}
		dbPath := filepath.Join(t.TempDir(), "collection.anki2")
		if err := os.WriteFile(dbPath, raw, 0644); err != nil {
			t.Fatalf("write collection: %v", err)
		}
		db, err := sql.Open("sqlite3", dbPath)
		if err != nil {
			t.Fatalf("open collection: %v", err)
		}
		t.Cleanup(func() { db.Close() })
		return db
	}
	t.Fatal("archive has no collection.anki2 member")
	return nil
}

func TestCLI_Success(t *testing.T) {
	bin := buildCLI(t)
	tmp := t.TempDir()
	input := filepath.Join(tmp, "vocab.txt")
	output := filepath.Join(tmp, "vocab.apkg")
	if err := os.WriteFile(input, []byte(sampleInput), 0644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	out, code := runCLI(t, bin, tmp, input, output)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d:\n%s", code, out)
	}
	if !strings.Contains(out, "successfully created") || !strings.Contains(out, output) {
		t.Errorf("expected confirmation naming the output file, got:\n%s", out)
	}

	db := openCollection(t, output)
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM notes`).Scan(&count); err != nil {
		t.Fatalf("count notes: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 notes, got %d", count)
	}
	var flds string
	if err := db.QueryRow(`SELECT flds FROM notes ORDER BY id LIMIT 1`).Scan(&flds); err != nil {
		t.Fatalf("read note: %v", err)
	}
	want := "男\x1fnán\x1fman\x1fMann\x1f他是一个男人。"
	if flds != want {
		t.Errorf("first note = %q, want %q", flds, want)
	}
	var decksBlob string
	if err := db.QueryRow(`SELECT decks FROM col`).Scan(&decksBlob); err != nil {
		t.Fatalf("read col: %v", err)
	}
	if !strings.Contains(decksBlob, `"2059400110"`) || !strings.Contains(decksBlob, "Chinese Vocabulary") {
		t.Errorf("deck constants missing from collection: %q", decksBlob)
	}
}

func TestCLI_CustomIdentityFlags(t *testing.T) {
	bin := buildCLI(t)
	tmp := t.TempDir()
	input := filepath.Join(tmp, "vocab.txt")
	output := filepath.Join(tmp, "vocab.apkg")
	if err := os.WriteFile(input, []byte(sampleInput), 0644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	out, code := runCLI(t, bin, tmp, "-deck-name", "HSK 1", "-deck-id", "12345", input, output)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d:\n%s", code, out)
	}
	db := openCollection(t, output)
	var decksBlob string
	if err := db.QueryRow(`SELECT decks FROM col`).Scan(&decksBlob); err != nil {
		t.Fatalf("read col: %v", err)
	}
	if !strings.Contains(decksBlob, `"12345"`) || !strings.Contains(decksBlob, "HSK 1") {
		t.Errorf("custom deck identity missing: %q", decksBlob)
	}
}

func TestCLI_MissingInputFile(t *testing.T) {
	bin := buildCLI(t)
	tmp := t.TempDir()
	missing := filepath.Join(tmp, "nope.txt")
	output := filepath.Join(tmp, "out.apkg")

	out, code := runCLI(t, bin, tmp, missing, output)
	if code != 1 {
		t.Fatalf("expected exit 1, got %d:\n%s", code, out)
	}
	if !strings.Contains(out, missing) {
		t.Errorf("diagnostic should name the missing path, got:\n%s", out)
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Error("no output file should be created on failure")
	}
}

func TestCLI_MalformedLiteral(t *testing.T) {
	bin := buildCLI(t)
	tmp := t.TempDir()
	input := filepath.Join(tmp, "vocab.txt")
	output := filepath.Join(tmp, "out.apkg")
	if err := os.WriteFile(input, []byte("[("), 0644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	out, code := runCLI(t, bin, tmp, input, output)
	if code != 1 {
		t.Fatalf("expected exit 1, got %d:\n%s", code, out)
	}
	if !strings.Contains(out, "parsing") {
		t.Errorf("expected a parse diagnostic, got:\n%s", out)
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Error("no output file should be created on failure")
	}
}

func TestCLI_SchemaErrorNamesIndex(t *testing.T) {
	bin := buildCLI(t)
	tmp := t.TempDir()
	input := filepath.Join(tmp, "vocab.txt")
	if err := os.WriteFile(input, []byte(`
[
    ('男', 'nán', 'man', 'Mann', '他是一个男人。'),
    ('学', 'xué'),
]
`), 0644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	out, code := runCLI(t, bin, tmp, input)
	if code != 1 {
		t.Fatalf("expected exit 1, got %d:\n%s", code, out)
	}
	if !strings.Contains(out, "entry 1") {
		t.Errorf("diagnostic should identify entry 1, got:\n%s", out)
	}
}

func TestCLI_DefaultPaths(t *testing.T) {
	bin := buildCLI(t)
	tmp := t.TempDir()

	// Without input.txt in the working directory the run fails.
	out, code := runCLI(t, bin, tmp)
	if code != 1 {
		t.Fatalf("expected exit 1, got %d:\n%s", code, out)
	}
	if !strings.Contains(out, "input.txt") {
		t.Errorf("diagnostic should name input.txt, got:\n%s", out)
	}

	// With it present, the default output name is used.
	if err := os.WriteFile(filepath.Join(tmp, "input.txt"), []byte(sampleInput), 0644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	out, code = runCLI(t, bin, tmp)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d:\n%s", code, out)
	}
	if _, err := os.Stat(filepath.Join(tmp, "deck.apkg")); err != nil {
		t.Errorf("expected deck.apkg in working directory: %v", err)
	}
}

func TestCLI_Idempotent(t *testing.T) {
	bin := buildCLI(t)
	tmp := t.TempDir()
	input := filepath.Join(tmp, "vocab.txt")
	if err := os.WriteFile(input, []byte(sampleInput), 0644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	read := func(name string) []byte {
		out, code := runCLI(t, bin, tmp, input, filepath.Join(tmp, name))
		if code != 0 {
			t.Fatalf("expected exit 0, got %d:\n%s", code, out)
		}
		raw, err := os.ReadFile(filepath.Join(tmp, name))
		if err != nil {
			t.Fatalf("read output: %v", err)
		}
		return raw
	}
	if !bytes.Equal(read("a.apkg"), read("b.apkg")) {
		t.Error("identical input should produce byte-identical archives")
	}
}
