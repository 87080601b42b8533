// Package anki builds Anki 2 flashcard packages (.apkg): a zip archive
// holding a SQLite collection plus a media manifest. Output is fully
// deterministic for identical input, so re-running a generation produces a
// byte-identical archive and re-importing it updates notes in place instead
// of duplicating them.
package anki

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"strings"
)

// Field is a named field slot of a note type.
type Field struct {
	Name string
}

// CardTemplate describes how one card of a note type renders. QFmt and AFmt
// are Anki HTML templates referencing fields as {{Name}}.
type CardTemplate struct {
	Name string
	QFmt string
	AFmt string
}

// Model is a note type: the field slots, card templates and stylesheet
// shared by every note created from it. The ID must stay stable across runs
// that are meant to update the same notes in the target collection.
type Model struct {
	ID        int64
	Name      string
	Fields    []Field
	Templates []CardTemplate
	CSS       string
}

// NewModel defines a note type.
func NewModel(id int64, name string, fields []Field, templates []CardTemplate, css string) *Model {
	return &Model{ID: id, Name: name, Fields: fields, Templates: templates, CSS: css}
}

// Note is one filled-in instance of a model.
type Note struct {
	Model  *Model
	Fields []string
}

// NewNote binds field values positionally to the model's field slots. The
// value count must match the model exactly.
func NewNote(m *Model, fields []string) (*Note, error) {
	if len(fields) != len(m.Fields) {
		return nil, fmt.Errorf("note has %d fields, model %q defines %d", len(fields), m.Name, len(m.Fields))
	}
	return &Note{Model: m, Fields: fields}, nil
}

// joinedFields returns the note's values in Anki's on-disk encoding, joined
// by U+001F.
func (n *Note) joinedFields() string {
	return strings.Join(n.Fields, "\x1f")
}

// guid identifies the note across imports. It is derived from the field
// values, so regenerating the same entry updates the existing note.
func (n *Note) guid() string {
	sum := sha256.Sum256([]byte(n.joinedFields()))
	return base64.RawURLEncoding.EncodeToString(sum[:])[:10]
}

// checksum is Anki's duplicate-check value: the first 8 hex digits of the
// SHA1 of the first field.
func (n *Note) checksum() int64 {
	sum := sha1.Sum([]byte(n.Fields[0]))
	return int64(binary.BigEndian.Uint32(sum[:4]))
}

// Deck is a named, numerically keyed container of notes. Like Model.ID, the
// deck ID must stay stable for the target application to treat repeated
// exports as the same logical deck.
type Deck struct {
	ID    int64
	Name  string
	notes []*Note
}

// NewDeck creates an empty deck.
func NewDeck(id int64, name string) *Deck {
	return &Deck{ID: id, Name: name}
}

// AddNote appends a note; insertion order is preserved in the archive.
func (d *Deck) AddNote(n *Note) {
	d.notes = append(d.notes, n)
}

// Notes returns the deck's notes in insertion order.
func (d *Deck) Notes() []*Note {
	return d.notes
}
