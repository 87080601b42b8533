package anki

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// collectionEpoch is the fixed creation time written into the collection.
// A constant rather than time.Now keeps the archive byte-for-byte
// reproducible; Anki only requires it to be a plausible past instant.
const collectionEpoch int64 = 1672531200 // 2023-01-01 00:00:00 UTC

// noteIDStride spaces note row IDs per deck: note i of a deck gets
// deck.ID*noteIDStride + i, card IDs hang off the note ID by template
// ordinal. Deterministic IDs are what make repeated runs identical.
const noteIDStride = 1_000_000

// collectionSchema is the Anki 2 collection layout, executed statement by
// statement on a fresh database.
const collectionSchema = `
CREATE TABLE col (
    id     integer PRIMARY KEY,
    crt    integer NOT NULL,
    mod    integer NOT NULL,
    scm    integer NOT NULL,
    ver    integer NOT NULL,
    dty    integer NOT NULL,
    usn    integer NOT NULL,
    ls     integer NOT NULL,
    conf   text NOT NULL,
    models text NOT NULL,
    decks  text NOT NULL,
    dconf  text NOT NULL,
    tags   text NOT NULL
);

CREATE TABLE notes (
    id    integer PRIMARY KEY,
    guid  text NOT NULL,
    mid   integer NOT NULL,
    mod   integer NOT NULL,
    usn   integer NOT NULL,
    tags  text NOT NULL,
    flds  text NOT NULL,
    sfld  text NOT NULL,
    csum  integer NOT NULL,
    flags integer NOT NULL,
    data  text NOT NULL
);

CREATE TABLE cards (
    id     integer PRIMARY KEY,
    nid    integer NOT NULL,
    did    integer NOT NULL,
    ord    integer NOT NULL,
    mod    integer NOT NULL,
    usn    integer NOT NULL,
    type   integer NOT NULL,
    queue  integer NOT NULL,
    due    integer NOT NULL,
    ivl    integer NOT NULL,
    factor integer NOT NULL,
    reps   integer NOT NULL,
    lapses integer NOT NULL,
    left   integer NOT NULL,
    odue   integer NOT NULL,
    odid   integer NOT NULL,
    flags  integer NOT NULL,
    data   text NOT NULL
);

CREATE TABLE revlog (
    id      integer PRIMARY KEY,
    cid     integer NOT NULL,
    usn     integer NOT NULL,
    ease    integer NOT NULL,
    ivl     integer NOT NULL,
    lastIvl integer NOT NULL,
    factor  integer NOT NULL,
    time    integer NOT NULL,
    type    integer NOT NULL
);

CREATE TABLE graves (
    usn  integer NOT NULL,
    oid  integer NOT NULL,
    type integer NOT NULL
);

CREATE INDEX ix_notes_usn ON notes (usn);
CREATE INDEX ix_notes_csum ON notes (csum);
CREATE INDEX ix_cards_usn ON cards (usn);
CREATE INDEX ix_cards_nid ON cards (nid);
CREATE INDEX ix_cards_sched ON cards (did, queue, due);
CREATE INDEX ix_revlog_usn ON revlog (usn);
CREATE INDEX ix_revlog_cid ON revlog (cid)
`

// initCollection creates the schema on a fresh database.
func initCollection(db *sql.DB) error {
	for _, stmt := range strings.Split(collectionSchema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("creating collection schema: %w", err)
		}
	}
	return nil
}

// JSON blob shapes stored in the col row. Anki reads these as loosely-typed
// dictionaries; the fields below are the set it expects to find.

type modelJSON struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Type      int             `json:"type"`
	Mod       int64           `json:"mod"`
	USN       int             `json:"usn"`
	SortField int             `json:"sortf"`
	DeckID    int64           `json:"did"`
	Templates []templateJSON  `json:"tmpls"`
	Fields    []fieldJSON     `json:"flds"`
	CSS       string          `json:"css"`
	LatexPre  string          `json:"latexPre"`
	LatexPost string          `json:"latexPost"`
	Req       [][]interface{} `json:"req"`
	Tags      []string        `json:"tags"`
	Vers      []string        `json:"vers"`
}

type templateJSON struct {
	Name  string      `json:"name"`
	Ord   int         `json:"ord"`
	QFmt  string      `json:"qfmt"`
	AFmt  string      `json:"afmt"`
	BQFmt string      `json:"bqfmt"`
	BAFmt string      `json:"bafmt"`
	DID   interface{} `json:"did"`
}

type fieldJSON struct {
	Name   string   `json:"name"`
	Ord    int      `json:"ord"`
	Sticky bool     `json:"sticky"`
	RTL    bool     `json:"rtl"`
	Font   string   `json:"font"`
	Size   int      `json:"size"`
	Media  []string `json:"media"`
}

type deckJSON struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Desc             string `json:"desc"`
	Mod              int64  `json:"mod"`
	USN              int    `json:"usn"`
	Collapsed        bool   `json:"collapsed"`
	BrowserCollapsed bool   `json:"browserCollapsed"`
	NewToday         [2]int `json:"newToday"`
	RevToday         [2]int `json:"revToday"`
	LrnToday         [2]int `json:"lrnToday"`
	TimeToday        [2]int `json:"timeToday"`
	Dyn              int    `json:"dyn"`
	ExtendNew        int    `json:"extendNew"`
	ExtendRev        int    `json:"extendRev"`
	Conf             int    `json:"conf"`
}

type confJSON struct {
	ActiveDecks   []int64 `json:"activeDecks"`
	AddToCur      bool    `json:"addToCur"`
	CollapseTime  int     `json:"collapseTime"`
	CurDeck       int64   `json:"curDeck"`
	CurModel      string  `json:"curModel"`
	DueCounts     bool    `json:"dueCounts"`
	EstTimes      bool    `json:"estTimes"`
	NewBury       bool    `json:"newBury"`
	NewSpread     int     `json:"newSpread"`
	NextPos       int     `json:"nextPos"`
	SortBackwards bool    `json:"sortBackwards"`
	SortType      string  `json:"sortType"`
	TimeLim       int     `json:"timeLim"`
}

const latexPre = "\\documentclass[12pt]{article}\n\\special{papersize=3in,5in}\n" +
	"\\usepackage[utf8]{inputenc}\n\\usepackage{amssymb,amsmath}\n" +
	"\\pagestyle{empty}\n\\setlength{\\parindent}{0in}\n\\begin{document}\n"

const latexPost = "\\end{document}"

// defaultDeckConf is the stock scheduling configuration every deck points
// at; this package does not expose scheduling knobs.
const defaultDeckConf = `{"1": {"id": 1, "name": "Default", "mod": 0, "usn": 0, "maxTaken": 60, "autoplay": true, "timer": 0, "replayq": true, "new": {"bury": true, "delays": [1, 10], "initialFactor": 2500, "ints": [1, 4, 7], "order": 1, "perDay": 20, "separate": true}, "rev": {"bury": true, "ease4": 1.3, "fuzz": 0.05, "ivlFct": 1, "maxIvl": 36500, "minSpace": 1, "perDay": 100}, "lapse": {"delays": [10], "leechAction": 0, "leechFails": 8, "minInt": 1, "mult": 0}}}`

func (m *Model) toJSON() modelJSON {
	tmpls := make([]templateJSON, len(m.Templates))
	for i, t := range m.Templates {
		tmpls[i] = templateJSON{
			Name: t.Name,
			Ord:  i,
			QFmt: t.QFmt,
			AFmt: t.AFmt,
			DID:  nil,
		}
	}
	flds := make([]fieldJSON, len(m.Fields))
	for i, f := range m.Fields {
		flds[i] = fieldJSON{
			Name:  f.Name,
			Ord:   i,
			Font:  "Arial",
			Size:  20,
			Media: []string{},
		}
	}
	// Every template here requires its first referenced field; Anki
	// recomputes this on import anyway.
	req := make([][]interface{}, len(m.Templates))
	for i := range m.Templates {
		req[i] = []interface{}{i, "all", []int{0}}
	}
	return modelJSON{
		ID:        m.ID,
		Name:      m.Name,
		Mod:       collectionEpoch,
		DeckID:    1,
		Templates: tmpls,
		Fields:    flds,
		CSS:       m.CSS,
		LatexPre:  latexPre,
		LatexPost: latexPost,
		Req:       req,
		Tags:      []string{},
		Vers:      []string{},
	}
}

func (d *Deck) toJSON() deckJSON {
	return deckJSON{
		ID:   d.ID,
		Name: d.Name,
		Mod:  collectionEpoch,
		Conf: 1,
	}
}

// writeCollection fills an initialized collection database with the decks'
// models, notes and cards, plus the col configuration row.
func writeCollection(db *sql.DB, decks []*Deck) error {
	models := map[string]modelJSON{}
	var curModel int64
	deckMap := map[string]deckJSON{
		// The stock default deck is always present in a collection.
		"1": {ID: 1, Name: "Default", Mod: collectionEpoch, Conf: 1},
	}
	for _, d := range decks {
		deckMap[strconv.FormatInt(d.ID, 10)] = d.toJSON()
		for _, n := range d.notes {
			key := strconv.FormatInt(n.Model.ID, 10)
			if _, ok := models[key]; !ok {
				models[key] = n.Model.toJSON()
				curModel = n.Model.ID
			}
		}
	}

	modelsBlob, err := json.Marshal(models)
	if err != nil {
		return fmt.Errorf("encoding models: %w", err)
	}
	decksBlob, err := json.Marshal(deckMap)
	if err != nil {
		return fmt.Errorf("encoding decks: %w", err)
	}
	confBlob, err := json.Marshal(confJSON{
		ActiveDecks:  []int64{1},
		AddToCur:     true,
		CollapseTime: 1200,
		CurDeck:      1,
		CurModel:     strconv.FormatInt(curModel, 10),
		DueCounts:    true,
		EstTimes:     true,
		NewBury:      true,
		NextPos:      1,
		SortType:     "noteFld",
	})
	if err != nil {
		return fmt.Errorf("encoding conf: %w", err)
	}

	_, err = db.Exec(
		`INSERT INTO col (id, crt, mod, scm, ver, dty, usn, ls, conf, models, decks, dconf, tags)
		 VALUES (1, ?, ?, ?, 11, 0, 0, 0, ?, ?, ?, ?, '{}')`,
		collectionEpoch, collectionEpoch*1000, collectionEpoch*1000,
		string(confBlob), string(modelsBlob), string(decksBlob), defaultDeckConf,
	)
	if err != nil {
		return fmt.Errorf("writing col row: %w", err)
	}

	// One transaction for all note and card rows.
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	for _, d := range decks {
		for i, n := range d.notes {
			noteID := d.ID*noteIDStride + int64(i)
			_, err := tx.Exec(
				`INSERT INTO notes (id, guid, mid, mod, usn, tags, flds, sfld, csum, flags, data)
				 VALUES (?, ?, ?, ?, -1, '', ?, ?, ?, 0, '')`,
				noteID, n.guid(), n.Model.ID, collectionEpoch,
				n.joinedFields(), n.Fields[0], n.checksum(),
			)
			if err != nil {
				tx.Rollback()
				return fmt.Errorf("writing note %d: %w", i, err)
			}
			for ord := range n.Model.Templates {
				_, err := tx.Exec(
					`INSERT INTO cards (id, nid, did, ord, mod, usn, type, queue, due,
					                    ivl, factor, reps, lapses, left, odue, odid, flags, data)
					 VALUES (?, ?, ?, ?, ?, -1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, '')`,
					noteID*10+int64(ord), noteID, d.ID, ord, collectionEpoch,
				)
				if err != nil {
					tx.Rollback()
					return fmt.Errorf("writing card for note %d: %w", i, err)
				}
			}
		}
	}
	return tx.Commit()
}
