package anki_package

import (
	"crypto/sha1"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Anki collection schema, version 11. A single col row holds the JSON
// configuration blobs; notes and cards carry the content.
const collectionSchema = `
CREATE TABLE col (
    id integer primary key,
    crt integer not null,
    mod integer not null,
    scm integer not null,
    ver integer not null,
    dty integer not null,
    usn integer not null,
    ls integer not null,
    conf text not null,
    models text not null,
    decks text not null,
    dconf text not null,
    tags text not null
);
CREATE TABLE notes (
    id integer primary key,
    guid text not null,
    mid integer not null,
    mod integer not null,
    usn integer not null,
    tags text not null,
    flds text not null,
    sfld integer not null,
    csum integer not null,
    flags integer not null,
    data text not null
);
CREATE TABLE cards (
    id integer primary key,
    nid integer not null,
    did integer not null,
    ord integer not null,
    mod integer not null,
    usn integer not null,
    type integer not null,
    queue integer not null,
    due integer not null,
    ivl integer not null,
    factor integer not null,
    reps integer not null,
    lapses integer not null,
    left integer not null,
    odue integer not null,
    odid integer not null,
    flags integer not null,
    data text not null
);
CREATE TABLE revlog (
    id integer primary key,
    cid integer not null,
    usn integer not null,
    ease integer not null,
    ivl integer not null,
    lastIvl integer not null,
    factor integer not null,
    time integer not null,
    type integer not null
);
CREATE TABLE graves (
    usn integer not null,
    oid integer not null,
    type integer not null
);
CREATE INDEX ix_notes_usn on notes (usn);
CREATE INDEX ix_cards_usn on cards (usn);
CREATE INDEX ix_revlog_usn on revlog (usn);
CREATE INDEX ix_cards_nid on cards (nid);
CREATE INDEX ix_cards_sched on cards (did, queue, due);
CREATE INDEX ix_revlog_cid on revlog (cid);
CREATE INDEX ix_notes_csum on notes (csum);
`

const defaultDeckConf = `{"1": {"id": 1, "name": "Default", "autoplay": true, "dyn": 0, "lapse": {"delays": [10], "leechAction": 0, "leechFails": 8, "minInt": 1, "mult": 0}, "maxTaken": 60, "new": {"bury": true, "delays": [1, 10], "initialFactor": 2500, "ints": [1, 4, 7], "order": 1, "perDay": 20, "separate": true}, "replayq": true, "rev": {"bury": true, "ease4": 1.3, "fuzz": 0.05, "ivlFct": 1, "maxIvl": 36500, "minSpace": 1, "perDay": 100}, "timer": 0, "usn": 0}}`

const (
	schemaVersion  = 11
	newCardFactor  = 2500
	latexPreamble  = "\\documentclass[12pt]{article}\n\\special{papersize=3in,5in}\n\\usepackage[utf8]{inputenc}\n\\usepackage{amssymb,amsmath}\n\\pagestyle{empty}\n\\setlength{\\parindent}{0in}\n\\begin{document}\n"
	latexPostamble = "\\end{document}"
)

type jsonField struct {
	Name   string   `json:"name"`
	Ord    int      `json:"ord"`
	Sticky bool     `json:"sticky"`
	RTL    bool     `json:"rtl"`
	Font   string   `json:"font"`
	Size   int      `json:"size"`
	Media  []string `json:"media"`
}

type jsonTemplate struct {
	Name  string `json:"name"`
	Ord   int    `json:"ord"`
	Qfmt  string `json:"qfmt"`
	Afmt  string `json:"afmt"`
	Bqfmt string `json:"bqfmt"`
	Bafmt string `json:"bafmt"`
	DID   *int64 `json:"did"`
}

type jsonModel struct {
	ID        int64          `json:"id"`
	Name      string         `json:"name"`
	Type      int            `json:"type"`
	Mod       int64          `json:"mod"`
	Usn       int            `json:"usn"`
	SortField int            `json:"sortf"`
	DeckID    int64          `json:"did"`
	Templates []jsonTemplate `json:"tmpls"`
	Fields    []jsonField    `json:"flds"`
	CSS       string         `json:"css"`
	LatexPre  string         `json:"latexPre"`
	LatexPost string         `json:"latexPost"`
	Req       [][]any        `json:"req"`
}

type jsonDeck struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Desc             string `json:"desc"`
	Dyn              int    `json:"dyn"`
	Collapsed        bool   `json:"collapsed"`
	BrowserCollapsed bool   `json:"browserCollapsed"`
	Usn              int    `json:"usn"`
	Mod              int64  `json:"mod"`
	NewToday         [2]int `json:"newToday"`
	RevToday         [2]int `json:"revToday"`
	LrnToday         [2]int `json:"lrnToday"`
	TimeToday        [2]int `json:"timeToday"`
	Conf             int    `json:"conf"`
	ExtendNew        int    `json:"extendNew"`
	ExtendRev        int    `json:"extendRev"`
}

func (m Model) toJSON(mod int64) jsonModel {
	fields := make([]jsonField, len(m.Fields))
	for i, name := range m.Fields {
		fields[i] = jsonField{Name: name, Ord: i, Font: "Arial", Size: 20, Media: []string{}}
	}
	templates := make([]jsonTemplate, len(m.Templates))
	req := make([][]any, len(m.Templates))
	for i, tmpl := range m.Templates {
		templates[i] = jsonTemplate{Name: tmpl.Name, Ord: i, Qfmt: tmpl.Front, Afmt: tmpl.Back}
		req[i] = []any{i, "all", []int{0}}
	}
	return jsonModel{
		ID:        m.ID,
		Name:      m.Name,
		Mod:       mod,
		Usn:       -1,
		DeckID:    1,
		Templates: templates,
		Fields:    fields,
		CSS:       m.CSS,
		LatexPre:  latexPreamble,
		LatexPost: latexPostamble,
		Req:       req,
	}
}

func deckJSON(id int64, name string, mod int64) jsonDeck {
	return jsonDeck{ID: id, Name: name, Usn: -1, Mod: mod, Conf: 1}
}

// writeCollection builds the collection database for the given decks at
// dbPath. Note and card rows get identifiers derived from the current time,
// like Anki itself assigns them; deck and model IDs stay name-stable.
func writeCollection(dbPath string, decks []*Deck) error {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open collection database: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(collectionSchema); err != nil {
		return fmt.Errorf("failed to create collection schema: %w", err)
	}

	now := time.Now()
	nowSec := now.Unix()
	nowMilli := now.UnixMilli()

	models := map[string]jsonModel{}
	var firstModelID int64
	deckMap := map[string]jsonDeck{
		"1": deckJSON(1, "Default", nowSec),
	}
	for _, deck := range decks {
		deckMap[strconv.FormatInt(deck.ID, 10)] = deckJSON(deck.ID, deck.Name, nowSec)
		for _, note := range deck.notes {
			key := strconv.FormatInt(note.Model.ID, 10)
			if _, ok := models[key]; !ok {
				models[key] = note.Model.toJSON(nowSec)
				if firstModelID == 0 {
					firstModelID = note.Model.ID
				}
			}
		}
	}

	conf := map[string]any{
		"activeDecks":   []int{1},
		"addToCur":      true,
		"collapseTime":  1200,
		"curDeck":       1,
		"curModel":      strconv.FormatInt(firstModelID, 10),
		"dueCounts":     true,
		"estTimes":      true,
		"newBury":       true,
		"newSpread":     0,
		"nextPos":       1,
		"sortBackwards": false,
		"sortType":      "noteFld",
		"timeLim":       0,
	}

	confJSON, err := json.Marshal(conf)
	if err != nil {
		return err
	}
	modelsJSON, err := json.Marshal(models)
	if err != nil {
		return err
	}
	decksJSON, err := json.Marshal(deckMap)
	if err != nil {
		return err
	}

	_, err = db.Exec(
		`INSERT INTO col (id, crt, mod, scm, ver, dty, usn, ls, conf, models, decks, dconf, tags)
		 VALUES (1, ?, ?, ?, ?, 0, 0, 0, ?, ?, ?, ?, '{}')`,
		nowSec, nowMilli, nowMilli, schemaVersion,
		string(confJSON), string(modelsJSON), string(decksJSON), defaultDeckConf,
	)
	if err != nil {
		return fmt.Errorf("failed to write collection row: %w", err)
	}

	insertNote, err := db.Prepare(
		`INSERT INTO notes (id, guid, mid, mod, usn, tags, flds, sfld, csum, flags, data)
		 VALUES (?, ?, ?, ?, -1, '', ?, ?, ?, 0, '')`)
	if err != nil {
		return err
	}
	defer insertNote.Close()

	insertCard, err := db.Prepare(
		`INSERT INTO cards (id, nid, did, ord, mod, usn, type, queue, due, ivl, factor,
		                    reps, lapses, left, odue, odid, flags, data)
		 VALUES (?, ?, ?, ?, ?, -1, 0, 0, ?, 0, ?, 0, 0, 0, 0, 0, 0, '')`)
	if err != nil {
		return err
	}
	defer insertCard.Close()

	noteID := nowMilli
	cardID := nowMilli + 1
	due := 1
	for _, deck := range decks {
		for _, note := range deck.notes {
			if err := note.validate(); err != nil {
				return err
			}
			flds := strings.Join(note.Fields, "\x1f")
			sortField := note.Fields[0]
			if _, err := insertNote.Exec(noteID, note.guid(), note.Model.ID, nowSec,
				flds, sortField, fieldChecksum(sortField)); err != nil {
				return fmt.Errorf("failed to insert note: %w", err)
			}
			for ord := range note.Model.Templates {
				if _, err := insertCard.Exec(cardID, noteID, deck.ID, ord, nowSec,
					due, newCardFactor); err != nil {
					return fmt.Errorf("failed to insert card: %w", err)
				}
				cardID++
				due++
			}
			noteID++
			cardID++
		}
	}

	return nil
}

// fieldChecksum is Anki's duplicate-detection checksum: the integer value of
// the first 8 hex digits of the SHA1 of the sort field.
func fieldChecksum(sortField string) int64 {
	sum := sha1.Sum([]byte(sortField))
	v, err := strconv.ParseInt(hex.EncodeToString(sum[:])[:8], 16, 64)
	if err != nil {
		panic(err)
	}
	return v
}
