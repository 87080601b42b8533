// Package deck maps vocabulary records onto the fixed Chinese flashcard
// layout: hanzi alone on the front, pinyin and both translations plus an
// example sentence on the back.
package deck

import (
	"github.com/mbruckner/hanzideck/pkg/anki"
	"github.com/mbruckner/hanzideck/pkg/vocab"
)

// Defaults for the generated deck. The identifiers must remain stable
// across runs that are meant to update the same logical deck in Anki;
// changing either makes the next import create a new deck or note type.
const (
	DefaultName            = "Chinese Vocabulary"
	DefaultDeckID    int64 = 2059400110
	DefaultModelID   int64 = 1607392319
	defaultModelName       = "ChineseCharacterModel"
)

// frontTemplate shows the character alone, centered and large.
const frontTemplate = `<div style="display:flex; justify-content:center; align-items:center; height:100%;">
  <span style="font-size: 72px; font-family: Arial, sans-serif;">{{Hanzi}}</span>
</div>`

// backTemplate repeats the front, then lists the labeled answer fields
// below a divider.
const backTemplate = `{{FrontSide}}
<hr id="answer-divider">
<div style="text-align:center; margin-top: 20px;">
  <div style="font-size: 24px; font-family: Arial, sans-serif; margin-bottom: 10px;">
    <strong>Pinyin:</strong> {{Pinyin}}
  </div>
  <div style="font-size: 24px; font-family: Arial, sans-serif; margin-bottom: 10px;">
    <strong>English:</strong> {{English}}
  </div>
  <div style="font-size: 24px; font-family: Arial, sans-serif; margin-bottom: 10px;">
    <strong>German:</strong> {{German}}
  </div>
  <div style="font-size: 24px; font-family: Arial, sans-serif; margin-top: 10px;">
    <strong>Example:</strong> {{Sentence}}
  </div>
</div>`

const styleSheet = `.card {
  text-align: center;
  font-family: Arial, sans-serif;
  background-color: #ffffff;
  color: #000000;
}

#answer-divider {
  margin-top: 20px;
  margin-bottom: 20px;
  border: none;
  border-top: 1px solid #cccccc;
}`

// NewChineseModel returns the fixed five-field note type.
func NewChineseModel(modelID int64) *anki.Model {
	return anki.NewModel(modelID, defaultModelName,
		[]anki.Field{
			{Name: "Hanzi"},
			{Name: "Pinyin"},
			{Name: "English"},
			{Name: "German"},
			{Name: "Sentence"},
		},
		[]anki.CardTemplate{
			{Name: "Card 1", QFmt: frontTemplate, AFmt: backTemplate},
		},
		styleSheet)
}

// Build creates one note per record, fields bound positionally, in input
// order. Records are passed through unmodified; the loader has already
// validated their shape, so the only conceivable error is a field-count
// mismatch, which is propagated unchanged.
func Build(records []vocab.Record, name string, deckID, modelID int64) (*anki.Deck, error) {
	model := NewChineseModel(modelID)
	d := anki.NewDeck(deckID, name)
	for _, r := range records {
		note, err := anki.NewNote(model, r.Fields())
		if err != nil {
			return nil, err
		}
		d.AddNote(note)
	}
	return d, nil
}
