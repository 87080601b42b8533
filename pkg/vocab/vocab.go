// Package vocab loads vocabulary entries from a literal-expression text file.
// The expected shape is a list of 5-tuples:
//
//	[
//	    ('男', 'nán', 'man', 'Mann', '他是一个男人。'),
//	    ('学', 'xué', 'to study', 'lernen', '我喜欢学习中文。'),
//	]
package vocab

import (
	"fmt"
	"os"

	"github.com/mbruckner/hanzideck/pkg/literal"
)

// FieldCount is the fixed arity of a vocabulary entry.
const FieldCount = 5

// Record is one vocabulary entry. Field contents are passed through
// verbatim; nothing here validates that Hanzi is actually Chinese or that
// any field is non-empty.
type Record struct {
	Hanzi    string
	Pinyin   string
	English  string
	German   string
	Sentence string
}

// Fields returns the record's values in template order.
func (r Record) Fields() []string {
	return []string{r.Hanzi, r.Pinyin, r.English, r.German, r.Sentence}
}

// SchemaError reports a parsed value that does not have the expected
// list-of-5-tuples shape. Index is -1 when the top-level value itself is at
// fault, otherwise it identifies the first offending element.
type SchemaError struct {
	Index int
	Value string
}

func (e *SchemaError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("expected a list of 5-tuples, got %s", e.Value)
	}
	return fmt.Sprintf("entry %d is not a 5-tuple: %s", e.Index, e.Value)
}

// Load reads path, parses it as a literal expression and validates the
// list-of-5-tuples shape. It fails on the first problem; there is no
// skip-and-continue mode.
func Load(path string) ([]Record, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		// Keeps fs.ErrNotExist reachable through errors.Is.
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	parsed, err := literal.Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	list, ok := parsed.(literal.List)
	if !ok {
		return nil, &SchemaError{Index: -1, Value: describe(parsed)}
	}

	records := make([]Record, 0, len(list.Items))
	for i, item := range list.Items {
		tuple, ok := item.(literal.Tuple)
		if !ok || len(tuple.Items) != FieldCount {
			return nil, &SchemaError{Index: i, Value: item.String()}
		}
		records = append(records, Record{
			Hanzi:    text(tuple.Items[0]),
			Pinyin:   text(tuple.Items[1]),
			English:  text(tuple.Items[2]),
			German:   text(tuple.Items[3]),
			Sentence: text(tuple.Items[4]),
		})
	}
	return records, nil
}

// text extracts the string content of a field. Non-string values inside a
// well-formed tuple are rendered in literal notation rather than rejected;
// shape is validated, content is not.
func text(v literal.Value) string {
	if s, ok := v.(literal.String); ok {
		return s.Value
	}
	return v.String()
}

// describe names the top-level value for the schema diagnostic without
// dumping a potentially large rendering.
func describe(v literal.Value) string {
	switch v.(type) {
	case literal.Tuple:
		return "a tuple"
	case literal.String:
		return "a string"
	case literal.Int, literal.Float:
		return "a number"
	case literal.Bool:
		return "a boolean"
	case literal.None:
		return "None"
	}
	return v.String()
}
