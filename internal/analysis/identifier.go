package analysis

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/KaramelBytes/tabloom-cli/internal/table"
)

// SyntheticIDColumn is the name of the generated identifier column.
const SyntheticIDColumn = "_synthetic_id"

// nameMatchUniqueness is the distinct/rows ratio a name-matched identifier must reach.
const nameMatchUniqueness = 0.95

// maxIdentifierMeanLength rejects free-text columns as identifiers.
const maxIdentifierMeanLength = 50

// IDColumnPatterns are name fragments that suggest an identifier column.
var IDColumnPatterns = []string{
	"id", "codigo", "code", "identificacao", "identificador", "key", "chave", "registro",
	"matricula", "numero", "num", "ref", "referencia", "index", "indice", "pk", "primary_key",
	"cpf", "cnpj", "rg", "cnh", "sku", "ean", "upc", "barcode", "serial", "nf", "nota_fiscal",
	"pedido", "order", "ticket", "protocolo", "hash",
}

// Identifier is the resolved row identity of a table.
type Identifier struct {
	Column    string `json:"column"`
	Synthetic bool   `json:"synthetic"`
}

var nameSeparators = strings.NewReplacer("_", "", "-", "", " ", "")

// MatchesIDPattern reports whether a column name looks like an identifier: equal to a pattern
// once separators are dropped, or starting/ending with the pattern next to a separator.
func MatchesIDPattern(name string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	clean := nameSeparators.Replace(lower)
	for _, p := range IDColumnPatterns {
		if clean == nameSeparators.Replace(p) {
			return true
		}
		for _, sep := range []string{"_", "-", " "} {
			if strings.HasPrefix(lower, p+sep) || strings.HasSuffix(lower, sep+p) {
				return true
			}
		}
	}
	return false
}

// FindNativeIdentifier returns the best existing identifier column. Name matches with a
// uniqueness ratio of at least 0.95 come first, then the first fully unique column without
// nulls (text columns must have a mean length below 50).
func FindNativeIdentifier(t *table.Table) (string, bool) {
	if t == nil || t.Len() == 0 {
		return "", false
	}
	rows := float64(t.Len())
	cols := t.Columns()
	for _, c := range cols {
		if MatchesIDPattern(c.Name) && float64(c.Distinct())/rows >= nameMatchUniqueness {
			return c.Name, true
		}
	}
	for _, c := range cols {
		if c.HasNulls() || c.Distinct() != c.Len() {
			continue
		}
		if c.IsNumeric() || c.MeanLength() < maxIdentifierMeanLength {
			return c.Name, true
		}
	}
	return "", false
}

// IDGenerator produces one identifier value per call.
type IDGenerator func() string

// EnsureIdentifier resolves the identifier and returns a table whose first column holds it.
// A synthetic column of random UUIDs is prepended when no native column qualifies. An empty table
// is returned unchanged with ok=false.
func EnsureIdentifier(t *table.Table, gen IDGenerator) (*table.Table, Identifier, bool, error) {
	if t == nil || t.Len() == 0 {
		return t, Identifier{}, false, nil
	}
	if name, ok := FindNativeIdentifier(t); ok {
		moved, err := t.MoveFirst(name)
		if err != nil {
			return nil, Identifier{}, false, fmt.Errorf("move identifier: %w", err)
		}
		return moved, Identifier{Column: name}, true, nil
	}
	if gen == nil {
		gen = uuid.NewString
	}
	name := SyntheticIDColumn
	for i := 2; ; i++ {
		if _, taken := t.Column(name); !taken {
			break
		}
		name = fmt.Sprintf("%s_%d", SyntheticIDColumn, i)
	}
	ids := make([]string, t.Len())
	for i := range ids {
		ids[i] = gen()
	}
	col := table.NewColumn(name, ids)
	col.ForceText()
	out, err := t.Prepend(col)
	if err != nil {
		return nil, Identifier{}, false, fmt.Errorf("add synthetic identifier: %w", err)
	}
	return out, Identifier{Column: name, Synthetic: true}, true, nil
}
