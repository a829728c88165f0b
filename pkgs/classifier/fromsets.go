package classifier

import (
	"github.com/opal-lang/kul/pkgs/kulerr"
	"github.com/opal-lang/kul/pkgs/position"
)

// FromSets builds a Table from explicit nest-start, nest-end, escape,
// and whitespace rune sets. A rune claimed by more than one set is a
// configuration error, not a silent precedence rule — the parser's
// state machine assumes the four classes are mutually exclusive per
// character. An empty whitespace set is not an error: it means "defer
// to unicode.IsSpace", the same as the default classifier.
func FromSets(nestStart, nestEnd, escape, whitespace []rune) (*Table, error) {
	t := &Table{
		nestStart:  toSet(nestStart),
		nestEnd:    toSet(nestEnd),
		escape:     toSet(escape),
		whitespace: toSet(whitespace),
	}

	labeled := []struct {
		name string
		set  map[rune]struct{}
	}{
		{"nest_start", t.nestStart},
		{"nest_end", t.nestEnd},
		{"escape", t.escape},
		{"whitespace", t.whitespace},
	}
	for i := range labeled {
		for j := i + 1; j < len(labeled); j++ {
			for r := range labeled[i].set {
				if _, clash := labeled[j].set[r]; clash {
					return nil, kulerr.New(kulerr.KindClassifierConflict, position.Ignored{},
						"character assigned to more than one class").
						WithContext("char", string(r)).
						WithContext("classes", [2]string{labeled[i].name, labeled[j].name})
				}
			}
		}
	}

	return t, nil
}

func toSet(runes []rune) map[rune]struct{} {
	set := make(map[rune]struct{}, len(runes))
	for _, r := range runes {
		set[r] = struct{}{}
	}
	return set
}
