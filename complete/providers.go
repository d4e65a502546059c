package complete

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/husklang/husk/syntax"
)

// Keywords completes language keywords, plus any extra words the
// configuration declares.
func Keywords(extra ...string) Provider {
	words := append(syntax.Keywords(), extra...)
	return func(q Query) (Result, error) {
		return Result{Candidates: filterPrefix(words, q.Prefix), Replacement: -1}, nil
	}
}

// contextNamesKey is the Context entry holding the names visible at
// the cursor, a []string.
const contextNamesKey = "names"

// WithNames returns a copy of q whose context carries the given
// visible names for the Names provider.
func WithNames(q Query, names []string) Query {
	if q.Context == nil {
		q.Context = map[string]any{}
	}
	q.Context[contextNamesKey] = names
	return q
}

// Names completes identifiers from the query context, typically the
// names bound in the source being edited.
func Names() Provider {
	return func(q Query) (Result, error) {
		names, _ := q.Context[contextNamesKey].([]string)
		return Result{Candidates: filterPrefix(names, q.Prefix), Replacement: -1}, nil
	}
}

// Paths completes filesystem paths. It only answers when the prefix
// looks like a path, so earlier providers keep identifier queries.
func Paths() Provider {
	return func(q Query) (Result, error) {
		if !strings.ContainsAny(q.Prefix, "/~.") {
			return Result{Replacement: -1}, nil
		}
		prefix := q.Prefix
		if strings.HasPrefix(prefix, "~") {
			home, err := os.UserHomeDir()
			if err != nil {
				return Result{}, err
			}
			prefix = home + prefix[1:]
		}
		dir, base := filepath.Split(prefix)
		if dir == "" {
			dir = "."
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			return Result{}, err
		}
		var candidates []string
		for _, ent := range entries {
			name := ent.Name()
			if !strings.HasPrefix(name, base) {
				continue
			}
			if ent.IsDir() {
				name += string(filepath.Separator)
			}
			candidates = append(candidates, name)
		}
		// Candidates replace only the basename under the cursor.
		return Result{Candidates: candidates, Replacement: len(base)}, nil
	}
}

func filterPrefix(words []string, prefix string) []string {
	var out []string
	for _, w := range words {
		if strings.HasPrefix(w, prefix) {
			out = append(out, w)
		}
	}
	return out
}
