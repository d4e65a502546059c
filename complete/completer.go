// Package complete aggregates completion candidates from an ordered
// set of providers. Providers are consulted in registration order and
// the first non-empty answer wins; a provider can also abort the whole
// round with ErrStopCompletion.
package complete

import (
	"errors"
	"sort"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("husk.complete")

// ErrStopCompletion aborts a completion round: no further providers
// run and the result is empty. Providers return it (or wrap it) when
// they decide that completing here would be wrong, not merely that
// they have nothing to offer.
var ErrStopCompletion = errors.New("stop completion")

// Query is one completion request.
type Query struct {
	// Prefix is the text immediately before the cursor that candidates
	// should replace.
	Prefix string
	// Line is the whole current line.
	Line string
	// Begin and End delimit Prefix within Line, in bytes.
	Begin, End int
	// Context carries extra provider-specific data, such as the names
	// visible at the cursor.
	Context map[string]any
}

// Result is one provider's answer. Replacement is how many bytes
// before the cursor the candidates replace; negative means the
// provider does not care and the query prefix length applies.
type Result struct {
	Candidates  []string
	Replacement int
}

// Provider produces candidates for a query. Returning an empty result
// passes the turn to the next provider.
type Provider func(Query) (Result, error)

// Option configures a Completer.
type Option func(*Completer)

// WithRefresh registers a hook that runs once before the first
// completion, typically to rebuild cached candidate sources.
func WithRefresh(fn func()) Option {
	return func(c *Completer) { c.refresh = fn }
}

// Completer runs the providers of a registry over queries.
type Completer struct {
	reg     *Registry
	refresh func()
}

// New returns a Completer over reg. The refresh hook, if any, runs
// immediately.
func New(reg *Registry, opts ...Option) *Completer {
	c := &Completer{reg: reg}
	for _, opt := range opts {
		opt(c)
	}
	if c.refresh != nil {
		c.refresh()
	}
	return c
}

// Complete consults the providers in registration order and returns
// the first non-empty candidate set, sorted and deduplicated, together
// with the replacement length. A provider error other than
// ErrStopCompletion is logged and the provider skipped.
func (c *Completer) Complete(q Query) ([]string, int) {
	replacement := len(q.Prefix)
	for _, ent := range c.reg.entries() {
		res, err := ent.provider(q)
		if err != nil {
			if errors.Is(err, ErrStopCompletion) {
				log.Debugf("provider %s stopped completion", ent.name)
				return nil, len(q.Prefix)
			}
			log.Warningf("provider %s: %s", ent.name, err.Error())
			continue
		}
		if res.Replacement >= 0 {
			replacement = res.Replacement
		}
		if len(res.Candidates) > 0 {
			return dedup(res.Candidates), replacement
		}
	}
	return nil, replacement
}

func dedup(candidates []string) []string {
	out := make([]string, len(candidates))
	copy(out, candidates)
	sort.Strings(out)
	n := 0
	for i, c := range out {
		if i == 0 || c != out[n-1] {
			out[n] = c
			n++
		}
	}
	return out[:n]
}
