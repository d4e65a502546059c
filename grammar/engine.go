package grammar

import (
	"fmt"
	"sort"
)

// Engine holds a validated grammar and its parse tables. Tables are
// built per start symbol on first use and cached. An Engine is safe to
// reuse across parses but not for concurrent use.
type Engine struct {
	rules  []*rule
	byLHS  map[string][]*rule
	prec   precTable
	tables map[string]*parseTable
}

// ParseError reports that no shift or reduce was possible. Tok is the
// offending token, nil when the input ended unexpectedly.
type ParseError struct {
	Tok   Token
	AtEOF bool
}

func (e *ParseError) Error() string {
	if e.AtEOF {
		return "unexpected end of input"
	}
	return fmt.Sprintf("unexpected token %s", e.Tok.Symbol())
}

type actKind int

const (
	actShift actKind = iota
	actReduce
	actAccept
)

type actionEntry struct {
	kind   actKind
	target int // shift: state, reduce: rule index into parseTable.rules
}

type parseTable struct {
	rules   []*rule // augmented rule first, then declaration order
	action  []map[string]actionEntry
	gotoTbl []map[string]int
	sr, rr  int
}

// Parse consumes tokens from src and builds the value of the start
// symbol. leaf converts each shifted token into its stack value.
func (e *Engine) Parse(src TokenSource, start string, leaf func(Token) Value) (Value, error) {
	tbl, err := e.table(start)
	if err != nil {
		return nil, err
	}

	states := []int{0}
	values := []Value{nil}

	tok, err := src.Next()
	if err != nil {
		return nil, err
	}

	for {
		st := states[len(states)-1]
		ent, ok := tbl.action[st][tok.Symbol()]
		if !ok {
			if tok.Symbol() == EOF {
				return nil, &ParseError{AtEOF: true}
			}
			return nil, &ParseError{Tok: tok}
		}

		switch ent.kind {
		case actShift:
			var v Value
			if leaf != nil {
				v = leaf(tok)
			}
			states = append(states, ent.target)
			values = append(values, v)
			tok, err = src.Next()
			if err != nil {
				return nil, err
			}

		case actReduce:
			r := tbl.rules[ent.target]
			n := len(r.rhs)
			args := make([]Value, n)
			copy(args, values[len(values)-n:])
			states = states[:len(states)-n]
			values = values[:len(values)-n]
			v := r.action(args)
			gotoSt, ok := tbl.gotoTbl[states[len(states)-1]][r.lhs]
			if !ok {
				return nil, fmt.Errorf("grammar: no goto for %s after reduce", r.lhs)
			}
			states = append(states, gotoSt)
			values = append(values, v)

		case actAccept:
			return values[len(values)-1], nil
		}
	}
}

// Conflicts builds the table for start and reports how many
// shift/reduce and reduce/reduce conflicts were resolved by default
// rules (as opposed to the precedence table).
func (e *Engine) Conflicts(start string) (shiftReduce, reduceReduce int, err error) {
	tbl, err := e.table(start)
	if err != nil {
		return 0, 0, err
	}
	return tbl.sr, tbl.rr, nil
}

func (e *Engine) table(start string) (*parseTable, error) {
	if tbl, ok := e.tables[start]; ok {
		return tbl, nil
	}
	tbl, err := e.buildTable(start)
	if err != nil {
		return nil, err
	}
	e.tables[start] = tbl
	return tbl, nil
}

// --- SLR(1) table construction ---------------------------------------

type item struct {
	r int // index into parseTable.rules
	d int // dot position
}

func (e *Engine) buildTable(start string) (*parseTable, error) {
	if len(e.byLHS[start]) == 0 {
		return nil, fmt.Errorf("grammar: unknown start symbol %q", start)
	}

	aug := &rule{index: -1, lhs: acceptSymbol, rhs: []symRef{{name: start}}}
	all := make([]*rule, 0, len(e.rules)+1)
	all = append(all, aug)
	all = append(all, e.rules...)

	lhsRules := make(map[string][]int)
	for i, r := range all {
		lhsRules[r.lhs] = append(lhsRules[r.lhs], i)
	}
	isTerminal := func(name string) bool {
		return len(lhsRules[name]) == 0
	}

	nullable := e.nullableSet(all)
	first := e.firstSets(all, nullable)
	follow := e.followSets(all, nullable, first)

	closure := func(kernel []item) []item {
		seen := make(map[item]bool, len(kernel))
		out := make([]item, 0, len(kernel))
		var add func(it item)
		add = func(it item) {
			if seen[it] {
				return
			}
			seen[it] = true
			out = append(out, it)
			r := all[it.r]
			if it.d < len(r.rhs) && !r.rhs[it.d].terminal {
				for _, ri := range lhsRules[r.rhs[it.d].name] {
					add(item{r: ri, d: 0})
				}
			}
		}
		for _, it := range kernel {
			add(it)
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].r != out[j].r {
				return out[i].r < out[j].r
			}
			return out[i].d < out[j].d
		})
		return out
	}

	stateKey := func(items []item) string {
		key := make([]byte, 0, len(items)*6)
		for _, it := range items {
			key = append(key, fmt.Sprintf("%d.%d,", it.r, it.d)...)
		}
		return string(key)
	}

	var states [][]item
	index := make(map[string]int)
	var trans []map[string]int

	addState := func(items []item) int {
		key := stateKey(items)
		if id, ok := index[key]; ok {
			return id
		}
		id := len(states)
		index[key] = id
		states = append(states, items)
		trans = append(trans, make(map[string]int))
		return id
	}

	addState(closure([]item{{r: 0, d: 0}}))

	for si := 0; si < len(states); si++ {
		moves := make(map[string][]item)
		var order []string
		for _, it := range states[si] {
			r := all[it.r]
			if it.d >= len(r.rhs) {
				continue
			}
			name := r.rhs[it.d].name
			if _, ok := moves[name]; !ok {
				order = append(order, name)
			}
			moves[name] = append(moves[name], item{r: it.r, d: it.d + 1})
		}
		for _, name := range order {
			trans[si][name] = addState(closure(moves[name]))
		}
	}

	tbl := &parseTable{
		rules:   all,
		action:  make([]map[string]actionEntry, len(states)),
		gotoTbl: make([]map[string]int, len(states)),
	}

	for si := range states {
		tbl.action[si] = make(map[string]actionEntry)
		tbl.gotoTbl[si] = make(map[string]int)
		for name, target := range trans[si] {
			if isTerminal(name) {
				tbl.action[si][name] = actionEntry{kind: actShift, target: target}
			} else {
				tbl.gotoTbl[si][name] = target
			}
		}
		for _, it := range states[si] {
			r := all[it.r]
			if it.d != len(r.rhs) {
				continue
			}
			if it.r == 0 {
				tbl.action[si][EOF] = actionEntry{kind: actAccept}
				continue
			}
			for _, t := range sortedSet(follow[r.lhs]) {
				tbl.addReduce(si, t, it.r, e.prec)
			}
		}
	}

	return tbl, nil
}

// addReduce installs a reduce action, resolving conflicts the way yacc
// does: precedence first, associativity on ties, shift by default for
// unranked shift/reduce conflicts, earliest rule for reduce/reduce.
func (tbl *parseTable) addReduce(state int, t string, ruleIdx int, prec precTable) {
	m := tbl.action[state]
	existing, ok := m[t]
	if !ok {
		m[t] = actionEntry{kind: actReduce, target: ruleIdx}
		return
	}
	switch existing.kind {
	case actAccept:
		return
	case actReduce:
		tbl.rr++
		if ruleIdx < existing.target {
			m[t] = actionEntry{kind: actReduce, target: ruleIdx}
		}
	case actShift:
		tp := prec[t].level
		rp := rulePrecLevel(tbl.rules[ruleIdx], prec)
		switch {
		case tp == 0 || rp == 0:
			tbl.sr++ // keep the shift
		case rp > tp:
			m[t] = actionEntry{kind: actReduce, target: ruleIdx}
		case rp < tp:
			// keep the shift
		default:
			switch prec[t].assoc {
			case Left:
				m[t] = actionEntry{kind: actReduce, target: ruleIdx}
			case Right:
				// keep the shift
			case NonAssoc:
				delete(m, t)
			}
		}
	}
}

// rulePrecLevel is the precedence of a production: the %prec override
// if set, otherwise the level of the rightmost terminal.
func rulePrecLevel(r *rule, prec precTable) int {
	if r.precTok != "" {
		return prec[r.precTok].level
	}
	for i := len(r.rhs) - 1; i >= 0; i-- {
		if r.rhs[i].terminal {
			return prec[r.rhs[i].name].level
		}
	}
	return 0
}

func (e *Engine) nullableSet(all []*rule) map[string]bool {
	nullable := make(map[string]bool)
	for changed := true; changed; {
		changed = false
		for _, r := range all {
			if nullable[r.lhs] {
				continue
			}
			ok := true
			for _, s := range r.rhs {
				if s.terminal || !nullable[s.name] {
					ok = false
					break
				}
			}
			if ok {
				nullable[r.lhs] = true
				changed = true
			}
		}
	}
	return nullable
}

func (e *Engine) firstSets(all []*rule, nullable map[string]bool) map[string]map[string]bool {
	first := make(map[string]map[string]bool)
	add := func(nt, t string) bool {
		m := first[nt]
		if m == nil {
			m = make(map[string]bool)
			first[nt] = m
		}
		if m[t] {
			return false
		}
		m[t] = true
		return true
	}
	for changed := true; changed; {
		changed = false
		for _, r := range all {
			for _, s := range r.rhs {
				if s.terminal {
					if add(r.lhs, s.name) {
						changed = true
					}
					break
				}
				for t := range first[s.name] {
					if add(r.lhs, t) {
						changed = true
					}
				}
				if !nullable[s.name] {
					break
				}
			}
		}
	}
	return first
}

func (e *Engine) followSets(all []*rule, nullable map[string]bool, first map[string]map[string]bool) map[string]map[string]bool {
	follow := map[string]map[string]bool{
		acceptSymbol: {EOF: true},
	}
	add := func(nt, t string) bool {
		m := follow[nt]
		if m == nil {
			m = make(map[string]bool)
			follow[nt] = m
		}
		if m[t] {
			return false
		}
		m[t] = true
		return true
	}

	firstOfRest := func(rest []symRef) (map[string]bool, bool) {
		set := make(map[string]bool)
		for _, s := range rest {
			if s.terminal {
				set[s.name] = true
				return set, false
			}
			for t := range first[s.name] {
				set[t] = true
			}
			if !nullable[s.name] {
				return set, false
			}
		}
		return set, true
	}

	for changed := true; changed; {
		changed = false
		for _, r := range all {
			for i, s := range r.rhs {
				if s.terminal {
					continue
				}
				set, restNullable := firstOfRest(r.rhs[i+1:])
				for t := range set {
					if add(s.name, t) {
						changed = true
					}
				}
				if restNullable {
					for t := range follow[r.lhs] {
						if add(s.name, t) {
							changed = true
						}
					}
				}
			}
		}
	}
	return follow
}

func sortedSet(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
