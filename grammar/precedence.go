package grammar

// Assoc is the associativity of one precedence level.
type Assoc int

const (
	Left Assoc = iota
	Right
	NonAssoc
)

func (a Assoc) String() string {
	switch a {
	case Left:
		return "left"
	case Right:
		return "right"
	case NonAssoc:
		return "nonassoc"
	}
	return "unknown"
}

// Level is one group of equal-precedence terminals.
type Level struct {
	Assoc  Assoc
	Tokens []string
}

// Precedence is an ordered list of levels, lowest precedence first.
// Terminals within one level share precedence; terminals absent from
// the table have none.
type Precedence []Level

// precTable maps terminal name to (level, assoc). Level numbering
// starts at 1 so that 0 can mean "no precedence".
type precTable map[string]struct {
	level int
	assoc Assoc
}

func (p Precedence) table() precTable {
	t := make(precTable)
	for i, lvl := range p {
		for _, tok := range lvl.Tokens {
			t[tok] = struct {
				level int
				assoc Assoc
			}{level: i + 1, assoc: lvl.Assoc}
		}
	}
	return t
}
