package syntax

import "github.com/emirpasic/gods/stacks/arraystack"

// ScopeStack tracks which names are bound at each nesting level and
// whether a name is currently bound as a type. Grammar actions use it to
// disambiguate role-sensitive constructs; most actions never consult it.
//
// The global scope always exists: Pop never removes the last scope.
type ScopeStack struct {
	stack *arraystack.Stack
}

func NewScopeStack() *ScopeStack {
	s := &ScopeStack{stack: arraystack.New()}
	s.stack.Push(map[string]bool{})
	return s
}

// Reset discards every scope and restores a single empty global scope.
func (s *ScopeStack) Reset() {
	s.stack.Clear()
	s.stack.Push(map[string]bool{})
}

// Push enters a new innermost scope.
func (s *ScopeStack) Push() {
	s.stack.Push(map[string]bool{})
}

// Pop leaves the innermost scope. The global scope is never popped.
func (s *ScopeStack) Pop() {
	if s.stack.Size() > 1 {
		s.stack.Pop()
	}
}

// Bind records name in the innermost scope. isType marks the name as
// naming a type in this scope.
func (s *ScopeStack) Bind(name string, isType bool) {
	top, _ := s.stack.Peek()
	top.(map[string]bool)[name] = isType
}

// Lookup searches the scopes innermost-out. It returns the role flag of
// the nearest binding, and whether any binding exists.
func (s *ScopeStack) Lookup(name string) (isType, ok bool) {
	// arraystack values are ordered LIFO, so the innermost scope is
	// visited first.
	for _, v := range s.stack.Values() {
		if isType, ok = v.(map[string]bool)[name]; ok {
			return isType, true
		}
	}
	return false, false
}

// Depth returns the number of open scopes, including the global scope.
func (s *ScopeStack) Depth() int {
	return s.stack.Size()
}
