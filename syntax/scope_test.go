package syntax

import "testing"

func TestScopeStackLookup(t *testing.T) {
	s := NewScopeStack()
	s.Bind("Foo", true)
	s.Bind("bar", false)

	if isType, ok := s.Lookup("Foo"); !ok || !isType {
		t.Errorf("Lookup(Foo) = (%v, %v), want (true, true)", isType, ok)
	}
	if isType, ok := s.Lookup("bar"); !ok || isType {
		t.Errorf("Lookup(bar) = (%v, %v), want (false, true)", isType, ok)
	}
	if _, ok := s.Lookup("missing"); ok {
		t.Error("Lookup(missing) found a binding")
	}
}

func TestScopeStackShadowing(t *testing.T) {
	s := NewScopeStack()
	s.Bind("x", true)
	s.Push()
	s.Bind("x", false)

	if isType, ok := s.Lookup("x"); !ok || isType {
		t.Errorf("inner Lookup(x) = (%v, %v), want shadowed (false, true)", isType, ok)
	}
	s.Pop()
	if isType, ok := s.Lookup("x"); !ok || !isType {
		t.Errorf("outer Lookup(x) = (%v, %v), want (true, true)", isType, ok)
	}
}

func TestScopeStackGlobalNeverPopped(t *testing.T) {
	s := NewScopeStack()
	s.Bind("x", false)
	s.Pop()
	s.Pop()
	if s.Depth() != 1 {
		t.Fatalf("Depth = %d, want 1", s.Depth())
	}
	if _, ok := s.Lookup("x"); !ok {
		t.Error("global binding lost after extra Pops")
	}
}

func TestScopeStackReset(t *testing.T) {
	s := NewScopeStack()
	s.Bind("x", false)
	s.Push()
	s.Bind("y", true)
	s.Reset()

	if s.Depth() != 1 {
		t.Errorf("Depth after Reset = %d, want 1", s.Depth())
	}
	for _, name := range []string{"x", "y"} {
		if _, ok := s.Lookup(name); ok {
			t.Errorf("Lookup(%s) after Reset found a binding", name)
		}
	}
}
