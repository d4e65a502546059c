package complete

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixed(candidates ...string) Provider {
	return func(Query) (Result, error) {
		return Result{Candidates: candidates, Replacement: -1}, nil
	}
}

func empty() Provider {
	return func(Query) (Result, error) {
		return Result{Replacement: -1}, nil
	}
}

func TestCompleteFirstNonEmptyWins(t *testing.T) {
	reg := NewRegistry()
	reg.Add("first", empty())
	reg.Add("second", fixed("bar", "foo"))
	reg.Add("third", fixed("never"))

	got, repl := New(reg).Complete(Query{Prefix: "f"})
	assert.Equal(t, []string{"bar", "foo"}, got)
	assert.Equal(t, 1, repl)
}

func TestCompleteSortsAndDedups(t *testing.T) {
	reg := NewRegistry()
	reg.Add("p", fixed("zz", "aa", "mm", "aa"))

	got, _ := New(reg).Complete(Query{})
	assert.Equal(t, []string{"aa", "mm", "zz"}, got)
}

func TestCompleteStopSignal(t *testing.T) {
	reg := NewRegistry()
	ran := false
	reg.Add("stopper", func(Query) (Result, error) {
		return Result{}, fmt.Errorf("inside a string: %w", ErrStopCompletion)
	})
	reg.Add("after", func(Query) (Result, error) {
		ran = true
		return Result{Candidates: []string{"x"}}, nil
	})

	got, repl := New(reg).Complete(Query{Prefix: "abc"})
	assert.Empty(t, got)
	assert.Equal(t, 3, repl, "stop falls back to the prefix length")
	assert.False(t, ran, "providers after the stop must not run")
}

func TestCompleteSkipsFailingProvider(t *testing.T) {
	reg := NewRegistry()
	reg.Add("broken", func(Query) (Result, error) {
		return Result{}, errors.New("boom")
	})
	reg.Add("working", fixed("ok"))

	got, _ := New(reg).Complete(Query{})
	assert.Equal(t, []string{"ok"}, got)
}

func TestCompleteReplacementLength(t *testing.T) {
	reg := NewRegistry()
	reg.Add("partial", func(Query) (Result, error) {
		return Result{Candidates: []string{"base"}, Replacement: 2}, nil
	})
	got, repl := New(reg).Complete(Query{Prefix: "dir/ba"})
	assert.Equal(t, []string{"base"}, got)
	assert.Equal(t, 2, repl)

	// With no provider reporting, the prefix length applies.
	reg = NewRegistry()
	reg.Add("quiet", empty())
	got, repl = New(reg).Complete(Query{Prefix: "abcd"})
	assert.Empty(t, got)
	assert.Equal(t, 4, repl)
}

func TestCompleteRefreshHook(t *testing.T) {
	calls := 0
	reg := NewRegistry()
	reg.Add("p", empty())
	c := New(reg, WithRefresh(func() { calls++ }))
	c.Complete(Query{})
	c.Complete(Query{})
	assert.Equal(t, 1, calls, "refresh runs once, at construction")
}

func TestRegistryOrder(t *testing.T) {
	reg := NewRegistry()
	reg.Add("a", empty())
	reg.Add("b", empty())
	reg.Add("c", empty())
	assert.Equal(t, []string{"a", "b", "c"}, reg.Names())

	reg.Remove("b")
	assert.Equal(t, []string{"a", "c"}, reg.Names())

	require.NoError(t, reg.AddBefore("d", empty(), "c"))
	assert.Equal(t, []string{"a", "d", "c"}, reg.Names())

	assert.Error(t, reg.AddBefore("x", empty(), "missing"))

	// Replacing keeps position.
	reg.Add("d", fixed("v"))
	assert.Equal(t, []string{"a", "d", "c"}, reg.Names())
	assert.Equal(t, 3, reg.Len())
}

func TestKeywordsProvider(t *testing.T) {
	p := Keywords("xontrib")
	res, err := p(Query{Prefix: "im"})
	require.NoError(t, err)
	assert.Equal(t, []string{"import"}, res.Candidates)

	res, err = p(Query{Prefix: "xon"})
	require.NoError(t, err)
	assert.Equal(t, []string{"xontrib"}, res.Candidates)
}

func TestNamesProvider(t *testing.T) {
	p := Names()
	q := WithNames(Query{Prefix: "sp"}, []string{"spam", "eggs", "spine"})
	res, err := p(q)
	require.NoError(t, err)
	assert.Equal(t, []string{"spam", "spine"}, res.Candidates)

	// Without context the provider stays silent.
	res, err = p(Query{Prefix: "sp"})
	require.NoError(t, err)
	assert.Empty(t, res.Candidates)
}

func TestPathsProvider(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "alpha.txt"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "alpine.txt"), nil, 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "album"), 0o755))

	p := Paths()
	res, err := p(Query{Prefix: filepath.Join(dir, "al")})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alpha.txt", "alpine.txt", "album" + string(filepath.Separator)}, res.Candidates)
	assert.Equal(t, 2, res.Replacement)

	// Identifier-looking prefixes are not path queries.
	res, err = p(Query{Prefix: "name"})
	require.NoError(t, err)
	assert.Empty(t, res.Candidates)
}
