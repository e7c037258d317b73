package set

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

type version struct {
	major int
}

func (v *version) Equal(other *version) bool { return v.major == other.major }
func (v *version) Less(other *version) bool  { return v.major < other.major }
func (v *version) String() string            { return fmt.Sprintf("v%d", v.major) }

// Only Less is defined, Greater is synthesized.
type lessOnly struct {
	v int
}

func (l lessOnly) Equal(other lessOnly) bool { return l.v == other.v }
func (l lessOnly) Less(other lessOnly) bool  { return l.v < other.v }

// Only Greater is defined, Less is synthesized.
type greaterOnly struct {
	v int
}

func (g greaterOnly) Equal(other greaterOnly) bool   { return g.v == other.v }
func (g greaterOnly) Greater(other greaterOnly) bool { return g.v > other.v }

// Equality without any ordering.
type neither struct {
	v int
}

func (n neither) Equal(other neither) bool { return n.v == other.v }

type plain struct {
	v int
}

type handle struct {
	id int
}

// Ordered without Equal, the equality falls back to ==.
type rank int

func (r rank) Less(other rank) bool { return r < other }

func TestTreeSet_LessOnly(t *testing.T) {
	s := NewTreeSet[lessOnly]()
	for _, v := range []int{5, 1, 9, 3, 7} {
		_, err := s.Add(lessOnly{v})
		require.NoError(t, err)
	}
	require.Equal(t, []lessOnly{{1}, {3}, {5}, {7}, {9}}, s.ToSlice())

	res, ok, err := s.Higher(lessOnly{5})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, lessOnly{7}, res)
	res, ok, err = s.Lower(lessOnly{5})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, lessOnly{3}, res)
	res, ok, err = s.Floor(lessOnly{6})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, lessOnly{5}, res)
	res, ok, err = s.Ceiling(lessOnly{9})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, lessOnly{9}, res)
	_, ok, err = s.Higher(lessOnly{9})
	require.NoError(t, err)
	require.False(t, ok)
	treeSetValidate(t, s)
}

func TestTreeSet_GreaterOnly(t *testing.T) {
	s := NewTreeSet[greaterOnly]()
	for _, v := range []int{5, 1, 9, 3, 7} {
		_, err := s.Add(greaterOnly{v})
		require.NoError(t, err)
	}
	require.Equal(t, []greaterOnly{{1}, {3}, {5}, {7}, {9}}, s.ToSlice())

	res, ok, err := s.Lower(greaterOnly{1})
	require.NoError(t, err)
	require.False(t, ok)
	res, ok, err = s.Ceiling(greaterOnly{4})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, greaterOnly{5}, res)
	res, ok, err = s.Floor(greaterOnly{4})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, greaterOnly{3}, res)
	treeSetValidate(t, s)
}

func TestTreeSet_NotComparable(t *testing.T) {
	testcases := []struct {
		name string
		add  func() error
	}{
		{"equal without ordering", func() error {
			_, err := NewTreeSet[neither]().Add(neither{1})
			return err
		}},
		{"struct without methods", func() error {
			_, err := NewTreeSet[plain]().Add(plain{1})
			return err
		}},
		{"identity only", func() error {
			_, err := NewTreeSet[*handle]().Add(&handle{1})
			return err
		}},
		{"slice", func() error {
			_, err := NewTreeSet[[]int]().Add([]int{1})
			return err
		}},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			require.ErrorIs(tt, tc.add(), ErrNotComparable)
		})
	}

	// Construction does not fail, only the first validated operation.
	s := NewTreeSet[neither]()
	require.True(t, s.IsEmpty())
	_, err := s.Contains(neither{1})
	require.ErrorIs(t, err, ErrNotComparable)
}

func TestTreeSet_PointerElements(t *testing.T) {
	s := NewTreeSet[*version]()
	for _, v := range []int{3, 1, 2} {
		_, err := s.Add(&version{v})
		require.NoError(t, err)
	}
	require.Equal(t, "[v1, v2, v3]", s.String())

	ok, err := s.Contains(&version{2})
	require.NoError(t, err)
	require.True(t, ok)
}

func TestResolveOrdering(t *testing.T) {
	ord := resolveOrdering[rank](reflect.TypeFor[rank]())
	require.NoError(t, ord.err)
	require.True(t, ord.eq(1, 1))
	require.True(t, ord.less(1, 2))
	require.True(t, ord.greater(2, 1))
	require.False(t, ord.greater(1, 1))
	require.Equal(t, int64(0), ord.compare(2, 2))
	require.Equal(t, int64(-1), ord.compare(1, 2))
	require.Equal(t, int64(1), ord.compare(3, 2))

	// Builtin ordered kinds without methods use the natural order.
	type celsius float64
	natural := resolveOrdering[celsius](reflect.TypeFor[celsius]())
	require.NoError(t, natural.err)
	require.True(t, natural.less(-1.5, 0))
	require.True(t, natural.greater(2, 1.5))

	str := resolveOrdering[string](reflect.TypeFor[string]())
	require.True(t, str.less("a", "b"))
	u := resolveOrdering[uint8](reflect.TypeFor[uint8]())
	require.True(t, u.greater(255, 0))

	missing := resolveOrdering[any](nil)
	require.ErrorIs(t, missing.err, ErrNotComparable)
}

func TestIsNull(t *testing.T) {
	var (
		nilPtr   *version
		nilMap   map[int]int
		nilSlice []int
		nilFunc  func()
		nilChan  chan int
	)
	testcases := []struct {
		name     string
		v        any
		expected bool
	}{
		{"nil", nil, true},
		{"nil pointer", nilPtr, true},
		{"nil map", nilMap, true},
		{"nil slice", nilSlice, true},
		{"nil func", nilFunc, true},
		{"nil chan", nilChan, true},
		{"zero int", 0, false},
		{"empty string", "", false},
		{"pointer", &version{}, false},
		{"empty slice", []int{}, false},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			require.Equal(tt, tc.expected, isNull(tc.v))
		})
	}
}
