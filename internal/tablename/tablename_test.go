package tablename

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ref string

func (r ref) QualifiedName() string { return string(r) }

func TestLogicalName(t *testing.T) {
	tests := []struct {
		name      string
		qualified string
		want      string
	}{
		{name: "date shard", qualified: "proj.ds.events_20230101", want: "proj.ds.events_*"},
		{name: "multi underscore prefix", qualified: "proj.ds.app_events_raw_20231231", want: "proj.ds.app_events_raw_*"},
		{name: "leap day", qualified: "proj.ds.events_20240229", want: "proj.ds.events_*"},
		{name: "invalid date", qualified: "proj.ds.events_99999999", want: "proj.ds.events_99999999"},
		{name: "non leap feb 29", qualified: "proj.ds.events_20230229", want: "proj.ds.events_20230229"},
		{name: "short numeric suffix", qualified: "proj.ds.events_123", want: "proj.ds.events_123"},
		{name: "long numeric suffix", qualified: "proj.ds.events_202301011", want: "proj.ds.events_202301011"},
		{name: "non numeric suffix", qualified: "proj.ds.events_latest", want: "proj.ds.events_latest"},
		{name: "no underscore", qualified: "proj.ds.users", want: "proj.ds.users"},
		{name: "underscore only in project", qualified: "my_proj.ds.users", want: "my_proj.ds.users"},
		{name: "empty", qualified: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LogicalName(tt.qualified))
		})
	}
}

func TestIsPartitioned(t *testing.T) {
	assert.True(t, IsPartitioned("p.d.t_20230101"))
	assert.False(t, IsPartitioned("p.d.t_99999999"))
	assert.False(t, IsPartitioned("p.d.t"))
	assert.False(t, IsPartitioned("20230101"))
	assert.False(t, IsPartitioned("p.d.t_2023-01-01"))
}

func TestResolve(t *testing.T) {
	refs := []ref{
		"proj.ds.events_20230101",
		"proj.ds.events_20230102",
		"proj.ds.users",
		"proj.ds.events_99999999",
		"proj.ds.events_123",
		"proj.other.events_20230101",
	}

	got := Resolve(refs)
	assert.Equal(t, []string{
		"proj.ds.events_*",
		"proj.ds.users",
		"proj.ds.events_99999999",
		"proj.ds.events_123",
		"proj.other.events_*",
	}, got)
}

func TestResolveSameShardsCollapse(t *testing.T) {
	got := Resolve([]ref{"proj.ds.events_20230101", "proj.ds.events_20230102"})
	assert.Equal(t, []string{"proj.ds.events_*"}, got)
}

func TestResolveIdempotent(t *testing.T) {
	refs := []ref{"p.d.a_20230101", "p.d.b", "p.d.a_20230105", "p.d.c_1"}
	first := Resolve(refs)

	reversed := make([]ref, len(refs))
	for i, r := range refs {
		reversed[len(refs)-1-i] = r
	}

	assert.ElementsMatch(t, first, Resolve(refs))
	assert.ElementsMatch(t, first, Resolve(reversed))
}

func TestResolveEmpty(t *testing.T) {
	assert.Empty(t, Resolve([]ref{}))
	assert.NotNil(t, Resolve([]ref(nil)))
}

func TestGroup(t *testing.T) {
	groups := Group([]ref{"p.d.e_20230101", "p.d.u", "p.d.e_20230102"})

	require.Len(t, groups, 2)
	assert.Equal(t, []ref{"p.d.e_20230101", "p.d.e_20230102"}, groups["p.d.e_*"])
	assert.Equal(t, []ref{"p.d.u"}, groups["p.d.u"])
}

func TestFind(t *testing.T) {
	refs := []ref{
		"proj.ds.events_20230102",
		"proj.ds.events_20230101",
		"proj.ds.events_backup",
		"proj.ds.events",
		"proj.ds.users",
	}

	t.Run("wildcard returns first shard", func(t *testing.T) {
		got, ok := Find(refs, "proj.ds.events_*")
		require.True(t, ok)
		assert.Equal(t, ref("proj.ds.events_20230102"), got)
	})

	t.Run("exact name", func(t *testing.T) {
		got, ok := Find(refs, "proj.ds.users")
		require.True(t, ok)
		assert.Equal(t, ref("proj.ds.users"), got)
	})

	t.Run("exact name does not match prefix", func(t *testing.T) {
		_, ok := Find(refs, "proj.ds.user")
		assert.False(t, ok)
	})

	t.Run("missing wildcard", func(t *testing.T) {
		_, ok := Find(refs, "proj.ds.sessions_*")
		assert.False(t, ok)
	})
}

func TestFindAll(t *testing.T) {
	refs := []ref{
		"proj.ds.events_20230101",
		"proj.ds.events_20230102",
		"proj.ds.events_2023010",
		"proj.ds.events_202301011",
		"proj.ds.events_backup",
		"proj.dsX.events_20230101",
		"proj.ds.users",
	}

	assert.Equal(t, []ref{"proj.ds.events_20230101", "proj.ds.events_20230102"}, FindAll(refs, "proj.ds.events_*"))
	assert.Equal(t, []ref{"proj.ds.users"}, FindAll(refs, "proj.ds.users"))
	assert.Empty(t, FindAll(refs, "proj.ds.nothing"))
}

func TestMatcherEscapesPrefix(t *testing.T) {
	match := NewMatcher("proj.ds.events_*")
	assert.True(t, match("proj.ds.events_20230101"))
	assert.False(t, match("projXdsXevents_20230101"))
}

func TestMatcherDigitsNotDates(t *testing.T) {
	// reverse lookup only checks for eight digits
	match := NewMatcher("proj.ds.events_*")
	assert.True(t, match("proj.ds.events_99999999"))
}
