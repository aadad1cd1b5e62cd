package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze_ExplicitProviderPatternIsNotMultiProvider(t *testing.T) {
	r := Analyze("myorg/*/my-repo", "gh")
	require.True(t, r.Valid())
	assert.False(t, r.IsMultiProvider)
	assert.True(t, r.IsPattern)
	assert.Equal(t, "gh", r.ProviderSegment)
}

func TestAnalyze_MultiProviderWildcard(t *testing.T) {
	r := Analyze("shared/*/*", "")
	require.True(t, r.Valid())
	assert.True(t, r.IsPattern)
	assert.True(t, r.IsMultiProvider)
	assert.Empty(t, r.ProviderSegment)
}

func TestAnalyze_MiddleOnlyWildcardStillMultiProvider(t *testing.T) {
	// Regression test for the bug described in spec.md §3: wildcard checked
	// only in the first position used to miss this case.
	r := Analyze("myorg/*/myrepo", "")
	require.True(t, r.Valid())
	assert.True(t, r.IsMultiProvider)
}

func TestAnalyze_ExactNoWildcardIsNotMultiProvider(t *testing.T) {
	r := Analyze("myorg/proj/myrepo", "")
	require.True(t, r.Valid())
	assert.False(t, r.IsPattern)
	assert.False(t, r.IsMultiProvider)
	assert.True(t, r.IsExact)
}

func TestAnalyze_EmptyQuery(t *testing.T) {
	r := Analyze("", "")
	require.False(t, r.Valid())
	assert.Equal(t, ErrInvalidPatternShape, r.ValidationErrors[0].Code)
}

func TestAnalyze_WrongSegmentCount(t *testing.T) {
	r := Analyze("only/two", "")
	require.False(t, r.Valid())
	assert.Equal(t, ErrInvalidPatternShape, r.ValidationErrors[0].Code)
}

func TestAnalyze_EmptySegment(t *testing.T) {
	r := Analyze("myorg//myrepo", "")
	require.False(t, r.Valid())
	found := false
	for _, e := range r.ValidationErrors {
		if e.Code == ErrEmptySegment {
			found = true
		}
	}
	assert.True(t, found)
}

func TestAnalyze_InvalidCharacters(t *testing.T) {
	for _, q := range []string{
		"my|org/proj/repo",
		"myorg/<proj>/repo",
		"myorg/\"proj\"/repo",
	} {
		r := Analyze(q, "")
		require.False(t, r.Valid(), q)
	}
}

func TestAnalyze_SpacesPreservedInProjectSegment(t *testing.T) {
	r := Analyze("myorg/My Project/myrepo", "")
	require.True(t, r.Valid())
	assert.Equal(t, "My Project", r.MiddleSegment)
}

func TestAnalyze_ProviderLowercasedSegmentsPreserved(t *testing.T) {
	r := Analyze("MyOrg/Proj/MyRepo", "GH")
	require.True(t, r.Valid())
	assert.Equal(t, "gh", r.ProviderSegment)
	assert.Equal(t, "MyOrg", r.OrgSegment)
	assert.Equal(t, "MyRepo", r.RepoSegment)
}

func TestMatches(t *testing.T) {
	cases := []struct {
		pattern, literal string
		want             bool
	}{
		{"*", "anything", true},
		{"my-*", "my-repo", true},
		{"my-*", "other-repo", false},
		{"my-r?po", "my-repo", true},
		{"my-r?po", "my-reepo", false},
		{"MyRepo", "myrepo", true},
		{"exact", "exact", true},
		{"exact", "exactly", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Matches(c.pattern, c.literal), "%s vs %s", c.pattern, c.literal)
	}
}
