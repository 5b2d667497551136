package linkifier_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/linkify/pkg/linkifier"
	"github.com/arthur-debert/linkify/pkg/rules"
)

func mustCompile(t *testing.T, pattern, template string) *linkifier.Linkifier {
	t.Helper()
	l, err := linkifier.Compile(rules.Definition{Pattern: pattern, URLTemplate: template})
	require.NoError(t, err)
	return l
}

func TestFindBoundaries(t *testing.T) {
	l := mustCompile(t, `#(?P<id>[0-9]+)`, "https://example.com/issues/{id}")

	tests := []struct {
		name     string
		text     string
		wantText string // empty means no match expected
	}{
		// Accepted before contexts
		{"start of string", "#123", "#123"},
		{"after space", "see #123.", "#123"},
		{"after tab", "see\t#123", "#123"},
		{"after newline", "see\n#123", "#123"},
		{"after NEL", "see#123", "#123"},
		{"after en quad separator", "see #123", "#123"},
		{"after no-break space", "see #123", "#123"},
		{"after single quote", "'#123'", "#123"},
		{"after double quote", `"#123"`, "#123"},
		{"after open paren", "(#123)", "#123"},
		{"after comma", "a,#123", "#123"},
		{"after colon", "ref:#123", "#123"},
		{"after angle bracket", "<#123>", "#123"},

		// Accepted after contexts
		{"end of string", "see #123", "#123"},
		{"followed by period", "#123.", "#123"},
		{"followed by bang", "#123!", "#123"},
		{"followed by hash", "#123#", "#123"},

		// Rejected contexts
		{"preceded by letter", "x#123", ""},
		{"preceded by digit", "1#123", ""},
		{"preceded by period", ".#123", ""},
		{"preceded by hyphen", "a-#123", ""},
		{"followed by ascii letter", "#123a", ""},
		{"followed by unicode letter", "#123é", ""},
		{"followed by unicode number", "#123٤", ""},
		{"mid-token both sides", "x#123y", ""},
		{"no occurrence at all", "nothing here", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := l.Find(tt.text, 0)
			if tt.wantText == "" {
				assert.Nil(t, m)
				return
			}
			require.NotNil(t, m)
			assert.Equal(t, tt.wantText, m.Text)
			assert.Equal(t, tt.wantText, tt.text[m.Start:m.End])
		})
	}
}

func TestFindSkipsInvalidOccurrences(t *testing.T) {
	l := mustCompile(t, `#(?P<id>[0-9]+)`, "https://example.com/issues/{id}")

	// The first occurrence sits mid-token and must be passed over in
	// favor of the later, properly delimited one.
	m := l.Find("x#123 #456", 0)
	require.NotNil(t, m)
	assert.Equal(t, "#456", m.Text)
	assert.Equal(t, 6, m.Start)
	assert.Equal(t, 10, m.End)
}

func TestFindOffsetsAreBytes(t *testing.T) {
	l := mustCompile(t, `#(?P<id>[0-9]+)`, "https://example.com/issues/{id}")

	m := l.Find("héllo #9", 0)
	require.NotNil(t, m)
	assert.Equal(t, "#9", m.Text)
	assert.Equal(t, 7, m.Start)
	assert.Equal(t, 9, m.End)
	assert.Equal(t, 9, m.ContinueAt)
}

func TestFindContinuation(t *testing.T) {
	l := mustCompile(t, `#(?P<id>[0-9]+)`, "https://example.com/issues/{id}")

	t.Run("space separates adjacent matches", func(t *testing.T) {
		text := "#1 #2"

		first := l.Find(text, 0)
		require.NotNil(t, first)
		assert.Equal(t, "#1", first.Text)
		// Resumes before the space, which must introduce the next match
		assert.Equal(t, 2, first.ContinueAt)

		second := l.Find(text, first.ContinueAt)
		require.NotNil(t, second)
		assert.Equal(t, "#2", second.Text)
		assert.Equal(t, 3, second.Start)
	})

	t.Run("hash terminates but does not introduce", func(t *testing.T) {
		// "#" is a valid after context and an invalid before context:
		// the first token matches, the glued second one must not.
		text := "#1#2"

		first := l.Find(text, 0)
		require.NotNil(t, first)
		assert.Equal(t, "#1", first.Text)

		assert.Nil(t, l.Find(text, first.ContinueAt))
	})

	t.Run("period terminates but does not introduce", func(t *testing.T) {
		text := "#1.#2"

		first := l.Find(text, 0)
		require.NotNil(t, first)
		assert.Equal(t, "#1", first.Text)

		assert.Nil(t, l.Find(text, first.ContinueAt))
	})

	t.Run("start anchor does not fire mid-string", func(t *testing.T) {
		// From position 1 the "#123" is preceded by a letter; without a
		// real boundary character it must not match.
		assert.Nil(t, l.Find("x#123", 1))
	})
}

func TestFindPositionHandling(t *testing.T) {
	l := mustCompile(t, `#(?P<id>[0-9]+)`, "https://example.com/issues/{id}")

	t.Run("empty text", func(t *testing.T) {
		assert.Nil(t, l.Find("", 0))
	})

	t.Run("position at end", func(t *testing.T) {
		assert.Nil(t, l.Find("#1", 2))
	})

	t.Run("position past end", func(t *testing.T) {
		assert.Nil(t, l.Find("#1", 10))
	})

	t.Run("negative position clamps to start", func(t *testing.T) {
		m := l.Find("#1", -3)
		require.NotNil(t, m)
		assert.Equal(t, "#1", m.Text)
	})
}

func TestExpand(t *testing.T) {
	t.Run("single group round trip", func(t *testing.T) {
		l := mustCompile(t, `#(?P<id>[0-9]+)`, "https://example.com/issue/{id}")

		m := l.Find("see #42 now", 0)
		require.NotNil(t, m)
		assert.Equal(t, map[string]string{"id": "42"}, m.Groups)

		url, err := l.Expand(m)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/issue/42", url)
	})

	t.Run("multiple groups", func(t *testing.T) {
		l := mustCompile(t,
			`CVE-(?P<year>[0-9]{4})-(?P<num>[0-9]+)`,
			"https://nvd.nist.gov/vuln/detail/CVE-{year}-{num}")

		m := l.Find("fixes CVE-2024-12345.", 0)
		require.NotNil(t, m)
		assert.Equal(t, "CVE-2024-12345", m.Text)

		url, err := l.Expand(m)
		require.NoError(t, err)
		assert.Equal(t, "https://nvd.nist.gov/vuln/detail/CVE-2024-12345", url)
	})

	t.Run("no groups, fixed destination", func(t *testing.T) {
		l := mustCompile(t, "golang", "https://go.dev")

		m := l.Find("try golang today", 0)
		require.NotNil(t, m)
		assert.Empty(t, m.Groups)

		url, err := l.Expand(m)
		require.NoError(t, err)
		assert.Equal(t, "https://go.dev", url)
	})

	t.Run("optional group absent expands to nothing", func(t *testing.T) {
		l := mustCompile(t,
			`#(?P<id>[0-9]+)(/(?P<sub>[0-9]+))?`,
			"https://example.com/{id}/{sub}")

		m := l.Find("#5", 0)
		require.NotNil(t, m)
		assert.Equal(t, map[string]string{"id": "5"}, m.Groups)

		url, err := l.Expand(m)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/5/", url)
	})

	t.Run("optional group present", func(t *testing.T) {
		l := mustCompile(t,
			`#(?P<id>[0-9]+)(/(?P<sub>[0-9]+))?`,
			"https://example.com/{id}/{sub}")

		m := l.Find("#5/7", 0)
		require.NotNil(t, m)
		assert.Equal(t, "#5/7", m.Text)

		url, err := l.Expand(m)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/5/7", url)
	})

	t.Run("captured values are escaped by the template", func(t *testing.T) {
		l := mustCompile(t, `go:(?P<term>[a-z ]*[a-z])`, "https://pkg.go.dev/search?q={term}")

		m := l.Find("go:net http.", 0)
		require.NotNil(t, m)
		assert.Equal(t, "go:net http", m.Text)

		url, err := l.Expand(m)
		require.NoError(t, err)
		assert.Equal(t, "https://pkg.go.dev/search?q=net%20http", url)
	})
}
