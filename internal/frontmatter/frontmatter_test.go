package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		raw      string
		body     string
		had      bool
		wantsErr bool
	}{
		{name: "no frontmatter", in: "# Title\n\nHello\n", body: "# Title\n\nHello\n"},
		{name: "lf", in: "---\ntitle: Quick Start\n---\n# Body\n", raw: "title: Quick Start\n", body: "# Body\n", had: true},
		{name: "crlf", in: "---\r\ntitle: x\r\n---\r\n# Body\r\n", raw: "title: x\r\n", body: "# Body\r\n", had: true},
		{name: "empty block", in: "---\n---\nbody", raw: "", body: "body", had: true},
		{name: "closing at eof", in: "---\nhome: true\n---", raw: "home: true\n", body: "", had: true},
		{name: "dashes inside value", in: "---\ntitle: a\nnote: ----x\n---\nb", raw: "title: a\nnote: ----x\n", body: "b", had: true},
		{name: "unterminated", in: "---\ntitle: x\n# Body\n", wantsErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, body, had, err := Split([]byte(tt.in))
			if tt.wantsErr {
				require.ErrorIs(t, err, ErrUnterminated)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.had, had)
			assert.Equal(t, tt.raw, string(raw))
			assert.Equal(t, tt.body, string(body))
		})
	}
}

func TestParse_Accessors(t *testing.T) {
	doc, err := Parse([]byte("---\ntitle: '  Headers  '\nlang: ru-RU\nhome: true\ntags: [a, ' ', b]\nlayout: Page\n---\n# Ignored\n"))
	require.NoError(t, err)

	assert.True(t, doc.Had)
	assert.Equal(t, "Headers", doc.Title())
	assert.Equal(t, "ru-RU", doc.Lang())
	home, ok := doc.Bool("home")
	assert.True(t, ok)
	assert.True(t, home)
	_, ok = doc.Bool("missing")
	assert.False(t, ok)
	assert.Equal(t, []string{"a", "b"}, doc.StringList("tags"))
	assert.Equal(t, []string{"Page"}, doc.StringList("layout"))
	assert.Equal(t, "# Ignored\n", string(doc.Body))
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("---\ntitle: [unclosed\n---\nbody"))
	require.Error(t, err)
}

func TestParseYAML_EmptyIsNonNil(t *testing.T) {
	fields, err := ParseYAML([]byte("  \n"))
	require.NoError(t, err)
	assert.NotNil(t, fields)
	assert.Empty(t, fields)
}

func TestCompose_RoundTrip(t *testing.T) {
	out, err := Compose(map[string]any{"title": "Files", "home": false}, []byte("# Files\n"))
	require.NoError(t, err)
	assert.Equal(t, "---\nhome: false\ntitle: Files\n---\n# Files\n", string(out))

	doc, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, "Files", doc.Title())

	plain, err := Compose(nil, []byte("# Plain\n"))
	require.NoError(t, err)
	assert.Equal(t, "# Plain\n", string(plain))
}

func TestFingerprint_IgnoresVolatileFields(t *testing.T) {
	a, err := Parse([]byte("---\ntitle: A\n---\nbody\n"))
	require.NoError(t, err)
	b, err := Parse([]byte("---\ntitle: A\nlastUpdated: false\nfingerprint: stale\n---\nbody\n"))
	require.NoError(t, err)
	c, err := Parse([]byte("---\ntitle: A\n---\nbody changed\n"))
	require.NoError(t, err)

	fa, err := Fingerprint(a)
	require.NoError(t, err)
	fb, err := Fingerprint(b)
	require.NoError(t, err)
	fc, err := Fingerprint(c)
	require.NoError(t, err)

	assert.NotEmpty(t, fa)
	assert.Equal(t, fa, fb)
	assert.NotEqual(t, fa, fc)
}
