package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemplate(t *testing.T, content string) string {
	t.Helper()

	p := filepath.Join(t.TempDir(), "page.tmpl")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))

	return p
}

func TestRender_NoTemplateIsIdentity(t *testing.T) {
	r := New("")
	assert.False(t, r.Enabled())

	for _, h := range []string{"", "<h1>Hi</h1>\n", "{{ .html }}", "<p>&amp;</p>"} {
		got, err := r.Render(h)
		require.NoError(t, err)
		assert.Equal(t, h, got)
	}

	assert.NoError(t, r.Check())
}

func TestRender_Placeholders(t *testing.T) {
	tests := []struct {
		name string
		tmpl string
	}{
		{"go template", "<body>{{ .html }}</body>"},
		{"handlebars double", "<body>{{html}}</body>"},
		{"handlebars triple", "<body>{{{html}}}</body>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(writeTemplate(t, tt.tmpl))

			got, err := r.Render("<h1>Hi & bye</h1>")
			require.NoError(t, err)
			assert.Equal(t, "<body><h1>Hi & bye</h1></body>", got)
		})
	}
}

func TestRender_SubstitutesExactlyOnce(t *testing.T) {
	r := New(writeTemplate(t, "<html>\n<title>doc</title>\n{{ .html }}\n</html>\n"))

	got, err := r.Render("<p>X</p>")
	require.NoError(t, err)
	assert.Equal(t, "<html>\n<title>doc</title>\n<p>X</p>\n</html>\n", got)
	assert.Equal(t, 1, strings.Count(got, "<p>X</p>"))
}

func TestRender_SprigFunctions(t *testing.T) {
	r := New(writeTemplate(t, `{{ .html | trim | upper }}`))

	got, err := r.Render("  <b>x</b>\n")
	require.NoError(t, err)
	assert.Equal(t, "<B>X</B>", got)
}

func TestRender_ReloadsEachCall(t *testing.T) {
	p := writeTemplate(t, "A{{ .html }}")
	r := New(p)

	got, err := r.Render("x")
	require.NoError(t, err)
	assert.Equal(t, "Ax", got)

	require.NoError(t, os.WriteFile(p, []byte("B{{ .html }}"), 0o600))

	got, err = r.Render("x")
	require.NoError(t, err)
	assert.Equal(t, "Bx", got)
}

func TestRender_MissingTemplate(t *testing.T) {
	p := filepath.Join(t.TempDir(), "missing.tmpl")
	r := New(p)

	err := r.Check()
	require.Error(t, err)

	var tmplErr *TemplateError
	require.ErrorAs(t, err, &tmplErr)
	assert.Equal(t, p, tmplErr.Path)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = r.Render("<p/>")
	assert.ErrorAs(t, err, &tmplErr)
}

func TestRender_ParseError(t *testing.T) {
	r := New(writeTemplate(t, "{{ .html "))

	err := r.Check()

	var tmplErr *TemplateError
	require.ErrorAs(t, err, &tmplErr)
	assert.Contains(t, err.Error(), "parsing")
}

func TestRender_StrictKeys(t *testing.T) {
	p := writeTemplate(t, "{{ .title }}{{ .html }}")

	got, err := New(p).Render("x")
	require.NoError(t, err)
	assert.Equal(t, "<no value>x", got)

	_, err = New(p, WithStrictKeys()).Render("x")
	assert.ErrorContains(t, err, "executing")
}

func TestRender_LiteralBracesPreserved(t *testing.T) {
	script := "<script>function f(){if(a){return {b:1}}}</script>\n<style>a{b:c}}}</style>\n"
	r := New(writeTemplate(t, script+"{{ .html }}"))

	got, err := r.Render("<p>X</p>")
	require.NoError(t, err)
	assert.Equal(t, script+"<p>X</p>", got)
}

func TestRender_TripleStashVariants(t *testing.T) {
	for _, tmpl := range []string{"[{{{html}}}]", "[{{{ html }}}]", "[{{{.html}}}]"} {
		t.Run(tmpl, func(t *testing.T) {
			got, err := New(writeTemplate(t, tmpl)).Render("<i>x</i>")
			require.NoError(t, err)
			assert.Equal(t, "[<i>x</i>]", got)
		})
	}
}

func TestRender_HTMLFuncEscapesWithArgs(t *testing.T) {
	r := New(writeTemplate(t, "<pre>{{ .html | html }}</pre>{{ html }}"))

	got, err := r.Render("<b>&</b>")
	require.NoError(t, err)
	assert.Equal(t, "<pre>&lt;b&gt;&amp;&lt;/b&gt;</pre><b>&</b>", got)
}
