package controlfiles

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitegen/internal/config"
)

func TestCreateCopiesLiveReloadScript(t *testing.T) {
	d, err := Create()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Remove() })

	raw, err := os.ReadFile(d.File(LiveReloadScript))
	require.NoError(t, err)
	require.Contains(t, string(raw), "__SITEGEN_LR__")
}

func TestRemoveIsIdempotent(t *testing.T) {
	d, err := Create()
	require.NoError(t, err)

	require.NoError(t, d.Remove())
	_, err = os.Stat(d.Path)
	require.True(t, os.IsNotExist(err))
	require.NoError(t, d.Remove(), "second remove must not raise")
}

func TestBaseURLRoundTrip(t *testing.T) {
	d, err := Create()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Remove() })

	require.NoError(t, d.WriteBaseURL("https://example.com/", "localhost", 8000))

	raw, err := os.ReadFile(d.File(BaseURLFile))
	require.NoError(t, err)
	require.Equal(t, "https://example.com/;http://localhost:8000/", string(raw))

	configured, local, err := d.ReadBaseURL()
	require.NoError(t, err)
	require.Equal(t, "https://example.com/", configured)
	require.Equal(t, "http://localhost:8000/", local)
}

func TestChangesMarkerMovesOnTouch(t *testing.T) {
	d, err := Create()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Remove() })

	require.Empty(t, d.ReadChanges(), "no marker before the first successful build")

	require.NoError(t, d.TouchChanges())
	first := d.ReadChanges()
	require.NotEmpty(t, first)

	require.NoError(t, d.TouchChanges())
	require.NotEqual(t, first, d.ReadChanges())
}

func TestHeadersFileFormat(t *testing.T) {
	d, err := Create()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Remove() })

	rules := []config.HeaderRule{
		{Path: "/*", Headers: []config.Header{
			{Key: "X-Frame-Options", Value: "SAMEORIGIN"},
			{Key: "X-Content-Type-Options", Value: "nosniff"},
		}},
		{Path: "/downloads", Headers: []config.Header{
			{Key: "Content-Disposition", Value: "attachment"},
		}},
	}
	require.NoError(t, d.WriteHeaders(rules))

	raw, err := os.ReadFile(d.File(HeadersFile))
	require.NoError(t, err)
	want := "[/*]\n" +
		"X-Frame-Options = \"SAMEORIGIN\"\n" +
		"X-Content-Type-Options = \"nosniff\"\n" +
		"\n" +
		"[/downloads]\n" +
		"Content-Disposition = \"attachment\"\n"
	require.Equal(t, want, string(raw))

	sections, err := d.ReadHeaders()
	require.NoError(t, err)
	require.Len(t, sections, 2)
	require.Equal(t, "/*", sections[0].Path)
	require.Equal(t, "/downloads", sections[1].Path)
	require.Equal(t, rules[0].Headers, sections[0].Headers)
	require.Equal(t, rules[1].Headers, sections[1].Headers)
}

func TestHeadersFileEmptyWhenNoRules(t *testing.T) {
	d, err := Create()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Remove() })

	require.NoError(t, d.WriteHeaders(nil))
	sections, err := d.ReadHeaders()
	require.NoError(t, err)
	require.Empty(t, sections)
}
