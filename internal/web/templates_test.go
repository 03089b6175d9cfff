package web

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/realtime-progress/internal/push"
)

var _ push.Renderer = (*Templates)(nil)

func TestRenderPageEmbedsClientID(t *testing.T) {
	t.Parallel()

	tmpl, err := New()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tmpl.RenderPage(&buf, "abc-123"))
	page := buf.String()

	require.Contains(t, page, `sse-connect="/progress-events?uuid=abc-123"`)
	require.Contains(t, page, `hx-post="/?uuid=abc-123"`)
	require.Contains(t, page, `hx-swap="none"`)
	require.NotContains(t, page, "<form", "a plain form would navigate away and drop the pushed fragments")
	require.Contains(t, page, `sse-swap="message"`)
	require.Contains(t, page, `hx-ext="sse"`)
}

func TestRenderPageEscapesClientID(t *testing.T) {
	t.Parallel()

	tmpl, err := New()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tmpl.RenderPage(&buf, `"><script>alert(1)</script>`))
	require.NotContains(t, buf.String(), "<script>alert(1)</script>")
}

func TestRenderProgressWidth(t *testing.T) {
	t.Parallel()

	tmpl, err := New()
	require.NoError(t, err)

	for _, percent := range []int{0, 37, 100} {
		out, err := tmpl.RenderProgress(percent)
		require.NoError(t, err)
		require.Contains(t, out, "width: "+strconv.Itoa(percent)+"%")
		require.Contains(t, push.Flatten(out), "</p>")
		require.False(t, strings.ContainsAny(push.Flatten(out), "\r\n"))
	}
}

func TestRenderDoneLinksDownload(t *testing.T) {
	t.Parallel()

	tmpl, err := New()
	require.NoError(t, err)

	out, err := tmpl.RenderDone()
	require.NoError(t, err)
	require.Contains(t, out, `href="`+DownloadPlaceholder+`"`)
	require.Contains(t, out, "width: 100%")
}
