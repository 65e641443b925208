package render

import (
	"io/fs"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/profile-setup/internal/model"
	ws "github.com/stemsi/profile-setup/internal/websocket"
)

func TestFullPage(t *testing.T) {
	tests := []struct {
		name        string
		view        model.ProfileView
		contains    []string
		notContains []string
	}{
		{
			name: "fresh view",
			view: model.ProfileView{ID: "abc"},
			contains: []string{
				"<!doctype html>",
				"<h1>Profile Setup</h1>",
				`placeholder="Major"`,
				`placeholder="Year"`,
				`<button type="submit">Submit</button>`,
				`data-view-id="abc"`,
				`action="/views/abc/submit"`,
				`<p id="status" class="status" data-status=""></p>`,
			},
		},
		{
			name: "fields and status",
			view: model.ProfileView{
				ID: "abc", Major: "CS", Year: "2",
				Status: model.StatusSuccess, StatusText: model.StatusSuccess.Text(),
			},
			contains: []string{
				`value="CS"`,
				`value="2"`,
				"✅ Submitted successfully!",
			},
		},
		{
			name: "field values are escaped",
			view: model.ProfileView{ID: "abc", Major: `"><script>x</script>`},
			notContains: []string{
				"<script>x</script>",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf strings.Builder
			require.NoError(t, Templates().ExecuteTemplate(&buf, PageTemplate, NewPage(tt.view)))
			html := buf.String()
			for _, want := range tt.contains {
				assert.Contains(t, html, want)
			}
			for _, unwanted := range tt.notContains {
				assert.NotContains(t, html, unwanted)
			}
		})
	}
}

func TestStatusLine(t *testing.T) {
	for _, st := range []model.Status{
		model.StatusEmpty,
		model.StatusSending,
		model.StatusSuccess,
		model.StatusResponseFailure,
		model.StatusNetworkFailure,
	} {
		t.Run(string(st), func(t *testing.T) {
			html, err := Status(model.ProfileView{Status: st, StatusText: st.Text()})
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(html, `<p id="status"`))
			assert.Contains(t, html, st.Text())
		})
	}
}

func TestAssets(t *testing.T) {
	for _, name := range []string{"profile.js", "profile.css"} {
		b, err := fs.ReadFile(Assets(), name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, b)
	}
}

func TestScriptKeepsStreamAlive(t *testing.T) {
	b, err := fs.ReadFile(Assets(), "profile.js")
	require.NoError(t, err)
	script := string(b)

	m := regexp.MustCompile(`PING_INTERVAL_MS = (\d+) \* 1000;`).FindStringSubmatch(script)
	require.Len(t, m, 2, "ping interval not found")
	secs, err := strconv.Atoi(m[1])
	require.NoError(t, err)
	assert.Less(t, time.Duration(secs)*time.Second, ws.ReadWait)

	assert.Contains(t, script, `action: "ping"`)
	assert.Contains(t, script, `setTimeout(connect, retryDelay)`)
	assert.Contains(t, script, `major: inputs.major.value`)
	assert.Contains(t, script, `year: inputs.year.value`)
}
