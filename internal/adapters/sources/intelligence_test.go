package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phishguard/risk-engine/internal/config"
	"github.com/phishguard/risk-engine/internal/logging"
)

func TestHostfileParser(t *testing.T) {
	input := `# Comment line
127.0.0.1 localhost
0.0.0.0 evil.example.com
0.0.0.0 phish.example.net # trailing comment
0.0.0.0 EVIL.example.com
255.255.255.255 broadcasthost
0.0.0.0 first.example.org second.example.org
malformed
`
	domains, err := (&HostfileParser{}).Parse(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"evil.example.com",
		"phish.example.net",
		"first.example.org",
		"second.example.org",
	}, domains)
}

func TestDomainListParser(t *testing.T) {
	input := `# Phishing domains
scam-login.com

Verify-Account.net
scam-login.com
  padded.org
`
	domains, err := (&DomainListParser{}).Parse(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"scam-login.com", "verify-account.net", "padded.org"}, domains)
}

func TestParserForFormat(t *testing.T) {
	assert.IsType(t, &HostfileParser{}, ParserForFormat(config.FormatHosts))
	assert.IsType(t, &HostfileParser{}, ParserForFormat("hostfile"))
	assert.IsType(t, &DomainListParser{}, ParserForFormat(config.FormatDomains))
	assert.IsType(t, &DomainListParser{}, ParserForFormat(""))
}

func TestStaticIntelligenceSource(t *testing.T) {
	source := NewStaticIntelligenceSource(DefaultIntelligenceUpdate())

	update, err := source.FetchUpdates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"new-phishing-site.com", "another-scam.net"}, update.Phishing)
	assert.Equal(t, []string{"trusted-new-site.com"}, update.Legitimate)

	// Callers may not mutate the source's batch
	update.Phishing[0] = "changed.com"
	again, err := source.FetchUpdates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new-phishing-site.com", again.Phishing[0])
}

func TestFeedIntelligenceSource_FetchUpdates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/hosts.txt":
			w.Write([]byte("0.0.0.0 remote-phish.com\n0.0.0.0 remote-scam.net\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	dir := t.TempDir()
	allowPath := filepath.Join(dir, "allow.txt")
	require.NoError(t, os.WriteFile(allowPath, []byte("# partners\npartner-bank.com\n"), 0o644))

	source := NewFeedIntelligenceSource([]config.FeedConfig{
		{URL: server.URL + "/hosts.txt", Format: config.FormatHosts},
		{Path: allowPath, Format: config.FormatDomains, Legitimate: true},
	}, logging.Discard())

	update, err := source.FetchUpdates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"remote-phish.com", "remote-scam.net"}, update.Phishing)
	assert.Equal(t, []string{"partner-bank.com"}, update.Legitimate)
}

func TestFeedIntelligenceSource_AnyFailureFailsBatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ok.txt" {
			w.Write([]byte("ok-phish.com\n"))
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	tests := []struct {
		name  string
		feeds []config.FeedConfig
	}{
		{
			name: "remote feed error",
			feeds: []config.FeedConfig{
				{URL: server.URL + "/ok.txt", Format: config.FormatDomains},
				{URL: server.URL + "/broken.txt", Format: config.FormatDomains},
			},
		},
		{
			name: "missing local file",
			feeds: []config.FeedConfig{
				{URL: server.URL + "/ok.txt", Format: config.FormatDomains},
				{Path: filepath.Join(t.TempDir(), "missing.txt"), Format: config.FormatDomains},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := NewFeedIntelligenceSource(tt.feeds, logging.Discard())
			update, err := source.FetchUpdates(context.Background())
			assert.Error(t, err)
			assert.Empty(t, update.Phishing)
			assert.Empty(t, update.Legitimate)
		})
	}
}

func TestSanitizeURL(t *testing.T) {
	assert.Equal(t, "https://feeds.example.com", sanitizeURL("https://feeds.example.com/list.txt?token=secret"))
	assert.Equal(t, "<invalid-url>", sanitizeURL("://bad"))
}
