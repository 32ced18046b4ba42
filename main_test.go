package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andybalholm/cascadia"
	"github.com/sophnet/docsite/internal/codeblock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xhtml "golang.org/x/net/html"
)

func newTestCmd(stdout, stderr io.Writer) *mainCmd {
	return &mainCmd{Stdout: stdout, Stderr: stderr}
}

func TestMainCmd_help(t *testing.T) {
	t.Parallel()

	var stderr bytes.Buffer
	exitCode := newTestCmd(io.Discard, &stderr).Run(context.Background(), []string{"-h"})
	assert.Zero(t, exitCode, "-h should have zero status code")
	assert.Contains(t, stderr.String(), "USAGE: docsite")
}

func TestMainCmd_version(t *testing.T) {
	t.Parallel()

	var buff bytes.Buffer
	exitCode := newTestCmd(&buff, io.Discard).Run(context.Background(), []string{"-version"})
	assert.Zero(t, exitCode, "-version should have zero status code")

	assert.Contains(t, buff.String(), "docsite")
	assert.Contains(t, buff.String(), _version)
}

func TestMainCmd_unknownFlag(t *testing.T) {
	t.Parallel()

	exitCode := newTestCmd(io.Discard, io.Discard).
		Run(context.Background(), []string{"--this-flag-does-not-exist"})
	assert.NotZero(t, exitCode, "unknown flag should have non-zero status code")
}

func TestMainCmd_badFrontMatter(t *testing.T) {
	t.Parallel()

	var stderr bytes.Buffer
	exitCode := newTestCmd(io.Discard, &stderr).Run(context.Background(), []string{
		"-out", t.TempDir(),
		"-frontmatter", "{{ .Title",
		t.TempDir(),
	})
	assert.NotZero(t, exitCode)
	assert.Contains(t, stderr.String(), "bad frontmatter template")
}

func TestMainCmd_badNav(t *testing.T) {
	t.Parallel()

	navFile := filepath.Join(t.TempDir(), "nav.yaml")
	require.NoError(t, os.WriteFile(navFile, []byte("- links:\n    - title: x\n      href: /\n"), 0o644))

	var stderr bytes.Buffer
	exitCode := newTestCmd(io.Discard, &stderr).Run(context.Background(), []string{
		"-out", t.TempDir(),
		"-nav", navFile,
		t.TempDir(),
	})
	assert.NotZero(t, exitCode)
	assert.Contains(t, stderr.String(), "nav.yaml: section 0: missing title")
}

// rawServer serves source files the way raw.githubusercontent.com does.
func rawServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/sophnet/examples/main/chat.py", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "import sophnet\n\nprint(sophnet.chat('hi'))   \n\n")
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestMainCmd_generate(t *testing.T) {
	t.Parallel()

	srv := rawServer(t)
	rawURL := srv.URL + "/sophnet/examples/main/chat.py"

	src := t.TempDir()
	writeFiles(t, src, map[string]string{
		"index.md": "# 导言\n\nWelcome.\n",
		"docs/sophnet/code.md": strings.Join([]string{
			"# 代码",
			"",
			`{% code-block rawUrl="` + rawURL + `" language="python" /%}`,
		}, "\n"),
	})

	navFile := filepath.Join(t.TempDir(), "nav.yaml")
	require.NoError(t, os.WriteFile(navFile, []byte(strings.Join([]string{
		"- title: Start",
		"  links:",
		"    - title: Intro",
		"      href: /",
		"- title: SophNet",
		"  links:",
		"    - title: Code",
		"      href: /docs/sophnet/code",
	}, "\n")), 0o644))

	out := t.TempDir()
	var stderr bytes.Buffer
	exitCode := newTestCmd(io.Discard, &stderr).Run(context.Background(), []string{
		"-out", out,
		"-nav", navFile,
		"-style", "github",
		"-debug",
		src,
	})
	require.Zero(t, exitCode, "stderr:\n%v", stderr.String())
	assert.Contains(t, stderr.String(), "Fetching "+rawURL, "-debug should log fetches")
	assert.Contains(t, stderr.String(), "Rendered 2 pages")

	css, err := os.ReadFile(filepath.Join(out, "_", "css", "main.css"))
	require.NoError(t, err)
	assert.Contains(t, string(css), ".chroma", "highlighter CSS should be included")

	f, err := os.Open(filepath.Join(out, "docs", "sophnet", "code", "index.html"))
	require.NoError(t, err)
	defer func() { assert.NoError(t, f.Close()) }()
	doc, err := xhtml.Parse(f)
	require.NoError(t, err)

	var sections []string
	for _, n := range cascadia.QueryAll(doc, cascadia.MustCompile("h2.nav-section-title")) {
		sections = append(sections, textOf(n))
	}
	assert.Equal(t, []string{"Start", "SophNet"}, sections)

	block := cascadia.MustCompile(`div.code-block[data-language="python"]`).MatchFirst(doc)
	require.NotNil(t, block)

	source := cascadia.MustCompile("a.code-block-source").MatchFirst(block)
	require.NotNil(t, source)
	assert.Equal(t, srv.URL+"/sophnet/examples/blob/main/chat.py", attrOf(source, "href"))
	assert.Equal(t, "_blank", attrOf(source, "target"))
	assert.Equal(t, "noopener noreferrer", attrOf(source, "rel"))
	assert.Equal(t, codeblock.SourceLabel, textOf(source))

	button := cascadia.MustCompile("button.code-block-copy").MatchFirst(block)
	require.NotNil(t, button)
	assert.Equal(t, codeblock.CopyLabel, strings.TrimSpace(textOf(button)))

	lines := cascadia.QueryAll(block, cascadia.MustCompile("div.line"))
	require.Len(t, lines, 3)
	assert.Equal(t, "print(sophnet.chat('hi'))", textOf(lines[2]), "trailing whitespace is trimmed")
}

func TestMainCmd_generateEmbedded(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writeFiles(t, src, map[string]string{
		"docs/sophnet/changelog.md": "---\ntitle: Changes\n---\nNothing yet.\n",
	})

	out := t.TempDir()
	exitCode := newTestCmd(io.Discard, io.Discard).Run(context.Background(), []string{
		"-out", out,
		"-embed",
		"-frontmatter", "---\ntitle: {{ .Title }}\nsection: {{ .Section }}\n---",
		src,
	})
	require.Zero(t, exitCode)

	got, err := os.ReadFile(filepath.Join(out, "docs", "sophnet", "changelog", "index.html"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(got), "---\ntitle: Changes\nsection: SophNet\n---\n\n<article"),
		"got:\n%s", got)

	assert.NoDirExists(t, filepath.Join(out, "_"), "no static files in embedded mode")
}

func TestMainCmd_generateError(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writeFiles(t, src, map[string]string{
		"index.md": "{% tabs %}\n{% /tabs %}\n",
	})

	var stderr bytes.Buffer
	exitCode := newTestCmd(io.Discard, &stderr).Run(context.Background(), []string{"-out", t.TempDir(), src})
	assert.NotZero(t, exitCode)
	assert.Contains(t, stderr.String(), "index.md: invalid document")
	assert.Contains(t, stderr.String(), "line 1: critical: tabs: unknown tag")
}

func TestMainCmd_check(t *testing.T) {
	t.Parallel()

	t.Run("warnings only", func(t *testing.T) {
		t.Parallel()

		src := t.TempDir()
		writeFiles(t, src, map[string]string{
			"index.md": "{% callout title=3 %}\nHi\n{% /callout %}\n",
		})
		out := filepath.Join(t.TempDir(), "site")

		var stderr bytes.Buffer
		exitCode := newTestCmd(io.Discard, &stderr).Run(context.Background(), []string{"-check", "-out", out, src})
		assert.Zero(t, exitCode, "stderr:\n%s", stderr.String())
		assert.Contains(t, stderr.String(), `index.md: line 1: warning: callout: attribute "title": expected String, got Number`)
		assert.Contains(t, stderr.String(), "Checked 1 pages")
		assert.NoDirExists(t, out, "-check must not write output")
	})

	t.Run("critical", func(t *testing.T) {
		t.Parallel()

		src := t.TempDir()
		writeFiles(t, src, map[string]string{
			"index.md":       "# Home\n",
			"docs/broken.md": "{% tabs /%}\n{% callout type=\"danger\" %}\nx\n{% /callout %}\n",
		})

		var stderr bytes.Buffer
		exitCode := newTestCmd(io.Discard, &stderr).Run(context.Background(), []string{"-check", src})
		assert.NotZero(t, exitCode)
		assert.Contains(t, stderr.String(), "docs/broken.md: line 1: critical: tabs: unknown tag")
		assert.Contains(t, stderr.String(), "found 2 critical problem(s)")
	})
}

func TestMainCmd_view(t *testing.T) {
	t.Parallel()

	srv := rawServer(t)
	rawURL := srv.URL + "/sophnet/examples/main/chat.py"

	var stdout, stderr bytes.Buffer
	exitCode := newTestCmd(&stdout, &stderr).Run(context.Background(), []string{
		"-view", "-lang", "python", "-copy", rawURL,
	})
	require.Zero(t, exitCode, "stderr:\n%v", stderr.String())

	assert.Contains(t, stdout.String(), "sophnet")
	assert.Contains(t, stderr.String(), codeblock.SourceLabel+": "+srv.URL+"/sophnet/examples/blob/main/chat.py")

	// The copied text is the fetched text, untrimmed.
	osc52 := "\x1b]52;c;" +
		base64.StdEncoding.EncodeToString([]byte("import sophnet\n\nprint(sophnet.chat('hi'))   \n\n")) +
		"\a"
	assert.Contains(t, stdout.String(), osc52)
	assert.Contains(t, stderr.String(), codeblock.CopiedLabel)
}

func TestMainCmd_viewNotFound(t *testing.T) {
	t.Parallel()

	srv := rawServer(t)
	rawURL := srv.URL + "/sophnet/examples/main/missing.py"

	var stderr bytes.Buffer
	exitCode := newTestCmd(io.Discard, &stderr).Run(context.Background(), []string{"-view", rawURL})
	assert.NotZero(t, exitCode)
	assert.Equal(t, 1, strings.Count(stderr.String(), "Error fetching code from "+rawURL))
	assert.Contains(t, stderr.String(), "could not fetch "+rawURL)
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()

	for name, body := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
}
