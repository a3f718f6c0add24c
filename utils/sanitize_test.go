package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdownBold(t *testing.T) {
	assert.Equal(t, "<p><strong>bold</strong></p>", RenderMarkdown("**bold**"))
}

func TestRenderMarkdownEmpty(t *testing.T) {
	assert.Equal(t, "", RenderMarkdown(""))
}

func TestRenderMarkdownAllowedMarkup(t *testing.T) {
	assert.Equal(t, "<h1>Title</h1>", RenderMarkdown("# Title"))

	out := RenderMarkdown("[site](https://example.com)")
	assert.Contains(t, out, `<a href="https://example.com">site</a>`)

	out = RenderMarkdown("[mail](mailto:a@example.com)")
	assert.Contains(t, out, `href="mailto:a@example.com"`)

	out = RenderMarkdown("- one\n- two")
	assert.Contains(t, out, "<ul>")
	assert.Contains(t, out, "<li>one</li>")

	out = RenderMarkdown("    code()")
	assert.Contains(t, out, "<pre><code>")
}

func TestRenderMarkdownHardWraps(t *testing.T) {
	out := RenderMarkdown("first\nsecond")
	assert.Contains(t, out, "first<br")
	assert.Contains(t, out, "second")
}

func TestRenderMarkdownStripsTagKeepsText(t *testing.T) {
	out := RenderMarkdown("<span>keep</span> me")
	assert.NotContains(t, out, "<span")
	assert.Contains(t, out, "keep")
	assert.Contains(t, out, "me")
}

func TestRenderMarkdownXSSCorpus(t *testing.T) {
	payloads := []string{
		"<script>alert(1)</script>",
		"<SCRIPT SRC=//evil.example/xss.js></SCRIPT>",
		"\"><script>alert(1)</script>",
		"<img src=x onerror=alert(1)>",
		"<svg onload=alert(1)>",
		"<iframe src=\"https://evil.example\"></iframe>",
		"<style>body{display:none}</style>",
		"<form action=\"/steal\"><input name=\"q\"></form>",
		"<p onmouseover=\"alert(1)\">hover</p>",
		"<a href=\"https://ok.example\" onclick=\"alert(1)\">ok</a>",
		"<a href=\"javascript:alert(1)\">x</a>",
		"<a href=\"  javascript:alert(1)\">x</a>",
		"[x](javascript:alert(1))",
		"[x](JaVaScRiPt:alert(1))",
		"**bold** <script>alert(1)</script>",
		"[x](&#106;avascript:alert(1))",
		"[x](&#x6A;avascript&#58;alert(1))",
		"<a href=\"&#106;avascript:alert(1)\">x</a>",
		"<a href=\"java&#x09;script:alert(1)\">x</a>",
	}
	forbidden := []string{
		"<script", "javascript:", "onerror", "onclick", "onload", "onmouseover",
		"<iframe", "<style", "<form", "<input", "<img", "<svg",
	}
	for _, p := range payloads {
		out := strings.ToLower(RenderMarkdown(p))
		for _, f := range forbidden {
			assert.NotContains(t, out, f, "payload %q", p)
		}
	}
}

func TestRenderMarkdownAutolinkLosesHref(t *testing.T) {
	for _, p := range []string{"<javascript:alert(1)>", "<JAVASCRIPT:alert(1)>"} {
		out := strings.ToLower(RenderMarkdown(p))
		assert.NotContains(t, out, "href", "payload %q", p)
		assert.NotContains(t, out, "<a", "payload %q", p)
		assert.Contains(t, out, "alert(1)", "payload %q", p)
	}
	assert.Contains(t, RenderMarkdown("<https://ok.example>"), `href="https://ok.example"`)
}

func TestRenderMarkdownKeepsSourceIntact(t *testing.T) {
	src := "<script>alert(1)</script>"
	_ = RenderMarkdown(src)
	assert.Equal(t, "<script>alert(1)</script>", src)
}

func TestRenderPlain(t *testing.T) {
	assert.Equal(t, "a<br>b<br>c<br>d", RenderPlain("a\r\nb\rc\nd"))
	assert.Equal(t, "x<br>y", RenderPlain(EscapeHTML("x<br>y")))
	assert.Equal(t, "x<br>y", RenderPlain(EscapeHTML("x<br/>y")))
	assert.Equal(t, "x<br>y", RenderPlain(EscapeHTML("x<br />y")))
	assert.Equal(t, "&lt;script&gt;alert(1)&lt;/script&gt;", RenderPlain(EscapeHTML("<script>alert(1)</script>")))
}

func TestFormatTimestamp(t *testing.T) {
	assert.Equal(t, "", FormatTimestamp(0))
	assert.Equal(t, "2024-01-02 03:04 UTC", FormatTimestamp(1704164640))
}
