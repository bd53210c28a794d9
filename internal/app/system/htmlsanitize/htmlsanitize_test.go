package htmlsanitize_test

import (
	"strings"
	"testing"

	"github.com/dalemusser/studyhub/internal/app/system/htmlsanitize"
)

func TestSanitize_Preserves(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"plain text", "Hello, World!"},
		{"formatting", "<p><strong>Bold</strong> and <em>italic</em></p>"},
		{"unordered list", "<ul><li>Item 1</li><li>Item 2</li></ul>"},
		{"ordered list", "<ol><li>First</li><li>Second</li></ol>"},
		{"blockquote", "<blockquote>A quote</blockquote>"},
		{"headings", "<h1>Heading 1</h1><h2>Heading 2</h2><h3>Heading 3</h3>"},
		{"code block", "<pre><code>func main() {}</code></pre>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := htmlsanitize.Sanitize(tt.input); got != tt.input {
				t.Errorf("Sanitize(%q): got %q", tt.input, got)
			}
		})
	}
}

func TestSanitize_Removes(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		forbidden string
		keep      string
	}{
		{"script", "<p>Hello</p><script>alert('xss')</script>", "script", "<p>Hello</p>"},
		{"onclick", `<p onclick="alert('xss')">Click</p>`, "onclick", "Click"},
		{"javascript href", `<a href="javascript:alert('xss')">Click</a>`, "javascript:", "Click"},
		{"iframe", `<p>Content</p><iframe src="https://evil.com"></iframe>`, "iframe", "Content"},
		{"style tag", `<style>body { color: red; }</style><p>Text</p>`, "<style>", "Text"},
		{"onerror", `<img src="x" onerror="alert('xss')">`, "onerror", ""},
		{"form", `<form action="/submit"><input type="text" name="data"></form>`, "<input", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := htmlsanitize.Sanitize(tt.input)
			if strings.Contains(got, tt.forbidden) {
				t.Errorf("Sanitize(%q): got %q, should not contain %q", tt.input, got, tt.forbidden)
			}
			if !strings.Contains(got, tt.keep) {
				t.Errorf("Sanitize(%q): got %q, should contain %q", tt.input, got, tt.keep)
			}
		})
	}
}

func TestSanitize_AllowsSafeLinks(t *testing.T) {
	got := htmlsanitize.Sanitize(`<a href="https://example.com">Link</a>`)
	if !strings.Contains(got, "https://example.com") {
		t.Errorf("expected safe link preserved, got %q", got)
	}
}

func TestSanitize_AllowsTableAttributes(t *testing.T) {
	got := htmlsanitize.Sanitize(`<table class="t"><tr><td colspan="2" rowspan="2">Cell</td></tr></table>`)
	for _, want := range []string{`class="t"`, `colspan="2"`, `rowspan="2"`} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %s preserved, got %q", want, got)
		}
	}
}

func TestIsPlainText(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"Hello, World!", true},
		{"5 < 10", true},
		{"5 > 3", true},
		{"<p>Hello</p>", false},
	}
	for _, tt := range tests {
		if got := htmlsanitize.IsPlainText(tt.input); got != tt.want {
			t.Errorf("IsPlainText(%q): got %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestPlainTextToHTML(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"Hello, World!", "<p>Hello, World!</p>"},
		{"Line 1\nLine 2\nLine 3", "<p>Line 1<br>Line 2<br>Line 3</p>"},
		{"A & B", "<p>A &amp; B</p>"},
		{"<b>x</b>", "<p>&lt;b&gt;x&lt;/b&gt;</p>"},
	}
	for _, tt := range tests {
		if got := htmlsanitize.PlainTextToHTML(tt.input); got != tt.want {
			t.Errorf("PlainTextToHTML(%q): got %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestPrepare(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"Hello, World!", "<p>Hello, World!</p>"},
		{"Line 1\nLine 2", "<p>Line 1<br>Line 2</p>"},
		{"<p>Hello</p>", "<p>Hello</p>"},
		{"<p>Hello</p><script>alert('xss')</script>", "<p>Hello</p>"},
	}
	for _, tt := range tests {
		if got := htmlsanitize.Prepare(tt.input); got != tt.want {
			t.Errorf("Prepare(%q): got %q, want %q", tt.input, got, tt.want)
		}
	}
}
