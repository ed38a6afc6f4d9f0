package formatter

import (
	"math/rand"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
		{
			name:  "whitespace only",
			input: "\n\n  \n",
			want:  "",
		},
		{
			name:  "plain text",
			input: "plain text",
			want:  "<p>plain text</p>",
		},
		{
			name:  "bold",
			input: "**bold**",
			want:  "<p><strong>bold</strong></p>",
		},
		{
			name:  "bold is non-greedy",
			input: "**a** and **b**",
			want:  "<p><strong>a</strong> and <strong>b</strong></p>",
		},
		{
			name:  "bold does not cross lines",
			input: "**a\nb**",
			want:  "<p>**a b**</p>",
		},
		{
			name:  "heading then paragraph",
			input: "# Title\n\nBody text",
			want:  "<h1>Title</h1><p>Body text</p>",
		},
		{
			name:  "heading levels",
			input: "# one\n## two\n### three\n#### four",
			want:  "<h1>one</h1><h2>two</h2><h3>three</h3><h4>four</h4>",
		},
		{
			name:  "five hashes are not a heading",
			input: "##### five",
			want:  "<p>##### five</p>",
		},
		{
			name:  "hash without space is not a heading",
			input: "#hashtag",
			want:  "<p>#hashtag</p>",
		},
		{
			name:  "link",
			input: "[click](http://x)",
			want:  `<p><a href="http://x">click</a></p>`,
		},
		{
			name:  "link url is verbatim",
			input: "see [docs](https://example.com/a?b=1&c=2)",
			want:  `<p>see <a href="https://example.com/a?b=1&c=2">docs</a></p>`,
		},
		{
			name:  "bullet list is one wrapper",
			input: "- a\n- b\n",
			want:  "<ul><li>a</li><li>b</li></ul>",
		},
		{
			name:  "star bullets",
			input: "* a\n* b",
			want:  "<ul><li>a</li><li>b</li></ul>",
		},
		{
			name:  "numbered list",
			input: "1. first\n2. second\n10. tenth",
			want:  "<ul><li>first</li><li>second</li><li>tenth</li></ul>",
		},
		{
			name:  "heading directly followed by list",
			input: "## Action items\n- reply to Bob\n- book flights",
			want:  "<h2>Action items</h2><ul><li>reply to Bob</li><li>book flights</li></ul>",
		},
		{
			name:  "list without surrounding blank lines",
			input: "Intro line\n- a\n- b\nOutro line",
			want:  "<p>Intro line</p><ul><li>a</li><li>b</li></ul><p>Outro line</p>",
		},
		{
			name:  "heading inside text block is not wrapped",
			input: "Intro\n# Heading\nMore",
			want:  "<p>Intro</p><h1>Heading</h1><p>More</p>",
		},
		{
			name:  "separate lists stay separate",
			input: "- a\n\ntext\n\n- b",
			want:  "<ul><li>a</li></ul><p>text</p><ul><li>b</li></ul>",
		},
		{
			name:  "bold inside list item",
			input: "* **Date:** Friday\n* **Place:** Berlin",
			want:  "<ul><li><strong>Date:</strong> Friday</li><li><strong>Place:</strong> Berlin</li></ul>",
		},
		{
			name:  "paragraph lines are joined without break markers",
			input: "line one\nline two\n\nnext paragraph",
			want:  "<p>line one line two</p><p>next paragraph</p>",
		},
		{
			name:  "single line break becomes a space",
			input: "line one\nline two",
			want:  "<p>line one line two</p>",
		},
		{
			name:  "explicit br inside paragraph",
			input: "one<br>two <br/> three",
			want:  "<p>one two three</p>",
		},
		{
			name:  "crlf input",
			input: "# Title\r\n\r\n- a\r\n- b\r\n",
			want:  "<h1>Title</h1><ul><li>a</li><li>b</li></ul>",
		},
		{
			name:  "unrecognised syntax passes through",
			input: "a > b and `code` and _under_",
			want:  "<p>a > b and `code` and _under_</p>",
		},
		{
			name: "typical model output",
			input: "## Key Points\n\n" +
				"**Meeting** moved to *Thursday*.\n\n" +
				"* Agenda: [doc](https://docs.example.com/1)\n" +
				"* Bring laptop\n\n" +
				"Let me know if you need more.",
			want: "<h2>Key Points</h2>" +
				"<p><strong>Meeting</strong> moved to *Thursday*.</p>" +
				`<ul><li>Agenda: <a href="https://docs.example.com/1">doc</a></li><li>Bring laptop</li></ul>` +
				"<p>Let me know if you need more.</p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.input))
		})
	}
}

func TestStageOrder(t *testing.T) {
	assert.Equal(t, []string{
		StageHeadings,
		StageBold,
		StageLinks,
		StageListItems,
		StageListGroups,
		StageListBreaks,
		StageParagraphs,
		StageLineBreaks,
	}, Stages.StageNames())
}

func TestStageOrderMatters(t *testing.T) {
	input := "- a\n- b"

	// Run paragraph wrapping before list detection.
	reordered := make(Pipeline, 0, len(Stages))
	var paragraphs Stage
	for _, s := range Stages {
		if s.Name == StageParagraphs {
			paragraphs = s
		}
	}
	for _, s := range Stages {
		switch s.Name {
		case StageParagraphs:
			continue
		case StageListItems:
			reordered = append(reordered, paragraphs)
		}
		reordered = append(reordered, s)
	}
	require.Len(t, reordered, len(Stages))

	assert.Equal(t, "<ul><li>a</li><li>b</li></ul>", Stages.Apply(input))
	assert.Equal(t, "<p>- a <ul><li>b</p></li></ul>", reordered.Apply(input))
}

func TestStages(t *testing.T) {
	tests := []struct {
		stage string
		input string
		want  string
	}{
		{StageHeadings, "## a\n# b", "<h2>a</h2>\n<h1>b</h1>"},
		{StageBold, "**x** y **z**", "<strong>x</strong> y <strong>z</strong>"},
		{StageLinks, "[t](u)", `<a href="u">t</a>`},
		{StageListItems, "- a\n  * b\n3. c\nd", "<li>a</li>\n<li>b</li>\n<li>c</li>\nd"},
		{StageListGroups, "x\n<li>a</li>\n<li>b</li>\ny", "x\n<ul><li>a</li>\n<li>b</li></ul>\ny"},
		{StageListBreaks, "<ul><li>a</li>\n<br><li>b</li></ul>\n", "<ul><li>a</li><li>b</li></ul>\n"},
		{StageParagraphs, "a\nb\n\n<h1>c</h1>", "<p>a\nb</p><h1>c</h1>"},
		{StageLineBreaks, "<p>a\nb<br>c</p>", "<p>a b c</p>"},
		{StageLineBreaks, "<p>a<br>\n<br>b</p>", "<p>a<br><br>b</p>"},
	}

	byName := make(map[string]Stage, len(Stages))
	for _, s := range Stages {
		byName[s.Name] = s
	}

	for _, tt := range tests {
		t.Run(tt.stage, func(t *testing.T) {
			s, ok := byName[tt.stage]
			require.True(t, ok, "stage %s not registered", tt.stage)
			assert.Equal(t, tt.want, s.Apply(tt.input))
		})
	}
}

func TestFormatBalancedTags(t *testing.T) {
	tokens := []string{
		"# ", "## ", "### ", "#### ", "- ", "* ", "1. ", "**", "[", "](", ")",
		"word", "other", " ", "\n", "\n\n", "http://x",
	}
	openTags := make(map[string]*regexp.Regexp)
	for _, tag := range []string{"h1", "h2", "h3", "h4", "strong", "a", "ul", "li", "p"} {
		openTags[tag] = regexp.MustCompile(`<` + tag + `\b[^>]*>`)
	}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 2000; i++ {
		var b strings.Builder
		n := rng.Intn(30)
		for j := 0; j < n; j++ {
			b.WriteString(tokens[rng.Intn(len(tokens))])
		}
		input := b.String()
		html := Format(input)
		for tag, re := range openTags {
			open := len(re.FindAllString(html, -1))
			closed := strings.Count(html, "</"+tag+">")
			assert.Equal(t, open, closed, "tag %s unbalanced for input %q: %s", tag, input, html)
		}
	}
}
