package formatter

import (
	"regexp"
	"strings"
)

// Stage is a single named text transform. Apply must be pure.
type Stage struct {
	Name  string
	Apply func(string) string
}

// Pipeline is an ordered list of stages composed left to right.
type Pipeline []Stage

// Apply runs every stage on the output of the previous one.
func (p Pipeline) Apply(in string) string {
	out := in
	for _, s := range p {
		out = s.Apply(out)
	}
	return out
}

// StageNames returns the stage names in execution order.
func (p Pipeline) StageNames() []string {
	names := make([]string, 0, len(p))
	for _, s := range p {
		names = append(names, s.Name)
	}
	return names
}

// Stage names. Later stages key off HTML inserted by earlier ones, so the
// order of Stages is significant.
const (
	StageHeadings   = "headings"
	StageBold       = "bold"
	StageLinks      = "links"
	StageListItems  = "list-items"
	StageListGroups = "list-groups"
	StageListBreaks = "list-breaks"
	StageParagraphs = "paragraphs"
	StageLineBreaks = "line-breaks"
)

// Stages is the markdown-to-HTML pipeline used by Format.
var Stages = Pipeline{
	{Name: StageHeadings, Apply: convertHeadings},
	{Name: StageBold, Apply: convertBold},
	{Name: StageLinks, Apply: convertLinks},
	{Name: StageListItems, Apply: convertListItems},
	{Name: StageListGroups, Apply: groupListItems},
	{Name: StageListBreaks, Apply: stripListBreaks},
	{Name: StageParagraphs, Apply: wrapParagraphs},
	{Name: StageLineBreaks, Apply: stripLineBreaks},
}

// Format converts the markdown subset emitted by the summary model into an
// HTML fragment suitable for an email body. It never fails: anything it
// does not recognise is passed through as text.
func Format(in string) string {
	in = strings.ReplaceAll(in, "\r\n", "\n")
	return Stages.Apply(in)
}

// headingPatterns are ordered longest prefix first so "##" is never read as "#".
var headingPatterns = []struct {
	re  *regexp.Regexp
	tag string
}{
	{regexp.MustCompile(`(?m)^#### (.+)$`), "h4"},
	{regexp.MustCompile(`(?m)^### (.+)$`), "h3"},
	{regexp.MustCompile(`(?m)^## (.+)$`), "h2"},
	{regexp.MustCompile(`(?m)^# (.+)$`), "h1"},
}

var (
	boldPattern      = regexp.MustCompile(`\*\*(.+?)\*\*`)
	linkPattern      = regexp.MustCompile(`\[([^\]\n]+)\]\(([^)\s]+)\)`)
	listItemPattern  = regexp.MustCompile(`(?m)^[ \t]*(?:[-*]|\d+\.)[ \t]+(.*)$`)
	listRunPattern   = regexp.MustCompile(`(?m)(?:^<li>.*</li>(?:\n|$))+`)
	listBlockPattern = regexp.MustCompile(`(?s)<ul>.*?</ul>`)
	breakPattern     = regexp.MustCompile(`(?i)<br\s*/?>`)
	blankLinePattern = regexp.MustCompile(`\n{2,}`)
	breakRunPattern  = regexp.MustCompile(`(?i)(?:[ \t]*(?:\n|<br\s*/?>))+[ \t]*`)
	blockTagPattern  = regexp.MustCompile(`(?i)^<(?:ul|ol|li|h[1-6]|p|div|blockquote|pre|table|hr)\b`)
)

func convertHeadings(s string) string {
	for _, h := range headingPatterns {
		s = h.re.ReplaceAllString(s, "<"+h.tag+">$1</"+h.tag+">")
	}
	return s
}

func convertBold(s string) string {
	return boldPattern.ReplaceAllString(s, "<strong>$1</strong>")
}

func convertLinks(s string) string {
	return linkPattern.ReplaceAllString(s, `<a href="$2">$1</a>`)
}

func convertListItems(s string) string {
	return listItemPattern.ReplaceAllString(s, "<li>$1</li>")
}

func groupListItems(s string) string {
	return listRunPattern.ReplaceAllStringFunc(s, func(run string) string {
		items := strings.TrimRight(run, "\n")
		return "<ul>" + items + "</ul>" + run[len(items):]
	})
}

func stripListBreaks(s string) string {
	return listBlockPattern.ReplaceAllStringFunc(s, func(list string) string {
		list = breakPattern.ReplaceAllString(list, "")
		return strings.ReplaceAll(list, "\n", "")
	})
}

func wrapParagraphs(s string) string {
	var out []string
	for _, block := range blankLinePattern.Split(s, -1) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		out = append(out, wrapBlock(block)...)
	}
	return strings.Join(out, "")
}

// wrapBlock wraps each run of text lines in a paragraph and leaves lines that
// already open a block element alone.
func wrapBlock(block string) []string {
	var (
		out  []string
		text []string
	)
	flush := func() {
		if len(text) > 0 {
			out = append(out, "<p>"+strings.Join(text, "\n")+"</p>")
			text = nil
		}
	}
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case blockTagPattern.MatchString(line):
			flush()
			out = append(out, line)
		default:
			text = append(text, line)
		}
	}
	flush()
	return out
}

// stripLineBreaks turns a single newline or <br> into a space. Runs of two
// or more are an explicit gap and collapse to one double break.
func stripLineBreaks(s string) string {
	return breakRunPattern.ReplaceAllStringFunc(s, func(run string) string {
		if strings.Count(run, "\n")+len(breakPattern.FindAllString(run, -1)) > 1 {
			return "<br><br>"
		}
		return " "
	})
}
