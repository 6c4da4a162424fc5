package parser

import (
	"regexp"
	"strings"
)

// entryPattern matches ` key:0 "payload"` lines. The payload is non-greedy but
// anchored to the end of the line, so it runs to the last quote.
var entryPattern = regexp.MustCompile(`^(\s+)([\w.-]+:)(\d+)?(\s+)"(.*?)"(\s*)$`)

// Classify parses a single raw line into an entry or a passthrough line.
func Classify(raw string) Line {
	m := entryPattern.FindStringSubmatch(raw)
	if m == nil {
		return Line{Text: raw}
	}
	return Line{
		Text: raw,
		Entry: &Entry{
			Indent:   m[1],
			Key:      m[2],
			Suffix:   m[3],
			Sep:      m[4],
			Payload:  m[5],
			Trailing: m[6],
			RawLine:  raw,
		},
	}
}

// Parse splits file content into classified lines. Every line keeps its own
// terminator, so files mixing "\n" and "\r\n" are written back unchanged.
func Parse(data []byte) *File {
	content := string(data)
	f := &File{Newline: "\n"}
	if content == "" {
		return f
	}
	f.FinalNewline = strings.HasSuffix(content, "\n")

	raw := strings.SplitAfter(content, "\n")
	if raw[len(raw)-1] == "" {
		raw = raw[:len(raw)-1]
	}

	crlf, lf := 0, 0
	f.Lines = make([]Line, 0, len(raw))
	for _, piece := range raw {
		text, eol := piece, ""
		switch {
		case strings.HasSuffix(piece, "\r\n"):
			text, eol = piece[:len(piece)-2], "\r\n"
			crlf++
		case strings.HasSuffix(piece, "\n"):
			text, eol = piece[:len(piece)-1], "\n"
			lf++
		}
		line := Classify(text)
		line.EOL = eol
		f.Lines = append(f.Lines, line)
	}
	if crlf > lf {
		f.Newline = "\r\n"
	}
	return f
}

// Bytes joins the current line texts, each followed by its own terminator.
func (f *File) Bytes() []byte {
	var sb strings.Builder
	for i, l := range f.Lines {
		sb.WriteString(l.Text)
		eol := l.EOL
		if eol == "" && (i < len(f.Lines)-1 || f.FinalNewline) {
			eol = f.Newline
		}
		sb.WriteString(eol)
	}
	return []byte(sb.String())
}

// Entries returns the number of structural entries in the file.
func (f *File) Entries() int {
	n := 0
	for _, l := range f.Lines {
		if l.IsEntry() {
			n++
		}
	}
	return n
}

// ReplaceHeaderTag rewrites the `l_<from>:` language tag on the first line.
// Only the first occurrence is replaced and entry lines are never touched.
func (f *File) ReplaceHeaderTag(from, to string) bool {
	if len(f.Lines) == 0 || f.Lines[0].IsEntry() {
		return false
	}
	old, repl := "l_"+from+":", "l_"+to+":"
	if !strings.Contains(f.Lines[0].Text, old) {
		return false
	}
	f.Lines[0].Text = strings.Replace(f.Lines[0].Text, old, repl, 1)
	return true
}
