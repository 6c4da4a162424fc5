package parser

// Entry is a localization line carrying a key and a quoted, translatable payload.
//
// A line such as ` KEY.1:0 "Hello"` splits into Indent " ", Key "KEY.1:",
// Suffix "0", Sep " " and Payload "Hello".
type Entry struct {
	// Indent is the leading whitespace of the line.
	Indent string
	// Key is the entry key including its trailing colon.
	Key string
	// Suffix is the optional version number written right after the colon.
	Suffix string
	// Sep is the whitespace between the key (or suffix) and the opening quote.
	Sep string
	// Payload is the text between the first and the last double quote.
	Payload string
	// Trailing is any whitespace after the closing quote.
	Trailing string
	// RawLine is the line exactly as it was read.
	RawLine string
}

// String re-serializes the entry. For an unmodified entry it equals RawLine.
func (e *Entry) String() string {
	return e.Indent + e.Key + e.Suffix + e.Sep + `"` + e.Payload + `"` + e.Trailing
}

// Rewrite renders the entry in canonical form with a new payload.
func (e *Entry) Rewrite(payload string) string {
	return e.Indent + e.Key + e.Suffix + ` "` + payload + `"`
}

// Line is one physical line of a localization file. Lines with a nil Entry
// are passthrough lines and are copied verbatim.
type Line struct {
	// Text is the current output text of the line.
	Text string
	// Entry is the parsed structure of the source line, if it is an entry.
	Entry *Entry
	// EOL is the terminator that followed the line in the source, empty for
	// an unterminated last line.
	EOL string
}

// IsEntry reports whether the line was classified as a structural entry.
func (l Line) IsEntry() bool { return l.Entry != nil }

// File holds a parsed localization file for the duration of one run.
type File struct {
	// SourcePath is the path the file was read from.
	SourcePath string
	// TargetPath is the path the translated file is written to.
	TargetPath string
	// Lines are the classified lines in file order.
	Lines []Line
	// Newline is the dominant line terminator of the source ("\n" or "\r\n"),
	// used for lines that carry no terminator of their own.
	Newline string
	// FinalNewline records whether the source ended with a line terminator.
	FinalNewline bool
}
