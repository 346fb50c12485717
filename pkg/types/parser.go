package types

// ParseResult represents the output of parsing a text or Markdown source file
type ParseResult struct {
	// Extracted data
	Title    string
	Sections []Section

	// Errors encountered during parsing
	Errors []ParseError
}

// Section is a headed part of a source file. The leading section of a file
// has an empty Heading.
type Section struct {
	Heading    string
	Anchor     string
	Paragraphs []string
}

// ParseError represents an error that occurred during parsing
type ParseError struct {
	File    string
	Line    int
	Message string
}

// Error implements the error interface
func (pe *ParseError) Error() string {
	return pe.Message
}

// HasErrors returns true if any parsing errors occurred
func (pr *ParseResult) HasErrors() bool {
	return len(pr.Errors) > 0
}

// AddError adds a parsing error to the result
func (pr *ParseResult) AddError(file string, line int, msg string) {
	pr.Errors = append(pr.Errors, ParseError{
		File:    file,
		Line:    line,
		Message: msg,
	})
}

// Paragraphs returns every paragraph of every section in file order.
func (pr *ParseResult) Paragraphs() []string {
	var out []string
	for _, s := range pr.Sections {
		out = append(out, s.Paragraphs...)
	}
	return out
}
