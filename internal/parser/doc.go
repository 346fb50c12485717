// Package parser reads Markdown and plain-text files into a title and a list
// of sections made of paragraphs.
//
//	p := parser.New()
//	result, err := p.ParseFile("notes/meeting.md")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Title)
//	for _, s := range result.Sections {
//	    fmt.Println(s.Heading, len(s.Paragraphs))
//	}
//
// The title is the first ATX heading, else the first non-empty line, else
// the file name without extension. Plain-text files never have headings.
//
// Markdown inline syntax (links, images, emphasis, inline code, HTML tags
// and entities) and list or quote prefixes are removed so only visible text
// is indexed. Fenced code blocks are kept verbatim as single paragraphs.
//
// Parse errors are non-fatal and collected in ParseResult.Errors.
package parser
