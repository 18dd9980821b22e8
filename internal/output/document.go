// Package output assembles the overview document and writes it and its JSON companion
// to their destinations.
package output

import (
	"io"
	"strings"
)

// Document is the overview assembled in memory: the tree section first, then one
// block per file. It is written once, after the walk completes.
type Document struct {
	sections []string
}

// AddSection appends a section. Empty sections are dropped.
func (document *Document) AddSection(section string) {
	if section == "" {
		return
	}
	document.sections = append(document.sections, section)
}

// AddSections appends sections in order.
func (document *Document) AddSections(sections ...string) {
	for _, section := range sections {
		document.AddSection(section)
	}
}

// Empty reports whether the document has no sections.
func (document *Document) Empty() bool {
	return len(document.sections) == 0
}

// String joins the sections, separating the tree from the blocks with a blank line.
func (document *Document) String() string {
	var builder strings.Builder
	for index, section := range document.sections {
		if index > 0 && !strings.HasSuffix(builder.String(), "\n\n") {
			builder.WriteString("\n")
		}
		builder.WriteString(section)
	}
	return builder.String()
}

// WriteTo writes the document to writer.
func (document *Document) WriteTo(writer io.Writer) (int64, error) {
	written, writeError := io.WriteString(writer, document.String())
	return int64(written), writeError
}
