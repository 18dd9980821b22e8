package output

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/temirov/overview/internal/types"
)

const (
	indentPrefix = ""
	indentSpacer = "  "
)

// SideDocument is the machine-readable companion of the text overview.
type SideDocument struct {
	Root     string             `json:"root"`
	Patterns types.PatternSet   `json:"patterns"`
	Tree     *types.TreeNode    `json:"tree,omitempty"`
	Files    []types.FileRecord `json:"files"`
}

// WriteTo encodes the document as indented JSON.
func (document SideDocument) WriteTo(writer io.Writer) (int64, error) {
	if document.Files == nil {
		document.Files = []types.FileRecord{}
	}
	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent(indentPrefix, indentSpacer)
	if encodeError := encoder.Encode(document); encodeError != nil {
		return 0, encodeError
	}
	return buffer.WriteTo(writer)
}
