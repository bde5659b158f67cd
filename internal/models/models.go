package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Kind distinguishes the declaration families the extractor recognises.
type Kind string

const (
	KindFunction Kind = "function"
	KindClass    Kind = "class"
)

// Declaration is the shared shape of every extracted record. Line numbers are
// 1-based and inclusive.
type Declaration struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	FileID    string `json:"fileId" yaml:"fileId"`
	StartLine int    `json:"startLine" yaml:"startLine"`
	EndLine   int    `json:"endLine" yaml:"endLine"`
}

// FunctionDeclaration is a named function or method.
type FunctionDeclaration Declaration

// ClassDeclaration is a named class (or the closest equivalent construct of
// the bound language).
type ClassDeclaration Declaration

// ParsedFile is the result of one extraction call. It holds no reference to
// the syntax tree it was built from.
type ParsedFile struct {
	ID        string                `json:"id" yaml:"id"`
	FilePath  string                `json:"filePath" yaml:"filePath"`
	Language  string                `json:"language" yaml:"language"`
	Functions []FunctionDeclaration `json:"functions" yaml:"functions"`
	Classes   []ClassDeclaration    `json:"classes" yaml:"classes"`
}

// NewFileID returns a random identifier unique to one parse invocation.
func NewFileID() string {
	return uuid.NewString()
}

// DeclarationID derives a stable identifier from the owning file, the kind,
// the dotted path of enclosing declarations and the start position. Two
// declarations of the same kind cannot start at the same point, so the
// result is unique within a file.
func DeclarationID(fileID string, kind Kind, qualifiedPath string, startLine, startColumn int) string {
	namespace, err := uuid.Parse(fileID)
	if err != nil {
		namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte(fileID))
	}
	name := fmt.Sprintf("%s\x00%s\x00%d:%d", kind, qualifiedPath, startLine, startColumn)
	return uuid.NewSHA1(namespace, []byte(name)).String()
}

// QualifiedPath joins enclosing declaration names with the declaration's own
// name, e.g. "MyClass.method_one".
func QualifiedPath(scope []string, name string) string {
	if len(scope) == 0 {
		return name
	}
	return strings.Join(scope, ".") + "." + name
}

// Declarations returns every record of the file as plain Declarations,
// classes first, each kind in extraction order.
func (f *ParsedFile) Declarations() []KindedDeclaration {
	out := make([]KindedDeclaration, 0, len(f.Classes)+len(f.Functions))
	for _, c := range f.Classes {
		out = append(out, KindedDeclaration{Kind: KindClass, Declaration: Declaration(c)})
	}
	for _, fn := range f.Functions {
		out = append(out, KindedDeclaration{Kind: KindFunction, Declaration: Declaration(fn)})
	}
	return out
}

// KindedDeclaration pairs a record with its kind for consumers that merge the
// two lists.
type KindedDeclaration struct {
	Kind Kind
	Declaration
}

// Contains reports whether d's line range encloses other's.
func (d Declaration) Contains(other Declaration) bool {
	return d.StartLine <= other.StartLine && other.EndLine <= d.EndLine
}
