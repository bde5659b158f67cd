package parser

import "path/filepath"

// Tag identifies a programming language.
type Tag string

const (
	TagPython     Tag = "python"
	TagJavaScript Tag = "javascript"
	TagGo         Tag = "go"
	TagUnknown    Tag = "unknown"
)

// extensionTags is the identification policy. Extensions are matched
// case-sensitively.
var extensionTags = map[string]Tag{
	".py": TagPython,
	".js": TagJavaScript,
}

// Identify maps a file path to a language tag by its extension. Paths with
// an unrecognised extension identify as TagUnknown.
func Identify(path string) Tag {
	if tag, ok := extensionTags[filepath.Ext(path)]; ok {
		return tag
	}
	return TagUnknown
}

