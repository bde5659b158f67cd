package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeclarationIDIsDeterministic(t *testing.T) {
	t.Parallel()

	fileID := NewFileID()
	a := DeclarationID(fileID, KindFunction, "MyClass.method_one", 2, 4)
	b := DeclarationID(fileID, KindFunction, "MyClass.method_one", 2, 4)
	assert.Equal(t, a, b)

	_, err := uuid.Parse(a)
	require.NoError(t, err)

	assert.NotEqual(t, a, DeclarationID(fileID, KindClass, "MyClass.method_one", 2, 4))
	assert.NotEqual(t, a, DeclarationID(fileID, KindFunction, "method_one", 2, 4))
	assert.NotEqual(t, a, DeclarationID(fileID, KindFunction, "MyClass.method_one", 2, 8))
	assert.NotEqual(t, a, DeclarationID(NewFileID(), KindFunction, "MyClass.method_one", 2, 4))
}

func TestDeclarationIDAcceptsNonUUIDFileID(t *testing.T) {
	t.Parallel()

	a := DeclarationID("file-1", KindClass, "C", 1, 0)
	assert.Equal(t, a, DeclarationID("file-1", KindClass, "C", 1, 0))
	assert.NotEqual(t, a, DeclarationID("file-2", KindClass, "C", 1, 0))
}

func TestQualifiedPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "f", QualifiedPath(nil, "f"))
	assert.Equal(t, "A.B.f", QualifiedPath([]string{"A", "B"}, "f"))
}

func TestDeclarationsAndContains(t *testing.T) {
	t.Parallel()

	pf := &ParsedFile{
		Functions: []FunctionDeclaration{{ID: "f", Name: "m", StartLine: 2, EndLine: 3}},
		Classes:   []ClassDeclaration{{ID: "c", Name: "C", StartLine: 1, EndLine: 3}},
	}
	decls := pf.Declarations()
	require.Len(t, decls, 2)
	assert.Equal(t, KindClass, decls[0].Kind)
	assert.Equal(t, KindFunction, decls[1].Kind)

	assert.True(t, decls[0].Contains(decls[1].Declaration))
	assert.False(t, decls[1].Contains(decls[0].Declaration))
}
