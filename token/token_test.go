package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindStringKnown(t *testing.T) {
	assert.Equal(t, "ident", Ident.String())
	assert.Equal(t, "+", Plus.String())
	assert.Equal(t, "begin", Begin.String())
}

func TestKindStringUnknown(t *testing.T) {
	assert.Equal(t, "Kind(0)", Kind(0).String())
}

func TestReservedCoversAllKeywords(t *testing.T) {
	for _, word := range []string{"begin", "end", "if", "then", "while", "do",
		"call", "const", "var", "procedure", "write", "read", "odd", "else"} {
		kind, ok := Reserved[word]
		assert.True(t, ok, "missing reserved word %q", word)
		assert.NotEqual(t, Ident, kind)
	}
}

func TestSpecialCoversMultiCharOperators(t *testing.T) {
	assert.Equal(t, Neq, Special["<>"])
	assert.Equal(t, Leq, Special["<="])
	assert.Equal(t, Geq, Special[">="])
	assert.Equal(t, Becomes, Special[":="])
}

func TestStatementStartExcludesExpressionTokens(t *testing.T) {
	assert.True(t, StatementStart[Begin])
	assert.True(t, StatementStart[If])
	assert.False(t, StatementStart[Plus])
}

func TestRelOpCoversAllSix(t *testing.T) {
	for _, k := range []Kind{Eq, Neq, Lss, Leq, Gtr, Geq} {
		assert.True(t, RelOp[k])
	}
	assert.False(t, RelOp[Plus])
}
