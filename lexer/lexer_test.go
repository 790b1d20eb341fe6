package lexer

import (
	"testing"

	"github.com/plzero-lang/plzero/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexKeywordsAndIdents(t *testing.T) {
	res := Lex("const x = 10; var y;")
	require.False(t, res.Errors.HasErrors())

	want := []token.Kind{
		token.Const, token.Ident, token.Eq, token.Number, token.Semicolon,
		token.Var, token.Ident, token.Semicolon,
	}
	require.Len(t, res.Lexemes, len(want))
	for i, k := range want {
		assert.Equal(t, k, res.Lexemes[i].Kind, "lexeme %d", i)
	}
	assert.Equal(t, "x", res.Lexemes[1].Text)
	assert.Equal(t, "10", res.Lexemes[3].Text)
}

func TestLexMultiCharOperators(t *testing.T) {
	res := Lex("<= <> >= := < > =")
	require.False(t, res.Errors.HasErrors())

	want := []string{"<=", "<>", ">=", ":=", "<", ">", "="}
	require.Len(t, res.Lexemes, len(want))
	for i, w := range want {
		assert.Equal(t, w, res.Lexemes[i].Text)
	}
}

func TestLexBlockComment(t *testing.T) {
	res := Lex("const /* this is ignored */ x = 1;")
	require.False(t, res.Errors.HasErrors())

	var texts []string
	for _, lx := range res.Lexemes {
		texts = append(texts, lx.Text)
	}
	assert.Equal(t, []string{"const", "x", "=", "1", ";"}, texts)
}

func TestLexUnterminatedComment(t *testing.T) {
	res := Lex("const x /* never closes")
	require.True(t, res.Errors.HasErrors())
	assert.Contains(t, res.Errors.Error(), "comment started but never closed")
}

func TestLexStrayColon(t *testing.T) {
	res := Lex(": x")
	require.True(t, res.Errors.HasErrors())
	assert.Contains(t, res.Errors.Error(), "not followed by =")
	for _, lx := range res.Lexemes {
		assert.NotEqual(t, ":", lx.Text)
	}
}

func TestLexIdentifierTooLong(t *testing.T) {
	res := LexWithLimits("abcdefghijklmnop", 11, 5)
	require.True(t, res.Errors.HasErrors())
	assert.Contains(t, res.Errors.Error(), "exceeds 11 characters")
	require.Len(t, res.Lexemes, 1)
	assert.Equal(t, token.Ident, res.Lexemes[0].Kind)
}

func TestLexNumberTooLong(t *testing.T) {
	res := LexWithLimits("123456", 11, 5)
	require.True(t, res.Errors.HasErrors())
	assert.Contains(t, res.Errors.Error(), "exceeds 5 characters")
}

func TestLexNumberFollowedByLetter(t *testing.T) {
	res := Lex("1abc")
	require.True(t, res.Errors.HasErrors())
	assert.Contains(t, res.Errors.Error(), "starts with a number")
}

func TestLexUnknownSymbol(t *testing.T) {
	res := Lex("x @ y")
	require.True(t, res.Errors.HasErrors())
	assert.Contains(t, res.Errors.Error(), "unknown symbol type found: @")
}

func TestLexemeListFormatsIdentsAndNumbers(t *testing.T) {
	res := Lex("x 5 +")
	listing := res.Listing()
	assert.Contains(t, listing, "Source Program:")
	assert.Contains(t, listing, "Lexeme Table:")
	assert.Contains(t, listing, "Lexeme List:")
	assert.Contains(t, listing, "x")
	assert.Contains(t, listing, "5")
}

func TestLexEmptyInput(t *testing.T) {
	res := Lex("")
	assert.Empty(t, res.Lexemes)
	assert.False(t, res.Errors.HasErrors())
}
