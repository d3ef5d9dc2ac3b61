package lsp

import (
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hc/internal/errors"
	"hc/internal/token"
)

func TestConvertCompilerErrorsMapsPositionAndSeverity(t *testing.T) {
	errs := []errors.CompilerError{
		{
			Level:    errors.Error,
			Code:     "E0202",
			Message:  "Variable 'foo' referenced before assignment on line 1",
			Position: token.Position{Line: 1, Column: 5},
			Length:   3,
		},
	}

	diags := ConvertCompilerErrors(errs)
	require.Len(t, diags, 1)

	d := diags[0]
	assert.Equal(t, uint32(0), d.Range.Start.Line) // LSP is 0-based
	assert.Equal(t, uint32(4), d.Range.Start.Character)
	assert.Equal(t, uint32(7), d.Range.End.Character)
	require.NotNil(t, d.Severity)
	assert.Equal(t, protocol.DiagnosticSeverityError, *d.Severity)
	assert.Contains(t, d.Message, "E0202")
	assert.Contains(t, d.Message, "referenced before assignment")
}

func TestConvertCompilerErrorsDefaultsSpanWhenLengthZero(t *testing.T) {
	errs := []errors.CompilerError{
		{Level: errors.Error, Code: "E0200", Message: "dup", Position: token.Position{Line: 2, Column: 1}},
	}
	diags := ConvertCompilerErrors(errs)
	require.Len(t, diags, 1)
	assert.Greater(t, diags[0].Range.End.Character, diags[0].Range.Start.Character)
}

func TestUriToPathHandlesFileScheme(t *testing.T) {
	path, err := uriToPath("file:///tmp/foo.hc")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/foo.hc", path)
}

func TestTextDocumentCompletionListsDeclaredNames(t *testing.T) {
	h := NewHandler()
	h.names["/tmp/foo.hc"] = []string{"x", "y"}

	result, err := h.TextDocumentCompletion(nil, &protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///tmp/foo.hc"},
		},
	})
	require.NoError(t, err)

	list, ok := result.(*protocol.CompletionList)
	require.True(t, ok)
	require.Len(t, list.Items, 2)

	labels := []string{list.Items[0].Label, list.Items[1].Label}
	assert.ElementsMatch(t, []string{"x", "y"}, labels)
}

func TestTextDocumentCompletionEmptyForUnknownDocument(t *testing.T) {
	h := NewHandler()

	result, err := h.TextDocumentCompletion(nil, &protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///tmp/unknown.hc"},
		},
	})
	require.NoError(t, err)

	list, ok := result.(*protocol.CompletionList)
	require.True(t, ok)
	assert.Empty(t, list.Items)
}
