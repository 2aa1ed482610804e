package postprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain answer", "1. Background: a lease dispute.", "1. Background: a lease dispute."},
		{"think block", "<think>the user wants a summary</think>\n1. Background: lease.", "1. Background: lease."},
		{"unclosed reasoning", "1. Facts: rent unpaid.\n<reasoning>checking clause 4", "1. Facts: rent unpaid."},
		{"preamble", "Here are the answers:\n1. Background: lease.", "1. Background: lease."},
		{"polite preamble", "Sure, here is my response: The tenant is liable.", "The tenant is liable."},
		{"translation preamble", "Translation: Le locataire est responsable.", "Le locataire est responsable."},
		{"quoted", "\"The tenant is liable.\"", "The tenant is liable."},
		{"guillemets", "«Орендар несе відповідальність.»", "Орендар несе відповідальність."},
		{"inner quotes kept", "\"A\" and \"B\"", "\"A\" and \"B\""},
		{"crlf", "1. One\r\n2. Two\r3. Three", "1. One\n2. Two\n3. Three"},
		{"preamble mid text kept", "The court said: here is the answer: none.", "The court said: here is the answer: none."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.input))
		})
	}
}

func TestNormalizeNewlines(t *testing.T) {
	assert.Equal(t, "a\nb\nc\n\nd", NormalizeNewlines("a\r\nb\rc\n\r\nd"))
}

func TestTokenCount(t *testing.T) {
	assert.Equal(t, 0, TokenCount("   "))
	assert.Equal(t, 6, TokenCount("one two\tthree\nfour  five six"))
}
