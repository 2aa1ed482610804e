package placeholder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/legalease/internal/placeholder"
)

func TestProtect_NoSpans(t *testing.T) {
	got, spans := placeholder.Protect("The tenant is liable.")
	assert.Equal(t, "The tenant is liable.", got)
	assert.Empty(t, spans)
}

func TestProtect_Citations(t *testing.T) {
	got, spans := placeholder.Protect("Under § 12.3 and §§ 4(a) the tenant pays.")
	assert.Equal(t, []string{"§ 12.3", "§§ 4(a)"}, spans)
	assert.Equal(t, "Under [[0]] and [[1]] the tenant pays.", got)
}

func TestProtect_Order(t *testing.T) {
	text := "See `clause_4` at https://example.org/lease and <b>note</b>."
	got, spans := placeholder.Protect(text)

	require.Len(t, spans, 4)
	assert.Equal(t, "`clause_4`", spans[0])
	assert.Equal(t, "https://example.org/lease", spans[1])
	assert.Equal(t, "<b>", spans[2])
	assert.Equal(t, "</b>", spans[3])
	assert.Equal(t, "See [[0]] at [[1]] and [[2]]note[[3]].", got)
}

func TestRestore_RoundTrip(t *testing.T) {
	text := "Per § 7 and <i>Smith v. Jones</i>, see https://example.org."
	protected, spans := placeholder.Protect(text)
	assert.Equal(t, text, placeholder.Restore(protected, spans))
}

func TestRestore_UnknownMarker(t *testing.T) {
	assert.Equal(t, "a [[5]] b", placeholder.Restore("a [[5]] b", []string{"x"}))
	assert.Equal(t, "a [[0]] b", placeholder.Restore("a [[0]] b", nil))
}

func TestMissing(t *testing.T) {
	spans := []string{"§ 1", "§ 2", "§ 3"}
	assert.Equal(t, []int{1}, placeholder.Missing("[[0]] texte [[2]]", spans))
	assert.Nil(t, placeholder.Missing("[[0]] [[1]] [[2]]", spans))
}
