package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	assert.Equal(t,
		[]string{"the", "tenant", "is", "liable", "for", "2020", "damages"},
		Tokenize("The tenant is LIABLE for 2020 damages, a b."))
	assert.Equal(t, []string{"орендар", "сплачує"}, Tokenize("Орендар сплачує"))
	assert.Empty(t, Tokenize(""))
}

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		// unique terms weigh 1+ln(1.5); cos = 3/(3+w^2) = 0.60297
		{"hand computed", "the contract shall pay", "the contract must pay", 60.3},
		// one shared term with weight 1, one unique per side
		{"half overlap", "alpha beta", "alpha gamma", 33.61},
		{"identical", "The party is liable.", "The party is liable.", 100},
		{"same terms different case", "Shall Pay", "shall pay", 100},
		{"disjoint", "tenant pays rent", "court issued verdict", 0},
		{"both empty", "", "", 100},
		{"one empty", "", "tenant pays rent", 0},
		{"only short tokens", "a b c", "d e f", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Score(tt.a, tt.b), 0.001)
		})
	}
}

func TestScore_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"the contract shall pay damages", "damages under the contract must be paid"},
		{"1. Background: lease dispute", "Background of the case is a lease dispute between parties"},
		{"alpha alpha beta", "beta gamma"},
	}
	for _, p := range pairs {
		assert.Equal(t, Score(p[0], p[1]), Score(p[1], p[0]))
	}
}

func TestScore_Range(t *testing.T) {
	s := Score("the court held the tenant liable", "the tenant was held liable by the court of appeal")
	assert.Greater(t, s, 0.0)
	assert.Less(t, s, 100.0)
}

func TestCosine_OrderIndependent(t *testing.T) {
	texts := []string{
		"The lessee shall pay the rent monthly and the lessor shall maintain the premises in good repair",
		"Rent is payable monthly by the lessee; repairs to the premises are the lessor's duty under clause 7",
		"The court of appeal held that the guarantor is jointly liable for the outstanding rent and interest",
		"Liability for outstanding rent, interest and costs rests jointly with the guarantor and the tenant",
		"Договір оренди укладено строком на п'ять років з правом продовження",
	}
	for i := range texts {
		for j := range texts {
			a, b := Tokenize(texts[i]), Tokenize(texts[j])
			first := Cosine(a, b)
			assert.Equal(t, first, Cosine(b, a), "%d/%d", i, j)
			for k := 0; k < 20; k++ {
				require.Equal(t, first, Cosine(a, b))
			}
		}
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{60.29748, 60.3},
		{0.125, 0.12},
		{0.375, 0.38},
		{2.675, 2.67},
		{33.605, 33.6},
		{100, 100},
		{0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Round2(tt.in), "%v", tt.in)
	}
}
