package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Nu știu", "nu stiu"},
		{"Nu ştiu", "nu stiu"},
		{"NU STIU", "nu stiu"},
		{"nu È™tiu", "nu stiu"},
		{"  Seară   caldă ", "seara calda"},
		{"Dama", "dama"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Fold(tt.in))
		})
	}
}

func TestIsDontKnow(t *testing.T) {
	assert.True(t, IsDontKnow("Nu știu"))
	assert.True(t, IsDontKnow("nu stiu"))
	assert.True(t, IsDontKnow("NU ȘTIU"))
	assert.False(t, IsDontKnow("Nu știu ce să aleg"))
	assert.False(t, IsDontKnow("Floral"))
	assert.False(t, IsDontKnow(""))
}

func TestContainsFold(t *testing.T) {
	assert.True(t, ContainsFold("Seară / Zi", "seara"))
	assert.True(t, ContainsFold("Floral Lemnos", "LEMNOS"))
	assert.False(t, ContainsFold("Oriental", "floral"))
	assert.True(t, ContainsFold("anything", ""))
}
