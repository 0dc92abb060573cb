// internal/refid/placeholder_test.go
package refid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlaceholder(t *testing.T) {
	p, err := ParsePlaceholder("%github.oauth%")
	require.NoError(t, err)
	assert.Equal(t, "github.oauth", p.Name)
	assert.Equal(t, "%github.oauth%", p.String())
	assert.False(t, p.IsZero())

	for _, raw := range []string{"", "ghp_literalsecret", "%%", "%open", "%two words%"} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParsePlaceholder(raw)
			require.Error(t, err)
			assert.NotContains(t, err.Error(), "ghp_literalsecret", "literal values must not leak into errors")
		})
	}
}

func TestPlaceholder_Zero(t *testing.T) {
	var p Placeholder
	assert.True(t, p.IsZero())
	assert.Equal(t, "", p.String())
}
