package masking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "", MaskSecret("  "))
	assert.Equal(t, "d****@example.com", MaskSecret("dana@example.com"))
	assert.Equal(t, "user_****", MaskSecret("user_abc"))
	assert.Equal(t, "****7890", MaskSecret("1234567890"))
}

func TestMaskFields(t *testing.T) {
	masked := MaskFields(map[string]any{
		"email":    "dana@example.com",
		"name":     "Dana",
		"accounts": 3,
		" ":        "dropped",
	}, "email")

	assert.Equal(t, map[string]any{
		"email":    "d****@example.com",
		"name":     "Dana",
		"accounts": 3,
	}, masked)
	assert.Nil(t, MaskFields(nil, "email"))
}
