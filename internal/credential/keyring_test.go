package credential

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIKeyPrefersEnvironment(t *testing.T) {
	t.Setenv(EnvAPIKey, "from-env")

	got, err := APIKey()
	require.NoError(t, err)
	assert.Equal(t, "from-env", got)
}
