//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestDetectSource ensures hostname and username are detected and non-empty.
func TestDetectSource(t *testing.T) {
	t.Parallel()

	s, err := DetectSource()
	require.NoError(t, err)
	require.NotEmpty(t, s.GetHostname())
	require.NotEmpty(t, s.GetUsername())
}
