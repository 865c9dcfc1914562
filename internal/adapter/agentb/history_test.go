package agentb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestListingPatternMatchesConventionalLine(t *testing.T) {
	m := listingPattern.FindStringSubmatch("  3. fix the flaky retry test (2 hours ago) [th-abc123]")
	require.NotNil(t, m)
	require.Equal(t, "fix the flaky retry test", m[1])
	require.Equal(t, "2", m[2])
	require.Equal(t, "hour", m[3])
	require.Equal(t, "th-abc123", m[4])
}

func TestListingPatternRejectsMalformedLine(t *testing.T) {
	require.Nil(t, listingPattern.FindStringSubmatch("not a listing line at all"))
}

func TestRelativeDurationUnits(t *testing.T) {
	require.Equal(t, 90*time.Second, relativeDuration(90, "second"))
	require.Equal(t, 3*time.Hour, relativeDuration(3, "hour"))
	require.Equal(t, 2*24*time.Hour, relativeDuration(2, "day"))
	require.Equal(t, 7*24*time.Hour, relativeDuration(1, "week"))
}
