package pathenc

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeCWDReplacesSlashesAndUnderscores(t *testing.T) {
	require.Equal(t, "-Users-dev-my-project", EncodeCWD("/Users/dev/my_project"))
}

func TestProjectHashIsStableSHA256OfCleanedPath(t *testing.T) {
	sum := sha256.Sum256([]byte("/Users/dev/my_project"))
	want := hex.EncodeToString(sum[:])
	require.Equal(t, want, ProjectHash("/Users/dev/my_project/"))
}
