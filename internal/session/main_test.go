package session

import (
	"os"
	"testing"

	"github.com/leonardotrapani/hyprlingo/internal/testutil"
)

func TestMain(m *testing.M) {
	testutil.SilenceLogs()
	os.Exit(m.Run())
}
