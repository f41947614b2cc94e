package integration

import (
	"os"
	"testing"
	"time"

	"github.com/bojanm/teamster-api/internal/services"
	"github.com/bojanm/teamster-api/tests/testutil"
)

// TestMain runs before all tests in this package
func TestMain(m *testing.M) {
	code := m.Run()
	os.Exit(code)
}

// setupTest creates a test database and returns cleanup function
func setupTest(t *testing.T) *testutil.TestDB {
	t.Helper()
	return testutil.SetupTestDB(t)
}

type discardSender struct{}

func (discardSender) SendTeamInvitation(to, teamName, registrationURL string) error { return nil }

func newInvitationService(tdb *testutil.TestDB) *services.InvitationService {
	return services.NewInvitationService(
		tdb.DB,
		services.SystemClock(),
		services.NewTokenGenerator(),
		discardSender{},
		"http://localhost:3000",
		168*time.Hour,
	)
}
