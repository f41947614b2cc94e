package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bojanm/teamster-api/internal/models"
	"github.com/bojanm/teamster-api/internal/services"
	"github.com/bojanm/teamster-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvitationService_Integration_CreateTeamWithInvitations(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := newInvitationService(tdb)
	ctx := context.Background()

	mgr := fixtures.CreateUser(t, testutil.WithRole(models.RoleManager))

	team, invitations, err := svc.CreateTeamWithInvitations(ctx, mgr, "Platform", []string{
		"a@example.com", "b@example.com",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, team.ID)
	assert.Equal(t, mgr.ID, team.ManagerID)
	require.Len(t, invitations, 2)
	for _, invitation := range invitations {
		assert.NotEmpty(t, invitation.Token)
		assert.False(t, invitation.Accepted)
		assert.True(t, invitation.ExpiresAt.After(time.Now()))
	}
}

func TestInvitationService_Integration_CreateIsAllOrNothing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := newInvitationService(tdb)
	ctx := context.Background()

	mgr := fixtures.CreateUser(t, testutil.WithRole(models.RoleManager))
	fixtures.CreateUser(t, testutil.WithEmail("registered@example.com"))

	_, _, err := svc.CreateTeamWithInvitations(ctx, mgr, "Platform", []string{
		"fresh@example.com", "registered@example.com",
	})

	require.ErrorIs(t, err, services.ErrEmailTaken)

	// Nothing was created, including the team and the first invitation.
	teamService := services.NewTeamService(tdb.DB)
	teams, err := teamService.GetManagerTeams(ctx, mgr.ID)
	require.NoError(t, err)
	assert.Empty(t, teams)

	var count int
	err = tdb.DB.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM team_invitations`).Scan(&count)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestInvitationService_Integration_PendingEmailBlocksReinvite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := newInvitationService(tdb)
	ctx := context.Background()

	mgr := fixtures.CreateUser(t, testutil.WithRole(models.RoleManager))
	team := fixtures.CreateTeam(t, mgr)
	fixtures.CreateInvitation(t, team, "pending@example.com")

	other := fixtures.CreateTeam(t, mgr)
	_, err := svc.InviteToTeam(ctx, other, []string{"pending@example.com"})

	assert.ErrorIs(t, err, services.ErrEmailTaken)
}

func TestInvitationService_Integration_ExpiredInvitationFreesEmail(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := newInvitationService(tdb)
	ctx := context.Background()

	mgr := fixtures.CreateUser(t, testutil.WithRole(models.RoleManager))
	team := fixtures.CreateTeam(t, mgr)
	fixtures.CreateInvitation(t, team, "lapsed@example.com",
		testutil.ExpiredAt(time.Now().UTC().Add(-time.Hour)))

	other := fixtures.CreateTeam(t, mgr)
	invitations, err := svc.InviteToTeam(ctx, other, []string{"lapsed@example.com"})

	require.NoError(t, err)
	require.Len(t, invitations, 1)

	// The stale row is gone; only the fresh one remains.
	var count int
	err = tdb.DB.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM team_invitations WHERE email = $1`, "lapsed@example.com").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestInvitationService_Integration_AcceptLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := newInvitationService(tdb)
	teamService := services.NewTeamService(tdb.DB)
	ctx := context.Background()

	mgr := fixtures.CreateUser(t, testutil.WithRole(models.RoleManager))
	team := fixtures.CreateTeam(t, mgr)
	invitation := fixtures.CreateInvitation(t, team, "joiner@example.com")
	joiner := fixtures.CreateUser(t, testutil.WithEmail("joiner@example.com"))

	require.NoError(t, svc.Accept(ctx, invitation.Token, joiner))

	members, err := teamService.GetMembers(ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, joiner.ID, members[0].UserID)

	// Redeeming the same token again is a no-op success.
	require.NoError(t, svc.Accept(ctx, invitation.Token, joiner))
	members, err = teamService.GetMembers(ctx, team.ID)
	require.NoError(t, err)
	assert.Len(t, members, 1)

	// But validation now reports it as used.
	_, err = svc.ValidateToken(ctx, invitation.Token)
	assert.ErrorIs(t, err, services.ErrInvitationUsed)
}

func TestInvitationService_Integration_ConcurrentAccept(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := newInvitationService(tdb)
	teamService := services.NewTeamService(tdb.DB)
	ctx := context.Background()

	mgr := fixtures.CreateUser(t, testutil.WithRole(models.RoleManager))
	team := fixtures.CreateTeam(t, mgr)
	invitation := fixtures.CreateInvitation(t, team, "racer@example.com")
	racer := fixtures.CreateUser(t, testutil.WithEmail("racer@example.com"))

	// The row lock on the invitation serializes redemption; every racing
	// caller succeeds and exactly one membership row comes out.
	const attempts = 8
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- svc.Accept(ctx, invitation.Token, racer)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	members, err := teamService.GetMembers(ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, racer.ID, members[0].UserID)
}

func TestInvitationService_Integration_ProcessAccepted(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := newInvitationService(tdb)
	teamService := services.NewTeamService(tdb.DB)
	ctx := context.Background()

	mgr := fixtures.CreateUser(t, testutil.WithRole(models.RoleManager))
	team := fixtures.CreateTeam(t, mgr)

	// Accepted invitation whose membership row went missing.
	fixtures.CreateInvitation(t, team, "ghost@example.com", testutil.Accepted())
	ghost := fixtures.CreateUser(t, testutil.WithEmail("ghost@example.com"))

	// Accepted invitation whose email never registered: skipped.
	fixtures.CreateInvitation(t, team, "never@example.com", testutil.Accepted())

	require.NoError(t, svc.ProcessAccepted(ctx))

	members, err := teamService.GetMembers(ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, ghost.ID, members[0].UserID)

	// Running it again changes nothing.
	require.NoError(t, svc.ProcessAccepted(ctx))
	members, err = teamService.GetMembers(ctx, team.ID)
	require.NoError(t, err)
	assert.Len(t, members, 1)
}
