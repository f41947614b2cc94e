package integration

import (
	"context"
	"testing"

	"github.com/bojanm/teamster-api/internal/models"
	"github.com/bojanm/teamster-api/internal/services"
	"github.com/bojanm/teamster-api/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamService_Integration_AddMembers(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := services.NewTeamService(tdb.DB)
	ctx := context.Background()

	mgr := fixtures.CreateUser(t, testutil.WithRole(models.RoleManager))
	team := fixtures.CreateTeam(t, mgr)
	member := fixtures.CreateUser(t)

	// The manager's own id is silently skipped.
	err := svc.AddMembers(ctx, team.ID, []uuid.UUID{mgr.ID, member.ID})
	require.NoError(t, err)

	members, err := svc.GetMembers(ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, member.ID, members[0].UserID)

	// Adding the same member twice is a no-op.
	err = svc.AddMembers(ctx, team.ID, []uuid.UUID{member.ID})
	require.NoError(t, err)

	members, err = svc.GetMembers(ctx, team.ID)
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

func TestTeamService_Integration_RemoveMember(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := services.NewTeamService(tdb.DB)
	ctx := context.Background()

	mgr := fixtures.CreateUser(t, testutil.WithRole(models.RoleManager))
	team := fixtures.CreateTeam(t, mgr)
	member := fixtures.CreateUser(t)
	fixtures.AddTeamMember(t, team, member)

	require.NoError(t, svc.RemoveMember(ctx, team.ID, member.ID))

	members, err := svc.GetMembers(ctx, team.ID)
	require.NoError(t, err)
	assert.Empty(t, members)

	// Removing again distinguishes "not a member" from "no such user".
	assert.ErrorIs(t, svc.RemoveMember(ctx, team.ID, member.ID), services.ErrNotMember)
	assert.ErrorIs(t, svc.RemoveMember(ctx, team.ID, uuid.New()), services.ErrUserNotFound)
}

func TestTeamService_Integration_GetManagerTeams(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := services.NewTeamService(tdb.DB)
	ctx := context.Background()

	mgr := fixtures.CreateUser(t, testutil.WithRole(models.RoleManager))
	other := fixtures.CreateUser(t, testutil.WithRole(models.RoleManager))
	fixtures.CreateTeam(t, mgr)
	fixtures.CreateTeam(t, mgr)
	fixtures.CreateTeam(t, other)

	teams, err := svc.GetManagerTeams(ctx, mgr.ID)
	require.NoError(t, err)
	assert.Len(t, teams, 2)
}
