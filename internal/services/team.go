package services

import (
	"context"
	"errors"

	"github.com/bojanm/teamster-api/internal/database"
	"github.com/bojanm/teamster-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrTeamNotFound = errors.New("team not found")
	ErrNotMember    = errors.New("user is not a member of this team")
)

type TeamService struct {
	db *database.DB
}

func NewTeamService(db *database.DB) *TeamService {
	return &TeamService{db: db}
}

func (s *TeamService) GetByID(ctx context.Context, teamID uuid.UUID) (*models.Team, error) {
	var team models.Team
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, name, manager_id, created_at, updated_at
		FROM teams WHERE id = $1
	`, teamID).Scan(&team.ID, &team.Name, &team.ManagerID, &team.CreatedAt, &team.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTeamNotFound
	}
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (s *TeamService) GetManagerTeams(ctx context.Context, managerID uuid.UUID) ([]models.Team, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, name, manager_id, created_at, updated_at
		FROM teams
		WHERE manager_id = $1
		ORDER BY created_at DESC
	`, managerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []models.Team
	for rows.Next() {
		var team models.Team
		if err := rows.Scan(&team.ID, &team.Name, &team.ManagerID, &team.CreatedAt, &team.UpdatedAt); err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

func (s *TeamService) IsManager(ctx context.Context, teamID, userID uuid.UUID) (bool, error) {
	var managerID uuid.UUID
	err := s.db.Pool.QueryRow(ctx, `SELECT manager_id FROM teams WHERE id = $1`, teamID).Scan(&managerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, ErrTeamNotFound
	}
	if err != nil {
		return false, err
	}
	return managerID == userID, nil
}

func (s *TeamService) GetMembers(ctx context.Context, teamID uuid.UUID) ([]models.TeamMember, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT tm.id, tm.team_id, tm.user_id, tm.created_at,
		       u.id, u.email, u.first_name, u.last_name, u.role, u.keycloak_id, u.created_at, u.updated_at
		FROM team_members tm
		JOIN users u ON tm.user_id = u.id
		WHERE tm.team_id = $1
		ORDER BY tm.created_at
	`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.TeamMember
	for rows.Next() {
		var member models.TeamMember
		var user models.User
		if err := rows.Scan(
			&member.ID, &member.TeamID, &member.UserID, &member.CreatedAt,
			&user.ID, &user.Email, &user.FirstName, &user.LastName,
			&user.Role, &user.KeycloakID, &user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		member.User = &user
		members = append(members, member)
	}
	return members, rows.Err()
}

// AddMembers resolves the given user ids and adds each to the team's member
// set. Adds are idempotent; unknown ids are skipped; the team's manager is
// never added as a member.
func (s *TeamService) AddMembers(ctx context.Context, teamID uuid.UUID, userIDs []uuid.UUID) error {
	team, err := s.GetByID(ctx, teamID)
	if err != nil {
		return err
	}

	rows, err := s.db.Pool.Query(ctx, `SELECT id FROM users WHERE id = ANY($1)`, userIDs)
	if err != nil {
		return err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, id := range ids {
		if id == team.ManagerID {
			continue
		}
		_, err := s.db.Pool.Exec(ctx, `
			INSERT INTO team_members (team_id, user_id)
			VALUES ($1, $2)
			ON CONFLICT (team_id, user_id) DO NOTHING
		`, teamID, id)
		if err != nil {
			return err
		}
	}
	return nil
}

// RemoveMember takes a user out of the member set. Invitation history is left
// untouched; a removed member's original invitation stays accepted.
func (s *TeamService) RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error {
	if _, err := s.GetByID(ctx, teamID); err != nil {
		return err
	}

	var exists bool
	err := s.db.Pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return ErrUserNotFound
	}

	result, err := s.db.Pool.Exec(ctx, `
		DELETE FROM team_members WHERE team_id = $1 AND user_id = $2
	`, teamID, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotMember
	}
	return nil
}
