package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/bojanm/teamster-api/internal/database"
	"github.com/bojanm/teamster-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrEmailTaken         = errors.New("email already registered or invited")
	ErrInvitationNotFound = errors.New("invitation not found")
	ErrInvitationUsed     = errors.New("invitation already used")
	ErrInvitationExpired  = errors.New("invitation expired")
	ErrNotManager         = errors.New("only managers can create teams")
)

const invitationColumns = `id, token, team_id, email, accepted, created_at, expires_at`

// EmailSender delivers invitation notifications. Delivery happens after the
// owning transaction commits and never affects the outcome of the operation.
type EmailSender interface {
	SendTeamInvitation(to, teamName, registrationURL string) error
}

// InvitationService owns the invitation lifecycle: issuing tokens alongside
// team creation, validating them, and turning accepted invitations into team
// memberships.
type InvitationService struct {
	db          *database.DB
	clock       Clock
	tokens      TokenGenerator
	email       EmailSender
	frontendURL string
	validity    time.Duration
}

func NewInvitationService(db *database.DB, clock Clock, tokens TokenGenerator, email EmailSender, frontendURL string, validity time.Duration) *InvitationService {
	return &InvitationService{
		db:          db,
		clock:       clock,
		tokens:      tokens,
		email:       email,
		frontendURL: frontendURL,
		validity:    validity,
	}
}

// CreateTeamWithInvitations inserts the team and one invitation per email in
// a single transaction. If any email is already registered or already holds a
// live pending invitation, nothing is created and the offending email is
// reported through the wrapped ErrEmailTaken.
func (s *InvitationService) CreateTeamWithInvitations(ctx context.Context, manager *models.User, teamName string, emails []string) (*models.Team, []models.TeamInvitation, error) {
	if manager.Role != models.RoleManager {
		return nil, nil, ErrNotManager
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	var team models.Team
	err = tx.QueryRow(ctx, `
		INSERT INTO teams (name, manager_id)
		VALUES ($1, $2)
		RETURNING id, name, manager_id, created_at, updated_at
	`, teamName, manager.ID).Scan(&team.ID, &team.Name, &team.ManagerID, &team.CreatedAt, &team.UpdatedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create team: %w", err)
	}

	now := s.clock.Now()
	invitations := make([]models.TeamInvitation, 0, len(emails))
	for _, email := range emails {
		invitation, err := s.createInvitation(ctx, tx, team.ID, email, now)
		if err != nil {
			return nil, nil, err
		}
		invitations = append(invitations, *invitation)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}

	s.dispatch(team.Name, invitations)
	return &team, invitations, nil
}

// InviteToTeam issues invitations for an existing team, all-or-nothing like
// team creation.
func (s *InvitationService) InviteToTeam(ctx context.Context, team *models.Team, emails []string) ([]models.TeamInvitation, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	now := s.clock.Now()
	invitations := make([]models.TeamInvitation, 0, len(emails))
	for _, email := range emails {
		invitation, err := s.createInvitation(ctx, tx, team.ID, email, now)
		if err != nil {
			return nil, err
		}
		invitations = append(invitations, *invitation)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.dispatch(team.Name, invitations)
	return invitations, nil
}

// createInvitation checks the email against registered users and pending
// invitations, clears out any expired leftovers for the address, and inserts
// a fresh row. The partial unique index on pending emails backstops the check
// under concurrent writers; its violation maps to ErrEmailTaken too.
func (s *InvitationService) createInvitation(ctx context.Context, tx pgx.Tx, teamID uuid.UUID, email string, now time.Time) (*models.TeamInvitation, error) {
	var registered bool
	err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&registered)
	if err != nil {
		return nil, err
	}
	if registered {
		return nil, fmt.Errorf("%s: %w", email, ErrEmailTaken)
	}

	_, err = tx.Exec(ctx, `
		DELETE FROM team_invitations
		WHERE email = $1 AND accepted = FALSE AND expires_at <= $2
	`, email, now)
	if err != nil {
		return nil, err
	}

	var pending bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM team_invitations
			WHERE email = $1 AND accepted = FALSE AND expires_at > $2
		)
	`, email, now).Scan(&pending)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, fmt.Errorf("%s: %w", email, ErrEmailTaken)
	}

	token, err := s.tokens.Generate()
	if err != nil {
		return nil, err
	}

	var invitation models.TeamInvitation
	err = tx.QueryRow(ctx, `
		INSERT INTO team_invitations (token, team_id, email, accepted, created_at, expires_at)
		VALUES ($1, $2, $3, FALSE, $4, $5)
		RETURNING `+invitationColumns+`
	`, token, teamID, email, now, now.Add(s.validity)).Scan(
		&invitation.ID, &invitation.Token, &invitation.TeamID, &invitation.Email,
		&invitation.Accepted, &invitation.CreatedAt, &invitation.ExpiresAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%s: %w", email, ErrEmailTaken)
		}
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}
	return &invitation, nil
}

// ValidateToken reports whether a token can still be redeemed.
func (s *InvitationService) ValidateToken(ctx context.Context, token string) (*models.TeamInvitation, error) {
	invitation, err := s.getByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if invitation.Accepted {
		return nil, ErrInvitationUsed
	}
	if invitation.Expired(s.clock.Now()) {
		return nil, ErrInvitationExpired
	}
	return invitation, nil
}

// GetByToken returns an invitation for display regardless of whether it was
// already accepted. Expired tokens are still rejected.
func (s *InvitationService) GetByToken(ctx context.Context, token string) (*models.TeamInvitation, error) {
	invitation, err := s.getByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if invitation.Expired(s.clock.Now()) {
		return nil, ErrInvitationExpired
	}
	return invitation, nil
}

func (s *InvitationService) getByToken(ctx context.Context, token string) (*models.TeamInvitation, error) {
	var invitation models.TeamInvitation
	err := s.db.Pool.QueryRow(ctx, `
		SELECT `+invitationColumns+` FROM team_invitations WHERE token = $1
	`, token).Scan(
		&invitation.ID, &invitation.Token, &invitation.TeamID, &invitation.Email,
		&invitation.Accepted, &invitation.CreatedAt, &invitation.ExpiresAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInvitationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

// Accept redeems a token for the given user, marking the invitation used and
// adding the user to the team. Accepting an already accepted but unexpired
// invitation is a no-op success, so retried requests cannot fail partway. The
// row lock serializes concurrent accepts of the same token.
func (s *InvitationService) Accept(ctx context.Context, token string, user *models.User) error {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var invitation models.TeamInvitation
	err = tx.QueryRow(ctx, `
		SELECT `+invitationColumns+` FROM team_invitations WHERE token = $1 FOR UPDATE
	`, token).Scan(
		&invitation.ID, &invitation.Token, &invitation.TeamID, &invitation.Email,
		&invitation.Accepted, &invitation.CreatedAt, &invitation.ExpiresAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrInvitationNotFound
	}
	if err != nil {
		return err
	}

	if invitation.Expired(s.clock.Now()) {
		return ErrInvitationExpired
	}

	if !invitation.Accepted {
		_, err = tx.Exec(ctx, `UPDATE team_invitations SET accepted = TRUE WHERE id = $1`, invitation.ID)
		if err != nil {
			return err
		}
	}

	var managerID uuid.UUID
	err = tx.QueryRow(ctx, `SELECT manager_id FROM teams WHERE id = $1`, invitation.TeamID).Scan(&managerID)
	if err != nil {
		return err
	}

	if user.ID != managerID {
		_, err = tx.Exec(ctx, `
			INSERT INTO team_members (team_id, user_id)
			VALUES ($1, $2)
			ON CONFLICT (team_id, user_id) DO NOTHING
		`, invitation.TeamID, user.ID)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// ProcessAccepted reconciles membership with invitation state: every accepted
// invitation whose email resolves to a registered user yields a membership.
// Safe to run repeatedly; emails without a user yet are skipped and picked up
// on a later run.
func (s *InvitationService) ProcessAccepted(ctx context.Context) error {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT i.team_id, i.email, t.manager_id
		FROM team_invitations i
		JOIN teams t ON i.team_id = t.id
		WHERE i.accepted = TRUE
	`)
	if err != nil {
		return err
	}

	type accepted struct {
		teamID    uuid.UUID
		email     string
		managerID uuid.UUID
	}
	var pending []accepted
	for rows.Next() {
		var a accepted
		if err := rows.Scan(&a.teamID, &a.email, &a.managerID); err != nil {
			rows.Close()
			return err
		}
		pending = append(pending, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, a := range pending {
		var userID uuid.UUID
		err := s.db.Pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, a.email).Scan(&userID)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return err
		}
		if userID == a.managerID {
			continue
		}
		_, err = s.db.Pool.Exec(ctx, `
			INSERT INTO team_members (team_id, user_id)
			VALUES ($1, $2)
			ON CONFLICT (team_id, user_id) DO NOTHING
		`, a.teamID, userID)
		if err != nil {
			return err
		}
	}
	return nil
}

// dispatch sends invitation emails in the background. Failures are logged and
// never surfaced; the invitation row is already committed and the token can
// be re-sent.
func (s *InvitationService) dispatch(teamName string, invitations []models.TeamInvitation) {
	for _, invitation := range invitations {
		go func(inv models.TeamInvitation) {
			url := fmt.Sprintf("%s/register?token=%s", s.frontendURL, inv.Token)
			if err := s.email.SendTeamInvitation(inv.Email, teamName, url); err != nil {
				log.Printf("failed to send invitation email to %s: %v", inv.Email, err)
			}
		}(invitation)
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
