package database

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		email VARCHAR(255) UNIQUE NOT NULL,
		first_name VARCHAR(255) NOT NULL,
		last_name VARCHAR(255) NOT NULL,
		role VARCHAR(20) NOT NULL DEFAULT 'Member',
		keycloak_id VARCHAR(255) UNIQUE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS teams (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		manager_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS team_members (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		team_id UUID NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(team_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS team_invitations (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		token VARCHAR(64) UNIQUE NOT NULL,
		team_id UUID NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
		email VARCHAR(255) NOT NULL,
		accepted BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		expires_at TIMESTAMP WITH TIME ZONE NOT NULL
	)`,

	// One live invitation per email, across all teams. Expired rows are purged
	// inside the creation transaction, so this only blocks genuinely pending
	// invitations.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_team_invitations_pending_email
		ON team_invitations(email) WHERE accepted = FALSE`,

	`CREATE INDEX IF NOT EXISTS idx_teams_manager_id ON teams(manager_id)`,
	`CREATE INDEX IF NOT EXISTS idx_team_members_team_id ON team_members(team_id)`,
	`CREATE INDEX IF NOT EXISTS idx_team_members_user_id ON team_members(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_team_invitations_team_id ON team_invitations(team_id)`,
	`CREATE INDEX IF NOT EXISTS idx_team_invitations_email ON team_invitations(email)`,
	`CREATE INDEX IF NOT EXISTS idx_team_invitations_accepted ON team_invitations(accepted) WHERE accepted = TRUE`,
}

func (db *DB) Migrate(ctx context.Context) error {
	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
