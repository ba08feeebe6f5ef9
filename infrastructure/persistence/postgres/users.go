package postgres

import "context"

// UpsertUser records a successful authentication: first login creates the
// user_info row, later logins bump last_auth.
func (s *Store) UpsertUser(ctx context.Context, uid string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO user_info (uid) VALUES ($1)
		 ON CONFLICT (uid) DO UPDATE
		 SET last_auth = timezone('UTC'::text, CURRENT_TIMESTAMP)`,
		uid)
	return mapError(err)
}
