package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/codecraft/internal/repository"
)

var _ repository.StarRepository = (*DB)(nil)

// Toggle flips the star for (userID, snippetID) and reports whether it is
// now starred.
//
// Read-then-write in two statements would race: two concurrent toggles could
// both see "not starred" and both insert. Here the DELETE decides: if it
// removed a row the star was present, otherwise we insert. Both happen inside
// one transaction, and UNIQUE(user_id, snippet_id) backs it up.
func (db *DB) Toggle(ctx context.Context, userID, snippetID string) (bool, error) {
	var starred bool

	err := db.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`DELETE FROM stars WHERE user_id = ? AND snippet_id = ?`,
			userID, snippetID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: removing star: %w", err)
		}

		removed, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("sqlite: checking rows affected: %w", err)
		}
		if removed > 0 {
			starred = false
			return nil
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO stars (id, user_id, snippet_id, created_at)
			 VALUES (?, ?, ?, ?)`,
			xid.New().String(), userID, snippetID, time.Now(),
		)
		if err != nil {
			return fmt.Errorf("sqlite: adding star: %w", err)
		}
		starred = true
		return nil
	})
	if err != nil {
		return false, err
	}

	return starred, nil
}

// IsStarred reports whether userID has starred snippetID.
func (db *DB) IsStarred(ctx context.Context, userID, snippetID string) (bool, error) {
	var exists bool
	err := db.conn.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM stars WHERE user_id = ? AND snippet_id = ?)`,
		userID, snippetID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking star: %w", err)
	}
	return exists, nil
}

// CountBySnippet returns the number of stars on a snippet. Unknown snippets
// have zero.
func (db *DB) CountBySnippet(ctx context.Context, snippetID string) (int, error) {
	var n int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM stars WHERE snippet_id = ?`, snippetID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting stars for %s: %w", snippetID, err)
	}
	return n, nil
}
