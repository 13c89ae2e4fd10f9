package storage

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/your-org/persondir/internal/config"
	"github.com/your-org/persondir/internal/models"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresStore struct {
	pool *pgxpool.Pool
	q    querier
}

func NewPostgresStore(cfg config.DatabaseConfig) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return NewPostgresStoreFromPool(pool), nil
}

// NewPostgresStoreFromPool wraps an existing pool.
func NewPostgresStoreFromPool(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, q: pool}
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies the embedded schema files in name order. Every statement is
// idempotent, so this runs on each start.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	names, err := fs.Glob(migrationFS, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(names)
	for _, name := range names {
		body, err := migrationFS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := s.pool.Exec(ctx, string(body)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}
	return nil
}

// WithinTx runs fn against a store bound to a single transaction.
func (s *PostgresStore) WithinTx(ctx context.Context, fn func(tx PersonStore) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&PostgresStore{pool: s.pool, q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

const personColumns = `id, username, cpr, profile_picture, star_sign, friend_ids, created_at, updated_at`

func scanPerson(row pgx.Row) (*models.Person, error) {
	p := &models.Person{}
	err := row.Scan(&p.ID, &p.Username, &p.CPR, &p.ProfilePicture, &p.StarSign, &p.FriendIDs, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if p.FriendIDs == nil {
		p.FriendIDs = []uuid.UUID{}
	}
	return p, nil
}

// scanOptional maps pgx.ErrNoRows to (nil, nil).
func scanOptional(row pgx.Row, op string) (*models.Person, error) {
	p, err := scanPerson(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func (s *PostgresStore) CreatePerson(ctx context.Context, fields models.PersonFields) (*models.Person, error) {
	p, err := scanPerson(s.q.QueryRow(ctx,
		`INSERT INTO persons (id, username, cpr, profile_picture, star_sign)
		 VALUES ($1, $2, $3, $4, $5) RETURNING `+personColumns,
		uuid.New(), fields.Username, fields.CPR, fields.ProfilePicture, fields.StarSign,
	))
	if err != nil {
		return nil, fmt.Errorf("create person: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) GetPerson(ctx context.Context, id uuid.UUID) (*models.Person, error) {
	return scanOptional(s.q.QueryRow(ctx,
		`SELECT `+personColumns+` FROM persons WHERE id = $1`, id), "get person")
}

// LockPerson takes a row lock that blocks concurrent links to and deletes of
// id until the transaction ends.
func (s *PostgresStore) LockPerson(ctx context.Context, id uuid.UUID) (*models.Person, error) {
	return scanOptional(s.q.QueryRow(ctx,
		`SELECT `+personColumns+` FROM persons WHERE id = $1 FOR UPDATE`, id), "lock person")
}

func (s *PostgresStore) UpdatePerson(ctx context.Context, id uuid.UUID, fields models.PersonFields) (*models.Person, error) {
	return scanOptional(s.q.QueryRow(ctx,
		`UPDATE persons
		 SET username = $2, cpr = $3, profile_picture = $4, star_sign = $5, updated_at = now()
		 WHERE id = $1 RETURNING `+personColumns,
		id, fields.Username, fields.CPR, fields.ProfilePicture, fields.StarSign,
	), "update person")
}

func (s *PostgresStore) DeletePerson(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := s.q.Exec(ctx, `DELETE FROM persons WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete person: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) DeleteAllPersons(ctx context.Context) (int64, error) {
	tag, err := s.q.Exec(ctx, `DELETE FROM persons`)
	if err != nil {
		return 0, fmt.Errorf("delete persons: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) AddFriendID(ctx context.Context, id, friendID uuid.UUID) (*models.Person, error) {
	return scanOptional(s.q.QueryRow(ctx,
		`UPDATE persons
		 SET friend_ids = CASE WHEN friend_ids @> ARRAY[$2::uuid] THEN friend_ids ELSE array_append(friend_ids, $2::uuid) END,
		     updated_at = now()
		 WHERE id = $1 RETURNING `+personColumns,
		id, friendID,
	), "add friend id")
}

// LinkFriendID share-locks the friend row, so a delete holding LockPerson on
// it either finishes first (no row, nothing written) or waits for this write
// and then scrubs it.
func (s *PostgresStore) LinkFriendID(ctx context.Context, id, friendID uuid.UUID) (*models.Person, error) {
	return scanOptional(s.q.QueryRow(ctx,
		`UPDATE persons
		 SET friend_ids = CASE WHEN friend_ids @> ARRAY[$2::uuid] THEN friend_ids ELSE array_append(friend_ids, $2::uuid) END,
		     updated_at = now()
		 WHERE id = $1
		   AND EXISTS (SELECT 1 FROM persons f WHERE f.id = $2 FOR SHARE)
		 RETURNING `+personColumns,
		id, friendID,
	), "link friend id")
}

func (s *PostgresStore) RemoveFriendID(ctx context.Context, id, friendID uuid.UUID) (*models.Person, error) {
	return scanOptional(s.q.QueryRow(ctx,
		`UPDATE persons
		 SET friend_ids = array_remove(friend_ids, $2::uuid), updated_at = now()
		 WHERE id = $1 RETURNING `+personColumns,
		id, friendID,
	), "remove friend id")
}

func (s *PostgresStore) RemoveFriendReferences(ctx context.Context, id uuid.UUID) (int64, error) {
	tag, err := s.q.Exec(ctx,
		`UPDATE persons
		 SET friend_ids = array_remove(friend_ids, $1::uuid), updated_at = now()
		 WHERE friend_ids @> ARRAY[$1::uuid] AND id <> $1`, id)
	if err != nil {
		return 0, fmt.Errorf("remove friend references: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) CountPersons(ctx context.Context) (int, error) {
	var count int
	if err := s.q.QueryRow(ctx, `SELECT COUNT(*) FROM persons`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count persons: %w", err)
	}
	return count, nil
}

var sortColumns = map[SortField]string{
	SortByUsername:       "username",
	SortByCPR:            "cpr",
	SortByProfilePicture: "profile_picture",
	SortByStarSign:       "star_sign",
}

// listSQL renders the page query. The column comes from a fixed map, never
// from user input.
func listSQL(q ListQuery) (string, []any) {
	col, ok := sortColumns[q.SortBy]
	if !ok {
		col = "username"
	}
	dir := "ASC"
	if q.Descending {
		dir = "DESC"
	}

	query := fmt.Sprintf(`SELECT %s FROM persons ORDER BY %s COLLATE person_ci %s, id ASC OFFSET $1`,
		personColumns, col, dir)
	args := []any{max(q.Skip, 0)}
	if q.Limit > 0 {
		query += ` LIMIT $2`
		args = append(args, q.Limit)
	}
	return query, args
}

func (s *PostgresStore) ListPersons(ctx context.Context, q ListQuery) ([]models.Person, error) {
	query, args := listSQL(q)
	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list persons: %w", err)
	}
	defer rows.Close()

	persons := []models.Person{}
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		persons = append(persons, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list persons: %w", err)
	}
	return persons, nil
}

func (s *PostgresStore) ForEachPerson(ctx context.Context, fn func(p *models.Person) error) error {
	rows, err := s.q.Query(ctx, `SELECT `+personColumns+` FROM persons ORDER BY id`)
	if err != nil {
		return fmt.Errorf("scan persons: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return fmt.Errorf("scan person: %w", err)
		}
		if err := fn(p); err != nil {
			return err
		}
	}
	return rows.Err()
}
