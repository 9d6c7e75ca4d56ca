// Package postgres stores todos in PostgreSQL through a pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"todo-api/internal/domain"
	apperrors "todo-api/internal/errors"
	"todo-api/internal/logging"
	"todo-api/internal/repository"
)

const todoColumns = `id, title, description, expiry, percent_complete`

// Options tunes connection start-up and statement time limits.
type Options struct {
	QueryTimeout    time.Duration
	WriteTimeout    time.Duration
	ConnectAttempts int
}

// Store is a PostgreSQL-backed domain.Store.
type Store struct {
	pool *pgxpool.Pool
	opts Options
}

var _ domain.Store = (*Store)(nil)

// New connects to dsn, retrying the initial ping, and creates the schema.
func New(ctx context.Context, dsn string, opts Options) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, apperrors.NewDatabaseError("open postgres pool", err)
	}

	if err := repository.Connect(ctx, opts.ConnectAttempts, pool.Ping); err != nil {
		pool.Close()
		return nil, apperrors.FromContextError("connect postgres", err)
	}

	s := NewStore(pool, opts)
	if err := s.EnsureTable(ctx); err != nil {
		pool.Close()
		return nil, apperrors.NewDatabaseError("create todos table", err)
	}

	logging.Debugln("connected to postgres")
	return s, nil
}

// NewStore wraps an existing pool.
func NewStore(pool *pgxpool.Pool, opts Options) *Store {
	return &Store{pool: pool, opts: opts}
}

// EnsureTable creates the todos table if it doesn't exist.
func (s *Store) EnsureTable(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS todos (
			id               TEXT PRIMARY KEY,
			title            TEXT NOT NULL,
			description      TEXT NOT NULL DEFAULT '',
			expiry           TIMESTAMPTZ NOT NULL,
			percent_complete INTEGER NOT NULL DEFAULT 0 CHECK (percent_complete BETWEEN 0 AND 100)
		)`)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_todos_expiry ON todos(expiry) WHERE percent_complete < 100`)
	return err
}

// NewSession starts a unit of work against the store.
func (s *Store) NewSession() domain.Session {
	return &Session{store: s}
}

// Close releases every pooled connection.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// Session stages changes until Commit.
type Session struct {
	store   *Store
	changes repository.ChangeSet
}

var _ domain.Session = (*Session)(nil)

func (s *Session) ListAll(ctx context.Context) ([]*domain.ToDo, error) {
	ctx, cancel := withTimeout(ctx, s.store.opts.QueryTimeout)
	defer cancel()

	rows, err := s.store.pool.Query(ctx, `SELECT `+todoColumns+` FROM todos ORDER BY expiry ASC, id ASC`)
	if err != nil {
		return nil, apperrors.FromContextError("list todos", err)
	}
	return collect(rows, "list todos")
}

func (s *Session) GetByID(ctx context.Context, id uuid.UUID) (*domain.ToDo, error) {
	ctx, cancel := withTimeout(ctx, s.store.opts.QueryTimeout)
	defer cancel()

	row := s.store.pool.QueryRow(ctx, `SELECT `+todoColumns+` FROM todos WHERE id = $1`, id.String())
	todo, err := scanToDo(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.FromContextError("get todo", err)
	}
	return todo, nil
}

func (s *Session) ListIncomingBetween(ctx context.Context, start, end time.Time) ([]*domain.ToDo, error) {
	ctx, cancel := withTimeout(ctx, s.store.opts.QueryTimeout)
	defer cancel()

	rows, err := s.store.pool.Query(ctx, `
		SELECT `+todoColumns+`
		FROM todos
		WHERE expiry >= $1 AND expiry <= $2 AND percent_complete < $3
		ORDER BY expiry ASC, id ASC`,
		start.UTC(), end.UTC(), domain.MaxPercentComplete)
	if err != nil {
		return nil, apperrors.FromContextError("list incoming todos", err)
	}
	return collect(rows, "list incoming todos")
}

func (s *Session) Add(_ context.Context, todo *domain.ToDo) error {
	s.changes.Add(todo)
	return nil
}

func (s *Session) MarkUpdated(todo *domain.ToDo) {
	s.changes.Update(todo)
}

func (s *Session) Remove(todo *domain.ToDo) {
	s.changes.Remove(todo)
}

// Commit applies the staged changes in a single transaction. On failure
// the transaction is rolled back and the staged changes are kept.
func (s *Session) Commit(ctx context.Context) (int, error) {
	if s.changes.Len() == 0 {
		return 0, nil
	}

	ctx, cancel := withTimeout(ctx, s.store.opts.WriteTimeout)
	defer cancel()

	tx, err := s.store.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, apperrors.FromContextError("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	n, err := s.changes.ApplyTo(ctx, txWriter{tx: tx})
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, apperrors.FromContextError("commit transaction", err)
	}

	s.changes.Reset()
	return n, nil
}

func scanToDo(row pgx.Row) (*domain.ToDo, error) {
	var (
		id, title, description string
		expiry                 time.Time
		percent                int
	)
	if err := row.Scan(&id, &title, &description, &expiry, &percent); err != nil {
		return nil, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	return domain.RestoreToDo(parsed, title, description, expiry, percent), nil
}

func collect(rows pgx.Rows, operation string) ([]*domain.ToDo, error) {
	defer rows.Close()

	todos := []*domain.ToDo{}
	for rows.Next() {
		todo, err := scanToDo(rows)
		if err != nil {
			return nil, apperrors.FromContextError(operation, err)
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.FromContextError(operation, err)
	}
	return todos, nil
}

type txWriter struct {
	tx pgx.Tx
}

func (w txWriter) Insert(ctx context.Context, todo *domain.ToDo) (int64, error) {
	tag, err := w.tx.Exec(ctx, `
		INSERT INTO todos (`+todoColumns+`)
		VALUES ($1, $2, $3, $4, $5)`,
		todo.ID().String(), todo.Title(), todo.Description(), todo.Expiry(), todo.PercentComplete())
	if err != nil {
		return 0, apperrors.FromContextError("insert todo", err)
	}
	return tag.RowsAffected(), nil
}

func (w txWriter) Update(ctx context.Context, todo *domain.ToDo) (int64, error) {
	tag, err := w.tx.Exec(ctx, `
		UPDATE todos
		SET title = $1, description = $2, expiry = $3, percent_complete = $4
		WHERE id = $5`,
		todo.Title(), todo.Description(), todo.Expiry(), todo.PercentComplete(), todo.ID().String())
	if err != nil {
		return 0, apperrors.FromContextError("update todo", err)
	}
	return tag.RowsAffected(), nil
}

func (w txWriter) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	tag, err := w.tx.Exec(ctx, `DELETE FROM todos WHERE id = $1`, id.String())
	if err != nil {
		return 0, apperrors.FromContextError("delete todo", err)
	}
	return tag.RowsAffected(), nil
}
