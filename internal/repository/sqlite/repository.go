package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"todo-api/internal/domain"
	"todo-api/internal/errors"
	"todo-api/internal/logging"
	"todo-api/internal/repository"
	"todo-api/internal/repository/sqlite/migrations"

	_ "modernc.org/sqlite"
)

const todoColumns = `id, title, description, expiry, percent_complete`

// Options tunes how long queries and commits may run. A zero duration
// means no limit beyond the caller's context.
type Options struct {
	QueryTimeout time.Duration
	WriteTimeout time.Duration
}

// Store is the SQLite implementation of domain.Store.
type Store struct {
	db   *sql.DB
	opts Options
}

var _ domain.Store = (*Store)(nil)

// New creates a new SQLite store with default options
func New(dbPath string) (*Store, error) {
	return NewWithOptions(context.Background(), dbPath, Options{})
}

// NewWithOptions opens the database at dbPath and applies pending migrations
func NewWithOptions(ctx context.Context, dbPath string, opts Options) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.NewDatabaseError("open database", err)
	}
	// SQLite allows a single writer, and every connection to ":memory:"
	// would otherwise get its own empty database.
	db.SetMaxOpenConns(1)

	if err := migrations.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, errors.NewDatabaseError("run migrations", err)
	}

	logging.Debugf("opened sqlite store at %s\n", dbPath)
	return &Store{db: db, opts: opts}, nil
}

// NewSession starts a unit of work against the store
func (s *Store) NewSession() domain.Session {
	return &Session{store: s}
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// SchemaVersions lists the applied schema migrations in ascending order
func (s *Store) SchemaVersions(ctx context.Context) ([]int, error) {
	versions, err := migrations.AppliedVersions(ctx, s.db)
	if err != nil {
		return nil, errors.FromContextError("read schema versions", err)
	}
	return versions, nil
}

// RollbackSchema reverts every migration newer than version. The next open
// applies them again.
func (s *Store) RollbackSchema(ctx context.Context, version int) error {
	if err := migrations.RollbackTo(ctx, s.db, version); err != nil {
		return errors.FromContextError("roll back schema", err)
	}
	logging.Debugf("rolled back sqlite schema to version %d\n", version)
	return nil
}

func (s *Store) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return withTimeout(ctx, s.opts.QueryTimeout)
}

func (s *Store) writeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return withTimeout(ctx, s.opts.WriteTimeout)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// Session reads todos directly from the database and stages changes
// until Commit.
type Session struct {
	store   *Store
	changes repository.ChangeSet
}

var _ domain.Session = (*Session)(nil)

// ListAll retrieves all todos ordered by expiry
func (s *Session) ListAll(ctx context.Context) ([]*domain.ToDo, error) {
	ctx, cancel := s.store.queryContext(ctx)
	defer cancel()

	query := `SELECT ` + todoColumns + ` FROM todos ORDER BY expiry ASC, id ASC`
	rows, err := QueryMultiple(ctx, s.store.db, query, ScanToDos, "todos")
	if err != nil {
		return nil, err
	}
	return toDomain(rows)
}

// GetByID retrieves a todo by ID, returning nil when it does not exist
func (s *Session) GetByID(ctx context.Context, id uuid.UUID) (*domain.ToDo, error) {
	ctx, cancel := s.store.queryContext(ctx)
	defer cancel()

	query := `SELECT ` + todoColumns + ` FROM todos WHERE id = ?`
	row, err := QuerySingle(ctx, s.store.db, query, ScanToDo, "todo", id.String())
	if err != nil || row == nil {
		return nil, err
	}

	todo, err := row.ToDomain()
	if err != nil {
		return nil, HandleDatabaseError("decode todo", err)
	}
	return todo, nil
}

// ListIncomingBetween retrieves unfinished todos expiring within [start, end]
func (s *Session) ListIncomingBetween(ctx context.Context, start, end time.Time) ([]*domain.ToDo, error) {
	ctx, cancel := s.store.queryContext(ctx)
	defer cancel()

	query := `
	SELECT ` + todoColumns + `
	FROM todos
	WHERE expiry >= ? AND expiry <= ? AND percent_complete < ?
	ORDER BY expiry ASC, id ASC`

	rows, err := QueryMultiple(ctx, s.store.db, query, ScanToDos, "incoming todos",
		FormatTimeForDB(start), FormatTimeForDB(end), domain.MaxPercentComplete)
	if err != nil {
		return nil, err
	}
	return toDomain(rows)
}

// Add stages a new todo
func (s *Session) Add(_ context.Context, todo *domain.ToDo) error {
	s.changes.Add(todo)
	return nil
}

// MarkUpdated stages an update of todo
func (s *Session) MarkUpdated(todo *domain.ToDo) {
	s.changes.Update(todo)
}

// Remove stages the deletion of todo
func (s *Session) Remove(todo *domain.ToDo) {
	s.changes.Remove(todo)
}

// Commit applies the staged changes in a single transaction. On failure
// the transaction is rolled back and the staged changes are kept.
func (s *Session) Commit(ctx context.Context) (int, error) {
	if s.changes.Len() == 0 {
		return 0, nil
	}

	ctx, cancel := s.store.writeContext(ctx)
	defer cancel()

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, HandleDatabaseError("begin transaction", err)
	}

	n, err := s.changes.ApplyTo(ctx, txWriter{tx: tx})
	if err != nil {
		tx.Rollback()
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, HandleDatabaseError("commit transaction", err)
	}

	logging.Debugf("committed %d todo change(s)\n", n)
	s.changes.Reset()
	return n, nil
}

func toDomain(rows []*ToDoRow) ([]*domain.ToDo, error) {
	todos, err := rowsToDomain(rows)
	if err != nil {
		return nil, HandleDatabaseError("decode todos", err)
	}
	return todos, nil
}

// txWriter writes single todo mutations inside a transaction.
type txWriter struct {
	tx *sql.Tx
}

func (w txWriter) Insert(ctx context.Context, todo *domain.ToDo) (int64, error) {
	row := FromDomain(todo)
	query := `INSERT INTO todos (` + todoColumns + `) VALUES (?, ?, ?, ?, ?)`
	return ExecuteWithRowsAffected(ctx, w.tx, query, row.ID, row.Title, row.Description, row.Expiry, row.PercentComplete)
}

func (w txWriter) Update(ctx context.Context, todo *domain.ToDo) (int64, error) {
	row := FromDomain(todo)
	query := `
	UPDATE todos
	SET title = ?, description = ?, expiry = ?, percent_complete = ?
	WHERE id = ?`
	return ExecuteWithRowsAffected(ctx, w.tx, query, row.Title, row.Description, row.Expiry, row.PercentComplete, row.ID)
}

func (w txWriter) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	return ExecuteWithRowsAffected(ctx, w.tx, `DELETE FROM todos WHERE id = ?`, id.String())
}
