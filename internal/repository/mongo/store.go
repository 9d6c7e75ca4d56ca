// Package mongostore stores todos in a MongoDB collection. Commits use
// multi-document transactions, so the server must be a replica set.
package mongostore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"todo-api/internal/domain"
	apperrors "todo-api/internal/errors"
	"todo-api/internal/logging"
	"todo-api/internal/repository"
)

const collectionName = "todos"

// Options tunes connection start-up and operation time limits.
type Options struct {
	QueryTimeout    time.Duration
	WriteTimeout    time.Duration
	ConnectAttempts int
}

// todoDocument is the stored shape of a todo.
type todoDocument struct {
	ID              string    `bson:"_id"`
	Title           string    `bson:"title"`
	Description     string    `bson:"description"`
	Expiry          time.Time `bson:"expiry"`
	PercentComplete int       `bson:"percentComplete"`
}

func toDocument(todo *domain.ToDo) todoDocument {
	return todoDocument{
		ID:              todo.ID().String(),
		Title:           todo.Title(),
		Description:     todo.Description(),
		Expiry:          todo.Expiry(),
		PercentComplete: todo.PercentComplete(),
	}
}

func (d todoDocument) toDomain() (*domain.ToDo, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	return domain.RestoreToDo(id, d.Title, d.Description, d.Expiry, d.PercentComplete), nil
}

// Store is a MongoDB-backed domain.Store.
type Store struct {
	cli        *mongo.Client
	collection *mongo.Collection
	opts       Options
}

var _ domain.Store = (*Store)(nil)

// New connects to uri, retrying the initial ping, and ensures the expiry index.
func New(ctx context.Context, uri, database string, opts Options) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, apperrors.NewDatabaseError("connect mongo", err)
	}

	err = repository.Connect(ctx, opts.ConnectAttempts, func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	})
	if err != nil {
		client.Disconnect(context.Background())
		return nil, apperrors.FromContextError("ping mongo", err)
	}

	s := &Store{
		cli:        client,
		collection: client.Database(database).Collection(collectionName),
		opts:       opts,
	}
	if err := s.EnsureIndexes(ctx); err != nil {
		client.Disconnect(context.Background())
		return nil, apperrors.NewDatabaseError("create todo indexes", err)
	}

	logging.Debugf("connected to mongo database %s\n", database)
	return s, nil
}

// EnsureIndexes creates the index used by the incoming range scan.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "expiry", Value: 1}, {Key: "percentComplete", Value: 1}},
	})
	return err
}

// NewSession starts a unit of work against the store.
func (s *Store) NewSession() domain.Session {
	return &Session{store: s}
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.cli.Disconnect(ctx)
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
	return s.find(ctx, "list todos", bson.M{})
}

func (s *Session) GetByID(ctx context.Context, id uuid.UUID) (*domain.ToDo, error) {
	ctx, cancel := withTimeout(ctx, s.store.opts.QueryTimeout)
	defer cancel()

	var doc todoDocument
	err := s.store.collection.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, apperrors.FromContextError("get todo", err)
	}

	todo, err := doc.toDomain()
	if err != nil {
		return nil, apperrors.NewDatabaseError("decode todo", err)
	}
	return todo, nil
}

func (s *Session) ListIncomingBetween(ctx context.Context, start, end time.Time) ([]*domain.ToDo, error) {
	filter := bson.M{
		"expiry":          bson.M{"$gte": start.UTC(), "$lte": end.UTC()},
		"percentComplete": bson.M{"$lt": domain.MaxPercentComplete},
	}
	return s.find(ctx, "list incoming todos", filter)
}

func (s *Session) find(ctx context.Context, operation string, filter bson.M) ([]*domain.ToDo, error) {
	ctx, cancel := withTimeout(ctx, s.store.opts.QueryTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "expiry", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.store.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, apperrors.FromContextError(operation, err)
	}
	defer cursor.Close(ctx)

	todos := []*domain.ToDo{}
	for cursor.Next(ctx) {
		var doc todoDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, apperrors.NewDatabaseError(operation, err)
		}
		todo, err := doc.toDomain()
		if err != nil {
			return nil, apperrors.NewDatabaseError(operation, err)
		}
		todos = append(todos, todo)
	}
	if err := cursor.Err(); err != nil {
		return nil, apperrors.FromContextError(operation, err)
	}
	return todos, nil
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

// Commit applies the staged changes in a multi-document transaction. On
// failure the transaction is aborted and the staged changes are kept.
func (s *Session) Commit(ctx context.Context) (int, error) {
	if s.changes.Len() == 0 {
		return 0, nil
	}

	ctx, cancel := withTimeout(ctx, s.store.opts.WriteTimeout)
	defer cancel()

	session, err := s.store.cli.StartSession()
	if err != nil {
		return 0, apperrors.NewDatabaseError("start session", err)
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return s.changes.ApplyTo(sc, collectionWriter{collection: s.store.collection})
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return 0, err
		}
		return 0, apperrors.FromContextError("commit transaction", err)
	}

	s.changes.Reset()
	return result.(int), nil
}

type collectionWriter struct {
	collection *mongo.Collection
}

func (w collectionWriter) Insert(ctx context.Context, todo *domain.ToDo) (int64, error) {
	if _, err := w.collection.InsertOne(ctx, toDocument(todo)); err != nil {
		return 0, apperrors.FromContextError("insert todo", err)
	}
	return 1, nil
}

func (w collectionWriter) Update(ctx context.Context, todo *domain.ToDo) (int64, error) {
	doc := toDocument(todo)
	res, err := w.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		return 0, apperrors.FromContextError("update todo", err)
	}
	return res.MatchedCount, nil
}

func (w collectionWriter) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res, err := w.collection.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return 0, apperrors.FromContextError("delete todo", err)
	}
	return res.DeletedCount, nil
}
