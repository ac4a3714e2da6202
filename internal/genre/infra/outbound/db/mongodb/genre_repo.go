package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/davicafu/cinelab/internal/genre/domain"
	sharedDomain "github.com/davicafu/cinelab/internal/shared/domain"
	sharedMongo "github.com/davicafu/cinelab/internal/shared/infra/platform/mongodb"
)

const (
	genresCollection   = "genres"
	countersCollection = "counters"
	genreSequence      = "genres"
)

// GenreRepoMongoDB guarda los géneros en MongoDB con ids enteros secuenciales
// para que sigan casando con movie_genres.genre_id.
type GenreRepoMongoDB struct {
	client   *mongo.Client
	genres   *mongo.Collection
	counters *mongo.Collection
	outbox   *mongo.Collection
}

func NewGenreRepoMongoDB(client *mongo.Client, dbName string) *GenreRepoMongoDB {
	db := client.Database(dbName)
	return &GenreRepoMongoDB{
		client:   client,
		genres:   db.Collection(genresCollection),
		counters: db.Collection(countersCollection),
		outbox:   db.Collection(sharedMongo.OutboxCollection),
	}
}

// EnsureIndexes crea el índice único por nombre.
func (r *GenreRepoMongoDB) EnsureIndexes(ctx context.Context) error {
	_, err := r.genres.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

type mongoGenre struct {
	ID        int64     `bson:"_id"`
	Name      string    `bson:"name"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func (m mongoGenre) toDomain() domain.Genre {
	return domain.Genre{ID: m.ID, Name: m.Name, CreatedAt: m.CreatedAt.UTC(), UpdatedAt: m.UpdatedAt.UTC()}
}

// nextID reserva el siguiente id con $inc sobre la colección counters.
func (r *GenreRepoMongoDB) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": genreSequence},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to reserve genre id: %w", err)
	}
	return counter.Seq, nil
}

// withTx ejecuta fn en una transacción multi-documento (requiere replica set).
func (r *GenreRepoMongoDB) withTx(ctx context.Context, fn func(sessCtx mongo.SessionContext) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	return err
}

func (r *GenreRepoMongoDB) Create(ctx context.Context, g *domain.Genre, newEvent domain.GenreEventFactory) error {
	// El contador va fuera de la transacción: un hueco en la secuencia no importa.
	id, err := r.nextID(ctx)
	if err != nil {
		return err
	}
	g.ID = id

	err = r.withTx(ctx, func(sessCtx mongo.SessionContext) error {
		doc := mongoGenre{ID: g.ID, Name: g.Name, CreatedAt: g.CreatedAt, UpdatedAt: g.UpdatedAt}
		if _, err := r.genres.InsertOne(sessCtx, doc); err != nil {
			return err
		}
		return sharedMongo.InsertOutbox(sessCtx, r.outbox, newEvent(g))
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrGenreAlreadyExists
		}
		return fmt.Errorf("failed to insert genre: %w", err)
	}
	return nil
}

func (r *GenreRepoMongoDB) GetByID(ctx context.Context, id int64) (*domain.Genre, error) {
	var doc mongoGenre
	if err := r.genres.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrGenreNotFound
		}
		return nil, fmt.Errorf("mongo error: %w", err)
	}
	g := doc.toDomain()
	return &g, nil
}

func (r *GenreRepoMongoDB) Rename(ctx context.Context, id int64, name string, newEvent domain.GenreEventFactory) (*domain.Genre, error) {
	var updated domain.Genre
	err := r.withTx(ctx, func(sessCtx mongo.SessionContext) error {
		var doc mongoGenre
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		err := r.genres.FindOneAndUpdate(sessCtx,
			bson.M{"_id": id},
			bson.M{"$set": bson.M{"name": name, "updatedAt": time.Now().UTC()}},
			opts,
		).Decode(&doc)
		if err != nil {
			return err
		}
		updated = doc.toDomain()
		return sharedMongo.InsertOutbox(sessCtx, r.outbox, newEvent(&updated))
	})
	switch {
	case err == nil:
		return &updated, nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, domain.ErrGenreNotFound
	case mongo.IsDuplicateKeyError(err):
		return nil, domain.ErrGenreAlreadyExists
	default:
		return nil, fmt.Errorf("failed to rename genre: %w", err)
	}
}

func (r *GenreRepoMongoDB) DeleteByID(ctx context.Context, id int64, evt sharedDomain.OutboxEvent) error {
	err := r.withTx(ctx, func(sessCtx mongo.SessionContext) error {
		res, err := r.genres.DeleteOne(sessCtx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return domain.ErrGenreNotFound
		}
		return sharedMongo.InsertOutbox(sessCtx, r.outbox, evt)
	})
	if err != nil && !errors.Is(err, domain.ErrGenreNotFound) {
		return fmt.Errorf("failed to delete genre: %w", err)
	}
	return err
}

func (r *GenreRepoMongoDB) List(ctx context.Context) ([]domain.Genre, error) {
	cursor, err := r.genres.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("mongo error: %w", err)
	}
	defer cursor.Close(ctx)

	genres := []domain.Genre{}
	for cursor.Next(ctx) {
		var doc mongoGenre
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		genres = append(genres, doc.toDomain())
	}
	return genres, cursor.Err()
}

func (r *GenreRepoMongoDB) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := r.genres.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo error: %w", err)
	}
	defer cursor.Close(ctx)

	var existing []int64
	for cursor.Next(ctx) {
		var doc struct {
			ID int64 `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		existing = append(existing, doc.ID)
	}
	return existing, cursor.Err()
}

var _ domain.GenreRepository = (*GenreRepoMongoDB)(nil)
