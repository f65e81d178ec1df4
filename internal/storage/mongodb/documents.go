package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"talk_enricher/internal/domain"
)

type Config struct {
	URI           string
	Database      string
	Collection    string
	BatchSize     int
	Transactional bool
}

// DocumentStore upserts talk documents by _id.
type DocumentStore struct {
	client        *mongo.Client
	collection    *mongo.Collection
	batchSize     int
	transactional bool
	logger        *slog.Logger
}

func Connect(ctx context.Context, cfg Config, logger *slog.Logger) (*DocumentStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}

	logger.Info("connected to mongo",
		"database", cfg.Database,
		"collection", cfg.Collection,
		"transactional", cfg.Transactional,
	)

	return &DocumentStore{
		client:        client,
		collection:    client.Database(cfg.Database).Collection(cfg.Collection),
		batchSize:     cfg.BatchSize,
		transactional: cfg.Transactional,
		logger:        logger,
	}, nil
}

// Write upserts every document and returns how many were matched or
// inserted. Documents are validated before the first write, so a document
// without an _id fails the call with nothing written. In transactional
// mode all batches commit together or not at all, which needs a replica set
// or mongos. Otherwise a failed batch leaves the earlier ones in place and
// the returned count says how many landed.
func (s *DocumentStore) Write(ctx context.Context, docs []domain.Document) (int, error) {
	for i := range docs {
		if docs[i].ID == nil {
			return 0, fmt.Errorf("document %d: %w", i, domain.ErrMissingDocumentID)
		}
	}

	if !s.transactional {
		return s.writeBatches(ctx, docs)
	}

	session, err := s.client.StartSession()
	if err != nil {
		return 0, fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	var written int
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		n, err := s.writeBatches(sc, docs)
		written = n
		return nil, err
	})
	if err != nil {
		return 0, fmt.Errorf("write transaction: %w", err)
	}

	return written, nil
}

func (s *DocumentStore) writeBatches(ctx context.Context, docs []domain.Document) (int, error) {
	written := 0
	for start := 0; start < len(docs); start += s.batchSize {
		end := min(start+s.batchSize, len(docs))

		models := make([]mongo.WriteModel, 0, end-start)
		for i := start; i < end; i++ {
			models = append(models, mongo.NewReplaceOneModel().
				SetFilter(bson.M{"_id": *docs[i].ID}).
				SetReplacement(docs[i]).
				SetUpsert(true))
		}

		res, err := s.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true))
		if err != nil {
			return written, fmt.Errorf("bulk write [%d:%d]: %w", start, end, err)
		}
		written += int(res.MatchedCount + res.UpsertedCount)

		s.logger.Debug("wrote batch",
			"start", start,
			"end", end,
			"matched", res.MatchedCount,
			"upserted", res.UpsertedCount,
		)
	}
	return written, nil
}

// Get returns the document stored under id, or nil if there is none.
func (s *DocumentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	var doc domain.Document
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find document: %w", err)
	}
	return &doc, nil
}

func (s *DocumentStore) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}
