package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/futig/ragchat-backend/internal/entity"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// ChunkRepository defines the interface for chunk persistence and
// similarity search
type ChunkRepository interface {
	Upsert(ctx context.Context, chunks []entity.Chunk) error
	Search(ctx context.Context, embedding []float32, limit int) ([]entity.SearchHit, error)
	Count(ctx context.Context) (int, error)
	ListSources(ctx context.Context) ([]entity.SourceInfo, error)
	DeleteBySource(ctx context.Context, source string) (int64, error)
	Reset(ctx context.Context) error
}

var _ ChunkRepository = &ChunkPostgres{}

// ChunkPostgres implements ChunkRepository using PostgreSQL with pgvector
type ChunkPostgres struct {
	db *pgxpool.Pool
}

func NewChunkPostgres(db *pgxpool.Pool) *ChunkPostgres {
	return &ChunkPostgres{db: db}
}

func (r *ChunkPostgres) Upsert(ctx context.Context, chunks []entity.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, chunk := range chunks {
		metadata, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("marshal chunk metadata: %w", err)
		}

		batch.Queue(
			`INSERT INTO chunks (id, source, text, metadata, embedding)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (id) DO UPDATE
			 SET source = EXCLUDED.source,
			     text = EXCLUDED.text,
			     metadata = EXCLUDED.metadata,
			     embedding = EXCLUDED.embedding`,
			chunk.ID,
			chunk.Metadata.Source,
			chunk.Text,
			metadata,
			pgvector.NewVector(chunk.Embedding),
		)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for range chunks {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("upsert chunk: %w", err)
		}
	}

	return nil
}

func (r *ChunkPostgres) Search(ctx context.Context, embedding []float32, limit int) ([]entity.SearchHit, error) {
	rows, err := r.db.Query(ctx,
		`SELECT text, metadata, embedding <=> $1 AS distance
		 FROM chunks
		 ORDER BY embedding <=> $1
		 LIMIT $2`,
		pgvector.NewVector(embedding),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}
	defer rows.Close()

	var hits []entity.SearchHit
	for rows.Next() {
		var hit entity.SearchHit
		var metadata []byte

		if err := rows.Scan(&hit.Text, &metadata, &hit.Distance); err != nil {
			return nil, fmt.Errorf("scan chunk row: %w", err)
		}

		if err := json.Unmarshal(metadata, &hit.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal chunk metadata: %w", err)
		}

		hits = append(hits, hit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunk rows: %w", err)
	}

	return hits, nil
}

func (r *ChunkPostgres) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}

	return count, nil
}

func (r *ChunkPostgres) ListSources(ctx context.Context) ([]entity.SourceInfo, error) {
	rows, err := r.db.Query(ctx,
		`SELECT source, COUNT(*) AS chunks
		 FROM chunks
		 GROUP BY source
		 ORDER BY source`,
	)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close()

	sources := make([]entity.SourceInfo, 0)
	for rows.Next() {
		var info entity.SourceInfo
		if err := rows.Scan(&info.Source, &info.Chunks); err != nil {
			return nil, fmt.Errorf("scan source row: %w", err)
		}
		sources = append(sources, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate source rows: %w", err)
	}

	return sources, nil
}

func (r *ChunkPostgres) DeleteBySource(ctx context.Context, source string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM chunks WHERE source = $1`, source)
	if err != nil {
		return 0, fmt.Errorf("delete chunks by source: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return 0, fmt.Errorf("%w: %s", entity.ErrDocumentNotFound, source)
	}

	return tag.RowsAffected(), nil
}

func (r *ChunkPostgres) Reset(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, `TRUNCATE chunks`); err != nil {
		return fmt.Errorf("reset chunks: %w", err)
	}

	return nil
}
