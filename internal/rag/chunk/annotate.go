package chunk

import (
	"github.com/futig/ragchat-backend/internal/entity"
	"github.com/google/uuid"
)

// Annotate turns split segments into chunks carrying provenance
// metadata. Each chunk receives an independent copy of base with its
// ordinal position, the total chunk count for the source and the char
// offsets filled in.
func Annotate(segments []Segment, base entity.ChunkMetadata) []entity.Chunk {
	chunks := make([]entity.Chunk, 0, len(segments))
	for i, seg := range segments {
		meta := base
		meta.ChunkIndex = i
		meta.TotalChunks = len(segments)
		meta.CharStart = seg.Start
		meta.CharEnd = seg.End

		chunks = append(chunks, entity.Chunk{
			ID:       uuid.New().String(),
			Text:     seg.Text,
			Metadata: meta,
		})
	}
	return chunks
}
