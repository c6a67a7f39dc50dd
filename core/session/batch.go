package session

import "context"

// ChunkSize is the maximum number of ids sent in one bulk call.
// Bulk calls filter on "id is one of ..." and the store caps how many ids such a
// filter may hold.
const ChunkSize = 20

// Chunk splits ids into consecutive chunks of at most size ids.
func Chunk(ids []string, size int) [][]string {
	if size < 1 {
		size = ChunkSize
	}
	chunks := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end:end])
	}
	return chunks
}

// Batcher runs bulk operations chunk by chunk.
// Chunks are sent sequentially: chunk N starts only after chunk N-1 returned.
// The first failure stops the run; chunks already applied are not rolled back.
type Batcher struct {
	Size    int
	Metrics Metrics
}

// Run applies fn to every chunk of ids.
func (b Batcher) Run(ctx context.Context, op string, ids []string, fn func(ctx context.Context, chunk []string) error) error {
	metrics := b.Metrics
	if metrics == nil {
		metrics = NopMetrics{}
	}

	chunks := Chunk(ids, b.Size)
	var applied int
	for i, chunk := range chunks {
		err := fn(ctx, chunk)
		metrics.ObserveBulkCall(op, len(chunk), err)
		if err != nil {
			return &BatchError{Op: op, Chunk: i, Chunks: len(chunks), Applied: applied, Total: len(ids), Err: err}
		}
		applied += len(chunk)
	}
	return nil
}
