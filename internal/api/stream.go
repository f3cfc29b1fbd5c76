package api

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"

	"github.com/lox/powerlog/internal/metrics"
	"github.com/lox/powerlog/internal/store"
)

// flushBatchSize is how many items are buffered before each write to the
// client. Larger batches mean fewer, bigger writes at the cost of latency to
// first byte; memory stays bounded by the batch, not the result set.
const flushBatchSize = 1000

// streamJSONArray drains a row stream into the response as a single JSON
// array, flushing every flushBatchSize items. The stream - and with it the
// storage connection it holds - is closed when the drain finishes, whether or
// not it completed cleanly.
func streamJSONArray[T any](w http.ResponseWriter, stream *store.RowStream[T], query string) {
	defer stream.Close()

	w.Header().Set("Content-Type", "application/json")

	flusher, _ := w.(http.Flusher)
	flush := func() {
		if flusher != nil {
			flusher.Flush()
		}
	}

	var buf bytes.Buffer
	buf.WriteByte('[')

	count := 0
	for {
		item, ok := stream.Next()
		if !ok {
			break
		}

		b, err := json.Marshal(item)
		if err != nil {
			// Headers may already be gone; all we can do is truncate the
			// array and log.
			log.Printf("api: %s: marshal row: %v", query, err)
			break
		}

		if count > 0 {
			buf.WriteByte(',')
		}
		buf.Write(b)
		count++

		if count%flushBatchSize == 0 {
			if _, err := w.Write(buf.Bytes()); err != nil {
				log.Printf("api: %s: write batch: %v", query, err)
				return
			}
			buf.Reset()
			flush()
		}
	}

	if err := stream.Err(); err != nil {
		log.Printf("api: %s: stream: %v", query, err)
	}

	buf.WriteByte(']')
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Printf("api: %s: write tail: %v", query, err)
		return
	}
	flush()

	metrics.RowsStreamed.WithLabelValues(query).Add(float64(count))
}
