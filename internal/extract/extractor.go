package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"csr-pipeline/internal/servicerequest"
	"csr-pipeline/internal/socrata"

	"github.com/rs/zerolog/log"
)

// Extractor pages through the service request dataset and maps every row to a RawRecord.
type Extractor struct {
	client    socrata.Client
	chunkSize int
	startDate time.Time
}

func NewExtractor(client socrata.Client, chunkSize int, startDate time.Time) *Extractor {
	if chunkSize <= 0 {
		chunkSize = socrata.DefaultChunkSize
	}
	return &Extractor{
		client:    client,
		chunkSize: chunkSize,
		startDate: startDate,
	}
}

// Query returns the request for the chunk at offset.
func (e *Extractor) Query(offset int) socrata.Query {
	return socrata.Query{
		Select: strings.Join(socrata.Columns, ","),
		Where:  fmt.Sprintf("created_date >= '%s'", socrata.FormatTime(e.startDate)),
		Order:  ":id",
		Limit:  e.chunkSize,
		Offset: offset,
	}
}

// Extract fetches chunks until the dataset returns an empty one. A chunk that exhausts
// its retries aborts the whole extract.
func (e *Extractor) Extract(ctx context.Context) ([]servicerequest.RawRecord, error) {
	log.Info().Time("since", e.startDate).Int("chunkSize", e.chunkSize).Msg("Starting service request extract")

	var records []servicerequest.RawRecord
	offset := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rows, err := e.client.FetchPage(ctx, e.Query(offset))
		if err != nil {
			return nil, fmt.Errorf("extract failed at offset %d: %w", offset, err)
		}
		if len(rows) == 0 {
			break
		}

		for i, row := range rows {
			rec, err := MapRow(row)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", offset+i, err)
			}
			records = append(records, rec)
		}

		offset += len(rows)
		log.Debug().Int("offset", offset).Int("chunk", len(rows)).Msg("Fetched chunk")
	}

	log.Info().Int("total", len(records)).Msg("Extract complete")
	return records, nil
}
