// internal/ledger/archiver.go
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"bloodcare-alerts/internal/common/database"
	"bloodcare-alerts/internal/common/logger"
	"bloodcare-alerts/internal/models"
)

// Archiver indexes settled attempts into Elasticsearch for external
// reporting. Archival is best-effort: failures are logged, never propagated
// into the dispatch path.
type Archiver struct {
	es     *database.ElasticsearchClient
	index  string
	logger logger.Logger
}

func NewArchiver(es *database.ElasticsearchClient, index string, log logger.Logger) *Archiver {
	return &Archiver{
		es:     es,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "attempt-archiver"}),
	}
}

// Archive indexes one terminal attempt, using the attempt key as document ID
// so re-archival is idempotent.
func (a *Archiver) Archive(ctx context.Context, attempt *models.DeliveryAttempt) {
	if a == nil || a.es == nil {
		return
	}
	if !attempt.Terminal() {
		return
	}

	body, err := json.Marshal(attempt)
	if err != nil {
		a.logger.Error("marshal attempt for archive", map[string]interface{}{
			"error": err,
			"key":   attempt.Key(),
		})
		return
	}

	res, err := a.es.Client.Index(
		a.index,
		bytes.NewReader(body),
		a.es.Client.Index.WithContext(ctx),
		a.es.Client.Index.WithDocumentID(attempt.Key()),
	)
	if err != nil {
		a.logger.Error("archive attempt", map[string]interface{}{
			"error": err,
			"key":   attempt.Key(),
		})
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		a.logger.Error("archive attempt", map[string]interface{}{
			"error": fmt.Sprintf("elasticsearch index error: %s", res.Status()),
			"key":   attempt.Key(),
		})
	}
}
