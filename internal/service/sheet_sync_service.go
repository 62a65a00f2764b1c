package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/seguimiento-cmr/seguimiento-api/internal/config"
	"github.com/seguimiento-cmr/seguimiento-api/internal/models"
)

// SheetClient is the append/update contract the spreadsheet backend offers.
// Row numbers are 1-based; row 1 is the header.
type SheetClient interface {
	IDColumn(ctx context.Context) ([]string, error)
	Append(ctx context.Context, row []interface{}) error
	Update(ctx context.Context, rowNumber int, row []interface{}) error
}

type sheetSync struct {
	client  SheetClient
	mode    string
	timeout time.Duration
	logger  zerolog.Logger
	tracer  trace.Tracer
}

// NewSheetSync builds the spreadsheet mirror adapter. The mode is fixed at
// construction: await blocks the originating request until the push settles
// or the timeout fires, async fires and forgets. In both modes the outcome
// is only logged; a sync failure never reaches the API client.
func NewSheetSync(client SheetClient, mode string, timeout time.Duration, logger zerolog.Logger) EvidenceMirror {
	return &sheetSync{
		client:  client,
		mode:    mode,
		timeout: timeout,
		logger:  logger.With().Str("component", "sheet_sync").Logger(),
		tracer:  otel.Tracer("github.com/seguimiento-cmr/seguimiento-api/internal/service/sheetsync"),
	}
}

func (s *sheetSync) EvidenceCreated(ctx context.Context, evidence models.Evidence) {
	s.dispatch("create", evidence)
}

func (s *sheetSync) EvidenceUpdated(ctx context.Context, evidence models.Evidence) {
	s.dispatch("update", evidence)
}

// dispatch runs the push under the configured strategy. The push always gets
// a fresh background context: in await mode the timeout abandons the call
// rather than cancelling it, so the remote write may still land after the
// local deadline.
func (s *sheetSync) dispatch(op string, evidence models.Evidence) {
	if s.client == nil {
		return
	}

	logger := s.logger.With().Str("op", op).Uint("evidence_id", evidence.ID).Logger()

	if s.mode == config.SyncModeAwait {
		done := make(chan error, 1)
		go func() {
			done <- s.push(context.Background(), evidence)
		}()

		select {
		case err := <-done:
			if err != nil {
				logger.Error().Err(err).Msg("sheet sync failed")
				return
			}
			logger.Info().Msg("sheet sync completed")
		case <-time.After(s.timeout):
			logger.Error().Dur("timeout", s.timeout).Msg("sheet sync timed out, result abandoned")
		}
		return
	}

	go func() {
		if err := s.push(context.Background(), evidence); err != nil {
			logger.Error().Err(err).Msg("sheet sync failed")
			return
		}
		logger.Info().Msg("sheet sync completed")
	}()
}

// push reconciles one evidence record into the sheet: update the row whose
// first column matches the evidence id, or append one when no row matches.
func (s *sheetSync) push(ctx context.Context, evidence models.Evidence) error {
	ctx, span := s.tracer.Start(ctx, "sheet_sync.push", trace.WithAttributes(
		attribute.Int("evidence.id", int(evidence.ID)),
	))
	defer span.End()

	ids, err := s.client.IDColumn(ctx)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to read id column: %w", err)
	}

	if len(ids) == 0 {
		if err := s.client.Append(ctx, headerRow()); err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to write header row: %w", err)
		}
	}

	id := strconv.FormatUint(uint64(evidence.ID), 10)
	row := evidenceRow(evidence)

	for i, cell := range ids {
		if i == 0 {
			continue
		}
		if strings.TrimSpace(cell) == id {
			if err := s.client.Update(ctx, i+1, row); err != nil {
				span.RecordError(err)
				return fmt.Errorf("failed to update row %d: %w", i+1, err)
			}
			return nil
		}
	}

	if err := s.client.Append(ctx, row); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to append row: %w", err)
	}

	return nil
}

func headerRow() []interface{} {
	return []interface{}{
		"ID Evidencia",
		"Componente",
		"Actividad",
		"Tipo Evidencia",
		"Trimestre",
		"Mes",
		"Año",
		"Responsables",
		"Estado",
		"Fecha Entrega",
		"Entregado En",
		"Creado En",
	}
}

func evidenceRow(evidence models.Evidence) []interface{} {
	responsibles := make([]string, 0, len(evidence.Responsibles))
	for _, user := range evidence.Responsibles {
		responsibles = append(responsibles, fmt.Sprintf("%s (%s) [%s]", user.Name, user.Email, user.Affiliation))
	}

	deliveredAt := ""
	if evidence.DeliveredAt != nil {
		deliveredAt = evidence.DeliveredAt.UTC().Format(time.RFC3339)
	}

	return []interface{}{
		strconv.FormatUint(uint64(evidence.ID), 10),
		evidence.Activity.Component.Name,
		strings.TrimSpace(evidence.Activity.Description),
		evidence.EvidenceType,
		evidence.Quarter,
		evidence.Month,
		evidence.Year,
		strings.Join(responsibles, "; "),
		evidence.Status,
		evidence.DueDate.Format("2006-01-02"),
		deliveredAt,
		evidence.CreatedAt.UTC().Format(time.RFC3339),
	}
}
