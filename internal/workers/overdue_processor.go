// internal/workers/overdue_processor.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/mcardoso/brecho-be/internal/core/ports"
)

// OverdueProcessor scans for consignments past their return deadline and
// queues a reminder email per overdue loan. Runs on the periodic scheduler.
type OverdueProcessor struct {
	consignments ports.ConsignmentRepository
	clients      ports.ClientRepository
	asynqClient  *asynq.Client
	logger       *slog.Logger
}

// NewOverdueProcessor creates a new overdue consignment processor
func NewOverdueProcessor(
	consignments ports.ConsignmentRepository,
	clients ports.ClientRepository,
	asynqClient *asynq.Client,
	logger *slog.Logger,
) *OverdueProcessor {
	return &OverdueProcessor{
		consignments: consignments,
		clients:      clients,
		asynqClient:  asynqClient,
		logger:       logger.With(slog.String("processor", "overdue")),
	}
}

// CheckOverdue finds overdue consignments and enqueues reminders.
func (p *OverdueProcessor) CheckOverdue(ctx context.Context, t *asynq.Task) error {
	overdue, err := p.consignments.FindOverdue(ctx)
	if err != nil {
		return fmt.Errorf("failed to find overdue consignments: %w", err)
	}

	if len(overdue) == 0 {
		p.logger.InfoContext(ctx, "no overdue consignments")
		return nil
	}

	queued := 0
	for i := range overdue {
		c := &overdue[i]

		client, err := p.clients.FindByID(ctx, c.ClienteID)
		if err != nil {
			p.logger.WarnContext(ctx, "failed to load client for reminder",
				slog.Int64("condicional_id", c.ID),
				slog.Int64("cliente_id", c.ClienteID),
				slog.String("error", err.Error()))
			continue
		}
		if client == nil || client.Email == "" {
			continue
		}

		payload := EmailPayload{
			To:      client.Email,
			Subject: "Condicional com devolução atrasada",
			Body: fmt.Sprintf(
				"Olá %s,\n\nSua condicional de %d peça(s) venceu em %s. "+
					"Por favor, entre em contato para acertar a devolução ou a compra das peças.",
				client.Nome, c.TotalPecas(), c.DataDevolucao.Format("02/01/2006")),
		}

		b, err := json.Marshal(payload)
		if err != nil {
			continue
		}

		_, err = p.asynqClient.EnqueueContext(ctx,
			asynq.NewTask(TypeEmailNotify, b),
			asynq.Queue("low"),
			asynq.MaxRetry(2),
			asynq.Retention(24*time.Hour))
		if err != nil {
			p.logger.WarnContext(ctx, "failed to enqueue reminder",
				slog.Int64("condicional_id", c.ID),
				slog.String("error", err.Error()))
			continue
		}
		queued++
	}

	p.logger.InfoContext(ctx, "overdue check finished",
		slog.Int("overdue", len(overdue)),
		slog.Int("reminders_queued", queued))

	return nil
}
