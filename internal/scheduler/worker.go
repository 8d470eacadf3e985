package scheduler

import (
	"context"
	"errors"
	"fmt"

	closingtransport "vendexa_backend/internal/closing/transport"
	"vendexa_backend/internal/email"
	"vendexa_backend/internal/leads/domain"
	"vendexa_backend/internal/leads/repository"
	"vendexa_backend/platform/apperr"
	"vendexa_backend/platform/config"
	"vendexa_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BatchCloser runs one automated closing pass. Implemented by the closing
// service.
type BatchCloser interface {
	CloseBatch(ctx context.Context) (closingtransport.CloseBatchResponse, error)
}

// followUpMessages maps a sequence stage to its email body. The welcome
// email is stage 0 and lives in the notification module.
var followUpMessages = map[int]string{
	1: "Vimos que voce conheceu a VENDEXA ha alguns dias. Ficou alguma duvida sobre a automacao do seu funil? Estou por aqui para ajudar.",
	2: "Nossos clientes costumam dobrar o volume de leads qualificados no primeiro mes. Quer ver como isso funcionaria na sua operacao?",
	3: "Essa e a nossa ultima mensagem por aqui. O teste gratis de 7 dias continua disponivel quando voce quiser comecar.",
}

type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	repo    *repository.Repository
	closing BatchCloser
	sender  email.Sender
	log     *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, pool *pgxpool.Pool, closing BatchCloser, sender email.Sender, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:  server,
		mux:     mux,
		repo:    repository.New(pool),
		closing: closing,
		sender:  sender,
		log:     log,
	}

	mux.HandleFunc(TaskLeadFollowUp, w.handleLeadFollowUp)
	mux.HandleFunc(TaskCloseBatch, w.handleCloseBatch)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleLeadFollowUp(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseLeadFollowUpPayload(task)
	if err != nil {
		return err
	}

	leadID, err := uuid.Parse(payload.LeadID)
	if err != nil {
		return err
	}

	message, ok := followUpMessages[payload.Stage]
	if !ok {
		return nil
	}

	lead, err := w.repo.GetByID(ctx, leadID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	// Leads already in a proposal or past it get no further nudges.
	if lead.Status.IsTerminal() || lead.Status == domain.StatusProposal {
		return nil
	}

	if err := w.sender.SendFollowUpEmail(ctx, lead.Email, lead.Name, message); err != nil {
		return err
	}

	if _, err := w.repo.AppendInteraction(ctx, repository.AppendInteractionParams{
		LeadID:   lead.ID,
		Kind:     "email",
		Outbound: message,
	}); err != nil {
		return err
	}

	w.log.Info("follow-up sent",
		"lead_id", lead.ID.String(),
		"stage", payload.Stage,
	)
	return nil
}

func (w *Worker) handleCloseBatch(ctx context.Context, _ *asynq.Task) error {
	if w.closing == nil {
		return nil
	}

	result, err := w.closing.CloseBatch(ctx)
	if apperr.Is(err, apperr.KindUnavailable) {
		w.log.Info("close batch skipped, simulation disabled")
		return nil
	}
	if err != nil {
		return err
	}

	w.log.Info("close batch finished",
		"attempted", result.Attempted,
		"won", result.Won,
		"skipped", result.Skipped,
	)
	return nil
}
