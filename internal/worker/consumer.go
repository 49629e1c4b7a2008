package worker

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/nats-io/nats.go"
)

// JetStreamPublisher publica no JetStream.
type JetStreamPublisher struct {
	JS nats.JetStreamContext
}

func (p JetStreamPublisher) Publish(subject string, data []byte) error {
	_, err := p.JS.Publish(subject, data)
	return err
}

// EnsureStreams garante os streams COMMENTS (jobs) e COMMENTS_DATA (resultados).
func EnsureStreams(js nats.JetStreamContext, jobSubject, resultSubject string) {
	for name, subject := range map[string]string{"COMMENTS": jobSubject, "COMMENTS_DATA": resultSubject} {
		_, err := js.AddStream(&nats.StreamConfig{
			Name:     name,
			Subjects: []string{subject},
			Storage:  nats.FileStorage,
		})
		if err != nil {
			log.Printf("Stream %s: %v (ok se já existe)", name, err)
		}
	}
}

// acker é o pedaço de *nats.Msg usado para confirmar ou devolver um job.
type acker interface {
	Ack(opts ...nats.AckOpt) error
	Nak(opts ...nats.AckOpt) error
}

// Handle decodifica e processa uma mensagem. Job inválido é descartado (Ack) para não voltar em loop;
// erro de processamento devolve para a fila (Nak).
func (w *Worker) Handle(ctx context.Context, data []byte, msg acker) (Outcome, error) {
	job, err := DecodeJob(data)
	if err != nil {
		w.logf("❌ %v", err)
		msg.Ack()
		return 0, err
	}

	w.logf("📥 Recebido job: %s (%s)", job.Identifier, job.JobID)
	outcome, err := w.Process(ctx, job)
	if err != nil {
		w.logf("❌ erro processando %s: %v", job.Identifier, err)
		msg.Nak()
		return 0, err
	}
	msg.Ack()
	return outcome, nil
}

// Run consome sub sequencialmente até ctx acabar.
func (w *Worker) Run(ctx context.Context, sub *nats.Subscription, minDelay, maxDelay int) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msgs, err := sub.Fetch(1, nats.MaxWait(10*time.Second))
		if err != nil {
			if errors.Is(err, nats.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
				continue // Nenhuma mensagem na fila
			}
			w.logf("Erro no Fetch: %v", err)
			time.Sleep(2 * time.Second)
			continue
		}

		msg := msgs[0]
		outcome, err := w.Handle(ctx, msg.Data, msg)
		if err == nil && outcome != OutcomeSkipped {
			RandomDelay(ctx, minDelay, maxDelay)
		}
	}
}
