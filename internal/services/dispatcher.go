package services

import (
	"context"
	"log"

	"salonloyalty/internal/interfaces"
	"salonloyalty/internal/models"
	"salonloyalty/internal/pkg"

	"github.com/samber/do"
)

type ServiceDispatcher struct {
	container *do.Injector
	provider  interfaces.PushProvider
	batchSize int
}

func NewServiceDispatcher(container *do.Injector) (*ServiceDispatcher, error) {
	provider, err := do.Invoke[interfaces.PushProvider](container)
	if err != nil {
		return nil, err
	}

	return &ServiceDispatcher{container, provider, PUSH_BATCH_SIZE}, nil
}

// Send issues one provider request per batch. A failed batch counts 0 and the rest still go out.
func (service *ServiceDispatcher) Send(ctx context.Context, tokens []string, title string, body string, data map[string]string) *models.DispatchReport {
	report := &models.DispatchReport{Batches: []models.BatchResult{}}

	for i, chunk := range pkg.Chunk(tokens, service.batchSize) {
		messages := make([]models.PushMessage, 0, len(chunk))
		for _, token := range chunk {
			messages = append(messages, models.PushMessage{
				To:    token,
				Title: title,
				Body:  body,
				Data:  data,
				Sound: PUSH_SOUND_DEFAULT,
			})
		}

		batch := models.BatchResult{Index: i, Size: len(chunk)}
		accepted, err := service.provider.SendBatch(ctx, messages)
		if err != nil {
			log.Printf("push batch %d (%d tokens) failed: %v\n", i, len(chunk), err)
			batch.Failed = true
			batch.Error = err.Error()
			report.FailedBatches++
		} else {
			batch.Accepted = accepted
			report.Sent += accepted
		}
		report.Batches = append(report.Batches, batch)
	}

	return report
}
