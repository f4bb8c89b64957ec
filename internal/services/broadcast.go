package services

import (
	"context"
	"log"
	"strings"

	"salonloyalty/internal/interfaces"
	"salonloyalty/internal/models"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/samber/do"
)

type ServiceBroadcast struct {
	container  *do.Injector
	store      interfaces.Store
	dispatcher *ServiceDispatcher
}

func NewServiceBroadcast(container *do.Injector) (*ServiceBroadcast, error) {
	store, err := do.Invoke[interfaces.Store](container)
	if err != nil {
		return nil, err
	}

	dispatcher, err := do.Invoke[*ServiceDispatcher](container)
	if err != nil {
		return nil, err
	}

	return &ServiceBroadcast{container, store, dispatcher}, nil
}

// SendBroadcast resolves the target's tokens and hands them to the dispatcher.
// It fails with ErrDeliveryFailure only when every batch failed.
func (service *ServiceBroadcast) SendBroadcast(ctx context.Context, req *models.BroadcastRequest) (*models.DispatchReport, error) {
	title := strings.TrimSpace(req.Title)
	body := strings.TrimSpace(req.Body)
	switch {
	case title == "":
		return nil, invalid("title is required")
	case body == "":
		return nil, invalid("body is required")
	}

	var tokens []string
	var err error
	switch req.Target {
	case models.BROADCAST_TARGET_ALL:
		tokens, err = service.store.AllDeviceTokens(ctx)
	case models.BROADCAST_TARGET_SELECTED:
		customerID := strings.TrimSpace(req.CustomerID)
		if customerID == "" {
			return nil, invalid("customer_id is required for target %q", req.Target)
		}
		if _, err := service.store.FindCustomer(ctx, customerID); err != nil {
			return nil, storeErr(err, "customer")
		}
		tokens, err = service.store.DeviceTokensByCustomer(ctx, customerID)
	default:
		return nil, invalid("target must be %q or %q", models.BROADCAST_TARGET_ALL, models.BROADCAST_TARGET_SELECTED)
	}
	if err != nil {
		return nil, err
	}

	data := map[string]string{PUSH_DATA_TYPE: PUSH_DATA_TYPE_BROADCAST}
	for k, v := range req.Data {
		data[k] = v
	}

	report := service.dispatcher.Send(ctx, tokens, title, body, data)
	log.Printf("broadcast %s: %d tokens, %d sent, %d failed batches\n", req.Target, len(tokens), report.Sent, report.FailedBatches)

	if report.FailedBatches > 0 && report.FailedBatches == len(report.Batches) {
		return report, wrapf(errorx.Service, ErrDeliveryFailure, "all %d batches failed", report.FailedBatches)
	}
	return report, nil
}
