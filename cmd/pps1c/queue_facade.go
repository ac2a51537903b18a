package main

import (
	"context"
	"strings"

	"pps1c/internal/api"
	"pps1c/internal/ipc"
	"pps1c/internal/queue"
)

// newQueueActions adapts either the IPC client or the direct store to the
// queue action surface used by per-item retry validation.
func newQueueActions(client *ipc.Client, store *queue.Store) api.QueueActionService {
	if client != nil {
		return &queueIPCActions{client: client}
	}
	return &queueStoreActions{store: store}
}

type queueIPCActions struct {
	client *ipc.Client
}

func (a *queueIPCActions) Describe(_ context.Context, id int64) (*api.QueueItem, error) {
	resp, err := a.client.QueueDescribe(id)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "not found") {
			return nil, nil
		}
		return nil, err
	}
	if resp == nil {
		return nil, nil
	}
	item := api.QueueItem(resp.Item)
	return &item, nil
}

func (a *queueIPCActions) Retry(_ context.Context, ids []int64) (int64, error) {
	resp, err := a.client.QueueRetry(ids)
	if err != nil {
		return 0, err
	}
	return resp.Updated, nil
}

type queueStoreActions struct {
	store *queue.Store
}

func (a *queueStoreActions) Describe(ctx context.Context, id int64) (*api.QueueItem, error) {
	item, err := a.store.GetByID(ctx, id)
	if err != nil || item == nil {
		return nil, err
	}
	dto := api.FromQueueItem(item)
	return &dto, nil
}

func (a *queueStoreActions) Retry(ctx context.Context, ids []int64) (int64, error) {
	return a.store.RetryFailed(ctx, ids...)
}
