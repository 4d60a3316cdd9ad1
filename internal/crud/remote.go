package crud

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/Sign-up-admin/safe-room-sub007/internal/apiclient"
	"github.com/Sign-up-admin/safe-room-sub007/internal/models"
)

// RemoteBackend reaches an external module API through the envelope client.
type RemoteBackend struct {
	client *apiclient.Client
}

func NewRemoteBackend(client *apiclient.Client) *RemoteBackend {
	return &RemoteBackend{client: client}
}

func (b *RemoteBackend) List(ctx context.Context, module string, query ListQuery) (*models.Page, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(query.Page))
	params.Set("limit", strconv.Itoa(query.Limit))
	if query.Sort != "" {
		params.Set("sort", query.Sort)
		params.Set("order", query.Order)
	}
	for key, value := range query.Filters {
		params.Set(key, value)
	}

	var page models.Page
	if err := b.client.Get(ctx, "/"+module+"/list", params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (b *RemoteBackend) Info(ctx context.Context, module string, id int64) (models.Record, error) {
	var record models.Record
	err := b.client.Get(ctx, fmt.Sprintf("/%s/info/%d", module, id), nil, &record)
	if err != nil {
		var httpErr *apiclient.HTTPError
		if errors.As(err, &httpErr) && httpErr.Status == 404 {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return record, nil
}

func (b *RemoteBackend) Save(ctx context.Context, module string, record models.Record) (int64, error) {
	var id int64
	if err := b.client.Post(ctx, "/"+module+"/save", record, &id); err != nil {
		return 0, err
	}
	return id, nil
}

func (b *RemoteBackend) Update(ctx context.Context, module string, record models.Record) error {
	return b.client.Post(ctx, "/"+module+"/update", record, nil)
}

func (b *RemoteBackend) Delete(ctx context.Context, module string, ids []int64) error {
	return b.client.Post(ctx, "/"+module+"/delete", ids, nil)
}
