package azurehelper

import (
	"context"
	"strings"

	"github.com/scopeworks/azscope/internal/azure/hierarchy"
	"github.com/scopeworks/azscope/internal/azure/types"
	"github.com/scopeworks/azscope/internal/errors"
)

// ListEntities returns every management group and subscription visible to the
// caller, flattened from the management group entities API. The hierarchy
// cache is built from this single call.
func (c *Client) ListEntities(ctx context.Context) ([]*hierarchy.Entry, error) {
	var result []*hierarchy.Entry

	pager := c.entities.NewListPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, errors.WithStackTraceAndPrefix(err, "listing management group entities")
		}

		for _, info := range page.Value {
			entry := &hierarchy.Entry{}

			if info.ID != nil {
				entry.ID = *info.ID
			}

			if info.Name != nil {
				entry.Name = *info.Name
			}

			if info.Type != nil {
				entry.Type = *info.Type
			}

			if info.Properties != nil {
				if info.Properties.DisplayName != nil {
					entry.DisplayName = *info.Properties.DisplayName
				}

				if info.Properties.Parent != nil && info.Properties.Parent.ID != nil {
					entry.ParentName = lastSegment(*info.Properties.Parent.ID)
				}
			}

			raw, err := types.FromSDK(info)
			if err != nil {
				return nil, err
			}

			entry.Raw = raw

			result = append(result, entry)
		}
	}

	return result, nil
}

// GetSubscription reads subscription metadata directly. Used when the target
// subscription is not part of any visible management group.
func (c *Client) GetSubscription(ctx context.Context, subscriptionID string) (types.RawEntity, error) {
	resp, err := c.subscriptions.Get(ctx, subscriptionID, nil)
	if err != nil {
		if IsNotFoundError(err) {
			return nil, types.NotFoundError{ResourceID: "/subscriptions/" + subscriptionID}
		}

		return nil, errors.WithStackTraceAndPrefix(err, "getting subscription %s", subscriptionID)
	}

	return types.FromSDK(resp.Subscription)
}

func lastSegment(id string) string {
	trimmed := strings.TrimRight(id, "/")

	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}

	return trimmed
}
