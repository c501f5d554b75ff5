package out

import (
	"context"
	"net/http"
	"net/url"

	"vocabhub/internal/modules/membership/dto"
	membershipout "vocabhub/internal/modules/membership/port/out"
	"vocabhub/internal/platform/httpx"
)

type HTTPGateway struct {
	client *httpx.Client
}

func NewHTTPGateway(client *httpx.Client) membershipout.Gateway {
	return &HTTPGateway{client: client}
}

func (g *HTTPGateway) List(ctx context.Context, token string) ([]string, error) {
	var reply dto.ListReply
	if err := g.client.Do(ctx, "saved.list", http.MethodGet, dto.SavedPath, token, nil, &reply); err != nil {
		return nil, err
	}
	return reply.ItemIDs, nil
}

func (g *HTTPGateway) Add(ctx context.Context, token, itemID string) error {
	return g.client.Do(ctx, "saved.add", http.MethodPost, dto.SavedPath, token, dto.AddRequest{ItemID: itemID}, &dto.AcceptReply{})
}

func (g *HTTPGateway) Remove(ctx context.Context, token, itemID string) error {
	return g.client.Do(ctx, "saved.remove", http.MethodDelete, dto.SavedPath+"/"+url.PathEscape(itemID), token, nil, &dto.AcceptReply{})
}
