package out

import (
	"context"
	"net/http"
	"net/url"

	"vocabhub/internal/modules/session/domain"
	"vocabhub/internal/modules/session/dto"
	sessionout "vocabhub/internal/modules/session/port/out"
	"vocabhub/internal/platform/httpx"
)

// HTTPGateway talks to a remote session resource mounted at basePath.
type HTTPGateway[T, R any] struct {
	client   *httpx.Client
	basePath string
	flow     string
}

func NewHTTPStudyGateway(client *httpx.Client) sessionout.StudyGateway {
	return &HTTPGateway[domain.StudyCard, domain.StudyResponse]{client: client, basePath: dto.StudySessionsPath, flow: "study"}
}

func NewHTTPAssessmentGateway(client *httpx.Client) sessionout.AssessmentGateway {
	return &HTTPGateway[domain.AssessmentWord, domain.AssessmentResponse]{client: client, basePath: dto.AssessmentSessionsPath, flow: "assessment"}
}

func (g *HTTPGateway[T, R]) Load(ctx context.Context, token string, params domain.LoadParams) (domain.LoadResult[T], error) {
	var reply dto.LoadReply[T]
	if err := g.client.Do(ctx, g.flow+".load", http.MethodPost, g.basePath, token, params, &reply); err != nil {
		return domain.LoadResult[T]{}, err
	}
	return domain.LoadResult[T]{SessionID: reply.SessionID, Entries: reply.Items, Metadata: reply.Metadata}, nil
}

func (g *HTTPGateway[T, R]) Submit(ctx context.Context, token, sessionID, itemID string, response R) (domain.SubmitResult, error) {
	var reply dto.SubmitReply
	path := g.basePath + "/" + url.PathEscape(sessionID) + "/responses"
	body := dto.SubmitRequest[R]{ItemID: itemID, Response: response}
	if err := g.client.Do(ctx, g.flow+".submit", http.MethodPost, path, token, body, &reply); err != nil {
		return domain.SubmitResult{}, err
	}
	return domain.SubmitResult{Accepted: reply.Accepted, Aggregate: reply.Aggregate}, nil
}

func (g *HTTPGateway[T, R]) Abandon(ctx context.Context, token, sessionID string) (bool, error) {
	var reply dto.AcceptReply
	if err := g.client.Do(ctx, g.flow+".abandon", http.MethodDelete, g.basePath+"/"+url.PathEscape(sessionID), token, nil, &reply); err != nil {
		return false, err
	}
	return reply.Accepted, nil
}
