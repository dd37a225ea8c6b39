package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"dynamo-league/internal/config"
	"dynamo-league/internal/constants"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

var errNoHeadshot = errors.New("no headshot")

// HeadshotClient looks up player photo URLs from an external directory. With no base URL
// configured every lookup returns an empty URL.
type HeadshotClient struct {
	baseURL string
	client  *fasthttp.Client
	logger  zerolog.Logger
}

type HeadshotResponse struct {
	URL string `json:"url"`
}

func NewHeadshotClient(cfg *config.Config, logger zerolog.Logger) *HeadshotClient {
	return &HeadshotClient{
		baseURL: strings.TrimRight(cfg.HeadshotAPIURL, "/"),
		client: &fasthttp.Client{
			MaxConnsPerHost:     constants.HeadshotLookupConcurrency,
			ReadTimeout:         constants.HeadshotTimeout,
			WriteTimeout:        constants.HeadshotTimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		logger: logger,
	}
}

func (c *HeadshotClient) Enabled() bool {
	return c.baseURL != ""
}

// Lookup returns the headshot URL for a player, or "" when the directory has none.
func (c *HeadshotClient) Lookup(ctx context.Context, name, position string) (string, error) {
	if !c.Enabled() {
		return "", nil
	}

	query := url.Values{}
	query.Set("name", name)
	if position != "" {
		query.Set("position", position)
	}

	result, err := doRequest[HeadshotResponse](ctx, c, c.baseURL+"/headshots?"+query.Encode())
	if errors.Is(err, errNoHeadshot) {
		c.logger.Debug().Str("name", name).Msg("no headshot found")
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up headshot for %s: %w", name, err)
	}
	return result.URL, nil
}

func doRequest[T any](ctx context.Context, client *HeadshotClient, url string) (*T, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(constants.HeadshotTimeout)
	}
	if err := client.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, err
	}

	switch resp.StatusCode() {
	case fasthttp.StatusOK:
	case fasthttp.StatusNotFound:
		return nil, errNoHeadshot
	default:
		return nil, fmt.Errorf("API error: %d", resp.StatusCode())
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}
