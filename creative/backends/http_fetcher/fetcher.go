package http_fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/signstack/creative-server/creative"

	"github.com/buger/jsonparser"
	"github.com/golang/glog"
)

// NewFetcher returns a Fetcher which uses the Client to pull creative
// documents from the content API.
//
// This file expects the endpoint to satisfy the following API:
//
// GET {endpoint}/{creativeId}
//
// responding 200 with the raw CreativeDocument JSON object, or 404 when the
// creative does not exist.
func NewFetcher(client *http.Client, endpoint string) *HttpFetcher {
	if _, err := url.Parse(endpoint); err != nil {
		glog.Fatalf(`Invalid creative endpoint "%s": %v`, endpoint, err)
	}
	glog.Infof("Making http_fetcher for endpoint %v", endpoint)

	return &HttpFetcher{
		client:   client,
		Endpoint: strings.TrimSuffix(endpoint, "/"),
	}
}

type HttpFetcher struct {
	client   *http.Client
	Endpoint string
}

func (fetcher *HttpFetcher) FetchCreative(ctx context.Context, id string) (json.RawMessage, error) {
	httpReq, err := http.NewRequestWithContext(ctx, "GET", fetcher.Endpoint+"/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf(`Error fetching creative "%s" via http: build request failed with %v`, id, err)
	}

	httpResp, err := fetcher.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf(`Error fetching creative "%s" via http: %v`, id, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode == http.StatusNotFound {
		return nil, creative.NotFoundError{ID: id}
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf(`Error fetching creative "%s" via http: unexpected response status %d`, id, httpResp.StatusCode)
	}

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf(`Error fetching creative "%s" via http: %v`, id, err)
	}

	if _, dataType, _, err := jsonparser.Get(body); err != nil || dataType != jsonparser.Object {
		return nil, fmt.Errorf(`Error fetching creative "%s" via http: response was not a JSON object`, id)
	}
	return json.RawMessage(body), nil
}
