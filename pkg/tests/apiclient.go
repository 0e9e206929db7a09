package tests

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httputil"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

// APIClient — JSON-клиент к тестовому HTTP API. Тело успешного ответа
// декодируется в dest, ответа с ошибкой в errDest.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewAPIClient(baseURL string, httpClient *http.Client) APIClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return APIClient{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

func (a APIClient) Get(ctx context.Context, endpoint string, headers http.Header, dest, errDest any) (*http.Response, error) {
	return a.do(ctx, http.MethodGet, endpoint, headers, http.NoBody, dest, errDest)
}

func (a APIClient) Post(ctx context.Context, endpoint string, headers http.Header, request, dest, errDest any) (*http.Response, error) {
	return a.withJSON(ctx, http.MethodPost, endpoint, headers, request, dest, errDest)
}

func (a APIClient) Patch(ctx context.Context, endpoint string, headers http.Header, request, dest, errDest any) (*http.Response, error) {
	return a.withJSON(ctx, http.MethodPatch, endpoint, headers, request, dest, errDest)
}

func (a APIClient) Delete(ctx context.Context, endpoint string, headers http.Header, dest, errDest any) (*http.Response, error) {
	return a.do(ctx, http.MethodDelete, endpoint, headers, http.NoBody, dest, errDest)
}

func (a APIClient) withJSON(
	ctx context.Context,
	method, endpoint string,
	headers http.Header,
	request, dest, errDest any,
) (*http.Response, error) {
	b, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}

	if headers == nil {
		headers = http.Header{}
	}
	if headers.Get("Content-Type") == "" {
		headers = headers.Clone()
		headers.Set("Content-Type", "application/json")
	}

	return a.do(ctx, method, endpoint, headers, bytes.NewReader(b), dest, errDest)
}

func (a APIClient) do(
	ctx context.Context,
	method, endpoint string,
	headers http.Header,
	payload io.Reader,
	dest, errDest any,
) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+endpoint, payload)
	if err != nil {
		return nil, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}

	for k, v := range headers {
		req.Header[k] = v
	}

	slog.Debug("api request", "method", method, "url", req.URL.String())

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpClient.Do: %w", err)
	}

	defer resp.Body.Close()

	if dump, err := httputil.DumpResponse(resp, true); err == nil {
		slog.Debug("api response", "status", resp.StatusCode, "dump", string(dump))
	}

	if err = decode(resp, dest, errDest); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return resp, nil
}

func decode(r *http.Response, dest, errDest any) error {
	if r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices {
		if dest == nil {
			return nil
		}
		if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
			return fmt.Errorf("success body: %w", err)
		}
		return nil
	}

	if errDest == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(errDest); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("error body: %w", err)
	}
	return nil
}
