package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"janseva/internal/validation"
)

// HTTPSupplier calls an external review endpoint. The decorator owns the
// timeout; this client only shapes the request and response.
type HTTPSupplier struct {
	url    string
	client *http.Client
}

func NewHTTPSupplier(url string, client *http.Client) *HTTPSupplier {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSupplier{url: url, client: client}
}

type suggestRequest struct {
	Fields    []validation.Field `json:"fields"`
	FormData  map[string]string  `json:"formData"`
	Lang      string             `json:"lang"`
	ServiceID int                `json:"serviceId"`
}

type suggestResponse struct {
	Issues []validation.Issue `json:"issues"`
}

func (s *HTTPSupplier) Suggest(ctx context.Context, fields []validation.Field, formData map[string]string, lang string, serviceID int) ([]validation.Issue, error) {
	body, err := json.Marshal(suggestRequest{
		Fields:    fields,
		FormData:  formData,
		Lang:      lang,
		ServiceID: serviceID,
	})
	if err != nil {
		return nil, fmt.Errorf("encode suggest request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build suggest request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call suggest endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("suggest endpoint returned %d", resp.StatusCode)
	}

	var decoded suggestResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode suggest response: %w", err)
	}
	return decoded.Issues, nil
}
