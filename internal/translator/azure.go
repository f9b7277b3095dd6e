package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/xerrors"

	"github.com/nconklindev/qtranslate/internal/lang"
)

// DefaultAzureEndpoint is the global Azure Translator endpoint.
const DefaultAzureEndpoint = "https://api.cognitive.microsofttranslator.com"

const azureAPIVersion = "3.0"

// AzureConfig holds the Azure Translator credentials.
type AzureConfig struct {
	Endpoint string
	Key      string
	// Region is required for multi-service and regional resources.
	Region string
	// Timeout bounds one request. Zero means no timeout.
	Timeout time.Duration
	// Proxy overrides HTTP_PROXY/HTTPS_PROXY when set.
	Proxy string
}

// AzureService calls the Azure Translator v3 REST API, one text per request.
type AzureService struct {
	cfg    AzureConfig
	client *http.Client
}

func NewAzureService(cfg AzureConfig) *AzureService {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultAzureEndpoint
	}
	return &AzureService{cfg: cfg, client: makeHTTPClient(cfg.Proxy, cfg.Timeout)}
}

func makeHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if proxyURL != "" {
		parsed, err := url.Parse(proxyURL)
		if err == nil {
			transport.Proxy = http.ProxyURL(parsed)
		}
	} else {
		transport.Proxy = http.ProxyFromEnvironment
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

type azureRequestItem struct {
	Text string `json:"text"`
}

// Text is a pointer so a missing field can be told apart from an empty translation.
type azureResponseItem struct {
	Translations []struct {
		Text *string `json:"text"`
		To   string  `json:"to"`
	} `json:"translations"`
}

func (s *AzureService) endpoint(from, to lang.Code) string {
	q := url.Values{}
	q.Set("api-version", azureAPIVersion)
	q.Set("from", string(from))
	q.Set("to", string(to))
	return strings.TrimRight(s.cfg.Endpoint, "/") + "/translate?" + q.Encode()
}

// Translate sends text and returns the first translation of the first result.
func (s *AzureService) Translate(ctx context.Context, text string, from, to lang.Code) (string, error) {
	body, err := json.Marshal([]azureRequestItem{{Text: text}})
	if err != nil {
		return "", xerrors.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint(from, to), bytes.NewReader(body))
	if err != nil {
		return "", xerrors.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Ocp-Apim-Subscription-Key", s.cfg.Key)
	if s.cfg.Region != "" {
		req.Header.Set("Ocp-Apim-Subscription-Region", s.cfg.Region)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", xerrors.Errorf("translation request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", xerrors.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(respBody), 500)}
	}

	return extractTranslation(respBody)
}

// extractTranslation reads [0].translations[0].text.
func extractTranslation(body []byte) (string, error) {
	var items []azureResponseItem
	if err := json.Unmarshal(body, &items); err != nil {
		return "", xerrors.Errorf("%s: %w", truncate(string(body), 200), ErrMalformedResponse)
	}
	if len(items) == 0 || len(items[0].Translations) == 0 || items[0].Translations[0].Text == nil {
		return "", xerrors.Errorf("%s: %w", truncate(string(body), 200), ErrMalformedResponse)
	}
	return *items[0].Translations[0].Text, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
