package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/doeshing/qrshield/internal/domain"
	"github.com/doeshing/qrshield/internal/ports"
)

const maxResponseBytes = 1 << 20

// SafeBrowsing queries the Google Safe Browsing v4 threatMatches:find endpoint.
type SafeBrowsing struct {
	settings   domain.OracleSettings
	apiKey     string
	httpClient *http.Client
}

// NewSafeBrowsing builds a client. The http client carries the request timeout.
func NewSafeBrowsing(settings domain.OracleSettings, apiKey string, client *http.Client) *SafeBrowsing {
	return &SafeBrowsing{settings: settings, apiKey: apiKey, httpClient: client}
}

func (s *SafeBrowsing) Name() string {
	return "safebrowsing"
}

// Lookup returns true when the service reports at least one threat match for target.
func (s *SafeBrowsing) Lookup(ctx context.Context, target string) (bool, error) {
	body, err := buildRequest(s.settings, target)
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrOracleTransport, err)
	}

	endpoint, err := withKey(s.settings.Endpoint, s.apiKey)
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrOracleTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrOracleTransport, err)
	}
	req.Header.Set("content-type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrOracleTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return false, fmt.Errorf("%w: %s: %s", domain.ErrOracleTransport, s.Name(), resp.Status)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrOracleTransport, err)
	}

	matched, err := parseResponse(raw)
	if err != nil {
		return false, fmt.Errorf("%w: decode response: %v", domain.ErrOracleTransport, err)
	}
	return matched, nil
}

type clientInfo struct {
	ClientID      string `json:"clientId"`
	ClientVersion string `json:"clientVersion"`
}

type threatEntry struct {
	URL string `json:"url"`
}

type threatInfo struct {
	ThreatTypes      []string      `json:"threatTypes"`
	PlatformTypes    []string      `json:"platformTypes"`
	ThreatEntryTypes []string      `json:"threatEntryTypes"`
	ThreatEntries    []threatEntry `json:"threatEntries"`
}

type findRequest struct {
	Client     clientInfo `json:"client"`
	ThreatInfo threatInfo `json:"threatInfo"`
}

type findResponse struct {
	Matches []json.RawMessage `json:"matches"`
}

func buildRequest(settings domain.OracleSettings, target string) ([]byte, error) {
	return json.Marshal(findRequest{
		Client: clientInfo{
			ClientID:      defaultString(settings.ClientID, domain.DefaultOracleClientID),
			ClientVersion: defaultString(settings.ClientVersion, domain.DefaultOracleClientVer),
		},
		ThreatInfo: threatInfo{
			ThreatTypes:      defaultList(settings.ThreatTypes, "MALWARE", "SOCIAL_ENGINEERING", "UNWANTED_SOFTWARE"),
			PlatformTypes:    defaultList(settings.PlatformTypes, "ANY_PLATFORM"),
			ThreatEntryTypes: defaultList(settings.ThreatEntryTypes, "URL"),
			ThreatEntries:    []threatEntry{{URL: target}},
		},
	})
}

func parseResponse(body []byte) (bool, error) {
	var response findResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return false, err
	}
	return len(response.Matches) > 0, nil
}

func withKey(endpoint, key string) (string, error) {
	u, err := url.Parse(defaultString(endpoint, domain.DefaultOracleEndpoint))
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("key", key)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func defaultList(values []string, fallback ...string) []string {
	if len(values) == 0 {
		return fallback
	}
	return values
}

var _ ports.ThreatOracle = (*SafeBrowsing)(nil)
