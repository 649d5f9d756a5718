package testhelpers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/stretchr/testify/require"

	"github.com/arrienda/mono-repo/backend/shared/go-utils"
)

// BuildAuthRequest builds a request with a bearer token and, when a body
// is present, a JSON content type.
func (h *TestHelper) BuildAuthRequest(method, reqURL, jwtString string, body []byte) *http.Request {
	req, err := http.NewRequest(method, reqURL, bytes.NewReader(body))
	require.NoError(h.T, err)

	if jwtString != "" {
		req.Header.Set("Authorization", "Bearer "+jwtString)
	}
	if len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// DoRequest performs an HTTP request and asserts that no network-level error occurred.
func (h *TestHelper) DoRequest(req *http.Request, client *http.Client) *http.Response {
	resp, err := client.Do(req)
	require.NoError(h.T, err, "HTTP request failed")
	return resp
}

// ReadBody reads the response body and returns it as a string for logging or inspection.
func (h *TestHelper) ReadBody(resp *http.Response) string {
	if resp == nil || resp.Body == nil {
		return "<nil response or body>"
	}
	bodyBytes, err := io.ReadAll(resp.Body)
	resp.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
	require.NoError(h.T, err, "Failed to read response body")
	return string(bodyBytes)
}

// DecodeEnvelope reads the response envelope and, when data is non-nil,
// decodes the data member into it.
func (h *TestHelper) DecodeEnvelope(resp *http.Response, data any) utils.Envelope {
	defer resp.Body.Close()

	var raw struct {
		utils.Envelope
		Data json.RawMessage `json:"data,omitempty"`
	}
	require.NoError(h.T, json.NewDecoder(resp.Body).Decode(&raw), "Failed to decode response envelope")
	if data != nil && len(raw.Data) > 0 {
		require.NoError(h.T, json.Unmarshal(raw.Data, data), "Failed to decode envelope data")
	}
	return raw.Envelope
}

// MustJSON marshals v for a request body.
func (h *TestHelper) MustJSON(v any) []byte {
	b, err := json.Marshal(v)
	require.NoError(h.T, err)
	return b
}
