// mineai/utils/http/httputils.go
package httputils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// PostJSON posts body and decodes a JSON response into resp.
// A bearer token is attached when token is non-empty.
func PostJSON(ctx context.Context, url, token string, body interface{}, resp interface{}) error {
	r, err := doPost(ctx, url, token, body)
	if err != nil {
		return err
	}
	defer r.Body.Close()
	if r.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %d", r.StatusCode)
	}
	if resp != nil {
		return json.NewDecoder(r.Body).Decode(resp)
	}
	return nil
}

// PostStream posts body and hands back the raw response without reading it.
// Callers own resp.Body and must close it; non-2xx statuses are returned
// as-is so the caller can classify them.
func PostStream(ctx context.Context, url, token string, body interface{}) (*http.Response, error) {
	return doPost(ctx, url, token, body)
}

func doPost(ctx context.Context, url, token string, body interface{}) (*http.Response, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return http.DefaultClient.Do(req)
}

// WriteJSON writes v with the given status as application/json.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteError writes the shared {"error": ...} body.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"error": msg})
}
