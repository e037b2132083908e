//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

// Exercises a running server end to end. Point E2E_BASE_URL at a server
// started with the in-memory demo world (no DSN configured).
func TestRemoteAPI_MainEndpoints(t *testing.T) {
	baseURL := strings.TrimRight(envOr("E2E_BASE_URL", "http://127.0.0.1:8080"), "/")
	worldID := envOr("E2E_WORLD_ID", "demo-world")
	actorID := envOr("E2E_ACTOR_ID", "demo-user")
	targetID := envOr("E2E_TARGET_ID", "demo-mira")
	client := &http.Client{Timeout: 20 * time.Second}

	t.Run("advance rejects empty world", func(t *testing.T) {
		status, body := mustJSON(t, client, http.MethodPost, baseURL+"/api/world/advance", map[string]any{})
		if status != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d body=%s", status, string(body))
		}
	})

	t.Run("advance observe action replay ops", func(t *testing.T) {
		status, advanceBody := mustJSON(t, client, http.MethodPost, baseURL+"/api/world/advance", map[string]any{
			"world_id": worldID,
			"ticks":    3,
		})
		if status != http.StatusOK {
			t.Fatalf("advance status=%d body=%s", status, string(advanceBody))
		}
		var adv map[string]any
		if err := json.Unmarshal(advanceBody, &adv); err != nil {
			t.Fatalf("unmarshal advance: %v body=%s", err, string(advanceBody))
		}
		if adv["tick"] == nil {
			t.Fatalf("expected tick in advance response, got=%v", adv)
		}

		status, observeBody := mustJSON(t, client, http.MethodPost, baseURL+"/api/agent/observe", map[string]any{
			"world_id": worldID,
			"agent_id": targetID,
		})
		if status != http.StatusOK {
			t.Fatalf("observe status=%d body=%s", status, string(observeBody))
		}
		var obs map[string]any
		if err := json.Unmarshal(observeBody, &obs); err != nil {
			t.Fatalf("unmarshal observe: %v body=%s", err, string(observeBody))
		}
		if len(asSlice(obs["fragments"])) == 0 {
			t.Fatalf("expected fragments in observe response, got=%v", obs)
		}
		for _, f := range asSlice(obs["fragments"]) {
			s, _ := f.(string)
			if strings.ContainsAny(s, "0123456789") {
				t.Fatalf("fragment leaks numbers: %q", s)
			}
		}

		idempotencyKey := "remote-e2e-" + time.Now().UTC().Format("20060102150405")
		actionReq := map[string]any{
			"world_id":        worldID,
			"actor_id":        actorID,
			"target_id":       targetID,
			"idempotency_key": idempotencyKey,
			"text":            "we need to talk about what happened last night",
			"magnitude":       0.9,
			"valence":         -0.5,
			"conflict":        0.6,
		}
		status, firstActionBody := mustJSON(t, client, http.MethodPost, baseURL+"/api/world/action", actionReq)
		if status != http.StatusOK {
			t.Fatalf("first action status=%d body=%s", status, string(firstActionBody))
		}
		var first map[string]any
		if err := json.Unmarshal(firstActionBody, &first); err != nil {
			t.Fatalf("unmarshal first action: %v body=%s", err, string(firstActionBody))
		}

		status, secondActionBody := mustJSON(t, client, http.MethodPost, baseURL+"/api/world/action", actionReq)
		if status != http.StatusOK {
			t.Fatalf("second action status=%d body=%s", status, string(secondActionBody))
		}
		var second map[string]any
		if err := json.Unmarshal(secondActionBody, &second); err != nil {
			t.Fatalf("unmarshal second action: %v body=%s", err, string(secondActionBody))
		}
		if first["tick"] != second["tick"] || first["narration"] != second["narration"] {
			t.Fatalf("idempotency mismatch: first=%v second=%v", first, second)
		}
		if replayed, _ := second["replayed"].(bool); !replayed {
			t.Fatalf("expected second action to be replayed, got=%v", second)
		}

		replayURL := baseURL + "/api/world/replay?world_id=" + worldID + "&limit=50"
		status, replayBody, err := doRequest(client, http.MethodGet, replayURL, nil)
		if err != nil {
			t.Fatalf("replay request: %v", err)
		}
		if status != http.StatusOK {
			t.Fatalf("replay status=%d body=%s", status, string(replayBody))
		}
		var rep map[string]any
		if err := json.Unmarshal(replayBody, &rep); err != nil {
			t.Fatalf("unmarshal replay: %v body=%s", err, string(replayBody))
		}
		if len(asSlice(rep["events"])) == 0 {
			t.Fatalf("expected replay events in response")
		}

		status, kpiBody, err := doRequest(client, http.MethodGet, baseURL+"/ops/kpi", nil)
		if err != nil {
			t.Fatalf("kpi request: %v", err)
		}
		if status != http.StatusOK {
			t.Fatalf("kpi status=%d body=%s", status, string(kpiBody))
		}
		var kpi map[string]any
		if err := json.Unmarshal(kpiBody, &kpi); err != nil {
			t.Fatalf("unmarshal kpi: %v body=%s", err, string(kpiBody))
		}
		if _, ok := kpi["cycle_total"]; !ok {
			t.Fatalf("expected cycle_total in kpi response")
		}
	})

	t.Run("acting on the protected participant fails loudly", func(t *testing.T) {
		status, body := mustJSON(t, client, http.MethodPost, baseURL+"/api/world/action", map[string]any{
			"world_id":        worldID,
			"actor_id":        targetID,
			"target_id":       actorID,
			"idempotency_key": "remote-e2e-guard-" + time.Now().UTC().Format("20060102150405"),
			"text":            "hello",
		})
		if status != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d body=%s", status, string(body))
		}
		var resp map[string]any
		if err := json.Unmarshal(body, &resp); err != nil {
			t.Fatalf("unmarshal guard response: %v body=%s", err, string(body))
		}
		if code, _ := asMap(resp["error"])["code"].(string); code != "protected_participant" {
			t.Fatalf("expected protected_participant, got=%v", resp)
		}
	})
}

func mustJSON(t *testing.T, client *http.Client, method, url string, body map[string]any) (int, []byte) {
	t.Helper()
	status, respBody, err := doRequest(client, method, url, body)
	if err != nil {
		t.Fatalf("%s %s request failed: %v", method, url, err)
	}
	return status, respBody
}

func doRequest(client *http.Client, method, url string, body map[string]any) (int, []byte, error) {
	var payloadBytes []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		payloadBytes = b
	}

	var lastStatus int
	var lastBody []byte
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		var payload io.Reader
		if len(payloadBytes) > 0 {
			payload = bytes.NewReader(payloadBytes)
		}
		req, err := http.NewRequest(method, url, payload)
		if err != nil {
			return 0, nil, err
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			time.Sleep(time.Duration(attempt+1) * 200 * time.Millisecond)
			continue
		}
		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			time.Sleep(time.Duration(attempt+1) * 200 * time.Millisecond)
			continue
		}
		lastStatus, lastBody, lastErr = resp.StatusCode, respBody, nil
		return resp.StatusCode, respBody, nil
	}
	if lastErr != nil {
		return 0, nil, lastErr
	}
	return lastStatus, lastBody, nil
}

func envOr(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}
