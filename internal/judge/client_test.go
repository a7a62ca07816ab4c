package judge

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"algoforge/internal/common"
	"algoforge/internal/platform/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(judgeURL string) *Client {
	return NewClient(&config.Config{
		JudgeURL:          judgeURL,
		JudgeAPIKey:       "test-key",
		JudgeAPIHost:      "judge.test",
		JudgePollInterval: 5 * time.Millisecond,
		JudgeMaxWait:      250 * time.Millisecond,
	})
}

func b64(s string) *string {
	enc := base64.StdEncoding.EncodeToString([]byte(s))
	return &enc
}

func strptr(s string) *string { return &s }
func intptr(i int) *int       { return &i }

func TestSubmitBatch(t *testing.T) {
	var gotBody batchRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/submissions/batch", r.URL.Path)
		assert.Equal(t, "false", r.URL.Query().Get("base64_encoded"))
		assert.Equal(t, "test-key", r.Header.Get("x-rapidapi-key"))
		assert.Equal(t, "judge.test", r.Header.Get("x-rapidapi-host"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode([]tokenEnvelope{{Token: "tok-a"}, {Token: "tok-b"}})
	}))
	defer srv.Close()

	items := []BatchItem{
		{SourceCode: "code", LanguageID: 54, Stdin: "1 2", ExpectedOutput: "3"},
		{SourceCode: "code", LanguageID: 54, Stdin: "5 7", ExpectedOutput: "12"},
	}
	tokens, err := testClient(srv.URL).SubmitBatch(context.Background(), items)
	require.NoError(t, err)
	assert.Equal(t, []string{"tok-a", "tok-b"}, tokens)
	assert.Equal(t, items, gotBody.Submissions)
}

func TestSubmitBatchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).SubmitBatch(context.Background(), []BatchItem{{LanguageID: 54}})
	assert.ErrorIs(t, err, common.ErrJudgeUnavailable)
}

func TestSubmitBatchTokenCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]tokenEnvelope{{Token: "only-one"}})
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).SubmitBatch(context.Background(), []BatchItem{{LanguageID: 54}, {LanguageID: 54}})
	assert.ErrorIs(t, err, common.ErrJudgeUnavailable)
}

func TestPollBatchWaitsForTerminalAndRestoresOrder(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tok-a,tok-b", r.URL.Query().Get("tokens"))
		assert.Equal(t, "true", r.URL.Query().Get("base64_encoded"))

		calls++
		if calls == 1 {
			// First poll: one case still running.
			json.NewEncoder(w).Encode(batchStatusResponse{Submissions: []wireResult{
				{Token: "tok-a", StatusID: StatusAccepted, Time: strptr("0.01"), Memory: intptr(200)},
				{Token: "tok-b", StatusID: StatusProcessing},
			}})
			return
		}
		// Terminal, deliberately echoed out of request order.
		json.NewEncoder(w).Encode(batchStatusResponse{Submissions: []wireResult{
			{Token: "tok-b", StatusID: StatusWrongAnswer, Stderr: b64("bad output")},
			{Token: "tok-a", StatusID: StatusAccepted, Time: strptr("0.01"), Memory: intptr(200), Stdout: b64("3\n")},
		}})
	}))
	defer srv.Close()

	results, err := testClient(srv.URL).PollBatch(context.Background(), []string{"tok-a", "tok-b"})
	require.NoError(t, err)
	require.GreaterOrEqual(t, calls, 2)
	require.Len(t, results, 2)

	assert.Equal(t, "tok-a", results[0].Token)
	assert.Equal(t, StatusAccepted, results[0].StatusID)
	assert.Equal(t, 0.01, results[0].Time)
	assert.Equal(t, 200, results[0].Memory)
	assert.Equal(t, "3\n", results[0].Stdout)

	assert.Equal(t, "tok-b", results[1].Token)
	assert.Equal(t, StatusWrongAnswer, results[1].StatusID)
	assert.Equal(t, "bad output", results[1].Stderr)
}

func TestPollBatchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(batchStatusResponse{Submissions: []wireResult{
			{Token: "tok-a", StatusID: StatusInQueue},
		}})
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.maxWait = 20 * time.Millisecond

	_, err := c.PollBatch(context.Background(), []string{"tok-a"})
	assert.ErrorIs(t, err, common.ErrJudgeTimeout)
}

func TestPollBatchContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(batchStatusResponse{Submissions: []wireResult{
			{Token: "tok-a", StatusID: StatusProcessing},
		}})
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	// Park the client in its between-polls sleep, then cancel.
	c.pollInterval = time.Minute
	c.maxWait = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	_, err := c.PollBatch(ctx, []string{"tok-a"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPollBatchMissingToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(batchStatusResponse{Submissions: []wireResult{
			{Token: "tok-other", StatusID: StatusAccepted},
		}})
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).PollBatch(context.Background(), []string{"tok-a"})
	assert.ErrorIs(t, err, common.ErrJudgeUnavailable)
}

func TestWireResultDecode(t *testing.T) {
	// Judge0 wraps long payloads with embedded newlines.
	wrapped := "aGVsbG8g\nd29ybGQ=\n"
	w := wireResult{
		Token:    "tok",
		StatusID: StatusAccepted,
		Time:     strptr("0.042"),
		Memory:   intptr(1024),
		Stdout:   &wrapped,
		Stderr:   nil,
	}

	r := w.decode()
	assert.Equal(t, "hello world", r.Stdout)
	assert.Equal(t, "", r.Stderr)
	assert.Equal(t, 0.042, r.Time)
	assert.Equal(t, 1024, r.Memory)
}

func TestDecodeBase64FieldFallsBackToRawText(t *testing.T) {
	raw := "not base64 at all!!!"
	assert.Equal(t, raw, decodeBase64Field(&raw))
}
