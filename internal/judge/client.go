package judge

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"algoforge/internal/common"
	"algoforge/internal/platform/config"

	"github.com/rs/zerolog/log"
)

// Client wraps the external judge's two batch operations: submit N items and
// poll their tokens until every one is terminal.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       string
	apiHost      string
	pollInterval time.Duration
	maxWait      time.Duration
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		baseURL:      strings.TrimRight(cfg.JudgeURL, "/"),
		apiKey:       cfg.JudgeAPIKey,
		apiHost:      cfg.JudgeAPIHost,
		pollInterval: cfg.JudgePollInterval,
		maxWait:      cfg.JudgeMaxWait,
	}
}

func (c *Client) setAuthHeaders(req *http.Request) {
	req.Header.Set("x-rapidapi-key", c.apiKey)
	req.Header.Set("x-rapidapi-host", c.apiHost)
}

// SubmitBatch enqueues the items as one atomic batch and returns one opaque
// token per item, in submission order. Transport errors and non-2xx replies
// surface as ErrJudgeUnavailable.
func (c *Client) SubmitBatch(ctx context.Context, items []BatchItem) ([]string, error) {
	body, err := json.Marshal(batchRequest{Submissions: items})
	if err != nil {
		return nil, fmt.Errorf("judge.SubmitBatch marshal: %w", err)
	}

	u := c.baseURL + "/submissions/batch?base64_encoded=false"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("judge.SubmitBatch request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setAuthHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("judge batch submit failed: %v: %w", err, common.ErrJudgeUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("judge batch submit returned status %d: %w", resp.StatusCode, common.ErrJudgeUnavailable)
	}

	var envelopes []tokenEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelopes); err != nil {
		return nil, fmt.Errorf("judge batch submit decode: %v: %w", err, common.ErrJudgeUnavailable)
	}
	if len(envelopes) != len(items) {
		return nil, fmt.Errorf("judge returned %d tokens for %d items: %w", len(envelopes), len(items), common.ErrJudgeUnavailable)
	}

	tokens := make([]string, len(envelopes))
	for i, e := range envelopes {
		if e.Token == "" {
			return nil, fmt.Errorf("judge returned an empty token at position %d: %w", i, common.ErrJudgeUnavailable)
		}
		tokens[i] = e.Token
	}
	return tokens, nil
}

// PollBatch queries the judge for the tokens' statuses until every one is
// terminal, sleeping the configured interval between attempts. Results are
// returned in token order regardless of the order the judge reports them.
// The wait is bounded: ErrJudgeTimeout once the configured maximum elapses.
func (c *Client) PollBatch(ctx context.Context, tokens []string) ([]Result, error) {
	deadline := time.Now().Add(c.maxWait)

	q := url.Values{}
	q.Set("tokens", strings.Join(tokens, ","))
	q.Set("base64_encoded", "true")
	q.Set("fields", "*")
	u := c.baseURL + "/submissions/batch?" + q.Encode()

	for attempt := 1; ; attempt++ {
		wires, err := c.fetchBatch(ctx, u)
		if err != nil {
			return nil, err
		}

		if allTerminal(wires) {
			return orderByToken(wires, tokens)
		}

		if time.Now().After(deadline) {
			log.Warn().Int("attempts", attempt).Int("tokens", len(tokens)).
				Msg("judge polling exceeded maximum wait")
			return nil, common.ErrJudgeTimeout
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}
}

func (c *Client) fetchBatch(ctx context.Context, u string) ([]wireResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("judge.fetchBatch request: %w", err)
	}
	c.setAuthHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("judge batch status failed: %v: %w", err, common.ErrJudgeUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("judge batch status returned status %d: %w", resp.StatusCode, common.ErrJudgeUnavailable)
	}

	var body batchStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("judge batch status decode: %v: %w", err, common.ErrJudgeUnavailable)
	}
	return body.Submissions, nil
}

func allTerminal(wires []wireResult) bool {
	for _, w := range wires {
		if w.StatusID <= StatusProcessing {
			return false
		}
	}
	return len(wires) > 0
}

// orderByToken re-associates results with the submitted items. The judge is
// not trusted to echo results in request order.
func orderByToken(wires []wireResult, tokens []string) ([]Result, error) {
	byToken := make(map[string]wireResult, len(wires))
	for _, w := range wires {
		byToken[w.Token] = w
	}

	results := make([]Result, len(tokens))
	for i, token := range tokens {
		w, ok := byToken[token]
		if !ok {
			return nil, fmt.Errorf("judge response missing token %s: %w", token, common.ErrJudgeUnavailable)
		}
		results[i] = w.decode()
	}
	return results, nil
}

// decode converts a wire result into its usable form: base64 text fields are
// decoded and the judge's string-typed elapsed time is parsed.
func (w wireResult) decode() Result {
	r := Result{
		Token:         w.Token,
		StatusID:      w.StatusID,
		Stdout:        decodeBase64Field(w.Stdout),
		Stderr:        decodeBase64Field(w.Stderr),
		CompileOutput: decodeBase64Field(w.CompileOutput),
		Message:       decodeBase64Field(w.Message),
	}
	if w.Time != nil {
		if t, err := strconv.ParseFloat(strings.TrimSpace(*w.Time), 64); err == nil {
			r.Time = t
		}
	}
	if w.Memory != nil {
		r.Memory = *w.Memory
	}
	return r
}

func decodeBase64Field(field *string) string {
	if field == nil {
		return ""
	}
	// Judge0 wraps long base64 payloads with newlines.
	compact := strings.NewReplacer("\n", "", "\r", "").Replace(strings.TrimSpace(*field))
	decoded, err := base64.StdEncoding.DecodeString(compact)
	if err != nil {
		// Not every deployment encodes every field; fall back to the raw text.
		return *field
	}
	return string(decoded)
}
