// Package divera fetches the current member statuses from the Divera 24/7 API.
package divera

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"statustracker/pkg/attendance"
	"statustracker/pkg/config"
	"statustracker/pkg/logger"

	"github.com/tidwall/pretty"
)

const (
	defaultBaseURL = "https://app.divera247.com"
	pullAllPath    = "/api/v2/pull/all"

	// statusMonitorGroup is the monitor group holding member statuses
	statusMonitorGroup = "1"

	// maxBodyExcerpt bounds the response text quoted in errors
	maxBodyExcerpt = 200
)

var (
	// ErrUpstreamFetch wraps every failure to obtain statuses from Divera.
	ErrUpstreamFetch = errors.New("status source request failed")
	// ErrUnknownStatus means a member carries a status id missing from the cluster.
	ErrUnknownStatus = fmt.Errorf("%w: unknown status id", ErrUpstreamFetch)
)

// Classifier collapses an upstream status name into a binary state.
type Classifier func(statusName string) attendance.State

// LabelClassifier counts exactly offDutyLabel as off duty and every other
// status as on duty.
func LabelClassifier(offDutyLabel string) Classifier {
	return func(statusName string) attendance.State {
		if statusName == offDutyLabel {
			return attendance.StateOffDuty
		}
		return attendance.StateOnDuty
	}
}

// Client is the Divera API client
type Client struct {
	accessKey  string
	baseURL    string
	classify   Classifier
	httpClient *http.Client
}

// NewClient creates a new Divera API client
func NewClient(cfg *config.DiveraConfig, classify Classifier) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if classify == nil {
		classify = LabelClassifier(cfg.OffDutyLabel)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		accessKey: cfg.AccessKey,
		baseURL:   baseURL,
		classify:  classify,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchStatuses returns the classified status of every member that has one,
// ordered by person key.
func (c *Client) FetchStatuses(ctx context.Context) ([]attendance.Observation, error) {
	resp, err := c.pullAll(ctx)
	if err != nil {
		return nil, err
	}
	return c.observations(ctx, resp)
}

func (c *Client) observations(ctx context.Context, resp *PullAllResponse) ([]attendance.Observation, error) {
	monitor := resp.Data.Monitor[statusMonitorGroup]

	ids := make([]string, 0, len(monitor))
	for id := range monitor {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	seen := make(map[string]bool, len(ids))
	observations := make([]attendance.Observation, 0, len(ids))
	for _, id := range ids {
		consumer, ok := resp.Data.Cluster.Consumer[id]
		if !ok {
			logger.DebugCtx(ctx, "skipping status of unknown consumer %s", id)
			continue
		}

		entry := monitor[id]
		status, ok := resp.Data.Cluster.Status[strconv.Itoa(entry.Status)]
		if !ok {
			return nil, fmt.Errorf("%w %d for consumer %s", ErrUnknownStatus, entry.Status, id)
		}

		person := PersonKey(consumer)
		if person == "" {
			logger.WarnCtx(ctx, "consumer %s has no name, skipping", id)
			continue
		}
		if seen[person] {
			logger.WarnCtx(ctx, "duplicate member name %q (consumer %s), keeping the first", person, id)
			continue
		}
		seen[person] = true

		observations = append(observations, attendance.Observation{
			Person: person,
			State:  c.classify(status.Name),
		})
	}

	sort.SliceStable(observations, func(i, j int) bool {
		return observations[i].Person < observations[j].Person
	})
	return observations, nil
}

// PersonKey is the stable identity of a member, "firstname lastname".
func PersonKey(c Consumer) string {
	return strings.TrimSpace(strings.TrimSpace(c.Firstname) + " " + strings.TrimSpace(c.Lastname))
}

func (c *Client) pullAll(ctx context.Context) (*PullAllResponse, error) {
	endpoint := c.baseURL + pullAllPath + "?accesskey=" + url.QueryEscape(c.accessKey)

	respData, err := c.doRequest(ctx, http.MethodGet, endpoint)
	if err != nil {
		return nil, err
	}

	var resp PullAllResponse
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse pull/all response: %v (body: %s)", ErrUpstreamFetch, err, c.bodyExcerpt(respData))
	}
	if !resp.Success {
		return nil, fmt.Errorf("%w: divera reported failure: %s", ErrUpstreamFetch, resp.Message)
	}

	return &resp, nil
}

// doRequest performs an HTTP request and returns the body of a 2xx response
func (c *Client) doRequest(ctx context.Context, method, endpoint string) ([]byte, error) {
	logger.DebugCtx(ctx, "Divera API Request: %s %s%s", method, c.baseURL, pullAllPath)

	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create HTTP request: %v", ErrUpstreamFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// the error text carries the URL, which carries the access key
		return nil, fmt.Errorf("%w: failed to execute HTTP request: %v", ErrUpstreamFetch, redact(err, c.accessKey))
	}
	defer resp.Body.Close()

	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %v", ErrUpstreamFetch, err)
	}

	logger.DebugCtx(ctx, "Divera API Response: Status %d, Body: %s", resp.StatusCode, string(pretty.Ugly(respData)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp ErrorResponse
		if err := json.Unmarshal(respData, &errResp); err == nil && errResp.Message != "" {
			return nil, fmt.Errorf("%w: divera API error (status %d): %s", ErrUpstreamFetch, resp.StatusCode, errResp.Message)
		}
		if excerpt := c.bodyExcerpt(respData); excerpt != "" {
			return nil, fmt.Errorf("%w: divera API error (status %d): %s", ErrUpstreamFetch, resp.StatusCode, excerpt)
		}
		return nil, fmt.Errorf("%w: divera API error (status %d)", ErrUpstreamFetch, resp.StatusCode)
	}

	return respData, nil
}

// bodyExcerpt returns a single-line, bounded rendering of a response body for
// error messages. JSON is compacted, anything else has its whitespace folded.
func (c *Client) bodyExcerpt(body []byte) string {
	var text string
	if json.Valid(body) {
		text = string(pretty.Ugly(body))
	} else {
		text = strings.Join(strings.Fields(string(body)), " ")
	}
	if c.accessKey != "" {
		text = strings.ReplaceAll(text, c.accessKey, "***")
	}
	if len(text) > maxBodyExcerpt {
		text = text[:maxBodyExcerpt] + "..."
	}
	return text
}

func redact(err error, secret string) string {
	if secret == "" {
		return err.Error()
	}
	msg := strings.ReplaceAll(err.Error(), url.QueryEscape(secret), "***")
	return strings.ReplaceAll(msg, secret, "***")
}
