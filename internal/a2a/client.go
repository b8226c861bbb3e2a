package a2a

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/netguard/fabric/internal/config"
	"github.com/netguard/fabric/internal/ferrors"
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRetryConfig overrides the retry policy applied to transport errors.
func WithRetryConfig(cfg Config) Option {
	return func(c *Client) { c.retry = cfg }
}

// WithHealthMap attaches a shared CollaboratorHealth tracker: every
// successful SendTask records the collaborator as healthy, and a
// collaborator known unhealthy is failed fast instead of dispatched to and
// timed out.
func WithHealthMap(health *CollaboratorHealth) Option {
	return func(c *Client) { c.health = health }
}

// Client resolves collaborating agents via a static registry, delivers
// tasks with retry on transport errors, and caches each agent's capability
// card for the client's lifetime.
type Client struct {
	registry config.Registry
	http     *http.Client
	retry    Config
	health   *CollaboratorHealth

	cardsMu sync.RWMutex
	cards   map[string]*AgentCard
}

// NewClient constructs a Client bound to the given static registry.
func NewClient(registry config.Registry, opts ...Option) *Client {
	c := &Client{
		registry: registry,
		http:     &http.Client{Timeout: 60 * time.Second},
		retry:    DefaultConfig(),
		cards:    make(map[string]*AgentCard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SendTask delivers req to the named agent via POST /a2a/tasks, retrying
// transport errors (not downstream task failures) with exponential
// backoff, and returns the agent's task response. A completed-but-failed
// response is returned without error so the caller can inspect
// resp.Status/resp.Error per the error taxonomy.
func (c *Client) SendTask(ctx context.Context, agent string, req TaskRequest) (*TaskResponse, error) {
	if c.health != nil && !c.health.IsHealthy(agent) {
		return nil, &ferrors.TransportError{Agent: agent, Err: fmt.Errorf("collaborator %q failed a recent health check", agent)}
	}

	baseURL, err := c.registry.Resolve(agent)
	if err != nil {
		return nil, err
	}

	var resp *TaskResponse
	err = Do(ctx, c.retry, func(ctx context.Context) error {
		r, postErr := c.postTask(ctx, baseURL+"/a2a/tasks", req)
		if postErr != nil {
			return postErr
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, &ferrors.TransportError{Agent: agent, Err: err}
	}
	if c.health != nil {
		_ = c.health.RecordHealthy(ctx, agent)
	}
	return resp, nil
}

// SendTaskAsync delivers req to the named agent via POST /a2a/tasks/async
// and returns immediately with the accepted acknowledgement.
func (c *Client) SendTaskAsync(ctx context.Context, agent string, req TaskRequest) (*AsyncAccepted, error) {
	baseURL, err := c.registry.Resolve(agent)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/a2a/tasks/async", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &ferrors.TransportError{Agent: agent, Err: err}
	}
	defer httpResp.Body.Close()

	var accepted AsyncAccepted
	if err := json.NewDecoder(httpResp.Body).Decode(&accepted); err != nil {
		return nil, err
	}
	return &accepted, nil
}

// AgentCard returns the named agent's capability card, fetching and caching
// it on first use. The card is cached for the client's lifetime: agent
// capabilities do not change within a process's run.
func (c *Client) AgentCard(ctx context.Context, agent string) (*AgentCard, error) {
	c.cardsMu.RLock()
	card, ok := c.cards[agent]
	c.cardsMu.RUnlock()
	if ok {
		return card, nil
	}

	baseURL, err := c.registry.Resolve(agent)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/.well-known/agent.json", nil)
	if err != nil {
		return nil, err
	}
	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &ferrors.TransportError{Agent: agent, Err: err}
	}
	defer httpResp.Body.Close()

	var fetched AgentCard
	if err := json.NewDecoder(httpResp.Body).Decode(&fetched); err != nil {
		return nil, err
	}

	c.cardsMu.Lock()
	c.cards[agent] = &fetched
	c.cardsMu.Unlock()
	return &fetched, nil
}

func (c *Client) postTask(ctx context.Context, url string, req TaskRequest) (*TaskResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	switch httpResp.StatusCode {
	case http.StatusOK:
		var resp TaskResponse
		if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
			return nil, err
		}
		return &resp, nil
	case http.StatusServiceUnavailable, http.StatusTooManyRequests, http.StatusBadGateway, http.StatusGatewayTimeout:
		b, _ := io.ReadAll(httpResp.Body)
		return nil, &HTTPStatusError{StatusCode: httpResp.StatusCode, Message: string(b)}
	case http.StatusInternalServerError:
		b, _ := io.ReadAll(httpResp.Body)
		var resp TaskResponse
		if json.Unmarshal(b, &resp) == nil && resp.Status == TaskFailed {
			return &resp, nil
		}
		return nil, fmt.Errorf("a2a task post failed with status %d: %s", httpResp.StatusCode, string(b))
	default:
		b, _ := io.ReadAll(httpResp.Body)
		return nil, fmt.Errorf("a2a task post failed with status %d: %s", httpResp.StatusCode, string(b))
	}
}
