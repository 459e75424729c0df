// Package heartbeat es el cliente de heartbeats que corre en cada Silo.
//
// El primer reporte sale al arrancar; después uno por intervalo. Un intento
// fallido se loguea y no adelanta ni reinicia el schedule. Si un tick llega
// con un intento todavía en vuelo, se saltea.
package heartbeat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/dropDatabas3/fleethub/internal/domain/repository"
	"github.com/dropDatabas3/fleethub/internal/observability/logger"
)

const (
	DefaultInterval   = 60 * time.Second
	maxAttemptTimeout = 10 * time.Second
)

var (
	// ErrMissingTenantID: sin tenant el Silo no puede arrancar.
	ErrMissingTenantID = errors.New("heartbeat: tenant id is required")
	// ErrUnavailable envuelve errores de red hacia el Hub.
	ErrUnavailable = errors.New("heartbeat: hub unavailable")
)

// HubError es una respuesta no-2xx del Hub.
type HubError struct {
	Status  int
	Code    string
	Message string
}

func (e *HubError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("heartbeat: hub responded %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("heartbeat: hub responded %d", e.Status)
}

type Config struct {
	HubURL   string
	TenantID string
	Interval time.Duration // 0 = 60s
	Timeout  time.Duration // 0 = min(10s, interval/2); >= interval se recorta a interval/2

	HTTPClient *http.Client
	Collector  Collector
	Logger     *zap.Logger
}

// Status es lo que expone el endpoint local del Silo.
type Status struct {
	TenantID          string     `json:"tenantId"`
	HubURL            string     `json:"hubUrl"`
	Interval          string     `json:"interval"`
	LastAttempt       *time.Time `json:"lastAttempt,omitempty"`
	LastSuccess       *time.Time `json:"lastSuccess,omitempty"`
	LastError         string     `json:"lastError,omitempty"`
	SubscribedModules []string   `json:"subscribedModules"`
	Sent              uint64     `json:"sent"`
	Failed            uint64     `json:"failed"`
	Skipped           uint64     `json:"skipped"`
}

type Client struct {
	endpoint string
	tenantID string
	interval time.Duration
	timeout  time.Duration
	http     *http.Client
	coll     Collector
	log      *zap.Logger

	inFlight atomic.Bool
	wg       sync.WaitGroup

	mu     sync.Mutex
	status Status
}

// New valida la configuración. Sin TenantID devuelve ErrMissingTenantID.
func New(cfg Config) (*Client, error) {
	tenantID := strings.TrimSpace(cfg.TenantID)
	if tenantID == "" {
		return nil, ErrMissingTenantID
	}
	hub := strings.TrimRight(strings.TrimSpace(cfg.HubURL), "/")
	if hub == "" {
		return nil, errors.New("heartbeat: hub url is required")
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	c := &Client{
		endpoint: hub + "/heartbeat",
		tenantID: tenantID,
		interval: interval,
		timeout:  attemptTimeout(interval, cfg.Timeout),
		http:     cfg.HTTPClient,
		coll:     cfg.Collector,
		log:      cfg.Logger,
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.coll == nil {
		c.coll = NewSystemCollector("", "dev")
	}
	if c.log == nil {
		c.log = logger.L()
	}
	c.log = c.log.With(logger.Component("heartbeat"), logger.TenantID(tenantID))
	c.status = Status{TenantID: tenantID, HubURL: hub, Interval: interval.String(), SubscribedModules: []string{}}
	return c, nil
}

// attemptTimeout siempre es menor que el intervalo.
func attemptTimeout(interval, configured time.Duration) time.Duration {
	if configured <= 0 {
		configured = interval / 2
		if configured > maxAttemptTimeout {
			configured = maxAttemptTimeout
		}
	}
	if configured >= interval {
		configured = interval / 2
	}
	return configured
}

func (c *Client) Timeout() time.Duration { return c.timeout }

// Run envía el primer heartbeat inmediatamente y luego uno por tick hasta que
// ctx se cancela. Espera al intento en vuelo antes de volver.
func (c *Client) Run(ctx context.Context) error {
	c.log.Info("heartbeat client started", logger.HubURL(c.endpoint), logger.Interval(c.interval))

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.tick(ctx)
	for {
		select {
		case <-ticker.C:
			c.tick(ctx)
		case <-ctx.Done():
			c.wg.Wait()
			c.log.Info("heartbeat client stopped")
			return nil
		}
	}
}

// tick lanza un intento salvo que haya otro en vuelo. Devuelve false si se salteó.
func (c *Client) tick(ctx context.Context) bool {
	if !c.inFlight.CompareAndSwap(false, true) {
		c.mu.Lock()
		c.status.Skipped++
		c.mu.Unlock()
		c.log.Debug("heartbeat skipped, previous attempt still in flight")
		return false
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer c.inFlight.Store(false)
		if _, err := c.Send(ctx); err != nil {
			c.log.Warn("heartbeat failed", logger.Err(err))
		}
	}()
	return true
}

type heartbeatRequest struct {
	TenantID string                      `json:"tenantId"`
	Metrics  repository.HeartbeatMetrics `json:"metrics"`
}

type hubResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    struct {
		SubscribedModules []string `json:"subscribedModules"`
	} `json:"data"`
}

// Send hace un único intento con timeout acotado y devuelve los módulos suscriptos.
func (c *Client) Send(ctx context.Context) ([]string, error) {
	started := time.Now().UTC()
	mods, err := c.send(ctx)

	c.mu.Lock()
	c.status.LastAttempt = &started
	if err != nil {
		c.status.Failed++
		c.status.LastError = err.Error()
	} else {
		c.status.Sent++
		c.status.LastError = ""
		c.status.LastSuccess = &started
		c.status.SubscribedModules = mods
	}
	c.mu.Unlock()

	if err == nil {
		c.log.Debug("heartbeat sent", logger.Modules(mods))
	}
	return mods, err
}

func (c *Client) send(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	m, err := c.coll.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("heartbeat: collect metrics: %w", err)
	}
	body, err := json.Marshal(heartbeatRequest{TenantID: c.tenantID, Metrics: m})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	var hr hubResponse
	_ = json.Unmarshal(raw, &hr)
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &HubError{Status: res.StatusCode, Code: hr.Code, Message: hr.Message}
	}

	mods := hr.Data.SubscribedModules
	if mods == nil {
		mods = []string{}
	}
	return mods, nil
}

// Status devuelve una copia del último estado conocido.
func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.status
	s.SubscribedModules = append([]string{}, c.status.SubscribedModules...)
	return s
}
