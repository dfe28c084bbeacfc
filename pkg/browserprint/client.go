package browserprint

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	DefaultBaseURL     = "http://127.0.0.1:9100/"
	DefaultRetries     = 3
	SelectedPrinterKey = "selectedPrinter"

	defaultUserAgent = "zebraprint/1.0"
	requestTimeout   = 10 * time.Second
)

// Bridge endpoints, relative to the base URL.
const (
	endpointAvailable = "available"
	endpointDefault   = "default"
	endpointWrite     = "write"
	endpointRead      = "read"
)

// Storage is a durable string key-value store. Get reports ok=false when the
// key has never been set.
type Storage interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

// Client talks to the printer bridge on behalf of one selected printer.
type Client struct {
	baseURL    *url.URL
	http       *http.Client
	storage    Storage
	profile    Profile
	retries    int
	retryDelay time.Duration
	userAgent  string
	logger     log.FieldLogger

	mu     sync.RWMutex
	device Device

	ioMu sync.Mutex
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithLogger(logger log.FieldLogger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithProfile(p Profile) Option {
	return func(c *Client) {
		c.profile = p
	}
}

// WithRetries sets how many attempts each bridge call gets.
func WithRetries(n int) Option {
	return func(c *Client) {
		c.retries = n
	}
}

// WithRetryDelay pauses between attempts. The default is no pause.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		c.retryDelay = d
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New builds a Client for the bridge at baseURL and restores the previously
// selected printer from storage.
func New(baseURL string, storage Storage, opts ...Option) (*Client, error) {
	if storage == nil {
		return nil, fmt.Errorf("storage is nil")
	}
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: requestTimeout},
		storage:   storage,
		profile:   ZPLProfile,
		retries:   DefaultRetries,
		userAgent: defaultUserAgent,
		logger:    log.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithField("component", "browserprint")
	c.device = c.loadDevice()

	return c, nil
}

func (c *Client) loadDevice() Device {
	var dev Device

	value, ok, err := c.storage.Get(SelectedPrinterKey)
	if err != nil {
		c.logger.Warnf("Failed to read selected printer: %v", err)
		return dev
	}
	if !ok {
		c.logger.Debug("No printer selected yet")
		return dev
	}
	if err := json.Unmarshal([]byte(value), &dev); err != nil {
		c.logger.Warnf("Ignoring unreadable selected printer: %v", err)
		return Device{}
	}

	c.logger.Debugf("Restored selected printer %q", dev.Name)
	return dev
}

// SetPrinter selects dev and persists it. The in-memory selection changes
// even when persisting fails.
func (c *Client) SetPrinter(dev Device) error {
	c.setDevice(dev)
	if err := c.persist(dev); err != nil {
		return err
	}
	c.logger.Infof("Selected printer %q (%s)", dev.Name, dev.UID)
	return nil
}

func (c *Client) setDevice(dev Device) {
	c.mu.Lock()
	c.device = dev
	c.mu.Unlock()
}

func (c *Client) persist(dev Device) error {
	value, err := json.Marshal(dev)
	if err != nil {
		return fmt.Errorf("encode printer: %w", err)
	}
	if err := c.storage.Set(SelectedPrinterKey, string(value)); err != nil {
		return fmt.Errorf("persist printer: %w", err)
	}
	return nil
}

// Printer returns the selected printer.
func (c *Client) Printer() Device {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.device
}

// Profile returns the command set in use.
func (c *Client) Profile() Profile {
	return c.profile
}

// BaseURL returns the normalized bridge address.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse bridge url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse bridge url %q: missing host", raw)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
