package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/shopcart/internal/domain"
	"github.com/nikolayk812/shopcart/internal/port"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const requestIDHeader = "X-Request-ID"

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Path string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.Path, e.Code)
}

type client struct {
	baseURL *url.URL
	http    *http.Client
}

type Option func(*client)

// WithHTTPClient replaces the default instrumented client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *client) {
		cl.http = c
	}
}

// WithTimeout bounds every lookup. Zero keeps whatever the transport does natively.
func WithTimeout(d time.Duration) Option {
	return func(cl *client) {
		cl.http.Timeout = d
	}
}

func New(baseURL string, opts ...Option) (port.InventoryClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("baseURL is empty")
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("url.Parse: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("baseURL[%s] is not absolute", baseURL)
	}

	c := &client{
		baseURL: u,
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *client) GetStock(ctx context.Context, productID int64) (domain.Stock, error) {
	var stock domain.Stock

	if err := c.get(ctx, "stock", productID, &stock); err != nil {
		return domain.Stock{}, err
	}
	if stock.Amount < 0 {
		return domain.Stock{}, fmt.Errorf("stock[%d] has negative amount %d", productID, stock.Amount)
	}

	return stock, nil
}

func (c *client) GetProduct(ctx context.Context, productID int64) (domain.Product, error) {
	var product domain.Product

	if err := c.get(ctx, "products", productID, &product); err != nil {
		return domain.Product{}, err
	}
	if product.ID != productID {
		return domain.Product{}, fmt.Errorf("product[%d] resolved to id %d", productID, product.ID)
	}

	return product, nil
}

func (c *client) get(ctx context.Context, resource string, id int64, dst any) error {
	u := c.baseURL.JoinPath(resource, strconv.FormatInt(id, 10))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("http.NewRequestWithContext: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("http.Do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Path: u.Path, Code: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("json.Decode[%s]: %w", u.Path, err)
	}

	return nil
}
