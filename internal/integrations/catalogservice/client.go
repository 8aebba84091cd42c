package catalogservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client клиент для работы с каталогом продуктов дилеров
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента каталога
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// GetProduct получает продукт дилера
func (c *Client) GetProduct(ctx context.Context, dealerID, productID int64) (*Product, error) {
	url := fmt.Sprintf("%s/internal/dealers/%d/products/%d", c.baseURL, dealerID, productID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrProductNotFound
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	var product Product
	if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return &product, nil
}

// GetProductWithGracefulDegradation получает продукт дилера.
// При недоступности каталога возвращает ErrServiceDegraded, и бронирование продолжается без проверки.
func (c *Client) GetProductWithGracefulDegradation(ctx context.Context, dealerID, productID int64) (*Product, error) {
	product, err := c.GetProduct(ctx, dealerID, productID)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			c.log.Info("Product id=%d not found at dealer id=%d", productID, dealerID)
			return nil, err
		}

		c.log.Error("CatalogService unavailable, applying graceful degradation for dealer=%d product=%d: %v", dealerID, productID, err)
		return nil, fmt.Errorf("%w: dealer=%d, product=%d, error=%v", ErrServiceDegraded, dealerID, productID, err)
	}

	return product, nil
}
