package remote

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/nkiryanov/ministore/internal/apperrors"
	"github.com/nkiryanov/ministore/internal/basket"
	"github.com/nkiryanov/ministore/internal/models"
)

const DefaultTimeout = 5 * time.Second

type errorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type amountRequest struct {
	Amount int `json:"amount"`
}

type productBody struct {
	Number      string          `json:"number,omitempty"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

// Client is one connection to the remote service, obtained from HTTPDialer
// Connections of one dialer share its resty client and so its pool of idle sockets
type Client struct {
	http   *resty.Client
	apiURL string
}

// NewClient creates client of API served at apiURL (e.g. http://localhost:8080/api/v1)
func NewClient(apiURL string, timeout time.Duration) *Client {
	return newClient(newRestyClient(timeout), apiURL)
}

func newClient(rc *resty.Client, apiURL string) *Client {
	return &Client{
		http:   rc,
		apiURL: strings.TrimSuffix(apiURL, "/"),
	}
}

func newRestyClient(timeout time.Duration) *resty.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return resty.New().
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
}

// do sends request and converts failures into domain or communication errors
func (c *Client) do(ctx context.Context, method string, path string, body any, result any, params map[string]string) (*resty.Response, error) {
	apiErr := new(errorResponse)

	req := c.http.R().
		SetContext(ctx).
		SetPathParams(params).
		SetError(apiErr)
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Execute(method, c.apiURL+path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", apperrors.ErrCommunication, method, path, err)
	}

	if !resp.IsError() {
		return resp, nil
	}

	// Error without body we understand means we talk to something else (proxy, crashed server)
	if apiErr.Error == "" {
		return nil, fmt.Errorf("%w: %s %s: unexpected status %d", apperrors.ErrCommunication, method, path, resp.StatusCode())
	}

	if domainErr := apperrors.FromCode(apiErr.Code); domainErr != nil {
		if apiErr.Message == "" || apiErr.Message == domainErr.Error() {
			return nil, domainErr
		}
		return nil, fmt.Errorf("%w: %s", domainErr, apiErr.Message)
	}

	if resp.StatusCode() >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: %s %s: %s", apperrors.ErrCommunication, method, path, apiErr.Message)
	}
	return nil, fmt.Errorf("%w: %s: %s", ErrRejected, apiErr.Error, apiErr.Message)
}

func numParam(number string) map[string]string {
	return map[string]string{"num": number}
}

func orderParam(number int64) map[string]string {
	return map[string]string{"num": fmt.Sprint(number)}
}

func (c *Client) Exists(ctx context.Context, number string) (bool, error) {
	var res struct {
		Exists bool `json:"exists"`
	}
	_, err := c.do(ctx, resty.MethodGet, "/products/{num}/exists", nil, &res, numParam(number))
	return res.Exists, err
}

func (c *Client) GetDetails(ctx context.Context, number string) (models.Product, error) {
	var p models.Product
	_, err := c.do(ctx, resty.MethodGet, "/products/{num}", nil, &p, numParam(number))
	return p, err
}

func (c *Client) GetProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	_, err := c.do(ctx, resty.MethodGet, "/products", nil, &products, nil)
	return products, err
}

func (c *Client) GetImage(ctx context.Context, number string) ([]byte, error) {
	resp, err := c.do(ctx, resty.MethodGet, "/products/{num}/image", nil, nil, numParam(number))
	if err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

func (c *Client) UpdateProductImage(ctx context.Context, number string, path string) error {
	body := map[string]string{"path": path}
	_, err := c.do(ctx, resty.MethodPut, "/products/{num}/image", body, nil, numParam(number))
	return err
}

func (c *Client) BuyStock(ctx context.Context, number string, amount int) (bool, error) {
	var res struct {
		Bought bool `json:"bought"`
	}
	_, err := c.do(ctx, resty.MethodPost, "/products/{num}/buy", amountRequest{amount}, &res, numParam(number))
	return res.Bought, err
}

func (c *Client) AddStock(ctx context.Context, number string, amount int) error {
	_, err := c.do(ctx, resty.MethodPost, "/products/{num}/add", amountRequest{amount}, nil, numParam(number))
	return err
}

func (c *Client) SetStock(ctx context.Context, number string, quantity int) error {
	_, err := c.do(ctx, resty.MethodPut, "/products/{num}/stock", amountRequest{quantity}, nil, numParam(number))
	return err
}

func (c *Client) ModifyStock(ctx context.Context, p models.Product) error {
	body := productBody{Description: p.Description, Price: p.Price, Quantity: p.Quantity}
	_, err := c.do(ctx, resty.MethodPut, "/products/{num}", body, nil, numParam(p.Number))
	return err
}

func (c *Client) AddProduct(ctx context.Context, p models.Product) error {
	_, err := c.do(ctx, resty.MethodPost, "/products", productBody(p), nil, nil)
	return err
}

func (c *Client) DeleteProduct(ctx context.Context, number string) error {
	_, err := c.do(ctx, resty.MethodDelete, "/products/{num}", nil, nil, numParam(number))
	return err
}

func (c *Client) NewProduct(ctx context.Context, description string, price decimal.Decimal, quantity int) (models.Product, error) {
	var p models.Product
	body := productBody{Description: description, Price: price, Quantity: quantity}
	_, err := c.do(ctx, resty.MethodPost, "/products/generated", body, &p, nil)
	return p, err
}

func (c *Client) Submit(ctx context.Context, b *basket.Basket) (int64, error) {
	var res struct {
		Number int64 `json:"number"`
	}
	body := map[string][]models.Product{"items": b.Items()}
	_, err := c.do(ctx, resty.MethodPost, "/orders", body, &res, nil)
	return res.Number, err
}

func (c *Client) NextUnpacked(ctx context.Context) (models.Order, bool, error) {
	var o models.Order
	resp, err := c.do(ctx, resty.MethodGet, "/orders/next", nil, &o, nil)
	if err != nil {
		return models.Order{}, false, err
	}
	if resp.StatusCode() == http.StatusNoContent {
		return models.Order{}, false, nil
	}
	return o, true, nil
}

func (c *Client) MarkPacked(ctx context.Context, number int64) error {
	_, err := c.do(ctx, resty.MethodPost, "/orders/{num}/packed", nil, nil, orderParam(number))
	return err
}

func (c *Client) MarkCollected(ctx context.Context, number int64) error {
	_, err := c.do(ctx, resty.MethodPost, "/orders/{num}/collected", nil, nil, orderParam(number))
	return err
}

func (c *Client) SnapshotByState(ctx context.Context) (map[string][]int64, error) {
	var snapshot map[string][]int64
	_, err := c.do(ctx, resty.MethodGet, "/orders/states", nil, &snapshot, nil)
	return snapshot, err
}

func (c *Client) GetOrder(ctx context.Context, number int64) (models.Order, error) {
	var o models.Order
	_, err := c.do(ctx, resty.MethodGet, "/orders/{num}", nil, &o, orderParam(number))
	return o, err
}
