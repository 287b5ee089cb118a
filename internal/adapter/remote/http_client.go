package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rl1809/sweet-shop/internal/core/domain"
	"github.com/rl1809/sweet-shop/internal/port"
)

const defaultTimeout = 10 * time.Second

// HTTPClient speaks the REST inventory API.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

var _ port.InventoryService = (*HTTPClient)(nil)

// NewHTTPClient returns a client for baseURL. A nil httpClient gets a
// default with a 10s timeout.
func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &HTTPClient{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	Email       string `json:"email"`
	IsAdmin     bool   `json:"is_admin"`
}

type stockResponse struct {
	ID       domain.ItemID `json:"id"`
	Quantity int           `json:"quantity"`
}

type errorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (domain.Session, error) {
	var resp loginResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", "", credentials{email, password}, &resp)
	if err != nil {
		return domain.Session{}, err
	}
	return domain.Session{Token: resp.AccessToken, Email: resp.Email, IsAdmin: resp.IsAdmin}, nil
}

func (c *HTTPClient) Register(ctx context.Context, email, password string) (int64, error) {
	var resp struct {
		ID int64 `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", "", credentials{email, password}, &resp); err != nil {
		return 0, err
	}
	return resp.ID, nil
}

func (c *HTTPClient) ListItems(ctx context.Context, token string) ([]domain.Item, error) {
	var items []domain.Item
	if err := c.do(ctx, http.MethodGet, "/api/sweets", token, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *HTTPClient) SearchItems(ctx context.Context, token string, filter domain.Filter) ([]domain.Item, error) {
	params := url.Values{}
	if filter.Name != nil {
		params.Set("name", *filter.Name)
	}
	if filter.Category != nil {
		params.Set("category", string(*filter.Category))
	}
	if filter.MinPrice != nil {
		params.Set("min_price", strconv.FormatFloat(*filter.MinPrice, 'f', -1, 64))
	}
	if filter.MaxPrice != nil {
		params.Set("max_price", strconv.FormatFloat(*filter.MaxPrice, 'f', -1, 64))
	}

	var items []domain.Item
	if err := c.do(ctx, http.MethodGet, "/api/sweets/search?"+params.Encode(), token, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *HTTPClient) CreateItem(ctx context.Context, token string, fields domain.ItemFields) (*domain.Item, error) {
	var item domain.Item
	if err := c.do(ctx, http.MethodPost, "/api/sweets", token, fields, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *HTTPClient) UpdateItem(ctx context.Context, token string, id domain.ItemID, fields domain.ItemFields) (*domain.Item, error) {
	var item domain.Item
	if err := c.do(ctx, http.MethodPut, itemPath(id, ""), token, fields, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *HTTPClient) DeleteItem(ctx context.Context, token string, id domain.ItemID) error {
	return c.do(ctx, http.MethodDelete, itemPath(id, ""), token, nil, nil)
}

func (c *HTTPClient) PurchaseItem(ctx context.Context, token string, id domain.ItemID) (int, error) {
	var resp stockResponse
	if err := c.do(ctx, http.MethodPost, itemPath(id, "/purchase"), token, nil, &resp); err != nil {
		return 0, err
	}
	return resp.Quantity, nil
}

func (c *HTTPClient) RestockItem(ctx context.Context, token string, id domain.ItemID, amount int) (int, error) {
	var resp stockResponse
	body := struct {
		Amount int `json:"amount"`
	}{amount}
	if err := c.do(ctx, http.MethodPost, itemPath(id, "/restock"), token, body, &resp); err != nil {
		return 0, err
	}
	return resp.Quantity, nil
}

func itemPath(id domain.ItemID, suffix string) string {
	return "/api/sweets/" + strconv.FormatInt(int64(id), 10) + suffix
}

func (c *HTTPClient) do(ctx context.Context, method, path, token string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp, token != "")
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeError maps an error response onto a domain sentinel. A 401 on an
// authenticated call is always the session signal, whatever the body says.
func decodeError(resp *http.Response, authenticated bool) error {
	var body errorResponse
	json.NewDecoder(resp.Body).Decode(&body)
	if body.Detail == "" {
		body.Detail = resp.Status
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if authenticated {
			return fmt.Errorf("%w: %s", domain.ErrUnauthorized, body.Detail)
		}
		return fmt.Errorf("%w: %s", domain.ErrInvalidCredentials, body.Detail)
	}
	if sentinel := domain.ErrorFromCode(body.Code); sentinel != nil {
		return fmt.Errorf("%w: %s", sentinel, body.Detail)
	}

	switch resp.StatusCode {
	case http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrForbidden, body.Detail)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, body.Detail)
	case http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, body.Detail)
	}
	return fmt.Errorf("inventory service: %s", body.Detail)
}
