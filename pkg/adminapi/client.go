// Package adminapi is the admin panel's client for the shop REST API.
package adminapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"
)

// Client is a minimal HTTP client for the shop admin API.
type Client struct {
	http *resty.Client

	mu    sync.RWMutex
	token string
}

// NewClient constructs a Client for baseURL.
// Only GET requests are retried; uploads and saves are attempted exactly once.
func NewClient(baseURL string) *Client {
	c := resty.
		New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetRetryCount(3).
		SetRetryWaitTime(200 * time.Millisecond).
		SetLogger(nopLogger{}).
		SetTimeout(30 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if r == nil || r.Request == nil || r.Request.Method != http.MethodGet {
				return false
			}
			retry, _ := retryablehttp.DefaultRetryPolicy(r.Request.Context(), r.RawResponse, err)
			return retry
		})
	c.JSONMarshal = json.Marshal
	c.JSONUnmarshal = json.Unmarshal
	return &Client{http: c}
}

type nopLogger struct{}

func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Debugf(string, ...interface{}) {}

// SetToken sets the bearer token sent with every request.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) request(ctx context.Context) *resty.Request {
	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()

	r := c.http.R().SetContext(ctx)
	if token != "" {
		r.SetAuthToken(token)
	}
	return r
}

// Login exchanges admin credentials for a token and stores it on the client.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var env envelope
	var data struct {
		Token string `json:"token"`
	}
	resp, err := c.request(ctx).
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&env).
		SetError(&env).
		Post("/api/admin/auth/login")
	if err := check("login", resp, err, &env, &data); err != nil {
		return "", err
	}
	c.SetToken(data.Token)
	return data.Token, nil
}

// UploadImage sends one image to the upload endpoint. It is never retried.
func (c *Client) UploadImage(ctx context.Context, filename string, data []byte, folder string) (*UploadResult, error) {
	var env envelope
	var result UploadResult
	r := c.request(ctx).
		SetFileReader("file", filename, bytes.NewReader(data)).
		SetResult(&env).
		SetError(&env)
	if folder != "" {
		r.SetFormData(map[string]string{"folder": folder})
	}
	resp, err := r.Post("/api/upload")
	if err := check("upload image", resp, err, &env, &result); err != nil {
		return nil, err
	}
	if result.URL == "" {
		return nil, &ServiceError{Op: "upload image", Status: resp.StatusCode(), Message: "upload failed: no result returned"}
	}
	log.Debug().Str("public_id", result.PublicID).Msg("Image uploaded")
	return &result, nil
}

// CreateProduct issues POST /api/products.
func (c *Client) CreateProduct(ctx context.Context, payload *ProductPayload) (*SaveResult, error) {
	var env envelope
	var result SaveResult
	resp, err := c.request(ctx).
		SetBody(payload).
		SetResult(&env).
		SetError(&env).
		Post("/api/products")
	if err := check("create product", resp, err, &env, &result.Product); err != nil {
		return nil, err
	}
	result.Message = env.Message
	return &result, nil
}

// UpdateProduct issues PUT /api/products/{id}.
func (c *Client) UpdateProduct(ctx context.Context, id int, payload *ProductPayload) (*SaveResult, error) {
	var env envelope
	var result SaveResult
	resp, err := c.request(ctx).
		SetBody(payload).
		SetResult(&env).
		SetError(&env).
		Put("/api/products/" + strconv.Itoa(id))
	if err := check("update product", resp, err, &env, &result.Product); err != nil {
		return nil, err
	}
	result.Message = env.Message
	return &result, nil
}

// ListNewsletter fetches one page of newsletter subscribers.
func (c *Client) ListNewsletter(ctx context.Context, q NewsletterQuery) (*NewsletterPage, error) {
	var env envelope
	page := NewsletterPage{}
	resp, err := c.request(ctx).
		SetQueryParams(map[string]string{
			"page":   strconv.Itoa(q.Page),
			"limit":  strconv.Itoa(q.Limit),
			"search": q.Search,
		}).
		SetResult(&env).
		SetError(&env).
		Get("/api/admin/newsletter")
	if err := check("list newsletter", resp, err, &env, &page.Entries); err != nil {
		return nil, err
	}
	if env.Pagination != nil {
		page.Pagination = *env.Pagination
	}
	return &page, nil
}

// check classifies a finished call and decodes the envelope data into out.
func check(op string, resp *resty.Response, err error, env *envelope, out interface{}) error {
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	if !env.Success {
		msg := env.Message
		if msg == "" && env.Error != nil {
			msg = env.Error.Message
		}
		return &ServiceError{Op: op, Status: resp.StatusCode(), Message: msg}
	}
	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &TransportError{Op: op, Err: err}
		}
	}
	return nil
}
