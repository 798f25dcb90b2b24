package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"simplemercari/pkg/catalog"
	"simplemercari/pkg/types"
)

// ErrServer 包装服务端返回的非 2xx 响应
var ErrServer = errors.New("server error")

// Client 封装了与 mercari-server 的 HTTP 交互
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient 创建客户端，addr 形如 http://localhost:9000
func NewClient(addr string) (*Client, error) {
	u, err := url.Parse(addr)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server address %q", addr)
	}
	return &Client{
		baseURL: strings.TrimSuffix(u.String(), "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
	}, nil
}

type message struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Receipt 是上架成功后服务端的回执
type Receipt struct {
	Message string        `json:"message"`
	Item    *catalog.Item `json:"item"`
}

// Push 以 multipart 表单上传一件商品，返回服务端的回执
func (c *Client) Push(ctx context.Context, name, category, filename string, image io.Reader) (*Receipt, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("name", name); err != nil {
		return nil, err
	}
	if err := mw.WriteField("category", category); err != nil {
		return nil, err
	}
	fw, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(fw, image); err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/items", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out Receipt
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// List 拉取全部商品
func (c *Client) List(ctx context.Context) ([]catalog.Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/items", nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Items []catalog.Item `json:"items"`
	}
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// Search 在服务端按商品名搜索
func (c *Client) Search(ctx context.Context, keyword string) ([]catalog.Item, error) {
	q := url.Values{"keyword": {keyword}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Items []catalog.Item `json:"items"`
	}
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// Get 拉取单个商品
func (c *Client) Get(ctx context.Context, id types.ItemID) (*catalog.Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/items/"+id.String(), nil)
	if err != nil {
		return nil, err
	}
	var out catalog.Item
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s failed: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		var e message
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if resp.StatusCode == http.StatusNotFound && req.Method == http.MethodGet && strings.HasPrefix(req.URL.Path, "/items/") {
			return fmt.Errorf("%w: %s", catalog.ErrItemNotFound, e.Error)
		}
		return fmt.Errorf("%w: %s %s: %d %s", ErrServer, req.Method, req.URL.Path, resp.StatusCode, e.Error)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
