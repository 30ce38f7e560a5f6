// Package github implementa contents.Store sobre a API REST de contents do
// GitHub (GET/PUT /repos/{owner}/{repo}/contents/{path}).
package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"listing-directory/internal/contents"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://api.github.com"
	APIVersion     = "2022-11-28"
)

type Client struct {
	http    *resty.Client
	owner   string
	repo    string
	branch  string
	limiter *rate.Limiter
	maxWait time.Duration

	// último documento lido por path, para GET condicional (If-None-Match).
	// 304 não consome a cota da API.
	mu    sync.Mutex
	cache map[string]cachedDoc
}

type cachedDoc struct {
	etag string
	doc  contents.Document
}

type Option func(*options)

type options struct {
	baseURL   string
	branch    string
	timeout   time.Duration
	rps       float64
	maxWait   time.Duration
	userAgent string
	http      *http.Client
}

func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = strings.TrimRight(u, "/") }
}

// WithBranch grava/lê em um branch específico em vez do default do repositório.
func WithBranch(b string) Option {
	return func(o *options) { o.branch = b }
}

func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithRPS limita as chamadas de saída para a API (burst 1). 0 desliga.
func WithRPS(rps float64) Option {
	return func(o *options) { o.rps = rps }
}

// WithMaxWait limita quanto uma chamada espera na fila do throttle. Estourando,
// a chamada falha em vez de ficar presa atrás de outras.
func WithMaxWait(d time.Duration) Option {
	return func(o *options) { o.maxWait = d }
}

func WithUserAgent(ua string) Option {
	return func(o *options) { o.userAgent = ua }
}

// WithHTTPClient troca o *http.Client usado pelo resty (útil em testes).
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.http = c }
}

func New(owner, repo, token string, opts ...Option) *Client {
	o := options{
		baseURL:   DefaultBaseURL,
		timeout:   15 * time.Second,
		rps:       5,
		maxWait:   5 * time.Second,
		userAgent: "listing-directory",
	}
	for _, opt := range opts {
		opt(&o)
	}

	var rc *resty.Client
	if o.http != nil {
		rc = resty.NewWithClient(o.http)
	} else {
		rc = resty.New()
	}
	rc.SetBaseURL(o.baseURL).
		SetTimeout(o.timeout).
		SetAuthToken(token).
		SetHeader("Accept", "application/vnd.github+json").
		SetHeader("X-GitHub-Api-Version", APIVersion).
		SetHeader("User-Agent", o.userAgent)

	c := &Client{
		http:   rc,
		owner:  owner,
		repo:   repo,
		branch:  o.branch,
		maxWait: o.maxWait,
		cache:   make(map[string]cachedDoc),
	}
	if o.rps > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(o.rps), 1)
	}
	return c
}

type fileResponse struct {
	Type     string `json:"type"`
	Encoding string `json:"encoding"`
	Content  string `json:"content"`
	SHA      string `json:"sha"`
}

type putRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha,omitempty"`
	Branch  string `json:"branch,omitempty"`
}

type putResponse struct {
	Content struct {
		SHA string `json:"sha"`
	} `json:"content"`
}

type apiError struct {
	Message string `json:"message"`
}

func (c *Client) Get(ctx context.Context, path string) (contents.Document, error) {
	if err := c.wait(ctx); err != nil {
		return contents.Document{}, err
	}

	req := c.http.R().SetContext(ctx)
	if c.branch != "" {
		req.SetQueryParam("ref", c.branch)
	}
	cached, hasCached := c.cached(path)
	if hasCached {
		req.SetHeader("If-None-Match", cached.etag)
	}
	resp, err := req.Get(c.contentsPath(path))
	if err != nil {
		return contents.Document{}, fmt.Errorf("contents: get %s: %w", path, err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusNotModified:
		if hasCached {
			return cached.doc.Clone(), nil
		}
		return contents.Document{}, &contents.StatusError{Op: "get", Path: path, Status: resp.StatusCode(), Body: "not modified without a cached copy"}
	case http.StatusNotFound:
		c.forget(path)
		return contents.Document{}, contents.ErrNotFound
	default:
		return contents.Document{}, &contents.StatusError{Op: "get", Path: path, Status: resp.StatusCode(), Body: errorText(resp)}
	}

	// um diretório responde com um array; qualquer corpo que não seja o objeto
	// de arquivo é documento inválido, não falha de transporte
	var file fileResponse
	if err := json.Unmarshal(resp.Body(), &file); err != nil {
		return contents.Document{}, fmt.Errorf("%w: %s: %v", contents.ErrMalformed, path, err)
	}
	if file.Type != "" && file.Type != "file" {
		return contents.Document{}, fmt.Errorf("%w: %s is a %s, not a file", contents.ErrMalformed, path, file.Type)
	}
	if file.Encoding != "base64" {
		// arquivos acima de 1MB vêm com encoding "none" e content vazio
		return contents.Document{}, fmt.Errorf("%w: %s has unsupported encoding %q", contents.ErrMalformed, path, file.Encoding)
	}
	raw, err := DecodeContent(file.Content)
	if err != nil {
		return contents.Document{}, fmt.Errorf("%w: %s: %v", contents.ErrMalformed, path, err)
	}

	doc := contents.Document{Path: path, Content: raw, Revision: contents.Revision(file.SHA)}
	if etag := resp.Header().Get("ETag"); etag != "" {
		c.remember(path, cachedDoc{etag: etag, doc: doc.Clone()})
	}
	return doc, nil
}

func (c *Client) Put(ctx context.Context, path string, content []byte, prev contents.Revision, message string) (contents.Revision, error) {
	if err := c.wait(ctx); err != nil {
		return "", err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(putRequest{
			Message: message,
			Content: EncodeContent(content),
			SHA:     string(prev),
			Branch:  c.branch,
		}).
		Put(c.contentsPath(path))
	if err != nil {
		return "", fmt.Errorf("contents: put %s: %w", path, err)
	}

	switch resp.StatusCode() {
	case http.StatusOK, http.StatusCreated:
		c.forget(path)
		var out putResponse
		if err := json.Unmarshal(resp.Body(), &out); err != nil || out.Content.SHA == "" {
			// a escrita aconteceu, mas sem a nova revisão não dá para encadear outra
			return "", &contents.StatusError{Op: "put", Path: path, Status: resp.StatusCode(), Body: "response without content.sha"}
		}
		return contents.Revision(out.Content.SHA), nil
	case http.StatusConflict:
		c.forget(path)
		return "", contents.ErrConflict
	case http.StatusUnprocessableEntity:
		// "sha" wasn't supplied: o arquivo foi criado por outro escritor depois da nossa leitura.
		if strings.Contains(strings.ToLower(apiMessage(resp)), "sha") {
			c.forget(path)
			return "", contents.ErrConflict
		}
	}
	return "", &contents.StatusError{Op: "put", Path: path, Status: resp.StatusCode(), Body: errorText(resp)}
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if c.maxWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.maxWait)
		defer cancel()
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("contents: throttle: %w", err)
	}
	return nil
}

func (c *Client) contentsPath(path string) string {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return "/repos/" + url.PathEscape(c.owner) + "/" + url.PathEscape(c.repo) + "/contents/" + strings.Join(segs, "/")
}

func (c *Client) cached(path string) (cachedDoc, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.cache[path]
	return d, ok
}

func (c *Client) remember(path string, d cachedDoc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[path] = d
}

func (c *Client) forget(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cache, path)
}

func apiMessage(resp *resty.Response) string {
	var apiErr apiError
	if err := json.Unmarshal(resp.Body(), &apiErr); err != nil {
		return ""
	}
	return apiErr.Message
}

const maxErrorBody = 200

func errorText(resp *resty.Response) string {
	if msg := apiMessage(resp); msg != "" {
		return msg
	}
	return truncate(strings.TrimSpace(resp.String()), maxErrorBody)
}

// truncate corta s em no máximo n bytes sem partir um rune ao meio.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// EncodeContent codifica em base64 padrão, como a API espera no PUT.
func EncodeContent(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// DecodeContent decodifica o content devolvido no GET, que vem quebrado em
// linhas de 60 caracteres.
func DecodeContent(s string) ([]byte, error) {
	s = strings.NewReplacer("\n", "", "\r", "").Replace(s)
	return base64.StdEncoding.DecodeString(s)
}
