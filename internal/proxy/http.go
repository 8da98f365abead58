package proxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-logr/logr"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/oakwood-commons/lazyview/internal/store"
	"github.com/oakwood-commons/lazyview/pkg/loader"
)

// Default request parameter names.
const (
	DefaultPageParam  = "page"
	DefaultStartParam = "start"
	DefaultLimitParam = "limit"
)

// maxBody caps how much of a response is read.
const maxBody = 32 << 20

// HTTPOptions configures an HTTP proxy.
type HTTPOptions struct {
	URL string
	// Method is GET (parameters in the query) or POST (parameters in a JSON body).
	Method string
	// Root is a gjson path to the record array. Empty means the document itself.
	Root string
	// TotalPath is a gjson path to the collection size, if the backend reports one.
	TotalPath string
	// PageParam, StartParam and LimitParam name the request parameters.
	PageParam  string
	StartParam string
	LimitParam string
	Headers    map[string]string
	Fields     []string
	Client     *http.Client
	Logger     logr.Logger
}

// HTTP reads pages from a JSON endpoint.
type HTTP struct {
	opts   HTTPOptions
	client *http.Client
	log    logr.Logger
}

// NewHTTP validates opts and builds an HTTP proxy.
func NewHTTP(opts HTTPOptions) (*HTTP, error) {
	u, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", opts.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid url %q: scheme must be http or https", opts.URL)
	}
	opts.Method = strings.ToUpper(opts.Method)
	switch opts.Method {
	case "":
		opts.Method = http.MethodGet
	case http.MethodGet, http.MethodPost:
	default:
		return nil, fmt.Errorf("unsupported method %q", opts.Method)
	}
	if opts.PageParam == "" {
		opts.PageParam = DefaultPageParam
	}
	if opts.StartParam == "" {
		opts.StartParam = DefaultStartParam
	}
	if opts.LimitParam == "" {
		opts.LimitParam = DefaultLimitParam
	}
	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTP{opts: opts, client: client, log: opts.Logger.WithName("proxy.http")}, nil
}

// Read requests op's window and extracts the records under Root.
func (h *HTTP) Read(ctx context.Context, op store.Operation) (store.Result, error) {
	req, err := h.request(ctx, op)
	if err != nil {
		return store.Result{}, err
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return store.Result{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return store.Result{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return store.Result{}, fmt.Errorf("%s %s: %s", req.Method, req.URL.Redacted(), resp.Status)
	}
	if !gjson.ValidBytes(body) {
		return store.Result{}, errors.New("response is not valid JSON")
	}
	h.log.V(2).Info("response received", "status", resp.StatusCode, "bytes", len(body))
	return h.decode(body)
}

func (h *HTTP) request(ctx context.Context, op store.Operation) (*http.Request, error) {
	var (
		req *http.Request
		err error
	)
	if h.opts.Method == http.MethodPost {
		var payload string
		if payload, err = h.body(op); err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, h.opts.URL, strings.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	} else {
		u, _ := url.Parse(h.opts.URL)
		q := u.Query()
		q.Set(h.opts.PageParam, strconv.Itoa(op.Page))
		q.Set(h.opts.StartParam, strconv.Itoa(op.Start))
		q.Set(h.opts.LimitParam, strconv.Itoa(op.Limit))
		u.RawQuery = q.Encode()
		if req, err = http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil); err != nil {
			return nil, err
		}
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range h.opts.Headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

func (h *HTTP) body(op store.Operation) (string, error) {
	payload := "{}"
	var err error
	for _, kv := range []struct {
		key string
		val int
	}{
		{h.opts.PageParam, op.Page},
		{h.opts.StartParam, op.Start},
		{h.opts.LimitParam, op.Limit},
	} {
		if payload, err = sjson.Set(payload, kv.key, kv.val); err != nil {
			return "", err
		}
	}
	return payload, nil
}

func (h *HTTP) decode(body []byte) (store.Result, error) {
	list := gjson.ParseBytes(body)
	if h.opts.Root != "" {
		list = list.Get(h.opts.Root)
		if !list.Exists() {
			return store.Result{}, fmt.Errorf("root %q not found in response", h.opts.Root)
		}
	}
	if !list.IsArray() {
		return store.Result{}, fmt.Errorf("root %q is not an array", h.opts.Root)
	}

	var recs []store.Record
	for _, item := range list.Array() {
		switch v := item.Value().(type) {
		case map[string]any:
			recs = append(recs, store.Record(v))
		default:
			recs = append(recs, store.Record{loader.ValueField: v})
		}
	}

	res := store.Result{Records: recs, Total: -1}
	if h.opts.TotalPath != "" {
		if t := gjson.GetBytes(body, h.opts.TotalPath); t.Exists() {
			res.Total = int(t.Int())
		}
	}
	return res, nil
}

// Schema returns the configured fields.
func (h *HTTP) Schema() store.Schema {
	return store.Schema{Fields: h.opts.Fields}
}
