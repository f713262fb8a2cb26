package client

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/foomo/releaseregistry/pkg/release"
	"github.com/foomo/releaseregistry/pkg/utils"
	"github.com/foomo/releaseregistry/responses"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type (
	// Client talks to the release registry REST surface
	Client struct {
		endpoint    string
		httpClient  *http.Client
		credentials *credentials
	}
	credentials struct {
		username string
		password string
	}
	Option func(*Client)
)

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

// NewHTTPClient creates a client for the registry served at server, e.g. "https://registry.example.com/release".
func NewHTTPClient(server string, opts ...Option) (*Client, error) {
	if !utils.IsValidURL(server) {
		return nil, errors.Errorf("invalid server url %q", server)
	}
	inst := &Client{
		endpoint:   strings.TrimRight(server, "/"),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(inst)
	}
	return inst, nil
}

// ------------------------------------------------------------------------------------------------
// ~ Options
// ------------------------------------------------------------------------------------------------

func WithHTTPClient(v *http.Client) Option {
	return func(o *Client) {
		o.httpClient = v
	}
}

func WithBasicAuth(username, password string) Option {
	return func(o *Client) {
		o.credentials = &credentials{username: username, password: password}
	}
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

// Publish uploads files as a new release and returns its id
func (c *Client) Publish(ctx context.Context, name, version string, files []release.File) (string, error) {
	var (
		body   bytes.Buffer
		writer = multipart.NewWriter(&body)
	)
	if err := writer.WriteField("name", name); err != nil {
		return "", err
	}
	if err := writer.WriteField("version", version); err != nil {
		return "", err
	}
	for _, file := range files {
		part, err := writer.CreateFormFile("files", file.Name)
		if err != nil {
			return "", err
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return "", errors.Wrapf(err, "failed to read %s", file.Name)
		}
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	reply := &responses.Created{}
	if err := c.call(ctx, http.MethodPost, c.endpoint, writer.FormDataContentType(), &body, reply); err != nil {
		return "", err
	}
	return reply.ID, nil
}

func (c *Client) List(ctx context.Context, page, per int64) (*release.Pagination[*release.Release], error) {
	query := url.Values{}
	query.Set("page", strconv.FormatInt(page, 10))
	query.Set("per", strconv.FormatInt(per, 10))

	reply := &release.Pagination[*release.Release]{}
	if err := c.call(ctx, http.MethodGet, c.endpoint+"?"+query.Encode(), "", nil, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

func (c *Client) ListNames(ctx context.Context) ([]string, error) {
	var reply []string
	if err := c.call(ctx, http.MethodGet, c.endpoint+"/names", "", nil, &reply); err != nil {
		return nil, err
	}
	return reply, nil
}

func (c *Client) ListVersions(ctx context.Context, name string) ([]string, error) {
	var reply []string
	if err := c.call(ctx, http.MethodGet, c.endpoint+"/versions/"+url.PathEscape(name), "", nil, &reply); err != nil {
		return nil, err
	}
	return reply, nil
}

func (c *Client) Get(ctx context.Context, name, version string) (*release.Release, error) {
	reply := &release.Release{}
	if err := c.call(ctx, http.MethodGet, c.releaseURL(name, version), "", nil, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

func (c *Client) Delete(ctx context.Context, name, version string) error {
	return c.call(ctx, http.MethodDelete, c.releaseURL(name, version), "", nil, &responses.Message{})
}

// ------------------------------------------------------------------------------------------------
// ~ Private methods
// ------------------------------------------------------------------------------------------------

func (c *Client) releaseURL(name, version string) string {
	return c.endpoint + "/" + url.PathEscape(name) + "/" + url.PathEscape(version)
}

// call executes the request and decodes a successful reply into response.
// Non 200 replies are returned as *responses.Error.
func (c *Client) call(ctx context.Context, method, endpoint, contentType string, body io.Reader, response interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.credentials != nil {
		req.SetBasicAuth(c.credentials.username, c.credentials.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	responseBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response")
	}
	if resp.StatusCode != http.StatusOK {
		replyErr := responses.NewError(resp.StatusCode, http.StatusText(resp.StatusCode))
		if jsonErr := json.Unmarshal(responseBytes, replyErr); jsonErr != nil || replyErr.Detail == "" {
			replyErr.Detail = http.StatusText(resp.StatusCode)
		}
		replyErr.Status = resp.StatusCode
		return replyErr
	}
	return json.Unmarshal(responseBytes, response)
}
