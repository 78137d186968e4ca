// Package httpapi implements the release uploader and release API over HTTP.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"resty.dev/v3"

	"github.com/opmodel/ship/internal/buildctx"
	oerrors "github.com/opmodel/ship/internal/errors"
	"github.com/opmodel/ship/internal/output"
	"github.com/opmodel/ship/internal/release"
)

// DefaultTimeout bounds every request.
const DefaultTimeout = 5 * time.Minute

// apiKeyHeader authenticates release API calls.
const apiKeyHeader = "X-ApiKey"

// maxDetail caps response bodies quoted in errors.
const maxDetail = 512

// Option configures a client.
type Option func(*resty.Client)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *resty.Client) { c.SetTimeout(d) }
}

func newClient(opts []Option) *resty.Client {
	c := resty.New()
	c.SetTimeout(DefaultTimeout)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Uploader PUTs archives to a package feed endpoint using basic auth.
type Uploader struct {
	client   *resty.Client
	endpoint string
	cred     buildctx.Credential
}

var _ release.Uploader = (*Uploader)(nil)

// NewUploader creates an Uploader for endpoint.
func NewUploader(endpoint string, cred buildctx.Credential, opts ...Option) *Uploader {
	return &Uploader{client: newClient(opts), endpoint: endpoint, cred: cred}
}

// Upload implements release.Uploader. Only 201 Created counts as success.
func (u *Uploader) Upload(ctx context.Context, data []byte) error {
	resp, err := u.client.R().
		SetContext(ctx).
		SetBasicAuth(u.cred.Username, u.cred.Password).
		SetHeader("Content-Type", "application/octet-stream").
		SetBody(data).
		Put(u.endpoint)
	if err != nil {
		return oerrors.NewUploadError(u.endpoint, "", err)
	}
	if resp.StatusCode() != http.StatusCreated {
		return oerrors.NewUploadError(u.endpoint, detail(resp), nil)
	}
	output.Debug("upload accepted", "endpoint", u.endpoint, "status", resp.StatusCode())
	return nil
}

// Close releases idle connections.
func (u *Uploader) Close() error { return u.client.Close() }

// Client talks to the release API.
type Client struct {
	client *resty.Client
}

var _ release.ReleaseAPI = (*Client)(nil)

// NewClient creates a release API client for baseURL authenticating with apiKey.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := newClient(opts)
	c.SetBaseURL(strings.TrimSuffix(baseURL, "/"))
	c.SetHeader(apiKeyHeader, apiKey)
	c.SetHeader("Accept", "application/json")
	return &Client{client: c}
}

// Close releases idle connections.
func (c *Client) Close() error { return c.client.Close() }

type releaseDTO struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	ApplicationName string `json:"applicationName"`
}

type createPackageRequest struct {
	ReleaseID     string            `json:"releaseId"`
	PackageNumber string            `json:"packageNumber"`
	Variables     map[string]string `json:"variables"`
}

type packageDTO struct {
	ID     string `json:"id"`
	Number string `json:"number"`
}

type deployRequest struct {
	PackageID string `json:"packageId"`
}

type deploymentDTO struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// ErrReleaseNotFound is returned when no release matches the lookup.
var ErrReleaseNotFound = errors.New("release not found")

// GetRelease implements release.ReleaseAPI. Releases are looked up, never created.
func (c *Client) GetRelease(ctx context.Context, application, name string) (release.Release, error) {
	var out []releaseDTO
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"applicationName": application,
			"releaseName":     name,
		}).
		SetResult(&out).
		Get("/api/releases")
	if err := check(resp, err); err != nil {
		return release.Release{}, err
	}

	for _, r := range out {
		if r.Name == name {
			return release.Release{ID: r.ID, Name: r.Name, Application: r.ApplicationName}, nil
		}
	}
	return release.Release{}, fmt.Errorf("%w: %s/%s", ErrReleaseNotFound, application, name)
}

// CreateReleasePackage implements release.ReleaseAPI.
func (c *Client) CreateReleasePackage(ctx context.Context, rel release.Release, number string, variables map[string]string) (release.Package, error) {
	var out packageDTO
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(createPackageRequest{ReleaseID: rel.ID, PackageNumber: number, Variables: variables}).
		SetResult(&out).
		Post("/api/releases/packages/create")
	if err := check(resp, err); err != nil {
		return release.Package{}, err
	}
	return release.Package{ID: out.ID, Number: out.Number, ReleaseID: rel.ID}, nil
}

// Publish implements release.ReleaseAPI.
func (c *Client) Publish(ctx context.Context, pkg release.Package) (release.Deployment, error) {
	var out deploymentDTO
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(deployRequest{PackageID: pkg.ID}).
		SetResult(&out).
		Post("/api/releases/packages/deploy")
	if err := check(resp, err); err != nil {
		return release.Deployment{}, err
	}
	return release.Deployment{ID: out.ID, Status: out.Status}, nil
}

func check(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("%s", detail(resp))
	}
	return nil
}

// detail is the response status plus a trimmed body.
func detail(resp *resty.Response) string {
	body := strings.TrimSpace(resp.String())
	if len(body) > maxDetail {
		body = body[:maxDetail] + "..."
	}
	if body == "" {
		return resp.Status()
	}
	return resp.Status() + ": " + body
}
