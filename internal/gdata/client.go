package gdata

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"gdupload/internal/media"
	"gdupload/pkg/httputil"
)

const (
	DefaultBaseHost   = "gdata.youtube.com"
	DefaultUploadHost = "uploads.gdata.youtube.com"
	DefaultAuthHost   = "www.google.com"

	// Boundary separates the sections of every upload body.
	Boundary = "f93dcbA3"

	gdataVersion = "2"
	uploadsPath  = "/feeds/api/users/%s/uploads"
	watchURL     = "https://www.youtube.com/watch?v=%s"
)

// Sender performs one HTTP exchange. *httputil.Client satisfies it.
type Sender interface {
	Send(ctx context.Context, req httputil.Request) (*httputil.Response, error)
}

type Options struct {
	User         string
	ClientID     string
	DeveloperKey string
	BaseHost     string
	UploadHost   string
	// Secure selects https for the API hosts. ClientLogin always uses https.
	Secure bool
}

// Client uploads, updates and deletes videos for one account. Each call is a
// single request; nothing is retried.
type Client struct {
	sender  Sender
	session *Session
	opts    Options
}

func NewClient(sender Sender, session *Session, opts Options) *Client {
	if opts.BaseHost == "" {
		opts.BaseHost = DefaultBaseHost
	}
	if opts.UploadHost == "" {
		opts.UploadHost = "uploads." + opts.BaseHost
	}

	return &Client{
		sender:  sender,
		session: session,
		opts:    opts,
	}
}

func WatchURL(videoID string) string {
	return fmt.Sprintf(watchURL, videoID)
}

// Upload streams the payload with its metadata and returns the new video ID.
// The payload is read once, front to back, and is not closed.
func (c *Client) Upload(ctx context.Context, payload *media.Payload, meta Metadata) (string, error) {
	meta = meta.WithDefaults()

	if meta.Filename == "" {
		slug, err := media.Slug(payload)
		if err != nil {
			return "", fmt.Errorf("failed to derive filename: %w", err)
		}
		meta.Filename = slug
	}

	envelope, err := meta.Envelope()
	if err != nil {
		return "", err
	}

	body := media.NewRelated(Boundary, envelope, meta.MIMEType, payload)

	header, err := c.header()
	if err != nil {
		return "", err
	}
	header["Slug"] = meta.Filename
	header["Content-Type"] = media.ContentType(Boundary)

	slog.Info("Uploading video", "title", meta.Title, "filename", meta.Filename, "bytes", body.Len())

	resp, err := c.sender.Send(ctx, httputil.Request{
		Method:        http.MethodPost,
		Scheme:        c.scheme(),
		Host:          c.opts.UploadHost,
		Path:          c.uploadsPath(),
		Header:        header,
		Body:          body,
		ContentLength: body.Len(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload video: %w", err)
	}

	if err := Classify(resp.StatusCode, resp.Body); err != nil {
		return "", err
	}

	id, err := VideoID(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse upload response: %w", err)
	}

	slog.Info("Upload complete", "id", id)
	return id, nil
}

// Update replaces the metadata of an uploaded video. meta is sent as given,
// so callers must supply every field they want to keep.
func (c *Client) Update(ctx context.Context, videoID string, meta Metadata) (*VideoEntry, error) {
	envelope, err := meta.Envelope()
	if err != nil {
		return nil, err
	}

	header, err := c.header()
	if err != nil {
		return nil, err
	}
	header["Content-Type"] = media.AtomContentType

	body := media.NewBody(media.Literal(envelope))

	resp, err := c.sender.Send(ctx, httputil.Request{
		Method:        http.MethodPut,
		Scheme:        c.scheme(),
		Host:          c.opts.BaseHost,
		Path:          c.videoPath(videoID),
		Header:        header,
		Body:          body,
		ContentLength: body.Len(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update video: %w", err)
	}

	if err := Classify(resp.StatusCode, resp.Body); err != nil {
		return nil, err
	}

	entry, err := ParseEntry(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse update response: %w", err)
	}

	slog.Info("Video updated", "id", videoID)
	return entry, nil
}

// Delete removes an uploaded video.
func (c *Client) Delete(ctx context.Context, videoID string) error {
	header, err := c.header()
	if err != nil {
		return err
	}

	resp, err := c.sender.Send(ctx, httputil.Request{
		Method: http.MethodDelete,
		Scheme: c.scheme(),
		Host:   c.opts.BaseHost,
		Path:   c.videoPath(videoID),
		Header: header,
	})
	if err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}

	if err := Classify(resp.StatusCode, resp.Body); err != nil {
		return err
	}

	slog.Info("Video deleted", "id", videoID)
	return nil
}

func (c *Client) header() (map[string]string, error) {
	auth, err := c.session.AuthorizationHeader()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"Authorization":  auth,
		"GData-Version":  gdataVersion,
		"X-GData-Client": c.opts.ClientID,
		"X-GData-Key":    "key=" + c.opts.DeveloperKey,
	}, nil
}

func (c *Client) scheme() string {
	if c.opts.Secure {
		return httputil.SchemeHTTPS
	}
	return httputil.SchemeHTTP
}

func (c *Client) uploadsPath() string {
	return fmt.Sprintf(uploadsPath, c.opts.User)
}

func (c *Client) videoPath(videoID string) string {
	return c.uploadsPath() + "/" + videoID
}
