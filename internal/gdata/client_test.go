package gdata

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gdupload/internal/media"
	"gdupload/pkg/httputil"
)

const (
	testUser      = "alice"
	testUploads   = "/feeds/api/users/alice/uploads"
	testVideoPath = "/feeds/api/users/alice/uploads/abc123"
)

type route struct {
	status int
	body   string
}

func newTestClient(routes map[string]route) (*Client, *fakeSender) {
	sender := &fakeSender{}
	sender.handle = func(req httputil.Request, _ []byte) *httputil.Response {
		if req.Path == clientLoginPath {
			return respond(http.StatusOK, "Auth=TOKEN\n")
		}
		r, ok := routes[req.Method+" "+req.Path]
		if !ok {
			return respond(http.StatusNotFound, "")
		}
		return respond(r.status, r.body)
	}

	session := NewSession(context.Background(), sender, "auth.example.com", Credentials{User: testUser})
	client := NewClient(sender, session, Options{
		User:         testUser,
		ClientID:     "client-id",
		DeveloperKey: "dev-key",
		BaseHost:     "api.example.com",
	})
	return client, sender
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient(nil, nil, Options{})
	if client.opts.BaseHost != DefaultBaseHost {
		t.Errorf("BaseHost = %q, want %q", client.opts.BaseHost, DefaultBaseHost)
	}
	if client.opts.UploadHost != DefaultUploadHost {
		t.Errorf("UploadHost = %q, want %q", client.opts.UploadHost, DefaultUploadHost)
	}
}

func TestUploadRequest(t *testing.T) {
	client, sender := newTestClient(map[string]route{
		"POST " + testUploads: {status: http.StatusCreated, body: uploadEntry},
	})

	payload := media.FromBytes([]byte("VIDEO-BYTES"))
	id, err := client.Upload(context.Background(), payload, Metadata{
		Title:    "My Video",
		Keywords: []string{"b", "a"},
	})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if id != "abc123" {
		t.Errorf("Upload() = %q, want abc123", id)
	}

	rec, ok := sender.last(testUploads)
	if !ok {
		t.Fatal("no upload request sent")
	}
	req := rec.req

	if req.Method != http.MethodPost {
		t.Errorf("Method = %q, want POST", req.Method)
	}
	if req.Host != "uploads.api.example.com" {
		t.Errorf("Host = %q, want uploads.api.example.com", req.Host)
	}
	if req.Scheme != httputil.SchemeHTTP {
		t.Errorf("Scheme = %q, want http", req.Scheme)
	}
	if req.ContentLength != int64(len(rec.body)) {
		t.Errorf("ContentLength = %d, body has %d bytes", req.ContentLength, len(rec.body))
	}

	sum := md5.Sum([]byte("VIDEO-BYTES"))
	wantHeader := map[string]string{
		"Authorization":  "GoogleLogin auth=TOKEN",
		"GData-Version":  "2",
		"X-GData-Client": "client-id",
		"X-GData-Key":    "key=dev-key",
		"Slug":           hex.EncodeToString(sum[:]),
		"Content-Type":   `multipart/related; boundary="f93dcbA3"`,
	}
	for k, v := range wantHeader {
		if got := req.Header[k]; got != v {
			t.Errorf("header %s = %q, want %q", k, got, v)
		}
	}

	body := string(rec.body)
	for _, want := range []string{
		"<media:title type=\"plain\">My Video</media:title>",
		"<media:keywords>b,a</media:keywords>",
		"Content-Type: video/mp4\r\n",
		"\r\n\r\nVIDEO-BYTES\r\n--f93dcbA3--\r\n",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestUploadFilenameAndMIMEType(t *testing.T) {
	client, sender := newTestClient(map[string]route{
		"POST " + testUploads: {status: http.StatusOK, body: uploadEntry},
	})

	_, err := client.Upload(context.Background(), media.FromBytes([]byte("x")), Metadata{
		Filename: "holiday.webm",
		MIMEType: "video/webm",
	})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	rec, _ := sender.last(testUploads)
	if got := rec.req.Header["Slug"]; got != "holiday.webm" {
		t.Errorf("Slug = %q, want holiday.webm", got)
	}
	if !strings.Contains(string(rec.body), "Content-Type: video/webm\r\n") {
		t.Error("body missing payload content type video/webm")
	}
}

func TestUploadStreamPeekKeepsBytes(t *testing.T) {
	client, sender := newTestClient(map[string]route{
		"POST " + testUploads: {status: http.StatusOK, body: uploadEntry},
	})

	data := bytes.Repeat([]byte("stream-"), 500)
	payload, err := media.FromReader(io.MultiReader(bytes.NewReader(data)), int64(len(data)))
	if err != nil {
		t.Fatalf("FromReader() error = %v", err)
	}

	if _, err := client.Upload(context.Background(), payload, Metadata{}); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	rec, _ := sender.last(testUploads)
	if !bytes.Contains(rec.body, data) {
		t.Error("upload body does not contain the full stream")
	}
	sum := md5.Sum(data[:1024])
	if got := rec.req.Header["Slug"]; got != hex.EncodeToString(sum[:]) {
		t.Errorf("Slug = %q, want digest of the first kilobyte", got)
	}
}

func TestUploadErrors(t *testing.T) {
	tests := []struct {
		name     string
		route    route
		wantAuth bool
		wantMsg  string
	}{
		{
			name:     "forbidden",
			route:    route{status: http.StatusForbidden, body: "<html><head><TITLE>Forbidden</TITLE></head></html>"},
			wantAuth: true,
			wantMsg:  "Forbidden",
		},
		{
			name:    "validation",
			route:   route{status: http.StatusBadRequest, body: titleFault},
			wantMsg: "title: required\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(map[string]route{"POST " + testUploads: tt.route})

			_, err := client.Upload(context.Background(), media.FromBytes([]byte("x")), Metadata{})

			var authErr *AuthenticationError
			var uploadErr *UploadError
			if tt.wantAuth {
				if !errors.As(err, &authErr) {
					t.Fatalf("Upload() error = %v, want AuthenticationError", err)
				}
				if authErr.Message != tt.wantMsg {
					t.Errorf("Message = %q, want %q", authErr.Message, tt.wantMsg)
				}
				return
			}
			if !errors.As(err, &uploadErr) {
				t.Fatalf("Upload() error = %v, want UploadError", err)
			}
			if uploadErr.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", uploadErr.Message, tt.wantMsg)
			}
		})
	}
}

func TestUploadLoginFailureSendsNothing(t *testing.T) {
	sender := &fakeSender{
		handle: func(req httputil.Request, _ []byte) *httputil.Response {
			if req.Path == clientLoginPath {
				return respond(http.StatusForbidden, "Error=BadAuthentication\n")
			}
			return respond(http.StatusOK, uploadEntry)
		},
	}
	session := NewSession(context.Background(), sender, "auth.example.com", Credentials{})
	client := NewClient(sender, session, Options{User: testUser})

	_, err := client.Upload(context.Background(), media.FromBytes([]byte("x")), Metadata{})

	var authErr *AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("Upload() error = %v, want AuthenticationError", err)
	}
	if authErr.Message != "BadAuthentication" {
		t.Errorf("Message = %q, want BadAuthentication", authErr.Message)
	}
	if n := sender.count(testUploads); n != 0 {
		t.Errorf("upload requests = %d, want 0", n)
	}
}

func TestUpdate(t *testing.T) {
	client, sender := newTestClient(map[string]route{
		"PUT " + testVideoPath: {status: http.StatusOK, body: uploadEntry},
	})

	meta := Metadata{Title: "New title", Keywords: []string{"x"}}
	entry, err := client.Update(context.Background(), "abc123", meta)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if entry.VideoID != "abc123" {
		t.Errorf("VideoID = %q, want abc123", entry.VideoID)
	}
	if entry.Title != "My Video" {
		t.Errorf("Title = %q, want My Video", entry.Title)
	}

	rec, ok := sender.last(testVideoPath)
	if !ok {
		t.Fatal("no update request sent")
	}
	if rec.req.Method != http.MethodPut {
		t.Errorf("Method = %q, want PUT", rec.req.Method)
	}
	if rec.req.Host != "api.example.com" {
		t.Errorf("Host = %q, want api.example.com", rec.req.Host)
	}
	if got := rec.req.Header["Content-Type"]; got != media.AtomContentType {
		t.Errorf("Content-Type = %q, want %q", got, media.AtomContentType)
	}

	want, _ := meta.Envelope()
	if !bytes.Equal(rec.body, want) {
		t.Errorf("body = %s, want %s", rec.body, want)
	}
	if rec.req.ContentLength != int64(len(want)) {
		t.Errorf("ContentLength = %d, want %d", rec.req.ContentLength, len(want))
	}
}

func TestUpdateFailure(t *testing.T) {
	client, _ := newTestClient(map[string]route{
		"PUT " + testVideoPath: {status: http.StatusBadRequest, body: titleFault},
	})

	_, err := client.Update(context.Background(), "abc123", Metadata{})

	var uploadErr *UploadError
	if !errors.As(err, &uploadErr) {
		t.Fatalf("Update() error = %v, want UploadError", err)
	}
	if uploadErr.Message != "title: required\n" {
		t.Errorf("Message = %q, want %q", uploadErr.Message, "title: required\n")
	}
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name    string
		route   route
		wantErr bool
	}{
		{name: "deleted", route: route{status: http.StatusOK}},
		{name: "notFound", route: route{status: http.StatusNotFound, body: "Video not found"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, sender := newTestClient(map[string]route{"DELETE " + testVideoPath: tt.route})

			err := client.Delete(context.Background(), "abc123")
			if (err != nil) != tt.wantErr {
				t.Fatalf("Delete() error = %v, wantErr %v", err, tt.wantErr)
			}

			rec, ok := sender.last(testVideoPath)
			if !ok {
				t.Fatal("no delete request sent")
			}
			if rec.req.Method != http.MethodDelete {
				t.Errorf("Method = %q, want DELETE", rec.req.Method)
			}
			if rec.req.Body != nil || rec.req.ContentLength != 0 {
				t.Errorf("delete request carries a body of %d bytes", rec.req.ContentLength)
			}
		})
	}
}

func TestDeleteUsesItsOwnResponse(t *testing.T) {
	t.Run("failedUploadThenDelete", func(t *testing.T) {
		client, _ := newTestClient(map[string]route{
			"POST " + testUploads:     {status: http.StatusBadRequest, body: titleFault},
			"DELETE " + testVideoPath: {status: http.StatusOK},
		})

		if _, err := client.Upload(context.Background(), media.FromBytes([]byte("x")), Metadata{}); err == nil {
			t.Fatal("Upload() error = nil, want error")
		}
		if err := client.Delete(context.Background(), "abc123"); err != nil {
			t.Errorf("Delete() error = %v, want nil", err)
		}
	})

	t.Run("uploadThenForbiddenDelete", func(t *testing.T) {
		client, _ := newTestClient(map[string]route{
			"POST " + testUploads:     {status: http.StatusOK, body: uploadEntry},
			"DELETE " + testVideoPath: {status: http.StatusForbidden, body: "<TITLE>Forbidden</TITLE>"},
		})

		if _, err := client.Upload(context.Background(), media.FromBytes([]byte("x")), Metadata{}); err != nil {
			t.Fatalf("Upload() error = %v", err)
		}

		err := client.Delete(context.Background(), "abc123")
		var authErr *AuthenticationError
		if !errors.As(err, &authErr) {
			t.Errorf("Delete() error = %v, want AuthenticationError", err)
		}
	})
}

func TestUploadOverHTTP(t *testing.T) {
	videoPath := filepath.Join(t.TempDir(), "clip.mp4")
	video := bytes.Repeat([]byte{0x00, 0x01, 0x02, 0xff}, 256*1024)
	if err := os.WriteFile(videoPath, video, 0644); err != nil {
		t.Fatalf("failed to write video: %v", err)
	}

	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case clientLoginPath:
			if err := r.ParseForm(); err != nil {
				t.Errorf("ParseForm() error = %v", err)
			}
			if r.PostForm.Get("Email") != testUser {
				t.Errorf("Email = %q, want %q", r.PostForm.Get("Email"), testUser)
			}
			_, _ = w.Write([]byte("SID=x\nAuth=LIVE\n"))
		case testUploads:
			if r.Header.Get("Authorization") != "GoogleLogin auth=LIVE" {
				t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
			}
			if len(r.TransferEncoding) != 0 {
				t.Errorf("TransferEncoding = %v, want a length-prefixed body", r.TransferEncoding)
			}
			body, err := io.ReadAll(r.Body)
			if err != nil {
				t.Errorf("failed to read body: %v", err)
			}
			if r.ContentLength != int64(len(body)) {
				t.Errorf("ContentLength = %d, body has %d bytes", r.ContentLength, len(body))
			}
			if !bytes.Contains(body, video) {
				t.Error("body does not contain the video")
			}
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(uploadEntry))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	host := strings.TrimPrefix(server.URL, "https://")
	sender := httputil.NewClient(server.Client())
	session := NewSession(context.Background(), sender, host, Credentials{User: testUser, Password: "pw", ClientID: "client"})
	client := NewClient(sender, session, Options{
		User:       testUser,
		ClientID:   "client",
		BaseHost:   host,
		UploadHost: host,
		Secure:     true,
	})

	f, err := os.Open(videoPath)
	if err != nil {
		t.Fatalf("failed to open video: %v", err)
	}
	defer func() { _ = f.Close() }()

	payload, err := media.FromFile(f)
	if err != nil {
		t.Fatalf("FromFile() error = %v", err)
	}

	id, err := client.Upload(context.Background(), payload, Metadata{Title: "Live"})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if id != "abc123" {
		t.Errorf("Upload() = %q, want abc123", id)
	}

	if _, err := f.Stat(); err != nil {
		t.Errorf("payload file was closed: %v", err)
	}
}
