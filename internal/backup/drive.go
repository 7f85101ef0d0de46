package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const folderMime = "application/vnd.google-apps.folder"

// Scope limits the app to files it created itself.
const Scope = gdrive.DriveFileScope

var _ Drive = (*GoogleDrive)(nil)

// Credentials point at the OAuth client and the token saved by oauth-init.
// Inline JSON wins over files.
type Credentials struct {
	ClientFile string
	ClientJSON string
	TokenFile  string
	TokenJSON  string
}

type GoogleDrive struct {
	svc *gdrive.Service
}

func NewGoogleDrive(ctx context.Context, creds Credentials) (*GoogleDrive, error) {
	clientJSON, err := readSecret(creds.ClientJSON, creds.ClientFile, "OAuth client")
	if err != nil {
		return nil, err
	}
	tokenJSON, err := readSecret(creds.TokenJSON, creds.TokenFile, "OAuth token")
	if err != nil {
		return nil, err
	}

	cfg, err := google.ConfigFromJSON(clientJSON, Scope)
	if err != nil {
		return nil, fmt.Errorf("oauth config: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(tokenJSON, &tok); err != nil {
		return nil, fmt.Errorf("parse oauth token: %w", err)
	}

	// the token source refreshes through this client
	ctx = context.WithValue(ctx, oauth2.HTTPClient, newHTTPClient())
	svc, err := gdrive.NewService(ctx, option.WithTokenSource(cfg.TokenSource(ctx, &tok)))
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return &GoogleDrive{svc: svc}, nil
}

func readSecret(inline, file, what string) ([]byte, error) {
	switch {
	case strings.TrimSpace(inline) != "":
		return []byte(inline), nil
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read %s file: %w", what, err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("missing %s credentials", what)
	}
}

func newHTTPClient() *http.Client {
	dialer := &net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}
	return &http.Client{
		Transport: &http.Transport{
			DialContext:           dialer.DialContext,
			MaxIdleConnsPerHost:   4,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 60 * time.Second,
			ForceAttemptHTTP2:     true,
		},
		// uploads of a large ledger can take a while
		Timeout: 10 * time.Minute,
	}
}

// quote escapes a value for a Drive query string literal.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return "'" + strings.ReplaceAll(s, "'", `\'`) + "'"
}

func (d *GoogleDrive) FindFolder(ctx context.Context, name string) (string, bool, error) {
	q := fmt.Sprintf("name = %s and mimeType = '%s' and trashed = false", quote(name), folderMime)
	res, err := d.svc.Files.List().Q(q).Spaces("drive").Fields("files(id, name)").PageSize(1).Context(ctx).Do()
	if err != nil {
		return "", false, fmt.Errorf("list folders: %w", err)
	}
	if len(res.Files) == 0 {
		return "", false, nil
	}
	return res.Files[0].Id, true, nil
}

func (d *GoogleDrive) CreateFolder(ctx context.Context, name string) (string, error) {
	f, err := d.svc.Files.Create(&gdrive.File{Name: name, MimeType: folderMime}).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create folder: %w", err)
	}
	return f.Id, nil
}

func (d *GoogleDrive) LatestBackup(ctx context.Context, folderID, prefix string) (File, bool, error) {
	q := fmt.Sprintf("%s in parents and name contains %s and trashed = false", quote(folderID), quote(prefix))
	res, err := d.svc.Files.List().Q(q).Spaces("drive").
		Fields("files(id, name, createdTime)").
		OrderBy("createdTime desc").
		PageSize(1).
		Context(ctx).Do()
	if err != nil {
		return File{}, false, fmt.Errorf("list backups: %w", err)
	}
	if len(res.Files) == 0 {
		return File{}, false, nil
	}
	f, err := toFile(res.Files[0])
	return f, err == nil, err
}

func (d *GoogleDrive) Upload(ctx context.Context, folderID, name string, content io.Reader) (File, error) {
	meta := &gdrive.File{Name: name, Parents: []string{folderID}}
	f, err := d.svc.Files.Create(meta).
		Media(content, googleapi.ContentType("application/octet-stream")).
		Fields("id, name, createdTime").
		Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			return File{}, fmt.Errorf("drive upload failed with status %d: %w", gerr.Code, err)
		}
		return File{}, fmt.Errorf("drive upload: %w", err)
	}
	return toFile(f)
}

func toFile(f *gdrive.File) (File, error) {
	created, err := time.Parse(time.RFC3339, f.CreatedTime)
	if err != nil {
		return File{}, fmt.Errorf("parse created time of %s: %w", f.Name, err)
	}
	return File{ID: f.Id, Name: f.Name, CreatedTime: created}, nil
}
