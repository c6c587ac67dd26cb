package google

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"financaszen/internal/storage"
)

// TokenStore persists calendar tokens per user.
type TokenStore interface {
	Load(ctx context.Context, userID string) (*oauth2.Token, error)
	Save(ctx context.Context, userID string, tok *oauth2.Token) error
	Delete(ctx context.Context, userID string) error
}

// appData is the slice of the Drive API the token store needs.
type appData interface {
	find(ctx context.Context, name string) (string, error)
	download(ctx context.Context, id string) ([]byte, error)
	create(ctx context.Context, name string, body []byte) error
	update(ctx context.Context, id string, body []byte) error
	remove(ctx context.Context, id string) error
}

// DriveTokenStore keeps each token as a JSON file in the app-data folder.
type DriveTokenStore struct {
	files appData
}

// NewDriveTokenStore authenticates to Drive with the server's own token.
func NewDriveTokenStore(ctx context.Context, cfg *oauth2.Config, serverToken *oauth2.Token, opts ...option.ClientOption) (*DriveTokenStore, error) {
	opts = append([]option.ClientOption{option.WithTokenSource(cfg.TokenSource(ctx, serverToken))}, opts...)
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("drive service: %w", err)
	}
	return &DriveTokenStore{files: &driveAppData{svc: svc}}, nil
}

func (s *DriveTokenStore) Load(ctx context.Context, userID string) (*oauth2.Token, error) {
	id, err := s.files.find(ctx, TokenFileName(userID))
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, ErrNoToken
	}
	raw, err := s.files.download(ctx, id)
	if err != nil {
		return nil, err
	}
	var st StoredToken
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("decode stored token: %w", err)
	}
	return st.OAuth(), nil
}

// Save overwrites the user's file. A refresh token missing from tok is kept
// from the stored copy, since Google only returns it on first consent.
func (s *DriveTokenStore) Save(ctx context.Context, userID string, tok *oauth2.Token) error {
	name := TokenFileName(userID)
	id, err := s.files.find(ctx, name)
	if err != nil {
		return err
	}
	st := FromOAuth(tok)
	if st.RefreshToken == "" && id != "" {
		if prev, err := s.Load(ctx, userID); err == nil {
			st.RefreshToken = prev.RefreshToken
		}
	}
	body, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	if id == "" {
		return s.files.create(ctx, name, body)
	}
	return s.files.update(ctx, id, body)
}

func (s *DriveTokenStore) Delete(ctx context.Context, userID string) error {
	id, err := s.files.find(ctx, TokenFileName(userID))
	if err != nil {
		return err
	}
	if id == "" {
		return nil
	}
	return s.files.remove(ctx, id)
}

type driveAppData struct {
	svc *drive.Service
}

const appDataFolder = "appDataFolder"

func (d *driveAppData) find(ctx context.Context, name string) (string, error) {
	q := fmt.Sprintf("name = '%s' and trashed = false", strings.ReplaceAll(name, "'", `\'`))
	list, err := d.svc.Files.List().Spaces(appDataFolder).Q(q).Fields("files(id, name)").PageSize(1).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("drive list %s: %w", name, err)
	}
	if len(list.Files) == 0 {
		return "", nil
	}
	return list.Files[0].Id, nil
}

func (d *driveAppData) download(ctx context.Context, id string) ([]byte, error) {
	resp, err := d.svc.Files.Get(id).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("drive download %s: %w", id, err)
	}
	defer func() { _ = resp.Body.Close() }()
	return io.ReadAll(resp.Body)
}

func (d *driveAppData) create(ctx context.Context, name string, body []byte) error {
	f := &drive.File{Name: name, Parents: []string{appDataFolder}, MimeType: "application/json"}
	if _, err := d.svc.Files.Create(f).Media(bytes.NewReader(body)).Context(ctx).Do(); err != nil {
		return fmt.Errorf("drive create %s: %w", name, err)
	}
	return nil
}

func (d *driveAppData) update(ctx context.Context, id string, body []byte) error {
	if _, err := d.svc.Files.Update(id, &drive.File{}).Media(bytes.NewReader(body)).Context(ctx).Do(); err != nil {
		return fmt.Errorf("drive update %s: %w", id, err)
	}
	return nil
}

func (d *driveAppData) remove(ctx context.Context, id string) error {
	if err := d.svc.Files.Delete(id).Context(ctx).Do(); err != nil {
		return fmt.Errorf("drive delete %s: %w", id, err)
	}
	return nil
}

// RecordTokenStore keeps tokens in the local record store, for deployments
// without a Drive credential.
type RecordTokenStore struct {
	tokens *storage.Collection[StoredToken]
}

const TokenCollection = "google_tokens"

func NewRecordTokenStore(s storage.Store) *RecordTokenStore {
	return &RecordTokenStore{tokens: storage.NewCollection[StoredToken](s, TokenCollection)}
}

func (s *RecordTokenStore) Load(ctx context.Context, userID string) (*oauth2.Token, error) {
	st, err := s.tokens.Get(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNoToken
	}
	if err != nil {
		return nil, err
	}
	return st.OAuth(), nil
}

func (s *RecordTokenStore) Save(ctx context.Context, userID string, tok *oauth2.Token) error {
	st := FromOAuth(tok)
	if st.RefreshToken == "" {
		if prev, err := s.tokens.Get(ctx, userID); err == nil {
			st.RefreshToken = prev.RefreshToken
		}
	}
	return s.tokens.Upsert(ctx, userID, st)
}

func (s *RecordTokenStore) Delete(ctx context.Context, userID string) error {
	err := s.tokens.Delete(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	return err
}
