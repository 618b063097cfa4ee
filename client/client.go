// Package client provides a Go client for the Jotter REST API plus the
// editing-session state the UI layers share: an undo/redo history for the
// open note and a bulk-selection set.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"jotter-notes/jotter/models"
	"jotter-notes/jotter/services"

	"github.com/google/uuid"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Identity is the account payload returned by register, login and /users/me.
type Identity struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"displayName"`
	Email       string    `json:"email"`
	Token       string    `json:"token"`
}

// UpdateOutcome is the PUT /api/notes/:id response: either the saved note or
// the marker that the note became empty and was removed.
type UpdateOutcome struct {
	Deleted bool         `json:"deleted"`
	ID      uuid.UUID    `json:"id"`
	Note    *models.Note `json:"-"`
}

// DeleteOutcome is the DELETE /api/notes/:id response.
type DeleteOutcome struct {
	MovedToTrash   bool         `json:"movedToTrash"`
	DeletedForever bool         `json:"deletedForever"`
	Note           *models.Note `json:"note"`
}

// Client talks to the Jotter API. The bearer token is carried explicitly on
// the client, never read from ambient state.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

// SetToken sets the bearer credential used on subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(data, &errBody)
		return &APIError{StatusCode: resp.StatusCode, Message: errBody.Error}
	}

	if out != nil {
		return json.Unmarshal(data, out)
	}
	return nil
}

// Register creates an account and stores the returned token on the client.
func (c *Client) Register(ctx context.Context, displayName, email, password string) (Identity, error) {
	var identity Identity
	err := c.do(ctx, http.MethodPost, "/api/users", map[string]string{
		"displayName": displayName,
		"email":       email,
		"password":    password,
	}, &identity)
	if err != nil {
		return Identity{}, err
	}
	c.token = identity.Token
	return identity, nil
}

// Login authenticates and stores the returned token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (Identity, error) {
	var identity Identity
	err := c.do(ctx, http.MethodPost, "/api/users/login", map[string]string{
		"email":    email,
		"password": password,
	}, &identity)
	if err != nil {
		return Identity{}, err
	}
	c.token = identity.Token
	return identity, nil
}

func (c *Client) Me(ctx context.Context) (Identity, error) {
	var identity Identity
	err := c.do(ctx, http.MethodGet, "/api/users/me", nil, &identity)
	return identity, err
}

func (c *Client) CreateNote(ctx context.Context, input services.CreateNoteInput) (models.Note, error) {
	var note models.Note
	err := c.do(ctx, http.MethodPost, "/api/notes", input, &note)
	return note, err
}

func (c *Client) GetNotes(ctx context.Context, onlyDeleted bool) ([]models.Note, error) {
	path := "/api/notes"
	if onlyDeleted {
		path += "?onlyDeleted=true"
	}
	var notes []models.Note
	err := c.do(ctx, http.MethodGet, path, nil, &notes)
	return notes, err
}

// UpdateNote sends a partial update and decodes both possible response
// shapes.
func (c *Client) UpdateNote(ctx context.Context, id uuid.UUID, update models.NoteUpdate) (UpdateOutcome, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPut, "/api/notes/"+id.String(), update, &raw); err != nil {
		return UpdateOutcome{}, err
	}

	var outcome UpdateOutcome
	if err := json.Unmarshal(raw, &outcome); err == nil && outcome.Deleted {
		return outcome, nil
	}

	var note models.Note
	if err := json.Unmarshal(raw, &note); err != nil {
		return UpdateOutcome{}, err
	}
	return UpdateOutcome{ID: note.ID, Note: &note}, nil
}

func (c *Client) DeleteNote(ctx context.Context, id uuid.UUID) (DeleteOutcome, error) {
	var outcome DeleteOutcome
	err := c.do(ctx, http.MethodDelete, "/api/notes/"+id.String(), nil, &outcome)
	return outcome, err
}

func (c *Client) bulk(ctx context.Context, action string, ids []uuid.UUID) ([]services.BulkOutcome, error) {
	var response struct {
		Results []services.BulkOutcome `json:"results"`
	}
	err := c.do(ctx, http.MethodPost, "/api/notes/bulk/"+action, map[string]interface{}{"ids": ids}, &response)
	return response.Results, err
}

func (c *Client) TrashMany(ctx context.Context, ids []uuid.UUID) ([]services.BulkOutcome, error) {
	return c.bulk(ctx, "trash", ids)
}

func (c *Client) RestoreMany(ctx context.Context, ids []uuid.UUID) ([]services.BulkOutcome, error) {
	return c.bulk(ctx, "restore", ids)
}

func (c *Client) PurgeMany(ctx context.Context, ids []uuid.UUID) ([]services.BulkOutcome, error) {
	return c.bulk(ctx, "purge", ids)
}

func (c *Client) EmptyTrash(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/trash", nil, nil)
}
