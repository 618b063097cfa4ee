package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"jotter-notes/jotter/database"
	"jotter-notes/jotter/middleware"
	"jotter-notes/jotter/models"
	"jotter-notes/jotter/services"
	"jotter-notes/jotter/testutils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router *gin.Engine
	db     *database.Database
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutils.SetupTestDB(t)

	authService := services.NewAuthService("test-secret", 1)
	userService := services.NewUserService(authService)
	noteService := services.NewNoteService()
	trashService := services.NewTrashService(30)

	router := gin.New()
	RegisterUserRoutes(router, db, userService, authService)

	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware(authService))
	RegisterProfileRoutes(protected, db, userService)
	RegisterNoteRoutes(protected, db, noteService)
	RegisterTrashRoutes(protected, db, trashService)

	return &testServer{router: router, db: db}
}

func (ts *testServer) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) registerUser(t *testing.T, name, email string) string {
	t.Helper()
	w := ts.request(t, http.MethodPost, "/api/users", "", gin.H{
		"displayName": name,
		"email":       email,
		"password":    "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decodeNote(t *testing.T, w *httptest.ResponseRecorder) models.Note {
	t.Helper()
	var note models.Note
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &note))
	return note
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t)

	w := ts.request(t, http.MethodPost, "/api/users", "", gin.H{
		"displayName": "Alice",
		"email":       "alice@example.com",
		"password":    "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// Duplicate email is rejected.
	w = ts.request(t, http.MethodPost, "/api/users", "", gin.H{
		"displayName": "Alice Again",
		"email":       "alice@example.com",
		"password":    "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.request(t, http.MethodPost, "/api/users/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var login struct {
		Token       string `json:"token"`
		DisplayName string `json:"displayName"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, "Alice", login.DisplayName)

	w = ts.request(t, http.MethodPost, "/api/users/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMe(t *testing.T) {
	ts := newTestServer(t)
	token := ts.registerUser(t, "Alice", "alice@example.com")

	w := ts.request(t, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var me struct {
		Email string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, "alice@example.com", me.Email)

	w = ts.request(t, http.MethodGet, "/api/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestNotesRequireAuth(t *testing.T) {
	ts := newTestServer(t)

	w := ts.request(t, http.MethodGet, "/api/notes", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.request(t, http.MethodPost, "/api/notes", "bogus-token", gin.H{"title": "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateNote_BothEmptyRejected(t *testing.T) {
	ts := newTestServer(t)
	token := ts.registerUser(t, "Alice", "alice@example.com")

	w := ts.request(t, http.MethodPost, "/api/notes", token, gin.H{"title": "  ", "content": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNoteLifecycleOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	token := ts.registerUser(t, "Alice", "alice@example.com")

	// Create
	w := ts.request(t, http.MethodPost, "/api/notes", token, gin.H{"title": "Shop", "content": "milk"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	note := decodeNote(t, w)
	assert.False(t, note.IsPinned)

	// Pin
	w = ts.request(t, http.MethodPut, "/api/notes/"+note.ID.String(), token, gin.H{"isPinned": true})
	require.Equal(t, http.StatusOK, w.Code)
	pinned := decodeNote(t, w)
	assert.True(t, pinned.IsPinned)
	assert.Equal(t, "Shop", pinned.Title)
	assert.Equal(t, "milk", pinned.Content)

	// Trash
	w = ts.request(t, http.MethodDelete, "/api/notes/"+note.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var trashResp struct {
		MovedToTrash bool        `json:"movedToTrash"`
		Note         models.Note `json:"note"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &trashResp))
	assert.True(t, trashResp.MovedToTrash)
	assert.True(t, trashResp.Note.IsDeleted)
	assert.False(t, trashResp.Note.IsPinned)

	// Restore via partial update
	w = ts.request(t, http.MethodPut, "/api/notes/"+note.ID.String(), token, gin.H{"isDeleted": false})
	require.Equal(t, http.StatusOK, w.Code)
	restored := decodeNote(t, w)
	assert.False(t, restored.IsDeleted)
	assert.Nil(t, restored.DeletedAt)

	// Trash again, then purge
	w = ts.request(t, http.MethodDelete, "/api/notes/"+note.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.request(t, http.MethodDelete, "/api/notes/"+note.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var purgeResp struct {
		DeletedForever bool `json:"deletedForever"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &purgeResp))
	assert.True(t, purgeResp.DeletedForever)

	// Gone
	w = ts.request(t, http.MethodPut, "/api/notes/"+note.ID.String(), token, gin.H{"title": "ghost"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateNote_EmptyPurgeResponse(t *testing.T) {
	ts := newTestServer(t)
	token := ts.registerUser(t, "Alice", "alice@example.com")

	w := ts.request(t, http.MethodPost, "/api/notes", token, gin.H{"title": "Shop"})
	require.Equal(t, http.StatusCreated, w.Code)
	note := decodeNote(t, w)

	w = ts.request(t, http.MethodPut, "/api/notes/"+note.ID.String(), token, gin.H{"title": ""})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Deleted bool      `json:"deleted"`
		ID      uuid.UUID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Deleted)
	assert.Equal(t, note.ID, resp.ID)
}

func TestOwnershipOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	aliceToken := ts.registerUser(t, "Alice", "alice@example.com")
	bobToken := ts.registerUser(t, "Bob", "bob@example.com")

	w := ts.request(t, http.MethodPost, "/api/notes", aliceToken, gin.H{"title": "private"})
	require.Equal(t, http.StatusCreated, w.Code)
	note := decodeNote(t, w)

	w = ts.request(t, http.MethodGet, "/api/notes/"+note.ID.String(), bobToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.request(t, http.MethodPut, "/api/notes/"+note.ID.String(), bobToken, gin.H{"title": "stolen"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.request(t, http.MethodDelete, "/api/notes/"+note.ID.String(), bobToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Bob's own listing does not include Alice's note.
	w = ts.request(t, http.MethodGet, "/api/notes", bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var notes []models.Note
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &notes))
	assert.Empty(t, notes)
}

func TestListNotes_OnlyDeletedFilter(t *testing.T) {
	ts := newTestServer(t)
	token := ts.registerUser(t, "Alice", "alice@example.com")

	w := ts.request(t, http.MethodPost, "/api/notes", token, gin.H{"title": "keep"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.request(t, http.MethodPost, "/api/notes", token, gin.H{"title": "bin"})
	require.Equal(t, http.StatusCreated, w.Code)
	binned := decodeNote(t, w)

	w = ts.request(t, http.MethodDelete, "/api/notes/"+binned.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.request(t, http.MethodGet, "/api/notes", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var kept []models.Note
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &kept))
	require.Len(t, kept, 1)
	assert.Equal(t, "keep", kept[0].Title)

	w = ts.request(t, http.MethodGet, "/api/notes?onlyDeleted=true", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var inTrash []models.Note
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &inTrash))
	require.Len(t, inTrash, 1)
	assert.Equal(t, "bin", inTrash[0].Title)
}

func TestBulkTrashAndRestore(t *testing.T) {
	ts := newTestServer(t)
	token := ts.registerUser(t, "Alice", "alice@example.com")

	ids := []uuid.UUID{}
	for _, title := range []string{"a", "b", "c"} {
		w := ts.request(t, http.MethodPost, "/api/notes", token, gin.H{"title": title})
		require.Equal(t, http.StatusCreated, w.Code)
		ids = append(ids, decodeNote(t, w).ID)
	}

	w := ts.request(t, http.MethodPost, "/api/notes/bulk/trash", token, gin.H{"ids": ids})
	require.Equal(t, http.StatusOK, w.Code)

	var bulk struct {
		Results []services.BulkOutcome `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bulk))
	require.Len(t, bulk.Results, 3)
	for _, outcome := range bulk.Results {
		assert.True(t, outcome.OK)
	}

	w = ts.request(t, http.MethodPost, "/api/notes/bulk/restore", token, gin.H{"ids": ids[:1]})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.request(t, http.MethodGet, "/api/notes?onlyDeleted=true", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var inTrash []models.Note
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &inTrash))
	assert.Len(t, inTrash, 2)
}

func TestEmptyTrashOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	token := ts.registerUser(t, "Alice", "alice@example.com")

	w := ts.request(t, http.MethodPost, "/api/notes", token, gin.H{"title": "bin me"})
	require.Equal(t, http.StatusCreated, w.Code)
	note := decodeNote(t, w)

	w = ts.request(t, http.MethodDelete, "/api/notes/"+note.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.request(t, http.MethodDelete, "/api/trash", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.request(t, http.MethodGet, "/api/notes?onlyDeleted=true", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var inTrash []models.Note
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &inTrash))
	assert.Empty(t, inTrash)
}

func TestUpdateNote_InvalidID(t *testing.T) {
	ts := newTestServer(t)
	token := ts.registerUser(t, "Alice", "alice@example.com")

	w := ts.request(t, http.MethodPut, "/api/notes/not-a-uuid", token, gin.H{"title": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
