package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/rafaeelnunesf/api-bate-papo-uol/internal/service"
	"github.com/rafaeelnunesf/api-bate-papo-uol/internal/store"
	"github.com/rafaeelnunesf/api-bate-papo-uol/internal/validator"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mem := store.NewMemoryStore()
	svc := service.NewChatService(mem, mem)

	router := gin.New()
	NewHandler(svc, validator.New()).RegisterRoutes(router)
	return router
}

func do(router *gin.Engine, method, path, user, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set("User", user)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func dataOf(t *testing.T, w *httptest.ResponseRecorder) json.RawMessage {
	t.Helper()
	var body struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Data
}

func TestJoin(t *testing.T) {
	req := require.New(t)
	router := newTestRouter(t)

	w := do(router, http.MethodPost, "/participants", "", `{"name":"Ana"}`)
	req.Equal(http.StatusCreated, w.Code)

	// Second join of the same name conflicts.
	w = do(router, http.MethodPost, "/participants", "", `{"name":"Ana"}`)
	req.Equal(http.StatusConflict, w.Code)

	// Malformed payload is rejected before any mutation.
	w = do(router, http.MethodPost, "/participants", "", `{"name":""}`)
	req.Equal(http.StatusUnprocessableEntity, w.Code)

	w = do(router, http.MethodGet, "/participants", "", "")
	req.Equal(http.StatusOK, w.Code)

	var participants []struct {
		Name       string `json:"name"`
		LastStatus int64  `json:"lastStatus"`
	}
	req.NoError(json.Unmarshal(dataOf(t, w), &participants))
	req.Len(participants, 1)
	req.Equal("Ana", participants[0].Name)
}

func TestHeartbeat(t *testing.T) {
	req := require.New(t)
	router := newTestRouter(t)

	do(router, http.MethodPost, "/participants", "", `{"name":"Ana"}`)

	w := do(router, http.MethodPost, "/status", "Ana", "")
	req.Equal(http.StatusOK, w.Code)

	w = do(router, http.MethodPost, "/status", "Ghost", "")
	req.Equal(http.StatusNotFound, w.Code)

	w = do(router, http.MethodPost, "/status", "", "")
	req.Equal(http.StatusUnprocessableEntity, w.Code)
}

func TestPostMessage(t *testing.T) {
	req := require.New(t)
	router := newTestRouter(t)

	do(router, http.MethodPost, "/participants", "", `{"name":"Ana"}`)

	w := do(router, http.MethodPost, "/messages", "Ana", `{"to":"Todos","text":"hi","type":"message"}`)
	req.Equal(http.StatusCreated, w.Code)

	// Unknown author conflicts.
	w = do(router, http.MethodPost, "/messages", "Ghost", `{"to":"Todos","text":"hi","type":"message"}`)
	req.Equal(http.StatusConflict, w.Code)

	// Invalid type is malformed.
	w = do(router, http.MethodPost, "/messages", "Ana", `{"to":"Todos","text":"hi","type":"status"}`)
	req.Equal(http.StatusUnprocessableEntity, w.Code)

	// Missing identity header.
	w = do(router, http.MethodPost, "/messages", "", `{"to":"Todos","text":"hi","type":"message"}`)
	req.Equal(http.StatusUnprocessableEntity, w.Code)
}

func TestListMessages(t *testing.T) {
	req := require.New(t)
	router := newTestRouter(t)

	do(router, http.MethodPost, "/participants", "", `{"name":"Ana"}`)
	do(router, http.MethodPost, "/participants", "", `{"name":"Bob"}`)
	do(router, http.MethodPost, "/participants", "", `{"name":"Carol"}`)

	do(router, http.MethodPost, "/messages", "Ana", `{"to":"Todos","text":"hi all","type":"message"}`)
	do(router, http.MethodPost, "/messages", "Carol", `{"to":"Ana","text":"secret","type":"private_message"}`)

	w := do(router, http.MethodGet, "/messages", "Bob", "")
	req.Equal(http.StatusOK, w.Code)

	var messages []struct {
		From string `json:"from"`
		To   string `json:"to"`
		Text string `json:"text"`
	}
	req.NoError(json.Unmarshal(dataOf(t, w), &messages))
	for _, m := range messages {
		req.NotEqual("secret", m.Text)
	}
	// Bob sees the two join notices and the broadcast.
	req.Len(messages, 4)

	// Most recent first with limit.
	w = do(router, http.MethodGet, "/messages?limit=1", "Bob", "")
	req.Equal(http.StatusOK, w.Code)
	req.NoError(json.Unmarshal(dataOf(t, w), &messages))
	req.Len(messages, 1)
	req.Equal("hi all", messages[0].Text)

	w = do(router, http.MethodGet, "/messages?limit=zero", "Bob", "")
	req.Equal(http.StatusUnprocessableEntity, w.Code)

	w = do(router, http.MethodGet, "/messages", "Ghost", "")
	req.Equal(http.StatusConflict, w.Code)
}

func TestDeleteMessage(t *testing.T) {
	req := require.New(t)
	router := newTestRouter(t)

	do(router, http.MethodPost, "/participants", "", `{"name":"Ana"}`)
	do(router, http.MethodPost, "/participants", "", `{"name":"Bob"}`)

	w := do(router, http.MethodPost, "/messages", "Ana", `{"to":"Todos","text":"oops","type":"message"}`)
	req.Equal(http.StatusCreated, w.Code)

	var msg struct {
		ID string `json:"id"`
	}
	req.NoError(json.Unmarshal(dataOf(t, w), &msg))
	req.NotEmpty(msg.ID)

	w = do(router, http.MethodDelete, "/messages/"+msg.ID, "Bob", "")
	req.Equal(http.StatusUnauthorized, w.Code)

	w = do(router, http.MethodDelete, "/messages/"+msg.ID, "Ana", "")
	req.Equal(http.StatusOK, w.Code)

	w = do(router, http.MethodDelete, "/messages/"+msg.ID, "Ana", "")
	req.Equal(http.StatusNotFound, w.Code)
}

func TestHealthCheck(t *testing.T) {
	req := require.New(t)
	router := newTestRouter(t)

	w := do(router, http.MethodGet, "/health", "", "")
	req.Equal(http.StatusOK, w.Code)
}
