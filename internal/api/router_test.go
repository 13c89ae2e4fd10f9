package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/your-org/persondir/internal/api/handlers"
	"github.com/your-org/persondir/internal/cpr"
	"github.com/your-org/persondir/internal/friends"
	"github.com/your-org/persondir/internal/listing"
	"github.com/your-org/persondir/internal/persons"
	"github.com/your-org/persondir/internal/storage"
	"github.com/your-org/persondir/pkg/dto"
)

type fakePictures struct {
	n       int
	deleted []string
}

func (f *fakePictures) UploadDataURI(_ context.Context, dataURI string) (string, error) {
	if _, err := storage.ParseDataURI(dataURI); err != nil {
		return "", err
	}
	f.n++
	return fmt.Sprintf("pic-%d.png", f.n), nil
}

func (f *fakePictures) DeleteObject(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakePictures) PresignedURL(_ context.Context, key string) (string, error) {
	return "http://minio.local/profile-pictures/" + key + "?X-Amz-Signature=x", nil
}

type RouterSuite struct {
	suite.Suite
	store    *storage.MemoryStore
	pictures *fakePictures
	handler  http.Handler
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	s.store = storage.NewMemoryStore()
	s.pictures = &fakePictures{}
	s.handler = s.newRouter("", nil)
}

func (s *RouterSuite) newRouter(apiKey string, checks []handlers.Check) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	codec := cpr.NewFixed(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	graph := friends.NewManager(s.store, friends.WithLogger(logger))
	presenter := persons.NewPresenter(s.pictures, codec, logger)
	return NewRouter(RouterConfig{
		APIKey:     apiKey,
		Repository: persons.NewRepository(s.store, s.pictures, graph, persons.WithCodec(codec), persons.WithLogger(logger)),
		Graph:      graph,
		Engine:     listing.NewEngine(s.store, presenter),
		Presenter:  presenter,
		Checks:     checks,
	})
}

func (s *RouterSuite) do(method, target string, body any) *httptest.ResponseRecorder {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		s.Require().NoError(err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func (s *RouterSuite) create(username, cprValue string) dto.PersonResponse {
	w := s.do(http.MethodPost, "/api/person", dto.PersonRequest{Username: username, CPR: cprValue})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var resp dto.PersonResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func (s *RouterSuite) decode(w *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func (s *RouterSuite) TestPersonLifecycle() {
	w := s.do(http.MethodPost, "/api/person", dto.PersonRequest{
		Username:       "Alice",
		CPR:            "150688-1234",
		ProfilePicture: "data:image/png;base64,aGVsbG8=",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var created dto.PersonResponse
	s.decode(w, &created)
	s.Equal("/api/person/"+created.ID.String(), w.Header().Get("Location"))
	s.Equal("Gemini", created.StarSign)
	s.Require().NotNil(created.Age)
	s.Equal(36, *created.Age)
	s.True(strings.HasPrefix(created.ProfilePicture, "http://minio.local/profile-pictures/pic-1.png"))
	s.NotNil(created.FriendIDs)

	w = s.do(http.MethodGet, "/api/person/"+created.ID.String(), nil)
	s.Require().Equal(http.StatusOK, w.Code)

	// Echoing the presigned URL back keeps the stored key.
	w = s.do(http.MethodPut, "/api/person/"+created.ID.String(), dto.PersonRequest{
		Username:       "Alicia",
		CPR:            "010190-1234",
		ProfilePicture: created.ProfilePicture,
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var updated dto.PersonResponse
	s.decode(w, &updated)
	s.Equal("Alicia", updated.Username)
	s.Equal("Capricorn", updated.StarSign)
	stored, err := s.store.GetPerson(context.Background(), created.ID)
	s.Require().NoError(err)
	s.Equal("pic-1.png", stored.ProfilePicture)

	w = s.do(http.MethodDelete, "/api/person/"+created.ID.String(), nil)
	s.Require().Equal(http.StatusNoContent, w.Code)
	s.Equal([]string{"pic-1.png"}, s.pictures.deleted)

	w = s.do(http.MethodGet, "/api/person/"+created.ID.String(), nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *RouterSuite) TestCreateValidation() {
	w := s.do(http.MethodPost, "/api/person", dto.PersonRequest{Username: "bob"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), "Username and CPR are required.")

	w = s.do(http.MethodPost, "/api/person", dto.PersonRequest{Username: "bob", CPR: "1", ProfilePicture: "data:image/png;base64,@@@"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), "Error uploading profile picture")

	req := httptest.NewRequest(http.MethodPost, "/api/person", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *RouterSuite) TestInvalidAndMissingIDs() {
	for _, tc := range []struct{ method, target string }{
		{http.MethodGet, "/api/person/123"},
		{http.MethodPut, "/api/person/123"},
		{http.MethodDelete, "/api/person/123"},
		{http.MethodPost, "/api/friend/123/add/" + uuid.NewString()},
		{http.MethodDelete, "/api/friend/" + uuid.NewString() + "/remove/xyz"},
	} {
		w := s.do(tc.method, tc.target, dto.PersonRequest{Username: "x", CPR: "y"})
		s.Equal(http.StatusBadRequest, w.Code, tc.target)
		s.Contains(w.Body.String(), "Invalid id format.")
	}

	w := s.do(http.MethodGet, "/api/person/"+uuid.NewString(), nil)
	s.Equal(http.StatusNotFound, w.Code)
	w = s.do(http.MethodDelete, "/api/person/"+uuid.NewString(), nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *RouterSuite) TestFriendEndpoints() {
	a, b := s.create("alice", "150688-1234"), s.create("bob", "100195-1234")

	w := s.do(http.MethodPost, "/api/friend/"+a.ID.String()+"/add/"+b.ID.String(), nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var got dto.PersonResponse
	s.decode(w, &got)
	s.Equal([]uuid.UUID{b.ID}, got.FriendIDs)

	w = s.do(http.MethodGet, "/api/person/"+b.ID.String(), nil)
	s.decode(w, &got)
	s.Equal([]uuid.UUID{a.ID}, got.FriendIDs)

	w = s.do(http.MethodPost, "/api/friend/"+a.ID.String()+"/add/"+a.ID.String(), nil)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), "cannot add yourself as a friend")

	w = s.do(http.MethodPost, "/api/friend/"+a.ID.String()+"/add/"+uuid.NewString(), nil)
	s.Equal(http.StatusNotFound, w.Code)

	w = s.do(http.MethodDelete, "/api/friend/"+b.ID.String()+"/remove/"+a.ID.String(), nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.decode(w, &got)
	s.Empty(got.FriendIDs)

	// Delete cascades into friend lists.
	s.do(http.MethodPost, "/api/friend/"+a.ID.String()+"/add/"+b.ID.String(), nil)
	s.Require().Equal(http.StatusNoContent, s.do(http.MethodDelete, "/api/person/"+a.ID.String(), nil).Code)
	w = s.do(http.MethodGet, "/api/person/"+b.ID.String(), nil)
	s.decode(w, &got)
	s.Empty(got.FriendIDs)
}

func (s *RouterSuite) TestRepairEndpoint() {
	a := s.create("alice", "150688-1234")
	_, err := s.store.AddFriendID(context.Background(), a.ID, uuid.New())
	s.Require().NoError(err)

	w := s.do(http.MethodPost, "/api/friend/repair", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var report friends.RepairReport
	s.decode(w, &report)
	s.Equal(1, report.DanglingRemoved)
}

func (s *RouterSuite) TestListing() {
	for _, name := range []string{"alice", "Bob", "carol", "Dave"} {
		s.create(name, "150688-1234")
	}

	w := s.do(http.MethodGet, "/api/person", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var page dto.PersonListResponse
	s.decode(w, &page)
	s.Equal(4, page.Total)
	s.Equal(5, page.PageSize)
	s.Equal("username", page.SortBy)
	s.Equal("asc", page.SortOrder)
	s.Len(page.Items, 4)

	w = s.do(http.MethodGet, "/api/person?sortBy=USERNAME&sortOrder=Desc&pageSize=3&skip=0", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.decode(w, &page)
	s.Equal(4, page.Total)
	s.Require().Len(page.Items, 3)
	s.Equal([]string{"Dave", "carol", "Bob"}, []string{page.Items[0].Username, page.Items[1].Username, page.Items[2].Username})

	w = s.do(http.MethodGet, "/api/person?pageSize=0", nil)
	s.decode(w, &page)
	s.Len(page.Items, 4)

	w = s.do(http.MethodGet, "/api/person?skip=abc", nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *RouterSuite) TestGreetings() {
	w := s.do(http.MethodGet, "/api/greetings", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"message":"Hello! Welcome to the Greetings API"}`, w.Body.String())

	w = s.do(http.MethodGet, "/api/greetings/Ada", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var g dto.GreetingResponse
	s.decode(w, &g)
	s.Contains(g.Message, "Ada")
}

func (s *RouterSuite) TestSystemAndAuth() {
	s.handler = s.newRouter("secret", []handlers.Check{
		{Name: "store", Ping: s.store.Ping},
		{Name: "minio", Ping: func(context.Context) error { return errors.New("unreachable") }},
	})

	s.Equal(http.StatusOK, s.do(http.MethodGet, "/healthz", nil).Code)

	w := s.do(http.MethodGet, "/readyz", nil)
	s.Equal(http.StatusServiceUnavailable, w.Code)
	s.Contains(w.Body.String(), "unreachable")

	s.Equal(http.StatusUnauthorized, s.do(http.MethodGet, "/api/person", nil).Code)

	req := httptest.NewRequest(http.MethodGet, "/api/person", nil)
	req.Header.Set("X-API-Key", "secret")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	s.Equal(http.StatusOK, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	r := NewRouter(RouterConfig{APIKey: "secret", CORSOrigins: []string{"http://localhost:3000"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/person", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Less(t, w.Code, 300)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
