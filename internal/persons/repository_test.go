package persons

//go:generate mockgen -source=pictures.go -destination=mocks/mocks.go -package=mocks PictureStore,ObjectLister

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/your-org/persondir/internal/apperr"
	"github.com/your-org/persondir/internal/cpr"
	"github.com/your-org/persondir/internal/friends"
	"github.com/your-org/persondir/internal/models"
	"github.com/your-org/persondir/internal/persons/mocks"
	"github.com/your-org/persondir/internal/storage"
)

const inlinePNG = "data:image/png;base64,aGVsbG8="

type RepositorySuite struct {
	suite.Suite
	ctx      context.Context
	ctrl     *gomock.Controller
	pictures *mocks.MockPictureStore
	store    *storage.MemoryStore
	graph    *friends.Manager
	repo     *Repository
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositorySuite))
}

func (s *RepositorySuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.pictures = mocks.NewMockPictureStore(s.ctrl)
	s.store = storage.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.graph = friends.NewManager(s.store, friends.WithLogger(logger))
	s.repo = NewRepository(s.store, s.pictures, s.graph,
		WithCodec(cpr.NewFixed(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))),
		WithLogger(logger),
	)
}

func (s *RepositorySuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *RepositorySuite) count() int {
	n, err := s.store.CountPersons(s.ctx)
	s.Require().NoError(err)
	return n
}

func (s *RepositorySuite) TestCreateRequiresUsernameAndCPR() {
	for _, in := range []Input{
		{Username: "", CPR: "150688-1234"},
		{Username: "alice", CPR: ""},
		{Username: "   ", CPR: "150688-1234"},
		{Username: "alice", CPR: "\t"},
	} {
		_, err := s.repo.Create(s.ctx, in)
		s.ErrorIs(err, apperr.ErrValidation)
	}
	s.Zero(s.count())
}

func (s *RepositorySuite) TestCreateDerivesStarSignAndTrims() {
	p, err := s.repo.Create(s.ctx, Input{Username: "  alice ", CPR: " 150688-1234 ", ProfilePicture: "https://cdn.example.com/a.png"})
	s.Require().NoError(err)

	s.Equal("alice", p.Username)
	s.Equal("150688-1234", p.CPR)
	s.Equal("Gemini", p.StarSign)
	s.Equal("https://cdn.example.com/a.png", p.ProfilePicture)
	s.Empty(p.FriendIDs)
}

func (s *RepositorySuite) TestCreateAcceptsUnparseableCPR() {
	p, err := s.repo.Create(s.ctx, Input{Username: "bob", CPR: "not-a-date"})
	s.Require().NoError(err)
	s.Empty(p.StarSign)
	s.Equal(1, s.count())
}

func (s *RepositorySuite) TestCreateUploadsInlinePicture() {
	s.pictures.EXPECT().UploadDataURI(gomock.Any(), inlinePNG).Return("abc.png", nil)

	p, err := s.repo.Create(s.ctx, Input{Username: "carol", CPR: "200392-9012", ProfilePicture: inlinePNG})
	s.Require().NoError(err)
	s.Equal("abc.png", p.ProfilePicture)
}

func (s *RepositorySuite) TestCreateUploadFailure() {
	s.pictures.EXPECT().UploadDataURI(gomock.Any(), inlinePNG).Return("", errors.New("bucket unavailable"))

	_, err := s.repo.Create(s.ctx, Input{Username: "carol", CPR: "200392-9012", ProfilePicture: inlinePNG})
	s.Require().ErrorIs(err, apperr.ErrStorage)
	s.Contains(err.Error(), "Error uploading profile picture: bucket unavailable")
	s.Zero(s.count())
}

func (s *RepositorySuite) TestGet() {
	created, err := s.repo.Create(s.ctx, Input{Username: "dave", CPR: "101075-3456"})
	s.Require().NoError(err)

	got, err := s.repo.Get(s.ctx, created.ID.String())
	s.Require().NoError(err)
	s.Equal(created.ID, got.ID)

	_, err = s.repo.Get(s.ctx, "nope")
	s.ErrorIs(err, apperr.ErrInvalidID)

	_, err = s.repo.Get(s.ctx, uuid.NewString())
	s.ErrorIs(err, apperr.ErrNotFound)
}

func (s *RepositorySuite) TestUpdateRederivesStarSignAndKeepsFriends() {
	a, err := s.repo.Create(s.ctx, Input{Username: "alice", CPR: "150688-1234"})
	s.Require().NoError(err)
	b, err := s.repo.Create(s.ctx, Input{Username: "bob", CPR: "100195-1234"})
	s.Require().NoError(err)
	_, err = s.graph.AddFriend(s.ctx, a.ID.String(), b.ID.String())
	s.Require().NoError(err)

	got, err := s.repo.Update(s.ctx, a.ID.String(), Input{Username: "alicia", CPR: "010190-1234"})
	s.Require().NoError(err)
	s.Equal("alicia", got.Username)
	s.Equal("Capricorn", got.StarSign)
	s.Equal([]uuid.UUID{b.ID}, got.FriendIDs)

	got, err = s.repo.Update(s.ctx, a.ID.String(), Input{Username: "alicia", CPR: "garbage"})
	s.Require().NoError(err)
	s.Empty(got.StarSign)
}

func (s *RepositorySuite) TestUpdateReplacesManagedPicture() {
	s.pictures.EXPECT().UploadDataURI(gomock.Any(), inlinePNG).Return("old.png", nil)
	p, err := s.repo.Create(s.ctx, Input{Username: "eve", CPR: "051200-7890", ProfilePicture: inlinePNG})
	s.Require().NoError(err)

	gomock.InOrder(
		s.pictures.EXPECT().UploadDataURI(gomock.Any(), inlinePNG).Return("new.png", nil),
		s.pictures.EXPECT().DeleteObject(gomock.Any(), "old.png").Return(errors.New("delete failed")),
	)

	got, err := s.repo.Update(s.ctx, p.ID.String(), Input{Username: "eve", CPR: "051200-7890", ProfilePicture: inlinePNG})
	s.Require().NoError(err, "old picture deletion failure is not fatal")
	s.Equal("new.png", got.ProfilePicture)
}

func (s *RepositorySuite) TestUpdateKeepsExternalPictureOnReplace() {
	p, err := s.repo.Create(s.ctx, Input{Username: "eve", CPR: "051200-7890", ProfilePicture: "http://example.com/me.jpg"})
	s.Require().NoError(err)

	// No DeleteObject expectation: external URLs are never deleted.
	s.pictures.EXPECT().UploadDataURI(gomock.Any(), inlinePNG).Return("new.png", nil)

	got, err := s.repo.Update(s.ctx, p.ID.String(), Input{Username: "eve", CPR: "051200-7890", ProfilePicture: inlinePNG})
	s.Require().NoError(err)
	s.Equal("new.png", got.ProfilePicture)
}

func (s *RepositorySuite) TestUpdateUploadFailureLeavesRecord() {
	s.pictures.EXPECT().UploadDataURI(gomock.Any(), inlinePNG).Return("old.png", nil)
	p, err := s.repo.Create(s.ctx, Input{Username: "frank", CPR: "140585-2345", ProfilePicture: inlinePNG})
	s.Require().NoError(err)

	s.pictures.EXPECT().UploadDataURI(gomock.Any(), inlinePNG).Return("", errors.New("boom"))

	_, err = s.repo.Update(s.ctx, p.ID.String(), Input{Username: "franky", CPR: "140585-2345", ProfilePicture: inlinePNG})
	s.Require().ErrorIs(err, apperr.ErrStorage)

	got, err := s.repo.Get(s.ctx, p.ID.String())
	s.Require().NoError(err)
	s.Equal("frank", got.Username)
	s.Equal("old.png", got.ProfilePicture)
}

func (s *RepositorySuite) TestUpdateEchoedURLKeepsKey() {
	s.pictures.EXPECT().UploadDataURI(gomock.Any(), inlinePNG).Return("3f2a.png", nil)
	p, err := s.repo.Create(s.ctx, Input{Username: "grace", CPR: "200770-6789", ProfilePicture: inlinePNG})
	s.Require().NoError(err)

	echoed := "http://localhost:9000/profile-pictures/3f2a.png?X-Amz-Signature=abc"
	got, err := s.repo.Update(s.ctx, p.ID.String(), Input{Username: "grace", CPR: "200770-6789", ProfilePicture: echoed})
	s.Require().NoError(err)
	s.Equal("3f2a.png", got.ProfilePicture)
}

func (s *RepositorySuite) TestUpdateErrors() {
	_, err := s.repo.Update(s.ctx, "bad", Input{})
	s.ErrorIs(err, apperr.ErrInvalidID)

	_, err = s.repo.Update(s.ctx, uuid.NewString(), Input{Username: "x", CPR: "y"})
	s.ErrorIs(err, apperr.ErrNotFound)
}

func (s *RepositorySuite) TestDeleteCascadesAndRemovesPicture() {
	s.pictures.EXPECT().UploadDataURI(gomock.Any(), inlinePNG).Return("a.png", nil)
	a, err := s.repo.Create(s.ctx, Input{Username: "alice", CPR: "150688-1234", ProfilePicture: inlinePNG})
	s.Require().NoError(err)
	b, err := s.repo.Create(s.ctx, Input{Username: "bob", CPR: "100195-1234"})
	s.Require().NoError(err)
	c, err := s.repo.Create(s.ctx, Input{Username: "carol", CPR: "200392-9012"})
	s.Require().NoError(err)
	_, err = s.graph.AddFriend(s.ctx, a.ID.String(), b.ID.String())
	s.Require().NoError(err)
	_, err = s.store.AddFriendID(s.ctx, c.ID, a.ID)
	s.Require().NoError(err)

	s.pictures.EXPECT().DeleteObject(gomock.Any(), "a.png").Return(errors.New("gone"))

	s.Require().NoError(s.repo.Delete(s.ctx, a.ID.String()))

	_, err = s.repo.Get(s.ctx, a.ID.String())
	s.ErrorIs(err, apperr.ErrNotFound)
	err = s.store.ForEachPerson(s.ctx, func(p *models.Person) error {
		s.False(p.HasFriend(a.ID), "%s still references deleted person", p.Username)
		return nil
	})
	s.Require().NoError(err)
}

func (s *RepositorySuite) TestDeleteErrors() {
	s.ErrorIs(s.repo.Delete(s.ctx, "bad"), apperr.ErrInvalidID)
	s.ErrorIs(s.repo.Delete(s.ctx, uuid.NewString()), apperr.ErrNotFound)
}

// lockingStore records the order of the calls Delete makes inside its
// transaction.
type lockingStore struct {
	*storage.MemoryStore
	calls []string
}

func (l *lockingStore) WithinTx(_ context.Context, fn func(tx storage.PersonStore) error) error {
	l.calls = append(l.calls, "begin")
	err := fn(l)
	l.calls = append(l.calls, "end")
	return err
}

func (l *lockingStore) LockPerson(ctx context.Context, id uuid.UUID) (*models.Person, error) {
	l.calls = append(l.calls, "lock")
	return l.MemoryStore.LockPerson(ctx, id)
}

func (l *lockingStore) RemoveFriendReferences(ctx context.Context, id uuid.UUID) (int64, error) {
	l.calls = append(l.calls, "cascade")
	return l.MemoryStore.RemoveFriendReferences(ctx, id)
}

func (l *lockingStore) DeletePerson(ctx context.Context, id uuid.UUID) (bool, error) {
	l.calls = append(l.calls, "delete")
	return l.MemoryStore.DeletePerson(ctx, id)
}

func (s *RepositorySuite) TestDeleteLocksRecordBeforeCascade() {
	ls := &lockingStore{MemoryStore: s.store}
	repo := NewRepository(ls, s.pictures, friends.NewManager(ls))

	a, err := repo.Create(s.ctx, Input{Username: "alice", CPR: "150688-1234"})
	s.Require().NoError(err)

	s.Require().NoError(repo.Delete(s.ctx, a.ID.String()))
	s.Equal([]string{"begin", "lock", "cascade", "delete", "end"}, ls.calls)

	ls.calls = nil
	s.ErrorIs(repo.Delete(s.ctx, a.ID.String()), apperr.ErrNotFound)
	s.Equal([]string{"begin", "lock", "end"}, ls.calls, "nothing written for a missing record")
}

func (s *RepositorySuite) TestNilPictureStoreRejectsUploads() {
	repo := NewRepository(s.store, nil, s.graph)
	_, err := repo.Create(s.ctx, Input{Username: "h", CPR: "150688-1234", ProfilePicture: inlinePNG})
	s.ErrorIs(err, apperr.ErrStorage)
}
