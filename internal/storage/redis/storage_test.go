package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/realmgate/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.SessionTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) TestSaveAndGetSession() {
	created := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	sess := model.NewSession("sess-1", created)
	s.Require().NoError(sess.Set("csrf_token", map[string]string{"value": "abc"}))

	err := s.storage.SaveSession(s.ctx, sess)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetSession(s.ctx, "sess-1")
	s.Require().NoError(err)
	s.Equal(sess.ID, retrieved.ID)
	s.True(created.Equal(retrieved.CreatedAt))

	var token map[string]string
	ok, err := retrieved.Get("csrf_token", &token)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal("abc", token["value"])
}

func (s *StorageSuite) TestGetSessionNotFound() {
	_, err := s.storage.GetSession(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *StorageSuite) TestDeleteSession() {
	_ = s.storage.SaveSession(s.ctx, model.NewSession("sess-1", time.Now()))

	err := s.storage.DeleteSession(s.ctx, "sess-1")
	s.Require().NoError(err)

	_, err = s.storage.GetSession(s.ctx, "sess-1")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *StorageSuite) TestSessionHasTTL() {
	_ = s.storage.SaveSession(s.ctx, model.NewSession("sess-1", time.Now()))

	ttl := s.mini.TTL(sessionKey("sess-1"))
	s.Equal(time.Hour, ttl)
}

func (s *StorageSuite) TestSessionExpires() {
	_ = s.storage.SaveSession(s.ctx, model.NewSession("sess-1", time.Now()))

	s.mini.FastForward(2 * time.Hour)

	_, err := s.storage.GetSession(s.ctx, "sess-1")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *StorageSuite) TestUnreadableSessionIsDiscarded() {
	s.Require().NoError(s.mini.Set(sessionKey("sess-1"), "{not json"))

	_, err := s.storage.GetSession(s.ctx, "sess-1")
	s.ErrorIs(err, model.ErrSessionNotFound)
	s.ErrorIs(err, model.ErrSessionCorrupt)
	s.False(s.mini.Exists(sessionKey("sess-1")))
}

func (s *StorageSuite) TestKeyFormat() {
	s.Equal("realmgate:session:abc", sessionKey("abc"))
}

func (s *StorageSuite) TestPing() {
	s.NoError(s.storage.Ping(s.ctx))

	s.mini.Close()
	s.Error(s.storage.Ping(s.ctx))
}

func (s *StorageSuite) TestNewConnectsViaURL() {
	store, err := New(Config{URL: "redis://" + s.mini.Addr(), PoolSize: 2})
	s.Require().NoError(err)
	defer func() { _ = store.Close() }()

	s.NoError(store.Ping(s.ctx))
}

func (s *StorageSuite) TestNewRejectsBadURL() {
	_, err := New(Config{URL: "not a url"})
	s.Error(err)
}
