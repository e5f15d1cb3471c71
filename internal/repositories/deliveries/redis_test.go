package deliveries_test

import (
	"context"
	stderrors "errors"
	"strconv"
	"testing"
	"time"

	"github.com/KirkDiggler/dispatcher/internal/errors"
	"github.com/KirkDiggler/dispatcher/internal/repositories/deliveries"
	"github.com/KirkDiggler/dispatcher/internal/repositories/deliveries/mocks"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type RedisRepoTestSuite struct {
	suite.Suite
	mockClient   *redis.Client
	mock         redismock.ClientMock
	repo         deliveries.Repository
	mockCtrl     *gomock.Controller
	timeProvider *mocks.MockTimeProvider
}

func (s *RedisRepoTestSuite) SetupTest() {
	s.mockClient, s.mock = redismock.NewClientMock()
	s.mockCtrl = gomock.NewController(s.T())
	s.timeProvider = mocks.NewMockTimeProvider(s.mockCtrl)

	repo, err := deliveries.NewRedisRepository(&deliveries.RedisConfig{
		Client:       s.mockClient,
		TimeProvider: s.timeProvider,
	})
	s.Require().NoError(err)
	s.repo = repo
}

func (s *RedisRepoTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
}

func TestRedisRepoTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepoTestSuite))
}

func (s *RedisRepoTestSuite) TestNewRedisRepository_RequiresClient() {
	_, err := deliveries.NewRedisRepository(nil)
	s.True(errors.IsInvalidArgument(err))

	_, err = deliveries.NewRedisRepository(&deliveries.RedisConfig{})
	s.True(errors.IsInvalidArgument(err))
}

func (s *RedisRepoTestSuite) TestRecord() {
	ctx := context.Background()
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	s.timeProvider.EXPECT().Now().Return(now)

	// Happy path
	s.mock.ExpectHIncrBy("deliveries:event:score", "publishes", 1).SetVal(1)
	s.mock.ExpectHIncrBy("deliveries:event:score", "deliveries", 0).SetVal(0)
	s.mock.ExpectHIncrBy("deliveries:event:score", "failures", 0).SetVal(0)
	s.mock.ExpectHSet("deliveries:event:score", "last_published_at", now.UnixNano()).SetVal(1)
	s.mock.ExpectSAdd("deliveries:events", "score").SetVal(1)

	err := s.repo.Record(ctx, "score", deliveries.Delta{Publishes: 1})
	s.NoError(err)

	// Deliveries only do not touch the publish time
	s.mock.ExpectHIncrBy("deliveries:event:score", "publishes", 0).SetVal(1)
	s.mock.ExpectHIncrBy("deliveries:event:score", "deliveries", 1).SetVal(1)
	s.mock.ExpectHIncrBy("deliveries:event:score", "failures", 1).SetVal(1)
	s.mock.ExpectSAdd("deliveries:events", "score").SetVal(0)

	err = s.repo.Record(ctx, "score", deliveries.Delta{Deliveries: 1, Failures: 1})
	s.NoError(err)

	// Input validation
	s.True(errors.IsInvalidArgument(s.repo.Record(ctx, "", deliveries.Delta{Publishes: 1})))
	s.NoError(s.repo.Record(ctx, "score", deliveries.Delta{}))
}

func (s *RedisRepoTestSuite) TestRecord_DependencyError() {
	ctx := context.Background()

	s.mock.ExpectHIncrBy("deliveries:event:score", "publishes", 0).SetErr(stderrors.New("redis error"))

	err := s.repo.Record(ctx, "score", deliveries.Delta{Deliveries: 1})
	s.Error(err)
	s.True(errors.IsUnavailable(err))
	s.Equal("score", errors.GetMeta(err)["event"])
}

func (s *RedisRepoTestSuite) TestGet() {
	ctx := context.Background()
	published := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

	s.mock.ExpectHGetAll("deliveries:event:score").SetVal(map[string]string{
		"publishes":         "3",
		"deliveries":        "6",
		"failures":          "1",
		"last_published_at": strconv.FormatInt(published.UnixNano(), 10),
	})

	stat, err := s.repo.Get(ctx, "score")
	s.Require().NoError(err)
	s.Equal(&deliveries.Stat{
		Event:           "score",
		Publishes:       3,
		Deliveries:      6,
		Failures:        1,
		LastPublishedAt: published,
	}, stat)
}

func (s *RedisRepoTestSuite) TestGet_NotFound() {
	s.mock.ExpectHGetAll("deliveries:event:missing").SetVal(map[string]string{})

	_, err := s.repo.Get(context.Background(), "missing")
	s.True(errors.IsNotFound(err))
}

func (s *RedisRepoTestSuite) TestGet_Corrupt() {
	s.mock.ExpectHGetAll("deliveries:event:score").SetVal(map[string]string{
		"publishes": "many",
	})

	_, err := s.repo.Get(context.Background(), "score")
	s.True(errors.IsInternal(err))
	s.Equal("publishes", errors.GetMeta(err)["field"])
}

func (s *RedisRepoTestSuite) TestGet_DependencyError() {
	s.mock.ExpectHGetAll("deliveries:event:score").SetErr(stderrors.New("redis error"))

	_, err := s.repo.Get(context.Background(), "score")
	s.True(errors.IsUnavailable(err))
}

func (s *RedisRepoTestSuite) TestList() {
	ctx := context.Background()

	s.mock.ExpectSMembers("deliveries:events").SetVal([]string{"score"})
	s.mock.ExpectHGetAll("deliveries:event:score").SetVal(map[string]string{
		"publishes":  "2",
		"deliveries": "4",
	})

	stats, err := s.repo.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(stats, 1)
	s.Equal("score", stats[0].Event)
	s.Equal(int64(2), stats[0].Publishes)
	s.Equal(int64(4), stats[0].Deliveries)
	s.True(stats[0].LastPublishedAt.IsZero())
}

func (s *RedisRepoTestSuite) TestList_Empty() {
	s.mock.ExpectSMembers("deliveries:events").SetVal([]string{})

	stats, err := s.repo.List(context.Background())
	s.Require().NoError(err)
	s.Empty(stats)
}

func (s *RedisRepoTestSuite) TestList_SkipsEventResetMidway() {
	s.mock.ExpectSMembers("deliveries:events").SetVal([]string{"score"})
	s.mock.ExpectHGetAll("deliveries:event:score").SetVal(map[string]string{})

	stats, err := s.repo.List(context.Background())
	s.Require().NoError(err)
	s.Empty(stats)
}

func (s *RedisRepoTestSuite) TestList_GetFails() {
	s.mock.ExpectSMembers("deliveries:events").SetVal([]string{"score"})
	s.mock.ExpectHGetAll("deliveries:event:score").SetErr(stderrors.New("redis error"))

	_, err := s.repo.List(context.Background())
	s.True(errors.IsUnavailable(err))
}

func (s *RedisRepoTestSuite) TestReset() {
	s.mock.ExpectDel("deliveries:event:score").SetVal(1)
	s.mock.ExpectSRem("deliveries:events", "score").SetVal(1)

	s.NoError(s.repo.Reset(context.Background(), "score"))
}
