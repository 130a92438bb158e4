package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"bulletin_sync/internal/config"
	"bulletin_sync/internal/domain"
	"bulletin_sync/internal/service/mocks"
	"bulletin_sync/testdata/utils"
)

type OrchestratorTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	upstream  *mocks.MockUpstream
	filters   *mocks.MockFilterStore
	bulletins *mocks.MockBulletinStore
	biddings  *mocks.MockBiddingStore
	followUps *mocks.MockFollowUpStore
	ledger    *mocks.MockLedgerStore
	publisher *mocks.MockPublisher

	orchestrator *Orchestrator
	cfg          config.SyncConfig
	logger       *slog.Logger
}

func (s *OrchestratorTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())

	s.upstream = mocks.NewMockUpstream(s.ctrl)
	s.filters = mocks.NewMockFilterStore(s.ctrl)
	s.bulletins = mocks.NewMockBulletinStore(s.ctrl)
	s.biddings = mocks.NewMockBiddingStore(s.ctrl)
	s.followUps = mocks.NewMockFollowUpStore(s.ctrl)
	s.ledger = mocks.NewMockLedgerStore(s.ctrl)
	s.publisher = mocks.NewMockPublisher(s.ctrl)

	s.cfg = config.SyncConfig{
		IncrementalBulletins: 50,
		FullPageSize:         2,
		MaxFullPages:         10,
		BatchSize:            2,
	}

	s.logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	reconciler := NewReconciler(s.biddings, s.followUps, s.publisher, s.logger)
	s.orchestrator = NewOrchestrator(
		s.upstream,
		s.filters,
		s.bulletins,
		reconciler,
		s.ledger,
		s.logger,
		s.cfg,
	)
}

func (s *OrchestratorTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestOrchestratorTestSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}

// expectLedger records the run's final status and stats.
func (s *OrchestratorTestSuite) expectLedger(kind domain.SyncKind) (*domain.SyncStatus, **domain.SyncStats, **string) {
	var status domain.SyncStatus
	var stats *domain.SyncStats
	var errMsg *string

	s.ledger.EXPECT().Start(gomock.Any(), gomock.Any(), kind, gomock.Any()).Return(int64(7), nil)
	s.ledger.EXPECT().Finish(gomock.Any(), int64(7), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ int64, st domain.SyncStatus, ss *domain.SyncStats, msg *string) error {
			status, stats, errMsg = st, ss, msg
			return nil
		},
	)

	return &status, &stats, &errMsg
}

func detailFor(bulletinID int64, biddingIDs ...int64) *domain.BulletinDetail {
	d := &domain.BulletinDetail{Bulletin: domain.Bulletin{ID: bulletinID}}
	for _, id := range biddingIDs {
		d.Biddings = append(d.Biddings, domain.Bidding{ExternalID: id, BulletinID: bulletinID})
	}
	return d
}

func (s *OrchestratorTestSuite) TestIncrementalSync_Success() {
	ctx := context.Background()
	status, stats, _ := s.expectLedger(domain.SyncIncremental)

	s.filters.EXPECT().List(ctx).Return([]domain.Filter{{ID: 1}}, nil)
	s.upstream.EXPECT().FetchBulletins(ctx, int64(1), 1, 50).Return(&domain.BulletinPage{
		Bulletins: []domain.Bulletin{{ID: 10, FilterID: 1}, {ID: 20, FilterID: 1}},
	}, nil)

	s.upstream.EXPECT().FetchBulletinDetail(gomock.Any(), int64(10)).Return(detailFor(10, 1001), nil)
	s.upstream.EXPECT().FetchBulletinDetail(gomock.Any(), int64(20)).Return(detailFor(20, 2001, 2002), nil)

	s.bulletins.EXPECT().Upsert(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, b *domain.Bulletin) error {
			s.Equal(int64(1), b.FilterID)
			return nil
		},
	).Times(2)

	s.biddings.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(int64(1), domain.Inserted, nil).Times(3)
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), true).Return(nil).Times(3)

	result, err := s.orchestrator.IncrementalSync(ctx)

	s.NoError(err)
	s.Equal(1, result.Filters)
	s.Equal(2, result.Bulletins)
	s.Equal(3, result.Biddings)
	s.Equal(3, result.Published)
	s.Equal(0, result.Errors)
	s.NotEqual(uuid.Nil, result.RunID)

	s.Equal(domain.SyncSuccess, *status)
	s.Equal(5, (*stats).ItemsSynced())
	s.False(s.orchestrator.Running())
}

func (s *OrchestratorTestSuite) TestIncrementalSync_NewestBulletinFirst() {
	s.orchestrator.config.BatchSize = 1
	ctx := context.Background()
	s.expectLedger(domain.SyncIncremental)

	s.filters.EXPECT().List(ctx).Return([]domain.Filter{{ID: 1}}, nil)
	s.upstream.EXPECT().FetchBulletins(ctx, int64(1), 1, 50).Return(&domain.BulletinPage{
		Bulletins: []domain.Bulletin{{ID: 5}, {ID: 30}, {ID: 12}},
	}, nil)

	var order []int64
	s.upstream.EXPECT().FetchBulletinDetail(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, id int64) (*domain.BulletinDetail, error) {
			order = append(order, id)
			return detailFor(id), nil
		},
	).Times(3)
	s.bulletins.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil).Times(3)

	_, err := s.orchestrator.IncrementalSync(ctx)

	s.NoError(err)
	s.Equal([]int64{30, 12, 5}, order)
}

func (s *OrchestratorTestSuite) TestIncrementalSync_DiscoversWhenNoFilters() {
	ctx := context.Background()
	s.expectLedger(domain.SyncIncremental)

	s.filters.EXPECT().List(ctx).Return(nil, nil)
	s.upstream.EXPECT().FetchFilters(ctx).Return([]domain.Filter{{ID: 3}}, nil)
	s.filters.EXPECT().Upsert(ctx, &domain.Filter{ID: 3}).Return(nil)
	s.upstream.EXPECT().FetchBulletins(ctx, int64(3), 1, 50).Return(&domain.BulletinPage{}, nil)

	result, err := s.orchestrator.IncrementalSync(ctx)

	s.NoError(err)
	s.Equal(1, result.Filters)
	s.Equal(0, result.Bulletins)
}

func (s *OrchestratorTestSuite) TestSync_SingleFlight() {
	ctx := context.Background()
	s.expectLedger(domain.SyncIncremental)

	entered := make(chan struct{})
	release := make(chan struct{})

	s.filters.EXPECT().List(gomock.Any()).DoAndReturn(
		func(context.Context) ([]domain.Filter, error) {
			close(entered)
			<-release
			return []domain.Filter{{ID: 1}}, nil
		},
	)
	s.upstream.EXPECT().FetchBulletins(gomock.Any(), int64(1), 1, 50).Return(&domain.BulletinPage{}, nil)

	done := make(chan error, 1)
	go func() {
		_, err := s.orchestrator.IncrementalSync(ctx)
		done <- err
	}()

	<-entered
	s.True(s.orchestrator.Running())

	_, err := s.orchestrator.FullSync(ctx)
	s.ErrorIs(err, domain.ErrSyncInProgress)

	_, err = s.orchestrator.Refresh(ctx)
	s.ErrorIs(err, domain.ErrSyncInProgress)

	close(release)
	s.NoError(<-done)
	s.False(s.orchestrator.Running())
}

func (s *OrchestratorTestSuite) TestSync_AuthFailureFailsRun() {
	ctx := context.Background()
	status, _, errMsg := s.expectLedger(domain.SyncIncremental)

	s.filters.EXPECT().List(ctx).Return([]domain.Filter{{ID: 1}, {ID: 2}}, nil)
	s.upstream.EXPECT().FetchBulletins(ctx, int64(1), 1, 50).Return(nil,
		fmt.Errorf("fetch bulletins for filter 1: %w", domain.ErrUnauthorized))

	_, err := s.orchestrator.IncrementalSync(ctx)

	s.ErrorIs(err, domain.ErrUnauthorized)
	s.Equal(domain.SyncFailed, *status)
	s.Require().NotNil(*errMsg)
	s.Contains(**errMsg, "authorization")
	s.False(s.orchestrator.Running())
}

func (s *OrchestratorTestSuite) TestSync_AuthFailureOnDetailAbortsRun() {
	ctx := context.Background()
	status, _, _ := s.expectLedger(domain.SyncIncremental)

	s.filters.EXPECT().List(ctx).Return([]domain.Filter{{ID: 1}}, nil)
	s.upstream.EXPECT().FetchBulletins(ctx, int64(1), 1, 50).Return(&domain.BulletinPage{
		Bulletins: []domain.Bulletin{{ID: 10}},
	}, nil)
	s.upstream.EXPECT().FetchBulletinDetail(gomock.Any(), int64(10)).Return(nil, domain.ErrUnauthorized)

	_, err := s.orchestrator.IncrementalSync(ctx)

	s.ErrorIs(err, domain.ErrUnauthorized)
	s.Equal(domain.SyncFailed, *status)
}

func (s *OrchestratorTestSuite) TestSync_BulletinFailureIsSkipped() {
	ctx := context.Background()
	status, _, _ := s.expectLedger(domain.SyncIncremental)

	s.filters.EXPECT().List(ctx).Return([]domain.Filter{{ID: 1}}, nil)
	s.upstream.EXPECT().FetchBulletins(ctx, int64(1), 1, 50).Return(&domain.BulletinPage{
		Bulletins: []domain.Bulletin{{ID: 10}, {ID: 20}},
	}, nil)
	s.upstream.EXPECT().FetchBulletinDetail(gomock.Any(), int64(20)).Return(nil, context.DeadlineExceeded)
	s.upstream.EXPECT().FetchBulletinDetail(gomock.Any(), int64(10)).Return(detailFor(10, 1001), nil)
	s.bulletins.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil)
	s.biddings.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(int64(1), domain.Unchanged, nil)

	result, err := s.orchestrator.IncrementalSync(ctx)

	s.NoError(err)
	s.Equal(1, result.Bulletins)
	s.Equal(1, result.Biddings)
	s.Equal(1, result.Errors)
	s.Equal(0, result.Published)
	s.Equal(domain.SyncSuccess, *status)
}

func (s *OrchestratorTestSuite) TestSync_ExpiredRunFailsRun() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	status, _, errMsg := s.expectLedger(domain.SyncIncremental)

	s.filters.EXPECT().List(ctx).Return([]domain.Filter{{ID: 1}}, nil)
	s.upstream.EXPECT().FetchBulletins(ctx, int64(1), 1, 50).DoAndReturn(
		func(context.Context, int64, int, int) (*domain.BulletinPage, error) {
			cancel()
			return &domain.BulletinPage{
				Bulletins: []domain.Bulletin{{ID: 10}, {ID: 20}, {ID: 30}},
			}, nil
		},
	)
	s.upstream.EXPECT().FetchBulletinDetail(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ int64) (*domain.BulletinDetail, error) {
			return nil, ctx.Err()
		},
	).Times(2)

	result, err := s.orchestrator.IncrementalSync(ctx)

	s.ErrorIs(err, context.Canceled)
	s.Equal(0, result.Bulletins)
	s.Equal(2, result.Errors)
	s.Equal(domain.SyncFailed, *status)
	s.Require().NotNil(*errMsg)
	s.Contains(**errMsg, "context canceled")
	s.False(s.orchestrator.Running())
}

func (s *OrchestratorTestSuite) TestSync_FilterFailureIsSkipped() {
	ctx := context.Background()
	s.expectLedger(domain.SyncIncremental)

	s.filters.EXPECT().List(ctx).Return([]domain.Filter{{ID: 1}, {ID: 2}}, nil)
	s.upstream.EXPECT().FetchBulletins(ctx, int64(1), 1, 50).Return(nil, errors.New("connection reset"))
	s.upstream.EXPECT().FetchBulletins(ctx, int64(2), 1, 50).Return(&domain.BulletinPage{}, nil)

	result, err := s.orchestrator.IncrementalSync(ctx)

	s.NoError(err)
	s.Equal(1, result.Errors)
}

func (s *OrchestratorTestSuite) TestSync_LedgerStartFailure() {
	ctx := context.Background()
	s.ledger.EXPECT().Start(ctx, gomock.Any(), domain.SyncIncremental, gomock.Any()).Return(int64(0), errors.New("db down"))

	_, err := s.orchestrator.IncrementalSync(ctx)

	s.Error(err)
	s.False(s.orchestrator.Running())
}

func (s *OrchestratorTestSuite) TestFullSync_PagesUntilShortWindow() {
	ctx := context.Background()
	status, _, _ := s.expectLedger(domain.SyncFull)

	s.upstream.EXPECT().FetchFilters(ctx).Return([]domain.Filter{{ID: 1}}, nil)
	s.filters.EXPECT().Upsert(ctx, gomock.Any()).Return(nil)

	gomock.InOrder(
		s.upstream.EXPECT().FetchBulletins(ctx, int64(1), 1, 2).Return(&domain.BulletinPage{
			Bulletins: []domain.Bulletin{{ID: 30}, {ID: 20}},
		}, nil),
		s.upstream.EXPECT().FetchBulletins(ctx, int64(1), 2, 2).Return(&domain.BulletinPage{
			Bulletins: []domain.Bulletin{{ID: 10}},
		}, nil),
	)

	s.upstream.EXPECT().FetchBulletinDetail(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, id int64) (*domain.BulletinDetail, error) {
			return detailFor(id), nil
		},
	).Times(3)
	s.bulletins.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil).Times(3)

	result, err := s.orchestrator.FullSync(ctx)

	s.NoError(err)
	s.Equal(3, result.Bulletins)
	s.Equal(domain.SyncSuccess, *status)
}

func (s *OrchestratorTestSuite) TestFullSync_StopsAtKnownTotal() {
	ctx := context.Background()
	s.expectLedger(domain.SyncFull)

	s.upstream.EXPECT().FetchFilters(ctx).Return([]domain.Filter{{ID: 1}}, nil)
	s.filters.EXPECT().Upsert(ctx, gomock.Any()).Return(nil)
	s.upstream.EXPECT().FetchBulletins(ctx, int64(1), 1, 2).Return(&domain.BulletinPage{
		Bulletins: []domain.Bulletin{{ID: 30}, {ID: 20}},
		Total:     utils.Ptr(2),
	}, nil)
	s.upstream.EXPECT().FetchBulletinDetail(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, id int64) (*domain.BulletinDetail, error) {
			return detailFor(id), nil
		},
	).Times(2)
	s.bulletins.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	result, err := s.orchestrator.FullSync(ctx)

	s.NoError(err)
	s.Equal(2, result.Bulletins)
}

func (s *OrchestratorTestSuite) TestFullSync_DiscoveryFailureFallsBackToStored() {
	ctx := context.Background()
	s.expectLedger(domain.SyncFull)

	s.upstream.EXPECT().FetchFilters(ctx).Return(nil, errors.New("bad gateway"))
	s.filters.EXPECT().List(ctx).Return([]domain.Filter{{ID: 4}}, nil)
	s.upstream.EXPECT().FetchBulletins(ctx, int64(4), 1, 2).Return(&domain.BulletinPage{}, nil)

	result, err := s.orchestrator.FullSync(ctx)

	s.NoError(err)
	s.Equal(1, result.Filters)
}

func (s *OrchestratorTestSuite) TestRefresh_ReportsItems() {
	ctx := context.Background()
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ticks := []time.Time{start, start.Add(3 * time.Second)}
	s.orchestrator.now = func() time.Time {
		t := ticks[0]
		ticks = ticks[1:]
		return t
	}
	s.expectLedger(domain.SyncManual)

	s.filters.EXPECT().List(ctx).Return([]domain.Filter{{ID: 1}}, nil)
	s.upstream.EXPECT().FetchBulletins(ctx, int64(1), 1, 50).Return(&domain.BulletinPage{
		Bulletins: []domain.Bulletin{{ID: 10}},
	}, nil)
	s.upstream.EXPECT().FetchBulletinDetail(gomock.Any(), int64(10)).Return(detailFor(10, 1001), nil)
	s.bulletins.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil)
	s.biddings.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(int64(1), domain.Updated, nil)
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), false).Return(nil)

	result, err := s.orchestrator.Refresh(ctx)

	s.NoError(err)
	s.Equal(2, result.ItemsSynced)
	s.Equal(start.Add(3*time.Second), result.SyncedAt)
	s.NotEqual(uuid.Nil, result.RunID)
}

func (s *OrchestratorTestSuite) TestMergeBulletin_FallsBackToListing() {
	closing := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)
	listed := domain.Bulletin{ID: 10, FilterID: 1, EditionNumber: 99, ClosingAt: &closing, BiddingCount: 4}
	detail := domain.Bulletin{ID: 0, EditionNumber: 100}

	merged := mergeBulletin(listed, detail)

	s.Equal(int64(10), merged.ID)
	s.Equal(int64(1), merged.FilterID)
	s.Equal(int64(100), merged.EditionNumber)
	s.Equal(&closing, merged.ClosingAt)
	s.Equal(4, merged.BiddingCount)
}
