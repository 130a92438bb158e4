package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"bulletin_sync/internal/domain"
	"bulletin_sync/internal/service/mocks"
	"bulletin_sync/testdata/utils"
)

type ReconcilerTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	biddings  *mocks.MockBiddingStore
	followUps *mocks.MockFollowUpStore
	publisher *mocks.MockPublisher

	reconciler *Reconciler
	logger     *slog.Logger
}

func (s *ReconcilerTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())

	s.biddings = mocks.NewMockBiddingStore(s.ctrl)
	s.followUps = mocks.NewMockFollowUpStore(s.ctrl)
	s.publisher = mocks.NewMockPublisher(s.ctrl)
	s.logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	s.reconciler = NewReconciler(s.biddings, s.followUps, s.publisher, s.logger)
}

func (s *ReconcilerTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestReconcilerTestSuite(t *testing.T) {
	suite.Run(t, new(ReconcilerTestSuite))
}

func (s *ReconcilerTestSuite) TestUpsertBiddings_FailureDoesNotAbortBatch() {
	ctx := context.Background()
	runID := uuid.New()
	biddings := []domain.Bidding{{ExternalID: 1}, {ExternalID: 2}, {ExternalID: 3}}

	gomock.InOrder(
		s.biddings.EXPECT().Upsert(ctx, &biddings[0]).Return(int64(11), domain.Inserted, nil),
		s.biddings.EXPECT().Upsert(ctx, &biddings[1]).Return(int64(0), domain.Unchanged, errors.New("deadlock")),
		s.biddings.EXPECT().Upsert(ctx, &biddings[2]).Return(int64(13), domain.Updated, nil),
	)
	s.publisher.EXPECT().Publish(ctx, runID, &biddings[0], true).Return(nil)
	s.publisher.EXPECT().Publish(ctx, runID, &biddings[2], false).Return(nil)

	stats := s.reconciler.UpsertBiddings(ctx, runID, biddings)

	s.Equal(2, stats.Biddings)
	s.Equal(1, stats.Errors)
	s.Equal(2, stats.Published)
	s.Equal(int64(11), biddings[0].ID)
	s.Equal(int64(13), biddings[2].ID)
}

func (s *ReconcilerTestSuite) TestUpsertBiddings_UnchangedIsNotPublished() {
	ctx := context.Background()
	biddings := []domain.Bidding{{ExternalID: 1}}

	s.biddings.EXPECT().Upsert(ctx, gomock.Any()).Return(int64(11), domain.Unchanged, nil)

	stats := s.reconciler.UpsertBiddings(ctx, uuid.New(), biddings)

	s.Equal(1, stats.Biddings)
	s.Equal(0, stats.Published)
}

func (s *ReconcilerTestSuite) TestUpsertBiddings_PublishFailureIsCounted() {
	ctx := context.Background()
	biddings := []domain.Bidding{{ExternalID: 1}}

	s.biddings.EXPECT().Upsert(ctx, gomock.Any()).Return(int64(11), domain.Inserted, nil)
	s.publisher.EXPECT().Publish(ctx, gomock.Any(), gomock.Any(), true).Return(errors.New("channel closed"))

	stats := s.reconciler.UpsertBiddings(ctx, uuid.New(), biddings)

	s.Equal(1, stats.Biddings)
	s.Equal(1, stats.Errors)
	s.Equal(0, stats.Published)
}

func (s *ReconcilerTestSuite) TestUpsertBiddings_WithoutPublisher() {
	ctx := context.Background()
	reconciler := NewReconciler(s.biddings, s.followUps, nil, s.logger)

	s.biddings.EXPECT().Upsert(ctx, gomock.Any()).Return(int64(11), domain.Inserted, nil)

	stats := reconciler.UpsertBiddings(ctx, uuid.New(), []domain.Bidding{{ExternalID: 1}})

	s.Equal(1, stats.Biddings)
	s.Equal(0, stats.Published)
}

func (s *ReconcilerTestSuite) TestApply_UpsertsFollowUps() {
	ctx := context.Background()
	detail := &domain.BulletinDetail{
		Bulletin: domain.Bulletin{ID: 10},
		FollowUps: []domain.FollowUp{
			{ExternalID: 55, BiddingExternalID: utils.Ptr(int64(1001))},
			{ExternalID: 56},
		},
	}

	s.followUps.EXPECT().Upsert(ctx, &detail.FollowUps[0]).Return(int64(1), domain.Inserted, nil)
	s.followUps.EXPECT().Upsert(ctx, &detail.FollowUps[1]).Return(int64(0), domain.Unchanged, errors.New("fk violation"))

	stats := s.reconciler.Apply(ctx, uuid.New(), detail)

	s.Equal(0, stats.Biddings)
	s.Equal(1, stats.FollowUps)
	s.Equal(1, stats.Errors)
}
