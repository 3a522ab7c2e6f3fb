package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"feedback_responder/internal/domain"
	"feedback_responder/internal/service/mocks"
)

type PublishServiceTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	market    *mocks.MockMarketplace
	reviews   *mocks.MockReviewStore
	questions *mocks.MockQuestionStore
	publisher *mocks.MockPublisher

	service *PublishService
	logger  *slog.Logger
	shop    *domain.Shop
}

func (s *PublishServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())

	s.market = mocks.NewMockMarketplace(s.ctrl)
	s.reviews = mocks.NewMockReviewStore(s.ctrl)
	s.questions = mocks.NewMockQuestionStore(s.ctrl)
	s.publisher = mocks.NewMockPublisher(s.ctrl)

	s.logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	s.shop = &domain.Shop{ID: 1, APIKey: "key"}

	s.service = NewPublishService(
		s.market,
		s.reviews,
		s.questions,
		s.publisher,
		s.logger,
	)
}

func (s *PublishServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestPublishServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PublishServiceTestSuite))
}

func generatedReview(id int64, externalID, response string) domain.Review {
	topicID := int64(2)
	return domain.Review{
		ID:         id,
		ExternalID: externalID,
		TopicID:    &topicID,
		Response:   &response,
		Status:     domain.StatusGenerated,
	}
}

func (s *PublishServiceTestSuite) TestPublishReview_Submits() {
	ctx := context.Background()
	review := generatedReview(100, "fb-1", "Thank you for the kind words!")

	s.market.EXPECT().AnswerFeedback(ctx, "key", "fb-1", "Thank you for the kind words!").Return(nil)
	s.reviews.EXPECT().MarkPublished(ctx, int64(100)).Return(nil)

	s.publisher.EXPECT().PublishReply(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, event *domain.ReplyEvent) error {
			s.Equal("review", event.Kind)
			s.Equal("fb-1", event.ExternalID)
			s.Equal(int64(1), event.ShopID)
			s.Require().NotNil(event.TopicID)
			s.Equal(int64(2), *event.TopicID)
			s.Equal("Thank you for the kind words!", event.Response)
			return nil
		},
	)

	err := s.service.PublishReview(ctx, s.shop, &review)

	s.NoError(err)
	s.Equal(domain.StatusPublished, review.Status)
}

func (s *PublishServiceTestSuite) TestPublishReview_MissingExternalID() {
	ctx := context.Background()
	review := generatedReview(100, "", "Thanks!")

	err := s.service.PublishReview(ctx, s.shop, &review)

	s.ErrorIs(err, ErrMissingExternalID)
	s.Equal(domain.StatusGenerated, review.Status)
}

func (s *PublishServiceTestSuite) TestPublishReview_EmptyResponse() {
	ctx := context.Background()
	review := domain.Review{ID: 100, ExternalID: "fb-1", Status: domain.StatusGenerated}

	err := s.service.PublishReview(ctx, s.shop, &review)

	s.ErrorIs(err, ErrEmptyResponse)
}

func (s *PublishServiceTestSuite) TestPublishReview_MarketplaceErrorKeepsStatus() {
	ctx := context.Background()
	review := generatedReview(100, "fb-1", "Thanks!")

	s.market.EXPECT().AnswerFeedback(ctx, "key", "fb-1", "Thanks!").
		Return(errors.New("upstream rejected"))

	err := s.service.PublishReview(ctx, s.shop, &review)

	s.Error(err)
	s.Contains(err.Error(), "answer feedback")
	s.Equal(domain.StatusGenerated, review.Status)
}

func (s *PublishServiceTestSuite) TestPublishQuestion_RequiresGeneratedStatus() {
	ctx := context.Background()
	response := "We will restock next week."
	question := domain.Question{
		ID:         200,
		ExternalID: "q-1",
		Response:   &response,
		Status:     domain.StatusNew,
	}

	err := s.service.PublishQuestion(ctx, s.shop, &question)

	s.ErrorIs(err, ErrNotGenerated)
}

func (s *PublishServiceTestSuite) TestPublishQuestion_Submits() {
	ctx := context.Background()
	response := "Yes, it ships with a lid."
	question := domain.Question{
		ID:         200,
		ExternalID: "q-1",
		Response:   &response,
		Status:     domain.StatusGenerated,
	}

	s.market.EXPECT().AnswerQuestion(ctx, "key", "q-1", response).Return(nil)
	s.questions.EXPECT().MarkPublished(ctx, int64(200)).Return(nil)
	s.publisher.EXPECT().PublishReply(ctx, gomock.Any()).Return(nil)

	err := s.service.PublishQuestion(ctx, s.shop, &question)

	s.NoError(err)
	s.Equal(domain.StatusPublished, question.Status)
}

func (s *PublishServiceTestSuite) TestPublishReviews_IsolatesFailures() {
	ctx := context.Background()

	items := []domain.Review{
		generatedReview(100, "fb-1", "Thanks!"),
		generatedReview(101, "fb-2", "Sorry to hear that."),
	}

	s.reviews.EXPECT().ListByStatus(ctx, int64(1), domain.StatusGenerated).Return(items, nil)

	s.market.EXPECT().AnswerFeedback(ctx, "key", "fb-1", "Thanks!").
		Return(errors.New("upstream rejected"))
	s.market.EXPECT().AnswerFeedback(ctx, "key", "fb-2", "Sorry to hear that.").Return(nil)
	s.reviews.EXPECT().MarkPublished(ctx, int64(101)).Return(nil)
	s.publisher.EXPECT().PublishReply(ctx, gomock.Any()).Return(nil)

	stats, err := s.service.PublishReviews(ctx, s.shop)

	s.NoError(err)
	s.Equal(2, stats.Selected)
	s.Equal(1, stats.Published)
	s.Equal(1, stats.Failed)
}

func (s *PublishServiceTestSuite) TestPublishQuestions_StatusConflictCountsAsFailed() {
	ctx := context.Background()
	response := "In stock."
	items := []domain.Question{
		{ID: 200, ExternalID: "q-1", Response: &response, Status: domain.StatusGenerated},
	}

	s.questions.EXPECT().ListByStatus(ctx, int64(1), domain.StatusGenerated).Return(items, nil)
	s.market.EXPECT().AnswerQuestion(ctx, "key", "q-1", "In stock.").Return(nil)
	s.questions.EXPECT().MarkPublished(ctx, int64(200)).Return(domain.ErrStatusConflict)

	stats, err := s.service.PublishQuestions(ctx, s.shop)

	s.NoError(err)
	s.Equal(1, stats.Selected)
	s.Equal(0, stats.Published)
	s.Equal(1, stats.Failed)
}

func (s *PublishServiceTestSuite) TestPublishReview_NilPublisher() {
	ctx := context.Background()

	service := NewPublishService(s.market, s.reviews, s.questions, nil, s.logger)
	review := generatedReview(100, "fb-1", "Thanks!")

	s.market.EXPECT().AnswerFeedback(ctx, "key", "fb-1", "Thanks!").Return(nil)
	s.reviews.EXPECT().MarkPublished(ctx, int64(100)).Return(nil)

	err := service.PublishReview(ctx, s.shop, &review)

	s.NoError(err)
	s.Equal(domain.StatusPublished, review.Status)
}
