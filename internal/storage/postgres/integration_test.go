//go:build integration

package postgres

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"feedback_responder/internal/domain"
	"feedback_responder/testdata/utils"
)

type PostgresIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *postgres.PostgresContainer
	db        *sqlx.DB
}

func (s *PostgresIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()

	migrationsPath, err := filepath.Abs("../../../migrations")
	s.Require().NoError(err)

	container, err := postgres.Run(s.ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		postgres.WithInitScripts(
			filepath.Join(migrationsPath, "001_init.up.sql"),
			filepath.Join(migrationsPath, "002_seed_topics.up.sql"),
		),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	connStr, err := container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	db, err := sqlx.Connect("postgres", connStr)
	s.Require().NoError(err)
	s.db = db
}

func (s *PostgresIntegrationSuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *PostgresIntegrationSuite) SetupTest() {
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM reviews")
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM questions")
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM products")
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM shops")
}

func TestPostgresIntegrationSuite(t *testing.T) {
	suite.Run(t, new(PostgresIntegrationSuite))
}

func (s *PostgresIntegrationSuite) createShop(ownerID int64, active bool) *domain.Shop {
	shop := &domain.Shop{
		OwnerID:  ownerID,
		Name:     "Test Shop",
		APIKey:   "test-key",
		IsActive: active,
	}
	_, err := NewShopStore(s.db).Create(s.ctx, shop)
	s.Require().NoError(err)
	return shop
}

func (s *PostgresIntegrationSuite) createProduct(shopID, nmID int64) *domain.Product {
	product := &domain.Product{
		ShopID: shopID,
		NmID:   nmID,
		Name:   "Ceramic Mug",
	}
	_, err := NewProductStore(s.db).FirstOrCreate(s.ctx, product)
	s.Require().NoError(err)
	return product
}

func (s *PostgresIntegrationSuite) TestShopStore_CreateAndGet() {
	store := NewShopStore(s.db)
	shop := s.createShop(10, true)

	retrieved, err := store.GetByID(s.ctx, shop.ID)
	s.NoError(err)
	s.Equal(shop.ID, retrieved.ID)
	s.Equal(int64(10), retrieved.OwnerID)
	s.Equal("test-key", retrieved.APIKey)
	s.True(retrieved.IsActive)
}

func (s *PostgresIntegrationSuite) TestShopStore_SingleActivePerOwner() {
	store := NewShopStore(s.db)
	s.createShop(10, true)
	second := s.createShop(10, false)

	s.NoError(store.DeactivateByOwner(s.ctx, 10))
	s.NoError(store.Activate(s.ctx, second.ID))

	active, err := store.GetActiveByOwner(s.ctx, 10)
	s.NoError(err)
	s.Require().NotNil(active)
	s.Equal(second.ID, active.ID)

	var count int
	err = s.db.GetContext(s.ctx, &count, "SELECT COUNT(*) FROM shops WHERE owner_id = $1 AND is_active", 10)
	s.NoError(err)
	s.Equal(1, count)
}

func (s *PostgresIntegrationSuite) TestShopStore_GetActiveByOwner_NoneActive() {
	store := NewShopStore(s.db)
	s.createShop(10, false)

	active, err := store.GetActiveByOwner(s.ctx, 10)
	s.NoError(err)
	s.Nil(active)
}

func (s *PostgresIntegrationSuite) TestProductStore_FirstOrCreate_Idempotent() {
	store := NewProductStore(s.db)
	shop := s.createShop(10, true)

	first := &domain.Product{ShopID: shop.ID, NmID: 42, Name: "Ceramic Mug"}
	id1, err := store.FirstOrCreate(s.ctx, first)
	s.NoError(err)
	s.Greater(id1, int64(0))

	second := &domain.Product{ShopID: shop.ID, NmID: 42, Name: "Different Name"}
	id2, err := store.FirstOrCreate(s.ctx, second)
	s.NoError(err)
	s.Equal(id1, id2)

	var name string
	err = s.db.GetContext(s.ctx, &name, "SELECT name FROM products WHERE id = $1", id1)
	s.NoError(err)
	s.Equal("Ceramic Mug", name)
}

func (s *PostgresIntegrationSuite) TestProductStore_UpdateCardAndGetByNmID() {
	store := NewProductStore(s.db)
	shop := s.createShop(10, true)
	product := s.createProduct(shop.ID, 42)

	product.Description = utils.Ptr("Ceramic mug, 350 ml")
	product.Color = utils.Ptr("Red")
	product.Country = utils.Ptr("Portugal")
	product.ImageURL = utils.Ptr("https://img.example/42.jpg")
	product.Category = utils.Ptr("Mugs")
	s.NoError(store.UpdateCard(s.ctx, product))

	retrieved, err := store.GetByNmID(s.ctx, shop.ID, 42)
	s.NoError(err)
	s.Require().NotNil(retrieved)
	s.Equal("Red", *retrieved.Color)
	s.Equal("Portugal", *retrieved.Country)
	s.Equal("Mugs", *retrieved.Category)
}

func (s *PostgresIntegrationSuite) TestProductStore_GetByNmID_Unknown() {
	store := NewProductStore(s.db)
	shop := s.createShop(10, true)

	retrieved, err := store.GetByNmID(s.ctx, shop.ID, 999)
	s.NoError(err)
	s.Nil(retrieved)
}

func (s *PostgresIntegrationSuite) TestReviewStore_CreateAndExists() {
	store := NewReviewStore(s.db)
	shop := s.createShop(10, true)
	product := s.createProduct(shop.ID, 42)

	review := &domain.Review{
		ExternalID:  "fb-1",
		ProductID:   product.ID,
		Evaluation:  5,
		UserName:    utils.Ptr("Anna"),
		Text:        utils.Ptr("Great mug"),
		Status:      domain.StatusNew,
		CreatedDate: time.Now().Truncate(time.Microsecond),
	}
	id, err := store.Create(s.ctx, review)
	s.NoError(err)
	s.Greater(id, int64(0))

	exists, err := store.ExistsByExternalID(s.ctx, "fb-1")
	s.NoError(err)
	s.True(exists)

	exists, err = store.ExistsByExternalID(s.ctx, "fb-unknown")
	s.NoError(err)
	s.False(exists)
}

func (s *PostgresIntegrationSuite) TestReviewStore_DuplicateExternalID() {
	store := NewReviewStore(s.db)
	shop := s.createShop(10, true)
	product := s.createProduct(shop.ID, 42)

	review := &domain.Review{
		ExternalID: "fb-1",
		ProductID:  product.ID,
		Status:     domain.StatusNew,
	}
	_, err := store.Create(s.ctx, review)
	s.NoError(err)

	duplicate := &domain.Review{
		ExternalID: "fb-1",
		ProductID:  product.ID,
		Status:     domain.StatusNew,
	}
	_, err = store.Create(s.ctx, duplicate)
	s.Error(err)
}

func (s *PostgresIntegrationSuite) TestReviewStore_ListByStatus_JoinsProductAndFiltersShop() {
	store := NewReviewStore(s.db)
	shop := s.createShop(10, true)
	otherShop := s.createShop(20, true)
	product := s.createProduct(shop.ID, 42)
	otherProduct := s.createProduct(otherShop.ID, 43)

	_, err := store.Create(s.ctx, &domain.Review{
		ExternalID: "fb-1", ProductID: product.ID, Status: domain.StatusNew,
	})
	s.NoError(err)
	_, err = store.Create(s.ctx, &domain.Review{
		ExternalID: "fb-2", ProductID: product.ID, Status: domain.StatusGenerated,
	})
	s.NoError(err)
	_, err = store.Create(s.ctx, &domain.Review{
		ExternalID: "fb-3", ProductID: otherProduct.ID, Status: domain.StatusNew,
	})
	s.NoError(err)

	reviews, err := store.ListByStatus(s.ctx, shop.ID, domain.StatusNew)
	s.NoError(err)
	s.Require().Len(reviews, 1)
	s.Equal("fb-1", reviews[0].ExternalID)
	s.Equal("Ceramic Mug", reviews[0].ProductName)
}

func (s *PostgresIntegrationSuite) TestReviewStore_UpdateAnalysis() {
	store := NewReviewStore(s.db)
	shop := s.createShop(10, true)
	product := s.createProduct(shop.ID, 42)

	review := &domain.Review{
		ExternalID: "fb-1",
		ProductID:  product.ID,
		Status:     domain.StatusNew,
	}
	_, err := store.Create(s.ctx, review)
	s.NoError(err)

	var topicID int64
	err = s.db.GetContext(s.ctx, &topicID, "SELECT id FROM review_topics WHERE name = 'Delivery'")
	s.NoError(err)

	review.Sentiment = utils.Ptr("positive")
	review.TopicID = &topicID
	review.Response = utils.Ptr("Hello, Anna! Thank you.")
	review.Status = domain.StatusGenerated
	s.NoError(store.UpdateAnalysis(s.ctx, review))

	reviews, err := store.ListByStatus(s.ctx, shop.ID, domain.StatusGenerated)
	s.NoError(err)
	s.Require().Len(reviews, 1)
	s.Equal("positive", *reviews[0].Sentiment)
	s.Equal(topicID, *reviews[0].TopicID)
}

func (s *PostgresIntegrationSuite) TestReviewStore_MarkPublished() {
	store := NewReviewStore(s.db)
	shop := s.createShop(10, true)
	product := s.createProduct(shop.ID, 42)

	review := &domain.Review{
		ExternalID: "fb-1",
		ProductID:  product.ID,
		Status:     domain.StatusGenerated,
	}
	_, err := store.Create(s.ctx, review)
	s.NoError(err)

	s.NoError(store.MarkPublished(s.ctx, review.ID))

	var status string
	err = s.db.GetContext(s.ctx, &status, "SELECT status FROM reviews WHERE id = $1", review.ID)
	s.NoError(err)
	s.Equal("published", status)

	// A second advance finds no generated row.
	err = store.MarkPublished(s.ctx, review.ID)
	s.ErrorIs(err, domain.ErrStatusConflict)
}

func (s *PostgresIntegrationSuite) TestReviewStore_MarkPublished_RejectsNewRows() {
	store := NewReviewStore(s.db)
	shop := s.createShop(10, true)
	product := s.createProduct(shop.ID, 42)

	review := &domain.Review{
		ExternalID: "fb-1",
		ProductID:  product.ID,
		Status:     domain.StatusNew,
	}
	_, err := store.Create(s.ctx, review)
	s.NoError(err)

	err = store.MarkPublished(s.ctx, review.ID)
	s.ErrorIs(err, domain.ErrStatusConflict)

	var status string
	err = s.db.GetContext(s.ctx, &status, "SELECT status FROM reviews WHERE id = $1", review.ID)
	s.NoError(err)
	s.Equal("new", status)
}

func (s *PostgresIntegrationSuite) TestQuestionStore_CreateAndList() {
	store := NewQuestionStore(s.db)
	shop := s.createShop(10, true)
	product := s.createProduct(shop.ID, 42)

	question := &domain.Question{
		ExternalID:  "q-1",
		ProductID:   product.ID,
		UserName:    utils.Ptr("Boris"),
		Text:        utils.Ptr("Is it dishwasher safe?"),
		Status:      domain.StatusNew,
		CreatedDate: time.Now().Truncate(time.Microsecond),
	}
	_, err := store.Create(s.ctx, question)
	s.NoError(err)

	questions, err := store.ListByStatus(s.ctx, shop.ID, domain.StatusNew)
	s.NoError(err)
	s.Require().Len(questions, 1)
	s.Equal("q-1", questions[0].ExternalID)
	s.Equal("Ceramic Mug", questions[0].ProductName)
}

func (s *PostgresIntegrationSuite) TestTopicStore_TopicsByName() {
	store := NewTopicStore(s.db)

	reviewTopics, err := store.TopicsByName(s.ctx, domain.TaxonomyReview)
	s.NoError(err)
	s.Contains(reviewTopics, "Delivery")
	s.Contains(reviewTopics, "Product quality")

	questionTopics, err := store.TopicsByName(s.ctx, domain.TaxonomyQuestion)
	s.NoError(err)
	s.Contains(questionTopics, "Product details")
	s.NotContains(questionTopics, "Product quality")
}

func (s *PostgresIntegrationSuite) TestTransaction_Commit() {
	tm := NewTransactionManager(s.db)
	productStore := NewProductStore(s.db)
	reviewStore := NewReviewStore(s.db)

	shop := s.createShop(10, true)

	err := tm.WithTransaction(s.ctx, func(ctx context.Context) error {
		product := &domain.Product{ShopID: shop.ID, NmID: 42, Name: "Ceramic Mug"}
		if _, err := productStore.FirstOrCreate(ctx, product); err != nil {
			return err
		}
		_, err := reviewStore.Create(ctx, &domain.Review{
			ExternalID: "fb-tx",
			ProductID:  product.ID,
			Status:     domain.StatusNew,
		})
		return err
	})
	s.NoError(err)

	exists, err := reviewStore.ExistsByExternalID(s.ctx, "fb-tx")
	s.NoError(err)
	s.True(exists)
}

func (s *PostgresIntegrationSuite) TestTransaction_Rollback() {
	tm := NewTransactionManager(s.db)
	productStore := NewProductStore(s.db)
	reviewStore := NewReviewStore(s.db)

	shop := s.createShop(10, true)

	err := tm.WithTransaction(s.ctx, func(ctx context.Context) error {
		product := &domain.Product{ShopID: shop.ID, NmID: 42, Name: "Ceramic Mug"}
		if _, err := productStore.FirstOrCreate(ctx, product); err != nil {
			return err
		}
		if _, err := reviewStore.Create(ctx, &domain.Review{
			ExternalID: "fb-rollback",
			ProductID:  product.ID,
			Status:     domain.StatusNew,
		}); err != nil {
			return err
		}
		return context.Canceled
	})
	s.Error(err)

	exists, err := reviewStore.ExistsByExternalID(s.ctx, "fb-rollback")
	s.NoError(err)
	s.False(exists)

	product, err := productStore.GetByNmID(s.ctx, shop.ID, 42)
	s.NoError(err)
	s.Nil(product)
}
