package tests

import (
	"testing"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/sarmatovd/shop-services/pkg/testsuite"
	"github.com/sarmatovd/shop-services/services/product/internal/repository"
	"github.com/sarmatovd/shop-services/services/product/internal/service"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type IntegrationTestSuite struct {
	testsuite.BaseSuite

	ProductService service.ProductService
}

func (s *IntegrationTestSuite) SetupSuite() {
	s.BaseSuite.SetupInfrastructure("../migrations")
}

func (s *IntegrationTestSuite) TearDownSuite() {
	s.BaseSuite.TearDownInfrastructure()
}

func (s *IntegrationTestSuite) SetupTest() {
	s.BaseSuite.TruncateTable("products")

	logger := zap.NewNop()
	productRepo := repository.NewProductRepository(s.DbPool, logger)
	s.ProductService = service.NewProductService(productRepo, logger)
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationTestSuite))
}
