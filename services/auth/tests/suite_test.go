package tests

import (
	"testing"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	outboxRepository "github.com/sarmatovd/shop-services/pkg/outbox/repository"
	"github.com/sarmatovd/shop-services/pkg/testsuite"
	"github.com/sarmatovd/shop-services/services/auth/internal/repository"
	"github.com/sarmatovd/shop-services/services/auth/internal/service"
	"github.com/sarmatovd/shop-services/services/auth/pkg/validator"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type IntegrationTestSuite struct {
	testsuite.BaseSuite

	AuthService service.AuthService
}

func (s *IntegrationTestSuite) SetupSuite() {
	s.T().Setenv("JWT_SECRET", "integration-test-secret")

	s.BaseSuite.SetupInfrastructure("../migrations")
}

func (s *IntegrationTestSuite) TearDownSuite() {
	s.BaseSuite.TearDownInfrastructure()
}

func (s *IntegrationTestSuite) SetupTest() {
	s.BaseSuite.TruncateTable("users")
	s.BaseSuite.TruncateTable("outbox")

	logger := zap.NewNop()
	userRepo := repository.NewUserRepository(s.DbPool, logger)
	outboxRepo := outboxRepository.NewOutboxRepository(s.DbPool, logger)

	s.AuthService = service.NewAuthService(userRepo, outboxRepo, logger, s.DbPool, validator.NewValidator())
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationTestSuite))
}
