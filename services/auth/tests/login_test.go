package tests

import (
	"github.com/sarmatovd/shop-services/pkg/tokens"
	"github.com/sarmatovd/shop-services/services/auth/internal/repository"
	"github.com/sarmatovd/shop-services/services/auth/internal/service"
)

func (s *IntegrationTestSuite) TestLogin_Success() {
	_, _, err := s.AuthService.Register(s.Ctx, "alice", "alice@example.com", "password123")
	s.Require().NoError(err)

	token, err := s.AuthService.Login(s.Ctx, "alice@example.com", "password123")
	s.Require().NoError(err)

	claims, err := tokens.ValidateToken(token)
	s.Require().NoError(err)
	s.Require().Equal("alice", claims.Name)
	s.Require().Equal("alice@example.com", claims.Email)
}

func (s *IntegrationTestSuite) TestLogin_UnknownUser() {
	_, err := s.AuthService.Login(s.Ctx, "nobody@example.com", "password123")
	s.Require().ErrorIs(err, repository.ErrUserNotFound)
}

func (s *IntegrationTestSuite) TestLogin_WrongPassword() {
	_, _, err := s.AuthService.Register(s.Ctx, "alice", "alice@example.com", "password123")
	s.Require().NoError(err)

	_, err = s.AuthService.Login(s.Ctx, "alice@example.com", "notthepassword1")
	s.Require().ErrorIs(err, service.ErrWrongPassword)
}
