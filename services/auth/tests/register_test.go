package tests

import (
	"fmt"

	"github.com/sarmatovd/shop-services/services/auth/internal/repository"
	"github.com/sarmatovd/shop-services/services/auth/pkg/validator"
)

func (s *IntegrationTestSuite) TestRegister_Success() {
	user, token, err := s.AuthService.Register(s.Ctx, "alice", "alice@example.com", "password123")
	s.Require().NoError(err)
	s.Require().NotZero(user.ID)
	s.Require().NotEmpty(token)

	var count int
	err = s.DbPool.QueryRow(
		s.Ctx,
		`SELECT COUNT(*) FROM outbox WHERE event_type = 'UserRegistered' AND aggregate_id = $1`,
		fmt.Sprintf("%d", user.ID),
	).Scan(&count)
	s.Require().NoError(err)
	s.Require().Equal(1, count)
}

func (s *IntegrationTestSuite) TestRegister_DuplicateEmail() {
	_, _, err := s.AuthService.Register(s.Ctx, "alice", "alice@example.com", "password123")
	s.Require().NoError(err)

	_, _, err = s.AuthService.Register(s.Ctx, "alice again", "alice@example.com", "password123")
	s.Require().ErrorIs(err, repository.ErrUserAlreadyExists)
}

func (s *IntegrationTestSuite) TestRegister_WeakPassword() {
	_, _, err := s.AuthService.Register(s.Ctx, "bob", "bob@example.com", "short")
	s.Require().ErrorIs(err, validator.ErrPasswordTooShort)

	_, _, err = s.AuthService.Register(s.Ctx, "bob", "bob@example.com", "onlyletters")
	s.Require().ErrorIs(err, validator.ErrPasswordTooWeak)
}
