package service

import (
	"context"
	"testing"

	"github.com/securenetizen/asset-management/internal/model"
	"github.com/securenetizen/asset-management/internal/repository"
	"github.com/securenetizen/asset-management/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

type UserServiceSuite struct {
	suite.Suite
	svc  UserService
	repo *repository.MemoryUserRepository
	ctx  context.Context
}

func TestUserServiceSuite(t *testing.T) {
	suite.Run(t, new(UserServiceSuite))
}

func (s *UserServiceSuite) SetupTest() {
	s.repo = repository.NewMemoryUserRepository()
	s.svc = NewUserService(s.repo, []byte("test_secret"))
	s.ctx = context.Background()
}

func (s *UserServiceSuite) newUserRequest(username string) CreateUserRequest {
	return CreateUserRequest{
		Username:   username,
		Email:      username + "@example.com",
		Password:   "correct horse battery",
		Role:       model.RoleUser,
		Department: "Design",
	}
}

func (s *UserServiceSuite) TestCreateUser() {
	s.Run("stores only a bcrypt hash of the password", func() {
		created, err := s.svc.CreateUser(s.ctx, s.newUserRequest("alice"))
		s.Require().NoError(err)

		stored, err := s.repo.GetByID(s.ctx, created.ID)
		s.Require().NoError(err)
		s.NotEqual("correct horse battery", stored.Password)
		s.NoError(bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("correct horse battery")))
	})

	s.Run("defaults to the user role", func() {
		req := s.newUserRequest("bob")
		req.Role = ""
		created, err := s.svc.CreateUser(s.ctx, req)
		s.Require().NoError(err)
		s.Equal(model.RoleUser, created.Role)
	})

	s.Run("rejects a role outside the closed set", func() {
		req := s.newUserRequest("carol")
		req.Role = "superadmin"
		_, err := s.svc.CreateUser(s.ctx, req)
		s.Require().ErrorIs(err, apperror.ErrValidation)
	})

	s.Run("rejects duplicate username", func() {
		_, err := s.svc.CreateUser(s.ctx, s.newUserRequest("dave"))
		s.Require().NoError(err)

		dup := s.newUserRequest("dave")
		dup.Email = "other@example.com"
		_, err = s.svc.CreateUser(s.ctx, dup)
		s.Require().ErrorIs(err, apperror.ErrValidation)
	})

	s.Run("rejects duplicate email", func() {
		_, err := s.svc.CreateUser(s.ctx, s.newUserRequest("erin"))
		s.Require().NoError(err)

		dup := s.newUserRequest("erin2")
		dup.Email = "erin@example.com"
		_, err = s.svc.CreateUser(s.ctx, dup)
		s.Require().ErrorIs(err, apperror.ErrValidation)
	})

	s.Run("rejects missing department", func() {
		req := s.newUserRequest("frank")
		req.Department = ""
		_, err := s.svc.CreateUser(s.ctx, req)
		s.Require().ErrorIs(err, apperror.ErrValidation)
	})
}

func (s *UserServiceSuite) TestLogin() {
	s.Run("issues access and refresh tokens on valid credentials", func() {
		_, err := s.svc.CreateUser(s.ctx, s.newUserRequest("alice"))
		s.Require().NoError(err)

		tokens, err := s.svc.Login(s.ctx, LoginUserRequest{Email: "alice@example.com", Password: "correct horse battery"})
		s.Require().NoError(err)
		s.NotEmpty(tokens.Token)
		s.NotEmpty(tokens.RefreshToken)
	})

	s.Run("rejects a wrong password", func() {
		_, err := s.svc.CreateUser(s.ctx, s.newUserRequest("bob"))
		s.Require().NoError(err)

		_, err = s.svc.Login(s.ctx, LoginUserRequest{Email: "bob@example.com", Password: "wrong"})
		s.Require().ErrorIs(err, apperror.ErrAuthentication)
	})

	s.Run("rejects an unknown email", func() {
		_, err := s.svc.Login(s.ctx, LoginUserRequest{Email: "ghost@example.com", Password: "whatever"})
		s.Require().ErrorIs(err, apperror.ErrAuthentication)
	})
}

func (s *UserServiceSuite) TestRefreshToken() {
	s.Run("rotates the refresh token", func() {
		_, err := s.svc.CreateUser(s.ctx, s.newUserRequest("alice"))
		s.Require().NoError(err)

		tokens, err := s.svc.Login(s.ctx, LoginUserRequest{Email: "alice@example.com", Password: "correct horse battery"})
		s.Require().NoError(err)

		refreshed, err := s.svc.RefreshToken(s.ctx, RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
		s.Require().NoError(err)
		s.NotEqual(tokens.RefreshToken, refreshed.RefreshToken)

		// The consumed token is gone
		_, err = s.svc.RefreshToken(s.ctx, RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
		s.Require().ErrorIs(err, apperror.ErrAuthentication)
	})

	s.Run("rejects an unknown refresh token", func() {
		_, err := s.svc.RefreshToken(s.ctx, RefreshTokenRequest{RefreshToken: "bogus"})
		s.Require().ErrorIs(err, apperror.ErrAuthentication)
	})
}

func (s *UserServiceSuite) TestUpdateUser() {
	s.Run("updates username and department but never the role", func() {
		created, err := s.svc.CreateUser(s.ctx, s.newUserRequest("alice"))
		s.Require().NoError(err)

		updated, err := s.svc.UpdateUser(s.ctx, created.ID.String(), UpdateUserRequest{
			Username:   "alice2",
			Department: "Procurement",
		})
		s.Require().NoError(err)
		s.Equal("alice2", updated.Username)
		s.Equal("Procurement", updated.Department)
		s.Equal(model.RoleUser, updated.Role)
	})

	s.Run("reports unknown user", func() {
		_, err := s.svc.UpdateUser(s.ctx, uuid.NewString(), UpdateUserRequest{Username: "x"})
		s.Require().ErrorIs(err, apperror.ErrNotFound)
	})
}

func (s *UserServiceSuite) TestDeleteUser() {
	s.Run("removes an existing user", func() {
		created, err := s.svc.CreateUser(s.ctx, s.newUserRequest("alice"))
		s.Require().NoError(err)

		s.Require().NoError(s.svc.DeleteUser(s.ctx, created.ID.String()))

		_, err = s.svc.GetUserByID(s.ctx, created.ID.String())
		s.Require().ErrorIs(err, apperror.ErrNotFound)
	})

	s.Run("reports unknown user", func() {
		err := s.svc.DeleteUser(s.ctx, uuid.NewString())
		s.Require().ErrorIs(err, apperror.ErrNotFound)
	})
}
