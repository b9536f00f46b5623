package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookerapp/booker-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	register(s.api, huma.Operation{
		OperationID:   "signup",
		Method:        http.MethodPost,
		Path:          "/api/auth/signup",
		Summary:       "Sign up",
		Description:   "Creates an account and returns a bearer token",
		Tags:          []string{"Authentication"},
		DefaultStatus: http.StatusCreated,
		Middlewares:   huma.Middlewares{s.rateLimitAuth},
	}, s.handleSignup)

	register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/auth/login",
		Summary:     "Log in",
		Description: "Checks credentials and returns a bearer token",
		Tags:        []string{"Authentication"},
		Middlewares: huma.Middlewares{s.rateLimitAuth},
	}, s.handleLogin)

	register(s.api, huma.Operation{
		OperationID: "getProfile",
		Method:      http.MethodGet,
		Path:        "/api/auth/profile",
		Summary:     "Current user profile",
		Description: "Returns the caller with their books and reviews",
		Tags:        []string{"Authentication"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleProfile)
}

// === DTOs ===

// SignupRequest is the request body for signup.
type SignupRequest struct {
	_        struct{} `json:"-" additionalProperties:"true"`
	Name     string   `json:"name,omitempty" doc:"Display name"`
	Email    string   `json:"email,omitempty" doc:"Email address"`
	Password string   `json:"password,omitempty" doc:"Password, at least 6 characters"`
}

// SignupInput wraps the signup request for Huma.
type SignupInput struct {
	Body SignupRequest
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	_        struct{} `json:"-" additionalProperties:"true"`
	Email    string   `json:"email,omitempty" doc:"Email address"`
	Password string   `json:"password,omitempty" doc:"Password"`
}

// LoginInput wraps the login request for Huma.
type LoginInput struct {
	Body LoginRequest
}

// AuthResponse is the user and token returned by signup and login.
type AuthResponse struct {
	ID    string `json:"id" doc:"User ID"`
	Name  string `json:"name" doc:"Display name"`
	Email string `json:"email" doc:"Email address"`
	Token string `json:"token" doc:"Bearer token"`
}

// AuthOutput wraps the auth response for Huma.
type AuthOutput struct {
	Body AuthResponse
}

// ProfileInput carries the bearer token for documentation; the middleware
// has already verified it.
type ProfileInput struct {
	Authorization string `header:"Authorization"`
}

// ProfileResponse is the caller's account, books and reviews.
type ProfileResponse struct {
	User    UserResponse     `json:"user" doc:"The caller"`
	Books   []BookResponse   `json:"books" doc:"Books the caller added, newest first"`
	Reviews []ReviewResponse `json:"reviews" doc:"Reviews the caller wrote, newest first"`
}

// ProfileOutput wraps the profile response for Huma.
type ProfileOutput struct {
	Body ProfileResponse
}

// === Handlers ===

func (s *Server) handleSignup(ctx context.Context, input *SignupInput) (*AuthOutput, error) {
	resp, err := s.services.Auth.Signup(ctx, service.SignupRequest{
		Name:     input.Body.Name,
		Email:    input.Body.Email,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, err
	}
	return &AuthOutput{Body: toAuthResponse(resp)}, nil
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*AuthOutput, error) {
	resp, err := s.services.Auth.Login(ctx, service.LoginRequest{
		Email:    input.Body.Email,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, err
	}
	return &AuthOutput{Body: toAuthResponse(resp)}, nil
}

func (s *Server) handleProfile(ctx context.Context, _ *ProfileInput) (*ProfileOutput, error) {
	identity, err := RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	profile, err := s.services.Auth.Profile(ctx, identity)
	if err != nil {
		return nil, err
	}

	users := singleUser(profile.User)
	return &ProfileOutput{Body: ProfileResponse{
		User:    toUserResponse(profile.User),
		Books:   toBookResponses(profile.Books, users),
		Reviews: toReviewResponses(profile.Reviews, users),
	}}, nil
}

func toAuthResponse(resp *service.AuthResponse) AuthResponse {
	return AuthResponse{
		ID:    resp.User.ID,
		Name:  resp.User.Name,
		Email: resp.User.Email,
		Token: resp.Token,
	}
}
