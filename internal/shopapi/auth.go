package shopapi

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/example/storefront/internal/session"
)

// RegisterInput is the signup form the remote API expects.
type RegisterInput struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	RePassword string `json:"rePassword"`
	Phone      string `json:"phone"`
}

// AuthService drives the remote auth endpoints and owns session activation.
// Signin and signup go through the public client so a stale stored token
// never rides along; the remaining account calls are authenticated.
type AuthService struct {
	public  *Client
	auth    *Client
	session *session.Manager
}

func NewAuthService(public, auth *Client, sess *session.Manager) *AuthService {
	return &AuthService{public: public, auth: auth, session: sess}
}

// authPayload is the signin/signup response, which arrives either flat or
// under "data".
type authPayload struct {
	Token        string        `json:"token"`
	RefreshToken string        `json:"refreshToken"`
	User         *session.User `json:"user"`
}

func extractAuthPayload(raw []byte) authPayload {
	var flat authPayload
	if err := json.Unmarshal(raw, &flat); err == nil && (flat.Token != "" || flat.User != nil) {
		return flat
	}

	var env struct {
		Data authPayload `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err == nil {
		return env.Data
	}
	return authPayload{}
}

// Login authenticates and establishes the session. When the response carries
// a token but no user object, the profile is derived from the token claims.
func (s *AuthService) Login(ctx context.Context, email, password string) (*session.User, error) {
	raw, err := s.public.post(ctx, "/auth/signin", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	return s.establish(raw)
}

// Register creates an account and establishes the session.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*session.User, error) {
	input.Phone = strings.TrimSpace(input.Phone)

	raw, err := s.public.post(ctx, "/auth/signup", input)
	if err != nil {
		return nil, err
	}
	return s.establish(raw)
}

func (s *AuthService) establish(raw []byte) (*session.User, error) {
	payload := extractAuthPayload(raw)
	if payload.Token == "" {
		return nil, fmt.Errorf("signin did not return a token")
	}

	user := payload.User
	if user == nil {
		user = session.UserFromToken(payload.Token)
	}
	if user == nil {
		return nil, fmt.Errorf("signin did not return a user profile")
	}

	if err := s.session.Establish(payload.Token, payload.RefreshToken, *user); err != nil {
		return nil, err
	}
	return user, nil
}

// Logout tears the session down. Purely local; the remote has no signout.
func (s *AuthService) Logout() {
	s.session.Clear()
}

// ForgotPassword asks the remote to email a reset code.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	raw, err := s.auth.post(ctx, "/auth/forgotPasswords", map[string]string{"email": email})
	if err != nil {
		return "", err
	}

	var resp struct {
		Message string `json:"message"`
	}
	json.Unmarshal(raw, &resp)
	if resp.Message == "" {
		resp.Message = "Reset code sent"
	}
	return resp.Message, nil
}

// VerifyResetCode checks the emailed code.
func (s *AuthService) VerifyResetCode(ctx context.Context, code string) error {
	_, err := s.auth.post(ctx, "/auth/verifyResetCode", map[string]string{"resetCode": code})
	return err
}

// ResetPassword sets a new password and, when the remote returns a fresh
// token, re-establishes the session with it.
func (s *AuthService) ResetPassword(ctx context.Context, email, newPassword string) error {
	raw, err := s.auth.put(ctx, "/auth/resetPassword", map[string]string{
		"email":       email,
		"newPassword": newPassword,
	})
	if err != nil {
		return err
	}

	payload := extractAuthPayload(raw)
	if payload.Token != "" {
		user := payload.User
		if user == nil {
			user = session.UserFromToken(payload.Token)
		}
		if user != nil {
			s.session.Establish(payload.Token, payload.RefreshToken, *user)
		}
	}
	return nil
}
