package brewapi

import (
	"context"
	"net/http"

	"github.com/mvgarcia/taproom/pkg/enums"
	pkgerrors "github.com/mvgarcia/taproom/pkg/errors"
)

type userPayload struct {
	ID       flexID `json:"id"`
	User     flexID `json:"user"`
	Name     string `json:"name"`
	UserType string `json:"user_type"`
	Slug     string `json:"slug"`
	Token    string `json:"token"`
}

func (p userPayload) toUser(email string) User {
	id := p.ID.String()
	if id == "" {
		id = p.User.String()
	}
	userType, err := enums.ParseUserType(p.UserType)
	if err != nil {
		userType = enums.UserTypeOnline
	}
	return User{
		ID:       id,
		Email:    email,
		Name:     p.Name,
		UserType: userType,
		Slug:     p.Slug,
		Token:    p.Token,
	}
}

// Login exchanges credentials for a user snapshot carrying the bearer
// token. The backend does not echo the email back, so it is threaded
// through from the request.
func (c *Client) Login(ctx context.Context, email, password string) (User, error) {
	if email == "" || password == "" {
		return User{}, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}
	body := map[string]any{"email": email, "password": password}
	var payload userPayload
	if err := c.do(ctx, http.MethodPost, "/login/", body, &payload); err != nil {
		return User{}, err
	}
	if payload.Token == "" {
		return User{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "login response carried no token")
	}
	return payload.toUser(email), nil
}

// Logout invalidates the current session server-side.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/logout/", nil, nil)
}

// Register creates an account and returns the snapshot (with token when
// the backend auto-authenticates).
func (c *Client) Register(ctx context.Context, name, email, password string, userType enums.UserType) (User, error) {
	if name == "" || email == "" || password == "" {
		return User{}, pkgerrors.New(pkgerrors.CodeValidation, "name, email and password are required")
	}
	if !userType.IsValid() {
		userType = enums.UserTypeOnline
	}
	body := map[string]any{
		"name":      name,
		"email":     email,
		"password":  password,
		"user_type": userType.String(),
	}
	var payload userPayload
	if err := c.do(ctx, http.MethodPost, "/usuarios/", body, &payload); err != nil {
		return User{}, err
	}
	return payload.toUser(email), nil
}

// CurrentUser re-derives the session from the backend, returning the
// user tied to whatever credential the transport still carries.
func (c *Client) CurrentUser(ctx context.Context) (User, error) {
	var payload userPayload
	if err := c.do(ctx, http.MethodGet, "/get-user-token/", nil, &payload); err != nil {
		return User{}, err
	}
	return payload.toUser(""), nil
}
