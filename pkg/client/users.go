package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"smartkheti_backend/internal/user"
)

// UsersAPI covers /users: accounts, sessions and password reset.
type UsersAPI struct{ c *Client }

func (c *Client) Users() UsersAPI { return UsersAPI{c} }

// ProfileInput is a registration or profile update. Empty fields are not sent.
type ProfileInput struct {
	Phone             string
	Password          string
	FirstName         string
	LastName          string
	CitizenshipNumber string
	Province          string
	District          string
	Municipality      string
	WardNumber        int
	PreferredLanguage string
	Photo             *File
}

func (in ProfileInput) body() Body {
	fields := url.Values{}
	fields.Set("phone", in.Phone)
	fields.Set("password", in.Password)
	fields.Set("first_name", in.FirstName)
	fields.Set("last_name", in.LastName)
	fields.Set("citizenship_number", in.CitizenshipNumber)
	fields.Set("province", in.Province)
	fields.Set("district", in.District)
	fields.Set("municipality", in.Municipality)
	fields.Set("preferred_language", in.PreferredLanguage)
	if in.WardNumber > 0 {
		fields.Set("ward_number", strconv.Itoa(in.WardNumber))
	}
	if in.Photo != nil {
		photo := *in.Photo
		photo.Field = "profile_photo"
		return Multipart(fields, photo)
	}
	return Multipart(fields)
}

func (a UsersAPI) Register(ctx context.Context, in ProfileInput) (*User, error) {
	var out User
	if err := a.c.Do(ctx, http.MethodPost, "/users/register/", in.body(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login stores the returned token pair.
func (a UsersAPI) Login(ctx context.Context, phone, password string) (*TokenPair, error) {
	var pair TokenPair
	err := a.c.Do(ctx, http.MethodPost, "/users/login/", JSON(user.LoginRequest{Phone: phone, Password: password}), &pair)
	if err != nil {
		return nil, err
	}
	if err := a.c.tokens.Save(Tokens{Access: pair.Access, Refresh: pair.Refresh}); err != nil {
		return nil, err
	}
	return &pair, nil
}

// Refresh exchanges the stored refresh token for a new access token.
func (a UsersAPI) Refresh(ctx context.Context) error {
	tokens, err := a.c.tokens.Load()
	if err != nil {
		return err
	}
	var out struct {
		Access string `json:"access"`
	}
	if err := a.c.Do(ctx, http.MethodPost, "/users/token/refresh/", JSON(map[string]string{"refresh": tokens.Refresh}), &out); err != nil {
		return err
	}
	return a.c.tokens.Save(Tokens{Access: out.Access, Refresh: tokens.Refresh})
}

// Logout revokes the refresh token and clears the store even if revocation fails.
func (a UsersAPI) Logout(ctx context.Context) error {
	tokens, err := a.c.tokens.Load()
	if err != nil {
		return err
	}
	var revokeErr error
	if tokens.Refresh != "" {
		revokeErr = a.c.Do(ctx, http.MethodPost, "/users/logout/", JSON(map[string]string{"refresh": tokens.Refresh}), nil)
	}
	if err := a.c.tokens.Clear(); err != nil {
		return err
	}
	return revokeErr
}

func (a UsersAPI) Profile(ctx context.Context) (*User, error) {
	var out User
	if err := a.c.Do(ctx, http.MethodGet, "/users/profile/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a UsersAPI) UpdateProfile(ctx context.Context, in ProfileInput) (*User, error) {
	var out User
	if err := a.c.Do(ctx, http.MethodPut, "/users/profile/", in.body(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a UsersAPI) RequestOTP(ctx context.Context, phone string) error {
	return a.c.Do(ctx, http.MethodPost, "/users/request-otp/", JSON(user.RequestOTPRequest{Phone: phone}), nil)
}

func (a UsersAPI) VerifyOTP(ctx context.Context, phone, otp, newPassword string) error {
	req := user.VerifyOTPRequest{Phone: phone, OTP: otp, NewPassword: newPassword}
	return a.c.Do(ctx, http.MethodPost, "/users/verify-otp/", JSON(req), nil)
}
