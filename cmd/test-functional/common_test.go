package test_functional

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerAndLogin(t *testing.T, ctx context.Context, username, email, password string) string {
	t.Helper()

	registerURL := AppBaseURL
	registerURL.Path = "/auth/register"

	resp, err := resty.New().
		R().
		SetHeader("Content-Type", "application/json").
		SetContext(ctx).
		SetBody(fmt.Sprintf(`{"username": %q, "email": %q, "password": %q}`, username, email, password)).
		Post(registerURL.String())
	require.Nil(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode())

	loginURL := AppBaseURL
	loginURL.Path = "/auth/login"

	type LoginResp struct {
		Token string `json:"token"`
	}

	resp, err = resty.New().
		R().
		SetHeader("Content-Type", "application/json").
		SetContext(ctx).
		SetResult(&LoginResp{}).
		SetBody(fmt.Sprintf(`{"username": %q, "password": %q}`, username, password)).
		Post(loginURL.String())
	require.Nil(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())

	got, ok := resp.Result().(*LoginResp)
	require.True(t, ok)
	require.NotEmpty(t, got.Token)
	return got.Token
}

func TestRegister(t *testing.T) {
	u := AppBaseURL
	u.Path = "/auth/register"

	t.Run("successful register", func(t *testing.T) {
		defer FlushDB()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		defer cancel()

		resp, err := resty.New().
			R().
			SetHeader("Content-Type", "application/json").
			SetContext(ctx).
			SetBody(`
			{"username": "tester", "email": "test@gmail.com", "password": "111111111111"}
		`).
			Post(u.String())
		assert.Nil(t, err)

		assert.Equal(t, http.StatusCreated, resp.StatusCode())

		var (
			id    uint64
			email string
		)
		err = DBConn.QueryRow(ctx, "SELECT id, email FROM users WHERE username=$1", "tester").Scan(&id, &email)
		assert.Nil(t, err)

		assert.Equal(t, "test@gmail.com", email)
	})

	t.Run("bad body", func(t *testing.T) {
		defer FlushDB()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		defer cancel()

		resp, err := resty.New().
			R().
			SetHeader("Content-Type", "application/json").
			SetContext(ctx).
			SetBody(`
			{"something": "???"}
		`).
			Post(u.String())
		assert.Nil(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode())
	})

	t.Run("duplicate username", func(t *testing.T) {
		defer FlushDB()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		defer cancel()

		body := `{"username": "tester", "email": "test@gmail.com", "password": "111111111111"}`

		resp, err := resty.New().
			R().
			SetHeader("Content-Type", "application/json").
			SetContext(ctx).
			SetBody(body).
			Post(u.String())
		assert.Nil(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode())

		resp, err = resty.New().
			R().
			SetHeader("Content-Type", "application/json").
			SetContext(ctx).
			SetBody(body).
			Post(u.String())
		assert.Nil(t, err)
		assert.Equal(t, http.StatusConflict, resp.StatusCode())
	})
}

func TestCategorySharingFlow(t *testing.T) {
	defer FlushDB()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	ownerToken := registerAndLogin(t, ctx, "owner", "owner@gmail.com", "111111111111")
	guestToken := registerAndLogin(t, ctx, "guest", "guest@gmail.com", "222222222222")

	type CategoryResp struct {
		ID       uint64 `json:"id"`
		Name     string `json:"name"`
		OwnerID  uint64 `json:"owner_id"`
		IsPublic bool   `json:"is_public"`
		Shared   bool   `json:"shared"`
	}

	createURL := AppBaseURL
	createURL.Path = "/categories"

	resp, err := resty.New().
		R().
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Token", ownerToken).
		SetContext(ctx).
		SetResult(&CategoryResp{}).
		SetBody(`{"name": "research"}`).
		Post(createURL.String())
	require.Nil(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode())

	cat, ok := resp.Result().(*CategoryResp)
	require.True(t, ok)
	require.NotZero(t, cat.ID)

	getURL := AppBaseURL
	getURL.Path = fmt.Sprintf("/categories/%d", cat.ID)

	// private category is invisible to non-members
	resp, err = resty.New().
		R().
		SetHeader("X-Token", guestToken).
		SetContext(ctx).
		Get(getURL.String())
	require.Nil(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode())

	shareURL := AppBaseURL
	shareURL.Path = fmt.Sprintf("/categories/%d/share", cat.ID)

	type ShareResp struct {
		ShareToken string `json:"share_token"`
	}

	resp, err = resty.New().
		R().
		SetHeader("X-Token", ownerToken).
		SetContext(ctx).
		SetResult(&ShareResp{}).
		Post(shareURL.String())
	require.Nil(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())

	share, ok := resp.Result().(*ShareResp)
	require.True(t, ok)
	require.NotEmpty(t, share.ShareToken)

	// the share link works without any auth header
	sharedURL := AppBaseURL
	sharedURL.Path = "/categories/shared/" + share.ShareToken

	resp, err = resty.New().
		R().
		SetContext(ctx).
		Get(sharedURL.String())
	require.Nil(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())

	collabURL := AppBaseURL
	collabURL.Path = fmt.Sprintf("/categories/%d/collaborators", cat.ID)

	resp, err = resty.New().
		R().
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Token", ownerToken).
		SetContext(ctx).
		SetBody(`{"email": "guest@gmail.com", "role": "reader"}`).
		Post(collabURL.String())
	require.Nil(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode())

	// membership makes the category visible to the guest
	resp, err = resty.New().
		R().
		SetHeader("X-Token", guestToken).
		SetContext(ctx).
		Get(getURL.String())
	require.Nil(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())

	// readers cannot revoke the share link
	resp, err = resty.New().
		R().
		SetHeader("X-Token", guestToken).
		SetContext(ctx).
		Delete(shareURL.String())
	require.Nil(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode())
}
