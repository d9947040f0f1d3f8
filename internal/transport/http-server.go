package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hivemark/hivemark-back/internal/apperr"
	"github.com/hivemark/hivemark-back/internal/config"
	"github.com/hivemark/hivemark-back/internal/db"
	"github.com/hivemark/hivemark-back/internal/service"
)

type (
	RegisterReq struct {
		Username string `json:"username" validate:"required"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
	}

	LoginReq struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	PasswordResetReq struct {
		Email string `json:"email" validate:"required,email"`
	}

	PasswordReq struct {
		Password string `json:"password" validate:"required,min=8"`
	}

	UserUpdateReq struct {
		Username *string `json:"username"`
		Email    *string `json:"email" validate:"omitempty,email"`
		Password *string `json:"password" validate:"omitempty,min=8"`
	}

	UserResp struct {
		ID        uint64    `json:"id"`
		Username  string    `json:"username"`
		Email     string    `json:"email"`
		Verified  bool      `json:"verified"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}

	CategoryReq struct {
		Name     string `json:"name" validate:"required"`
		IsPublic bool   `json:"is_public"`
	}

	CategoryUpdateReq struct {
		Name     *string `json:"name"`
		IsPublic *bool   `json:"is_public"`
	}

	CategoryResp struct {
		ID       uint64 `json:"id"`
		Name     string `json:"name"`
		OwnerID  uint64 `json:"owner_id"`
		IsPublic bool   `json:"is_public"`
		Shared   bool   `json:"shared"`
	}

	CategoryDetailResp struct {
		CategoryResp
		Bookmarks []BookmarkResp `json:"bookmarks"`
	}

	CollaboratorReq struct {
		Email string `json:"email" validate:"required,email"`
		Role  string `json:"role" validate:"required"`
	}

	CollaboratorRoleReq struct {
		Role string `json:"role" validate:"required"`
	}

	ShareResp struct {
		ShareToken string `json:"share_token"`
	}

	BookmarkReq struct {
		URL        string  `json:"url" validate:"required,url"`
		Body       *string `json:"body"`
		CategoryID *uint64 `json:"category_id"`
	}

	// BookmarkUpdateReq treats category_id 0 as "detach"; an absent field
	// leaves the category alone.
	BookmarkUpdateReq struct {
		URL        *string `json:"url" validate:"omitempty,url"`
		Body       *string `json:"body"`
		CategoryID *uint64 `json:"category_id"`
	}

	BookmarkResp struct {
		ID         uint64    `json:"id"`
		URL        string    `json:"url"`
		Body       *string   `json:"body,omitempty"`
		ShortURL   *string   `json:"short_url,omitempty"`
		Visits     uint64    `json:"visits"`
		CategoryID *uint64   `json:"category_id,omitempty"`
		CreatedAt  time.Time `json:"created_at"`
		UpdatedAt  time.Time `json:"updated_at"`
	}

	PublicBookmarksResp struct {
		Items  []service.PublicBookmark `json:"items"`
		Total  int64                    `json:"total"`
		Limit  int                      `json:"limit"`
		Offset int                      `json:"offset"`
	}

	MessageResp struct {
		Message string `json:"message"`
	}

	CustomValidator struct {
		validator *validator.Validate
	}

	HTTPServer struct {
		db         *gorm.DB
		auth       *service.Auth
		categories *service.Category
		bookmarks  *service.Bookmark
		quotes     *service.Quote
		logger     *zap.SugaredLogger
	}
)

func NewHTTPServer(
	lc fx.Lifecycle,
	cfg *config.Config,
	conn *gorm.DB,
	auth *service.Auth,
	categories *service.Category,
	bookmarks *service.Bookmark,
	quotes *service.Quote,
	logger *zap.SugaredLogger,
) *HTTPServer {
	e := echo.New()

	instance := HTTPServer{
		db:         conn,
		auth:       auth,
		categories: categories,
		bookmarks:  bookmarks,
		quotes:     quotes,
		logger:     logger,
	}

	authG := e.Group("/auth")
	authG.POST("/register", instance.Register)
	authG.POST("/login", instance.Login)
	authG.POST("/logout", instance.Logout)
	authG.GET("/verify/:token", instance.VerifyEmail)
	authG.POST("/password-reset", instance.RequestPasswordReset)
	authG.POST("/password-reset/:token", instance.ResetPassword)
	authG.GET("/user", instance.UserGet)
	authG.PATCH("/user", instance.UserUpdate)
	authG.DELETE("/user", instance.UserDelete)

	categoryG := e.Group("/categories")
	categoryG.POST("", instance.CategoryCreate)
	categoryG.GET("", instance.CategoryList)
	categoryG.GET("/shared/:token", instance.CategoryGetShared)
	categoryG.GET("/:id", instance.CategoryGet)
	categoryG.PATCH("/:id", instance.CategoryUpdate)
	categoryG.DELETE("/:id", instance.CategoryDelete)
	categoryG.POST("/:id/collaborators", instance.CollaboratorAdd)
	categoryG.PATCH("/:id/collaborators/:userId", instance.CollaboratorUpdateRole)
	categoryG.DELETE("/:id/collaborators/:userId", instance.CollaboratorRemove)
	categoryG.POST("/:id/share", instance.CategoryShare)
	categoryG.DELETE("/:id/share", instance.CategoryUnshare)

	bookmarkG := e.Group("/bookmarks")
	bookmarkG.POST("", instance.BookmarkCreate)
	bookmarkG.GET("", instance.BookmarkList)
	bookmarkG.GET("/public", instance.BookmarkPublicList)
	bookmarkG.GET("/:id", instance.BookmarkGet)
	bookmarkG.PATCH("/:id", instance.BookmarkUpdate)
	bookmarkG.DELETE("/:id", instance.BookmarkDelete)

	quoteG := e.Group("/quotes")
	quoteG.GET("/random", instance.QuoteRandom)
	quoteG.GET("/authors", instance.QuoteAuthors)

	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })

	e.Use(middleware.CORS())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyDumpWithConfig(middleware.BodyDumpConfig{
		Skipper: func(c echo.Context) bool {
			return !strings.HasPrefix(c.Path(), "/auth")
		},
		Handler: func(c echo.Context, reqBody, resBody []byte) {
			logger.Debugw("auth request",
				"path", c.Path(),
				"body", string(censorBody(reqBody)),
			)
		},
	}))

	e.Use(instance.AuthMiddleware)

	e.Validator = &CustomValidator{validator: validator.New()}
	e.HTTPErrorHandler = instance.ErrorHandler

	echo.NotFoundHandler = func(c echo.Context) error {
		return c.NoContent(http.StatusNotFound)
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				listen := cfg.Host + ":" + cfg.Port
				if err := e.Start(listen); err != nil && err != http.ErrServerClosed {
					e.Logger.Fatal("shutting down the server")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping HTTP server.")
			return e.Shutdown(ctx)
		},
	})

	return &instance
}

func (s *HTTPServer) Register(c echo.Context) error {
	req := RegisterReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	if _, err := s.auth.Register(req.Username, req.Email, req.Password); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, MessageResp{Message: "user registered successfully"})
}

func (s *HTTPServer) Login(c echo.Context) error {
	req := LoginReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	token, err := s.auth.Login(req.Username, req.Password)
	if err != nil {
		return err
	}
	resp := struct {
		Token string `json:"token"`
	}{
		Token: token,
	}
	return c.JSON(http.StatusOK, &resp)
}

func (s *HTTPServer) Logout(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	if err := s.auth.Logout(user); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MessageResp{Message: "successfully logged out"})
}

func (s *HTTPServer) VerifyEmail(c echo.Context) error {
	token, err := GetParam(c, "token")
	if err != nil {
		return err
	}
	if err := s.auth.VerifyEmail(token); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MessageResp{Message: "email verified"})
}

// RequestPasswordReset answers the same regardless of whether the email is
// registered.
func (s *HTTPServer) RequestPasswordReset(c echo.Context) error {
	req := PasswordResetReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}
	if err := s.auth.RequestPasswordReset(req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MessageResp{Message: "if the email is registered, a reset link has been sent"})
}

func (s *HTTPServer) ResetPassword(c echo.Context) error {
	token, err := GetParam(c, "token")
	if err != nil {
		return err
	}
	req := PasswordReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}
	if err := s.auth.ResetPassword(token, req.Password); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MessageResp{Message: "password has been reset"})
}

func (s *HTTPServer) UserGet(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResp(user))
}

func (s *HTTPServer) UserUpdate(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	req := UserUpdateReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	updated, err := s.auth.Update(user, req.Username, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResp(updated))
}

func (s *HTTPServer) UserDelete(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	if err := s.auth.Delete(user); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) CategoryCreate(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	req := CategoryReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	cat, err := s.categories.Create(user, req.Name, req.IsPublic)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, categoryResp(cat))
}

func (s *HTTPServer) CategoryList(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	cats, err := s.categories.List(user.ID, c.QueryParam("name"))
	if err != nil {
		return err
	}

	resp := make([]CategoryResp, len(cats))
	for i := range cats {
		resp[i] = categoryResp(&cats[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *HTTPServer) CategoryGet(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}

	var userID *uint64
	if user, err := GetUserFromContext(c); err == nil {
		userID = &user.ID
	}

	cat, err := s.categories.Get(userID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, categoryDetailResp(cat))
}

func (s *HTTPServer) CategoryGetShared(c echo.Context) error {
	token, err := GetParam(c, "token")
	if err != nil {
		return err
	}

	cat, err := s.categories.GetShared(token)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, categoryDetailResp(cat))
}

func (s *HTTPServer) CategoryUpdate(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	req := CategoryUpdateReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	cat, err := s.categories.Update(user.ID, id, req.Name, req.IsPublic)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, categoryResp(cat))
}

func (s *HTTPServer) CategoryDelete(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	if err := s.categories.Delete(user.ID, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) CollaboratorAdd(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	req := CollaboratorReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	if err := s.categories.AddCollaborator(user, id, req.Email, db.Role(req.Role)); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, MessageResp{Message: "collaborator added"})
}

func (s *HTTPServer) CollaboratorUpdateRole(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	targetID, err := GetAndParseParam(c, "userId")
	if err != nil {
		return err
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	req := CollaboratorRoleReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	if err := s.categories.UpdateCollaboratorRole(user.ID, id, targetID, db.Role(req.Role)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MessageResp{Message: "role updated"})
}

func (s *HTTPServer) CollaboratorRemove(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	targetID, err := GetAndParseParam(c, "userId")
	if err != nil {
		return err
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	if err := s.categories.RemoveCollaborator(user.ID, id, targetID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) CategoryShare(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	token, err := s.categories.Share(user.ID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ShareResp{ShareToken: token})
}

func (s *HTTPServer) CategoryUnshare(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	if err := s.categories.Unshare(user.ID, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) BookmarkCreate(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	req := BookmarkReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	model, err := s.bookmarks.Create(user, req.URL, req.Body, req.CategoryID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, bookmarkResp(model))
}

func (s *HTTPServer) BookmarkList(c echo.Context) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	bookmarks, err := s.bookmarks.List(user, c.QueryParam("search"))
	if err != nil {
		return err
	}

	resp := make([]BookmarkResp, len(bookmarks))
	for i := range bookmarks {
		resp[i] = bookmarkResp(&bookmarks[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *HTTPServer) BookmarkGet(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	model, err := s.bookmarks.Get(user, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bookmarkResp(model))
}

func (s *HTTPServer) BookmarkUpdate(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	req := BookmarkUpdateReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	categorySet := req.CategoryID != nil
	categoryID := req.CategoryID
	if categorySet && *req.CategoryID == 0 {
		categoryID = nil
	}

	model, err := s.bookmarks.Update(user, id, req.URL, req.Body, categorySet, categoryID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bookmarkResp(model))
}

func (s *HTTPServer) BookmarkDelete(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}

	if err := s.bookmarks.Delete(user, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) BookmarkPublicList(c echo.Context) error {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return err
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		return err
	}

	var categoryID *uint64
	if raw := c.QueryParam("category_id"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return apperr.New(apperr.KindInvalidArgument, "invalid query param 'category_id'")
		}
		categoryID = &v
	}

	items, total, err := s.bookmarks.PublicList(limit, offset, c.QueryParam("search"), categoryID)
	if err != nil {
		return err
	}

	effectiveLimit := limit
	if effectiveLimit <= 0 {
		effectiveLimit = service.PublicListDefaultLimit
	}
	if effectiveLimit > service.PublicListMaxLimit {
		effectiveLimit = service.PublicListMaxLimit
	}
	return c.JSON(http.StatusOK, PublicBookmarksResp{
		Items:  items,
		Total:  total,
		Limit:  effectiveLimit,
		Offset: offset,
	})
}

func (s *HTTPServer) QuoteRandom(c echo.Context) error {
	quote, err := s.quotes.Random(c.QueryParam("tags"), c.QueryParam("author"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, quote)
}

func (s *HTTPServer) QuoteAuthors(c echo.Context) error {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return err
	}

	authors, err := s.quotes.Authors(c.QueryParam("search"), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authors)
}

func (s *HTTPServer) AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	// Open routes never need a token. GET on a single category is
	// token-optional: public categories stay readable anonymously.
	open := map[string]bool{
		"/ping":                       true,
		"/auth/register":              true,
		"/auth/login":                 true,
		"/auth/verify/:token":         true,
		"/auth/password-reset":        true,
		"/auth/password-reset/:token": true,
		"/categories/shared/:token":   true,
		"/bookmarks/public":           true,
	}

	return func(c echo.Context) error {
		if open[c.Path()] {
			return next(c)
		}

		token := ""
		for key, values := range c.Request().Header {
			if strings.ToLower(key) == "x-token" {
				token = values[0]
				break
			}
		}
		if token == "" {
			if c.Path() == "/categories/:id" && c.Request().Method == http.MethodGet {
				return next(c)
			}
			return c.NoContent(http.StatusUnauthorized)
		}
		user := db.User{}
		res := s.db.Where("token = ?", token).First(&user)
		if res.Error != nil {
			s.logger.Debug(errors.Wrap(res.Error, "find user in db"))
			return c.NoContent(http.StatusUnauthorized)
		}

		c.Set("user", &user)
		return next(c)
	}
}

// ErrorHandler maps service outcomes to HTTP status codes.
func (s *HTTPServer) ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	if he, ok := err.(*echo.HTTPError); ok {
		_ = c.JSON(he.Code, MessageResp{Message: echoMessage(he)})
		return
	}

	kind := apperr.KindOf(err)
	status := kindStatus(kind)
	if status == http.StatusInternalServerError {
		s.logger.Errorw("request failed", "path", c.Path(), "error", err)
		_ = c.JSON(status, MessageResp{Message: "internal server error"})
		return
	}

	var appErr *apperr.Error
	msg := kind.String()
	if errors.As(err, &appErr) {
		msg = appErr.Message()
	}
	_ = c.JSON(status, MessageResp{Message: msg})
}

func kindStatus(kind apperr.Kind) int {
	switch kind {
	case apperr.KindInvalidArgument:
		return http.StatusBadRequest
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindUnavailable:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func echoMessage(he *echo.HTTPError) string {
	if msg, ok := he.Message.(string); ok {
		return msg
	}
	return http.StatusText(he.Code)
}

// censorBody blanks the password field of a JSON body before it reaches a
// log line.
func censorBody(body []byte) []byte {
	parsed := map[string]interface{}{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return body
	}
	if _, ok := parsed["password"]; !ok {
		return body
	}
	parsed["password"] = "$censored"
	censored, err := json.Marshal(parsed)
	if err != nil {
		return body
	}
	return censored
}

////////

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func BindAndValidate(c echo.Context, v interface{}) error {
	var err error
	if err = c.Bind(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err = c.Validate(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func GetUserFromContext(c echo.Context) (*db.User, error) {
	user, ok := c.Get("user").(*db.User)
	if !ok || user == nil {
		return nil, apperr.New(apperr.KindUnauthorized, "not authenticated")
	}
	return user, nil
}

func GetParam(c echo.Context, name string) (string, error) {
	value := c.Param(name)
	if value == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "invalid path param '"+name+"'")
	}
	return value, nil
}

func GetAndParseParam(c echo.Context, name string) (uint64, error) {
	v, e := GetParam(c, name)
	if e != nil {
		return 0, e
	}
	vv, e := strconv.ParseUint(v, 10, 64)
	if e != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid path param '"+name+"'")
	}
	return vv, nil
}

func queryInt(c echo.Context, name string, fallback int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.New(apperr.KindInvalidArgument, "invalid query param '"+name+"'")
	}
	return v, nil
}

func userResp(u *db.User) UserResp {
	return UserResp{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Verified:  u.Verified,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func categoryResp(cat *db.Category) CategoryResp {
	return CategoryResp{
		ID:       cat.ID,
		Name:     cat.Name,
		OwnerID:  cat.OwnerID,
		IsPublic: cat.IsPublic,
		Shared:   cat.ShareToken != nil,
	}
}

func categoryDetailResp(cat *db.Category) CategoryDetailResp {
	bookmarks := make([]BookmarkResp, len(cat.Bookmarks))
	for i := range cat.Bookmarks {
		bookmarks[i] = bookmarkResp(&cat.Bookmarks[i])
	}
	return CategoryDetailResp{
		CategoryResp: categoryResp(cat),
		Bookmarks:    bookmarks,
	}
}

func bookmarkResp(b *db.Bookmark) BookmarkResp {
	return BookmarkResp{
		ID:         b.ID,
		URL:        b.URL,
		Body:       b.Body,
		ShortURL:   b.ShortURL,
		Visits:     b.Visits,
		CategoryID: b.CategoryID,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}
