package service

import (
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hivemark/hivemark-back/internal/access"
	"github.com/hivemark/hivemark-back/internal/apperr"
	"github.com/hivemark/hivemark-back/internal/db"
)

const (
	PublicListDefaultLimit = 50
	PublicListMaxLimit     = 100
)

type (
	Bookmark struct {
		db     *gorm.DB
		engine *access.Engine
		logger *zap.SugaredLogger
	}

	// PublicBookmark is a row of the unauthenticated public listing.
	PublicBookmark struct {
		ID           uint64  `json:"id"`
		URL          string  `json:"url"`
		Body         *string `json:"body,omitempty"`
		Visits       uint64  `json:"visits"`
		CategoryID   uint64  `json:"category_id"`
		CategoryName string  `json:"category_name"`
	}
)

func NewBookmark(conn *gorm.DB, engine *access.Engine, l *zap.SugaredLogger) *Bookmark {
	return &Bookmark{
		db:     conn,
		engine: engine,
		logger: l,
	}
}

func (s *Bookmark) Create(user *db.User, url string, body *string, categoryID *uint64) (*db.Bookmark, error) {
	if url == "" {
		return nil, apperr.New(apperr.KindInvalidArgument, "url is required")
	}
	if categoryID != nil {
		if err := s.checkCategoryAccess(user.ID, *categoryID); err != nil {
			return nil, err
		}
	}

	model := db.Bookmark{
		URL:        url,
		Body:       body,
		UserID:     user.ID,
		CategoryID: categoryID,
	}
	if res := s.db.Create(&model); res.Error != nil {
		return nil, errors.Wrap(res.Error, "create bookmark")
	}
	return &model, nil
}

// Get returns one of the caller's own bookmarks and counts the visit.
func (s *Bookmark) Get(user *db.User, id uint64) (*db.Bookmark, error) {
	model, err := s.resolveOwn(user, id)
	if err != nil {
		return nil, err
	}

	res := s.db.Model(model).UpdateColumn("visits", gorm.Expr("visits + ?", 1))
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "count visit")
	}
	model.Visits++
	return model, nil
}

// Update modifies one of the caller's own bookmarks. categorySet
// distinguishes "leave the category alone" from "detach" (set with a nil
// id).
func (s *Bookmark) Update(user *db.User, id uint64, url, body *string, categorySet bool, categoryID *uint64) (*db.Bookmark, error) {
	model, err := s.resolveOwn(user, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if url != nil {
		if *url == "" {
			return nil, apperr.New(apperr.KindInvalidArgument, "url is required")
		}
		updates["url"] = *url
	}
	if body != nil {
		updates["body"] = *body
	}
	if categorySet {
		if categoryID != nil {
			if err := s.checkCategoryAccess(user.ID, *categoryID); err != nil {
				return nil, err
			}
		}
		updates["category_id"] = categoryID
	}
	if len(updates) == 0 {
		return model, nil
	}

	if res := s.db.Model(model).Updates(updates); res.Error != nil {
		return nil, errors.Wrap(res.Error, "update bookmark")
	}
	return model, nil
}

func (s *Bookmark) Delete(user *db.User, id uint64) error {
	model, err := s.resolveOwn(user, id)
	if err != nil {
		return err
	}
	if res := s.db.Delete(&db.Bookmark{}, model.ID); res.Error != nil {
		return errors.Wrap(res.Error, "delete bookmark")
	}
	return nil
}

// List returns the caller's bookmarks, optionally filtered by a
// case-insensitive substring over url and body.
func (s *Bookmark) List(user *db.User, search string) ([]db.Bookmark, error) {
	q := s.db.Where("user_id = ?", user.ID)
	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(url) LIKE ? OR LOWER(body) LIKE ?", pattern, pattern)
	}

	bookmarks := make([]db.Bookmark, 0)
	if res := q.Order("id").Find(&bookmarks); res.Error != nil {
		return nil, errors.Wrap(res.Error, "list bookmarks")
	}
	return bookmarks, nil
}

// PublicList pages through bookmarks that sit in public categories. No
// authentication required. Returns the page and the total match count.
func (s *Bookmark) PublicList(limit, offset int, search string, categoryID *uint64) ([]PublicBookmark, int64, error) {
	if limit <= 0 {
		limit = PublicListDefaultLimit
	}
	if limit > PublicListMaxLimit {
		limit = PublicListMaxLimit
	}
	if offset < 0 {
		offset = 0
	}

	cond := squirrel.And{squirrel.Eq{"c.is_public": true}}
	if categoryID != nil {
		cond = append(cond, squirrel.Eq{"b.category_id": *categoryID})
	}
	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		cond = append(cond, squirrel.Or{
			squirrel.Like{"LOWER(b.url)": pattern},
			squirrel.Like{"LOWER(b.body)": pattern},
		})
	}

	countSQL, countArgs, err := squirrel.
		Select("COUNT(*)").From("bookmarks b").
		Join("categories c ON b.category_id = c.id").
		Where(cond).
		ToSql()
	if err != nil {
		return nil, 0, errors.Wrap(err, "build count sql")
	}

	var total int64
	if res := s.db.Raw(countSQL, countArgs...).Scan(&total); res.Error != nil {
		return nil, 0, errors.Wrap(res.Error, "count public bookmarks")
	}

	listSQL, listArgs, err := squirrel.
		Select("b.id", "b.url", "b.body", "b.visits", "b.category_id", "c.name AS category_name").
		From("bookmarks b").
		Join("categories c ON b.category_id = c.id").
		Where(cond).
		OrderBy("b.id").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, errors.Wrap(err, "build list sql")
	}

	items := make([]PublicBookmark, 0)
	if res := s.db.Raw(listSQL, listArgs...).Scan(&items); res.Error != nil {
		return nil, 0, errors.Wrap(res.Error, "list public bookmarks")
	}
	return items, total, nil
}

// checkCategoryAccess requires at least a role on the category or its
// public flag; an existing but inaccessible category answers not-found,
// the same as an absent one.
func (s *Bookmark) checkCategoryAccess(userID, categoryID uint64) error {
	cat := db.Category{}
	res := s.db.First(&cat, categoryID)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.KindNotFound, "category not found")
		}
		return errors.Wrap(res.Error, "find category")
	}

	ok, err := s.engine.CanRead(s.db, &userID, &cat, false)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.New(apperr.KindNotFound, "category not found")
	}
	return nil
}

func (s *Bookmark) resolveOwn(user *db.User, id uint64) (*db.Bookmark, error) {
	model := db.Bookmark{}
	res := s.db.Where("user_id = ?", user.ID).First(&model, id)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "bookmark not found")
		}
		return nil, errors.Wrap(res.Error, "find bookmark")
	}
	return &model, nil
}
