package service

import (
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hivemark/hivemark-back/internal/access"
	"github.com/hivemark/hivemark-back/internal/apperr"
	"github.com/hivemark/hivemark-back/internal/db"
	"github.com/hivemark/hivemark-back/internal/mailer"
)

type Category struct {
	db     *gorm.DB
	engine *access.Engine
	mailer mailer.Mailer
	logger *zap.SugaredLogger
}

func NewCategory(conn *gorm.DB, engine *access.Engine, m mailer.Mailer, l *zap.SugaredLogger) *Category {
	return &Category{
		db:     conn,
		engine: engine,
		mailer: m,
		logger: l,
	}
}

// Create inserts the category and its owner membership row in one
// transaction, so the exactly-one-owner invariant holds from the start.
func (s *Category) Create(user *db.User, name string, isPublic bool) (*db.Category, error) {
	if name == "" {
		return nil, apperr.New(apperr.KindInvalidArgument, "category name is required")
	}

	cat := db.Category{
		Name:     name,
		OwnerID:  user.ID,
		IsPublic: isPublic,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if res := tx.Create(&cat); res.Error != nil {
			if isUniqueViolation(res.Error) {
				return apperr.New(apperr.KindConflict, "category with this name already exists for this user")
			}
			return errors.Wrap(res.Error, "create category")
		}
		return s.engine.GrantOwnership(tx, &cat)
	})
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

// List returns every category the user owns or collaborates on, optionally
// filtered by name, ordered by name.
func (s *Category) List(userID uint64, nameFilter string) ([]db.Category, error) {
	memberOf := s.db.Table("category_collaborators").
		Select("category_id").
		Where("user_id = ?", userID)

	q := s.db.Where("owner_id = ? OR id IN (?)", userID, memberOf)
	if nameFilter != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(nameFilter)+"%")
	}

	cats := make([]db.Category, 0)
	if res := q.Order("name").Find(&cats); res.Error != nil {
		return nil, errors.Wrap(res.Error, "list categories")
	}
	return cats, nil
}

// Get returns the category with its bookmarks. An existing but inaccessible
// category answers not-found, indistinguishable from an absent one.
func (s *Category) Get(userID *uint64, id uint64) (*db.Category, error) {
	cat, err := s.resolve(id)
	if err != nil {
		return nil, err
	}

	ok, err := s.engine.CanRead(s.db, userID, cat, false)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "category not found")
	}

	if res := s.db.Where("category_id = ?", cat.ID).Order("id").Find(&cat.Bookmarks); res.Error != nil {
		return nil, errors.Wrap(res.Error, "load bookmarks")
	}
	return cat, nil
}

// GetShared resolves a category by share token for an unauthenticated
// caller. Read-only by construction; nothing downstream accepts the token.
func (s *Category) GetShared(token string) (*db.Category, error) {
	cat, err := s.engine.ResolveByShareToken(s.db, token)
	if err != nil {
		return nil, err
	}
	if res := s.db.Where("category_id = ?", cat.ID).Order("id").Find(&cat.Bookmarks); res.Error != nil {
		return nil, errors.Wrap(res.Error, "load bookmarks")
	}
	return cat, nil
}

func (s *Category) Update(actingID, id uint64, name *string, isPublic *bool) (*db.Category, error) {
	cat, err := s.resolve(id)
	if err != nil {
		return nil, err
	}

	ok, err := s.engine.CanAdminister(s.db, actingID, cat)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.New(apperr.KindForbidden, "only the owner may modify the category")
	}

	updates := map[string]interface{}{}
	if name != nil {
		if *name == "" {
			return nil, apperr.New(apperr.KindInvalidArgument, "category name is required")
		}
		updates["name"] = *name
	}
	if isPublic != nil {
		updates["is_public"] = *isPublic
	}
	if len(updates) == 0 {
		return cat, nil
	}

	if res := s.db.Model(cat).Updates(updates); res.Error != nil {
		if isUniqueViolation(res.Error) {
			return nil, apperr.New(apperr.KindConflict, "category with this name already exists for this user")
		}
		return nil, errors.Wrap(res.Error, "update category")
	}
	return cat, nil
}

func (s *Category) Delete(actingID, id uint64) error {
	cat, err := s.resolve(id)
	if err != nil {
		return err
	}

	ok, err := s.engine.CanAdminister(s.db, actingID, cat)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.New(apperr.KindForbidden, "only the owner may delete the category")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if res := tx.Where("category_id = ?", cat.ID).Delete(&db.Bookmark{}); res.Error != nil {
			return errors.Wrap(res.Error, "delete bookmarks")
		}
		if res := tx.Where("category_id = ?", cat.ID).Delete(&db.CategoryCollaborator{}); res.Error != nil {
			return errors.Wrap(res.Error, "delete memberships")
		}
		if res := tx.Delete(&db.Category{}, cat.ID); res.Error != nil {
			return errors.Wrap(res.Error, "delete category")
		}
		return nil
	})
}

// AddCollaborator invites the user behind targetEmail. The invitation email
// goes out only after the transaction commits, carrying the share-token
// link the engine guarantees to exist.
func (s *Category) AddCollaborator(acting *db.User, catID uint64, targetEmail string, role db.Role) error {
	cat, err := s.resolve(catID)
	if err != nil {
		return err
	}

	target := db.User{}
	res := s.db.Where("email = ?", targetEmail).First(&target)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.KindNotFound, "user not found")
		}
		return errors.Wrap(res.Error, "find user by email")
	}

	var token string
	err = s.db.Transaction(func(tx *gorm.DB) error {
		token, err = s.engine.AddCollaborator(tx, acting.ID, cat, target.ID, role)
		return err
	})
	if err != nil {
		return err
	}

	s.mailer.SendCollaboratorInvitation(target.Email, acting.Username, cat.Name, token)
	return nil
}

func (s *Category) RemoveCollaborator(actingID, catID, targetUserID uint64) error {
	cat, err := s.resolve(catID)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.engine.RemoveCollaborator(tx, actingID, cat, targetUserID)
	})
}

func (s *Category) UpdateCollaboratorRole(actingID, catID, targetUserID uint64, role db.Role) error {
	cat, err := s.resolve(catID)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.engine.UpdateRole(tx, actingID, cat, targetUserID, role)
	})
}

func (s *Category) Share(actingID, catID uint64) (string, error) {
	cat, err := s.resolve(catID)
	if err != nil {
		return "", err
	}
	var token string
	err = s.db.Transaction(func(tx *gorm.DB) error {
		token, err = s.engine.GenerateShareToken(tx, actingID, cat)
		return err
	})
	return token, err
}

func (s *Category) Unshare(actingID, catID uint64) error {
	cat, err := s.resolve(catID)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.engine.RevokeShareToken(tx, actingID, cat)
	})
}

func (s *Category) resolve(id uint64) (*db.Category, error) {
	cat := db.Category{}
	res := s.db.First(&cat, id)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "category not found")
		}
		return nil, errors.Wrap(res.Error, "find category")
	}
	return &cat, nil
}
