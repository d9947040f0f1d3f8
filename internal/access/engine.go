// Package access holds the category permission model: collaborator roles,
// ownership transfer and the share-token lifecycle. The engine is stateless;
// every method operates on the transaction handle it is given, so callers
// decide the transaction scope.
package access

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/hivemark/hivemark-back/internal/apperr"
	"github.com/hivemark/hivemark-back/internal/db"
)

type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// RoleOf resolves the acting user's role on a category. The OwnerID column
// is the source of truth for ownership, so it is consulted before the
// collaborator table.
func (e *Engine) RoleOf(tx *gorm.DB, userID uint64, cat *db.Category) (db.Role, error) {
	if cat.OwnerID == userID {
		return db.RoleOwner, nil
	}
	m := db.CategoryCollaborator{}
	res := tx.Where("user_id = ? AND category_id = ?", userID, cat.ID).First(&m)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return db.RoleNone, nil
		}
		return db.RoleNone, errors.Wrap(res.Error, "find collaborator")
	}
	return m.Role, nil
}

// CanRead reports whether the given identity may read the category. A nil
// userID is an unauthenticated caller; viaShareToken marks a category that
// was resolved through ResolveByShareToken, which grants read by itself.
func (e *Engine) CanRead(tx *gorm.DB, userID *uint64, cat *db.Category, viaShareToken bool) (bool, error) {
	if cat.IsPublic || viaShareToken {
		return true, nil
	}
	if userID == nil {
		return false, nil
	}
	role, err := e.RoleOf(tx, *userID, cat)
	if err != nil {
		return false, err
	}
	return role != db.RoleNone, nil
}

func (e *Engine) CanWrite(tx *gorm.DB, userID uint64, cat *db.Category) (bool, error) {
	role, err := e.RoleOf(tx, userID, cat)
	if err != nil {
		return false, err
	}
	return role == db.RoleOwner || role == db.RoleEditor, nil
}

func (e *Engine) CanAdminister(tx *gorm.DB, userID uint64, cat *db.Category) (bool, error) {
	role, err := e.RoleOf(tx, userID, cat)
	if err != nil {
		return false, err
	}
	return role == db.RoleOwner, nil
}

// GrantOwnership inserts the owner membership row for a freshly created
// category. Category creation and this insert must share a transaction so
// the owner row can never be missing.
func (e *Engine) GrantOwnership(tx *gorm.DB, cat *db.Category) error {
	res := tx.Create(&db.CategoryCollaborator{
		UserID:     cat.OwnerID,
		CategoryID: cat.ID,
		Role:       db.RoleOwner,
	})
	if res.Error != nil {
		return errors.Wrap(res.Error, "create owner membership")
	}
	return nil
}

// AddCollaborator adds targetID to the category with the given role and
// makes sure a share token exists, so an invitation can carry a working
// read-only link. Returns the share token.
func (e *Engine) AddCollaborator(tx *gorm.DB, actingID uint64, cat *db.Category, targetID uint64, role db.Role) (string, error) {
	if role != db.RoleEditor && role != db.RoleReader {
		return "", apperr.Newf(apperr.KindInvalidArgument, "role must be %q or %q", db.RoleEditor, db.RoleReader)
	}

	ok, err := e.CanAdminister(tx, actingID, cat)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", apperr.New(apperr.KindForbidden, "only the owner may add collaborators")
	}

	target := db.User{}
	res := tx.First(&target, targetID)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return "", apperr.New(apperr.KindNotFound, "user not found")
		}
		return "", errors.Wrap(res.Error, "find target user")
	}

	existing, err := e.RoleOf(tx, targetID, cat)
	if err != nil {
		return "", err
	}
	if existing != db.RoleNone {
		return "", apperr.New(apperr.KindConflict, "user is already a collaborator")
	}

	res = tx.Create(&db.CategoryCollaborator{
		UserID:     targetID,
		CategoryID: cat.ID,
		Role:       role,
	})
	if res.Error != nil {
		return "", errors.Wrap(res.Error, "create membership")
	}

	return e.ensureShareToken(tx, cat)
}

// RemoveCollaborator deletes targetID's membership. The owner row may never
// be removed; ownership has to be transferred first.
func (e *Engine) RemoveCollaborator(tx *gorm.DB, actingID uint64, cat *db.Category, targetID uint64) error {
	ok, err := e.CanAdminister(tx, actingID, cat)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.New(apperr.KindForbidden, "only the owner may remove collaborators")
	}

	if targetID == cat.OwnerID {
		return apperr.New(apperr.KindForbidden, "cannot remove the owner; transfer ownership first")
	}

	res := tx.Where("user_id = ? AND category_id = ?", targetID, cat.ID).
		Delete(&db.CategoryCollaborator{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete membership")
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.KindNotFound, "user is not a collaborator")
	}
	return nil
}

// UpdateRole changes a collaborator's role. Setting role "owner" on someone
// else is an ownership transfer: the owner column moves, the previous owner
// is demoted to editor and the target's row becomes owner. The caller is
// expected to run this inside a transaction; all three writes either land
// together or not at all.
func (e *Engine) UpdateRole(tx *gorm.DB, actingID uint64, cat *db.Category, targetID uint64, newRole db.Role) error {
	if newRole != db.RoleOwner && newRole != db.RoleEditor {
		return apperr.Newf(apperr.KindInvalidArgument, "role must be %q or %q", db.RoleOwner, db.RoleEditor)
	}

	ok, err := e.CanAdminister(tx, actingID, cat)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.New(apperr.KindForbidden, "only the owner may change roles")
	}

	m := db.CategoryCollaborator{}
	res := tx.Where("user_id = ? AND category_id = ?", targetID, cat.ID).First(&m)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.KindNotFound, "user is not a collaborator")
		}
		return errors.Wrap(res.Error, "find membership")
	}

	if newRole == db.RoleOwner {
		if targetID == actingID {
			return nil
		}
		return e.transferOwnership(tx, cat, targetID)
	}

	// Demoting the current owner directly would leave the category without
	// one; the demotion happens as part of a transfer instead.
	if targetID == cat.OwnerID {
		return apperr.New(apperr.KindForbidden, "cannot demote the owner; transfer ownership instead")
	}

	res = tx.Model(&db.CategoryCollaborator{}).
		Where("user_id = ? AND category_id = ?", targetID, cat.ID).
		Update("role", newRole)
	if res.Error != nil {
		return errors.Wrap(res.Error, "update role")
	}
	return nil
}

func (e *Engine) transferOwnership(tx *gorm.DB, cat *db.Category, targetID uint64) error {
	previousOwner := cat.OwnerID

	res := tx.Model(&db.Category{}).Where("id = ?", cat.ID).Update("owner_id", targetID)
	if res.Error != nil {
		return errors.Wrap(res.Error, "update category owner")
	}

	res = tx.Model(&db.CategoryCollaborator{}).
		Where("user_id = ? AND category_id = ?", previousOwner, cat.ID).
		Update("role", db.RoleEditor)
	if res.Error != nil {
		return errors.Wrap(res.Error, "demote previous owner")
	}

	res = tx.Model(&db.CategoryCollaborator{}).
		Where("user_id = ? AND category_id = ?", targetID, cat.ID).
		Update("role", db.RoleOwner)
	if res.Error != nil {
		return errors.Wrap(res.Error, "promote new owner")
	}

	cat.OwnerID = targetID
	return nil
}

// GenerateShareToken returns the category's share token, creating one when
// absent. An existing token is returned unchanged; rotation goes through
// RevokeShareToken first.
func (e *Engine) GenerateShareToken(tx *gorm.DB, actingID uint64, cat *db.Category) (string, error) {
	ok, err := e.CanAdminister(tx, actingID, cat)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", apperr.New(apperr.KindForbidden, "only the owner may share the category")
	}
	return e.ensureShareToken(tx, cat)
}

func (e *Engine) RevokeShareToken(tx *gorm.DB, actingID uint64, cat *db.Category) error {
	ok, err := e.CanAdminister(tx, actingID, cat)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.New(apperr.KindForbidden, "only the owner may revoke sharing")
	}

	res := tx.Model(&db.Category{}).Where("id = ?", cat.ID).Update("share_token", nil)
	if res.Error != nil {
		return errors.Wrap(res.Error, "revoke share token")
	}
	cat.ShareToken = nil
	return nil
}

func (e *Engine) ResolveByShareToken(tx *gorm.DB, token string) (*db.Category, error) {
	cat := db.Category{}
	res := tx.Where("share_token = ?", token).First(&cat)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "category not found")
		}
		return nil, errors.Wrap(res.Error, "find category by share token")
	}
	return &cat, nil
}

func (e *Engine) ensureShareToken(tx *gorm.DB, cat *db.Category) (string, error) {
	if cat.ShareToken != nil {
		return *cat.ShareToken, nil
	}

	token := uuid.New().String()
	res := tx.Model(&db.Category{}).Where("id = ?", cat.ID).Update("share_token", token)
	if res.Error != nil {
		return "", errors.Wrap(res.Error, "store share token")
	}
	cat.ShareToken = &token
	return token, nil
}
