package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/hivemark/hivemark-back/internal/apperr"
	"github.com/hivemark/hivemark-back/internal/db"
	"github.com/hivemark/hivemark-back/internal/mailer"
)

const (
	bcryptCost    = 14
	resetTokenTTL = time.Hour
)

type Auth struct {
	db     *gorm.DB
	mailer mailer.Mailer
	logger *zap.SugaredLogger
}

func NewAuth(db *gorm.DB, m mailer.Mailer, l *zap.SugaredLogger) *Auth {
	return &Auth{
		db:     db,
		mailer: m,
		logger: l,
	}
}

func (s *Auth) Register(username, email, password string) (*db.User, error) {
	hash, err := bcryptGen(password)
	if err != nil {
		return nil, errors.Wrap(err, "bcryptGen")
	}

	verification := uuid.New().String()
	user := db.User{
		Username:          username,
		Email:             email,
		PasswordHash:      hash,
		Token:             uuid.New().String(),
		VerificationToken: &verification,
	}
	if res := s.db.Create(&user); res.Error != nil {
		if isUniqueViolation(res.Error) {
			return nil, apperr.New(apperr.KindConflict, "user with this username or email already exists")
		}
		return nil, errors.Wrap(res.Error, "create user")
	}

	s.mailer.SendVerification(user.Email, user.Username, verification)
	return &user, nil
}

func (s *Auth) Login(username, password string) (string, error) {
	user := db.User{}
	res := s.db.Where("username = ?", username).First(&user)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return "", apperr.New(apperr.KindUnauthorized, "invalid username or password")
		}
		return "", errors.Wrap(res.Error, "find user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", apperr.New(apperr.KindUnauthorized, "invalid username or password")
	}

	token := uuid.New().String()
	if res := s.db.Model(&user).Update("token", token); res.Error != nil {
		return "", errors.Wrap(res.Error, "update token")
	}
	return token, nil
}

// Logout rotates the auth token, which invalidates every copy of the old
// one.
func (s *Auth) Logout(user *db.User) error {
	if res := s.db.Model(user).Update("token", uuid.New().String()); res.Error != nil {
		return errors.Wrap(res.Error, "rotate token")
	}
	return nil
}

func (s *Auth) VerifyEmail(token string) error {
	user := db.User{}
	res := s.db.Where("verification_token = ?", token).First(&user)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.KindNotFound, "invalid verification link")
		}
		return errors.Wrap(res.Error, "find user by verification token")
	}

	updates := map[string]interface{}{
		"verified":           true,
		"verification_token": nil,
	}
	if res := s.db.Model(&user).Updates(updates); res.Error != nil {
		return errors.Wrap(res.Error, "mark verified")
	}

	s.mailer.SendVerificationSuccess(user.Email, user.Username)
	return nil
}

func (s *Auth) Update(user *db.User, username, email, password *string) (*db.User, error) {
	updates := map[string]interface{}{}
	if username != nil {
		updates["username"] = *username
	}
	if email != nil {
		updates["email"] = *email
	}
	if password != nil {
		hash, err := bcryptGen(*password)
		if err != nil {
			return nil, errors.Wrap(err, "bcryptGen")
		}
		updates["password_hash"] = hash
	}
	if len(updates) == 0 {
		return user, nil
	}

	if res := s.db.Model(user).Updates(updates); res.Error != nil {
		if isUniqueViolation(res.Error) {
			return nil, apperr.New(apperr.KindConflict, "username or email already in use")
		}
		return nil, errors.Wrap(res.Error, "update user")
	}
	return user, nil
}

// Delete removes the user together with their bookmarks and owned
// categories. Categories are removed with their bookmarks and memberships,
// matching category deletion semantics.
func (s *Auth) Delete(user *db.User) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		ownedIDs := make([]uint64, 0)
		res := tx.Model(&db.Category{}).Where("owner_id = ?", user.ID).Pluck("id", &ownedIDs)
		if res.Error != nil {
			return errors.Wrap(res.Error, "list owned categories")
		}

		if len(ownedIDs) != 0 {
			if res := tx.Where("category_id IN (?)", ownedIDs).Delete(&db.Bookmark{}); res.Error != nil {
				return errors.Wrap(res.Error, "delete category bookmarks")
			}
			if res := tx.Where("category_id IN (?)", ownedIDs).Delete(&db.CategoryCollaborator{}); res.Error != nil {
				return errors.Wrap(res.Error, "delete category memberships")
			}
			if res := tx.Where("id IN (?)", ownedIDs).Delete(&db.Category{}); res.Error != nil {
				return errors.Wrap(res.Error, "delete owned categories")
			}
		}

		if res := tx.Where("user_id = ?", user.ID).Delete(&db.Bookmark{}); res.Error != nil {
			return errors.Wrap(res.Error, "delete bookmarks")
		}
		if res := tx.Where("user_id = ?", user.ID).Delete(&db.CategoryCollaborator{}); res.Error != nil {
			return errors.Wrap(res.Error, "delete memberships")
		}
		if res := tx.Delete(&db.User{}, user.ID); res.Error != nil {
			return errors.Wrap(res.Error, "delete user")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.mailer.SendAccountDeleted(user.Email, user.Username)
	return nil
}

// RequestPasswordReset always reports success to the caller so the endpoint
// cannot be used to probe which emails are registered.
func (s *Auth) RequestPasswordReset(email string) error {
	user := db.User{}
	res := s.db.Where("email = ?", email).First(&user)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil
		}
		return errors.Wrap(res.Error, "find user by email")
	}

	token := uuid.New().String()
	now := time.Now()
	updates := map[string]interface{}{
		"reset_token":   token,
		"reset_sent_at": now,
	}
	if res := s.db.Model(&user).Updates(updates); res.Error != nil {
		return errors.Wrap(res.Error, "store reset token")
	}

	s.mailer.SendPasswordReset(user.Email, user.Username, token)
	return nil
}

func (s *Auth) ResetPassword(token, newPassword string) error {
	user := db.User{}
	res := s.db.Where("reset_token = ?", token).First(&user)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.KindNotFound, "invalid or expired reset link")
		}
		return errors.Wrap(res.Error, "find user by reset token")
	}

	if user.ResetSentAt == nil || time.Since(*user.ResetSentAt) > resetTokenTTL {
		return apperr.New(apperr.KindNotFound, "invalid or expired reset link")
	}

	hash, err := bcryptGen(newPassword)
	if err != nil {
		return errors.Wrap(err, "bcryptGen")
	}

	updates := map[string]interface{}{
		"password_hash": hash,
		"reset_token":   nil,
		"reset_sent_at": nil,
		// existing sessions die with the old token
		"token": uuid.New().String(),
	}
	if res := s.db.Model(&user).Updates(updates); res.Error != nil {
		return errors.Wrap(res.Error, "apply password reset")
	}

	s.mailer.SendPasswordResetSuccess(user.Email, user.Username)
	return nil
}

func bcryptGen(pass string) (string, error) {
	passwordHashB, err := bcrypt.GenerateFromPassword([]byte(pass), bcryptCost)
	if err != nil {
		return "", errors.Wrap(err, "generate password hash")
	}
	return string(passwordHashB), nil
}
