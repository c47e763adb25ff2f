package services

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/ekuzmina/foodgram-go/internal/models"
	"github.com/ekuzmina/foodgram-go/internal/types"
	"github.com/ekuzmina/foodgram-go/internal/utils"
)

var validate = validator.New()

// usernames may contain word characters plus . @ + - and nothing else
var usernameRegex = regexp.MustCompile(`^[\w.@+-]+$`)

// RegisterInput is the registration command payload.
type RegisterInput struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"required,max=150"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Password  string `json:"password" validate:"required"`
}

// registerFieldnames maps RegisterInput struct fields to payload keys for
// the field-keyed error report.
var registerFieldNames = map[string]string{
	"Email":     "email",
	"Username":  "username",
	"FirstName": "first_name",
	"LastName":  "last_name",
	"Password":  "password",
}

// ValidateUsername checks the reserved literal and the character rules.
// The returned string is a user-facing message; empty means valid.
func ValidateUsername(username string) string {
	if strings.EqualFold(username, "me") {
		return "username \"me\" is reserved"
	}
	if !usernameRegex.MatchString(username) {
		return "username may only contain letters, digits and . @ + - characters"
	}
	return ""
}

// CreateUser validates the registration payload, collects every violation
// into one field-keyed report, and persists the user with a bcrypt hash.
// Duplicate email or username is reported on the owning field.
func CreateUser(db *gorm.DB, input RegisterInput) (*models.User, error) {
	errs := types.FieldErrors{}

	if err := validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				field := registerFieldNames[fe.StructField()]
				switch fe.Tag() {
				case "required":
					errs.Add(field, "this field is required")
				case "email":
					errs.Add(field, "enter a valid email address")
				case "max":
					errs.Add(field, "value is too long")
				default:
					errs.Add(field, "invalid value")
				}
			}
		} else {
			return nil, err
		}
	}

	if input.Username != "" && !errs.Has("username") {
		if msg := ValidateUsername(input.Username); msg != "" {
			errs.Add("username", msg)
		}
	}
	if input.Password != "" && !errs.Has("password") {
		if msg := utils.ValidatePassword(input.Password); msg != "" {
			errs.Add("password", msg)
		}
	}

	// Uniqueness pre-checks give per-field messages; the unique indexes stay
	// the final arbiter under races.
	if input.Email != "" && !errs.Has("email") {
		var count int64
		if err := db.Model(&models.User{}).Where("email = ?", input.Email).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			errs.Add("email", "a user with this email already exists")
		}
	}
	if input.Username != "" && !errs.Has("username") {
		var count int64
		if err := db.Model(&models.User{}).Where("username = ?", input.Username).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			errs.Add("username", "a user with this username already exists")
		}
	}

	if err := errs.OrNil(); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:        input.Email,
		Username:     input.Username,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PasswordHash: hash,
	}
	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &ConflictError{Reason: "a user with this email or username already exists"}
		}
		return nil, err
	}

	return &user, nil
}

// GetUser fetches a user by id.
func GetUser(db *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ListUsers returns one page of users ordered by username, with the total.
func ListUsers(db *gorm.DB, offset, limit int) ([]models.User, int64, error) {
	var total int64
	if err := db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	if err := db.Order("username").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Authenticate verifies email+password and returns the user.
func Authenticate(db *gorm.DB, email, password string) (*models.User, error) {
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrNotFound
	}
	return &user, nil
}

// SetPassword changes the password after verifying the current one.
// Violations are field-keyed like every other validation failure.
func SetPassword(db *gorm.DB, user *models.User, currentPassword, newPassword string) error {
	errs := types.FieldErrors{}

	if currentPassword == "" {
		errs.Add("current_password", "this field is required")
	} else if !utils.CheckPasswordHash(currentPassword, user.PasswordHash) {
		errs.Add("current_password", "current password is incorrect")
	}

	if newPassword == "" {
		errs.Add("new_password", "this field is required")
	} else if msg := utils.ValidatePassword(newPassword); msg != "" {
		errs.Add("new_password", msg)
	}

	if err := errs.OrNil(); err != nil {
		return err
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return db.Model(user).Update("password_hash", hash).Error
}

// SetAvatar decodes the base64 data URI, stores the file and updates the
// user. The previous avatar file is removed after the row update succeeds.
func SetAvatar(db *gorm.DB, user *models.User, mediaRoot, dataURI string) error {
	if dataURI == "" {
		return types.FieldErrors{"avatar": {"this field is required"}}
	}

	path, err := utils.SaveBase64Image(mediaRoot, "avatars", dataURI)
	if err != nil {
		return types.FieldErrors{"avatar": {err.Error()}}
	}

	previous := user.Avatar
	if err := db.Model(user).Update("avatar", path).Error; err != nil {
		return err
	}
	user.Avatar = path

	if previous != "" {
		_ = utils.RemoveImage(mediaRoot, previous)
	}
	return nil
}

// DeleteAvatar clears the avatar field and removes the stored file.
func DeleteAvatar(db *gorm.DB, user *models.User, mediaRoot string) error {
	previous := user.Avatar
	if err := db.Model(user).Update("avatar", "").Error; err != nil {
		return err
	}
	user.Avatar = ""

	if previous != "" {
		_ = utils.RemoveImage(mediaRoot, previous)
	}
	return nil
}
