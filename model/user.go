package model

import (
	"context"
	"strings"

	"github.com/Laisky/errors/v2"
	"gorm.io/gorm"

	"github.com/scriptgen-ra/scriptgen/common"
	"github.com/scriptgen-ra/scriptgen/common/helper"
)

const (
	RoleGuestUser  = 0
	RoleCommonUser = 1
	RoleAdminUser  = 10
	RoleRootUser   = 100
)

const (
	UserStatusEnabled  = 1
	UserStatusDisabled = 2
)

// User is an account allowed to upload templates and run generations.
type User struct {
	Id          int    `json:"id"`
	Username    string `json:"username" gorm:"unique;index" validate:"max=30"`
	Password    string `json:"password" gorm:"not null;" validate:"min=6,max=64"`
	Email       string `json:"email" gorm:"index" validate:"max=120"`
	FirstName   string `json:"firstName" gorm:"column:first_name"`
	LastName    string `json:"lastName" gorm:"column:last_name"`
	Role        int    `json:"role" gorm:"type:int;default:1"`
	Status      int    `json:"status" gorm:"type:int;default:1"`
	LastLoginAt int64  `json:"lastLoginAt" gorm:"bigint"`
	CreatedAt   int64  `json:"createdAt" gorm:"bigint;autoCreateTime:milli"`
	UpdatedAt   int64  `json:"updatedAt" gorm:"bigint;autoUpdateTime:milli"`
}

func (u *User) IsAdmin() bool {
	return u.Role >= RoleAdminUser
}

func (u *User) IsEnabled() bool {
	return u.Status == UserStatusEnabled
}

// Insert hashes the password and stores the user.
func (u *User) Insert(ctx context.Context) error {
	var err error
	if u.Password, err = common.Password2Hash(u.Password); err != nil {
		return err
	}
	if err = DB.WithContext(ctx).Create(u).Error; err != nil {
		return errors.Wrap(err, "create user")
	}
	return nil
}

// Update persists the non-zero fields; when updatePassword is set the
// password is re-hashed first.
func (u *User) Update(updatePassword bool) error {
	var err error
	if updatePassword {
		if u.Password, err = common.Password2Hash(u.Password); err != nil {
			return err
		}
	}
	if err = DB.Model(u).Updates(u).Error; err != nil {
		return errors.Wrap(err, "update user")
	}
	return nil
}

// ValidateAndFill checks the given credentials, filling the receiver with
// the stored record on success. The identifier matches either the username
// or the email address.
func (u *User) ValidateAndFill() error {
	identifier := strings.TrimSpace(u.Username)
	password := u.Password
	if identifier == "" || password == "" {
		return errors.New("username and password cannot be empty")
	}
	if err := DB.Where("username = ? OR email = ?", identifier, identifier).
		First(u).Error; err != nil {
		return errors.New("invalid username or password")
	}
	if !common.ValidatePasswordAndHash(password, u.Password) {
		return errors.New("invalid username or password")
	}
	if !u.IsEnabled() {
		return errors.New("user has been disabled")
	}
	u.LastLoginAt = helper.GetTimestamp()
	_ = DB.Model(u).Update("last_login_at", u.LastLoginAt).Error
	return nil
}

// FillUserById loads the record for the receiver's Id.
func (u *User) FillUserById() error {
	if u.Id == 0 {
		return errors.New("id is empty")
	}
	if err := DB.Where("id = ?", u.Id).First(u).Error; err != nil {
		return errors.Wrapf(err, "fill user by id %d", u.Id)
	}
	return nil
}

func GetUserById(id int) (*User, error) {
	if id == 0 {
		return nil, errors.New("id is empty")
	}
	var user User
	if err := DB.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, errors.Wrapf(err, "get user by id %d", id)
	}
	return &user, nil
}

func IsUsernameAlreadyTaken(username string) bool {
	return DB.Where("username = ?", username).Find(&User{}).RowsAffected == 1
}

func IsEmailAlreadyTaken(email string) bool {
	return DB.Where("email = ?", email).Find(&User{}).RowsAffected == 1
}
