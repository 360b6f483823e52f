package service

import (
	"errors"

	"github.com/xlzd/gotp"
	"gorm.io/gorm"

	"github.com/alnoor-academy/school-cms/database"
	"github.com/alnoor-academy/school-cms/database/model"
	"github.com/alnoor-academy/school-cms/logger"
	"github.com/alnoor-academy/school-cms/util/crypto"
)

type UserService struct {
	db             *gorm.DB
	settingService *SettingService
}

func NewUserService(db *gorm.DB, settingService *SettingService) *UserService {
	return &UserService{db: db, settingService: settingService}
}

func (s *UserService) GetFirstUser() (*model.User, error) {
	user := &model.User{}
	err := s.db.Model(model.User{}).
		First(user).
		Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Check verifies a credential pair, and the TOTP code when two-factor is
// enabled. Unknown usernames and wrong passwords both come back as
// ErrInvalidCredentials; the caller cannot tell them apart.
func (s *UserService) Check(username, password, twoFactorCode string) (*model.User, error) {
	user := &model.User{}
	err := s.db.Model(model.User{}).
		Where("username = ?", username).
		First(user).
		Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrInvalidCredentials
	} else if err != nil {
		logger.Warning("check user err:", err)
		return nil, err
	}

	if !crypto.CheckPasswordHash(user.Password, password) {
		return nil, ErrInvalidCredentials
	}

	twoFactorEnable, err := s.settingService.GetTwoFactorEnable()
	if err != nil {
		logger.Warning("check two factor err:", err)
		return nil, err
	}

	if twoFactorEnable {
		twoFactorToken, err := s.settingService.GetTwoFactorToken()
		if err != nil {
			logger.Warning("check two factor token err:", err)
			return nil, err
		}

		if gotp.NewDefaultTOTP(twoFactorToken).Now() != twoFactorCode {
			return nil, ErrInvalidCredentials
		}
	}

	return user, nil
}

// UpdateUser changes the admin credentials. Two-factor is switched off at the
// same time since its token was tied to the old credentials.
func (s *UserService) UpdateUser(id int, username, password string) error {
	hashedPassword, err := crypto.HashPasswordAsBcrypt(password)
	if err != nil {
		return err
	}

	twoFactorEnable, err := s.settingService.GetTwoFactorEnable()
	if err != nil {
		return err
	}
	if twoFactorEnable {
		s.settingService.SetTwoFactorEnable(false)
		s.settingService.SetTwoFactorToken("")
	}

	return s.db.Model(model.User{}).
		Where("id = ?", id).
		Updates(map[string]any{"username": username, "password": hashedPassword}).
		Error
}

func (s *UserService) UpdateFirstUser(username, password string) error {
	if username == "" {
		return errors.New("username can not be empty")
	} else if password == "" {
		return errors.New("password can not be empty")
	}
	hashedPassword, err := crypto.HashPasswordAsBcrypt(password)
	if err != nil {
		return err
	}

	user := &model.User{}
	dbErr := s.db.Model(model.User{}).First(user).Error
	if database.IsNotFound(dbErr) {
		user.Username = username
		user.Password = hashedPassword
		return s.db.Model(model.User{}).Create(user).Error
	} else if dbErr != nil {
		return dbErr
	}
	user.Username = username
	user.Password = hashedPassword
	return s.db.Save(user).Error
}
