package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xlzd/gotp"
)

func TestUserServiceCheck(t *testing.T) {
	db := newTestDB(t)
	settingService := NewSettingService(db)
	service := NewUserService(db, settingService)

	// Opening an empty database seeds admin/admin.
	user, err := service.Check("admin", "admin", "")
	assert.NoError(t, err)
	assert.Equal(t, "admin", user.Username)

	_, err = service.Check("admin", "wrong", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Unknown usernames are indistinguishable from wrong passwords.
	_, err = service.Check("nobody", "admin", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserServiceTwoFactor(t *testing.T) {
	db := newTestDB(t)
	settingService := NewSettingService(db)
	service := NewUserService(db, settingService)

	const token = "JBSWY3DPEHPK3PXP"
	assert.NoError(t, settingService.SetTwoFactorToken(token))
	assert.NoError(t, settingService.SetTwoFactorEnable(true))

	_, err := service.Check("admin", "admin", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.Check("admin", "admin", "000000")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	code := gotp.NewDefaultTOTP(token).Now()
	user, err := service.Check("admin", "admin", code)
	assert.NoError(t, err)
	assert.Equal(t, "admin", user.Username)
}

func TestUserServiceUpdateUser(t *testing.T) {
	db := newTestDB(t)
	settingService := NewSettingService(db)
	service := NewUserService(db, settingService)

	assert.NoError(t, settingService.SetTwoFactorToken("JBSWY3DPEHPK3PXP"))
	assert.NoError(t, settingService.SetTwoFactorEnable(true))

	user, err := service.GetFirstUser()
	assert.NoError(t, err)

	// Changing credentials drops two-factor with them.
	err = service.UpdateUser(user.Id, "principal", "s3cret!")
	assert.NoError(t, err)

	enabled, err := settingService.GetTwoFactorEnable()
	assert.NoError(t, err)
	assert.False(t, enabled)

	checked, err := service.Check("principal", "s3cret!", "")
	assert.NoError(t, err)
	assert.Equal(t, "principal", checked.Username)

	_, err = service.Check("admin", "admin", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserServiceUpdateFirstUser(t *testing.T) {
	db := newTestDB(t)
	settingService := NewSettingService(db)
	service := NewUserService(db, settingService)

	assert.Error(t, service.UpdateFirstUser("", "password"))
	assert.Error(t, service.UpdateFirstUser("username", ""))

	assert.NoError(t, service.UpdateFirstUser("headmaster", "changeme"))
	user, err := service.Check("headmaster", "changeme", "")
	assert.NoError(t, err)
	assert.Equal(t, "headmaster", user.Username)
}
