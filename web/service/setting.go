package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"gorm.io/gorm"

	"github.com/alnoor-academy/school-cms/database"
	"github.com/alnoor-academy/school-cms/database/model"
	"github.com/alnoor-academy/school-cms/logger"
	"github.com/alnoor-academy/school-cms/util/common"
	"github.com/alnoor-academy/school-cms/util/random"
	"github.com/alnoor-academy/school-cms/web/entity"
)

var defaultValueMap = map[string]string{
	// server
	"webListen":     "",
	"webDomain":     "",
	"webPort":       "8080",
	"webCertFile":   "",
	"webKeyFile":    "",
	"webBasePath":   "/",
	"sessionMaxAge": "1440",
	"secret":        random.Seq(32),
	"timeLocation":  "Asia/Jakarta",

	// security
	"twoFactorEnable": "false",
	"twoFactorToken":  "",

	// telegram notifications
	"tgBotEnable":      "false",
	"tgBotToken":       "",
	"tgBotChatId":      "",
	"tgBotLoginNotify": "true",
	"tgLang":           "en-US",

	// contact form; empty means fall through to the environment
	"contactFormAction": "",
	"whatsappNumber":    "",
	"contactRecipient":  "",

	// public site content
	"heroTitle":          "Al Noor Academy",
	"heroSubtitle":       "",
	"heroImage":          "",
	"logoImage":          "",
	"aboutText":          "",
	"aboutImage":         "",
	"academicsText":      "",
	"academicsImage":     "",
	"address":            "",
	"phone":              "",
	"email":              "",
	"facilityCards":      "[]",
	"socialLinks":        "{}",
	"heroGradient":       "{}",
	"aboutGradient":      "{}",
	"academicsGradient":  "{}",
	"facilitiesGradient": "{}",
	"contactGradient":    "{}",
	"footerGradient":     "{}",

	// counters maintained by the stats job
	"visitCount":   "0",
	"contactCount": "0",
}

// jsonSettingNames is the fixed set of names whose values are JSON documents.
// GetAll decodes them; a malformed stored value degrades to the empty default
// with a logged warning instead of failing the whole read.
var jsonSettingNames = map[string]bool{
	"facilityCards":      true,
	"socialLinks":        true,
	"heroGradient":       true,
	"aboutGradient":      true,
	"academicsGradient":  true,
	"facilitiesGradient": true,
	"contactGradient":    true,
	"footerGradient":     true,
}

// protectedSettingNames never leave the process through GetAll. They are
// writable through SetMany like any other name.
var protectedSettingNames = map[string]bool{
	"secret":         true,
	"twoFactorToken": true,
	"tgBotToken":     true,
	"tgBotChatId":    true,
	"webCertFile":    true,
	"webKeyFile":     true,
}

type SettingService struct {
	db *gorm.DB
}

func NewSettingService(db *gorm.DB) *SettingService {
	return &SettingService{db: db}
}

// GetAll returns every non-protected setting, decoded. JSON names come back
// as their typed values, everything else as the stored string. Defaulted
// names missing from the table are filled in from the defaults map.
func (s *SettingService) GetAll() (map[string]any, error) {
	settings := make([]*model.Setting, 0)
	err := s.db.Model(model.Setting{}).Find(&settings).Error
	if err != nil {
		return nil, err
	}

	result := make(map[string]any, len(settings))
	for _, setting := range settings {
		if protectedSettingNames[setting.Name] {
			continue
		}
		result[setting.Name] = s.decodeValue(setting.Name, setting.Value)
	}

	for name, value := range defaultValueMap {
		if protectedSettingNames[name] {
			continue
		}
		if _, ok := result[name]; ok {
			continue
		}
		result[name] = s.decodeValue(name, value)
	}

	return result, nil
}

// SetMany upserts the given settings in one transaction; any failure rolls
// the whole batch back. Non-string values are stored as JSON, nil as the
// empty string.
func (s *SettingService) SetMany(values map[string]any) error {
	if len(values) == 0 {
		return nil
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		for name, value := range values {
			encoded, err := encodeValue(value)
			if err != nil {
				return fmt.Errorf("%w: setting %q: %v", ErrValidation, name, err)
			}
			if err := saveSettingTx(tx, name, encoded); err != nil {
				return err
			}
		}
		return nil
	})
}

// decodeValue turns a stored string into the value GetAll exposes. JSON names
// degrade to their empty default when the stored document does not parse.
func (s *SettingService) decodeValue(name, value string) any {
	if !jsonSettingNames[name] {
		return value
	}

	switch name {
	case "facilityCards":
		cards := make([]entity.FacilityCard, 0)
		if value != "" {
			if err := json.Unmarshal([]byte(value), &cards); err != nil {
				logger.Warningf("setting %s holds malformed JSON, using default: %v", name, err)
				return []entity.FacilityCard{}
			}
		}
		return cards
	case "socialLinks":
		links := entity.SocialLinks{}
		if value != "" {
			if err := json.Unmarshal([]byte(value), &links); err != nil {
				logger.Warningf("setting %s holds malformed JSON, using default: %v", name, err)
				return entity.SocialLinks{}
			}
		}
		return links
	default: // the gradient names
		gradient := entity.GradientConfig{}
		if value != "" {
			if err := json.Unmarshal([]byte(value), &gradient); err != nil {
				logger.Warningf("setting %s holds malformed JSON, using default: %v", name, err)
				return entity.GradientConfig{}
			}
		}
		return gradient
	}
}

func encodeValue(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}

func saveSettingTx(tx *gorm.DB, name, value string) error {
	setting := &model.Setting{}
	err := tx.Model(model.Setting{}).Where("name = ?", name).First(setting).Error
	if database.IsNotFound(err) {
		return tx.Create(&model.Setting{Name: name, Value: value}).Error
	} else if err != nil {
		return err
	}
	setting.Value = value
	return tx.Save(setting).Error
}

// ResetSettings drops every stored setting, reverting the site to defaults.
func (s *SettingService) ResetSettings() error {
	return s.db.Where("1 = 1").Delete(model.Setting{}).Error
}

func (s *SettingService) getSetting(name string) (*model.Setting, error) {
	setting := &model.Setting{}
	err := s.db.Model(model.Setting{}).Where("name = ?", name).First(setting).Error
	if err != nil {
		return nil, err
	}
	return setting, nil
}

func (s *SettingService) saveSetting(name string, value string) error {
	return saveSettingTx(s.db, name, value)
}

func (s *SettingService) getString(name string) (string, error) {
	setting, err := s.getSetting(name)
	if database.IsNotFound(err) {
		value, ok := defaultValueMap[name]
		if !ok {
			return "", common.NewErrorf("key <%v> not in defaultValueMap", name)
		}
		return value, nil
	} else if err != nil {
		return "", err
	}
	return setting.Value, nil
}

func (s *SettingService) setString(name string, value string) error {
	return s.saveSetting(name, value)
}

func (s *SettingService) getBool(name string) (bool, error) {
	str, err := s.getString(name)
	if err != nil {
		return false, err
	}
	return strconv.ParseBool(str)
}

func (s *SettingService) setBool(name string, value bool) error {
	return s.setString(name, strconv.FormatBool(value))
}

func (s *SettingService) getInt(name string) (int, error) {
	str, err := s.getString(name)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(str)
}

func (s *SettingService) setInt(name string, value int) error {
	return s.setString(name, strconv.Itoa(value))
}

func (s *SettingService) GetListen() (string, error) {
	return s.getString("webListen")
}

func (s *SettingService) SetListen(ip string) error {
	return s.setString("webListen", ip)
}

func (s *SettingService) GetWebDomain() (string, error) {
	return s.getString("webDomain")
}

func (s *SettingService) GetPort() (int, error) {
	return s.getInt("webPort")
}

func (s *SettingService) SetPort(port int) error {
	return s.setInt("webPort", port)
}

func (s *SettingService) GetCertFile() (string, error) {
	return s.getString("webCertFile")
}

func (s *SettingService) GetKeyFile() (string, error) {
	return s.getString("webKeyFile")
}

func (s *SettingService) GetSessionMaxAge() (int, error) {
	return s.getInt("sessionMaxAge")
}

// GetSecret returns the cookie signing key, persisting the generated default
// on first use so sessions survive restarts.
func (s *SettingService) GetSecret() ([]byte, error) {
	secret, err := s.getString("secret")
	if secret == defaultValueMap["secret"] {
		if saveErr := s.saveSetting("secret", secret); saveErr != nil {
			logger.Warning("save secret failed:", saveErr)
		}
	}
	return []byte(secret), err
}

func (s *SettingService) GetBasePath() (string, error) {
	basePath, err := s.getString("webBasePath")
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	if !strings.HasSuffix(basePath, "/") {
		basePath += "/"
	}
	return basePath, nil
}

func (s *SettingService) GetTimeLocation() (*time.Location, error) {
	l, err := s.getString("timeLocation")
	if err != nil {
		return nil, err
	}
	location, err := time.LoadLocation(l)
	if err != nil {
		defaultLocation := defaultValueMap["timeLocation"]
		logger.Errorf("location <%v> not exist, using default location: %v", l, defaultLocation)
		return time.LoadLocation(defaultLocation)
	}
	return location, nil
}

func (s *SettingService) GetTwoFactorEnable() (bool, error) {
	return s.getBool("twoFactorEnable")
}

func (s *SettingService) SetTwoFactorEnable(value bool) error {
	return s.setBool("twoFactorEnable", value)
}

func (s *SettingService) GetTwoFactorToken() (string, error) {
	return s.getString("twoFactorToken")
}

func (s *SettingService) SetTwoFactorToken(token string) error {
	return s.setString("twoFactorToken", token)
}

func (s *SettingService) GetTgbotEnabled() (bool, error) {
	return s.getBool("tgBotEnable")
}

func (s *SettingService) SetTgbotEnabled(value bool) error {
	return s.setBool("tgBotEnable", value)
}

func (s *SettingService) GetTgBotToken() (string, error) {
	return s.getString("tgBotToken")
}

func (s *SettingService) SetTgBotToken(token string) error {
	return s.setString("tgBotToken", token)
}

func (s *SettingService) GetTgBotChatId() (string, error) {
	return s.getString("tgBotChatId")
}

func (s *SettingService) SetTgBotChatId(chatId string) error {
	return s.setString("tgBotChatId", chatId)
}

func (s *SettingService) GetTgBotLoginNotify() (bool, error) {
	return s.getBool("tgBotLoginNotify")
}

func (s *SettingService) GetTgLang() (string, error) {
	return s.getString("tgLang")
}

func (s *SettingService) GetContactFormAction() (string, error) {
	return s.getString("contactFormAction")
}

func (s *SettingService) GetWhatsappNumber() (string, error) {
	return s.getString("whatsappNumber")
}

func (s *SettingService) GetContactRecipient() (string, error) {
	return s.getString("contactRecipient")
}

func (s *SettingService) GetVisitCount() (int, error) {
	return s.getInt("visitCount")
}

// AddVisitCount folds a delta into the persisted visit counter. Only the
// stats job writes it, so read-add-save needs no locking.
func (s *SettingService) AddVisitCount(delta int) error {
	if delta == 0 {
		return nil
	}
	count, err := s.getInt("visitCount")
	if err != nil {
		return err
	}
	return s.setInt("visitCount", count+delta)
}

func (s *SettingService) GetContactCount() (int, error) {
	return s.getInt("contactCount")
}

func (s *SettingService) AddContactCount(delta int) error {
	if delta == 0 {
		return nil
	}
	count, err := s.getInt("contactCount")
	if err != nil {
		return err
	}
	return s.setInt("contactCount", count+delta)
}
