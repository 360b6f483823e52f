package service

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/alnoor-academy/school-cms/logger"
	"github.com/alnoor-academy/school-cms/web/entity"
	"github.com/alnoor-academy/school-cms/web/locale"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

type LoginStatus byte

const (
	LoginSuccess LoginStatus = 1
	LoginFail    LoginStatus = 0
)

// Tgbot pushes notifications to the Telegram chats listed in the tgBotChatId
// setting. It only sends, incoming bot commands are not handled.
type Tgbot struct {
	settingService *SettingService

	mu       sync.Mutex
	bot      *telego.Bot
	adminIds []int64
	running  bool
}

func NewTgbot(settingService *SettingService) *Tgbot {
	return &Tgbot{settingService: settingService}
}

// Start connects the bot when the tgBotEnable setting is on. A disabled bot
// is not an error, every notify method then becomes a no-op.
func (t *Tgbot) Start() error {
	enabled, err := t.settingService.GetTgbotEnabled()
	if err != nil {
		return err
	}
	if !enabled {
		return nil
	}

	token, err := t.settingService.GetTgBotToken()
	if err != nil || token == "" {
		logger.Warning("Get TgBotToken failed:", err)
		return err
	}

	chatIds, err := t.settingService.GetTgBotChatId()
	if err != nil {
		logger.Warning("Get TgBotChatId failed:", err)
		return err
	}

	var adminIds []int64
	for _, chatId := range strings.Split(chatIds, ",") {
		chatId = strings.TrimSpace(chatId)
		if chatId == "" {
			continue
		}
		id, err := strconv.ParseInt(chatId, 10, 64)
		if err != nil {
			logger.Warning("Invalid chat id in tgBotChatId:", err)
			return err
		}
		adminIds = append(adminIds, id)
	}

	bot, err := telego.NewBot(token)
	if err != nil {
		logger.Warning("Get tgbot's api error:", err)
		return err
	}

	t.mu.Lock()
	t.bot = bot
	t.adminIds = adminIds
	t.running = true
	t.mu.Unlock()

	logger.Info("Telegram notifications enabled")
	return nil
}

func (t *Tgbot) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

func (t *Tgbot) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bot = nil
	t.adminIds = nil
	t.running = false
}

// SendMsgToTgbot sends msg to a single chat, paging it when it exceeds the
// Telegram message limit.
func (t *Tgbot) SendMsgToTgbot(chatId int64, msg string) {
	t.mu.Lock()
	bot := t.bot
	running := t.running
	t.mu.Unlock()

	if !running {
		return
	}
	if msg == "" {
		logger.Info("[tgbot] message is empty!")
		return
	}

	var allMessages []string
	limit := 2000

	if len(msg) > limit {
		messages := strings.Split(msg, "\n\n")
		lastIndex := -1

		for _, message := range messages {
			if (len(allMessages) == 0) || (len(allMessages[lastIndex])+len(message) > limit) {
				allMessages = append(allMessages, message)
				lastIndex++
			} else {
				allMessages[lastIndex] += "\n\n" + message
			}
		}
	} else {
		allMessages = append(allMessages, msg)
	}

	for _, message := range allMessages {
		params := telego.SendMessageParams{
			ChatID: tu.ID(chatId),
			Text:   message,
		}
		_, err := bot.SendMessage(context.Background(), &params)
		if err != nil {
			logger.Warning("Error sending telegram message :", err)
		}
		time.Sleep(500 * time.Millisecond)
	}
}

func (t *Tgbot) SendMsgToTgbotAdmins(msg string) {
	t.mu.Lock()
	adminIds := make([]int64, len(t.adminIds))
	copy(adminIds, t.adminIds)
	t.mu.Unlock()

	for _, adminId := range adminIds {
		t.SendMsgToTgbot(adminId, msg)
	}
}

// UserLoginNotify reports a panel login attempt to the admin chats, gated on
// the tgBotLoginNotify setting.
func (t *Tgbot) UserLoginNotify(username string, ip string, time string, status LoginStatus) {
	if !t.IsRunning() {
		return
	}

	if username == "" || ip == "" || time == "" {
		logger.Warning("UserLoginNotify failed, invalid info!")
		return
	}

	loginNotify, err := t.settingService.GetTgBotLoginNotify()
	if err != nil || !loginNotify {
		return
	}

	key := "tgbot.messages.loginSuccess"
	if status == LoginFail {
		key = "tgbot.messages.loginFailed"
	}
	msg := locale.I18n(locale.Bot, key, "username=="+username, "ip=="+ip, "time=="+time)
	t.SendMsgToTgbotAdmins(msg)
}

// ContactNotify forwards a contact form submission to the admin chats.
func (t *Tgbot) ContactNotify(form *entity.ContactForm) {
	if !t.IsRunning() {
		return
	}

	msg := locale.I18n(locale.Bot, "tgbot.messages.contactReceived",
		"name=="+form.Name, "email=="+form.Email, "subject=="+form.Subject)
	t.SendMsgToTgbotAdmins(msg + "\n\n" + form.Message)
}
