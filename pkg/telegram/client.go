package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Client struct {
	Bot          *tgbotapi.BotAPI
	UpdateConfig tgbotapi.UpdateConfig
}

func NewClient(token string, debug bool) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	bot.Debug = debug

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60

	return &Client{
		Bot:          bot,
		UpdateConfig: updateConfig,
	}, nil
}

func (c *Client) Send(msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	return c.Bot.Send(msg)
}

// Notify отправляет простое текстовое сообщение без превью ссылок
func (c *Client) Notify(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	_, err := c.Bot.Send(msg)
	return err
}

func (c *Client) Updates() tgbotapi.UpdatesChannel {
	return c.Bot.GetUpdatesChan(c.UpdateConfig)
}

func (c *Client) Stop() {
	c.Bot.StopReceivingUpdates()
}
