package storage

import (
	"context"
	"fmt"
	"os"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/semmidev/mysqlbackup/internal/config"
)

// maxDocumentMB is the Bot API upload limit for documents.
const maxDocumentMB = 50

// TelegramStorage sends the archive (or a note about it) to a chat, and
// reports run results.
type TelegramStorage struct {
	bot        *tgbotapi.BotAPI
	chatID     int64
	sendFile   bool
	notifyOnly bool
}

func NewTelegram(cfg *config.UploadTarget) (*TelegramStorage, error) {
	chatID, err := strconv.ParseInt(cfg.ChatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid telegram chat_id %q: %w", cfg.ChatID, err)
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	return &TelegramStorage{
		bot:        bot,
		chatID:     chatID,
		sendFile:   cfg.SendFile,
		notifyOnly: cfg.NotifyOnly,
	}, nil
}

func (t *TelegramStorage) Upload(ctx context.Context, localPath string, remoteName string) error {
	info, err := os.Stat(localPath)
	if err != nil {
		return fmt.Errorf("failed to stat archive: %w", err)
	}
	sizeMB := float64(info.Size()) / (1024 * 1024)

	if t.notifyOnly || !t.sendFile || sizeMB > maxDocumentMB {
		return t.Notify(ctx, fmt.Sprintf(
			"Backup archive created\n\nFile: %s\nSize: %.2f MB\nTime: %s",
			remoteName,
			sizeMB,
			info.ModTime().Format("2006-01-02 15:04:05"),
		))
	}

	doc := tgbotapi.NewDocument(t.chatID, tgbotapi.FilePath(localPath))
	doc.Caption = fmt.Sprintf("Backup: %s (%.2f MB)", remoteName, sizeMB)

	if _, err := t.bot.Send(doc); err != nil {
		return fmt.Errorf("failed to send telegram file: %w", err)
	}
	return nil
}

// Notify posts a plain text message to the configured chat.
func (t *TelegramStorage) Notify(_ context.Context, message string) error {
	if _, err := t.bot.Send(tgbotapi.NewMessage(t.chatID, message)); err != nil {
		return fmt.Errorf("failed to send telegram notification: %w", err)
	}
	return nil
}
