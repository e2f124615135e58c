package telegram

import (
	"context"
	"errors"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-nfc-access/internal/infra/logging"
	red "telegram-nfc-access/internal/infra/redis"
)

type cbHandler func(ctx context.Context, chatID int64, data string) error

// cbRoutes maps inline-button callback data to handlers. The only button the
// bot offers is the invite re-issuance shortcut under the welcome/help text.
func (r *RealTelegramBotAdapter) cbRoutes() map[string]cbHandler {
	return map[string]cbHandler{
		"cmd:access": func(ctx context.Context, id int64, _ string) error {
			text, err := r.facade.HandleAccess(ctx, id, "")
			if err != nil {
				r.log.Error().Err(err).Int64("tg_id", id).Msg("access flow failed")
				text = r.translator.T("error_generic")
			}
			return r.SendMessage(ctx, id, text)
		},
	}
}

func (r *RealTelegramBotAdapter) handleQuery(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	if query == nil || query.From == nil {
		return errors.New("invalid callback query")
	}

	// Stop telegram spinner when we return
	defer func() { _, _ = r.bot.Request(tgbotapi.NewCallback(query.ID, "")) }()

	var chatID int64
	if query.Message != nil && query.Message.Chat != nil {
		chatID = query.Message.Chat.ID
	} else {
		chatID = query.From.ID
	}
	if chatID == 0 {
		return nil
	}
	ctx = logging.WithTgID(ctx, query.From.ID)

	data := strings.TrimSpace(query.Data)

	if r.rateLimiter != nil {
		if allowed, err := r.rateLimiter.Allow(ctx, red.UserCommandKey(chatID, "cb:"+data), r.cfg.RateLimitPerMin, time.Minute); err == nil && !allowed {
			return r.SendMessage(ctx, chatID, r.translator.T("error_rate_limited"))
		}
	}

	if fn, ok := r.cbRoutes()[data]; ok {
		return fn(ctx, chatID, data)
	}
	return errors.New("unknown callback data")
}
