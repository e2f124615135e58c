package telegram

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-nfc-access/internal/domain/ports/adapter"
	"telegram-nfc-access/internal/infra/metrics"
)

type commandHandler func(ctx context.Context, message *tgbotapi.Message) error

// commandRoutes defines all available bot commands and their handlers.
func (r *RealTelegramBotAdapter) commandRoutes() map[string]commandHandler {
	return map[string]commandHandler{
		"start":  r.handleStartCommand,
		"access": r.handleAccessCommand,
		"help":   r.handleHelpCommand,

		// These handlers are wrapped in the adminOnly middleware.
		"gen":    r.adminOnly(r.handleGenCommand),
		"revoke": r.adminOnly(r.handleRevokeCommand),
		"who":    r.adminOnly(r.handleWhoCommand),
		"logs":   r.adminOnly(r.handleLogsCommand),
	}
}

func (r *RealTelegramBotAdapter) adminOnly(next commandHandler) commandHandler {
	return func(ctx context.Context, message *tgbotapi.Message) error {
		if _, isAdmin := r.adminIDsMap[message.From.ID]; !isAdmin {
			metrics.IncAdminCommand("/"+message.Command(), "unauthorized")
			return r.SendMessage(ctx, message.Chat.ID, r.translator.T("error_unauthorized"))
		}
		metrics.IncAdminCommand("/"+message.Command(), "authorized")
		return next(ctx, message)
	}
}

// accessButtons is the inline shortcut offered under the greeting and help
// texts: one tap instead of typing /access.
func (r *RealTelegramBotAdapter) accessButtons() [][]adapter.InlineButton {
	return [][]adapter.InlineButton{
		{{Text: r.translator.T("button_get_invite"), Data: "cmd:access"}},
	}
}

// handleStartCommand handles /start, with or without a deep-link code.
func (r *RealTelegramBotAdapter) handleStartCommand(ctx context.Context, message *tgbotapi.Message) error {
	code := strings.TrimSpace(message.CommandArguments())
	text, err := r.facade.HandleStart(ctx, message.From.ID, message.From.UserName, code)
	if err != nil {
		r.log.Error().Err(err).Int64("tg_id", message.From.ID).Msg("start flow failed")
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("error_generic"))
	}
	if code == "" {
		return r.SendButtons(ctx, message.Chat.ID, text, r.accessButtons())
	}
	return r.SendMessage(ctx, message.Chat.ID, text)
}

// handleAccessCommand handles /access for returning key owners.
func (r *RealTelegramBotAdapter) handleAccessCommand(ctx context.Context, message *tgbotapi.Message) error {
	text, err := r.facade.HandleAccess(ctx, message.From.ID, message.From.UserName)
	if err != nil {
		r.log.Error().Err(err).Int64("tg_id", message.From.ID).Msg("access flow failed")
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("error_generic"))
	}
	return r.SendMessage(ctx, message.Chat.ID, text)
}

func (r *RealTelegramBotAdapter) handleHelpCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.SendButtons(ctx, message.Chat.ID, r.translator.T("help_message"), r.accessButtons())
}

// handleGenCommand handles the admin /gen <count> [product_id] command.
func (r *RealTelegramBotAdapter) handleGenCommand(ctx context.Context, message *tgbotapi.Message) error {
	args := strings.Fields(message.CommandArguments())

	count := 10
	var productID *string
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return r.SendMessage(ctx, message.Chat.ID, r.translator.T("usage_gen"))
		}
		count = n
	}
	if len(args) > 1 {
		productID = &args[1]
	}

	text, err := r.facade.HandleGen(ctx, count, productID)
	if err != nil {
		r.log.Error().Err(err).Msg("key generation failed")
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("gen_failed"))
	}
	return r.SendMessage(ctx, message.Chat.ID, text)
}

// handleRevokeCommand handles the admin /revoke <code> command.
func (r *RealTelegramBotAdapter) handleRevokeCommand(ctx context.Context, message *tgbotapi.Message) error {
	code := strings.TrimSpace(message.CommandArguments())
	if code == "" {
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("usage_revoke"))
	}
	text, err := r.facade.HandleRevoke(ctx, code)
	if err != nil {
		r.log.Error().Err(err).Msg("revoke failed")
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("error_generic"))
	}
	return r.SendMessage(ctx, message.Chat.ID, text)
}

// handleWhoCommand handles the admin /who <code> command.
func (r *RealTelegramBotAdapter) handleWhoCommand(ctx context.Context, message *tgbotapi.Message) error {
	code := strings.TrimSpace(message.CommandArguments())
	if code == "" {
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("usage_who"))
	}
	text, err := r.facade.HandleWho(ctx, code)
	if err != nil {
		r.log.Error().Err(err).Msg("who lookup failed")
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("error_generic"))
	}
	return r.SendMessage(ctx, message.Chat.ID, text)
}

// handleLogsCommand handles the admin /logs [limit] command.
func (r *RealTelegramBotAdapter) handleLogsCommand(ctx context.Context, message *tgbotapi.Message) error {
	limit := 20
	if arg := strings.TrimSpace(message.CommandArguments()); arg != "" {
		if n, err := strconv.Atoi(arg); err == nil && n > 0 {
			limit = n
		}
	}
	text, err := r.facade.HandleLogs(ctx, limit)
	if err != nil {
		r.log.Error().Err(err).Msg("log listing failed")
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("error_generic"))
	}
	return r.SendMessage(ctx, message.Chat.ID, text)
}
