package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"telegram-nfc-access/internal/config"
	"telegram-nfc-access/internal/domain"
	"telegram-nfc-access/internal/domain/model"
	"telegram-nfc-access/internal/domain/ports/adapter"
	"telegram-nfc-access/internal/infra/i18n"
	"telegram-nfc-access/internal/infra/metrics"
	"telegram-nfc-access/internal/usecase"

	"github.com/rs/zerolog"
)

// telegramMessageCap is Telegram's hard limit on message length; long code
// listings and log dumps are truncated below it.
const telegramMessageCap = 3900

// BotFacade composes usecases into high-level bot commands.
// Facade methods return strings so the Telegram adapter just forwards them to
// the chat.
type BotFacade struct {
	UserUC  usecase.UserUseCase
	ClaimUC usecase.ClaimUseCase
	AdminUC usecase.KeyAdminUseCase

	access config.AccessConfig
	tr     *i18n.Translator
	log    *zerolog.Logger

	issuer adapter.TelegramBotAdapter
}

func NewBotFacade(
	userUC usecase.UserUseCase,
	claimUC usecase.ClaimUseCase,
	adminUC usecase.KeyAdminUseCase,
	access config.AccessConfig,
	tr *i18n.Translator,
	logger *zerolog.Logger,
) *BotFacade {
	return &BotFacade{
		UserUC:  userUC,
		ClaimUC: claimUC,
		AdminUC: adminUC,
		access:  access,
		tr:      tr,
		log:     logger,
	}
}

// BindIssuer attaches the invite issuer after the Telegram adapter exists.
// The adapter needs the facade at construction time, so this runs second.
func (b *BotFacade) BindIssuer(issuer adapter.TelegramBotAdapter) {
	b.issuer = issuer
}

// HandleStart serves /start. With no code argument it is a plain greeting;
// with one it runs the claim flow and, on a granted outcome, issues an invite.
func (b *BotFacade) HandleStart(ctx context.Context, tgID int64, username, codeArg string) (string, error) {
	if _, err := b.UserUC.RegisterOrFetch(ctx, tgID, username); err != nil {
		return "", fmt.Errorf("register/fetch user: %w", err)
	}

	code := strings.TrimSpace(codeArg)
	if code == "" {
		return b.tr.T("welcome_message"), nil
	}

	res, err := b.ClaimUC.AttemptClaim(ctx, code, tgID)
	if err != nil {
		metrics.IncClaimAttempt("error")
		return "", fmt.Errorf("attempt claim: %w", err)
	}
	metrics.IncClaimAttempt(string(res.Outcome))

	switch res.Outcome {
	case usecase.OutcomeNotFound:
		return b.tr.T("claim_not_found"), nil
	case usecase.OutcomeRevoked:
		return b.tr.T("claim_revoked"), nil
	case usecase.OutcomeOwnedByOther:
		return b.tr.T("claim_owned_by_other"), nil
	}

	// Granted (new or existing owner): claim is final, now couple it to an
	// invite link. An issuance failure must read as retryable, never as a
	// claim rejection.
	link, err := b.issueInvite(ctx, tgID, username, code, model.ReasonStartFlow)
	if err != nil {
		b.log.Error().Err(err).Int64("tg_id", tgID).Msg("invite issuance failed after claim")
		return b.tr.T("invite_failed"), nil
	}

	productLine := ""
	if res.Key != nil && res.Key.ProductID != nil {
		productLine = b.tr.T("claim_product_line", *res.Key.ProductID)
	}
	return b.tr.T("claim_granted", productLine, b.access.InviteTTLMinutes, link.URL), nil
}

// HandleAccess serves /access: re-issue an invite for the caller's most recent
// claimed key without re-presenting the tag.
func (b *BotFacade) HandleAccess(ctx context.Context, tgID int64, username string) (string, error) {
	if _, err := b.UserUC.RegisterOrFetch(ctx, tgID, username); err != nil {
		return "", fmt.Errorf("register/fetch user: %w", err)
	}

	key, err := b.ClaimUC.LatestClaimFor(ctx, tgID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return b.tr.T("access_no_key"), nil
		}
		return "", fmt.Errorf("latest claim: %w", err)
	}

	link, err := b.issueInvite(ctx, tgID, username, key.Code, model.ReasonAccessCmd)
	if err != nil {
		b.log.Error().Err(err).Int64("tg_id", tgID).Msg("invite re-issuance failed")
		return b.tr.T("invite_failed"), nil
	}
	return b.tr.T("access_reissued", b.access.InviteTTLMinutes, link.URL), nil
}

func (b *BotFacade) issueInvite(ctx context.Context, tgID int64, username, code, reason string) (*adapter.InviteLink, error) {
	if b.issuer == nil {
		return nil, domain.ErrInviteIssuance
	}

	who := username
	if who == "" {
		who = fmt.Sprintf("%d", tgID)
	}
	name := fmt.Sprintf("NFC %s → @%s", code, who)
	expiresAt := time.Now().Add(b.access.InviteTTL())

	flow := "start"
	if reason == model.ReasonAccessCmd {
		flow = "access"
	}

	link, err := b.issuer.CreateInviteLink(ctx, b.access.TargetChatID, name, expiresAt, b.access.InviteMemberCap)
	if err != nil {
		metrics.IncInviteIssued(flow, false)
		return nil, fmt.Errorf("%w: %v", domain.ErrInviteIssuance, err)
	}
	metrics.IncInviteIssued(flow, true)

	if err := b.ClaimUC.RecordInviteIssued(ctx, tgID, code, reason); err != nil {
		// The link already exists; losing the audit row is worth a warning
		// but not a user-facing failure.
		b.log.Warn().Err(err).Str("code", code).Msg("failed to record invite_created entry")
	}
	return link, nil
}

// HandleGen serves the admin /gen command and formats the new codes as
// code → deep-link pairs ready to write onto tags.
func (b *BotFacade) HandleGen(ctx context.Context, count int, productID *string) (string, error) {
	codes, err := b.AdminUC.Generate(ctx, count, productID)
	metrics.AddKeysGenerated(len(codes))
	if err != nil {
		if len(codes) == 0 {
			return "", fmt.Errorf("generate keys: %w", err)
		}
		// A mid-batch failure still inserted these keys; the admin must see
		// their codes or the tags can never be written.
		b.log.Error().Err(err).Int("created", len(codes)).Msg("key batch partially generated")
		header := b.tr.T("gen_partial", len(codes), count)
		return b.listCodes(header, codes), nil
	}
	return b.listCodes(b.tr.T("gen_header"), codes), nil
}

func (b *BotFacade) listCodes(header string, codes []string) string {
	base := ""
	if b.issuer != nil {
		base = fmt.Sprintf("https://t.me/%s?start=", b.issuer.Username())
	}
	var sb strings.Builder
	sb.WriteString(header + "\n")
	for _, c := range codes {
		line := fmt.Sprintf("%s\t%s%s\n", c, base, c)
		if sb.Len()+len(line) > telegramMessageCap {
			break
		}
		sb.WriteString(line)
	}
	return sb.String()
}

// HandleRevoke serves the admin /revoke command.
func (b *BotFacade) HandleRevoke(ctx context.Context, code string) (string, error) {
	err := b.AdminUC.Revoke(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return b.tr.T("revoke_not_found"), nil
		}
		return "", fmt.Errorf("revoke key: %w", err)
	}
	metrics.IncKeyRevoked()
	return b.tr.T("revoke_ok"), nil
}

// HandleWho serves the admin /who command.
func (b *BotFacade) HandleWho(ctx context.Context, code string) (string, error) {
	key, err := b.AdminUC.Inspect(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return b.tr.T("who_not_found"), nil
		}
		return "", fmt.Errorf("inspect key: %w", err)
	}

	owner := "-"
	if key.OwnerUserID != nil {
		owner = fmt.Sprintf("%d", *key.OwnerUserID)
	}
	product := "-"
	if key.ProductID != nil {
		product = *key.ProductID
	}
	claimed := "-"
	if key.ClaimedAt != nil {
		claimed = key.ClaimedAt.Format(time.RFC3339)
	}
	return b.tr.T("who_report",
		key.Code, string(key.Status), owner, product,
		key.CreatedAt.Format(time.RFC3339), claimed,
	), nil
}

// HandleLogs serves the admin /logs command.
func (b *BotFacade) HandleLogs(ctx context.Context, limit int) (string, error) {
	entries, err := b.AdminUC.RecentLogs(ctx, limit)
	if err != nil {
		return "", fmt.Errorf("recent logs: %w", err)
	}
	if len(entries) == 0 {
		return b.tr.T("logs_empty"), nil
	}

	var sb strings.Builder
	for _, e := range entries {
		line := fmt.Sprintf("%s | uid=%d | code=%s | %s | %s\n",
			e.CreatedAt.Format(time.RFC3339), e.TelegramID, e.Code, e.Action, e.Reason)
		if sb.Len()+len(line) > telegramMessageCap {
			break
		}
		sb.WriteString(line)
	}
	return sb.String(), nil
}
