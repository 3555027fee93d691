package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/NasaVasa/eventdash/internal/domain"
	"github.com/NasaVasa/eventdash/internal/table"
	"github.com/NasaVasa/eventdash/internal/usecase"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const maxMessageLen = 3800

type Handlers struct {
	workspaces  *usecase.WorkspacePool
	subscribers *usecase.SubscriberUsecase
	relay       *usecase.FeedRelay
	logger      *zap.Logger
}

func NewHandlers(workspaces *usecase.WorkspacePool, subscribers *usecase.SubscriberUsecase, relay *usecase.FeedRelay, logger *zap.Logger) *Handlers {
	return &Handlers{workspaces: workspaces, subscribers: subscribers, relay: relay, logger: logger}
}

func (h *Handlers) HandleUpdate(ctx context.Context, api Sender, update tgbotapi.Update) {
	if update.Message == nil {
		return
	}
	if update.Message.From == nil {
		return
	}
	if update.Message.IsCommand() {
		h.handleCommand(ctx, api, update)
		return
	}
}

func (h *Handlers) handleCommand(ctx context.Context, api Sender, update tgbotapi.Update) {
	command := update.Message.Command()
	args := update.Message.CommandArguments()
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID
	username := update.Message.From.UserName

	h.logger.Info(
		"telegram command received",
		zap.Int64("chat_id", chatID),
		zap.Int64("telegram_user_id", userID),
		zap.String("username", username),
		zap.String("command", command),
		zap.String("args", args),
	)

	actor := "telegram:" + strconv.FormatInt(userID, 10)
	if username != "" {
		actor = "telegram:" + username
	}
	ctx = usecase.WithActor(ctx, actor)
	ws := h.workspaces.Get(ctx, domain.ChatScope(chatID))

	switch command {
	case "start":
		h.reply(api, chatID, "Welcome to eventdash.\n\n"+HelpText)
	case "help":
		h.reply(api, chatID, HelpText)
	case "health":
		h.selectTab(ctx, ws, usecase.TabHealth)
		_ = ws.Health.Probe(ctx)
		h.reply(api, chatID, formatHealth(ws.Health.State()))
	case "demo":
		h.selectTab(ctx, ws, usecase.TabHealth)
		_ = ws.Health.DemoQuery(ctx)
		h.reply(api, chatID, ws.Health.State().Demo)
	case "alerts":
		parsed, err := ParseAlertsArgs(args)
		if err != nil {
			h.reply(api, chatID, "Usage: /alerts [1|3|7|30] [new|all|open|closed] [page]")
			return
		}
		h.selectTab(ctx, ws, usecase.TabAlerts)
		if err := applyAlertsArgs(ws.Alerts, parsed); err != nil {
			h.reply(api, chatID, h.errorMessage(err))
			return
		}
		if err := ws.Alerts.Load(ctx); err != nil {
			h.reply(api, chatID, h.errorMessage(err))
			return
		}
		state := ws.Alerts.State()
		h.logger.Info("alerts list complete", zap.Int64("chat_id", chatID), zap.Int("count", len(state.Rows)))
		h.reply(api, chatID, formatAlerts(state))
	case "review":
		alertID, err := ParseAlertID(args)
		if err != nil {
			h.reply(api, chatID, "Usage: /review <alert_id>")
			return
		}
		if err := ws.Alerts.Review(ctx, alertID); err != nil {
			h.reply(api, chatID, h.errorMessage(err))
			return
		}
		h.logger.Info("review complete", zap.Int64("chat_id", chatID), zap.String("alert_id", alertID))
		h.reply(api, chatID, fmt.Sprintf("Alert %s marked reviewed %s", alertID, table.MarkReviewed))
	case "status":
		alertID, status, err := ParseStatusArgs(args)
		if err != nil {
			h.reply(api, chatID, "Usage: /status <alert_id> <new|open|closed>")
			return
		}
		if err := ws.Alerts.SetStatus(ctx, alertID, string(status)); err != nil {
			h.reply(api, chatID, statusErrorMessage(err))
			return
		}
		h.logger.Info("status complete", zap.Int64("chat_id", chatID), zap.String("alert_id", alertID), zap.String("status", string(status)))
		h.reply(api, chatID, usecase.MsgStatusUpdated)
	case "txn":
		alertID, err := ParseAlertID(args)
		if err != nil {
			h.reply(api, chatID, "Usage: /txn <alert_id>")
			return
		}
		detail, err := ws.Alerts.Lookup(ctx, alertID)
		if err != nil {
			h.reply(api, chatID, h.errorMessage(err))
			return
		}
		h.reply(api, chatID, formatDetail(detail))
	case "subscribe":
		_, created, err := h.subscribers.Subscribe(ctx, chatID, username)
		if err != nil {
			h.logger.Warn("subscribe failed", zap.Int64("chat_id", chatID), zap.Error(err))
			h.reply(api, chatID, h.errorMessage(err))
			return
		}
		if !h.relay.Running() {
			if err := h.relay.Start(ctx); err != nil {
				h.logger.Warn("feed relay start failed", zap.Error(err))
				h.reply(api, chatID, "Subscribed, but the live feed is unavailable right now.")
				return
			}
		}
		if !created {
			h.reply(api, chatID, "This chat is already subscribed.")
			return
		}
		h.reply(api, chatID, "Subscribed to the live feed.")
	case "unsubscribe":
		if err := h.subscribers.Unsubscribe(ctx, chatID); err != nil {
			h.reply(api, chatID, h.errorMessage(err))
			return
		}
		h.reply(api, chatID, "Unsubscribed.")
	default:
		h.logger.Warn("unknown command", zap.Int64("chat_id", chatID), zap.String("command", command))
		h.reply(api, chatID, "Unknown command.\n\n"+HelpText)
	}
}

func (h *Handlers) selectTab(ctx context.Context, ws *usecase.Workspace, tab string) {
	if err := ws.Tabs.Select(ctx, tab); err != nil {
		h.logger.Warn("select tab failed", zap.String("tab", tab), zap.Error(err))
	}
}

func applyAlertsArgs(view *usecase.AlertsView, args AlertsArgs) error {
	if err := view.SetDays(args.Days); err != nil {
		return err
	}
	if err := view.SetStatusFilter(args.Status); err != nil {
		return err
	}
	return view.SetPage(args.Page)
}

func (h *Handlers) errorMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "Alert not found."
	case errors.Is(err, usecase.ErrNotSubscribed):
		return "This chat is not subscribed."
	case errors.Is(err, usecase.ErrInvalidStatus):
		return "Invalid status. Use new, open or closed."
	case errors.Is(err, usecase.ErrInvalidDays):
		return "Invalid day range. Use 1, 3, 7 or 30."
	case errors.Is(err, usecase.ErrInvalidPage):
		return "Page must be at least 1."
	case errors.Is(err, domain.ErrMalformedResponse):
		return "The API returned an unreadable response."
	}
	if detail := domain.ErrorDetail(err); detail != "" {
		return "API error: " + detail
	}

	h.logger.Warn("unhandled error", zap.Error(err))
	return "Something went wrong. Please try again."
}

func statusErrorMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "Alert not found."
	case domain.ErrorStatus(err) != 0, errors.Is(err, usecase.ErrInvalidStatus):
		return usecase.MsgStatusFailed
	default:
		return usecase.MsgStatusError
	}
}

func formatHealth(state usecase.HealthState) string {
	database := state.Database
	if state.DatabaseLatencyMs != nil {
		database = fmt.Sprintf("%s (%.1fms)", database, *state.DatabaseLatencyMs)
	}
	return fmt.Sprintf("API: %s\nDatabase: %s", state.APIText(), database)
}

func formatAlerts(state usecase.AlertsState) string {
	header := fmt.Sprintf("Alerts (%d days, %s) page %d:\n", state.Filter.Days, state.Filter.Status, state.Page)
	if len(state.Rows) == 0 {
		return header + "(no alerts)"
	}

	var builder strings.Builder
	builder.WriteString(header)
	for i, row := range state.Rows {
		line := formatAlertLine(row)
		if builder.Len()+len(line) > maxMessageLen {
			builder.WriteString(fmt.Sprintf("...and %d more alerts", len(state.Rows)-i))
			break
		}
		builder.WriteString(line)
	}
	return builder.String()
}

func formatAlertLine(row domain.Row) string {
	parts := []string{table.Cell(row, "reviewed"), row.Text("alert_id")}
	if status := row.Text("status"); status != "" {
		parts = append(parts, "["+status+"]")
	}
	for _, key := range []string{"amount", "score", "tenant", "region"} {
		if value := table.Cell(row, key); value != "" {
			parts = append(parts, key+"="+value)
		}
	}
	return strings.Join(parts, " ") + "\n"
}

func formatDetail(detail *domain.AlertDetail) string {
	var builder strings.Builder
	builder.WriteString("Alert:\n")
	builder.WriteString(formatRow(detail.Alert))
	if detail.Transaction == nil {
		builder.WriteString("\n" + usecase.MsgTransactionMissing)
		return builder.String()
	}
	builder.WriteString("\nTransaction:\n")
	builder.WriteString(formatRow(*detail.Transaction))
	return builder.String()
}

func formatRow(row domain.Row) string {
	var builder strings.Builder
	for _, key := range row.Keys() {
		builder.WriteString(fmt.Sprintf("%s: %s\n", key, table.Cell(row, key)))
	}
	return builder.String()
}

func (h *Handlers) reply(api Sender, chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := api.Send(msg); err != nil {
		h.logger.Warn("failed to send message", zap.Error(err))
	}
}
