package linebot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/kintai-line-go/internal/domain/attendance"
	"github.com/cmlabs-hris/kintai-line-go/internal/domain/company"
	"github.com/cmlabs-hris/kintai-line-go/internal/domain/linebot"
	"github.com/cmlabs-hris/kintai-line-go/internal/domain/user"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/line"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/validator"
)

const helpText = "Commands:\n" +
	"出勤 / clock in\n" +
	"退勤 / clock out\n" +
	"休憩 / break\n" +
	"休憩終了 / break end\n" +
	"状態 / status\n" +
	"連携 CODE / link CODE - link to your company"

const (
	greetingText        = "Thanks for adding the attendance bot!"
	linkFirstText       = "Your LINE account is not linked to a company yet. Send \"link CODE\" with the join code from your administrator."
	errorText           = "Something went wrong. Please try again later."
	badJoinCodeText     = "That join code does not look right. Codes are 6 to 12 letters or digits."
	unknownJoinCodeText = "No company uses that join code."
)

type BotServiceImpl struct {
	userRepo          user.UserRepository
	companyService    company.CompanyService
	attendanceService attendance.AttendanceService
	messenger         line.Messenger
}

func NewBotService(
	userRepo user.UserRepository,
	companyService company.CompanyService,
	attendanceService attendance.AttendanceService,
	messenger line.Messenger,
) linebot.BotService {
	return &BotServiceImpl{
		userRepo:          userRepo,
		companyService:    companyService,
		attendanceService: attendanceService,
		messenger:         messenger,
	}
}

// HandleFollow implements linebot.BotService.
func (b *BotServiceImpl) HandleFollow(ctx context.Context, event linebot.FollowEvent) error {
	return b.messenger.Reply(ctx, event.ReplyToken, greetingText, helpText)
}

// HandleText implements linebot.BotService. Every outcome the user can act on
// becomes a reply; only unexpected failures are returned.
func (b *BotServiceImpl) HandleText(ctx context.Context, event linebot.TextEvent) (linebot.Command, error) {
	cmd, arg := linebot.Parse(event.Text)
	metrics.LineWebhookEvents.WithLabelValues(string(cmd)).Inc()

	reply, err := b.execute(ctx, event, cmd, arg)
	if err != nil {
		slog.Error("line command failed", "command", cmd, "line_user_id", event.LineUserID, "error", err)
		reply = errorText
	}

	if replyErr := b.messenger.Reply(ctx, event.ReplyToken, reply); replyErr != nil {
		return cmd, errors.Join(err, replyErr)
	}
	return cmd, err
}

func (b *BotServiceImpl) execute(ctx context.Context, event linebot.TextEvent, cmd linebot.Command, arg string) (string, error) {
	switch cmd {
	case linebot.CommandHelp, linebot.CommandUnknown:
		return helpText, nil
	case linebot.CommandLink:
		return b.link(ctx, event.LineUserID, arg)
	}

	u, err := b.userRepo.GetByLineUserID(ctx, event.LineUserID)
	if errors.Is(err, user.ErrUserNotFound) {
		return linkFirstText, nil
	}
	if err != nil {
		return "", err
	}

	membership, err := b.companyService.PrimaryMembership(ctx, u.ID)
	if errors.Is(err, company.ErrNoMembership) {
		return linkFirstText, nil
	}
	if err != nil {
		return "", err
	}

	if action, ok := cmd.Action(); ok {
		return b.record(ctx, u.ID, membership.CompanyID, action)
	}
	return b.status(ctx, u.ID, membership.CompanyID)
}

func (b *BotServiceImpl) link(ctx context.Context, lineUserID, code string) (string, error) {
	displayName, err := b.messenger.DisplayName(ctx, lineUserID)
	if err != nil {
		slog.Warn("failed to fetch LINE profile for link", "line_user_id", lineUserID, "error", err)
	}

	m, err := b.companyService.Link(ctx, company.LinkRequest{
		LineUserID:  lineUserID,
		Code:        code,
		DisplayName: displayName,
	})
	var verrs validator.ValidationErrors
	switch {
	case err == nil:
		return fmt.Sprintf("Linked to %s. Send \"clock in\" to start your day.", m.CompanyName), nil
	case errors.Is(err, company.ErrCompanyNotFound):
		return unknownJoinCodeText, nil
	case errors.Is(err, company.ErrAlreadyLinked):
		return "You are already linked to that company.", nil
	case errors.As(err, &verrs):
		return badJoinCodeText, nil
	default:
		return "", err
	}
}

var actionDone = map[attendance.Action]string{
	attendance.ActionClockIn:    "Clocked in at %s.",
	attendance.ActionClockOut:   "Clocked out at %s.",
	attendance.ActionBreakStart: "Break started at %s.",
	attendance.ActionBreakEnd:   "Break ended at %s.",
}

func (b *BotServiceImpl) record(ctx context.Context, userID, companyID string, action attendance.Action) (string, error) {
	resp, err := b.attendanceService.RecordAction(ctx, attendance.RecordActionRequest{
		UserID:    userID,
		CompanyID: companyID,
		Action:    string(action),
	})
	var terr *attendance.TransitionError
	if errors.As(err, &terr) {
		return fmt.Sprintf("Cannot do that: %s.", terr.Reason), nil
	}
	if err != nil {
		return "", err
	}

	var at *string
	switch action {
	case attendance.ActionClockIn:
		at = resp.ClockIn
	case attendance.ActionClockOut:
		at = resp.ClockOut
	case attendance.ActionBreakStart:
		at = resp.BreakStart
	case attendance.ActionBreakEnd:
		at = resp.BreakEnd
	}

	text := fmt.Sprintf(actionDone[action], clockOf(at))
	if action == attendance.ActionClockOut && resp.Worked != "" {
		text += fmt.Sprintf(" Worked %s today.", resp.Worked)
	}
	return text, nil
}

func (b *BotServiceImpl) status(ctx context.Context, userID, companyID string) (string, error) {
	today, err := b.attendanceService.GetToday(ctx, userID, companyID)
	if err != nil {
		return "", err
	}

	switch today.State {
	case attendance.StateNotStarted:
		return fmt.Sprintf("%s: not clocked in yet.", today.Date), nil
	case attendance.StateWorking:
		return fmt.Sprintf("%s: working since %s.", today.Date, clockOf(today.Record.ClockIn)), nil
	case attendance.StateOnBreak:
		return fmt.Sprintf("%s: on break since %s.", today.Date, clockOf(today.Record.BreakStart)), nil
	default:
		return fmt.Sprintf("%s: finished %s-%s, worked %s.",
			today.Date, clockOf(today.Record.ClockIn), clockOf(today.Record.ClockOut), today.Record.Worked), nil
	}
}

// clockOf turns an RFC3339 instant into HH:MM, keeping its offset.
func clockOf(s *string) string {
	if s == nil {
		return "--:--"
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return *s
	}
	return t.Format("15:04")
}
