package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/MonsieurPatate/daily-tender-bot/config"
	"github.com/MonsieurPatate/daily-tender-bot/internal/apperrors"
	"github.com/MonsieurPatate/daily-tender-bot/internal/constants"
	"github.com/MonsieurPatate/daily-tender-bot/internal/db"
	"github.com/MonsieurPatate/daily-tender-bot/internal/tender"
	"github.com/MonsieurPatate/daily-tender-bot/internal/utils"
)

// pollTime — время подведения итогов из аргумента /poll.
// Без аргумента берётся время из конфигурации, defaulted = true.
func pollTime(args string, now time.Time, cfg config.TenderConfig) (at time.Time, defaulted bool, err error) {
	args = strings.TrimSpace(args)
	hours, minutes := cfg.DailyHour, cfg.DailyMinute
	if args != "" {
		hours, minutes, err = utils.ParseClock(args)
		if err != nil {
			return time.Time{}, false, err
		}
	}
	at, err = utils.DailyTimeUTC(now, hours, minutes)
	if err != nil {
		return time.Time{}, false, err
	}
	return at, args == "", nil
}

// parseSkipArgs разбирает "<имя> <дата>": дата в последнем слове, имя может содержать пробелы.
func parseSkipArgs(args string) (string, time.Time, error) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return "", time.Time{}, apperrors.ErrInvalidArgument.WithDetail("формат: /skip <имя> <дата>")
	}
	until, err := utils.ParseDate(fields[len(fields)-1])
	if err != nil {
		return "", time.Time{}, err
	}
	return strings.Join(fields[:len(fields)-1], " "), until, nil
}

// renderRoster — список участников со статусом: ✅ доступен, ⏱ нет.
func renderRoster(members []db.Member, today time.Time) string {
	var sb strings.Builder
	sb.WriteString(constants.MsgMembersHeader)
	for i, m := range members {
		mark := "✅"
		if !tender.IsEligible(m, today) {
			mark = "⏱"
		}
		fmt.Fprintf(&sb, "%d. %s %s (id=%d)%s\n", i+1, mark, m.FullName, m.ID, availabilityInfo(m, today))
	}
	return sb.String()
}

func availabilityInfo(m db.Member, today time.Time) string {
	if m.SkipUntilDate != nil && !utils.BeforeDate(*m.SkipUntilDate, today) {
		return fmt.Sprintf(constants.MsgAvailableFrom, utils.FormatDate(m.SkipUntilDate.AddDate(0, 0, 1)))
	}
	if m.SkipUntilDate == nil && !m.CanParticipate {
		return constants.MsgAlreadyResolved
	}
	return ""
}
