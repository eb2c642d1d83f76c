package linebot

import (
	"strings"

	"github.com/cmlabs-hris/kintai-line-go/internal/domain/attendance"
)

// Command is a recognized bot instruction.
type Command string

const (
	CommandClockIn    Command = "clock_in"
	CommandClockOut   Command = "clock_out"
	CommandBreakStart Command = "break_start"
	CommandBreakEnd   Command = "break_end"
	CommandStatus     Command = "status"
	CommandLink       Command = "link"
	CommandHelp       Command = "help"
	CommandUnknown    Command = "unknown"
)

var commandWords = map[string]Command{
	"出勤":        CommandClockIn,
	"clock in":  CommandClockIn,
	"退勤":        CommandClockOut,
	"clock out": CommandClockOut,
	"休憩":        CommandBreakStart,
	"break":     CommandBreakStart,
	"休憩終了":      CommandBreakEnd,
	"break end": CommandBreakEnd,
	"状態":        CommandStatus,
	"status":    CommandStatus,
	"ヘルプ":       CommandHelp,
	"help":      CommandHelp,
}

var linkPrefixes = []string{"link ", "連携 "}

// Parse maps message text to a command. Latin words are matched
// case-insensitively with whitespace collapsed. For CommandLink the join
// code is returned uppercased as arg.
func Parse(text string) (cmd Command, arg string) {
	normalized := strings.ToLower(strings.Join(strings.Fields(text), " "))
	if c, ok := commandWords[normalized]; ok {
		return c, ""
	}

	for _, prefix := range linkPrefixes {
		if code, ok := strings.CutPrefix(normalized, prefix); ok && code != "" {
			return CommandLink, strings.ToUpper(code)
		}
	}

	return CommandUnknown, ""
}

// Action returns the attendance action a command performs, if any.
func (c Command) Action() (attendance.Action, bool) {
	switch c {
	case CommandClockIn:
		return attendance.ActionClockIn, true
	case CommandClockOut:
		return attendance.ActionClockOut, true
	case CommandBreakStart:
		return attendance.ActionBreakStart, true
	case CommandBreakEnd:
		return attendance.ActionBreakEnd, true
	}
	return "", false
}
