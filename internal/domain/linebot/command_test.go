package linebot

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cmlabs-hris/kintai-line-go/internal/domain/attendance"
)

func TestParse(t *testing.T) {
	tests := []struct {
		text    string
		wantCmd Command
		wantArg string
	}{
		{"出勤", CommandClockIn, ""},
		{"  出勤 ", CommandClockIn, ""},
		{"clock in", CommandClockIn, ""},
		{"Clock  IN", CommandClockIn, ""},
		{"退勤", CommandClockOut, ""},
		{"CLOCK OUT", CommandClockOut, ""},
		{"休憩", CommandBreakStart, ""},
		{"Break", CommandBreakStart, ""},
		{"休憩終了", CommandBreakEnd, ""},
		{"break end", CommandBreakEnd, ""},
		{"状態", CommandStatus, ""},
		{"status", CommandStatus, ""},
		{"help", CommandHelp, ""},
		{"link abc234", CommandLink, "ABC234"},
		{"連携 K7M2P9", CommandLink, "K7M2P9"},
		{"link", CommandUnknown, ""},
		{"clockin", CommandUnknown, ""},
		{"hello", CommandUnknown, ""},
		{"", CommandUnknown, ""},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			cmd, arg := Parse(tt.text)
			assert.Equal(t, tt.wantCmd, cmd)
			assert.Equal(t, tt.wantArg, arg)
		})
	}
}

func TestCommand_Action(t *testing.T) {
	action, ok := CommandClockOut.Action()
	assert.True(t, ok)
	assert.Equal(t, attendance.ActionClockOut, action)

	_, ok = CommandStatus.Action()
	assert.False(t, ok)
}
