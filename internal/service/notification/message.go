package notification

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/kintai-line-go/internal/domain/notification"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/timeutil"
)

type message struct {
	title   string
	summary string
}

func (d *DispatcherImpl) render(e notification.Event, names resolved) message {
	who := names.user.DisplayName
	clock := e.OccurredAt.In(d.loc).Format(timeutil.ClockLayout)
	day := ""
	if !e.Date.IsZero() {
		day = e.Date.Format(timeutil.DateLayout)
	}

	switch e.Type {
	case notification.EventClockIn:
		return message{"Clock in", fmt.Sprintf("%s clocked in at %s", who, clock)}
	case notification.EventClockOut:
		return message{"Clock out", fmt.Sprintf("%s clocked out at %s", who, clock)}
	case notification.EventBreakStart:
		return message{"Break started", fmt.Sprintf("%s started a break at %s", who, clock)}
	case notification.EventBreakEnd:
		return message{"Break ended", fmt.Sprintf("%s ended a break at %s", who, clock)}
	case notification.EventAttendanceEdited:
		return message{"Attendance edited", fmt.Sprintf("%s edited the record of %s for %s", names.actorName, who, day)}
	case notification.EventChangeRequestCreated:
		summary := fmt.Sprintf("%s submitted a change request for %s", who, day)
		if names.actorName != who {
			summary = fmt.Sprintf("%s submitted a change request for %s on behalf of %s", names.actorName, day, who)
		}
		if e.Reason != "" {
			summary += "\nReason: " + e.Reason
		}
		return message{"Change request submitted", summary}
	case notification.EventChangeRequestApproved:
		return message{"Change request approved", reviewSummary("approved", names, day, e.Comment)}
	case notification.EventChangeRequestRejected:
		return message{"Change request rejected", reviewSummary("rejected", names, day, e.Comment)}
	case notification.EventChangeRequestWithdrawn:
		return message{"Change request withdrawn", fmt.Sprintf("%s withdrew the change request for %s", who, day)}
	default:
		return message{string(e.Type), fmt.Sprintf("%s: %s at %s", who, e.Type, e.OccurredAt.In(d.loc).Format(time.RFC3339))}
	}
}

func reviewSummary(verb string, names resolved, day, comment string) string {
	s := fmt.Sprintf("%s %s the change request of %s for %s", names.actorName, verb, names.user.DisplayName, day)
	if comment != "" {
		s += "\nComment: " + comment
	}
	return s
}
