package attendance

import (
	"time"
)

type PunchType string

const (
	PunchTypeCheckIn  PunchType = "check_in"
	PunchTypeCheckOut PunchType = "check_out"
	PunchTypeBreakOut PunchType = "break_out"
	PunchTypeBreakIn  PunchType = "break_in"
)

type PunchResult string

const (
	PunchResultOnTime     PunchResult = "on_time"
	PunchResultLate       PunchResult = "late"
	PunchResultEarlyLeave PunchResult = "early_leave"
	PunchResultAbsent     PunchResult = "absent"
	PunchResultOvertime   PunchResult = "overtime"
	PunchResultManual     PunchResult = "manual"
	PunchResultInvalid    PunchResult = "invalid"
)

// Punch is one recorded time-clock event. ScheduledTime is the "HH:MM" the
// punch was expected at on Date; CheckTime is nil when nothing was recorded.
type Punch struct {
	ID              string
	EmployeeID      string
	Date            time.Time
	ScheduledTime   string
	CheckTime       *time.Time
	Type            PunchType
	Result          PunchResult
	Remark          *string
	ExceptionReason *string
	IsManual        bool
	CreatedAt       time.Time
}
