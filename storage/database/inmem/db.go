// Package inmemdb provides map-backed repositories for tests.
package inmemdb

import (
	"sync"

	"github.com/viserknight/mtss/core/announcement"
	"github.com/viserknight/mtss/core/attendance"
	"github.com/viserknight/mtss/core/audit"
	"github.com/viserknight/mtss/core/child"
	"github.com/viserknight/mtss/core/invite"
	"github.com/viserknight/mtss/core/report"
	"github.com/viserknight/mtss/core/timetable"
	"github.com/viserknight/mtss/core/user"
)

type (
	DB struct {
		user         *userTable
		invitation   *invitationTable
		child        *childTable
		class        *classTable
		announcement *announcementTable
		attendance   *attendanceTable
		timetable    *timetableTable
		reportCard   *reportCardTable
		audit        *auditTable
	}

	userTable struct {
		table map[string]*user.User
		mutex sync.RWMutex
	}
	invitationTable struct {
		table map[string]*invite.Invitation
		mutex sync.RWMutex
	}
	childTable struct {
		table map[string]*child.Child
		mutex sync.RWMutex
	}
	classTable struct {
		table map[string]*child.Class
		mutex sync.RWMutex
	}
	announcementTable struct {
		table map[string]*announcement.Announcement
		mutex sync.RWMutex
	}
	attendanceTable struct {
		table map[string]*attendance.Record
		mutex sync.RWMutex
	}
	timetableTable struct {
		table map[string]*timetable.Entry
		mutex sync.RWMutex
	}
	reportCardTable struct {
		table map[string]*report.ReportCard
		mutex sync.RWMutex
	}
	auditTable struct {
		table map[string]*audit.Entry
		mutex sync.RWMutex
	}
)

func Open() *DB {
	return &DB{
		user:         &userTable{table: make(map[string]*user.User)},
		invitation:   &invitationTable{table: make(map[string]*invite.Invitation)},
		child:        &childTable{table: make(map[string]*child.Child)},
		class:        &classTable{table: make(map[string]*child.Class)},
		announcement: &announcementTable{table: make(map[string]*announcement.Announcement)},
		attendance:   &attendanceTable{table: make(map[string]*attendance.Record)},
		timetable:    &timetableTable{table: make(map[string]*timetable.Entry)},
		reportCard:   &reportCardTable{table: make(map[string]*report.ReportCard)},
		audit:        &auditTable{table: make(map[string]*audit.Entry)},
	}
}
