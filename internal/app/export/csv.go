// Package export renders the session ledger for download.
package export

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/tutu-network/focus/internal/domain"
)

// Header is the fixed first row of every export.
const Header = "Date,Duration (min),Coins,Mode,Notes"

// DateLayout is the short numeric date used in the Date column.
const DateLayout = "1/2/2006"

// FileName returns the suggested download name for an export made at now.
func FileName(now time.Time) string {
	return "focus-sessions-" + now.Format("2006-01-02") + ".csv"
}

// CSV renders one row per session, oldest first. Dates are shown in loc.
// Fields are never quoted: commas in notes become semicolons and line
// breaks become spaces so every session stays on one line. Rows are
// separated by "\n" with no trailing newline.
func CSV(sessions []domain.Session, loc *time.Location) string {
	var b strings.Builder
	b.WriteString(Header)
	for _, s := range sessions {
		b.WriteByte('\n')
		b.WriteString(Row(s, loc))
	}
	return b.String()
}

// WriteCSV writes CSV(sessions, loc) to w.
func WriteCSV(w io.Writer, sessions []domain.Session, loc *time.Location) error {
	_, err := io.WriteString(w, CSV(sessions, loc))
	return err
}

// Row renders a single session.
func Row(s domain.Session, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	mode := s.Mode
	if mode == "" {
		mode = domain.ModeFocus
	}
	return strings.Join([]string{
		s.Date.In(loc).Format(DateLayout),
		strconv.FormatInt(s.Minutes(), 10),
		strconv.FormatInt(s.Coins, 10),
		string(mode),
		cleanNotes(s.Notes),
	}, ",")
}

var notesReplacer = strings.NewReplacer(",", ";", "\r\n", " ", "\n", " ", "\r", " ")

func cleanNotes(notes string) string {
	return notesReplacer.Replace(notes)
}
