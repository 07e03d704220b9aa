package services

import (
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/ahmedkatalov/fowWorkProject/app/models"
)

// DateLayout is the calendar-day key used by history and summaries.
const DateLayout = "2006-01-02"

// SameDay reports whether t falls on the calendar day of now, in now's location.
func SameDay(t, now time.Time) bool {
	ty, tm, td := t.In(now.Location()).Date()
	ny, nm, nd := now.Date()
	return ty == ny && tm == nm && td == nd
}

func paidToday(c *models.Client, now time.Time) bool {
	return c.Status == models.StatusPaid && c.PaidAt != nil && SameDay(*c.PaidAt, now)
}

func createdToday(c *models.Client, now time.Time) bool {
	return !c.CreatedAt.IsZero() && SameDay(c.CreatedAt, now)
}

// InToday selects records created today and records paid today.
func InToday(c *models.Client, now time.Time) bool {
	return createdToday(c, now) || paidToday(c, now)
}

// InOverdue selects records from earlier days that are still unpaid, plus those
// paid today (they drop out of the bucket the next day). Records created today never qualify.
func InOverdue(c *models.Client, now time.Time) bool {
	if createdToday(c, now) {
		return false
	}
	if c.Status == models.StatusPaid {
		return paidToday(c, now)
	}
	return true
}

// InHistory selects paid records with a payment timestamp.
func InHistory(c *models.Client) bool {
	return c.Status == models.StatusPaid && c.PaidAt != nil
}

// HistoryDate is the payment day of c in loc.
func HistoryDate(c *models.Client, loc *time.Location) string {
	if c.PaidAt == nil {
		return ""
	}
	return c.PaidAt.In(loc).Format(DateLayout)
}

// DisappearsTomorrow marks overdue records that only remain because they were paid today.
func DisappearsTomorrow(c *models.Client, now time.Time) bool {
	return paidToday(c, now)
}

// MonthsElapsed is the calendar month difference between created and now, ignoring days.
func MonthsElapsed(created, now time.Time) int {
	created = created.In(now.Location())
	return (now.Year()-created.Year())*12 + int(now.Month()) - int(created.Month())
}

var dayOfMonth = regexp.MustCompile(`\b([1-9]|[12][0-9]|3[01])\b`)

// RescheduledForToday reports whether a rescheduled client's comment names today's day of month.
func RescheduledForToday(c *models.Client, now time.Time) bool {
	if c.Status != models.StatusRescheduled || c.Comment == "" {
		return false
	}
	m := dayOfMonth.FindStringSubmatch(c.Comment)
	if m == nil {
		return false
	}
	day, err := strconv.Atoi(m[1])
	return err == nil && day == now.Day()
}

// OverdueAge narrows the overdue bucket by months since creation.
type OverdueAge string

const (
	AgeAny       OverdueAge = ""
	AgeOneMonth  OverdueAge = "1m"
	AgeTwoMonths OverdueAge = "2m"
)

func (a OverdueAge) matches(c *models.Client, now time.Time) bool {
	switch a {
	case AgeOneMonth:
		return MonthsElapsed(c.CreatedAt, now) == 1
	case AgeTwoMonths:
		return MonthsElapsed(c.CreatedAt, now) == 2
	default:
		return true
	}
}

// StatusAll disables the status filter.
const StatusAll = "all"

// Query selects the records of one view.
type Query struct {
	Bucket models.Bucket
	Status string // StatusAll, "" or a models.ClientStatus
	Age    OverdueAge
}

func (q Query) statusMatches(c *models.Client) bool {
	return q.Status == "" || q.Status == StatusAll || string(c.Status) == q.Status
}

// Match applies the bucket predicate and the secondary filters.
func (q Query) Match(c *models.Client, now time.Time) bool {
	switch q.Bucket {
	case models.BucketToday:
		if !InToday(c, now) {
			return false
		}
	case models.BucketOverdue:
		if !InOverdue(c, now) || !q.Age.matches(c, now) {
			return false
		}
	case models.BucketHistory:
		if !InHistory(c) {
			return false
		}
	}
	return q.statusMatches(c)
}

// FilterBucket returns the records selected by q, oldest first.
func FilterBucket(records []*models.Client, q Query, now time.Time) []*models.Client {
	out := make([]*models.Client, 0, len(records))
	for _, c := range records {
		if q.Match(c, now) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}
