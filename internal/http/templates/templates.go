package templates

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/sleeplog/internal/ledger"
	"github.com/sleeplog/internal/profiles"
	"github.com/sleeplog/internal/statistics"
)

//go:embed *.html.tmpl
var embedFS embed.FS

type Renderer interface {
	RenderLoginPage(io.Writer, LoginData) error
	RenderCalendarPage(io.Writer, CalendarData) error
	RenderDayPage(io.Writer, DayData) error
	RenderProfilePage(io.Writer, ProfileData) error
	RenderMonthStatisticsPage(io.Writer, MonthStatisticsData) error
	RenderYearStatisticsPage(io.Writer, YearStatisticsData) error
}

var funcs = template.FuncMap{
	"hours": func(hours float64) string {
		return strconv.FormatFloat(hours, 'f', 2, 64)
	},
	"monthName": func(month time.Month) string {
		return month.String()
	},
	"quality": func(q ledger.Quality) string {
		return q.String()
	},
}

type pages map[string]*template.Template

func parsePages(fsys fs.FS) (pages, error) {
	layout, err := template.New("_layout.html.tmpl").Funcs(funcs).ParseFS(fsys, "_layout.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	out := pages{}
	for _, name := range []string{
		"login.html.tmpl",
		"calendar.html.tmpl",
		"day.html.tmpl",
		"profile.html.tmpl",
		"statistics_month.html.tmpl",
		"statistics_year.html.tmpl",
	} {
		clone, err := layout.Clone()
		if err != nil {
			return nil, err
		}
		page, err := clone.ParseFS(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		out[name] = page
	}
	return out, nil
}

type renderer struct {
	load func() (pages, error)
}

// NewEmbedTemplates parses the templates compiled into the binary once.
func NewEmbedTemplates() Renderer {
	parsed, err := parsePages(embedFS)
	if err != nil {
		panic(err)
	}
	return &renderer{
		load: func() (pages, error) { return parsed, nil },
	}
}

// NewFilesystemTemplates parses templates from path on every render.
func NewFilesystemTemplates(path string) Renderer {
	return &renderer{
		load: func() (pages, error) { return parsePages(os.DirFS(path)) },
	}
}

func (r *renderer) render(w io.Writer, name string, data any) error {
	parsed, err := r.load()
	if err != nil {
		return err
	}
	page, ok := parsed[name]
	if !ok {
		return fmt.Errorf("%s: template not found", name)
	}
	return page.ExecuteTemplate(w, "_layout.html.tmpl", data)
}

type LoginData struct {
	Login string
	Error string
}

func (r *renderer) RenderLoginPage(w io.Writer, data LoginData) error {
	return r.render(w, "login.html.tmpl", data)
}

type CalendarCell struct {
	Day           int
	Date          string
	Sleep         float64
	ActivityHours float64
	Quality       ledger.Quality
	IsToday       bool
}

type CalendarData struct {
	Year      int
	Month     time.Month
	PrevYear  int
	PrevMonth int
	NextYear  int
	NextMonth int
	// Weeks rows start on Monday, nil cells pad the first and last week
	Weeks       [][]*CalendarCell
	CalendarURL string
}

func (r *renderer) RenderCalendarPage(w io.Writer, data CalendarData) error {
	return r.render(w, "calendar.html.tmpl", data)
}

type ActivityRow struct {
	Index int
	ledger.ActivityEntry
	Hours float64
}

type DayData struct {
	Day           ledger.DayKey
	Title         string
	Sleep         string
	ActivityHours float64
	Quality       ledger.Quality
	Activities    []ActivityRow
	Error         string
}

func (d DayData) Month() int {
	return d.Day.Month + 1
}

func (r *renderer) RenderDayPage(w io.Writer, data DayData) error {
	return r.render(w, "day.html.tmpl", data)
}

type ProfileData struct {
	Profile       *profiles.Profile
	Errors        map[string]string
	Saved         bool
	AvatarPending bool
}

func (r *renderer) RenderProfilePage(w io.Writer, data ProfileData) error {
	return r.render(w, "profile.html.tmpl", data)
}

type MonthStatisticsData struct {
	Stats     *statistics.Month
	PrevYear  int
	PrevMonth int
	NextYear  int
	NextMonth int
}

func (r *renderer) RenderMonthStatisticsPage(w io.Writer, data MonthStatisticsData) error {
	return r.render(w, "statistics_month.html.tmpl", data)
}

type YearMonth struct {
	Month time.Month
	statistics.Summary
}

type YearStatisticsData struct {
	Stats    *statistics.Year
	Months   []YearMonth
	PrevYear int
	NextYear int
}

func (r *renderer) RenderYearStatisticsPage(w io.Writer, data YearStatisticsData) error {
	return r.render(w, "statistics_year.html.tmpl", data)
}
