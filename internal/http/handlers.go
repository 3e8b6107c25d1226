package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sleeplog/internal/authentication"
	"github.com/sleeplog/internal/avatars"
	"github.com/sleeplog/internal/calendars"
	"github.com/sleeplog/internal/credentials"
	"github.com/sleeplog/internal/devices"
	"github.com/sleeplog/internal/http/templates"
	"github.com/sleeplog/internal/jobs"
	"github.com/sleeplog/internal/keys"
	"github.com/sleeplog/internal/ledger"
	"github.com/sleeplog/internal/profiles"
	"github.com/sleeplog/internal/statistics"
	"github.com/sleeplog/internal/timezone"
	"github.com/sleeplog/internal/tokens"
)

func Handler(
	logger *slog.Logger,
	renderer templates.Renderer,
	staticHandler http.Handler,
	uploadsHandler http.Handler,
	key *keys.Key,
	location *time.Location,
	authenticationService *authentication.Service,
	ledgerService *ledger.Service,
	statisticsService *statistics.Service,
	profilesService *profiles.Service,
	avatarsService *avatars.Service,
	scheduler *jobs.Scheduler,
	calendarsService *calendars.Service,
) http.HandlerFunc {
	requireAuth := WithAuthentication(logger, key, authenticationService, redirectToLogin)
	requireAPIAuth := WithAuthentication(logger, key, authenticationService, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(logger, w, http.StatusUnauthorized, uploadResponse{Error: "not signed in"})
	})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /login", handleLoginPage(logger, renderer))
	mux.HandleFunc("POST /login", handleLogin(logger, renderer, key, authenticationService))
	mux.HandleFunc("POST /register", handleRegister(logger, renderer, key, authenticationService, profilesService))
	mux.HandleFunc("POST /logout", requireAuth(handleLogout(logger, authenticationService)))

	mux.HandleFunc("GET /{$}", requireAuth(handleToday(location)))
	mux.HandleFunc("GET /calendar/{year}/{month}/{$}", requireAuth(handleCalendar(logger, renderer, ledgerService, location)))

	mux.HandleFunc("GET /days/{date}/{$}", requireAuth(handleDay(logger, renderer, ledgerService)))
	mux.HandleFunc("POST /days/{date}/sleep", requireAuth(handleSetSleep(logger, renderer, ledgerService)))
	mux.HandleFunc("POST /days/{date}/activities", requireAuth(handleAddActivity(logger, renderer, ledgerService)))
	mux.HandleFunc("POST /days/{date}/activities/{index}", requireAuth(handleUpdateActivity(logger, renderer, ledgerService)))
	mux.HandleFunc("POST /days/{date}/activities/{index}/delete", requireAuth(handleDeleteActivity(logger, ledgerService)))

	mux.HandleFunc("GET /profile", requireAuth(handleProfilePage(logger, renderer, profilesService, scheduler)))
	mux.HandleFunc("POST /profile", requireAuth(handleUpdateProfile(logger, renderer, profilesService)))
	mux.HandleFunc("POST /api/upload", requireAPIAuth(handleUpload(logger, avatarsService)))

	mux.HandleFunc("GET /statistics/{$}", requireAuth(handleStatistics(location)))
	mux.HandleFunc("GET /statistics/year/{year}/{$}", requireAuth(handleYearStatistics(logger, renderer, statisticsService)))
	mux.HandleFunc("GET /statistics/year/{year}/month/{month}/{$}", requireAuth(handleYearMonthStatistics(logger, renderer, statisticsService)))

	mux.HandleFunc("GET /calendars/{calendar_id}/sleeplog.ics", handleGetCalendar(logger, calendarsService))
	mux.HandleFunc("POST /calendars", requireAuth(handleCreateCalendar(logger, calendarsService)))

	mux.Handle("GET "+avatars.URLPrefix, uploadsHandler)
	mux.HandleFunc("GET /", staticHandler.ServeHTTP)

	return WithAccessLogs(logger)(mux.ServeHTTP)
}

func setSession(w http.ResponseWriter, r *http.Request, key *keys.Key, token *tokens.Token) error {
	device := devices.Device{TokenID: token.ID}
	cookies, err := device.ToCookies(key, token.Expires, r.TLS != nil)
	if err != nil {
		return err
	}
	for _, cookie := range cookies {
		http.SetCookie(w, cookie)
	}
	return nil
}

func handleLoginPage(logger *slog.Logger, renderer templates.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := renderer.RenderLoginPage(w, templates.LoginData{}); err != nil {
			logger.Error("render login page", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}
}

func renderLoginError(logger *slog.Logger, w http.ResponseWriter, renderer templates.Renderer, status int, login string, err error) {
	w.WriteHeader(status)
	if err := renderer.RenderLoginPage(w, templates.LoginData{
		Login: login,
		Error: err.Error(),
	}); err != nil {
		logger.Error("render login page", "error", err)
	}
}

func handleLogin(
	logger *slog.Logger,
	renderer templates.Renderer,
	key *keys.Key,
	authenticationService *authentication.Service,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		login, password := r.PostForm.Get("login"), r.PostForm.Get("password")

		token, err := authenticationService.Login(r.Context(), login, password)
		if errors.Is(err, credentials.ErrEmptyLoginOrPassword) {
			renderLoginError(logger, w, renderer, http.StatusBadRequest, login, err)
			return
		} else if errors.Is(err, credentials.ErrInvalidLoginOrPassword) {
			renderLoginError(logger, w, renderer, http.StatusUnauthorized, login, err)
			return
		} else if err != nil {
			logger.Error("login", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		if err := setSession(w, r, key, token); err != nil {
			logger.Error("set session", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/", http.StatusFound)
	}
}

func handleRegister(
	logger *slog.Logger,
	renderer templates.Renderer,
	key *keys.Key,
	authenticationService *authentication.Service,
	profilesService *profiles.Service,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		login, password := r.PostForm.Get("login"), r.PostForm.Get("password")

		token, err := authenticationService.Register(r.Context(), login, password)
		if errors.Is(err, credentials.ErrEmptyLoginOrPassword) {
			renderLoginError(logger, w, renderer, http.StatusBadRequest, login, err)
			return
		} else if errors.Is(err, credentials.ErrLoginTaken) {
			renderLoginError(logger, w, renderer, http.StatusConflict, login, credentials.ErrLoginTaken)
			return
		} else if err != nil {
			logger.Error("register", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		if _, err := profilesService.EnsureExists(r.Context(), token.CredentialsID); err != nil {
			logger.Error("create profile", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		if err := setSession(w, r, key, token); err != nil {
			logger.Error("set session", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/", http.StatusFound)
	}
}

func handleLogout(logger *slog.Logger, authenticationService *authentication.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, _ := tokens.FromContext(r.Context())
		if err := authenticationService.Logout(r.Context(), token.ID); err != nil {
			logger.Error("logout", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		for _, cookie := range devices.ClearCookies(r.TLS != nil) {
			http.SetCookie(w, cookie)
		}
		http.Redirect(w, r, "/login", http.StatusFound)
	}
}

func handleToday(location *time.Location) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		today := timezone.Today(location)
		http.Redirect(w, r, fmt.Sprintf("/calendar/%d/%d/", today.Year, today.Month+1), http.StatusFound)
	}
}

// parseYearMonth reads {year} and {month} path values. Month is 1-based.
func parseYearMonth(r *http.Request) (int, time.Month, bool) {
	year, err := strconv.Atoi(r.PathValue("year"))
	if err != nil {
		return 0, 0, false
	}
	month, err := strconv.Atoi(r.PathValue("month"))
	if err != nil || month < int(time.January) || month > int(time.December) {
		return 0, 0, false
	}
	return year, time.Month(month), true
}

func nextMonth(year int, month time.Month) (int, int) {
	if month == time.December {
		return year + 1, int(time.January)
	}
	return year, int(month) + 1
}

func prevMonth(year int, month time.Month) (int, int) {
	if month == time.January {
		return year - 1, int(time.December)
	}
	return year, int(month) - 1
}

// calendarWeeks lays the month out in rows starting on Monday.
func calendarWeeks(l *ledger.Ledger, year int, month time.Month, today ledger.DayKey) [][]*templates.CalendarCell {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(first.Weekday()) + 6) % 7

	var weeks [][]*templates.CalendarCell
	week := make([]*templates.CalendarCell, offset, 7)
	for d := 1; d <= ledger.DaysInMonth(year, int(month)-1); d++ {
		key := ledger.DayKey{Day: d, Month: int(month) - 1, Year: year}
		week = append(week, &templates.CalendarCell{
			Day:           d,
			Date:          key.String(),
			Sleep:         l.Record(key).SleepHours(),
			ActivityHours: l.TotalActivityHours(key),
			Quality:       l.SleepQuality(key),
			IsToday:       key == today,
		})
		if len(week) == 7 {
			weeks = append(weeks, week)
			week = make([]*templates.CalendarCell, 0, 7)
		}
	}
	if len(week) > 0 {
		for len(week) < 7 {
			week = append(week, nil)
		}
		weeks = append(weeks, week)
	}
	return weeks
}

func handleCalendar(
	logger *slog.Logger,
	renderer templates.Renderer,
	ledgerService *ledger.Service,
	location *time.Location,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, month, ok := parseYearMonth(r)
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		l, err := ledgerService.Month(r.Context(), year, int(month)-1)
		if err != nil {
			logger.Error("load month", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		prevYear, prev := prevMonth(year, month)
		nextYear, next := nextMonth(year, month)
		if err := renderer.RenderCalendarPage(w, templates.CalendarData{
			Year:      year,
			Month:     month,
			PrevYear:  prevYear,
			PrevMonth: prev,
			NextYear:  nextYear,
			NextMonth: next,
			Weeks:     calendarWeeks(l, year, month, timezone.Today(location)),
		}); err != nil {
			logger.Error("render calendar page", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}
}

func dayData(l *ledger.Ledger, day ledger.DayKey) templates.DayData {
	record := l.Record(day)
	data := templates.DayData{
		Day:           day,
		Title:         day.Time(time.UTC).Format("Monday, 2 January 2006"),
		ActivityHours: l.TotalActivityHours(day),
		Quality:       l.SleepQuality(day),
	}
	if record.Sleep != nil {
		data.Sleep = strconv.FormatFloat(*record.Sleep, 'f', -1, 64)
	}
	for i, activity := range record.Activities {
		data.Activities = append(data.Activities, templates.ActivityRow{
			Index:         i,
			ActivityEntry: activity,
			Hours:         activity.Hours(),
		})
	}
	return data
}

func renderDay(
	logger *slog.Logger,
	w http.ResponseWriter,
	r *http.Request,
	renderer templates.Renderer,
	ledgerService *ledger.Service,
	day ledger.DayKey,
	status int,
	formError error,
) {
	l, err := ledgerService.Day(r.Context(), day)
	if err != nil {
		logger.Error("load day", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	data := dayData(l, day)
	if formError != nil {
		data.Error = formError.Error()
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := renderer.RenderDayPage(w, data); err != nil {
		logger.Error("render day page", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
}

func handleDay(
	logger *slog.Logger,
	renderer templates.Renderer,
	ledgerService *ledger.Service,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day, err := ledger.ParseDayKey(r.PathValue("date"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		renderDay(logger, w, r, renderer, ledgerService, day, http.StatusOK, nil)
	}
}

var errInvalidSleep = errors.New("sleep must be a number of hours between 0 and 24")

func parseSleep(value string) (float64, error) {
	hours, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(hours) || math.IsInf(hours, 0) || hours < 0 || hours > 24 {
		return 0, errInvalidSleep
	}
	return hours, nil
}

func handleSetSleep(
	logger *slog.Logger,
	renderer templates.Renderer,
	ledgerService *ledger.Service,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day, err := ledger.ParseDayKey(r.PathValue("date"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		hours, err := parseSleep(r.PostForm.Get("hours"))
		if err != nil {
			renderDay(logger, w, r, renderer, ledgerService, day, http.StatusBadRequest, err)
			return
		}

		if err := ledgerService.SetSleep(r.Context(), day, hours); err != nil {
			logger.Error("set sleep", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, fmt.Sprintf("/days/%s/", day), http.StatusSeeOther)
	}
}

func parseActivity(r *http.Request) (ledger.ActivityEntry, error) {
	entry := ledger.ActivityEntry{
		Start:       strings.TrimSpace(r.PostForm.Get("start_time")),
		End:         strings.TrimSpace(r.PostForm.Get("end_time")),
		Description: strings.TrimSpace(r.PostForm.Get("description")),
	}
	if _, err := ledger.ParseClock(entry.Start); err != nil {
		return entry, fmt.Errorf("start time must look like 09:30")
	}
	if _, err := ledger.ParseClock(entry.End); err != nil {
		return entry, fmt.Errorf("end time must look like 09:30")
	}
	return entry, nil
}

func handleAddActivity(
	logger *slog.Logger,
	renderer templates.Renderer,
	ledgerService *ledger.Service,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day, err := ledger.ParseDayKey(r.PathValue("date"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		entry, err := parseActivity(r)
		if err != nil {
			renderDay(logger, w, r, renderer, ledgerService, day, http.StatusBadRequest, err)
			return
		}

		if err := ledgerService.AddActivity(r.Context(), day, entry); err != nil {
			logger.Error("add activity", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, fmt.Sprintf("/days/%s/", day), http.StatusSeeOther)
	}
}

func parseDayIndex(r *http.Request) (ledger.DayKey, int, bool) {
	day, err := ledger.ParseDayKey(r.PathValue("date"))
	if err != nil {
		return ledger.DayKey{}, 0, false
	}
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		return ledger.DayKey{}, 0, false
	}
	return day, index, true
}

func handleUpdateActivity(
	logger *slog.Logger,
	renderer templates.Renderer,
	ledgerService *ledger.Service,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day, index, ok := parseDayIndex(r)
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		entry, err := parseActivity(r)
		if err != nil {
			renderDay(logger, w, r, renderer, ledgerService, day, http.StatusBadRequest, err)
			return
		}

		if err := ledgerService.UpdateActivity(r.Context(), day, index, entry); errors.Is(err, ledger.ErrIndexOutOfRange) {
			w.WriteHeader(http.StatusNotFound)
			return
		} else if err != nil {
			logger.Error("update activity", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, fmt.Sprintf("/days/%s/", day), http.StatusSeeOther)
	}
}

func handleDeleteActivity(logger *slog.Logger, ledgerService *ledger.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day, index, ok := parseDayIndex(r)
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		if err := ledgerService.DeleteActivity(r.Context(), day, index); errors.Is(err, ledger.ErrIndexOutOfRange) {
			w.WriteHeader(http.StatusNotFound)
			return
		} else if err != nil {
			logger.Error("delete activity", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, fmt.Sprintf("/days/%s/", day), http.StatusSeeOther)
	}
}

func handleProfilePage(
	logger *slog.Logger,
	renderer templates.Renderer,
	profilesService *profiles.Service,
	scheduler *jobs.Scheduler,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := profilesService.Get(r.Context())
		if err != nil {
			logger.Error("get profile", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		pending, err := scheduler.PendingAvatars(r.Context(), profile.CredentialsID)
		if err != nil {
			logger.Error("pending avatars", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if err := renderer.RenderProfilePage(w, templates.ProfileData{
			Profile:       profile,
			AvatarPending: pending,
		}); err != nil {
			logger.Error("render profile page", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}
}

func handleUpdateProfile(
	logger *slog.Logger,
	renderer templates.Renderer,
	profilesService *profiles.Service,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		current, err := profilesService.Get(r.Context())
		if err != nil {
			logger.Error("get profile", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		input := profiles.UpdateInput{
			Username: strings.TrimSpace(r.PostForm.Get("username")),
			Email:    strings.TrimSpace(r.PostForm.Get("email")),
		}
		fieldErrors := map[string]string{}
		if input.Height, err = strconv.ParseFloat(r.PostForm.Get("height"), 64); err != nil {
			fieldErrors["Height"] = "Height must be a number"
		}
		if input.Weight, err = strconv.ParseFloat(r.PostForm.Get("weight"), 64); err != nil {
			fieldErrors["Weight"] = "Weight must be a number"
		}

		var saved *profiles.Profile
		if len(fieldErrors) == 0 {
			saved, err = profilesService.Update(r.Context(), input)
			var validationErrors validator.ValidationErrors
			if errors.As(err, &validationErrors) {
				fieldErrors = profiles.FieldErrors(err)
			} else if err != nil {
				logger.Error("update profile", "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
		}

		data := templates.ProfileData{
			Profile: saved,
			Saved:   saved != nil,
		}
		if saved == nil {
			failed := *current
			failed.Username = input.Username
			failed.Email = input.Email
			failed.Height = input.Height
			failed.Weight = input.Weight
			data.Profile = &failed
			data.Errors = fieldErrors
			w.WriteHeader(http.StatusBadRequest)
		}
		if err := renderer.RenderProfilePage(w, data); err != nil {
			logger.Error("render profile page", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}
}

type uploadResponse struct {
	URL   string `json:"url,omitempty"`
	Error string `json:"error,omitempty"`
}

func writeJSON(logger *slog.Logger, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("write json", "error", err)
	}
}

func handleUpload(logger *slog.Logger, avatarsService *avatars.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, avatars.MaxSize+1<<20)
		if err := r.ParseMultipartForm(avatars.MaxSize); err != nil {
			var maxBytesError *http.MaxBytesError
			if errors.As(err, &maxBytesError) {
				writeJSON(logger, w, http.StatusBadRequest, uploadResponse{Error: avatars.ErrTooLarge.Error()})
				return
			}
			writeJSON(logger, w, http.StatusBadRequest, uploadResponse{Error: avatars.ErrMissingFile.Error()})
			return
		}
		defer r.MultipartForm.RemoveAll()

		_, header, err := r.FormFile("avatar")
		if errors.Is(err, http.ErrMissingFile) {
			writeJSON(logger, w, http.StatusBadRequest, uploadResponse{Error: avatars.ErrMissingFile.Error()})
			return
		} else if err != nil {
			logger.Error("form file", "error", err)
			writeJSON(logger, w, http.StatusInternalServerError, uploadResponse{Error: "upload failed"})
			return
		}

		url, err := avatarsService.Upload(r.Context(), header)
		switch {
		case errors.Is(err, avatars.ErrMissingFile),
			errors.Is(err, avatars.ErrNotAnImage),
			errors.Is(err, avatars.ErrTooLarge):
			writeJSON(logger, w, http.StatusBadRequest, uploadResponse{Error: err.Error()})
		case err != nil:
			logger.Error("upload avatar", "error", err)
			writeJSON(logger, w, http.StatusInternalServerError, uploadResponse{Error: "upload failed"})
		default:
			writeJSON(logger, w, http.StatusOK, uploadResponse{URL: url})
		}
	}
}

func handleStatistics(location *time.Location) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		today := timezone.Today(location)
		http.Redirect(w, r, fmt.Sprintf("/statistics/year/%d/", today.Year), http.StatusTemporaryRedirect)
	}
}

func handleYearMonthStatistics(
	logger *slog.Logger,
	renderer templates.Renderer,
	statisticsService *statistics.Service,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, month, ok := parseYearMonth(r)
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		stats, err := statisticsService.CalculateYearMonth(r.Context(), year, month)
		if err != nil {
			logger.Error("calculate statistics by month", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		prevYear, prev := prevMonth(year, month)
		nextYear, next := nextMonth(year, month)
		if err := renderer.RenderMonthStatisticsPage(w, templates.MonthStatisticsData{
			Stats:     stats,
			PrevYear:  prevYear,
			PrevMonth: prev,
			NextYear:  nextYear,
			NextMonth: next,
		}); err != nil {
			logger.Error("render month statistics page", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}
}

func handleYearStatistics(
	logger *slog.Logger,
	renderer templates.Renderer,
	statisticsService *statistics.Service,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, err := strconv.Atoi(r.PathValue("year"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		stats, err := statisticsService.CalculateYear(r.Context(), year)
		if err != nil {
			logger.Error("calculate statistics by year", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		months := make([]templates.YearMonth, 0, len(stats.Months))
		for i, summary := range stats.Months {
			months = append(months, templates.YearMonth{
				Month:   time.January + time.Month(i),
				Summary: summary,
			})
		}

		if err := renderer.RenderYearStatisticsPage(w, templates.YearStatisticsData{
			Stats:    stats,
			Months:   months,
			PrevYear: year - 1,
			NextYear: year + 1,
		}); err != nil {
			logger.Error("render year statistics page", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}
}

func handleGetCalendar(logger *slog.Logger, calendarsService *calendars.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/calendar")
		if err := calendarsService.WriteICal(r.Context(), w, r.PathValue("calendar_id")); errors.Is(err, calendars.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		} else if err != nil {
			logger.Error("write calendar", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}
}

func handleCreateCalendar(
	logger *slog.Logger,
	calendarsService *calendars.Service,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cal, err := calendarsService.CreateCalendar(r.Context())
		if err != nil {
			logger.Error("create calendar", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, fmt.Sprintf("webcal://%s/calendars/%s/sleeplog.ics", r.Host, cal.ID), http.StatusFound)
	}
}
