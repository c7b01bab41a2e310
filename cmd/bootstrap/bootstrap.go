package bootstrap

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go-reservation-board/config"
	"go-reservation-board/internal/delivery/dto"
	"go-reservation-board/internal/domain/entity"
	"go-reservation-board/internal/infrastructure/console"
	"go-reservation-board/internal/infrastructure/transport"
	"go-reservation-board/internal/service"
	"go-reservation-board/internal/store"
	"go-reservation-board/internal/usecase"
	"go-reservation-board/pkg/validator"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// App holds all dependencies for the board client
type App struct {
	Config *config.Config

	Echo   *service.LocalEchoManager
	Socket *transport.WebSocketService

	Create usecase.ReservationCreateUsecase
	Modify usecase.ReservationModifyUsecase
	Cancel usecase.ReservationCancelUsecase
	DnD    usecase.CalendarDnDUsecase

	dispatcher  *service.RealtimeDispatcher
	unsubscribe func()
	events      <-chan dto.RealtimeMessage
	stopChan    chan struct{}
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{stopChan: make(chan struct{})}

	setupLogger()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg
	logrus.Info("Configuration loaded successfully")

	log := logrus.StandardLogger()
	grid := buildSlotGrid(cfg.Board)

	boardStore := store.NewBoardStore()
	echo := service.NewLocalEchoManager(log)
	guard := service.NewInFlightGuard()
	app.Echo = echo

	board := console.NewBoard(log)
	toaster := console.NewToaster(log)

	integration := service.NewCalendarIntegrationService(log, echo, board)
	layout := service.NewSlotLayoutEngine(log, boardStore, grid, integration, cfg.Board.SlotWindowMinutes)

	fallback := transport.NewHTTPFallback(log, cfg.Backend.BaseURL, &http.Client{Timeout: cfg.Backend.Timeout})
	socket := transport.NewWebSocketService(log, fallback, cfg.Socket.ConfirmTimeout)
	app.Socket = socket

	app.dispatcher = service.NewRealtimeDispatcher(log, echo, boardStore, integration, layout, toaster, grid)

	customValidator := validator.NewValidator()

	app.Create = usecase.NewReservationCreateUsecase(
		log, customValidator, grid, echo, boardStore, integration, layout,
		fallback, toaster, board, cfg.Socket.EchoTTL)
	app.Modify = usecase.NewReservationModifyUsecase(
		log, customValidator, grid, echo, guard, boardStore, integration, layout,
		socket, toaster, board, cfg.Socket.EchoTTL)
	app.Cancel = usecase.NewReservationCancelUsecase(
		log, customValidator, echo, boardStore, integration, layout,
		socket, toaster, board, cfg.Socket.StrictEchoTTL)
	app.DnD = usecase.NewCalendarDnDUsecase(
		log, grid, echo, guard, boardStore, layout, app.Modify, board,
		cfg.Board.VacationDates)

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)
}

// buildSlotGrid translates board config into the slot grid, including the
// optional weekend override rule.
func buildSlotGrid(cfg config.BoardConfig) entity.SlotGrid {
	grid := entity.SlotGrid{
		SlotMinutes: cfg.SlotMinutes,
		DayStart:    cfg.DayStart,
		DayEnd:      cfg.DayEnd,
	}

	if len(cfg.WeekendDays) > 0 {
		rule := entity.SlotRule{
			DayStart:    cfg.WeekendDayStart,
			SlotMinutes: cfg.WeekendSlotMins,
		}
		for _, name := range cfg.WeekendDays {
			if wd, ok := parseWeekday(name); ok {
				rule.Weekdays = append(rule.Weekdays, wd)
			}
		}
		if len(rule.Weekdays) > 0 {
			grid.Rules = append(grid.Rules, rule)
		}
	}

	return grid
}

func parseWeekday(name string) (time.Weekday, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sunday":
		return time.Sunday, true
	case "monday":
		return time.Monday, true
	case "tuesday":
		return time.Tuesday, true
	case "wednesday":
		return time.Wednesday, true
	case "thursday":
		return time.Thursday, true
	case "friday":
		return time.Friday, true
	case "saturday":
		return time.Saturday, true
	}
	return time.Sunday, false
}

// Run connects the socket, starts the broadcast pump and blocks until an
// interrupt signal arrives.
func (app *App) Run() {
	app.connectSocket()

	ch, cancel := app.Socket.Subscribe()
	app.events = ch
	app.unsubscribe = cancel
	go app.pumpEvents()

	app.waitForShutdown()
}

// connectSocket dials the realtime endpoint. A failed dial is not fatal:
// operations fall back to HTTP until a socket is attached.
func (app *App) connectSocket() {
	if app.Config.Socket.URL == "" {
		logrus.Warn("No socket URL configured, running HTTP-only")
		return
	}

	dialer := websocket.Dialer{HandshakeTimeout: app.Config.Socket.DialTimeout}
	conn, _, err := dialer.Dial(app.Config.Socket.URL, nil)
	if err != nil {
		logrus.Warnf("Socket dial failed, running HTTP-only: %+v", err)
		return
	}

	app.Socket.Attach(conn)
	logrus.Infof("Connected to realtime endpoint %s", app.Config.Socket.URL)
}

func (app *App) pumpEvents() {
	for {
		select {
		case msg := <-app.events:
			app.dispatcher.Handle(msg)
		case <-app.stopChan:
			return
		}
	}
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down board client...")
	app.Close()
	logrus.Info("Shutdown complete")
}

// Close stops the broadcast pump, the socket and the echo sweeper.
func (app *App) Close() {
	close(app.stopChan)
	if app.unsubscribe != nil {
		app.unsubscribe()
	}
	if app.Socket != nil {
		app.Socket.Stop()
	}
	if app.Echo != nil {
		app.Echo.Stop()
	}
}
