package console

import (
	"time"

	"go-reservation-board/internal/domain/entity"

	"github.com/sirupsen/logrus"
)

// Toaster is the headless notification surface: toasts become log lines.
type Toaster struct {
	log *logrus.Logger
}

func NewToaster(log *logrus.Logger) *Toaster {
	return &Toaster{log: log}
}

func (t *Toaster) Error(title, body string, duration time.Duration) {
	t.log.Warnf("TOAST %s: %s", title, body)
}

func (t *Toaster) CreateSucceeded(name, date, hhmm string) {
	t.log.Infof("TOAST Reserved %s on %s at %s", name, date, hhmm)
}

func (t *Toaster) ModifySucceeded(ctx entity.ModificationContext) {
	if ctx.PrevDate != "" {
		t.log.Infof("TOAST Moved %s from %s %s to %s %s", ctx.Name, ctx.PrevDate, ctx.PrevTime, ctx.NewDate, ctx.NewTime)
		return
	}
	t.log.Infof("TOAST Updated %s: %s %s", ctx.Name, ctx.NewDate, ctx.NewTime)
}

func (t *Toaster) CancelSucceeded(name, date string) {
	t.log.Infof("TOAST Cancelled %s on %s", name, date)
}
