// Package logrus lets hosts that already configure logrus hand their logger
// to the dashboard.
package logrus

import (
	"github.com/raykavin/coviddash/pkg/logger"
	"github.com/sirupsen/logrus"
)

type Adapter struct {
	entry *logrus.Entry
}

func NewAdapter(log *logrus.Logger) *Adapter {
	return &Adapter{entry: logrus.NewEntry(log)}
}

func (l *Adapter) GetLevel() logger.Level {
	switch l.entry.Logger.GetLevel() {
	case logrus.TraceLevel:
		return logger.TraceLevel
	case logrus.DebugLevel:
		return logger.DebugLevel
	case logrus.InfoLevel:
		return logger.InfoLevel
	case logrus.WarnLevel:
		return logger.WarnLevel
	case logrus.ErrorLevel:
		return logger.ErrorLevel
	case logrus.FatalLevel, logrus.PanicLevel:
		return logger.FatalLevel
	default:
		return logger.NoLevel
	}
}

// SetLevel changes the level of the underlying logrus logger. logrus has no
// disabled level so Disabled maps to panic, the quietest it offers.
func (l *Adapter) SetLevel(level logger.Level) {
	switch level {
	case logger.TraceLevel:
		l.entry.Logger.SetLevel(logrus.TraceLevel)
	case logger.DebugLevel:
		l.entry.Logger.SetLevel(logrus.DebugLevel)
	case logger.WarnLevel:
		l.entry.Logger.SetLevel(logrus.WarnLevel)
	case logger.ErrorLevel:
		l.entry.Logger.SetLevel(logrus.ErrorLevel)
	case logger.FatalLevel:
		l.entry.Logger.SetLevel(logrus.FatalLevel)
	case logger.Disabled:
		l.entry.Logger.SetLevel(logrus.PanicLevel)
	default:
		l.entry.Logger.SetLevel(logrus.InfoLevel)
	}
}

func (l *Adapter) WithField(key string, value any) logger.Logger {
	return &Adapter{entry: l.entry.WithField(key, value)}
}

func (l *Adapter) WithFields(fields map[string]any) logger.Logger {
	return &Adapter{entry: l.entry.WithFields(fields)}
}

func (l *Adapter) WithError(err error) logger.Logger {
	return &Adapter{entry: l.entry.WithError(err)}
}

func (l *Adapter) Debug(args ...any) { l.entry.Debug(args...) }
func (l *Adapter) Info(args ...any)  { l.entry.Info(args...) }
func (l *Adapter) Warn(args ...any)  { l.entry.Warn(args...) }
func (l *Adapter) Error(args ...any) { l.entry.Error(args...) }
func (l *Adapter) Fatal(args ...any) { l.entry.Fatal(args...) }

func (l *Adapter) Debugf(format string, args ...any) { l.entry.Debugf(format, args...) }
func (l *Adapter) Infof(format string, args ...any)  { l.entry.Infof(format, args...) }
func (l *Adapter) Warnf(format string, args ...any)  { l.entry.Warnf(format, args...) }
func (l *Adapter) Errorf(format string, args ...any) { l.entry.Errorf(format, args...) }
func (l *Adapter) Fatalf(format string, args ...any) { l.entry.Fatalf(format, args...) }
