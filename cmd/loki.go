package main

import (
	"github.com/ic2hrmk/promtail"
	"github.com/sirupsen/logrus"
)

func (a *App) initLoki() error {
	identifiers := map[string]string{
		"instanceId": a.Name,
	}

	promTail, err := promtail.NewJSONv1Client(a.Config.LokiHost, identifiers)
	if err != nil {
		return err
	}

	a.PromTail = promTail
	a.Logger.AddHook(&lokiHook{client: promTail})

	return nil
}

// lokiHook forwards warnings and errors to loki so alerts do not depend on
// container log scraping.
type lokiHook struct {
	client promtail.Client
}

func (h *lokiHook) Levels() []logrus.Level {
	return []logrus.Level{
		logrus.WarnLevel,
		logrus.ErrorLevel,
		logrus.FatalLevel,
		logrus.PanicLevel,
	}
}

func (h *lokiHook) Fire(entry *logrus.Entry) error {
	line, err := entry.String()
	if err != nil {
		return err
	}

	switch entry.Level {
	case logrus.WarnLevel:
		h.client.Warnf("%s", line)
	default:
		h.client.Errorf("%s", line)
	}

	return nil
}
