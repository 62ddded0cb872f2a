//go:build noprom

package metrics

import (
	"net/http"

	"github.com/sirupsen/logrus"
)

// When built with -tags noprom, provide stubs that keep the no-op recorder.

func Handler() http.Handler { return http.NotFoundHandler() }

func Enable(addr string, logger logrus.FieldLogger) (*Exporter, error) { return nil, nil }
