package web

import (
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	submit "github.com/scott717/submit-service"
	"github.com/scott717/submit-service/sample"
)

// Main holds the configuration for the serve command.
type Main struct {
	Bind     string `help:"Address to bind the sampling API."`
	LogLevel string `help:"Log level: debug, info, warning, or error."`
}

// NewMain gets a new Main with the default configuration.
func NewMain() *Main {
	return &Main{
		Bind:     ":5000",
		LogLevel: "info",
	}
}

// Run starts the sampling API and blocks.
func (m *Main) Run() error {
	lg := logrus.New()
	level, err := logrus.ParseLevel(m.LogLevel)
	if err != nil {
		return errors.Wrapf(err, "parsing log level %q", m.LogLevel)
	}
	lg.SetLevel(level)
	log := submit.NewLogrusLogger(lg)

	s := sample.New()
	s.Log = log

	router := NewRouter(s, log)
	log.Printf("listening on %s", m.Bind)
	return errors.Wrap(
		http.ListenAndServe(m.Bind, handlers.CombinedLoggingHandler(os.Stdout, router)),
		"serving",
	)
}
