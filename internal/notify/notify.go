// Package notify delivers cart notices to the user-facing side.
package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/nikolayk812/shopcart/internal/domain"
	"github.com/nikolayk812/shopcart/internal/port"
	"github.com/sirupsen/logrus"
)

type logNotifier struct {
	log logrus.FieldLogger
}

// NewLog reports notices as warnings on the given logger.
func NewLog(log logrus.FieldLogger) port.Notifier {
	return &logNotifier{log: log}
}

func (n *logNotifier) Notify(_ context.Context, notice domain.Notice) {
	n.log.WithField("notice", string(notice)).Warn(notice.Message())
}

type writerNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter prints one line per notice, e.g. to a terminal's stderr.
func NewWriter(w io.Writer) port.Notifier {
	return &writerNotifier{w: w}
}

func (n *writerNotifier) Notify(_ context.Context, notice domain.Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()

	_, _ = fmt.Fprintln(n.w, notice.Message())
}

type discard struct{}

func (discard) Notify(context.Context, domain.Notice) {}

// Discard drops every notice.
var Discard port.Notifier = discard{}
