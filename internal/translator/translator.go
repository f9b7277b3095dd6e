// Package translator translates single questionnaire cells. The question
// code leading a cell is kept out of the request, remapped for the target
// language and put back in front of the translated text. A cell that cannot
// be translated is handed back exactly as it was read.
package translator

import (
	"context"
	"errors"
	"strings"

	logging "github.com/ipfs/go-log/v2"

	"github.com/nconklindev/qtranslate/internal/lang"
	"github.com/nconklindev/qtranslate/internal/qcode"
)

var log = logging.Logger("translator")

// Service translates free text from one language to another.
type Service interface {
	Translate(ctx context.Context, text string, from, to lang.Code) (string, error)
}

// ServiceFunc adapts a function to the Service interface.
type ServiceFunc func(ctx context.Context, text string, from, to lang.Code) (string, error)

func (f ServiceFunc) Translate(ctx context.Context, text string, from, to lang.Code) (string, error) {
	return f(ctx, text, from, to)
}

// Passthrough returns every text unchanged. With it a run only remaps
// question codes, which is what --dry-run shows.
var Passthrough Service = ServiceFunc(func(_ context.Context, text string, _, _ lang.Code) (string, error) {
	return text, nil
})

// Status tells what happened to a cell.
type Status int

const (
	// StatusSkipped: the cell was empty and no call was made.
	StatusSkipped Status = iota
	// StatusTranslated: the service answered and Text holds the new value.
	StatusTranslated
	// StatusFailed: the call or its response failed and Text is the original.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSkipped:
		return "skipped"
	case StatusTranslated:
		return "translated"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Result is the outcome of translating one cell. Text is always the value to
// write back, whatever the status.
type Result struct {
	Status   Status
	Text     string
	Original string
	// Code is the question code as written into Text, after remapping.
	Code string
	Err  error
}

// OK reports whether the cell was translated.
func (r Result) OK() bool {
	return r.Status == StatusTranslated
}

// Translator runs cells through a Service.
type Translator struct {
	service Service
}

func New(service Service) *Translator {
	return &Translator{service: service}
}

// IsEmpty reports whether a cell has nothing to translate.
func IsEmpty(text string) bool {
	return strings.TrimSpace(text) == ""
}

// Translate translates one cell. Exactly one service call is made for a
// non-empty cell, none for an empty one.
func (t *Translator) Translate(ctx context.Context, text string, from, to lang.Code) Result {
	if IsEmpty(text) {
		return Result{Status: StatusSkipped, Text: text, Original: text}
	}

	code, remainder := qcode.Extract(text)
	code = qcode.RemapFamily(code, from, to)

	translated, err := t.service.Translate(ctx, remainder, from, to)
	if err != nil {
		if errors.Is(err, ErrMalformedResponse) {
			log.Warnw("unexpected translation response, keeping original text", "text", text, "from", from, "to", to, "error", err)
		} else {
			log.Warnw("translation failed, keeping original text", "text", text, "from", from, "to", to, "error", err)
		}
		return Result{Status: StatusFailed, Text: text, Original: text, Err: err}
	}

	return Result{Status: StatusTranslated, Text: code + translated, Original: text, Code: code}
}

// TranslateCell translates one cell and returns the value to write back: the
// translation when it succeeded, the untouched input otherwise.
func TranslateCell(ctx context.Context, text string, from, to lang.Code, service Service) string {
	return New(service).Translate(ctx, text, from, to).Text
}
