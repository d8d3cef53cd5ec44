// Package errors turns arbitrary errors into low-cardinality class names for metric tags.
package errors

import (
	"context"
	goerrors "errors"
	"net"
	"reflect"
	"strings"
)

// Classed is implemented by errors that name their own class.
type Classed interface {
	ErrorClass() string
}

// Classify returns the class used for the error_class tag and failure notices.
//
// Precedence: context deadline/cancel, network timeouts, the outermost Classed error in
// the chain, then the innermost concrete type ("*json.SyntaxError" becomes "json_syntaxerror").
func Classify(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case goerrors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case goerrors.Is(err, context.Canceled):
		return "canceled"
	}
	var netErr net.Error
	if goerrors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}
	var classed Classed
	if goerrors.As(err, &classed) {
		if class := normalize(classed.ErrorClass()); class != "" {
			return class
		}
	}

	return typeClass(innermost(err))
}

func innermost(err error) error {
	for {
		next := goerrors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

func typeClass(err error) string {
	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "unknown"
	}
	if class := normalize(t.String()); class != "" {
		return class
	}
	return "unknown"
}

func normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer("*", "", ".", "_", " ", "_", "-", "_").Replace(name)
}
