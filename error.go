package amw

import (
	"fmt"
	"strings"

	"github.com/petbrain/amw/amwparser"
)

// ParseErrors aggregates the parse errors of a document set.
type ParseErrors struct {
	Errors []amwparser.Error
}

func (e ParseErrors) Error() string {
	var msg strings.Builder
	msg.WriteString("amw syntax error:\n\n")
	for _, err := range e.Errors {
		msg.WriteString(fmt.Sprintf("%s:%d:%d: %s\n", err.Pos.File, err.Pos.Line, err.Pos.Col, err.Message))
	}
	return msg.String()
}
