package commands

import (
	"fmt"
	"io"
	"u3d/internal/scrapers/unity"

	"github.com/fatih/color"
)

var (
	successColor   = color.New(color.FgGreen)
	importantColor = color.New(color.FgYellow)
)

type colorNotifier struct {
	out io.Writer
}

func (n colorNotifier) Notice(kind unity.NoticeKind, message string) {
	switch kind {
	case unity.NoticeSuccess:
		successColor.Fprintln(n.out, message)
	case unity.NoticeImportant:
		importantColor.Fprintln(n.out, message)
	default:
		fmt.Fprintln(n.out, message)
	}
}
