package commandhandler

import (
	"bytes"
	"strings"

	"github.com/ilyalavrinov/nordeste/pkg/dashboard"
)

var markdownToEscape = []string{"\\", "_", "*", "[", "]", "(", ")", "~", "`", ">", "#", "+", "-", "=", "|", "{", "}", ".", "!"}

// escapeMarkdown escapes MarkdownV2 special symbols of plain text
func escapeMarkdown(s string) string {
	for _, e := range markdownToEscape {
		s = strings.Replace(s, e, "\\"+e, -1)
	}
	return s
}

// escapePre escapes text placed inside a MarkdownV2 code block
func escapePre(s string) string {
	s = strings.Replace(s, "\\", "\\\\", -1)
	return strings.Replace(s, "`", "\\`", -1)
}

func dashboardMarkdown(s dashboard.Snapshot) string {
	var b bytes.Buffer
	if err := dashboard.Render(&b, s); err != nil {
		return escapeMarkdown(err.Error())
	}
	return "```\n" + escapePre(b.String()) + "```"
}
