package cli

import "fmt"

// ANSI escape codes shared by every command's terminal output
const (
	Reset = "\033[0m"

	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"

	Bold = "\033[1m"
	Dim  = "\033[2m"
)

var (
	headerStyle  = Cyan + Bold
	titleStyle   = Magenta + Bold
	successStyle = Green + Bold
	errorStyle   = Red + Bold
	infoStyle    = Blue + Bold
	labelStyle   = Cyan
	valueStyle   = White + Bold
	countStyle   = Yellow + Bold
)

func FormatHeader(text string) string  { return headerStyle + text + Reset }
func FormatTitle(text string) string   { return titleStyle + text + Reset }
func FormatSuccess(text string) string { return successStyle + text + Reset }
func FormatError(text string) string   { return errorStyle + text + Reset }
func FormatInfo(text string) string    { return infoStyle + text + Reset }
func FormatValue(text string) string   { return valueStyle + text + Reset }
func FormatDim(text string) string     { return Dim + text + Reset }

func FormatCount(count int) string {
	return countStyle + fmt.Sprintf("%d", count) + Reset
}

// FormatLabelValue renders a "Label: value" pair with both parts styled
func FormatLabelValue(label, value string) string {
	return labelStyle + label + Reset + " " + valueStyle + value + Reset
}
