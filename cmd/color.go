package cmd

import "github.com/fatih/color"

var (
	okLabel   = color.New(color.FgGreen, color.Bold).SprintFunc()
	failLabel = color.New(color.FgRed, color.Bold).SprintFunc()
	dimText   = color.New(color.Faint).SprintFunc()
)

func setColor(disabled bool) {
	if disabled {
		color.NoColor = true
	}
}
