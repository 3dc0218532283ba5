package tui

const (
	defaultWidth      = 80
	minWrapWidth      = 20
	minTextareaHeight = 1
	previewWidth      = 48
)
