package demo

import (
	"image/color"

	"github.com/bryanchriswhite/shotlayout/internal/view"
)

// ContextText is what the demo reports as share context
const ContextText = "nothing more."

// App is the demo host: one window whose content is a thirty row list
type App struct {
	pkg  string
	win  *view.Window
	list *List
}

// NewApp builds the demo window. touchSlop overrides the platform slop when > 0.
func NewApp(pkg string, width, height int, density float64, touchSlop int) (*App, error) {
	win := view.NewWindow(width, height, density)
	if touchSlop > 0 {
		win.SetTouchSlop(touchSlop)
	}
	win.Decor().Background = view.ColorDrawable{Color: color.RGBA{R: 0xFA, G: 0xFA, B: 0xFA, A: 0xFF}}

	list := NewList(Numbers(30), win.Density())
	list.OnInvalidate(win.Invalidate)
	if err := win.SetContent(list); err != nil {
		return nil, err
	}
	return &App{pkg: pkg, win: win, list: list}, nil
}

// Window returns the host window
func (a *App) Window() *view.Window {
	return a.win
}

// PackageName identifies the demo
func (a *App) PackageName() string {
	return a.pkg
}

// List returns the content list
func (a *App) List() *List {
	return a.list
}

// Context is the share context provider of the demo
func (a *App) Context() string {
	return ContextText
}
