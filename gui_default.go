//go:build !console

package main

import (
	"fmt"

	webview "github.com/webview/webview_go"
)

// runEmbeddedUI starts the web server and opens the widget in an embedded browser window
func runEmbeddedUI(ws *WebServer) error {
	url, cleanup, err := ws.StartForEmbedded()
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	defer cleanup()

	w := webview.New(false)
	defer w.Destroy()

	setDesktopIdentity(w.Window())
	w.SetTitle("Value over time")
	w.SetSize(1000, 720, webview.HintNone)
	w.Navigate(url)

	// Blocks until the window is closed
	w.Run()

	return nil
}
