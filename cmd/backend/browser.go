package main

import (
	"os/exec"
	"runtime"
	"time"

	"bigform/internal/logger"
)

// browserCommand returns the platform command that opens url in the
// default browser.
func browserCommand(goos, url string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	default:
		return "xdg-open", []string{url}
	}
}

// openBrowserAfter opens url once after delay. Failures are only logged.
func openBrowserAfter(delay time.Duration, url string, log logger.Logger) *time.Timer {
	return time.AfterFunc(delay, func() {
		name, args := browserCommand(runtime.GOOS, url)
		if err := exec.Command(name, args...).Start(); err != nil {
			log.Warn("open_browser_failed", map[string]interface{}{
				"url":   url,
				"error": err.Error(),
			})
			return
		}
		log.Info("browser_opened", map[string]interface{}{"url": url})
	})
}
