package main

import (
	"errors"
	"os/exec"
	"runtime"
)

// browserCommands 各平台依次尝试的打开命令
var browserCommands = map[string][][]string{
	"windows": {
		{"rundll32", "url.dll,FileProtocolHandler"},
		{"explorer"},
	},
	"darwin": {
		{"open"},
	},
	"linux": {
		{"xdg-open"},
		{"sensible-browser"},
		{"google-chrome"},
		{"firefox"},
	},
}

// openBrowser 用系统默认浏览器打开 url，逐个尝试候选命令
func openBrowser(url string) error {
	candidates, ok := browserCommands[runtime.GOOS]
	if !ok {
		candidates = browserCommands["linux"]
	}

	var errs []error
	for _, argv := range candidates {
		args := append(append([]string(nil), argv[1:]...), url)
		if err := exec.Command(argv[0], args...).Start(); err != nil {
			errs = append(errs, err)
			continue
		}
		return nil
	}
	return errors.Join(errs...)
}
