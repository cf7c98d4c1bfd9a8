// Package main provides the entry point for the NanoSizer application.
package main

import (
	"flag"
	"os"

	"fyne.io/fyne/v2/app"
	"github.com/sirupsen/logrus"

	"nanosizer/internal/pipeline"
	"nanosizer/internal/version"
	"nanosizer/ui/mainwindow"
	"nanosizer/ui/prefs"
)

func main() {
	verbose := flag.Bool("v", false, "Debug logging")
	flag.Parse()

	log := logrus.New()
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	log.WithFields(logrus.Fields{"version": version.Version, "commit": version.GitCommit}).
		Infof("Starting %s", version.AppName)

	fyneApp := app.NewWithID("io.nanosizer.app")
	appPrefs := prefs.Load()
	session := pipeline.NewSession(log)

	win := mainwindow.New(fyneApp, session, appPrefs)

	if flag.NArg() > 0 {
		win.OpenImage(flag.Arg(0))
	} else if last := appPrefs.String(prefs.KeyLastImage); last != "" {
		if _, err := os.Stat(last); err == nil {
			win.OpenImage(last)
		}
	}

	win.ShowAndRun()

	if err := appPrefs.Save(); err != nil {
		log.WithError(err).Warn("Failed to save preferences")
	}
}
