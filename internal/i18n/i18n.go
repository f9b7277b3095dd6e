// Package i18n translates qtranslate's own user-facing strings.
//
// It wraps gotext with T() and N() helpers. Catalogs are embedded from
// locales/{lang}/LC_MESSAGES/qtranslate.po; English is the source language
// and needs no catalog.
package i18n

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"github.com/leonelquinteros/gotext"
)

//go:embed all:locales
var locales embed.FS

const domain = "qtranslate"

var po *gotext.Locale

// Init loads the catalog for lang. An empty lang is detected from
// LANGUAGE, LC_ALL, LC_MESSAGES and LANG, in that order.
func Init(lang string) {
	if lang == "" {
		lang = detectLanguage()
	}

	po = gotext.NewLocaleFSWithPath(lang, locales, "locales")
	po.AddDomain(domain)
	po.SetDomain(domain)
}

// T translates msgid, or returns it unchanged when no translation exists.
func T(msgid string, vars ...interface{}) string {
	if po == nil {
		if len(vars) > 0 {
			return fmt.Sprintf(msgid, vars...)
		}
		return msgid
	}
	return po.Get(msgid, vars...)
}

// N translates a string with plural forms.
func N(singular, plural string, n int, vars ...interface{}) string {
	if po == nil {
		msg := plural
		if n == 1 {
			msg = singular
		}
		if len(vars) > 0 {
			return fmt.Sprintf(msg, vars...)
		}
		return msg
	}
	return po.GetN(singular, plural, n, vars...)
}

func detectLanguage() string {
	for _, env := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		if val := os.Getenv(env); val != "" {
			if env == "LANGUAGE" {
				parts := strings.SplitN(val, ":", 2)
				val = parts[0]
			}
			// "sq_AL.UTF-8" -> "sq_AL"
			if idx := strings.IndexByte(val, '.'); idx >= 0 {
				val = val[:idx]
			}
			if val == "C" || val == "POSIX" || val == "" {
				continue
			}
			return val
		}
	}
	return "en"
}
