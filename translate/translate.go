// Package translate formats diagnostics for the user's locale.
package translate

import (
	"log"

	"github.com/jeandeaual/go-locale"
	"golang.org/x/text/message"
)

const fallbackLocale = "en-US"

var printer *message.Printer

func init() {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("spu: locale: %v", err)
	}
	Use(locales...)
}

// Use selects the printer for the first supported locale of the list,
// falling back to en-US.
func Use(locales ...string) {
	if len(locales) == 0 {
		locales = []string{fallbackLocale}
	}
	printer = message.NewPrinter(message.MatchLanguage(locales...))
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return printer.Sprintf(key, args...)
}
