// Package voice holds the table of voices the synthesizer ships lingware for
// and resolves user supplied voice identifiers against it.
package voice

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
)

// ErrVoiceNotFound is returned when an identifier matches no catalog entry.
var ErrVoiceNotFound = errors.New("unsupported voice")

// DefaultName is the voice used when none is requested.
const DefaultName = "en-GB"

// Entry describes one supported voice and the lingware files it needs.
type Entry struct {
	// Name is the display name and the engine's internal voice name.
	Name        string
	LangISO3    string
	CountryISO3 string
	TAFile      string // text analysis resource
	SGFile      string // signal generation resource
	UTPPFile    string // user text pre-processing resource, unused by the engine
}

// ResourceNames returns the text analysis and signal generation file names.
func (e Entry) ResourceNames() (ta, sg string) {
	return e.TAFile, e.SGFile
}

func (e Entry) matches(id string) bool {
	return id == e.Name || id == e.LangISO3 || id == e.CountryISO3
}

var catalog = []Entry{
	{Name: "en-US", LangISO3: "eng", CountryISO3: "USA", TAFile: "en-US_ta.bin", SGFile: "en-US_lh0_sg.bin", UTPPFile: "en-US_utpp.bin"},
	{Name: "en-GB", LangISO3: "eng", CountryISO3: "GBR", TAFile: "en-GB_ta.bin", SGFile: "en-GB_kh0_sg.bin", UTPPFile: "en-GB_utpp.bin"},
	{Name: "de-DE", LangISO3: "deu", CountryISO3: "DEU", TAFile: "de-DE_ta.bin", SGFile: "de-DE_gl0_sg.bin", UTPPFile: "de-DE_utpp.bin"},
	{Name: "es-ES", LangISO3: "spa", CountryISO3: "ESP", TAFile: "es-ES_ta.bin", SGFile: "es-ES_zl0_sg.bin", UTPPFile: "es-ES_utpp.bin"},
	{Name: "fr-FR", LangISO3: "fra", CountryISO3: "FRA", TAFile: "fr-FR_ta.bin", SGFile: "fr-FR_nk0_sg.bin", UTPPFile: "fr-FR_utpp.bin"},
	{Name: "it-IT", LangISO3: "ita", CountryISO3: "ITA", TAFile: "it-IT_ta.bin", SGFile: "it-IT_cm0_sg.bin", UTPPFile: "it-IT_utpp.bin"},
}

// All returns a copy of the catalog in table order.
func All() []Entry {
	out := make([]Entry, len(catalog))
	copy(out, catalog)
	return out
}

// Default returns the default voice entry.
func Default() Entry {
	e, _ := Resolve(DefaultName)
	return e
}

// Resolve finds the first entry, in table order, whose display name,
// language code or country code equals id. Matching is exact, so "eng"
// selects en-US and "GBR" selects en-GB.
func Resolve(id string) (Entry, error) {
	for _, e := range catalog {
		if e.matches(id) {
			return e, nil
		}
	}
	if s := Suggest(id); len(s) > 0 {
		return Entry{}, fmt.Errorf("%w %q (did you mean %s?)", ErrVoiceNotFound, id, strings.Join(s, ", "))
	}
	return Entry{}, fmt.Errorf("%w %q", ErrVoiceNotFound, id)
}

// Suggest returns display names that fuzzily match id, best match first.
func Suggest(id string) []string {
	if id == "" {
		return nil
	}

	var names []string
	for _, e := range catalog {
		names = append(names, e.Name)
	}

	var out []string
	for _, m := range fuzzy.Find(id, names) {
		out = append(out, m.Str)
	}
	if len(out) > 0 {
		return out
	}

	// case mismatch is the common mistake ("en-gb", "usa")
	for _, e := range catalog {
		if strings.EqualFold(id, e.Name) || strings.EqualFold(id, e.LangISO3) || strings.EqualFold(id, e.CountryISO3) {
			out = append(out, e.Name)
		}
	}
	return out
}
