// Package locale renders dates and times in the short, human-readable form
// customary for a language and region, using the CLDR data of
// github.com/go-playground/locales.
package locale

import (
	"os"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/ar_SA"
	"github.com/go-playground/locales/cs_CZ"
	"github.com/go-playground/locales/da_DK"
	"github.com/go-playground/locales/de_AT"
	"github.com/go-playground/locales/de_CH"
	"github.com/go-playground/locales/de_DE"
	"github.com/go-playground/locales/el_GR"
	"github.com/go-playground/locales/en_AU"
	"github.com/go-playground/locales/en_CA"
	"github.com/go-playground/locales/en_GB"
	"github.com/go-playground/locales/en_IN"
	"github.com/go-playground/locales/en_US"
	"github.com/go-playground/locales/es_ES"
	"github.com/go-playground/locales/es_MX"
	"github.com/go-playground/locales/fi_FI"
	"github.com/go-playground/locales/fr_BE"
	"github.com/go-playground/locales/fr_CA"
	"github.com/go-playground/locales/fr_FR"
	"github.com/go-playground/locales/he_IL"
	"github.com/go-playground/locales/hi_IN"
	"github.com/go-playground/locales/hu_HU"
	"github.com/go-playground/locales/id_ID"
	"github.com/go-playground/locales/it_IT"
	"github.com/go-playground/locales/ja_JP"
	"github.com/go-playground/locales/ko_KR"
	"github.com/go-playground/locales/nb_NO"
	"github.com/go-playground/locales/nl_BE"
	"github.com/go-playground/locales/nl_NL"
	"github.com/go-playground/locales/pl_PL"
	"github.com/go-playground/locales/pt_BR"
	"github.com/go-playground/locales/pt_PT"
	"github.com/go-playground/locales/ro_RO"
	"github.com/go-playground/locales/ru_RU"
	"github.com/go-playground/locales/sv_SE"
	"github.com/go-playground/locales/th_TH"
	"github.com/go-playground/locales/tr_TR"
	"github.com/go-playground/locales/uk_UA"
	"github.com/go-playground/locales/vi_VN"
	"github.com/go-playground/locales/zh_Hans_CN"
	"github.com/go-playground/locales/zh_Hant_HK"
	"github.com/go-playground/locales/zh_Hant_TW"
	"golang.org/x/text/language"
)

// Style selects how temporal values are rendered.
type Style string

const (
	// StyleLocale uses the locale's short date and time patterns.
	StyleLocale Style = "locale"
	// StyleISO uses ISO 8601 dates and times.
	StyleISO Style = "iso"
)

var translators = map[string]func() locales.Translator{
	"ar-SA":      ar_SA.New,
	"cs-CZ":      cs_CZ.New,
	"da-DK":      da_DK.New,
	"de-AT":      de_AT.New,
	"de-CH":      de_CH.New,
	"de-DE":      de_DE.New,
	"el-GR":      el_GR.New,
	"en-AU":      en_AU.New,
	"en-CA":      en_CA.New,
	"en-GB":      en_GB.New,
	"en-IN":      en_IN.New,
	"en-US":      en_US.New,
	"es-ES":      es_ES.New,
	"es-MX":      es_MX.New,
	"fi-FI":      fi_FI.New,
	"fr-BE":      fr_BE.New,
	"fr-CA":      fr_CA.New,
	"fr-FR":      fr_FR.New,
	"he-IL":      he_IL.New,
	"hi-IN":      hi_IN.New,
	"hu-HU":      hu_HU.New,
	"id-ID":      id_ID.New,
	"it-IT":      it_IT.New,
	"ja-JP":      ja_JP.New,
	"ko-KR":      ko_KR.New,
	"nb-NO":      nb_NO.New,
	"nl-BE":      nl_BE.New,
	"nl-NL":      nl_NL.New,
	"pl-PL":      pl_PL.New,
	"pt-BR":      pt_BR.New,
	"pt-PT":      pt_PT.New,
	"ro-RO":      ro_RO.New,
	"ru-RU":      ru_RU.New,
	"sv-SE":      sv_SE.New,
	"th-TH":      th_TH.New,
	"tr-TR":      tr_TR.New,
	"uk-UA":      uk_UA.New,
	"vi-VN":      vi_VN.New,
	"zh-Hans-CN": zh_Hans_CN.New,
	"zh-Hant-HK": zh_Hant_HK.New,
	"zh-Hant-TW": zh_Hant_TW.New,
}

const fallback = "en-US"

var (
	supported    []language.Tag
	constructors []func() locales.Translator
	matcher      language.Matcher
)

func init() {
	// The first supported tag is the fallback for unmatched locales.
	names := make([]string, 0, len(translators))
	for name := range translators {
		if name != fallback {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range append([]string{fallback}, names...) {
		supported = append(supported, language.MustParse(name))
		constructors = append(constructors, translators[name])
	}
	matcher = language.NewMatcher(supported)
}

// Formatter renders dates and times for one locale.
type Formatter struct {
	tag        language.Tag
	translator locales.Translator
	style      Style
}

// New returns a Formatter for the given locale name ("de_DE.UTF-8",
// "en-GB", ...) and style. An empty name uses the environment locale.
func New(name string, style Style) *Formatter {
	if name == "" {
		name = FromEnv()
	}
	index := match(name)
	return &Formatter{
		tag:        supported[index],
		translator: constructors[index](),
		style:      style,
	}
}

// ISO returns a Formatter that writes ISO 8601 dates and times.
func ISO() *Formatter {
	return New(fallback, StyleISO)
}

// Tag returns the matched locale.
func (f *Formatter) Tag() language.Tag {
	return f.tag
}

// FormatDate renders the date part of t.
func (f *Formatter) FormatDate(t time.Time) string {
	if f.style == StyleISO {
		return t.Format(time.DateOnly)
	}
	return f.translator.FmtDateShort(t)
}

// FormatTime renders the time of day of t.
func (f *Formatter) FormatTime(t time.Time) string {
	if f.style == StyleISO {
		return t.Format(time.TimeOnly)
	}
	return f.translator.FmtTimeShort(t)
}

// FormatDateTime renders t as a short date followed by a short time.
func (f *Formatter) FormatDateTime(t time.Time) string {
	if f.style == StyleISO {
		return t.Format(time.RFC3339Nano)
	}
	return f.translator.FmtDateShort(t) + " " + f.translator.FmtTimeShort(t)
}

// Match returns the supported locale closest to name.
func Match(name string) language.Tag {
	return supported[match(name)]
}

func match(name string) int {
	tag, err := language.Parse(normalize(name))
	if err != nil {
		return 0
	}
	_, index, confidence := matcher.Match(tag)
	if confidence == language.No {
		return 0
	}
	return index
}

// FromEnv returns the locale configured through LC_ALL, LC_TIME or LANG.
func FromEnv() string {
	for _, key := range []string{"LC_ALL", "LC_TIME", "LANG"} {
		if v := os.Getenv(key); v != "" && v != "C" && v != "POSIX" {
			return v
		}
	}
	return fallback
}

// normalize turns POSIX locale names such as "de_DE.UTF-8@euro" into BCP 47.
func normalize(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.IndexAny(name, ".@"); i >= 0 {
		name = name[:i]
	}
	return strings.ReplaceAll(name, "_", "-")
}
