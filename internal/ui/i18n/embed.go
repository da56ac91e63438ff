package i18n

import "embed"

// LocaleFS — встроенные каталоги переводов locales/<lang>.json.
//
//go:embed locales/*.json
var LocaleFS embed.FS
