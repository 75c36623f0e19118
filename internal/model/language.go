package model

// Language is a highlighting tag. It is used for display only and is never
// checked against the code it labels.
type Language string

const (
	JavaScript Language = "javascript"
	TypeScript Language = "typescript"
	Python     Language = "python"
	Java       Language = "java"
	HTML       Language = "xml"
	CSS        Language = "css"
	JSON       Language = "json"
	SQL        Language = "sql"
	Bash       Language = "bash"
	Markdown   Language = "markdown"
	PlainText  Language = "plaintext"
)

var supportedLanguages = []Language{
	JavaScript, TypeScript, Python, Java, HTML, CSS, JSON, SQL, Bash, Markdown, PlainText,
}

// SupportedLanguages returns the fixed language set in display order.
func SupportedLanguages() []Language {
	out := make([]Language, len(supportedLanguages))
	copy(out, supportedLanguages)
	return out
}

func IsSupportedLanguage(tag string) bool {
	for _, l := range supportedLanguages {
		if string(l) == tag {
			return true
		}
	}
	return false
}

// Extension is the download file extension for the tag. Only javascript is
// shortened; every other tag is used as-is, so existing downloads keep their names.
func (l Language) Extension() string {
	if l == JavaScript {
		return "js"
	}
	return string(l)
}

func (l Language) String() string { return string(l) }
