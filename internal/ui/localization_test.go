package ui

import "testing"

func TestLocalizationFallback(t *testing.T) {
	l := NewLocalization()
	if got := l.GetText(KeyMenuCSV); got != "Download from CSV" {
		t.Errorf("unexpected english text %q", got)
	}

	l.SetLanguage("ru")
	if l.GetCurrentLanguage() != "ru" {
		t.Fatalf("expected ru, got %s", l.GetCurrentLanguage())
	}
	if got := l.GetText(KeyExit); got != "Выход" {
		t.Errorf("unexpected russian text %q", got)
	}

	l.SetLanguage("xx")
	if l.GetCurrentLanguage() != "ru" {
		t.Error("unknown language must be ignored")
	}
	if got := l.GetText("no_such_key"); got != "no_such_key" {
		t.Errorf("missing key should return itself, got %q", got)
	}
}

func TestLocalizationKeysComplete(t *testing.T) {
	l := NewLocalization()
	for lang := range l.GetAvailableLanguages() {
		if len(l.texts[lang]) != len(l.texts["en"]) {
			t.Errorf("%s has %d texts, english has %d", lang, len(l.texts[lang]), len(l.texts["en"]))
		}
	}
}
