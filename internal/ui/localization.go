package ui

// Localization manages UI text translations
type Localization struct {
	currentLanguage string
	texts           map[string]map[string]string
}

// Text keys for localization
const (
	KeyAppTitle        = "app_title"
	KeyMenuCSV         = "menu_csv"
	KeyMenuURL         = "menu_url"
	KeyMenuText        = "menu_text"
	KeySettings        = "settings"
	KeyExit            = "exit"
	KeyCSVPath         = "csv_path"
	KeyTextPath        = "text_path"
	KeyEnterURL        = "enter_url"
	KeyReady           = "ready"
	KeyScanning        = "scanning"
	KeyLoaded          = "loaded"
	KeyLinesValid      = "lines_valid"
	KeyNoTracks        = "no_tracks"
	KeyRunning         = "running"
	KeyStopping        = "stopping"
	KeyFinished        = "finished"
	KeyExported        = "exported"
	KeyDryRun          = "dry_run"
	KeyStopFirst       = "stop_first"
	KeyPleaseEnterPath = "please_enter_path"
	KeyInvalidURL      = "invalid_url"
	KeyDetected        = "detected"
	KeySingleColumn    = "single_column"
	KeySettingsSaved   = "settings_saved"
	KeySettingsReset   = "settings_reset"
	KeyFilter          = "filter"
	KeyLog             = "log"
	KeyErrorOpeningDir = "error_opening_dir"
)

// NewLocalization creates a new localization manager
func NewLocalization() *Localization {
	l := &Localization{
		currentLanguage: "en",
		texts:           make(map[string]map[string]string),
	}

	l.initializeTexts()
	return l
}

// SetLanguage sets the current language
func (l *Localization) SetLanguage(lang string) {
	if lang == "system" {
		lang = "en"
	}

	if _, exists := l.texts[lang]; exists {
		l.currentLanguage = lang
	}
}

// GetText returns localized text for the given key
func (l *Localization) GetText(key string) string {
	if texts, exists := l.texts[l.currentLanguage]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Fallback to English
	if texts, exists := l.texts["en"]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Final fallback - return key itself
	return key
}

// GetCurrentLanguage returns the current language code
func (l *Localization) GetCurrentLanguage() string {
	return l.currentLanguage
}

// GetAvailableLanguages returns map of available languages with their display names
func (l *Localization) GetAvailableLanguages() map[string]string {
	return map[string]string{
		"en": "English",
		"ru": "Русский",
		"pt": "Português",
	}
}

// initializeTexts initializes all text translations
func (l *Localization) initializeTexts() {
	// English texts
	l.texts["en"] = map[string]string{
		KeyAppTitle:        "MusicDL",
		KeyMenuCSV:         "Download from CSV",
		KeyMenuURL:         "Download from URL",
		KeyMenuText:        "Download from text file",
		KeySettings:        "Settings",
		KeyExit:            "Exit",
		KeyCSVPath:         "CSV file path",
		KeyTextPath:        "Text file path",
		KeyEnterURL:        "YouTube video or playlist URL",
		KeyReady:           "Ready",
		KeyScanning:        "Scanning...",
		KeyLoaded:          "Loaded %d tracks",
		KeyLinesValid:      "%d of %d lines valid",
		KeyNoTracks:        "Nothing to download, scan first",
		KeyRunning:         "Running %d/%d",
		KeyStopping:        "Stopping after current tracks...",
		KeyFinished:        "Finished: %s",
		KeyExported:        "Results exported to %s",
		KeyDryRun:          "Dry run",
		KeyStopFirst:       "Stop the running batch first",
		KeyPleaseEnterPath: "Please enter a path or URL",
		KeyInvalidURL:      "Invalid YouTube URL",
		KeyDetected:        "Columns: artist=%s track=%s album=%s",
		KeySingleColumn:    "Single column: %s",
		KeySettingsSaved:   "Settings saved",
		KeySettingsReset:   "Defaults restored, ctrl+s to save",
		KeyFilter:          "Filter",
		KeyLog:             "Log",
		KeyErrorOpeningDir: "Error opening folder",
	}

	// Russian texts
	l.texts["ru"] = map[string]string{
		KeyAppTitle:        "MusicDL",
		KeyMenuCSV:         "Скачать из CSV",
		KeyMenuURL:         "Скачать по ссылке",
		KeyMenuText:        "Скачать из текстового файла",
		KeySettings:        "Настройки",
		KeyExit:            "Выход",
		KeyCSVPath:         "Путь к CSV файлу",
		KeyTextPath:        "Путь к текстовому файлу",
		KeyEnterURL:        "Ссылка на видео или плейлист YouTube",
		KeyReady:           "Готово",
		KeyScanning:        "Сканирование...",
		KeyLoaded:          "Загружено треков: %d",
		KeyLinesValid:      "корректных строк: %d из %d",
		KeyNoTracks:        "Нечего скачивать, сначала выполните сканирование",
		KeyRunning:         "Выполняется %d/%d",
		KeyStopping:        "Остановка после текущих треков...",
		KeyFinished:        "Завершено: %s",
		KeyExported:        "Результаты сохранены в %s",
		KeyDryRun:          "Пробный запуск",
		KeyStopFirst:       "Сначала остановите загрузку",
		KeyPleaseEnterPath: "Пожалуйста, введите путь или ссылку",
		KeyInvalidURL:      "Неверная ссылка YouTube",
		KeyDetected:        "Колонки: артист=%s трек=%s альбом=%s",
		KeySingleColumn:    "Одна колонка: %s",
		KeySettingsSaved:   "Настройки сохранены",
		KeySettingsReset:   "Восстановлены значения по умолчанию, ctrl+s для сохранения",
		KeyFilter:          "Фильтр",
		KeyLog:             "Журнал",
		KeyErrorOpeningDir: "Ошибка открытия папки",
	}

	// Portuguese texts
	l.texts["pt"] = map[string]string{
		KeyAppTitle:        "MusicDL",
		KeyMenuCSV:         "Baixar de CSV",
		KeyMenuURL:         "Baixar de URL",
		KeyMenuText:        "Baixar de arquivo de texto",
		KeySettings:        "Configurações",
		KeyExit:            "Sair",
		KeyCSVPath:         "Caminho do arquivo CSV",
		KeyTextPath:        "Caminho do arquivo de texto",
		KeyEnterURL:        "URL de vídeo ou playlist do YouTube",
		KeyReady:           "Pronto",
		KeyScanning:        "Analisando...",
		KeyLoaded:          "%d faixas carregadas",
		KeyLinesValid:      "%d de %d linhas válidas",
		KeyNoTracks:        "Nada para baixar, analise primeiro",
		KeyRunning:         "Executando %d/%d",
		KeyStopping:        "Parando após as faixas atuais...",
		KeyFinished:        "Concluído: %s",
		KeyExported:        "Resultados exportados para %s",
		KeyDryRun:          "Simulação",
		KeyStopFirst:       "Pare o lote em execução primeiro",
		KeyPleaseEnterPath: "Por favor, digite um caminho ou URL",
		KeyInvalidURL:      "URL do YouTube inválida",
		KeyDetected:        "Colunas: artista=%s faixa=%s álbum=%s",
		KeySingleColumn:    "Coluna única: %s",
		KeySettingsSaved:   "Configurações salvas",
		KeySettingsReset:   "Padrões restaurados, ctrl+s para salvar",
		KeyFilter:          "Filtro",
		KeyLog:             "Registro",
		KeyErrorOpeningDir: "Erro ao abrir pasta",
	}
}
