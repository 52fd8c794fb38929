// Package buildinfo хранит версию, дату и коммит сборки, переданные через -ldflags.
package buildinfo

import (
	"fmt"
	"io"
	"runtime/debug"

	"go.uber.org/zap"
)

const notAvailable = "N/A"

// Info содержит информацию о сборке приложения
type Info struct {
	Version string
	Date    string
	Commit  string
}

// New создает информацию о сборке. Пустые значения заменяются на N/A,
// а версия и коммит при возможности берутся из метаданных модуля.
func New(version, date, commit string) Info {
	info := Info{Version: version, Date: date, Commit: commit}

	if bi, ok := debug.ReadBuildInfo(); ok {
		if info.Version == "" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			info.Version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch {
			case s.Key == "vcs.revision" && info.Commit == "":
				info.Commit = s.Value
			case s.Key == "vcs.time" && info.Date == "":
				info.Date = s.Value
			}
		}
	}

	info.Version = orNA(info.Version)
	info.Date = orNA(info.Date)
	info.Commit = orNA(info.Commit)
	return info
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}

// Print выводит информацию о сборке в w
func (i Info) Print(w io.Writer) {
	fmt.Fprintf(w, "Build version: %s\nBuild date: %s\nBuild commit: %s\n", i.Version, i.Date, i.Commit)
}

// String возвращает строковое представление информации о сборке
func (i Info) String() string {
	return fmt.Sprintf("Version: %s, Date: %s, Commit: %s", i.Version, i.Date, i.Commit)
}

// Fields возвращает поля для логгера
func (i Info) Fields() []zap.Field {
	return []zap.Field{
		zap.String("version", i.Version),
		zap.String("build_date", i.Date),
		zap.String("commit", i.Commit),
	}
}
