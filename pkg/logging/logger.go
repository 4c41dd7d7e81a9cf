package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the process-wide logger. It writes to stderr until Init is called.
var Logger = logrus.New()

var once sync.Once

// LineFormatter renders one entry per line:
// 2006-01-02 15:04:05 INFO [api] message key=value (file:line)
type LineFormatter struct {
	SystemName string
}

func (f *LineFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b *bytes.Buffer
	if entry.Buffer != nil {
		b = entry.Buffer
	} else {
		b = &bytes.Buffer{}
	}

	b.WriteString(entry.Time.Format("2006-01-02 15:04:05"))
	b.WriteByte(' ')
	b.WriteString(strings.ToUpper(entry.Level.String()))

	source := f.SystemName
	if c, ok := entry.Data["component"]; ok {
		source = fmt.Sprint(c)
	}
	if source != "" {
		fmt.Fprintf(b, " [%s]", source)
	}
	b.WriteByte(' ')
	b.WriteString(entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		if k != "component" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, " %s=%v", k, entry.Data[k])
	}

	if entry.HasCaller() {
		fmt.Fprintf(b, " (%s:%d)", filepath.Base(entry.Caller.File), entry.Caller.Line)
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

// Options controls Init.
type Options struct {
	SystemName string
	Level      string
	// File enables a rotated log file next to Output when non-empty.
	File string
	// Output defaults to stdout.
	Output io.Writer
}

// Init configures Logger once. Later calls are no-ops.
func Init(opts Options) {
	once.Do(func() {
		var out io.Writer = os.Stdout
		if opts.Output != nil {
			out = opts.Output
		}
		if opts.File != "" {
			if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
				Logger.Warnf("cannot create log directory for %s: %v", opts.File, err)
			} else {
				out = io.MultiWriter(out, &lumberjack.Logger{
					Filename:   opts.File,
					MaxSize:    10, // megabytes
					MaxBackups: 3,
					MaxAge:     28, // days
					Compress:   true,
				})
			}
		}
		Logger.SetOutput(out)
		Logger.SetFormatter(&LineFormatter{SystemName: opts.SystemName})

		level, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			level = logrus.InfoLevel
		}
		Logger.SetLevel(level)
		Logger.SetReportCaller(level >= logrus.DebugLevel)
	})
}

// For returns an entry tagged with a component name.
func For(component string) *logrus.Entry {
	return Logger.WithField("component", component)
}
