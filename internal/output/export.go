package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/segmentio/encoding/json"

	"github.com/moamenhredeen/reqcheck/internal/models"
)

// Format represents the output format type
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat validates a user-supplied format name
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatJSON, "":
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported format: %s (use json or csv)", s)
	}
}

// Sink persists a finished run and reports where it went
type Sink interface {
	Export(env models.ResultEnvelope) (string, error)
}

// WriteEnvelope writes env to filePath, or stdout when filePath is empty
func WriteEnvelope(env models.ResultEnvelope, format Format, filePath string) error {
	w, closer, err := getWriter(filePath)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}
	return encode(w, env, format)
}

func encode(w io.Writer, env models.ResultEnvelope, format Format) error {
	switch format {
	case FormatJSON:
		return exportJSON(w, env)
	case FormatCSV:
		return exportCSV(w, env)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// getWriter returns an io.Writer for output (stdout or file)
func getWriter(filePath string) (io.Writer, io.Closer, error) {
	if filePath == "" {
		return os.Stdout, nil, nil
	}

	f, err := os.Create(filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f, nil
}

// FileSink writes one timestamped file per run into Dir
type FileSink struct {
	Dir    string
	Format Format
	now    func() time.Time
}

// NewFileSink creates a sink writing into dir
func NewFileSink(dir string, format Format) *FileSink {
	return &FileSink{Dir: dir, Format: format, now: time.Now}
}

// Export writes env as <suite>_<YYYYmmdd_HHMMSS>.<format> and returns the path
func (s *FileSink) Export(env models.ResultEnvelope) (string, error) {
	now := s.now()
	if env.ExecuteTime == "" {
		env.ExecuteTime = now.Format(models.ExecuteTimeLayout)
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	base := fmt.Sprintf("%s_%s", SafeName(env.SuiteName), now.Format("20060102_150405"))
	ext := "." + string(s.Format)

	var f *os.File
	var path string
	for i := 0; ; i++ {
		name := base + ext
		if i > 0 {
			name = fmt.Sprintf("%s_%d%s", base, i, ext)
		}
		path = filepath.Join(s.Dir, name)
		var err error
		f, err = os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			break
		}
		if !os.IsExist(err) {
			return "", fmt.Errorf("failed to create output file: %w", err)
		}
	}

	if err := encode(f, env, s.Format); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write output file: %w", err)
	}
	return path, nil
}

// SafeName keeps letters, digits, '-' and '_' so the name is usable in a file name
func SafeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "suite"
	}
	return b.String()
}

// exportJSON exports the envelope as indented JSON
func exportJSON(w io.Writer, env models.ResultEnvelope) error {
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// exportCSV exports one row per case
func exportCSV(w io.Writer, env models.ResultEnvelope) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	// Write header
	header := []string{
		"case_id", "name", "method", "url", "result", "status_code",
		"elapsed_ms", "assertions_passed", "assertions_total", "error_type", "error",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	// Write rows
	for _, r := range env.Cases {
		passed := 0
		var failures []string
		for _, v := range r.AssertionResults {
			if v.Passed() {
				passed++
			} else {
				failures = append(failures, v.Message)
			}
		}
		errText := r.Response.ErrorMessage
		if errText == "" {
			errText = strings.Join(failures, "; ")
		}

		row := []string{
			r.CaseID,
			r.Name,
			r.Request.Method,
			r.Request.URL,
			string(r.Result),
			optionalInt(r.Response.StatusCode),
			optionalInt64(r.Response.ElapsedMS),
			strconv.Itoa(passed),
			strconv.Itoa(len(r.AssertionResults)),
			r.Response.ErrorType,
			errText,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func optionalInt64(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}
