// Package output renders command results as JSON, tab-separated plain text,
// or styled terminal output, and defines the CLI error/exit-code scheme.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/termenv"
)

// Formatter renders command results in one output mode.
type Formatter interface {
	Print(data any) error
	PrintList(items any, columns []Column) error
	PrintError(err error)
	PrintHint(msg string)
}

// Column describes one list column.
type Column struct {
	Name  string // header text
	Key   string // struct field name or map key
	Width int    // rich mode truncation, 0 = unbounded
}

// New returns the formatter for mode; unknown modes fall back to plain.
func New(mode string) Formatter {
	switch mode {
	case "json":
		return &jsonFormatter{}
	case "rich":
		return &richFormatter{profile: termenv.ColorProfile()}
	default:
		return &plainFormatter{}
	}
}

// NewJSON returns a JSON formatter. With resultsOnly, lists are emitted as a
// bare array instead of the {data, count} envelope.
func NewJSON(resultsOnly bool) Formatter {
	return &jsonFormatter{resultsOnly: resultsOnly}
}

// listRows flattens a slice of structs or maps into one string cell per
// column.
func listRows(items any, columns []Column) ([][]string, error) {
	v := reflect.ValueOf(items)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Slice {
		return nil, fmt.Errorf("PrintList requires a slice")
	}

	out := make([][]string, v.Len())
	for i := range out {
		item := v.Index(i)
		if item.Kind() == reflect.Ptr {
			item = item.Elem()
		}

		row := make([]string, len(columns))
		for j, col := range columns {
			row[j] = cell(item, col.Key)
		}
		out[i] = row
	}

	return out, nil
}

func cell(item reflect.Value, key string) string {
	var v reflect.Value
	switch item.Kind() {
	case reflect.Map:
		v = item.MapIndex(reflect.ValueOf(key))
	case reflect.Struct:
		v = item.FieldByName(key)
	}

	if !v.IsValid() {
		return ""
	}

	return fmt.Sprintf("%v", v.Interface())
}

// structFields lists a struct's field name/value pairs in declaration order.
// The second return is false for non-struct values.
func structFields(data any) ([][2]string, bool) {
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, false
	}

	t := v.Type()
	out := make([][2]string, t.NumField())
	for i := range out {
		out[i] = [2]string{t.Field(i).Name, fmt.Sprintf("%v", v.Field(i).Interface())}
	}

	return out, true
}

type jsonFormatter struct {
	resultsOnly bool
}

func (f *jsonFormatter) Print(data any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func (f *jsonFormatter) PrintList(items any, columns []Column) error {
	if f.resultsOnly {
		return f.Print(items)
	}

	count := 0
	if v := reflect.ValueOf(items); v.Kind() == reflect.Slice {
		count = v.Len()
	}

	return f.Print(map[string]any{"data": items, "count": count})
}

func (f *jsonFormatter) PrintError(err error) {
	enc := json.NewEncoder(os.Stderr)
	enc.SetIndent("", "  ")
	enc.Encode(map[string]string{"error": err.Error()})
}

func (f *jsonFormatter) PrintHint(msg string) {
	// Hints are prose for humans; JSON consumers get the error object only.
}

type plainFormatter struct{}

func (f *plainFormatter) Print(data any) error {
	fields, ok := structFields(data)
	if !ok {
		_, err := fmt.Fprintf(os.Stdout, "%v\n", data)
		return err
	}

	for _, kv := range fields {
		fmt.Fprintf(os.Stdout, "%s\t%s\n", kv[0], kv[1])
	}
	return nil
}

func (f *plainFormatter) PrintList(items any, columns []Column) error {
	rows, err := listRows(items, columns)
	if err != nil {
		return err
	}

	headers := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = col.Name
	}
	fmt.Fprintln(os.Stdout, strings.Join(headers, "\t"))

	for _, row := range rows {
		fmt.Fprintln(os.Stdout, strings.Join(row, "\t"))
	}
	return nil
}

func (f *plainFormatter) PrintError(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
}

func (f *plainFormatter) PrintHint(msg string) {
	fmt.Fprintf(os.Stderr, "hint: %v\n", msg)
}

var (
	keyStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	hintStyle  = lipgloss.NewStyle().Faint(true).Foreground(lipgloss.Color("8"))
)

type richFormatter struct {
	profile termenv.Profile
}

func (f *richFormatter) Print(data any) error {
	fields, ok := structFields(data)
	if !ok {
		_, err := fmt.Fprintf(os.Stdout, "%v\n", data)
		return err
	}

	for _, kv := range fields {
		fmt.Fprintf(os.Stdout, "%s: %s\n", keyStyle.Render(kv[0]), valueStyle.Render(kv[1]))
	}
	return nil
}

func (f *richFormatter) PrintList(items any, columns []Column) error {
	rows, err := listRows(items, columns)
	if err != nil {
		return err
	}

	RenderTable(os.Stdout, columns, rows)
	return nil
}

func (f *richFormatter) PrintError(err error) {
	fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
}

func (f *richFormatter) PrintHint(msg string) {
	fmt.Fprintln(os.Stderr, hintStyle.Render("hint: "+msg))
}
