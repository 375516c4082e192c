package table

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"

	"tasktracker/storage"
)

// ColumnSeparator joins adjacent columns.
const ColumnSeparator = " | "

// separatorOverhead is added to the summed column widths for the dashed rule
// under the header.
const separatorOverhead = 10

// titleMargin is subtracted from the title and description widths before the
// text is clamped, leaving room for the ellipsis ahead of final padding.
const titleMargin = 2

// Columns holds the width of each column, in display order.
type Columns struct {
	ID          int `yaml:"id"`
	Title       int `yaml:"title"`
	Priority    int `yaml:"priority"`
	DueDate     int `yaml:"due_date"`
	Status      int `yaml:"status"`
	Description int `yaml:"description"`
}

// DefaultColumns are the standard column widths.
var DefaultColumns = Columns{ID: 4, Title: 15, Priority: 8, DueDate: 12, Status: 15, Description: 30}

// Total returns the summed widths.
func (c Columns) Total() int {
	return c.ID + c.Title + c.Priority + c.DueDate + c.Status + c.Description
}

// Validate reports a non-positive width.
func (c Columns) Validate() error {
	for name, w := range map[string]int{
		"id": c.ID, "title": c.Title, "priority": c.Priority,
		"due_date": c.DueDate, "status": c.Status, "description": c.Description,
	} {
		if w <= 0 {
			return fmt.Errorf("column %s: width must be positive, got %d", name, w)
		}
	}
	return nil
}

// Labels are the header texts, in display order.
type Labels struct {
	ID, Title, Priority, DueDate, Status, Description string
}

var (
	EnglishLabels = Labels{"ID", "Title", "Priority", "Due Date", "Status", "Description"}
	ChineseLabels = Labels{"ID", "标题", "优先级", "截止日期", "状态", "描述"}
)

// LabelsFor picks header labels for a locale. Chinese locales get Chinese
// labels; everything else gets English.
func LabelsFor(tag language.Tag) Labels {
	if base, _ := tag.Base(); base.String() == "zh" {
		return ChineseLabels
	}
	return EnglishLabels
}

// Formatter renders the task table.
type Formatter struct {
	cols        Columns
	labels      Labels
	metric      Metric
	headerStyle *lipgloss.Style
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithColumns overrides the column widths.
func WithColumns(c Columns) Option {
	return func(f *Formatter) { f.cols = c }
}

// WithLabels overrides the header labels.
func WithLabels(l Labels) Option {
	return func(f *Formatter) { f.labels = l }
}

// WithMetric selects how display width is measured.
func WithMetric(m Metric) Option {
	return func(f *Formatter) { f.metric = m }
}

// WithHeaderStyle renders the header line through style after it is padded.
func WithHeaderStyle(style lipgloss.Style) Option {
	return func(f *Formatter) { f.headerStyle = &style }
}

// New creates a Formatter with the default columns, English labels and the
// LeadByte metric.
func New(opts ...Option) *Formatter {
	f := &Formatter{
		cols:   DefaultColumns,
		labels: EnglishLabels,
		metric: LeadByte,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Columns returns the configured widths.
func (f *Formatter) Columns() Columns { return f.cols }

// Header returns the padded column labels.
func (f *Formatter) Header() string {
	m, c, l := f.metric, f.cols, f.labels
	line := strings.Join([]string{
		m.Pad(l.ID, c.ID),
		m.Pad(l.Title, c.Title),
		m.Pad(l.Priority, c.Priority),
		m.Pad(l.DueDate, c.DueDate),
		m.Pad(l.Status, c.Status),
		m.Pad(l.Description, c.Description),
	}, ColumnSeparator)
	if f.headerStyle != nil {
		return f.headerStyle.Render(line)
	}
	return line
}

// Separator returns the dashed rule printed under the header.
func (f *Formatter) Separator() string {
	return strings.Repeat("-", f.cols.Total()+separatorOverhead)
}

// Row renders one task.
func (f *Formatter) Row(t *storage.Task) string {
	m, c := f.metric, f.cols
	return strings.Join([]string{
		m.Pad(strconv.Itoa(t.ID), c.ID),
		m.Pad(m.Clamp(t.Title, c.Title-titleMargin), c.Title),
		m.Pad(strconv.Itoa(t.Priority), c.Priority),
		m.Pad(t.DueDate, c.DueDate),
		m.Pad(string(t.Status), c.Status),
		m.Pad(m.Clamp(t.Description, c.Description-titleMargin), c.Description),
	}, ColumnSeparator)
}

// WriteHeader writes the header and separator lines.
func (f *Formatter) WriteHeader(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%s\n%s\n", f.Header(), f.Separator())
	return err
}

// WriteTable writes the header followed by one row per task, in the given order.
func (f *Formatter) WriteTable(w io.Writer, tasks []*storage.Task) error {
	if err := f.WriteHeader(w); err != nil {
		return err
	}
	for _, t := range tasks {
		if _, err := fmt.Fprintln(w, f.Row(t)); err != nil {
			return err
		}
	}
	return nil
}
