// Package missionlog implements the §4.12 mission-log aggregator: a ring
// buffer of records keyed by monotonic sequence, snapshot histograms over
// the snapshot window, and an end-of-run Markdown report renderer.
package missionlog

import (
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"

	"groundtrack/engine/models"
)

// ConvertHTML flattens a context value's light HTML markup (PAD remarks,
// checklist callouts authored with inline markup) into Markdown for the
// end-of-run report. Used as Report's default markdownConvert when the
// caller passes nil.
func ConvertHTML(html string) (string, error) {
	conv := converter.NewConverter(converter.WithPlugins(base.NewBasePlugin(), commonmark.NewCommonmarkPlugin()))
	md, err := conv.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("missionlog: html to markdown: %w", err)
	}
	return strings.TrimSpace(md), nil
}

// Record is one mission-log entry.
type Record struct {
	Sequence    int64             `json:"sequence"`
	At          models.GET        `json:"timestampSeconds"`
	Category    string            `json:"category"`
	Source      string            `json:"source"`
	Severity    models.AlertLevel `json:"severity"`
	Message     string            `json:"message"`
	Context     map[string]string `json:"context,omitempty"`
}

// Log is a fixed-capacity ring buffer of Records.
type Log struct {
	capacity int
	buf      []Record
	next     int
	filled   bool
	seq      int64
}

func New(capacity int) *Log {
	if capacity <= 0 {
		capacity = 1000
	}
	return &Log{capacity: capacity, buf: make([]Record, capacity)}
}

// Append records one entry, assigning it the next monotonic sequence
// number, and evicts the oldest entry once the ring is full.
func (l *Log) Append(now models.GET, category, source string, severity models.AlertLevel, message string, context map[string]string) Record {
	r := Record{Sequence: l.seq, At: now, Category: category, Source: source, Severity: severity, Message: message, Context: context}
	l.seq++
	l.buf[l.next] = r
	l.next = (l.next + 1) % l.capacity
	if l.next == 0 {
		l.filled = true
	}
	return r
}

// ordered returns every retained record, oldest first.
func (l *Log) ordered() []Record {
	if !l.filled {
		return append([]Record(nil), l.buf[:l.next]...)
	}
	out := make([]Record, 0, l.capacity)
	out = append(out, l.buf[l.next:]...)
	out = append(out, l.buf[:l.next]...)
	return out
}

// Histogram is a count-by-label projection, used for both category and
// severity histograms.
type Histogram map[string]int

// Snapshot returns the most recent limit records (0 means every retained
// record) plus category/severity histograms computed over that window.
func (l *Log) Snapshot(limit int) (records []Record, byCategory, bySeverity Histogram) {
	all := l.ordered()
	if limit > 0 && limit < len(all) {
		all = all[len(all)-limit:]
	}
	byCategory = make(Histogram)
	bySeverity = make(Histogram)
	for _, r := range all {
		byCategory[r.Category]++
		bySeverity[string(r.Severity)]++
	}
	return all, byCategory, bySeverity
}

// Report renders an end-of-run Markdown summary of the log's full
// contents. markdownConvert lets callers pass context values that carry
// light HTML markup (PAD remarks, checklist callouts) through an HTML to
// Markdown converter before they are embedded; nil selects ConvertHTML.
func (l *Log) Report(title string, markdownConvert func(html string) (string, error)) (string, error) {
	if markdownConvert == nil {
		markdownConvert = ConvertHTML
	}
	var sb strings.Builder
	sb.WriteString("# " + title + "\n\n")
	sb.WriteString("| Seq | GET | Category | Severity | Source | Message |\n")
	sb.WriteString("|---|---|---|---|---|---|\n")
	for _, r := range l.ordered() {
		msg := r.Message
		if markdownConvert != nil && strings.ContainsAny(msg, "<>") {
			converted, err := markdownConvert(msg)
			if err != nil {
				return "", fmt.Errorf("missionlog: converting record %d message: %w", r.Sequence, err)
			}
			msg = converted
		}
		sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s | %s |\n",
			r.Sequence, r.At, r.Category, r.Severity, r.Source, escapeCell(msg)))
	}
	return sb.String(), nil
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
