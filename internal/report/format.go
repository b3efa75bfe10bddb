// Package report renders a meeting summary for people: plain text and Word.
package report

import (
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/meeting-notes/internal/summarizer"
)

var rule = strings.Repeat("=", 80)

type section struct {
	title string
	text  string
	items []string
	empty string
	list  bool
}

func sections(s *summarizer.Summary) []section {
	return []section{
		{title: "OVERALL SUMMARY", text: s.OverallSummary},
		{title: "KEY DECISIONS", items: s.KeyDecisions, list: true, empty: "No key decisions identified."},
		{title: "SUMMARY BY TOPICS", text: s.SummaryByTopics},
		{title: "ACTION ITEMS", items: s.ActionItems, list: true, empty: "No action items identified."},
		{title: "OPEN POINTS", items: s.OpenPoints, list: true, empty: "No open points identified."},
	}
}

// Format lays the summary out as banner-separated plain text.
func Format(s *summarizer.Summary) string {
	var lines []string
	for _, sec := range sections(s) {
		lines = append(lines, rule, sec.title, rule)
		switch {
		case !sec.list:
			lines = append(lines, sec.text)
		case len(sec.items) == 0:
			lines = append(lines, sec.empty)
		default:
			for i, item := range sec.items {
				lines = append(lines, fmt.Sprintf("%d. %s", i+1, item))
			}
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
