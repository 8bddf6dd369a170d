package services

import (
	"math"
	"strings"
	"time"

	"github.com/classlearning/study_journal/models"
)

type JournalStats struct {
	TotalEntries   int         `json:"total_entries"`
	AverageGrade   float64     `json:"average_grade"`
	EntriesByGrade map[int]int `json:"entries_by_grade"`
	LastEntryDate  *string     `json:"last_entry_date"`
	TotalWords     int         `json:"total_words"`
}

// ComputeJournalStats aggregates the dashboard numbers for a user's journals.
func ComputeJournalStats(journals []models.Journal) JournalStats {
	stats := JournalStats{EntriesByGrade: map[int]int{}}
	if len(journals) == 0 {
		return stats
	}

	totalGrade := 0
	var last *time.Time
	for _, journal := range journals {
		stats.EntriesByGrade[journal.Grade]++
		totalGrade += journal.Grade
		stats.TotalWords += len(strings.Fields(journal.Content))

		entryDate, err := time.Parse("2006-01-02", journal.Date)
		if err != nil {
			continue
		}
		if last == nil || entryDate.After(*last) {
			last = &entryDate
		}
	}

	stats.TotalEntries = len(journals)
	stats.AverageGrade = math.Round(float64(totalGrade)/float64(len(journals))*10) / 10
	if last != nil {
		formatted := last.Format("2006-01-02")
		stats.LastEntryDate = &formatted
	}
	return stats
}
