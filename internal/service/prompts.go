package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yourname/sleepwell/internal"
	"github.com/yourname/sleepwell/internal/llm"
)

const (
	insightMaxTokens   = 150
	insightTemperature = 0.7

	coachSystemPrompt       = "You are a wellness coach providing brief, actionable sleep insights. Be encouraging but honest. Keep responses to 2-3 sentences."
	correlationSystemPrompt = "You are a wellness coach providing brief, actionable insights about sleep and lifestyle correlations. Be encouraging but honest. Keep responses to 2-3 sentences."

	moreDataTitle    = "More Data Needed"
	moreDataContent  = "Keep logging your daily activities and sleep to discover patterns. We need at least a few days of data with consistent activity tracking to find correlations."
	correlationTitle = "Sleep & Lifestyle Correlations"
)

// num prints a float the short way: 7.5, 8, -1.2.
func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func SleepDebtTitle(debt float64) string {
	switch {
	case debt > 5:
		return "Significant Sleep Debt Detected"
	case debt > 0:
		return "Mild Sleep Debt"
	default:
		return "Great Sleep Balance!"
	}
}

func ConsistencyTitle(stddevMinutes int) string {
	switch {
	case stddevMinutes <= 30:
		return "Excellent Sleep Schedule!"
	case stddevMinutes <= 60:
		return "Good Sleep Routine"
	default:
		return "Inconsistent Sleep Schedule"
	}
}

func sleepDebtPrompt(logs []internal.SleepLog) []llm.Message {
	debt := SleepDebtHours(logs)
	sign := ""
	if debt > 0 {
		sign = "+"
	}
	user := fmt.Sprintf(`Based on the last %d days of sleep data:
- Average sleep duration: %s hours per night
- Sleep debt (vs recommended 8 hours): %s%s hours
- Average quality rating: %.1f/5

Provide a brief insight about their sleep debt situation and one suggestion to improve.`,
		len(logs), num(AverageSleepHours(logs)), sign, num(debt), AverageQuality(logs))
	return []llm.Message{
		{Role: llm.RoleSystem, Content: coachSystemPrompt},
		{Role: llm.RoleUser, Content: user},
	}
}

func consistencyPrompt(logs []internal.SleepLog) []llm.Message {
	hour, minute := AverageBedtime(logs)
	user := fmt.Sprintf(`Based on the last %d days of sleep data:
- Average bedtime: approximately %d:%02d
- Bedtime consistency variation: %d minutes standard deviation
(Lower variation is better; under 30 minutes is excellent, 30-60 is good, over 60 needs improvement)

Provide a brief insight about their sleep schedule consistency and one suggestion.`,
		len(logs), hour, minute, BedtimeConsistency(logs))
	return []llm.Message{
		{Role: llm.RoleSystem, Content: coachSystemPrompt},
		{Role: llm.RoleUser, Content: user},
	}
}

func correlationLines(c []ActivityCorrelation) string {
	lines := make([]string, 0, len(c))
	for _, a := range c {
		lines = append(lines, fmt.Sprintf("- %s: %s/5 average quality (%d days)", a.Activity, num(a.AvgQuality), a.Count))
	}
	return strings.Join(lines, "\n")
}

func correlationPrompt(logs []internal.SleepLog, entries []internal.DiaryEntry, correlations []ActivityCorrelation) []llm.Message {
	best, worst := BestAndWorst(correlations)
	mood, energy := averageMoodEnergy(entries)
	user := fmt.Sprintf(`Based on %d days of sleep and wellness data:

Activities associated with BETTER sleep quality:
%s

Activities associated with LOWER sleep quality:
%s

Average mood: %.1f/5, Average energy: %.1f/5
Average sleep quality: %.1f/5

Provide a brief insight about the most notable correlation and one actionable suggestion.`,
		len(logs), correlationLines(best), correlationLines(worst), mood, energy, AverageQuality(logs))
	return []llm.Message{
		{Role: llm.RoleSystem, Content: correlationSystemPrompt},
		{Role: llm.RoleUser, Content: user},
	}
}
