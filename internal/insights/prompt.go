package insights

import (
	"fmt"
	"strings"

	"github.com/terraincognita07/cyclesense/internal/cycle"
	"github.com/terraincognita07/cyclesense/internal/models"
)

const systemPrompt = `You are a compassionate women's health advisor specializing in menstrual cycle analysis.
Analyze the user's cycle patterns, symptoms, and mood data to provide personalized, actionable health insights.
Focus on:
1. Pattern recognition in cycle regularity
2. Common symptoms and their frequency
3. Mood and energy level trends
4. Lifestyle factors (sleep, water intake)
5. Gentle recommendations for improving wellbeing

Keep insights warm, supportive, and non-medical. Always encourage consulting healthcare providers for medical concerns.
Format your response with clear sections and bullet points for readability.`

const closingInstructions = `Please provide:
1. **Cycle Pattern Insights**: Analysis of cycle regularity and trends
2. **Symptom Patterns**: Common symptoms and their timing
3. **Lifestyle Observations**: Sleep, hydration, and energy patterns
4. **Personalized Tips**: 3-5 actionable recommendations for better wellbeing
5. **What to Watch**: Any patterns that might benefit from tracking or discussing with a healthcare provider

Keep the tone supportive and empowering.`

// Snapshot is the slice of a user's history sent to the model.
type Snapshot struct {
	AverageCycleLength  int
	AveragePeriodLength int
	Cycles              []models.Cycle
	Symptoms            []models.SymptomLog
	CheckIns            []models.DailyCheckIn
}

type Prompt struct {
	System string
	User   string
}

func BuildPrompt(snapshot Snapshot) Prompt {
	cycleLength := snapshot.AverageCycleLength
	if cycleLength <= 0 {
		cycleLength = models.DefaultCycleLength
	}
	periodLength := snapshot.AveragePeriodLength
	if periodLength <= 0 {
		periodLength = models.DefaultPeriodLength
	}

	var b strings.Builder
	b.WriteString("Please analyze this menstrual health data and provide personalized insights:\n\n")
	b.WriteString("**Profile:**\n")
	fmt.Fprintf(&b, "- Average cycle length: %d days\n", cycleLength)
	fmt.Fprintf(&b, "- Average period length: %d days\n\n", periodLength)

	fmt.Fprintf(&b, "**Recent Cycles (last %d periods):**\n", len(snapshot.Cycles))
	if len(snapshot.Cycles) == 0 {
		b.WriteString("No cycle data available\n")
	}
	for _, entry := range snapshot.Cycles {
		fmt.Fprintf(&b, "- Started %s", cycle.FormatDay(entry.StartDate))
		if entry.EndDate != nil {
			fmt.Fprintf(&b, ", ended %s", cycle.FormatDay(*entry.EndDate))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\n**Recent Symptoms (last %d entries):**\n", len(snapshot.Symptoms))
	if len(snapshot.Symptoms) == 0 {
		b.WriteString("No symptom data available\n")
	}
	for _, entry := range snapshot.Symptoms {
		symptoms := "None"
		if len(entry.Symptoms) > 0 {
			symptoms = strings.Join(entry.Symptoms, ", ")
		}
		fmt.Fprintf(&b, "- %s: %s (Mood: %s)\n", cycle.FormatDay(entry.Date), symptoms, orNotRecorded(entry.Mood))
	}

	fmt.Fprintf(&b, "\n**Recent Daily Check-ins (last %d entries):**\n", len(snapshot.CheckIns))
	if len(snapshot.CheckIns) == 0 {
		b.WriteString("No check-in data available\n")
	}
	for _, entry := range snapshot.CheckIns {
		sleep := 0.0
		if entry.SleepHours != nil {
			sleep = *entry.SleepHours
		}
		fmt.Fprintf(&b, "- %s: Sleep %gh, Water %d glasses, Energy %d/5, Mood: %s\n",
			cycle.FormatDay(entry.Date), sleep, entry.WaterIntake, entry.EnergyLevel, orNotRecorded(entry.Mood))
	}

	b.WriteString("\n")
	b.WriteString(closingInstructions)

	return Prompt{System: systemPrompt, User: b.String()}
}

func orNotRecorded(value string) string {
	if strings.TrimSpace(value) == "" {
		return "Not recorded"
	}
	return value
}
