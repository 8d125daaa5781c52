package analytics

import (
	"strings"

	"promopulse/internal/dataset"
)

// Demographic field names carried on transactional exports.
const (
	genderField   = "gender"
	ageGroupField = "age_group"
)

// responseDelimiter separates multiple selected answers inside one
// proposition cell.
const responseDelimiter = ";"

// ParseQuestion aggregates one numbered survey question across records.
// Token counts accumulate over every split response, while
// TotalResponses counts responding records — that record count is the
// percentage denominator downstream.
func ParseQuestion(records []dataset.Record, number int) SurveyQuestion {
	propField := dataset.PropositionField(number)
	textField := dataset.QuestionField(number)

	q := SurveyQuestion{
		Number: number,
		Counts: make(map[string]int),
		Demographics: SurveyDemographics{
			Gender: make(map[string]DemographicGroup),
			Age:    make(map[string]DemographicGroup),
		},
	}

	for _, r := range records {
		if q.Text == "" {
			q.Text = r.Text(textField)
		}

		raw := r.Text(propField)
		if raw == "" {
			continue
		}
		q.TotalResponses++

		tokens := splitResponses(raw)
		for _, tok := range tokens {
			q.Counts[tok]++
		}

		distinct := distinctTokens(tokens)
		tally(q.Demographics.Gender, r.Text(genderField), distinct)
		tally(q.Demographics.Age, r.Text(ageGroupField), distinct)
	}

	return q
}

// ParseAll aggregates every detected question number, in order.
func ParseAll(records []dataset.Record, numbers []int) []SurveyQuestion {
	questions := make([]SurveyQuestion, 0, len(numbers))
	for _, n := range numbers {
		questions = append(questions, ParseQuestion(records, n))
	}
	return questions
}

// splitResponses splits a multi-select cell into trimmed tokens,
// dropping empties left by stray delimiters.
func splitResponses(raw string) []string {
	parts := strings.Split(raw, responseDelimiter)
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// distinctTokens deduplicates a record's tokens so a repeated answer in
// one cell counts the record only once per response in cross-tabs.
func distinctTokens(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	out := tokens[:0:0]
	for _, t := range tokens {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

// tally records one responding record against its demographic group.
func tally(groups map[string]DemographicGroup, group string, distinct []string) {
	if group == "" {
		return
	}
	g, ok := groups[group]
	if !ok {
		g = DemographicGroup{ResponseBreakdown: make(map[string]int)}
	}
	g.Total++
	for _, tok := range distinct {
		g.ResponseBreakdown[tok]++
	}
	groups[group] = g
}
