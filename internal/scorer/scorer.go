// Package scorer turns a finished conversation into a performance report.
// Scoring is deterministic over the transcript; the same conversation always
// produces the same metrics.
package scorer

import (
	"fmt"
	"sort"
	"time"

	"github.com/ovasilenko/salescoach/internal/domain"
)

// Score bands for training recommendations.
const (
	weakBand   = 50
	strongBand = 70
)

// Score computes the end-of-session report for a conversation.
func Score(conv *domain.Conversation) *domain.PerformanceMetrics {
	m := &domain.PerformanceMetrics{
		SessionID:          conv.SessionID,
		Duration:           sessionDuration(conv),
		ObjectionBreakdown: objectionBreakdown(conv),
	}

	m.ScriptAdherence = scriptAdherence(conv)
	m.ObjectionHandling = objectionHandling(conv)
	m.Rapport = rapport(conv)
	m.Closing = closing(conv)
	m.Overall = (m.ScriptAdherence + m.ObjectionHandling + m.Rapport + m.Closing) / 4

	m.Strengths, m.Improvements = assessments(m)
	m.KeyMoments = keyMoments(conv)
	m.RecommendedTraining = recommendTraining(m)
	return m
}

func sessionDuration(conv *domain.Conversation) time.Duration {
	if len(conv.Messages) == 0 || conv.StartedAt.IsZero() {
		return 0
	}
	last := conv.Messages[len(conv.Messages)-1].CreatedAt
	if last.Before(conv.StartedAt) {
		return 0
	}
	return last.Sub(conv.StartedAt)
}

// scriptAdherence is the share of salesperson messages tagged with a script
// section. An untracked session (no salesperson messages) scores zero.
func scriptAdherence(conv *domain.Conversation) float64 {
	sales := conv.SalespersonMessages()
	if len(sales) == 0 {
		return 0
	}
	var tagged int
	for _, m := range sales {
		if m.ScriptSection != "" {
			tagged++
		}
	}
	return clamp(float64(tagged) / float64(len(sales)) * 100)
}

// objectionHandling is the share of raised objections that were resolved.
// A session where the prospect never objected scores full marks; there was
// nothing to mishandle.
func objectionHandling(conv *domain.Conversation) float64 {
	raised := len(conv.ObjectionsRaised)
	if raised == 0 {
		return 100
	}
	return clamp(float64(len(conv.ObjectionsHandled)) / float64(raised) * 100)
}

// rapport is the share of prospect messages carrying positive sentiment.
func rapport(conv *domain.Conversation) float64 {
	msgs := conv.ProspectMessages()
	if len(msgs) == 0 {
		return 0
	}
	var positive int
	for _, m := range msgs {
		if m.Sentiment == domain.SentimentPositive {
			positive++
		}
	}
	return clamp(float64(positive) / float64(len(msgs)) * 100)
}

// closing scores whether the session reached a close. Reaching the closing
// phase with the prospect warm scores high; reaching it cold scores mid;
// never reaching it scores low.
func closing(conv *domain.Conversation) float64 {
	if conv.Phase != domain.PhaseClosing {
		return 40
	}
	for _, m := range conv.LastMessages(3) {
		if m.Role == domain.RoleProspect && m.Sentiment == domain.SentimentPositive {
			return 90
		}
	}
	return 60
}

func assessments(m *domain.PerformanceMetrics) (strengths, improvements []string) {
	if m.Rapport > strongBand {
		strengths = append(strengths, "kept the prospect engaged and positive")
	}
	if m.ObjectionHandling >= strongBand {
		strengths = append(strengths, "worked through objections instead of ignoring them")
	}
	if m.ScriptAdherence >= strongBand {
		strengths = append(strengths, "stayed on script through the call")
	}
	if m.Closing >= 90 {
		strengths = append(strengths, "closed with the prospect still warm")
	}

	if m.ScriptAdherence < weakBand {
		improvements = append(improvements, "tie each message back to a script section")
	}
	if m.ObjectionHandling < strongBand {
		improvements = append(improvements, "acknowledge objections before countering them")
	}
	if m.Rapport < weakBand {
		improvements = append(improvements, "ask more open questions to warm the prospect up")
	}
	if m.Closing < 60 {
		improvements = append(improvements, "steer the conversation toward a concrete next step")
	}
	return strengths, improvements
}

// keyMoments extracts the notable transcript events: first objection per
// category, resolutions, and sentiment turning points.
func keyMoments(conv *domain.Conversation) []domain.KeyMoment {
	var moments []domain.KeyMoment
	seen := make(map[domain.ObjectionCategory]bool)
	var prev domain.Sentiment

	for _, m := range conv.Messages {
		if m.Role != domain.RoleProspect {
			continue
		}
		if m.Objection != "" && !seen[m.Objection] {
			seen[m.Objection] = true
			moments = append(moments, domain.KeyMoment{
				At:          m.CreatedAt,
				Description: fmt.Sprintf("prospect raised a %s objection", m.Objection),
			})
		}
		if prev == domain.SentimentNegative && m.Sentiment == domain.SentimentPositive {
			moments = append(moments, domain.KeyMoment{
				At:          m.CreatedAt,
				Description: "prospect turned positive after push-back",
			})
		}
		if m.Sentiment != "" {
			prev = m.Sentiment
		}
	}
	return moments
}

// recommendTraining maps score bands to module labels, weakest areas first.
func recommendTraining(m *domain.PerformanceMetrics) []string {
	type area struct {
		score float64
		weak  string
		mid   string
	}
	areas := []area{
		{m.ObjectionHandling, "objection-handling fundamentals", "advanced objection reframing"},
		{m.ScriptAdherence, "script discipline basics", "natural script delivery"},
		{m.Rapport, "rapport building fundamentals", "active listening drills"},
		{m.Closing, "closing fundamentals", "trial-close techniques"},
	}

	sort.SliceStable(areas, func(i, j int) bool { return areas[i].score < areas[j].score })

	var out []string
	for _, a := range areas {
		switch {
		case a.score < weakBand:
			out = append(out, a.weak)
		case a.score < strongBand:
			out = append(out, a.mid)
		}
	}
	return out
}

func objectionBreakdown(conv *domain.Conversation) map[domain.ObjectionCategory]bool {
	out := make(map[domain.ObjectionCategory]bool, len(conv.ObjectionsRaised))
	for cat := range conv.ObjectionsRaised {
		out[cat] = conv.ObjectionsHandled[cat]
	}
	return out
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
