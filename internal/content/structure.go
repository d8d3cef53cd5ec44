package content

// StructureHint returns the outline template for a deck of slideCount slides.
func StructureHint(slideCount int) string {
	switch {
	case slideCount <= 5:
		return "1. Title slide, 2. Problem/Challenge, 3. Solution/Approach, 4. Benefits/Results, 5. Next Steps"
	case slideCount <= 10:
		return "1. Title slide, 2. Agenda, 3. Background/Context, 4-7. Main Content (key points), " +
			"8. Recommendations, 9. Implementation, 10. Q&A"
	case slideCount <= 15:
		return "1. Title slide, 2. Agenda, 3. Executive Summary, 4. Background, " +
			"5-11. Main Content (detailed analysis), 12. Recommendations, 13. Implementation Plan, " +
			"14. Next Steps, 15. Q&A"
	default:
		return "1. Title slide, 2. Agenda, 3. Executive Summary, 4-6. Background & Context, " +
			"7-15. Detailed Analysis (multiple sections), 16-18. Recommendations & Strategy, " +
			"19. Implementation Roadmap, 20. Q&A"
	}
}
