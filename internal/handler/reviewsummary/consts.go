package reviewsummary

const (
	REVIEW_SUMMARY_INSTRUCTION string = `Summarize the user reviews enclosed within <rev> </rev> tags.
	Cover the points most reviewers agree on, the most common complaints and the overall sentiment.

	Return the output in JSON format with exactly these fields:
%s
	Respond ONLY with the JSON object, no markdown or other text.

	<rev>%s</rev>`
)
