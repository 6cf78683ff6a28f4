package review

// Banner is the first line of every posted review comment.
const Banner = "🤖 **AI Code Review Bot**"

// FormatComment prefixes the review text with the banner.
func FormatComment(reviewText string) string {
	return Banner + "\n\n" + reviewText
}
