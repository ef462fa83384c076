package sentiment

import (
	"html"
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"
)

var (
	analyzer = govader.NewSentimentIntensityAnalyzer()

	linkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern  = regexp.MustCompile(`https?://\S+|www\.\S+`)
	tagPattern  = regexp.MustCompile(`<[^>]*>`)
)

func RemoveLinks(input string) string {
	input = linkPattern.ReplaceAllString(input, "$1") // Keep only the text
	return urlPattern.ReplaceAllString(input, "")
}

// ConvertMarkdownToText renders the input and strips the generated tags, so
// emphasis markers and link syntax do not reach the polarity lexicon.
func ConvertMarkdownToText(input string) string {
	output := blackfriday.Run([]byte(input), blackfriday.WithNoExtensions())
	plainText := tagPattern.ReplaceAllString(string(output), " ")
	plainText = strings.Join(strings.Fields(html.UnescapeString(plainText)), " ")

	return RemoveLinks(plainText)
}

// Polarity returns the VADER compound score of the raw text in [-1, 1].
// Unlike the keyword Scorer it accounts for negation, boosters and emoji.
func Polarity(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	plainText := ConvertMarkdownToText(text)
	return analyzer.PolarityScores(plainText).Compound
}
