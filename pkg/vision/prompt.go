package vision

import "fmt"

// Prompt is the instruction sent alongside every image.
func Prompt(maxTags int, language string) string {
	return fmt.Sprintf("Provide at most %d tags in %s for this image, preferring single-word tags when possible. "+
		"If the image is complex, you may provide more detailed tags. "+
		"If the image contains text, you may include the simplified content of the text (at most three words) as tags. "+
		"When simplifying text in the image, prefer the main content and ignore any decorative text. "+
		"Respond only with the tags as a JSON array of strings.", maxTags, language)
}
