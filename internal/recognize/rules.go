// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package recognize

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"
)

// defaultRules are the transcription instructions sent with every page.
// They encode the notation conventions used on the device: circled-AI task
// markers, underline-as-heading, highlight delimiters, and so on.
var defaultRules = []string{
	"Recognize the handwriting and other content in this image.",
	"Convert it to organized markdown format. The markdown output itself should NOT be enclosed in triple backticks (```markdown ... ``` or ``` ... ```).",
	"Preserve headings, lists, list indentation, horizontal rules, tables, blockquotes, and other structures.",
	"Underlined text on its own line should be a H3 header in markdown, prefixed with: ###",
	"For text written in ALL CAPS, convert to traditional capitalization (sentence case or proper nouns as appropriate).",
	"A task is text in the image that has 'AI' in a circle to the left of it. Represent this as a markdown task: - [ ] task text. For example: - [ ] action item text",
	"For any text that is highlighted in the image, add == before and after the highlighted text, with no space between the == and the highlighted text on either end. For example: ==highlighted text==",
	"Text with one asterisk before and after it should be maintained as markdown italic. For example: *italic text here*",
	"Text with two asterisks before and after it should be maintained as markdown bold. For example: **bold text here**",
	"Text with three asterisks before and after it should be maintained as markdown bold italics. For example ***very important text***",
	"Blockquotes in the image will have a > symbol to the left and should be maintained as markdown blockquote. For example: > blockquote text",
}

// LoadRules reads a YAML list of rule strings from path. An empty path
// returns the built-in defaults.
func LoadRules(path string) ([]string, error) {
	if path == "" {
		return defaultRules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file %s: %w", path, err)
	}

	var rules []string
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parsing rules file %s: %w", path, err)
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("rules file %s contains no rules", path)
	}
	return rules, nil
}

// instructions renders rules as the bulleted prompt text.
func instructions(rules []string) string {
	var b strings.Builder
	for i, r := range rules {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- ")
		b.WriteString(r)
	}
	return b.String()
}
